// Package backup copies exported ledgers to and from Google Cloud Storage.
// It assumes Application Default Credentials are configured (gcloud auth application-default login).
package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// ObjectName returns the object path of a ledger export taken at t
func ObjectName(userID string, t time.Time) string {
	return fmt.Sprintf("ledgers/%s/%s.json", userID, t.UTC().Format("20060102T150405Z"))
}

// ParseURI splits "gs://bucket/path/to/object" into bucket and object
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Upload writes data to bucketName/objectName and returns its gs:// URI
func Upload(ctx context.Context, bucketName, objectName string, data []byte) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy export to GCS writer: %w", err)
	}

	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return "gs://" + bucketName + "/" + objectName, nil
}

// Download reads the object behind a gs:// URI
func Download(ctx context.Context, uri string) ([]byte, error) {
	bucketName, objectName, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}

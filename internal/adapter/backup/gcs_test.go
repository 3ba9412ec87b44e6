package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	ts := time.Date(2024, 5, 1, 14, 3, 9, 0, time.FixedZone("CET", 3600))

	assert.Equal(t, "ledgers/demo-user-id/20240501T130309Z.json", ObjectName("demo-user-id", ts))
}

func TestParseURI(t *testing.T) {
	bucket, object, err := ParseURI("gs://ledger-backups/ledgers/u1/20240501T130309Z.json")
	require.NoError(t, err)
	assert.Equal(t, "ledger-backups", bucket)
	assert.Equal(t, "ledgers/u1/20240501T130309Z.json", object)

	for _, bad := range []string{"s3://bucket/key", "gs://bucket", "gs://bucket/", "gs:///key"} {
		_, _, err := ParseURI(bad)
		assert.Error(t, err, bad)
	}
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simaogato/orbital-ledger/internal/adapter/backup"
)

var backupBucket string

// backupCmd represents the backup command.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a ledger export to Cloud Storage",
	Long: `Export the ledger of --user and upload it to a Cloud Storage bucket
as ledgers/<user>/<timestamp>.json. Credentials come from the
environment (Application Default Credentials).

Example:
  ledgerctl backup --user alice --bucket my-ledger-backups`,
	Run: runBackup,
}

// restoreCmd represents the restore command.
var restoreCmd = &cobra.Command{
	Use:   "restore <gs://bucket/object>",
	Short: "Replace a ledger with a backup from Cloud Storage",
	Args:  cobra.ExactArgs(1),
	Run:   runRestore,
}

func init() {
	backupCmd.Flags().StringVar(&backupBucket, "bucket", "", "destination bucket (default is BACKUP_BUCKET)")
}

func runBackup(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	s := openSession(ctx)
	defer s.Close()

	bucket := backupBucket
	if bucket == "" {
		bucket = s.cfg.BackupBucket
	}
	if bucket == "" {
		exitOnError(fmt.Errorf("no bucket given"), "backup bucket is required")
	}

	doc, err := s.engine.Export()
	exitOnError(err, "failed to export ledger")

	uri, err := backup.Upload(ctx, bucket, backup.ObjectName(userID, time.Now()), doc)
	exitOnError(err, "failed to upload backup")

	fmt.Println(uri)
}

func runRestore(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	data, err := backup.Download(ctx, args[0])
	exitOnError(err, "failed to download backup")

	s := openSession(ctx)
	defer s.Close()

	exitOnError(s.engine.Import(ctx, data), "failed to import backup")
	log.Info().Str("user_id", userID).Str("uri", args[0]).Msg("Ledger restored")
}

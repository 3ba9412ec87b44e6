package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a ledger as a JSON document",
	Long: `Write the ledger of --user as an indented JSON document.
Recurring rules are caught up before exporting.

Example:
  ledgerctl export --user alice --out alice.json`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default is stdout)")
}

func runExport(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	s := openSession(ctx)
	defer s.Close()

	doc, err := s.engine.Export()
	exitOnError(err, "failed to export ledger")

	if exportOut == "" {
		fmt.Println(string(doc))
		return
	}

	exitOnError(os.WriteFile(exportOut, doc, 0o600), "failed to write export")
	log.Info().Str("user_id", userID).Str("path", exportOut).Int("bytes", len(doc)).Msg("Ledger exported")
}

package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace a ledger with a JSON document",
	Long: `Replace the ledger of --user with the given document.
The document must carry wallets and transactions; categories and
recurring rules fall back to their defaults when absent.

Example:
  ledgerctl import --user alice alice.json`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	exitOnError(err, "failed to read import file")

	ctx := context.Background()
	s := openSession(ctx)
	defer s.Close()

	exitOnError(s.engine.Import(ctx, data), "failed to import ledger")

	state := s.engine.Snapshot()
	log.Info().
		Str("user_id", userID).
		Int("wallets", len(state.Wallets)).
		Int("transactions", len(state.Transactions)).
		Msg("Ledger imported")
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simaogato/orbital-ledger/internal/adapter/repository"
)

// userLister is implemented by stores that can enumerate their ledgers
type userLister interface {
	Users(ctx context.Context) ([]string, error)
}

// usersCmd represents the users command.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users with a stored ledger",
	Long: `List the users that have a ledger in the configured store.
Supported by the bolt and sqlite drivers.`,
	Run: runUsers,
}

func runUsers(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	cfg := loadConfig()

	store, err := repository.Open(ctx, cfg.Store)
	exitOnError(err, "failed to open ledger store")
	defer store.Close()

	lister, ok := store.(userLister)
	if !ok {
		exitOnError(fmt.Errorf("driver %s cannot list users", cfg.Store.Driver), "unsupported store")
	}

	users, err := lister.Users(ctx)
	exitOnError(err, "failed to list users")
	for _, u := range users {
		fmt.Println(u)
	}
}

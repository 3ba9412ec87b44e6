package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/simaogato/orbital-ledger/internal/domain"
	"github.com/simaogato/orbital-ledger/internal/usecase/dashboard"
)

var networthCurrency string

// networthCmd represents the networth command.
var networthCmd = &cobra.Command{
	Use:   "networth",
	Short: "Value every wallet in one currency",
	Long: `Convert every wallet balance into the reporting currency and print
the total along with today's change.

Example:
  ledgerctl networth --user alice --currency EUR`,
	Run: runNetworth,
}

func init() {
	networthCmd.Flags().StringVarP(&networthCurrency, "currency", "c", "USD", "reporting currency")
}

func runNetworth(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	s := openSession(ctx)
	defer s.Close()

	svc := dashboard.NewDashboardService(s.converter)
	result, err := svc.GetNetWorth(ctx, s.engine.Snapshot(), networthCurrency, domain.DateOf(time.Now()))
	exitOnError(err, "failed to compute net worth")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WALLET\tBALANCE\tVALUE")
	for _, wv := range result.Wallets {
		value := wv.Value.StringFixed(2)
		if !wv.Priced {
			value = "unpriced"
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\n", wv.Name, wv.Balance.String(), wv.Currency, value)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %s %s\n", result.Total.StringFixed(2), result.Currency)
	fmt.Printf("Today: %s (%s%%)\n", result.TodayChange.StringFixed(2), result.ChangePercent.StringFixed(2))
	if len(result.Unpriced) > 0 {
		fmt.Printf("No rate for: %s\n", strings.Join(result.Unpriced, ", "))
	}
}

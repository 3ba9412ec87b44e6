package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simaogato/orbital-ledger/internal/adapter/rates"
)

var ratesOnly []string

// ratesCmd represents the rates command.
var ratesCmd = &cobra.Command{
	Use:   "rates [base]",
	Short: "Show conversion rates for a base currency",
	Long: `Fetch the rate table for a base currency (USD by default) from the
primary rate source, falling back to the mirror.

Example:
  ledgerctl rates EUR --only USD,BTC`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRates,
}

func init() {
	ratesCmd.Flags().StringSliceVar(&ratesOnly, "only", nil, "restrict output to these currencies")
}

func runRates(cmd *cobra.Command, args []string) {
	base := "USD"
	if len(args) == 1 {
		base = args[0]
	}

	cfg := loadConfig()
	provider := rates.NewHTTPProvider(rates.ProviderConfig{
		PrimaryURL:  cfg.Rates.PrimaryURL,
		FallbackURL: cfg.Rates.FallbackURL,
		CacheTTL:    cfg.Rates.CacheTTL,
		Timeout:     cfg.Rates.Timeout,
	}, log)

	table, err := provider.GetRates(context.Background(), base)
	exitOnError(err, "failed to fetch rates")
	if !table.Usable() {
		exitOnError(errors.New(table.Error), "no rate source available")
	}

	codes := ratesOnly
	if len(codes) == 0 {
		for code := range table.Rates {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	fmt.Printf("Base %s (source: %s, updated %s)\n", table.Base, table.Source, table.LastUpdated.Format("2006-01-02 15:04:05"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, code := range codes {
		rate, ok := table.Rates[code]
		if !ok {
			fmt.Fprintf(w, "%s\t-\n", code)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", code, rate.String())
	}
	_ = w.Flush()
}

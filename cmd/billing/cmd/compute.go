package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	money "github.com/rezonia/billing/internal/decimal"
	"github.com/rezonia/billing/pkg/invoicelib"
)

var computeCmd = &cobra.Command{
	Use:   "compute [file]",
	Short: "Compute invoice totals offline",
	Long: `Compute line and invoice totals of a JSON line list without storing anything.

Input format ("-" or no file reads stdin):
  {"lines": [{"description": "Consulting", "quantity": 2, "unit_price": "100.00", "vat_rate": 20}]}

Examples:
  billing compute lines.json
  billing compute lines.json -f table
  cat lines.json | billing compute --vat-rates 0,21`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompute,
}

func init() {
	rootCmd.AddCommand(computeCmd)
}

func runCompute(cmd *cobra.Command, args []string) error {
	var input io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	printVerbose("Allowed VAT rates: %s\n", cfg.Rates.String())

	result, err := invoicelib.NewCalculator(cfg.Rates).ComputeJSON(input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		return outputComputeJSON(out, result)
	case "table":
		return outputComputeTable(out, result)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputComputeJSON(w io.Writer, result *invoicelib.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputComputeTable(w io.Writer, result *invoicelib.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDESCRIPTION\tQTY\tUNIT PRICE\tVAT %\tHT\tVAT\tTTC")
	fmt.Fprintln(tw, "-\t-----------\t---\t----------\t-----\t--\t---\t---")

	for _, l := range result.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Position+1,
			l.Description,
			l.Quantity.String(),
			money.Format(l.UnitPrice),
			l.VATRate.String(),
			money.Format(l.TotalHT),
			money.Format(l.TotalVAT),
			money.Format(l.TotalTTC),
		)
	}
	fmt.Fprintf(tw, "\tTOTAL\t\t\t\t%s\t%s\t%s\n",
		money.Format(result.Totals.HT),
		money.Format(result.Totals.VAT),
		money.Format(result.Totals.TTC),
	)

	return tw.Flush()
}

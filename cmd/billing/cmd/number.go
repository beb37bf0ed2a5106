package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/billing/internal/model"
)

var (
	numberDate   string
	numberCount  int64
	numberFromDB bool
)

var numberCmd = &cobra.Command{
	Use:   "number",
	Short: "Show the invoice number a new invoice would get",
	Long: `Print the number the next invoice dated --date would receive.

The sequence is the count of invoices already dated in that year plus one.
Use --count to supply the count, or --from-db to read it from the database.

Examples:
  billing number --date 2024-03-15 --count 41   # FAC-2024-0042
  billing number --from-db`,
	Args: cobra.NoArgs,
	RunE: runNumber,
}

func init() {
	rootCmd.AddCommand(numberCmd)

	numberCmd.Flags().StringVar(&numberDate, "date", "", "Invoice date YYYY-MM-DD (default: today)")
	numberCmd.Flags().Int64Var(&numberCount, "count", 0, "Invoices already issued in the year")
	numberCmd.Flags().BoolVar(&numberFromDB, "from-db", false, "Count existing invoices in the database")
}

func runNumber(cmd *cobra.Command, args []string) error {
	date := model.NormalizeDate(time.Now())
	if numberDate != "" {
		parsed, err := model.ParseDate(numberDate)
		if err != nil {
			return err
		}
		date = parsed
	}

	if numberCount < 0 {
		return model.NewInvalidInputError("count", numberCount, "must not be negative")
	}

	count := numberCount
	if numberFromDB {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if count, err = st.CountInvoicesByYear(cmd.Context(), date.Year()); err != nil {
			return err
		}
		printVerbose("%d invoices dated in %d\n", count, date.Year())
	}

	fmt.Fprintln(cmd.OutOrStdout(), model.GenerateNumber(date, count))
	return nil
}

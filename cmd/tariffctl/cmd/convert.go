package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tariff-backend/internal/app"
	"tariff-backend/internal/service"
)

var convertDate string

var convertCmd = &cobra.Command{
	Use:   "convert <amount> <from> <to>",
	Short: "Convert an amount using the exchange rate table",
	Long: `Convert an amount between two currencies.

Without --date the latest rate effective today is used. When no rate exists
the amount is printed unchanged.`,
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertDate, "date", "", "use the rate effective on this date (YYYY-MM-DD)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[0], err)
	}
	from, to := strings.ToUpper(args[1]), strings.ToUpper(args[2])

	var date time.Time
	if convertDate != "" {
		if date, err = time.Parse("2006-01-02", convertDate); err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", convertDate)
		}
	}

	return withServices(func(s *app.Services) error {
		ctx := cmd.Context()
		var converted decimal.Decimal
		if convertDate != "" {
			converted = s.Currency.ConvertOn(ctx, amount, from, to, date)
		} else {
			converted = s.Currency.Convert(ctx, amount, from, to)
		}

		res := service.ConversionResponse{
			Amount:          amount.String(),
			From:            from,
			To:              to,
			ConvertedAmount: service.FormatConvertedAmount(converted, from, to),
			Date:            convertDate,
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", res.Amount, res.From, res.ConvertedAmount, res.To)
		return nil
	})
}

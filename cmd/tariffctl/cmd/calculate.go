package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tariff-backend/internal/app"
	"tariff-backend/internal/service"
)

var (
	calcHTS         string
	calcOrigin      string
	calcDestination string
	calcValue       string
	calcQuantity    int
	calcCurrency    string
	calcEffective   string
	calcExpiration  string
	calcSave        bool
)

// calculateCmd runs one duty calculation
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate the duty for a shipment",
	Long: `Resolve the MFN and preferential rates for an HTS code and print the cheapest one.

With --save the result is stored in the calculation history and audited.`,
	Args: cobra.NoArgs,
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVar(&calcHTS, "hts", "", "8-digit HTS code [REQUIRED]")
	calculateCmd.Flags().StringVar(&calcOrigin, "origin", "", "origin country code")
	calculateCmd.Flags().StringVar(&calcDestination, "destination", "", "destination country code [REQUIRED]")
	calculateCmd.Flags().StringVar(&calcValue, "value", "", "unit value in the working currency [REQUIRED]")
	calculateCmd.Flags().IntVar(&calcQuantity, "quantity", 1, "number of units")
	calculateCmd.Flags().StringVar(&calcCurrency, "currency", "", "result currency (default from config)")
	calculateCmd.Flags().StringVar(&calcEffective, "effective", "", "tariff effective date (YYYY-MM-DD)")
	calculateCmd.Flags().StringVar(&calcExpiration, "expiration", "", "tariff expiration date (YYYY-MM-DD)")
	calculateCmd.Flags().BoolVar(&calcSave, "save", false, "store the calculation in history")
	_ = calculateCmd.MarkFlagRequired("hts")
	_ = calculateCmd.MarkFlagRequired("destination")
	_ = calculateCmd.MarkFlagRequired("value")

	rootCmd.AddCommand(calculateCmd)
}

func runCalculate(cmd *cobra.Command, _ []string) error {
	value, err := decimal.NewFromString(calcValue)
	if err != nil {
		return fmt.Errorf("invalid --value %q: %w", calcValue, err)
	}
	req := service.CalculationRequest{
		HTSCode:              calcHTS,
		OriginCountry:        calcOrigin,
		DestinationCountry:   calcDestination,
		ProductValue:         value,
		Quantity:             calcQuantity,
		Currency:             calcCurrency,
		TariffEffectiveDate:  calcEffective,
		TariffExpirationDate: calcExpiration,
	}

	return withServices(func(s *app.Services) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if calcSave {
			saved, err := s.Records.Create(ctx, "", req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, saved)
			}
			printResult(out, saved.Result)
			fmt.Fprintf(out, "\nSaved as %s\n", saved.Record.ID)
			return nil
		}

		result, err := s.Calculator.Calculate(ctx, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, result)
		}
		printResult(out, result)
		return nil
	})
}

func printResult(w io.Writer, r *service.CalculationResult) {
	fmt.Fprintf(w, "HTS %s  %s\n", r.HTSCode, r.ProductDescription)
	fmt.Fprintf(w, "Route:            %s -> %s\n", dashIfEmpty(r.OriginCountry), r.DestinationCountry)
	fmt.Fprintf(w, "Applied program:  %s (%s)\n", r.AppliedProgramName, r.AppliedRateLabel)
	fmt.Fprintf(w, "Customs base:     %s %s\n", r.CustomsBase.StringFixed(2), r.Currency)
	fmt.Fprintf(w, "Tariff:           %s %s\n", r.TotalTariffAmount.StringFixed(2), r.Currency)
	fmt.Fprintf(w, "Total import:     %s %s\n", r.TotalImportPrice.StringFixed(2), r.Currency)
	if r.SavingsVsMFN.IsPositive() {
		fmt.Fprintf(w, "Savings vs MFN:   %s %s\n", r.SavingsVsMFN.StringFixed(2), r.Currency)
	}
	fmt.Fprintf(w, "Recommendation:   %s\n", r.Recommendation)

	if len(r.RateComparison) > 1 {
		fmt.Fprintln(w, "\nRates considered:")
		for _, o := range r.RateComparison {
			fmt.Fprintf(w, "  %-40s %12s\n", o.ProgramName, o.CalculatedDuty.StringFixed(2))
		}
	}
	if len(r.DateWarnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		fmt.Fprintln(w, "  "+strings.Join(r.DateWarnings, "\n  "))
	}
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

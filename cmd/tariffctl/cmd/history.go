package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tariff-backend/internal/app"
	"tariff-backend/internal/service"
	"tariff-backend/pkg/pagination"
)

var (
	historyPage        int
	historyLimit       int
	historyHTS         string
	historyDestination string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and prune saved calculations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved calculations, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved calculation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved calculation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyListCmd.Flags().IntVar(&historyPage, "page", pagination.DefaultPage, "page number")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", pagination.DefaultLimit, "rows per page")
	historyListCmd.Flags().StringVar(&historyHTS, "hts", "", "only calculations for this HTS code")
	historyListCmd.Flags().StringVar(&historyDestination, "destination", "", "only calculations for this destination")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	p := pagination.New(fmt.Sprint(historyPage), fmt.Sprint(historyLimit))
	filter := service.CalculationFilter{HTSCode: historyHTS, Destination: historyDestination}

	return withServices(func(s *app.Services) error {
		calcs, total, err := s.Records.List(cmd.Context(), filter, p.Page, p.Limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, p.Wrap(calcs, total))
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tHTS\tROUTE\tPROGRAM\tTARIFF\tTOTAL\tCREATED")
		for _, c := range calcs {
			fmt.Fprintf(tw, "%s\t%s\t%s->%s\t%s\t%s %s\t%s %s\t%s\n",
				c.ID, c.HTSCode, dashIfEmpty(c.OriginCountry), c.DestinationCountry, c.AppliedProgramName,
				c.TotalTariffAmount, c.Currency, c.TotalImportPrice, c.Currency, c.CreatedAt)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		page := p.Wrap(calcs, total)
		fmt.Fprintf(out, "\npage %d of %d (%d total)\n", page.Page, page.TotalPages, page.Total)
		return nil
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withServices(func(s *app.Services) error {
		calc, err := s.Records.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, calc)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "ID\t%s\n", calc.ID)
		fmt.Fprintf(tw, "HTS code\t%s\n", calc.HTSCode)
		fmt.Fprintf(tw, "Route\t%s -> %s\n", dashIfEmpty(calc.OriginCountry), calc.DestinationCountry)
		fmt.Fprintf(tw, "Value x qty\t%s x %d\n", calc.ProductValue, calc.Quantity)
		fmt.Fprintf(tw, "Program\t%s (%s)\n", calc.AppliedProgramName, calc.AppliedRateLabel)
		fmt.Fprintf(tw, "Tariff\t%s %s\n", calc.TotalTariffAmount, calc.Currency)
		fmt.Fprintf(tw, "Total import\t%s %s\n", calc.TotalImportPrice, calc.Currency)
		fmt.Fprintf(tw, "Savings vs MFN\t%s %s\n", calc.SavingsVsMFN, calc.Currency)
		if calc.TariffEffectiveDate != nil {
			fmt.Fprintf(tw, "Effective\t%s\n", *calc.TariffEffectiveDate)
		}
		if calc.TariffExpirationDate != nil {
			fmt.Fprintf(tw, "Expires\t%s\n", *calc.TariffExpirationDate)
		}
		fmt.Fprintf(tw, "Created\t%s\n", calc.CreatedAt)
		return tw.Flush()
	})
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	return withServices(func(s *app.Services) error {
		deleted, err := s.Records.Delete(cmd.Context(), "", args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("tariff calculation not found: %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"options-advisor/internal/errors"
	"options-advisor/internal/models"
	"options-advisor/internal/store"
	"options-advisor/pkg/utils"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		symbol, source string
		days, limit    int
		csvOut         bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled recommendations",
		Example: `  advisor history --symbol RELIANCE --limit 10
  advisor history --source chain --days 7 --csv > recs.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.Wrap(errors.ErrDatabaseError, "journal is disabled or failed to open")
			}

			filter := store.RecommendationFilter{
				Symbol: symbol,
				Source: models.RecommendationSource(source),
				Limit:  limit,
			}
			if days > 0 {
				filter.Since = app.now().AddDate(0, 0, -days)
			}

			recs, err := app.Store.GetRecommendations(cmd.Context(), filter)
			if err != nil {
				return err
			}

			switch {
			case csvOut:
				return store.WriteRecommendationsCSV(cmd.OutOrStdout(), recs)
			case output.IsJSON():
				if recs == nil {
					recs = []models.Recommendation{}
				}
				return output.JSON(recs)
			}

			if len(recs) == 0 {
				output.Info("No recommendations recorded")
				return nil
			}

			table := NewTable(output, "Time", "Symbol", "Signal", "Type", "Strike", "Delta", "Expiry", "Source")
			for _, r := range recs {
				expiry := r.ExpiryOrEmpty()
				if expiry == "" {
					expiry = fmt.Sprintf("%.0fd", r.ExpiryDays)
				}
				table.AddRow(
					r.CreatedAt.In(utils.IndiaLocation).Format("02-Jan 15:04"),
					r.Symbol,
					string(r.Signal),
					output.OptionTypeTag(r.OptionType),
					fmt.Sprintf("%.2f", r.Strike),
					output.FormatDelta(r.Greeks.Delta),
					expiry,
					output.SourceTag(r.Source),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "only this symbol")
	cmd.Flags().StringVar(&source, "source", "", "only this source: chain or model")
	cmd.Flags().IntVar(&days, "days", 0, "only the last N days")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries (0 for all)")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "write CSV instead of a table")

	return cmd
}

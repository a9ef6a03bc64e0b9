package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-advisor/internal/analysis/indicators"
	"options-advisor/internal/broker"
	"options-advisor/internal/errors"
	"options-advisor/internal/logging"
	"options-advisor/internal/models"
	"options-advisor/internal/options"
	"options-advisor/internal/store"
	"options-advisor/pkg/utils"
)

// recommendResult pairs a symbol with its outcome for multi-symbol runs.
type recommendResult struct {
	Symbol         string                 `json:"symbol"`
	Recommendation *models.Recommendation `json:"recommendation,omitempty"`
	Error          string                 `json:"error,omitempty"`
	err            error
}

func newRecommendCmd(app *App) *cobra.Command {
	var (
		signal, candles string
		spot, atr       float64
		atrPeriod       int
		noSave          bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <symbol>...",
		Short: "Recommend an option contract for a directional signal",
		Long: `Turn a BUY or SELL signal into a concrete option contract.

BUY maps to calls and SELL to puts. The live chain for the nearest expiry is
preferred; when it is unavailable a model-only strike ladder is used. Several
symbols are processed concurrently. Without --spot the underlying value is
taken from each chain.`,
		Example: `  advisor recommend RELIANCE --signal BUY --spot 2500 --atr 2
  advisor recommend NIFTY BANKNIFTY --signal SELL
  advisor recommend TCS --signal BUY --candles tcs_daily.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			logger := logging.FromContext(cmd.Context())

			sig := models.ParseSignal(signal)
			if !sig.IsDirectional() {
				return errors.Wrapf(errors.ErrInvalidSignal, "signal %q", signal)
			}

			if candles != "" {
				pct, err := atrFromCandles(candles, atrPeriod)
				if err != nil {
					return err
				}
				atr = pct
				logger.Debug().Float64("atr_pct", atr).Str("file", candles).Msg("ATR% from candles")
			}

			reqs := make([]options.Request, len(args))
			for i, symbol := range args {
				symbol = strings.ToUpper(symbol)
				reqs[i] = options.Request{
					Symbol:     symbol,
					Spot:       spot,
					Signal:     sig,
					ATRPercent: atr,
					IsIndex:    broker.IsIndexSymbol(symbol),
				}
			}

			results := recommendAll(cmd.Context(), app.Recommender, reqs)

			var journal store.DataStore
			if !noSave {
				journal = app.Store
				if journal == nil && !output.IsJSON() {
					output.Warning("Journal unavailable, recommendations are not recorded")
				}
			}
			failed := journalResults(cmd.Context(), journal, results, logger)

			if output.IsJSON() {
				if len(results) == 1 && results[0].err == nil {
					if err := output.JSON(results[0].Recommendation); err != nil {
						return err
					}
				} else if err := output.JSON(results); err != nil {
					return err
				}
			} else {
				for i, res := range results {
					if i > 0 {
						output.Println()
					}
					printRecommendation(output, res)
				}
			}

			if failed > 0 {
				if len(results) == 1 {
					return results[0].err
				}
				return fmt.Errorf("%d of %d symbols failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&signal, "signal", "s", "", "directional signal: BUY or SELL (required)")
	cmd.Flags().Float64Var(&spot, "spot", 0, "underlying price (default: from the chain)")
	cmd.Flags().Float64Var(&atr, "atr", options.DefaultATRPercent, "daily ATR as a percent of price")
	cmd.Flags().StringVar(&candles, "candles", "", "CSV of daily candles to derive ATR% from (overrides --atr)")
	cmd.Flags().IntVar(&atrPeriod, "atr-period", indicators.DefaultATRPeriod, "ATR lookback when using --candles")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the recommendation in the journal")
	cmd.MarkFlagRequired("signal")

	return cmd
}

// recommendAll runs one goroutine per request and returns results in request
// order.
func recommendAll(ctx context.Context, r *options.Recommender, reqs []options.Request) []recommendResult {
	results := make([]recommendResult, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req options.Request) {
			defer wg.Done()
			results[i].Symbol = req.Symbol
			rec, err := r.Recommend(ctx, req)
			if err != nil {
				results[i].err = err
				results[i].Error = err.Error()
				return
			}
			results[i].Recommendation = &rec
		}(i, req)
	}
	wg.Wait()

	return results
}

// journalResults saves successful recommendations and logs them; it returns
// the number of failed symbols.
func journalResults(ctx context.Context, journal store.DataStore, results []recommendResult, logger zerolog.Logger) int {
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			log := logging.WithSymbol(logger, res.Symbol)
			log.Warn().Err(res.err).Msg("Recommendation failed")
			continue
		}
		if journal != nil {
			if err := journal.SaveRecommendation(ctx, res.Recommendation); err != nil {
				logger.Warn().Err(err).Str("symbol", res.Symbol).Msg("Failed to journal recommendation")
			}
		}
		logging.LogRecommendation(logger, *res.Recommendation)
	}
	return failed
}

func atrFromCandles(path string, period int) (float64, error) {
	candles, err := store.LoadCandlesCSV(path)
	if err != nil {
		return 0, err
	}
	pct, err := indicators.ATRPercent(candles, period)
	if err != nil {
		return 0, errors.NewDataError("candles", path, fmt.Sprintf("cannot compute %s from %d candles", indicators.NewATR(period).Name(), len(candles)), err)
	}
	return pct, nil
}

func printRecommendation(output *Output, res recommendResult) {
	if res.err != nil {
		output.Error("%s: %v", res.Symbol, res.err)
		return
	}
	rec := res.Recommendation

	output.Bold("%s %s %s  %s", res.Symbol, output.OptionTypeTag(rec.OptionType), utils.FormatIndianCurrency(rec.Strike), output.SourceTag(rec.Source))
	expiry := rec.ExpiryOrEmpty()
	if expiry == "" {
		expiry = "model"
	}
	output.Dim("Signal %s  spot %s  σ %.2f%%  expiry %s (%.2f days)",
		rec.Signal, utils.FormatIndianCurrency(rec.Spot), rec.Sigma*100, expiry, rec.ExpiryDays)
	if rec.Spot > 0 {
		output.Dim("Strike %s from spot", utils.FormatPercent((rec.Strike/rec.Spot-1)*100))
	}

	table := NewTable(output, "Delta", "Gamma", "Theta/day", "Vega/1%", "Premium")
	premium := "n/a"
	if rec.Source == models.SourceChain {
		premium = utils.FormatIndianCurrency(rec.PremiumApprox)
	}
	table.AddRow(
		output.FormatDelta(rec.Greeks.Delta),
		fmt.Sprintf("%.6f", rec.Greeks.Gamma),
		fmt.Sprintf("%.4f", rec.Greeks.ThetaPerDay),
		fmt.Sprintf("%.4f", rec.Greeks.VegaPer1Pct),
		premium,
	)
	table.Render()
	output.Dim("%s", rec.Rationale)
	if rec.ID != "" {
		output.Dim("Journal id: %s", rec.ID)
	}
}

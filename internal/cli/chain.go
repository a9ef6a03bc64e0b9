package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"options-advisor/internal/broker"
	"options-advisor/internal/errors"
	"options-advisor/internal/models"
	"options-advisor/internal/options"
	"options-advisor/pkg/utils"
)

// chainRow is one strike of the chain view with model deltas.
type chainRow struct {
	Strike  float64 `json:"strike"`
	CEPrice float64 `json:"ce_price"`
	CEOI    int64   `json:"ce_oi"`
	CEDelta float64 `json:"ce_delta"`
	PEPrice float64 `json:"pe_price"`
	PEOI    int64   `json:"pe_oi"`
	PEDelta float64 `json:"pe_delta"`
}

type chainView struct {
	Symbol   string     `json:"symbol"`
	Spot     float64    `json:"spot"`
	Expiry   string     `json:"expiry"`
	Expiries []string   `json:"expiries"`
	Years    float64    `json:"years"`
	Sigma    float64    `json:"sigma"`
	Market   string     `json:"market"`
	Rows     []chainRow `json:"rows"`
}

func newChainCmd(app *App) *cobra.Command {
	var (
		expiry, file string
		atr          float64
		width        int
		isIndex      bool
	)

	cmd := &cobra.Command{
		Use:   "chain <symbol>",
		Short: "Show the normalized option chain for the nearest expiry",
		Long: `Fetch an option chain from NSE (or read a saved JSON payload) and show
prices, open interest and model deltas around the money.`,
		Example: `  advisor chain NIFTY
  advisor chain RELIANCE --expiry 26-Feb-2026 --width 5
  advisor chain TCS --file tcs_chain.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])
			if !cmd.Flags().Changed("index") {
				isIndex = broker.IsIndexSymbol(symbol)
			}

			raw, err := loadChain(cmd, app, symbol, isIndex, file)
			if err != nil {
				return err
			}

			records := options.ParseChain(raw)
			if len(records) == 0 {
				return errors.NewDataError("option_chain", symbol, "no usable strikes in payload", errors.ErrDataNotFound)
			}
			spot, _ := options.UnderlyingValue(raw)

			now := app.now()
			expiries := options.Expiries(records)
			if expiry == "" {
				expiry, _ = options.NearestExpiry(expiries, now)
			}
			selected := records
			years := options.DefaultYears
			if expiry != "" {
				selected = options.RecordsForExpiry(records, expiry)
				years = options.YearsToExpiry(expiry, now)
			}

			view := chainView{
				Symbol:   symbol,
				Spot:     spot,
				Expiry:   expiry,
				Expiries: expiries,
				Years:    years,
				Sigma:    options.SigmaFromDailyATR(atr),
				Market:   string(utils.GetMarketStatus(now)),
			}
			for _, rec := range aroundSpot(selected, spot, width) {
				row := chainRow{
					Strike:  rec.Strike,
					CEPrice: rec.CEPrice,
					CEOI:    rec.CEOpenInterest,
					PEPrice: rec.PEPrice,
					PEOI:    rec.PEOpenInterest,
				}
				if spot > 0 {
					rate := app.Config.Options.RiskFreeRate
					row.CEDelta = options.Greeks(spot, rec.Strike, years, rate, view.Sigma, "CE").Delta
					row.PEDelta = options.Greeks(spot, rec.Strike, years, rate, view.Sigma, "PE").Delta
				}
				view.Rows = append(view.Rows, row)
			}

			if output.IsJSON() {
				return output.JSON(view)
			}
			printChain(output, view)
			return nil
		},
	}

	cmd.Flags().StringVar(&expiry, "expiry", "", "expiry to show (default: nearest)")
	cmd.Flags().StringVar(&file, "file", "", "read a saved chain JSON payload instead of fetching")
	cmd.Flags().Float64Var(&atr, "atr", options.DefaultATRPercent, "daily ATR as a percent of price for model deltas")
	cmd.Flags().IntVar(&width, "width", 10, "strikes to show on each side of spot (0 for all)")
	cmd.Flags().BoolVar(&isIndex, "index", false, "treat symbol as an index (default: detected)")

	return cmd
}

func loadChain(cmd *cobra.Command, app *App, symbol string, isIndex bool, file string) (any, error) {
	if file != "" {
		body, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading chain file: %w", err)
		}
		raw, ok := options.DecodeChainJSON(body)
		if !ok {
			return nil, errors.NewDataError("option_chain", symbol, "file is not JSON", nil)
		}
		return raw, nil
	}
	if app.Fetcher == nil {
		return nil, errors.Wrap(errors.ErrChainUnavailable, "nse feed is disabled")
	}
	return app.Fetcher.FetchOptionChain(cmd.Context(), symbol, isIndex)
}

// aroundSpot keeps the width strikes nearest below spot and the width
// nearest at or above it, ordered by strike.
func aroundSpot(records []models.StrikeRecord, spot float64, width int) []models.StrikeRecord {
	if width <= 0 || spot <= 0 {
		return records
	}
	sorted := make([]models.StrikeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Strike < sorted[j].Strike })

	pivot := sort.Search(len(sorted), func(i int) bool { return sorted[i].Strike >= spot })
	lo := pivot - width
	if lo < 0 {
		lo = 0
	}
	hi := pivot + width
	if hi > len(sorted) {
		hi = len(sorted)
	}
	return sorted[lo:hi]
}

func printChain(output *Output, v chainView) {
	output.Bold("%s option chain  %s", v.Symbol, v.Expiry)
	if v.Spot > 0 {
		output.Dim("Spot %s  σ %.2f%%  T %.1f days  market %s", utils.FormatIndianCurrency(v.Spot), v.Sigma*100, v.Years*options.DaysPerYear, v.Market)
	}
	output.Println()

	table := NewTable(output, "CE OI", "CE LTP", "CE Δ", "Strike", "PE Δ", "PE LTP", "PE OI")
	for _, r := range v.Rows {
		strike := fmt.Sprintf("%.2f", r.Strike)
		if v.Spot > 0 && r.Strike < v.Spot {
			strike = output.Cyan(strike)
		}
		table.AddRow(
			utils.FormatQuantity(r.CEOI),
			fmt.Sprintf("%.2f", r.CEPrice),
			output.FormatDelta(r.CEDelta),
			strike,
			output.FormatDelta(r.PEDelta),
			fmt.Sprintf("%.2f", r.PEPrice),
			utils.FormatQuantity(r.PEOI),
		)
	}
	table.Render()

	if len(v.Expiries) > 1 {
		output.Println()
		output.Dim("Other expiries: %s", strings.Join(v.Expiries, ", "))
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"options-advisor/internal/errors"
	"options-advisor/internal/models"
	"options-advisor/internal/options"
	"options-advisor/pkg/utils"
)

// greeksResult is the JSON shape of the greeks command.
type greeksResult struct {
	Spot       float64             `json:"spot"`
	Strike     float64             `json:"strike"`
	OptionType models.OptionType   `json:"option_type"`
	Years      float64             `json:"years"`
	Sigma      float64             `json:"sigma"`
	Rate       float64             `json:"rate"`
	Greeks     models.OptionGreeks `json:"greeks"`
}

func newGreeksCmd(app *App) *cobra.Command {
	var (
		spot, strike, days, sigma, atr, rate float64
		optType, expiry                     string
	)

	cmd := &cobra.Command{
		Use:   "greeks",
		Short: "Price a single contract with Black-Scholes",
		Long: `Compute delta, gamma, theta per day and vega per 1% for one contract.

Volatility comes from --sigma when given, otherwise from the daily ATR%.
Time to expiry comes from --expiry when given, otherwise from --days.`,
		Example: `  advisor greeks --spot 2500 --strike 2550 --type CE --days 7
  advisor greeks --spot 22000 --strike 21800 --type PE --expiry 26-Feb-2026 --sigma 0.14`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if !(spot > 0) {
				return errors.NewValidationError("spot", spot, "must be positive")
			}
			if !(strike > 0) {
				return errors.NewValidationError("strike", strike, "must be positive")
			}

			years := days / options.DaysPerYear
			if expiry != "" {
				if _, ok := options.ParseExpiry(expiry); !ok {
					return errors.NewValidationError("expiry", expiry, "expected DD-Mon-YYYY, YYYY-MM-DD or DD-MM-YYYY")
				}
				years = options.YearsToExpiry(expiry, app.now())
			}
			if !cmd.Flags().Changed("sigma") {
				sigma = options.SigmaFromDailyATR(atr)
			}
			if !cmd.Flags().Changed("rate") {
				rate = app.Config.Options.RiskFreeRate
			}

			t := models.ParseOptionType(optType)
			result := greeksResult{
				Spot:       spot,
				Strike:     strike,
				OptionType: t,
				Years:      years,
				Sigma:      sigma,
				Rate:       rate,
				Greeks:     options.Greeks(spot, strike, years, rate, sigma, string(t)),
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			printGreeks(output, result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&spot, "spot", 0, "underlying price (required)")
	cmd.Flags().Float64Var(&strike, "strike", 0, "strike price (required)")
	cmd.Flags().StringVarP(&optType, "type", "t", "CE", "option type: CE or PE")
	cmd.Flags().Float64Var(&days, "days", options.DefaultExpiryDays, "calendar days to expiry")
	cmd.Flags().StringVar(&expiry, "expiry", "", "expiry date (overrides --days)")
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "annualized volatility as a fraction (overrides --atr)")
	cmd.Flags().Float64Var(&atr, "atr", options.DefaultATRPercent, "daily ATR as a percent of price")
	cmd.Flags().Float64Var(&rate, "rate", options.DefaultRiskFreeRate, "annual risk-free rate (default from config)")
	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")

	return cmd
}

func printGreeks(output *Output, r greeksResult) {
	output.Bold("%s %s  spot %s", output.OptionTypeTag(r.OptionType), utils.FormatIndianCurrency(r.Strike), utils.FormatIndianCurrency(r.Spot))
	output.Dim("T %.4fy (%.1f days)  σ %.2f%%  r %.2f%%", r.Years, r.Years*options.DaysPerYear, r.Sigma*100, r.Rate*100)
	output.Println()

	table := NewTable(output, "Greek", "Value")
	table.AddRow("Delta", output.FormatDelta(r.Greeks.Delta))
	table.AddRow("Gamma", fmt.Sprintf("%.6f", r.Greeks.Gamma))
	table.AddRow("Theta/day", fmt.Sprintf("%.4f", r.Greeks.ThetaPerDay))
	table.AddRow("Vega/1%", fmt.Sprintf("%.4f", r.Greeks.VegaPer1Pct))
	table.AddRow("d1", fmt.Sprintf("%.4f", r.Greeks.D1))
	table.AddRow("d2", fmt.Sprintf("%.4f", r.Greeks.D2))
	table.Render()
}

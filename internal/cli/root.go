package cli

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-advisor/internal/broker"
	"options-advisor/internal/config"
	"options-advisor/internal/logging"
	"options-advisor/internal/options"
	"options-advisor/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-02-19"
)

// App holds the application dependencies.
type App struct {
	Config      *config.Config
	ConfigDir   string
	Logger      zerolog.Logger
	Fetcher     options.ChainFetcher
	Store       store.DataStore
	Recommender *options.Recommender

	now       func() time.Time
	ownsStore bool
}

// AppOption overrides a dependency NewRootCmd would otherwise build from config.
type AppOption func(*App)

// WithFetcher replaces the NSE client.
func WithFetcher(f options.ChainFetcher) AppOption {
	return func(a *App) { a.Fetcher = f }
}

// WithStore replaces the SQLite journal.
func WithStore(s store.DataStore) AppOption {
	return func(a *App) { a.Store = s }
}

// WithClock fixes the time used for expiry arithmetic.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) { a.now = now }
}

// NewRootCmd creates the root command for the CLI. Configuration is loaded
// before any subcommand runs so --config and --debug apply everywhere.
func NewRootCmd(opts ...AppOption) *cobra.Command {
	app := &App{
		Logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}

	rootCmd := &cobra.Command{
		Use:   "advisor",
		Short: "Options advisor - strike selection for NSE options",
		Long: `Options Advisor turns a directional signal into a concrete option contract.

It prices contracts with Black-Scholes, reads live NSE option chains when they
are available and falls back to a model-only strike ladder when they are not.

Use 'advisor help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-advisor)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addOptionsCommands(rootCmd, app)

	return rootCmd
}

func (a *App) init(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config")
	if configDir == "" {
		configDir = config.DefaultConfigDir()
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	a.Config = cfg
	a.ConfigDir = configDir

	logCfg := cfg.LoggingConfig()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg.Level = "debug"
	}
	a.Logger = logging.NewLoggerWithConfig(logCfg)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.Logger))

	if a.Fetcher == nil && cfg.NSE.Enabled {
		a.Fetcher = broker.NewNSEClient(cfg.BrokerConfig(), a.Logger)
		a.Logger.Debug().Str("base_url", cfg.NSE.BaseURL).Msg("NSE client initialized")
	}

	if a.Store == nil && cfg.Store.Enabled {
		dataStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to initialize store, journal unavailable")
		} else {
			a.Store = dataStore
			a.ownsStore = true
			a.Logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
		}
	}

	a.Recommender = options.NewRecommender(a.Fetcher,
		options.WithRiskFreeRate(cfg.Options.RiskFreeRate),
		options.WithSelectorParams(cfg.SelectorParams()),
		options.WithClock(a.now),
		options.WithLogger(a.Logger),
	)
	return nil
}

func (a *App) close() error {
	if a.ownsStore && a.Store != nil {
		err := a.Store.Close()
		a.Store = nil
		a.ownsStore = false
		return err
	}
	return nil
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

// addOptionsCommands adds pricing, chain and recommendation commands.
func addOptionsCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newGreeksCmd(app))
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newRecommendCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Options Advisor v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	var defaults bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := app.Config
			if defaults {
				cfg = config.Default()
			}
			if output.IsJSON() {
				return output.JSON(cfg)
			}
			return showConfig(output, cfg)
		},
	}
	showCmd.Flags().BoolVar(&defaults, "defaults", false, "show built-in defaults instead of the loaded configuration")
	cmd.AddCommand(showCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			path := filepath.Join(app.ConfigDir, "config.toml")
			if output.IsJSON() {
				output.JSON(map[string]string{"dir": app.ConfigDir, "path": path})
			} else {
				output.Println(path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	o := cfg.Options
	output.Bold("Pricing")
	output.Printf("  Risk-free rate:   %.2f%%\n", o.RiskFreeRate*100)
	output.Println()

	output.Bold("Strike Selection")
	output.Printf("  Call band:        [%.2f, %.2f]\n", o.CallBandLow, o.CallBandHigh)
	output.Printf("  Put band:         [%.2f, %.2f]\n", o.PutBandLow, o.PutBandHigh)
	output.Printf("  Target delta:     CE %.2f / PE %.2f\n", o.CallTargetDelta, o.PutTargetDelta)
	output.Printf("  Tolerance:        %.2f\n", o.Tolerance)
	output.Printf("  Ladder:           %d steps of %.2f%%\n", o.LadderSteps, o.StepPercent)
	output.Println()

	output.Bold("NSE Feed")
	output.Printf("  Enabled:          %v\n", cfg.NSE.Enabled)
	output.Printf("  Base URL:         %s\n", cfg.NSE.BaseURL)
	output.Printf("  Timeout:          %s\n", cfg.NSE.Timeout)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:            %s\n", cfg.Log.Level)
	output.Printf("  File:             %v\n", cfg.Log.File)
	output.Println()

	output.Bold("Journal")
	output.Printf("  Enabled:          %v\n", cfg.Store.Enabled)
	output.Printf("  Path:             %s\n", cfg.Store.Path)

	return nil
}

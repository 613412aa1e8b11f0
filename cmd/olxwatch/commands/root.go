package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"olxwatch/lib/configlibsql"
	"olxwatch/lib/configutil"
	"olxwatch/lib/notify"
	"olxwatch/lib/pricestore"
	"olxwatch/lib/pricestore/db"
	"olxwatch/lib/scrapers/olx"
	"olxwatch/lib/telemetry"
	"olxwatch/services/tracker"

	"github.com/spf13/cobra"
)

const version = "1.2.7"

// distinct exit statuses so scripts driving the watcher can tell an
// expected removal apart from a page-format change or their own misuse
const (
	exitListingRemoved = 200
	exitMalformedPage  = 110
	exitOperatorError  = 120
)

type GraphsConfig struct {
	Dir string `json:"dir"`
}

type ScraperConfig struct {
	TimeoutSeconds int `json:"timeout_seconds"`
}

type TrackingConfig struct {
	TrackCurrencyChanges bool `json:"track_currency_changes"`
}

type Config struct {
	Database configlibsql.Struct `json:"database"`
	Graphs   GraphsConfig        `json:"graphs"`
	Scraper  ScraperConfig       `json:"scraper"`
	Tracking TrackingConfig      `json:"tracking"`
	Notify   notify.Config       `json:"notify"`
}

var (
	verbosity  *string
	configPath *string

	svc tracker.Service
	tel telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:     "olxwatch",
	Short:   "olxwatch tracks OLX listing prices over time.",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbosity)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "olxwatch")
		if err != nil {
			fail(fmt.Errorf("setup telemetry: %w", err))
		}

		config, err := configutil.ReadConfig[Config](*configPath)
		if err != nil && !os.IsNotExist(err) {
			fail(fmt.Errorf("read config: %w", err))
		}
		if config.Database.File == "" {
			config.Database.File = "main.db"
		}

		database, err := config.Database.OpenDB(db.Schema)
		if err != nil {
			fail(fmt.Errorf("open database: %w", err))
		}

		svc = tracker.NewService(tracker.Options{
			Store: pricestore.NewStore(database, pricestore.Options{
				TrackCurrencyChanges: config.Tracking.TrackCurrencyChanges,
			}),
			Fetcher: olx.NewClient(olx.ClientOptions{
				Timeout: time.Duration(config.Scraper.TimeoutSeconds) * time.Second,
			}),
			Mailer:   notify.NewMailer(config.Notify),
			GraphDir: config.Graphs.Dir,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func init() {
	verbosity = rootCmd.PersistentFlags().String("verbosity", "info", "Verbosity level: debug / info / warning / error")
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "Path to the configuration file")
}

// fail reports the error and terminates with the exit status matching
// its class.
func fail(err error) {
	switch {
	case errors.Is(err, olx.ErrListingRemoved):
		fmt.Println("Sorry, this item does not exist!")
		os.Exit(exitListingRemoved)
	case errors.Is(err, olx.ErrMalformedPage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitMalformedPage)
	case errors.Is(err, pricestore.ErrEmptyStore), errors.Is(err, tracker.ErrNoHistory):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitOperatorError)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
	"tweetharvest/lib/configutil"
	"tweetharvest/lib/scrapers/twitter/search"
	"tweetharvest/lib/telemetry"
	"tweetharvest/services/tweetstore"
	"tweetharvest/services/tweetstore/db"

	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

// Config carries the scraper defaults, read from a tweetharvest.json5
// found in the working directory or any directory above it. Flags given
// explicitly on the command line win over the file.
type Config struct {
	// seconds between calls to twitter
	RateDelay float64 `json:"rate_delay"`
	// seconds to wait before retrying a failed call
	ErrorDelay float64 `json:"error_delay"`
	UserAgent  string  `json:"user_agent"`
}

var (
	verbose    bool
	rateDelay  float64
	errorDelay float64
	dbPath     string

	tel telemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "tweetharvest",
	Short: "tweetharvest scrapes tweets out of twitter's timeline search.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "tweetharvest")
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		telemetry.InstrumentPerfStats(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tel.Shutdown(context.Background())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Float64Var(&rateDelay, "rate-delay", 1, "seconds between calls to twitter")
	rootCmd.PersistentFlags().Float64Var(&errorDelay, "error-delay", 5, "seconds to wait before retrying a failed call")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite database to store tweets in")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient(cmd *cobra.Command) *search.Client {
	config, err := configutil.ReadRecursively[Config]("tweetharvest.json5")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if !cmd.Flags().Changed("rate-delay") && config.RateDelay != 0 {
		rateDelay = config.RateDelay
	}
	if !cmd.Flags().Changed("error-delay") && config.ErrorDelay != 0 {
		errorDelay = config.ErrorDelay
	}

	return search.NewClient(search.ClientOptions{
		UserAgent:  config.UserAgent,
		RateDelay:  time.Duration(rateDelay * float64(time.Second)),
		ErrorDelay: time.Duration(errorDelay * float64(time.Second)),
	})
}

func openStore() (tweetstore.Service, func()) {
	sqlite, err := sql.Open("sqlite", dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return tweetstore.NewService(sqlite), func() { sqlite.Close() }
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
	"tweetharvest/lib/scrapers/twitter/search"

	"github.com/spf13/cobra"
)

var (
	sinceFlag   string
	untilFlag   string
	concurrency int
)

func init() {
	sliceCmd.Flags().StringVar(&sinceFlag, "since", "", "first day to scrape, inclusive (YYYY-MM-DD)")
	sliceCmd.Flags().StringVar(&untilFlag, "until", "", "day to stop at, exclusive (YYYY-MM-DD)")
	sliceCmd.Flags().IntVar(&concurrency, "concurrency", 1, "how many day slices to scrape in parallel")
	sliceCmd.MarkFlagRequired("since")
	sliceCmd.MarkFlagRequired("until")
	rootCmd.AddCommand(sliceCmd)
}

var sliceCmd = &cobra.Command{
	Use:   "slice <query>",
	Short: "Splits a query into single-day slices and scrapes them in parallel.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		since, err := time.Parse(time.DateOnly, sinceFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		until, err := time.Parse(time.DateOnly, untilFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		client := newClient(cmd)
		ctx := cmd.Context()

		var sink search.Sink
		if dbPath != "" {
			store, closeStore := openStore()
			defer closeStore()
			sink = store.Sink(ctx)
		} else {
			sink = logSink(ctx)
		}

		count, err := client.SearchRange(ctx, args[0], since, until, concurrency, sink)
		if err != nil {
			slog.ErrorContext(ctx, "slice run failed", "err", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "slice run finished", "tweets", count)
	},
}

// logSink prints each tweet as it comes in. Day slices run in parallel so
// the counter and output are shared across workers.
func logSink(ctx context.Context) search.Sink {
	var counter atomic.Int64
	var printLock sync.Mutex
	return func(tweets []search.Tweet) bool {
		printLock.Lock()
		defer printLock.Unlock()
		for _, tweet := range tweets {
			n := counter.Add(1)
			created := ""
			if !tweet.CreatedAt.IsZero() {
				created = tweet.CreatedAt.Format(time.DateTime)
			}
			fmt.Printf("%d [%s] @%s - %s\n", n, created, tweet.ScreenName, tweet.Text)
		}
		return true
	}
}

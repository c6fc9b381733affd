package cmd

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"
	"tweetharvest/lib/scrapers/twitter/search"
	"tweetharvest/services/tweetstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var maxTweets int64

func init() {
	searchCmd.Flags().Int64Var(&maxTweets, "max", 0, "stop after collecting this many tweets (0 means no limit)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Pages through all results for a query, printing or storing each tweet.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		ctx := cmd.Context()

		var counter atomic.Int64

		if dbPath != "" {
			store, closeStore := openStore()
			defer closeStore()

			count, err := client.Search(ctx, args[0], storeSink(ctx, store, &counter))
			if err != nil {
				slog.ErrorContext(ctx, "search aborted", "err", err)
				os.Exit(1)
			}
			slog.InfoContext(ctx, "search finished", "tweets", count, "db", dbPath)
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Created", "User", "Text"})

		count, err := client.Search(ctx, args[0], tableSink(t, &counter))
		if err != nil {
			slog.ErrorContext(ctx, "search aborted", "err", err)
			os.Exit(1)
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
		slog.InfoContext(ctx, "search finished", "tweets", count)
	},
}

func tableSink(t table.Writer, counter *atomic.Int64) search.Sink {
	return func(tweets []search.Tweet) bool {
		for _, tweet := range tweets {
			n := counter.Add(1)

			created := ""
			if !tweet.CreatedAt.IsZero() {
				created = tweet.CreatedAt.Format(time.DateTime)
			}
			t.AppendRow(table.Row{n, created, tweet.ScreenName, tweet.Text})

			if maxTweets > 0 && n >= maxTweets {
				return false
			}
		}
		return true
	}
}

func storeSink(ctx context.Context, store tweetstore.Service, counter *atomic.Int64) search.Sink {
	inner := store.Sink(ctx)
	return func(tweets []search.Tweet) bool {
		if !inner(tweets) {
			return false
		}
		n := counter.Add(int64(len(tweets)))
		return maxTweets <= 0 || n < maxTweets
	}
}

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showLimit int64

func init() {
	showCmd.Flags().Int64Var(&showLimit, "limit", 50, "maximum number of tweets to print")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints tweets stored in the database given by --db, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		if dbPath == "" {
			fmt.Fprintln(os.Stderr, "show requires --db")
			os.Exit(1)
		}

		store, closeStore := openStore()
		defer closeStore()

		tweets, err := store.List(cmd.Context(), showLimit)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Created", "User", "RTs", "Favs", "Text"})

		for _, tweet := range tweets {
			created := ""
			if !tweet.CreatedAt.IsZero() {
				created = tweet.CreatedAt.Format(time.DateTime)
			}
			t.AppendRow(table.Row{tweet.ID, created, tweet.ScreenName, tweet.Retweets, tweet.Favorites, tweet.Text})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

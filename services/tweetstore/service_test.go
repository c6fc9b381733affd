package tweetstore

import (
	"context"
	"testing"
	"time"
	"tweetharvest/lib/scrapers/twitter/search"
	"tweetharvest/lib/testutil"
	"tweetharvest/services/tweetstore/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestService(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/tweetstore",
		DbSchema: db.Schema,
	})
	defer cleanup()
	service := NewService(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	count, err := service.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	createdAt := time.UnixMilli(1475323200000)
	err = service.StorePage(ctx, []search.Tweet{
		{ID: "1", Text: "first", ScreenName: "alice", CreatedAt: createdAt, Retweets: 2},
		{ID: "2", Text: "second", ScreenName: "bob", CreatedAt: createdAt.Add(time.Minute)},
	})
	require.NoError(t, err)

	// pages from adjacent day slices can overlap on the boundary tweet,
	// storing is an upsert so the overlap collapses
	err = service.StorePage(ctx, []search.Tweet{
		{ID: "2", Text: "second", ScreenName: "bob", CreatedAt: createdAt.Add(time.Minute), Favorites: 5},
		{ID: "3", Text: "third", ScreenName: "carol"},
	})
	require.NoError(t, err)

	count, err = service.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	tweets, err := service.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tweets, 3)

	// newest first, the tweet without a timestamp sorts last
	require.Equal(t, "2", tweets[0].ID)
	require.Equal(t, 5, tweets[0].Favorites)
	require.Equal(t, "1", tweets[1].ID)
	require.Equal(t, "3", tweets[2].ID)
	require.True(t, tweets[2].CreatedAt.IsZero())
}

func TestServiceSink(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/tweetstore",
		DbSchema: db.Schema,
	})
	defer cleanup()
	service := NewService(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	sink := service.Sink(ctx)
	require.True(t, sink([]search.Tweet{{ID: "10"}, {ID: "11"}}))
	require.True(t, sink([]search.Tweet{{ID: "12"}}))

	count, err := service.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

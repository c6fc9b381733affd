package tweetstore

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
	"tweetharvest/lib/scrapers/twitter/search"
	"tweetharvest/services/tweetstore/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/tweetstore")

type Service struct {
	db  *sql.DB
	qry *db.Queries
}

func NewService(database *sql.DB) Service {
	return Service{
		db:  database,
		qry: db.New(database),
	}
}

// Sink returns a search sink that persists every page it receives. A
// storage failure is logged but does not stop the search. The sink is safe
// to share between SearchRange workers, each page gets its own transaction.
func (s Service) Sink(ctx context.Context) search.Sink {
	return func(tweets []search.Tweet) bool {
		err := s.StorePage(ctx, tweets)
		if err != nil {
			slog.ErrorContext(ctx, "failed to store page", "err", err)
		}
		return true
	}
}

func (s Service) StorePage(ctx context.Context, tweets []search.Tweet) error {
	ctx, span := tracer.Start(ctx, "StorePage")
	defer span.End()
	span.SetAttributes(attribute.Int("page_size", len(tweets)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	for _, tweet := range tweets {
		createdAtMs := int64(0)
		if !tweet.CreatedAt.IsZero() {
			createdAtMs = tweet.CreatedAt.UnixMilli()
		}
		err := txqry.UpsertTweet(ctx, db.Tweet{
			ID:          tweet.ID,
			Text:        tweet.Text,
			UserID:      tweet.UserID,
			ScreenName:  tweet.ScreenName,
			DisplayName: tweet.DisplayName,
			CreatedAtMs: createdAtMs,
			Retweets:    int64(tweet.Retweets),
			Favorites:   int64(tweet.Favorites),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s Service) Count(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Count")
	defer span.End()

	count, err := s.qry.CountTweets(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return count, nil
}

// List returns up to limit stored tweets, newest first.
func (s Service) List(ctx context.Context, limit int64) ([]search.Tweet, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	rows, err := s.qry.ListTweets(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tweets := make([]search.Tweet, 0, len(rows))
	for _, row := range rows {
		tweet := search.Tweet{
			ID:          row.ID,
			Text:        row.Text,
			UserID:      row.UserID,
			ScreenName:  row.ScreenName,
			DisplayName: row.DisplayName,
			Retweets:    int(row.Retweets),
			Favorites:   int(row.Favorites),
		}
		if row.CreatedAtMs != 0 {
			tweet.CreatedAt = time.UnixMilli(row.CreatedAtMs)
		}
		tweets = append(tweets, tweet)
	}
	return tweets, nil
}

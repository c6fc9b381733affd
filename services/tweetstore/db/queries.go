package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Tweet struct {
	ID          string
	Text        string
	UserID      string
	ScreenName  string
	DisplayName string
	CreatedAtMs int64
	Retweets    int64
	Favorites   int64
}

const upsertTweet = `
INSERT INTO tweet (id, text, user_id, screen_name, display_name, created_at_ms, retweets, favorites)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    text = excluded.text,
    user_id = excluded.user_id,
    screen_name = excluded.screen_name,
    display_name = excluded.display_name,
    created_at_ms = excluded.created_at_ms,
    retweets = excluded.retweets,
    favorites = excluded.favorites
`

func (q *Queries) UpsertTweet(ctx context.Context, arg Tweet) error {
	_, err := q.db.ExecContext(
		ctx, upsertTweet,
		arg.ID,
		arg.Text,
		arg.UserID,
		arg.ScreenName,
		arg.DisplayName,
		arg.CreatedAtMs,
		arg.Retweets,
		arg.Favorites,
	)
	return err
}

const countTweets = `
SELECT COUNT(*) FROM tweet
`

func (q *Queries) CountTweets(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTweets)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listTweets = `
SELECT id, text, user_id, screen_name, display_name, created_at_ms, retweets, favorites
FROM tweet
ORDER BY created_at_ms DESC
LIMIT ?
`

func (q *Queries) ListTweets(ctx context.Context, limit int64) ([]Tweet, error) {
	rows, err := q.db.QueryContext(ctx, listTweets, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Tweet
	for rows.Next() {
		var i Tweet
		err := rows.Scan(
			&i.ID,
			&i.Text,
			&i.UserID,
			&i.ScreenName,
			&i.DisplayName,
			&i.CreatedAtMs,
			&i.Retweets,
			&i.Favorites,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

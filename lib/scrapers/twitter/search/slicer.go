package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// SearchRange splits the query into one sub-query per whole day in
// [since, until) using twitter's since:/until: search operators, and runs
// each sub-query through its own pagination loop on a pool of concurrency
// workers. The day slices are disjoint half-open intervals, so no dedup
// happens across them. It blocks until every sub-query has finished and
// returns the total number of tweets forwarded across all of them.
func (c *Client) SearchRange(ctx context.Context, query string, since, until time.Time, concurrency int, sink Sink) (int, error) {
	if !since.Before(until) {
		return 0, fmt.Errorf(
			"since (%s) must be before until (%s)",
			since.Format(time.DateOnly),
			until.Format(time.DateOnly),
		)
	}
	if concurrency < 1 {
		return 0, fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}

	ctx, span := tracer.Start(ctx, "SearchRange")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	days := int(until.Sub(since).Hours() / 24)

	var total atomic.Int64
	var errList []error
	errLock := sync.Mutex{}
	sem := make(chan struct{}, concurrency)
	wg := sync.WaitGroup{}

	for i := 0; i < days; i++ {
		dayQuery := fmt.Sprintf(
			"%s since:%s until:%s",
			query,
			since.AddDate(0, 0, i).Format(time.DateOnly),
			since.AddDate(0, 0, i+1).Format(time.DateOnly),
		)

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			n, err := c.Search(ctx, dayQuery, sink)
			total.Add(int64(n))
			if err != nil {
				slog.ErrorContext(ctx, "day slice aborted", "query", dayQuery, "err", err)
				errLock.Lock()
				errList = append(errList, err)
				errLock.Unlock()
			}
		}()
	}

	wg.Wait()

	span.SetAttributes(attribute.Int("tweets", int(total.Load())))
	return int(total.Load()), errors.Join(errList...)
}

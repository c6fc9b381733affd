package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"tweetharvest/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/twitter/search")

const DefaultBaseUrl = "https://twitter.com"

// without a recognized browser user agent the endpoint returns a profile
// card instead of the timeline payload
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/46.0.2490.86 Safari/537.36"

// Sink receives each non-empty page of results, in page order, before the
// next page is fetched. Returning false stops the search. A sink shared
// between SearchRange workers must be safe for concurrent calls.
type Sink func(tweets []Tweet) bool

type ClientOptions struct {
	// BaseUrl overrides the live endpoint, mostly useful in tests.
	BaseUrl string
	// UserAgent overrides the default browser user agent.
	UserAgent string
	// RateDelay is how long to pause between calls to twitter.
	RateDelay time.Duration
	// ErrorDelay is how long to pause when a fetch fails before retrying it.
	ErrorDelay time.Duration
}

type Client struct {
	baseUrl    string
	http       *resty.Client
	rateDelay  time.Duration
	errorDelay time.Duration
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	telemetry.InstrumentResty(client, "scrapers/twitter/http")

	return &Client{
		baseUrl:    baseUrl,
		http:       client,
		rateDelay:  opts.RateDelay,
		errorDelay: opts.ErrorDelay,
	}
}

// timelineResponse is the JSON envelope around a page of search results.
// items_html being empty or absent signals the end of the result set.
type timelineResponse struct {
	ItemsHTML   string `json:"items_html"`
	MinPosition string `json:"min_position"`
}

// fetchTimeline GETs the given search URL and decodes the envelope. Any
// failure, network, status or decode, is logged and retried on the same URL
// after the error delay, without an attempt limit. It only gives up when
// ctx is cancelled.
func (c *Client) fetchTimeline(ctx context.Context, link string) (timelineResponse, error) {
	for {
		res, err := c.http.R().SetContext(ctx).Get(link)
		if err == nil && !res.IsSuccess() {
			err = fmt.Errorf("search returned status %s", res.Status())
		}
		if err == nil {
			var body timelineResponse
			err = json.Unmarshal(res.Body(), &body)
			if err == nil {
				return body, nil
			}
		}

		slog.WarnContext(
			ctx, "search request failed, will retry",
			"url", link,
			"delay", c.errorDelay,
			"err", err,
		)

		if err := c.sleep(ctx, c.errorDelay); err != nil {
			return timelineResponse{}, err
		}
	}
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Search pages through all results for the query, forwarding each page to
// the sink until the result set is exhausted or the sink returns false.
// It returns the number of tweets forwarded. The returned error is non-nil
// only when ctx is cancelled mid-search.
func (c *Client) Search(ctx context.Context, query string, sink Sink) (int, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	var (
		count  int
		anchor Tweet
		cursor string
	)

	for {
		link := BuildSearchURL(c.baseUrl, query, cursor)
		res, err := c.fetchTimeline(ctx, link)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return count, err
		}

		tweets, err := ParseTweets(res.ItemsHTML)
		if err != nil {
			// an unparseable fragment is retried like a bad response
			slog.WarnContext(
				ctx, "failed to parse result fragment, will retry",
				"delay", c.errorDelay,
				"err", err,
			)
			if err := c.sleep(ctx, c.errorDelay); err != nil {
				return count, err
			}
			continue
		}
		if len(tweets) == 0 {
			break
		}

		// the first tweet of the first page anchors the synthesized cursor
		if anchor.ID == "" {
			anchor = tweets[0]
		}

		count += len(tweets)
		if !sink(tweets) {
			slog.DebugContext(ctx, "sink stopped search early", "query", query, "total", count)
			break
		}

		cursor = res.MinPosition
		if cursor == "" {
			last := tweets[len(tweets)-1]
			cursor = fmt.Sprintf("TWEET-%s-%s", last.ID, anchor.ID)
		}

		slog.DebugContext(
			ctx, "page forwarded",
			"query", query,
			"page_size", len(tweets),
			"total", count,
			"cursor", cursor,
		)

		if err := c.sleep(ctx, c.rateDelay); err != nil {
			return count, err
		}
	}

	span.SetAttributes(attribute.Int("tweets", count))
	return count, nil
}

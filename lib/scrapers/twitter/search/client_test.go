package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"tweetharvest/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func streamItem(id string) string {
	return fmt.Sprintf(
		`<li class="js-stream-item" data-item-id="%s"><p class="tweet-text">tweet %s</p></li>`,
		id, id,
	)
}

func itemsHTML(ids ...string) string {
	var sb strings.Builder
	sb.WriteString("<ul>")
	for _, id := range ids {
		sb.WriteString(streamItem(id))
	}
	sb.WriteString("</ul>")
	return sb.String()
}

func writeTimeline(t *testing.T, w http.ResponseWriter, body map[string]any) {
	t.Helper()
	w.Header().Set("content-type", "application/json")
	err := json.NewEncoder(w).Encode(body)
	require.NoError(t, err)
}

func pageIds(tweets []Tweet) []string {
	var ids []string
	for _, tweet := range tweets {
		ids = append(ids, tweet.ID)
	}
	return ids
}

func TestSearchPagination(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/twitter/search")
	defer cleanup()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.Equal(t, "/i/search/timeline", r.URL.Path)
		require.Contains(t, r.Header.Get("user-agent"), "Mozilla")

		query := r.URL.Query()
		require.Equal(t, "tweets", query.Get("f"))
		require.Equal(t, "babylon 5", query.Get("q"))

		switch query.Get("max_position") {
		case "":
			writeTimeline(t, w, map[string]any{
				"items_html":   itemsHTML("A", "B", "C"),
				"min_position": "X",
			})
		case "X":
			// no min_position here, the client has to synthesize the cursor
			writeTimeline(t, w, map[string]any{
				"items_html": itemsHTML("D", "E"),
			})
		case "TWEET-E-A":
			writeTimeline(t, w, map[string]any{
				"items_html": "",
			})
		default:
			t.Errorf("unexpected cursor %q", query.Get("max_position"))
			writeTimeline(t, w, map[string]any{"items_html": ""})
		}
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})

	var pages [][]string
	count, err := client.Search(context.Background(), "babylon 5", func(tweets []Tweet) bool {
		pages = append(pages, pageIds(tweets))
		return true
	})
	require.NoError(t, err)

	require.Equal(t, 5, count)
	require.Equal(t, [][]string{{"A", "B", "C"}, {"D", "E"}}, pages)
	require.Equal(t, 3, requests)
}

func TestSearchRetriesFailedFetch(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/twitter/search")
	defer cleanup()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		switch {
		case requests == 1:
			w.WriteHeader(http.StatusInternalServerError)
		case requests == 2:
			// undecodable body is retried just like a bad status
			fmt.Fprint(w, "<html>rate limited</html>")
		case r.URL.Query().Get("max_position") == "":
			writeTimeline(t, w, map[string]any{
				"items_html": itemsHTML("1"),
			})
		default:
			writeTimeline(t, w, map[string]any{"items_html": ""})
		}
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		BaseUrl:    server.URL,
		ErrorDelay: time.Millisecond,
	})

	var pages [][]string
	count, err := client.Search(context.Background(), "babylon 5", func(tweets []Tweet) bool {
		pages = append(pages, pageIds(tweets))
		return true
	})
	require.NoError(t, err)

	require.Equal(t, 1, count)
	require.Equal(t, [][]string{{"1"}}, pages)
	require.Equal(t, 4, requests)
}

func TestSearchStopsWhenSinkReturnsFalse(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/twitter/search")
	defer cleanup()

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeTimeline(t, w, map[string]any{
			"items_html":   itemsHTML("A", "B", "C"),
			"min_position": "X",
		})
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})

	count, err := client.Search(context.Background(), "babylon 5", func(tweets []Tweet) bool {
		return false
	})
	require.NoError(t, err)

	require.Equal(t, 3, count)
	require.Equal(t, 1, requests)
}

func TestSearchStopsOnCancelledContext(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/twitter/search")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(ClientOptions{
		BaseUrl:    server.URL,
		ErrorDelay: time.Hour,
	})

	var wg sync.WaitGroup
	var count int
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		count, err = client.Search(ctx, "babylon 5", func([]Tweet) bool { return true })
	}()

	cancel()
	wg.Wait()

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, count)
}

package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildSearchURL(t *testing.T) {
	link := BuildSearchURL(DefaultBaseUrl, "babylon 5", "")
	again := BuildSearchURL(DefaultBaseUrl, "babylon 5", "")
	require.Equal(t, link, again)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "twitter.com", parsed.Host)
	require.Equal(t, "/i/search/timeline", parsed.Path)

	query := parsed.Query()
	require.Equal(t, "tweets", query.Get("f"))
	require.Equal(t, "babylon 5", query.Get("q"))
	require.False(t, query.Has("max_position"))
}

func TestBuildSearchURLWithCursor(t *testing.T) {
	link := BuildSearchURL(DefaultBaseUrl, "babylon 5", "TWEET-100-300")

	parsed, err := url.Parse(link)
	require.NoError(t, err)

	query := parsed.Query()
	require.Equal(t, "tweets", query.Get("f"))
	require.Equal(t, "babylon 5", query.Get("q"))
	require.Equal(t, "TWEET-100-300", query.Get("max_position"))
}

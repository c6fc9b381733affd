package search

import "net/url"

const searchPath = "/i/search/timeline"

// BuildSearchURL constructs the timeline search URL for a query. The query
// takes the form of twitter's advanced search syntax and is passed through
// verbatim. maxPosition is the pagination cursor, omitted entirely when empty.
func BuildSearchURL(base, query, maxPosition string) string {
	params := url.Values{}
	params.Set("f", "tweets")
	params.Set("q", query)
	if maxPosition != "" {
		params.Set("max_position", maxPosition)
	}
	return base + searchPath + "?" + params.Encode()
}

package search

import (
	"strconv"
	"strings"
	"time"
	"tweetharvest/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Tweet is one entry of a search result page. Only ID is guaranteed to be
// set, every other field is zero-valued when the markup does not carry it.
type Tweet struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	UserID      string    `json:"user_id"`
	ScreenName  string    `json:"screen_name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	Retweets    int       `json:"retweets"`
	Favorites   int       `json:"favorites"`
}

// ParseTweets extracts tweets from the items_html fragment of a timeline
// response. Extraction is best effort per field, a stream item only needs
// its item id attribute to produce a Tweet.
func ParseTweets(itemsHTML string) ([]Tweet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(itemsHTML))
	if err != nil {
		return nil, err
	}

	var tweets []Tweet
	doc.Find("li.js-stream-item").Each(func(_ int, item *goquery.Selection) {
		id, ok := item.Attr("data-item-id")
		if !ok {
			// stream items without an id are ads or other non-tweet noise
			return
		}
		tweet := Tweet{ID: id}

		text := item.Find("p.tweet-text").First()
		if len(text.Nodes) > 0 {
			tweet.Text = htmlutil.GetText(text.Nodes[0])
		}

		user := item.Find("div.tweet").First()
		if len(user.Nodes) > 0 {
			tweet.UserID = user.AttrOr("data-user-id", "")
			tweet.ScreenName = user.AttrOr("data-screen-name", "")
			tweet.DisplayName = user.AttrOr("data-name", "")
		}

		msAttr := item.Find("span._timestamp").First().AttrOr("data-time-ms", "")
		ms, err := strconv.ParseFloat(msAttr, 64)
		if err == nil {
			tweet.CreatedAt = time.UnixMilli(int64(ms))
		}

		tweet.Retweets = actionCount(item, "retweet")
		tweet.Favorites = actionCount(item, "favorite")

		tweets = append(tweets, tweet)
	})

	return tweets, nil
}

func actionCount(item *goquery.Selection, action string) int {
	countAttr := item.
		Find("span.ProfileTweet-action--" + action + " > span.ProfileTweet-actionCount").
		First().
		AttrOr("data-tweet-stat-count", "")
	n, err := strconv.Atoi(countAttr)
	if err != nil {
		return 0
	}
	return n
}

package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const fullItem = `
<ul>
<li class="js-stream-item" data-item-id="783131958279921664">
  <div class="tweet" data-user-id="12345" data-screen-name="alice" data-name="Alice">
    <p class="tweet-text">no one here is <strong>exactly</strong> what he appears</p>
    <span class="_timestamp" data-time-ms="1475323200000"></span>
    <div class="ProfileTweet-actionList">
      <span class="ProfileTweet-action--retweet">
        <span class="ProfileTweet-actionCount" data-tweet-stat-count="42"></span>
      </span>
      <span class="ProfileTweet-action--favorite">
        <span class="ProfileTweet-actionCount" data-tweet-stat-count="7"></span>
      </span>
    </div>
  </div>
</li>
</ul>
`

func TestParseTweets(t *testing.T) {
	tweets, err := ParseTweets(fullItem)
	require.NoError(t, err)
	require.Len(t, tweets, 1)

	tweet := tweets[0]
	require.Equal(t, "783131958279921664", tweet.ID)
	require.Equal(t, "no one here is exactly what he appears", tweet.Text)
	require.Equal(t, "12345", tweet.UserID)
	require.Equal(t, "alice", tweet.ScreenName)
	require.Equal(t, "Alice", tweet.DisplayName)
	require.Equal(t, int64(1475323200000), tweet.CreatedAt.UnixMilli())
	require.Equal(t, 42, tweet.Retweets)
	require.Equal(t, 7, tweet.Favorites)
}

func TestParseTweetsEmptyFragment(t *testing.T) {
	tweets, err := ParseTweets("")
	require.NoError(t, err)
	require.Empty(t, tweets)

	tweets, err = ParseTweets(`<ul><li class="other-item">not a stream item</li></ul>`)
	require.NoError(t, err)
	require.Empty(t, tweets)
}

func TestParseTweetsSkipsItemsWithoutId(t *testing.T) {
	tweets, err := ParseTweets(`
<ul>
<li class="js-stream-item">
  <p class="tweet-text">promoted noise without an id</p>
</li>
<li class="js-stream-item" data-item-id="2"></li>
</ul>
`)
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	require.Equal(t, "2", tweets[0].ID)
}

func TestParseTweetsDefaultsOnMissingFields(t *testing.T) {
	tweets, err := ParseTweets(`
<ul>
<li class="js-stream-item" data-item-id="99">
  <span class="_timestamp" data-time-ms="not-a-number"></span>
  <span class="ProfileTweet-action--retweet">
    <span class="ProfileTweet-actionCount" data-tweet-stat-count="many"></span>
  </span>
</li>
</ul>
`)
	require.NoError(t, err)
	require.Len(t, tweets, 1)

	tweet := tweets[0]
	require.Equal(t, "99", tweet.ID)
	require.Empty(t, tweet.Text)
	require.Empty(t, tweet.UserID)
	require.Empty(t, tweet.ScreenName)
	require.Empty(t, tweet.DisplayName)
	require.True(t, tweet.CreatedAt.IsZero())
	require.Equal(t, 0, tweet.Retweets)
	require.Equal(t, 0, tweet.Favorites)
}

func TestParseTweetsPreservesOrder(t *testing.T) {
	tweets, err := ParseTweets(`
<ul>
<li class="js-stream-item" data-item-id="3"></li>
<li class="js-stream-item" data-item-id="1"></li>
<li class="js-stream-item" data-item-id="2"></li>
</ul>
`)
	require.NoError(t, err)

	var ids []string
	for _, tweet := range tweets {
		ids = append(ids, tweet.ID)
	}
	require.Equal(t, []string{"3", "1", "2"}, ids)
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultRedditBaseURL = "https://www.reddit.com"

// Reddit collects posts from the discussion-forum API. A source-native
// engagement threshold is applied at fetch time and a fixed pause is
// inserted between communities to stay under the public rate limit.
type Reddit struct {
	client        *http.Client
	baseURL       string
	subreddits    []string
	minEngagement int
	perSub        int
	reputation    float64
	betweenCall   time.Duration
}

// NewReddit creates the forum adapter.
func NewReddit(subreddits []string, minEngagement int, reputation float64) *Reddit {
	if minEngagement <= 0 {
		minEngagement = 100
	}
	return &Reddit{
		client:        &http.Client{Timeout: 15 * time.Second},
		baseURL:       defaultRedditBaseURL,
		subreddits:    subreddits,
		minEngagement: minEngagement,
		perSub:        15,
		reputation:    reputation,
		betweenCall:   time.Second,
	}
}

func (r *Reddit) Name() string   { return "reddit" }
func (r *Reddit) Family() Family { return FamilyForum }

func (r *Reddit) Collect(ctx context.Context) ([]Item, error) {
	var all []Item
	for i, sub := range r.subreddits {
		if i > 0 {
			pause(ctx, r.betweenCall)
		}
		items, err := r.fetchSubreddit(ctx, sub)
		if err != nil {
			log.Warn().Str("subreddit", sub).Err(err).Msg("forum fetch failed")
			continue
		}
		all = append(all, items...)
	}
	return all, nil
}

func (r *Reddit) fetchSubreddit(ctx context.Context, subreddit string) ([]Item, error) {
	reqURL := fmt.Sprintf("%s/r/%s/hot.json?limit=25", r.baseURL, subreddit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create forum request r/%s: %w", subreddit, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("r/%s status %d", subreddit, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s: %w", subreddit, err)
	}

	var items []Item
	for _, child := range listing.Data.Children {
		if len(items) >= r.perSub {
			break
		}
		post := child.Data
		if post.Stickied || post.Score < r.minEngagement {
			continue
		}

		permalink := "https://reddit.com" + post.Permalink
		postURL := post.URL
		if postURL == "" || strings.HasPrefix(postURL, "/r/") {
			postURL = permalink
		}
		if post.Title == "" {
			continue
		}

		description := Truncate(StripMarkup(post.Selftext), DescriptionLimit)
		if description == "" {
			description = fmt.Sprintf("From r/%s with %d comments.", subreddit, post.NumComments)
		}

		items = append(items, Item{
			ID:               DeriveID(postURL),
			Title:            StripMarkup(post.Title),
			Description:      description,
			URL:              postURL,
			Source:           "r/" + subreddit,
			SourceReputation: r.reputation,
			PublishedAt:      time.Unix(int64(post.CreatedUTC), 0).UTC(),
			ContentType:      TypeArticle,
			Family:           FamilyForum,
			Engagement:       post.Score,
			ThumbnailURL:     postThumbnail(post.Thumbnail),
		})
	}
	return items, nil
}

// postThumbnail filters out the sentinel values the listing API uses in
// place of a real image URL.
func postThumbnail(raw string) string {
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return ""
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
	Thumbnail   string  `json:"thumbnail"`
}

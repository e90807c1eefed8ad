package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultHNBaseURL = "https://hacker-news.firebaseio.com/v0"

// HackerNews collects stories from the link-aggregator API. Fetching a
// story detail is a per-item network call, so the lookback window is
// bounded and the native score threshold is applied before the classifier
// ever sees an item.
type HackerNews struct {
	client      *http.Client
	baseURL     string
	limit       int
	minScore    int
	keywords    []string
	reputation  float64
	betweenCall time.Duration
}

// NewHackerNews creates the link-aggregator adapter. keywords gate
// admission at fetch time; minScore is the source-native threshold.
func NewHackerNews(limit, minScore int, keywords []string, reputation float64) *HackerNews {
	if limit <= 0 {
		limit = 20
	}
	if minScore <= 0 {
		minScore = 50
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &HackerNews{
		client:      &http.Client{Timeout: 15 * time.Second},
		baseURL:     defaultHNBaseURL,
		limit:       limit,
		minScore:    minScore,
		keywords:    lowered,
		reputation:  reputation,
		betweenCall: 100 * time.Millisecond,
	}
}

func (h *HackerNews) Name() string   { return "hackernews" }
func (h *HackerNews) Family() Family { return FamilyAggregator }

func (h *HackerNews) Collect(ctx context.Context) ([]Item, error) {
	ids, err := h.fetchTopStories(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) > h.limit {
		ids = ids[:h.limit]
	}

	var items []Item
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			pause(ctx, h.betweenCall)
		}
		story, err := h.fetchItem(ctx, id)
		if err != nil || story == nil {
			continue
		}

		matched := h.matchKeywords(story.Title)
		if len(matched) == 0 || story.Score < h.minScore {
			continue
		}

		url := story.URL
		if url == "" {
			url = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
		}

		items = append(items, Item{
			ID:               DeriveID(url),
			Title:            story.Title,
			Description:      fmt.Sprintf("Discussed on Hacker News with %d comments.", story.Descendants),
			URL:              url,
			Source:           "Hacker News",
			SourceReputation: h.reputation,
			PublishedAt:      time.Unix(story.Time, 0).UTC(),
			ContentType:      TypeArticle,
			Family:           FamilyAggregator,
			Engagement:       story.Score,
			MatchedKeywords:  matched,
		})
	}
	return items, nil
}

func (h *HackerNews) matchKeywords(title string) []string {
	lower := strings.ToLower(title)
	var matched []string
	for _, kw := range h.keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func (h *HackerNews) fetchTopStories(ctx context.Context) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/topstories.json", nil)
	if err != nil {
		return nil, fmt.Errorf("create topstories request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch topstories: %w", err)
	}
	defer resp.Body.Close()

	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("decode topstories: %w", err)
	}
	return ids, nil
}

type hnStory struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
	Type        string `json:"type"`
}

func (h *HackerNews) fetchItem(ctx context.Context, id int) (*hnStory, error) {
	url := fmt.Sprintf("%s/item/%d.json", h.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create item request %d: %w", id, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch item %d: %w", id, err)
	}
	defer resp.Body.Close()

	var story hnStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return nil, fmt.Errorf("decode item %d: %w", id, err)
	}
	if story.Type != "story" {
		return nil, nil
	}
	return &story, nil
}

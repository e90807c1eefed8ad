package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func redditFixture(posts []redditPost) redditListing {
	var listing redditListing
	for _, p := range posts {
		listing.Data.Children = append(listing.Data.Children, struct {
			Data redditPost `json:"data"`
		}{Data: p})
	}
	return listing
}

func TestRedditCollect(t *testing.T) {
	t.Parallel()

	created := float64(time.Now().Add(-2 * time.Hour).Unix())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/r/LocalLLaMA/hot.json") {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(redditFixture([]redditPost{
			{Title: "Pinned rules", Score: 9999, Stickied: true, CreatedUTC: created},
			{Title: "Fine-tuning guide", URL: "https://example.com/ft", Score: 450, NumComments: 80, CreatedUTC: created, Thumbnail: "https://cdn.example.com/t.png"},
			{Title: "Low effort meme", URL: "https://example.com/meme", Score: 12, CreatedUTC: created},
			{Title: "Self post", Permalink: "/r/LocalLLaMA/comments/abc/self_post/", URL: "/r/LocalLLaMA/comments/abc/self_post/", Selftext: "<p>Body text</p>", Score: 300, NumComments: 5, CreatedUTC: created, Thumbnail: "self"},
		}))
	}))
	defer server.Close()

	rd := NewReddit([]string{"LocalLLaMA"}, 100, 0.7)
	rd.baseURL = server.URL
	rd.betweenCall = 0

	items, err := rd.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	guide := items[0]
	if guide.Source != "r/LocalLLaMA" {
		t.Fatalf("unexpected source: %s", guide.Source)
	}
	if guide.ThumbnailURL != "https://cdn.example.com/t.png" {
		t.Fatalf("unexpected thumbnail: %s", guide.ThumbnailURL)
	}
	if guide.Engagement != 450 {
		t.Fatalf("unexpected engagement: %d", guide.Engagement)
	}

	self := items[1]
	if !strings.HasPrefix(self.URL, "https://reddit.com/r/LocalLLaMA/") {
		t.Fatalf("self post url not rewritten to permalink: %s", self.URL)
	}
	if self.Description != "Body text" {
		t.Fatalf("selftext not stripped: %q", self.Description)
	}
	if self.ThumbnailURL != "" {
		t.Fatalf("sentinel thumbnail not filtered: %q", self.ThumbnailURL)
	}
}

func TestRedditCollectSubredditFailureIsolated(t *testing.T) {
	t.Parallel()

	created := float64(time.Now().Unix())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/r/broken/") {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(redditFixture([]redditPost{
			{Title: "Working post", URL: "https://example.com/ok", Score: 200, CreatedUTC: created},
		}))
	}))
	defer server.Close()

	rd := NewReddit([]string{"broken", "working"}, 100, 0.7)
	rd.baseURL = server.URL
	rd.betweenCall = 0

	items, err := rd.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Working post" {
		t.Fatalf("expected the working subreddit's post, got %+v", items)
	}
}

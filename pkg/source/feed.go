package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
)

// FeedSpec is a single syndicated feed: an engineering blog, a video
// channel feed, or a podcast feed.
type FeedSpec struct {
	Name        string
	URL         string
	Reputation  float64
	ContentType ContentType // TypeArticle, TypeVideo or TypePodcast
}

// Feeds collects items from syndicated RSS/Atom feeds.
type Feeds struct {
	client      *http.Client
	parser      *gofeed.Parser
	feeds       []FeedSpec
	maxEntries  int
	podcastCap  int
	betweenCall time.Duration
	now         func() time.Time
}

// NewFeeds creates the feed-family adapter.
func NewFeeds(feeds []FeedSpec) *Feeds {
	return &Feeds{
		client:      &http.Client{Timeout: 15 * time.Second},
		parser:      gofeed.NewParser(),
		feeds:       feeds,
		maxEntries:  15,
		podcastCap:  5,
		betweenCall: 300 * time.Millisecond,
		now:         time.Now,
	}
}

func (f *Feeds) Name() string   { return "feeds" }
func (f *Feeds) Family() Family { return FamilyFeed }

func (f *Feeds) Collect(ctx context.Context) ([]Item, error) {
	var all []Item
	for i, spec := range f.feeds {
		if i > 0 {
			pause(ctx, f.betweenCall)
		}
		items, err := f.collectFeed(ctx, spec)
		if err != nil {
			log.Warn().Str("feed", spec.Name).Err(err).Msg("feed fetch failed")
			continue
		}
		all = append(all, items...)
	}
	return all, nil
}

func (f *Feeds) collectFeed(ctx context.Context, spec FeedSpec) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", spec.Name, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", spec.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", spec.Name, resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", spec.Name, err)
	}

	limit := f.maxEntries
	if spec.ContentType == TypePodcast {
		limit = f.podcastCap
	}

	var items []Item
	for _, entry := range parsed.Items {
		if len(items) >= limit {
			break
		}
		item, ok := f.normalizeEntry(entry, spec)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *Feeds) normalizeEntry(entry *gofeed.Item, spec FeedSpec) (Item, bool) {
	link := entry.Link
	if link == "" && len(entry.Links) > 0 {
		link = entry.Links[0]
	}
	title := StripMarkup(entry.Title)
	if title == "" || link == "" {
		return Item{}, false // cannot be deduplicated or displayed
	}

	now := f.now().UTC()
	published := now
	guessed := false
	switch {
	case entry.PublishedParsed != nil:
		published = entry.PublishedParsed.UTC()
	case entry.UpdatedParsed != nil:
		published = entry.UpdatedParsed.UTC()
	default:
		published, guessed = ParseTime(entry.Published, now)
	}

	raw := entry.Description
	if raw == "" {
		raw = entry.Content
	}

	thumbnail := ""
	if entry.Image != nil {
		thumbnail = entry.Image.URL
	}
	if thumbnail == "" {
		thumbnail = ExtractThumbnail(entry.Content)
	}
	if thumbnail == "" {
		thumbnail = ExtractThumbnail(entry.Description)
	}

	videoURL := ""
	if YouTubeVideoID(link) != "" {
		videoURL = link
		if thumbnail == "" {
			thumbnail = YouTubeThumbnail(link)
		}
	}

	duration := ""
	if spec.ContentType == TypePodcast && entry.ITunesExt != nil {
		duration = entry.ITunesExt.Duration
	}

	return Item{
		ID:               DeriveID(link),
		Title:            title,
		Description:      Truncate(StripMarkup(raw), DescriptionLimit),
		URL:              link,
		Source:           spec.Name,
		SourceReputation: spec.Reputation,
		PublishedAt:      published,
		PublishedGuessed: guessed,
		ContentType:      spec.ContentType,
		Family:           FamilyFeed,
		ThumbnailURL:     thumbnail,
		VideoURL:         videoURL,
		PodcastDuration:  duration,
	}, true
}

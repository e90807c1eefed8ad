package source

import (
	"context"
	"time"
)

// Family identifies the origin mechanism of an item.
type Family string

const (
	FamilyFeed       Family = "feed"
	FamilyAggregator Family = "aggregator"
	FamilyForum      Family = "forum"
	FamilyCurated    Family = "curated-list"
)

// ContentType identifies what kind of content an item is.
type ContentType string

const (
	TypeArticle      ContentType = "article"
	TypeVideo        ContentType = "video"
	TypePodcast      ContentType = "podcast"
	TypeSocialPost   ContentType = "social-post"
	TypeCuratedSkill ContentType = "curated-skill"
)

// Category is assigned by the classifier. The set is closed; the
// classifier never emits a value outside it.
type Category string

const (
	CategoryTutorial Category = "tutorial"
	CategoryDeepDive Category = "deep-dive"
	CategoryTool     Category = "tool"
	CategoryResearch Category = "research"
	CategoryBusiness Category = "business"
	CategoryPodcast  Category = "podcast"
	CategorySocial   Category = "social"
	CategoryNews     Category = "news"
	CategorySkill    Category = "skill"
)

// Item is the canonical unit flowing through the pipeline. Adapters fill
// the ingestion fields; the classifier sets Category, the scorer sets
// Score and MatchedKeywords, and Score is read-only after that.
type Item struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	URL              string      `json:"url"`
	Source           string      `json:"source"`
	SourceReputation float64     `json:"-"`
	PublishedAt      time.Time   `json:"published_at"`
	PublishedGuessed bool        `json:"-"` // no timestamp format matched; PublishedAt is ingestion time
	ContentType      ContentType `json:"content_type"`
	Family           Family      `json:"-"`
	Category         Category    `json:"category"`
	ThumbnailURL     string      `json:"thumbnail_url,omitempty"`
	VideoURL         string      `json:"video_url,omitempty"`
	PodcastDuration  string      `json:"podcast_duration,omitempty"`
	Engagement       int         `json:"engagement"`
	MatchedKeywords  []string    `json:"matched_keywords,omitempty"`
	Score            float64     `json:"-"`
	DisplayScore     int         `json:"score"`
}

// Source is the interface every adapter must implement. Collect degrades
// to an empty slice on fetch or parse failure of individual entries; a
// returned error means the source yielded nothing this run and is never
// fatal to the pipeline.
type Source interface {
	Name() string
	Family() Family
	Collect(ctx context.Context) ([]Item, error)
}

const userAgent = "venturedigest/2.1"

// pause sleeps for d unless ctx is cancelled first. Used between
// consecutive calls to rate-limited APIs.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

package curate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/venturedigest/venturedigest/pkg/source"
)

// ErrConfig marks the one terminal failure class: curation cannot proceed
// without its thresholds and weights.
var ErrConfig = errors.New("curation configuration missing")

// Thresholds are the externally supplied filter settings.
type Thresholds struct {
	MinScore      float64
	MaxAge        time.Duration
	MaxPerSource  int
	MaxItems      int
	RetentionDays int
	SocialLimit   int
}

// DefaultThresholds returns the tuned filter settings.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinScore:      40,
		MaxAge:        48 * time.Hour,
		MaxPerSource:  3,
		MaxItems:      30,
		RetentionDays: 30,
		SocialLimit:   5,
	}
}

// History is the persistent seen-URL ledger consulted by the
// deduplicator. Read and write failures are never fatal to a run.
type History interface {
	// Seen returns the url -> last-shown date (YYYY-MM-DD) mapping.
	Seen(ctx context.Context) (map[string]string, error)
	// Record marks urls as shown on day (YYYY-MM-DD).
	Record(ctx context.Context, urls []string, day string) error
	// Prune removes entries last shown before cutoff (YYYY-MM-DD).
	Prune(ctx context.Context, cutoff string) error
}

// Digest is the day's output bundle consumed by rendering and delivery.
type Digest struct {
	GeneratedAt     time.Time               `json:"generated_at"`
	ItemCount       int                     `json:"item_count"`
	Items           []source.Item           `json:"items"`
	QuickWins       []QuickWin              `json:"quick_wins"`
	FeaturedEpisode *source.Item            `json:"featured_episode,omitempty"`
	SocialPosts     []source.Item           `json:"social_posts"`
	Categories      map[source.Category]int `json:"categories"`
}

// Pipeline is the single synchronous entry point: collect, normalize,
// classify, score, deduplicate, diversify, aggregate, record. It runs to
// completion once per invocation; failures in any single source or item
// are isolated and never halt the run.
type Pipeline struct {
	sources    []source.Source
	classifier *Classifier
	scorer     *Scorer
	thresholds Thresholds
	history    History
	now        func() time.Time
}

// New wires a pipeline. A nil history is allowed and behaves as an empty
// ledger; absent thresholds or components are a configuration failure.
func New(sources []source.Source, classifier *Classifier, scorer *Scorer, thresholds Thresholds, history History) (*Pipeline, error) {
	if classifier == nil || scorer == nil {
		return nil, fmt.Errorf("%w: classifier and scorer are required", ErrConfig)
	}
	if thresholds.MaxItems <= 0 || thresholds.MaxPerSource <= 0 || thresholds.MaxAge <= 0 {
		return nil, fmt.Errorf("%w: filter thresholds are required", ErrConfig)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", ErrConfig)
	}
	if thresholds.SocialLimit <= 0 {
		thresholds.SocialLimit = 5
	}
	return &Pipeline{
		sources:    sources,
		classifier: classifier,
		scorer:     scorer,
		thresholds: thresholds,
		history:    history,
		now:        time.Now,
	}, nil
}

// Run executes one curation pass and returns the day's bundle. The only
// errors it returns wrap ErrConfig; everything else degrades locally.
func (p *Pipeline) Run(ctx context.Context) (*Digest, error) {
	now := p.now().UTC()

	raw := p.collect(ctx)
	raw = uniqueByURL(raw)
	raw = p.filterByAge(raw, now)

	admitted := raw[:0]
	for i := range raw {
		if p.classifier.Classify(&raw[i]) {
			admitted = append(admitted, raw[i])
		}
	}

	scored := admitted[:0]
	for i := range admitted {
		if p.scorer.Score(&admitted[i]) >= p.thresholds.MinScore {
			scored = append(scored, admitted[i])
		}
	}

	seen := p.loadHistory(ctx)
	pool := dropSeen(scored, seen)
	sortByScore(pool)

	// Secondary views come from the full ranked pool so the diversity cap
	// cannot starve them.
	vocab := p.classifier.Vocab()
	wins := quickWins(pool, vocab.ShortIndicators)
	featured := featuredEpisode(pool)
	social, socialFallback := topSocial(pool, p.thresholds.SocialLimit, vocab.Shipping)

	final := capBySource(pool, p.thresholds.MaxPerSource)
	if len(final) > p.thresholds.MaxItems {
		final = final[:p.thresholds.MaxItems]
	}

	categories := make(map[source.Category]int)
	for _, it := range final {
		categories[it.Category]++
	}

	setDisplayScores(final)
	setDisplayScores(social)
	if featured != nil {
		featured.DisplayScore = int(math.Round(featured.Score))
	}

	digest := &Digest{
		GeneratedAt:     now,
		ItemCount:       len(final),
		Items:           final,
		QuickWins:       wins,
		FeaturedEpisode: featured,
		SocialPosts:     social,
		Categories:      categories,
	}

	p.updateHistory(ctx, digest, socialFallback, now)
	log.Info().
		Int("items", len(final)).
		Int("quick_wins", len(wins)).
		Int("social_posts", len(social)).
		Msg("curation run complete")
	return digest, nil
}

// Sources exposes the configured adapters for status endpoints.
func (p *Pipeline) Sources() []source.Source { return p.sources }

func (p *Pipeline) collect(ctx context.Context) []source.Item {
	var all []source.Item
	for _, src := range p.sources {
		items, err := src.Collect(ctx)
		if err != nil {
			log.Warn().Str("source", src.Name()).Err(err).Msg("source yielded nothing")
			continue
		}
		log.Debug().Str("source", src.Name()).Int("items", len(items)).Msg("collected")
		all = append(all, items...)
	}
	return all
}

func (p *Pipeline) filterByAge(items []source.Item, now time.Time) []source.Item {
	cutoff := now.Add(-p.thresholds.MaxAge)
	out := items[:0]
	for _, it := range items {
		if it.PublishedAt.Before(cutoff) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (p *Pipeline) loadHistory(ctx context.Context) map[string]string {
	if p.history == nil {
		return nil
	}
	seen, err := p.history.Seen(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("history unreadable, treating as empty")
		return nil
	}
	return seen
}

// updateHistory records every non-exempt item of the day's output under
// the current date, then prunes entries older than the retention window
// so the ledger stays bounded regardless of run frequency.
func (p *Pipeline) updateHistory(ctx context.Context, d *Digest, socialFallback bool, now time.Time) {
	if p.history == nil {
		return
	}

	var urls []string
	for _, it := range d.Items {
		if it.ContentType != source.TypeCuratedSkill {
			urls = append(urls, it.URL)
		}
	}
	for _, qw := range d.QuickWins {
		if !qw.Exempt {
			urls = append(urls, qw.URL)
		}
	}
	if d.FeaturedEpisode != nil {
		urls = append(urls, d.FeaturedEpisode.URL)
	}
	if !socialFallback {
		for _, post := range d.SocialPosts {
			urls = append(urls, post.URL)
		}
	}

	day := now.Format("2006-01-02")
	if err := p.history.Record(ctx, urls, day); err != nil {
		log.Warn().Err(err).Msg("history write failed")
		return
	}
	cutoff := now.AddDate(0, 0, -p.thresholds.RetentionDays).Format("2006-01-02")
	if err := p.history.Prune(ctx, cutoff); err != nil {
		log.Warn().Err(err).Msg("history prune failed")
	}
}

func setDisplayScores(items []source.Item) {
	for i := range items {
		items[i].DisplayScore = int(math.Round(items[i].Score))
	}
}

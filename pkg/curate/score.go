package curate

import (
	"math"
	"strings"
	"time"

	"github.com/venturedigest/venturedigest/pkg/source"
)

const (
	// relevanceNorm saturates relevance: 3+ keyword hits already count
	// as fully relevant.
	relevanceNorm = 3.0
	// engagementNorm normalizes raw upvote counts before weighting.
	engagementNorm = 1000.0
	// neutralRecency is the partial credit for items whose timestamp
	// could not be parsed, so a formatting failure neither penalizes
	// nor boosts.
	neutralRecency = 0.3
)

// Weights are the externally supplied scoring coefficients.
type Weights struct {
	Reputation  float64
	Relevance   float64
	Recency     float64
	Engagement  float64
	StrongBonus float64
	Bonuses     map[source.Category]float64
}

// DefaultWeights returns the tuned coefficient set.
func DefaultWeights() Weights {
	return Weights{
		Reputation:  0.25,
		Relevance:   0.25,
		Recency:     0.20,
		Engagement:  0.30,
		StrongBonus: 0.10,
		Bonuses: map[source.Category]float64{
			source.CategoryTutorial: 0.25,
			source.CategoryDeepDive: 0.20,
			source.CategorySkill:    0.20,
			source.CategoryTool:     0.15,
			source.CategoryPodcast:  0.12,
			source.CategorySocial:   0.05,
			source.CategoryResearch: 0.05,
		},
	}
}

// Scorer computes the unitless quality score. The formula is additive so
// a single weak signal degrades rather than zeroes the total.
type Scorer struct {
	weights Weights
	topics  []string
	strong  []string
	maxAge  time.Duration
	now     func() time.Time
}

// NewScorer builds a scorer over the configured topic keywords. maxAge
// bounds the linear recency decay.
func NewScorer(weights Weights, topics []string, strong []string, maxAge time.Duration) *Scorer {
	if len(topics) == 0 {
		topics = DefaultTopics()
	}
	if len(strong) == 0 {
		strong = []string{"step by step", "from scratch", "complete guide", "hands-on"}
	}
	lowered := make([]string, len(topics))
	for i, t := range topics {
		lowered[i] = strings.ToLower(t)
	}
	strongLowered := make([]string, len(strong))
	for i, s := range strong {
		strongLowered[i] = strings.ToLower(s)
	}
	if maxAge <= 0 {
		maxAge = 48 * time.Hour
	}
	return &Scorer{
		weights: weights,
		topics:  lowered,
		strong:  strongLowered,
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Score computes and stores it.Score, always in [0, 100], and records the
// matched relevance keywords. It mutates the item exactly once.
func (s *Scorer) Score(it *source.Item) float64 {
	text := strings.ToLower(it.Title + " " + it.Description)

	var matched []string
	for _, topic := range s.topics {
		if strings.Contains(text, topic) {
			matched = append(matched, topic)
		}
	}
	it.MatchedKeywords = matched
	relevance := math.Min(float64(len(matched))/relevanceNorm, 1.0)

	recency := neutralRecency
	if !it.PublishedGuessed {
		age := s.now().Sub(it.PublishedAt)
		recency = 1 - age.Seconds()/s.maxAge.Seconds()
		recency = math.Max(0, math.Min(1, recency))
	}

	engagement := math.Min(float64(it.Engagement)/engagementNorm, 1.0)

	raw := it.SourceReputation*s.weights.Reputation +
		relevance*s.weights.Relevance +
		s.weights.Bonuses[it.Category] +
		recency*s.weights.Recency +
		engagement*s.weights.Engagement

	if containsAny(text, s.strong) {
		raw += s.weights.StrongBonus
	}

	score := math.Max(0, math.Min(100, raw*100))
	it.Score = score
	return score
}

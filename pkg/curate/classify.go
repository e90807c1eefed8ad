package curate

import (
	"strings"

	"github.com/venturedigest/venturedigest/pkg/source"
)

// Classifier decides admission per content family and assigns the coarse
// category. All matching is case-folded substring containment over the
// concatenated title and description.
type Classifier struct {
	vocab Vocabulary
}

// NewClassifier builds a classifier from v, filling empty lists with the
// defaults and lowercasing everything once.
func NewClassifier(v Vocabulary) *Classifier {
	def := DefaultVocabulary()
	fill := func(list, fallback []string) []string {
		if len(list) == 0 {
			list = fallback
		}
		out := make([]string, len(list))
		for i, kw := range list {
			out[i] = strings.ToLower(kw)
		}
		return out
	}
	return &Classifier{vocab: Vocabulary{
		Actionable:       fill(v.Actionable, def.Actionable),
		StrongActionable: fill(v.StrongActionable, def.StrongActionable),
		HardExclude:      fill(v.HardExclude, def.HardExclude),
		SoftExclude:      fill(v.SoftExclude, def.SoftExclude),
		Tools:            fill(v.Tools, def.Tools),
		Announcement:     fill(v.Announcement, def.Announcement),
		RelevantTopics:   fill(v.RelevantTopics, def.RelevantTopics),
		ExcludeTopics:    fill(v.ExcludeTopics, def.ExcludeTopics),
		Shipping:         fill(v.Shipping, def.Shipping),
		ShortIndicators:  fill(v.ShortIndicators, def.ShortIndicators),
	}}
}

// Vocab exposes the resolved keyword sets (lowercased, defaults applied).
func (c *Classifier) Vocab() Vocabulary { return c.vocab }

func containsAny(text string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Actionable reports whether text teaches how to do something rather
// than announcing news. Hard excludes always fail. Soft excludes
// (generic news/opinion words) block acceptance unless a strong
// actionable phrase is also present, which is what lets "how I built X"
// pass while "my thoughts on the new model" does not.
func (c *Classifier) Actionable(text string) bool {
	if containsAny(text, c.vocab.HardExclude) {
		return false
	}
	hasActionable := containsAny(text, c.vocab.Actionable)
	if !hasActionable {
		return false
	}
	if containsAny(text, c.vocab.SoftExclude) {
		return containsAny(text, c.vocab.StrongActionable)
	}
	return true
}

// ToolMention reports whether text names a builder tool without being a
// product-announcement piece.
func (c *Classifier) ToolMention(text string) bool {
	return containsAny(text, c.vocab.Tools) && !containsAny(text, c.vocab.Announcement)
}

// Relevant reports whether text touches an allowed topic and none of the
// denied ones.
func (c *Classifier) Relevant(text string) bool {
	return containsAny(text, c.vocab.RelevantTopics) && !containsAny(text, c.vocab.ExcludeTopics)
}

// categorySignals backs the fallback categorization of aggregator and
// forum items that are relevant but neither actionable nor tool content.
var categorySignals = []struct {
	category source.Category
	signals  []string
}{
	{source.CategoryTutorial, []string{"how to", "tutorial", "guide", "case study", "built"}},
	{source.CategoryTool, []string{"tool", "api", "sdk", "library", "framework", "release", "launch"}},
	{source.CategoryResearch, []string{"paper", "arxiv", "study", "research", "findings", "breakthrough"}},
	{source.CategoryBusiness, []string{"funding", "startup", "investment", "valuation", "acquisition"}},
}

func detectCategory(text string) source.Category {
	best := source.CategoryNews
	bestCount := 0
	for _, cs := range categorySignals {
		count := 0
		for _, sig := range cs.signals {
			if strings.Contains(text, sig) {
				count++
			}
		}
		if count > bestCount {
			best = cs.category
			bestCount = count
		}
	}
	return best
}

// Classify runs the admission tests for its content family and assigns
// Category. It returns false when the item must be dropped. Test order is
// policy: actionable educational content outranks tool-announcement
// content when an item would satisfy both.
func (c *Classifier) Classify(it *source.Item) bool {
	if it.ContentType == source.TypeCuratedSkill {
		if it.Category == "" {
			it.Category = source.CategorySkill
		}
		return true
	}

	text := strings.ToLower(it.Title + " " + it.Description)

	// Funding/M&A and the rest of the hard-exclude vocabulary never pass,
	// whatever else the text contains.
	if containsAny(text, c.vocab.HardExclude) {
		return false
	}

	switch it.ContentType {
	case source.TypePodcast:
		if !c.Relevant(text) {
			return false
		}
		it.Category = source.CategoryPodcast
		return true

	case source.TypeSocialPost:
		if !c.Relevant(text) {
			return false
		}
		it.Category = source.CategorySocial
		return true

	case source.TypeVideo:
		switch {
		case c.Actionable(text):
			it.Category = source.CategoryTutorial
		case c.ToolMention(text):
			it.Category = source.CategoryTool
		default:
			return false
		}
		return true

	default: // articles
		if it.Family == source.FamilyFeed {
			switch {
			case c.Actionable(text):
				it.Category = source.CategoryDeepDive
			case c.ToolMention(text):
				it.Category = source.CategoryTool
			default:
				return false
			}
			return true
		}
		// Aggregator/forum items passed a keyword or engagement gate at
		// fetch time; re-check topical relevance, then fall back to the
		// signal table instead of dropping.
		if !c.Relevant(text) {
			return false
		}
		switch {
		case c.Actionable(text):
			it.Category = source.CategoryDeepDive
		case c.ToolMention(text):
			it.Category = source.CategoryTool
		default:
			it.Category = detectCategory(text)
		}
		return true
	}
}

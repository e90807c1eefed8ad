package curate

import (
	"sort"
	"strings"

	"github.com/venturedigest/venturedigest/pkg/source"
)

// uniqueByURL keeps the first occurrence of every URL within a run.
func uniqueByURL(items []source.Item) []source.Item {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if it.URL == "" {
			continue
		}
		if _, dup := seen[it.URL]; dup {
			continue
		}
		seen[it.URL] = struct{}{}
		out = append(out, it)
	}
	return out
}

// dropSeen removes items already shown in prior runs. Curated skills are
// exempt: their value is persistent reference material, not novelty.
func dropSeen(items []source.Item, history map[string]string) []source.Item {
	if len(history) == 0 {
		return items
	}
	out := items[:0]
	for _, it := range items {
		if _, shown := history[it.URL]; shown && it.ContentType != source.TypeCuratedSkill {
			continue
		}
		out = append(out, it)
	}
	return out
}

// sortByScore orders descending by score; the stable sort preserves the
// original discovery order as the tie-break.
func sortByScore(items []source.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

// capBySource walks the ranked sequence admitting at most maxPerSource
// items per source, so no single prolific source can crowd out the rest.
func capBySource(items []source.Item, maxPerSource int) []source.Item {
	if maxPerSource <= 0 {
		return items
	}
	counts := make(map[string]int)
	out := make([]source.Item, 0, len(items))
	for _, it := range items {
		counts[it.Source]++
		if counts[it.Source] <= maxPerSource {
			out = append(out, it)
		}
	}
	return out
}

// QuickWin is a short, immediately actionable pick surfaced alongside the
// main list.
type QuickWin struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	VideoURL    string `json:"video_url,omitempty"`
	Exempt      bool   `json:"-"` // curated-skill picks are never recorded in history
}

func quickWinFrom(it source.Item, winType, label string) QuickWin {
	return QuickWin{
		Type:        winType,
		Label:       label,
		Title:       source.Truncate(it.Title, 80),
		Description: source.Truncate(it.Description, 120),
		URL:         it.URL,
		Source:      it.Source,
		VideoURL:    it.VideoURL,
		Exempt:      it.ContentType == source.TypeCuratedSkill,
	}
}

func bestOf(pool []source.Item, match func(source.Item) bool) (source.Item, bool) {
	var best source.Item
	found := false
	for _, it := range pool {
		if !match(it) {
			continue
		}
		if !found || it.Score > best.Score {
			best = it
			found = true
		}
	}
	return best, found
}

// quickWins derives at most one pick each for a new tool, a curated
// skill, and a quick tutorial. Short tutorials, detected by duration
// phrasing in the title, beat longer ones when available.
func quickWins(pool []source.Item, shortIndicators []string) []QuickWin {
	var wins []QuickWin

	if tool, ok := bestOf(pool, func(it source.Item) bool {
		return it.Category == source.CategoryTool
	}); ok {
		wins = append(wins, quickWinFrom(tool, "new_tool", "New Tool"))
	}

	if skill, ok := bestOf(pool, func(it source.Item) bool {
		return it.Category == source.CategorySkill
	}); ok {
		wins = append(wins, quickWinFrom(skill, "skill", "Claude Skill"))
	}

	isTutorial := func(it source.Item) bool { return it.Category == source.CategoryTutorial }
	isShort := func(it source.Item) bool {
		title := strings.ToLower(it.Title)
		return isTutorial(it) && containsAny(title, shortIndicators)
	}
	tut, ok := bestOf(pool, isShort)
	if !ok {
		tut, ok = bestOf(pool, isTutorial)
	}
	if ok {
		wins = append(wins, quickWinFrom(tut, "tutorial", "Quick Tutorial"))
	}

	return wins
}

// featuredEpisode picks the highest-scoring podcast item, or nil.
func featuredEpisode(pool []source.Item) *source.Item {
	if ep, ok := bestOf(pool, func(it source.Item) bool {
		return it.Category == source.CategoryPodcast
	}); ok {
		return &ep
	}
	return nil
}

// topSocial ranks social posts with a small additive preference for
// shipping/launch phrasing. The bonus affects selection order only; the
// stored score is not mutated. When the pool has no social posts the
// built-in placeholders are returned so rendering never sees an empty
// feed; fallback reports that case so placeholders stay out of history.
func topSocial(pool []source.Item, limit int, shipping []string) (posts []source.Item, fallback bool) {
	type ranked struct {
		key  float64
		item source.Item
	}
	var candidates []ranked
	for _, it := range pool {
		if it.Category != source.CategorySocial {
			continue
		}
		key := it.Score
		text := strings.ToLower(it.Title + " " + it.Description)
		if containsAny(text, shipping) {
			key += 20
		}
		candidates = append(candidates, ranked{key: key, item: it})
	}
	if len(candidates) == 0 {
		return defaultSocialPosts(), true
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].key > candidates[j].key
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for _, c := range candidates {
		posts = append(posts, c.item)
	}
	return posts, false
}

// defaultSocialPosts is the fixed placeholder feed. The URLs point at
// profiles rather than concrete posts and are never written to history.
func defaultSocialPosts() []source.Item {
	return []source.Item{
		{
			ID:          source.DeriveID("https://x.com/swyx"),
			Title:       "The best AI coding tools in 2026: A comparison",
			Description: "Cursor vs Windsurf vs Claude Code - which one fits your workflow?",
			URL:         "https://x.com/swyx",
			Source:      "@swyx",
			ContentType: source.TypeSocialPost,
			Category:    source.CategorySocial,
		},
		{
			ID:          source.DeriveID("https://x.com/levelsio"),
			Title:       "Just shipped a new feature using Claude Code in 2 hours",
			Description: "The prompting patterns that actually work for production code.",
			URL:         "https://x.com/levelsio",
			Source:      "@levelsio",
			ContentType: source.TypeSocialPost,
			Category:    source.CategorySocial,
		},
		{
			ID:          source.DeriveID("https://x.com/LangChainAI"),
			Title:       "New LangGraph features for multi-agent systems",
			Description: "Check out the latest updates for building agent workflows.",
			URL:         "https://x.com/LangChainAI",
			Source:      "@LangChainAI",
			ContentType: source.TypeSocialPost,
			Category:    source.CategorySocial,
		},
	}
}

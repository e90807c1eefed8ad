package source

import (
	"context"
	"time"
)

// Skill is a manually curated reference resource. Skills are persistent
// reference material, so the deduplicator exempts them from the seen
// history and the scorer gives them neutral recency credit.
type Skill struct {
	Name        string
	URL         string
	Description string
}

// Curated serves the static curated list. It performs no network calls.
type Curated struct {
	skills     []Skill
	reputation float64
	now        func() time.Time
}

// NewCurated creates the curated-list adapter.
func NewCurated(skills []Skill, reputation float64) *Curated {
	if reputation == 0 {
		reputation = 0.95
	}
	return &Curated{skills: skills, reputation: reputation, now: time.Now}
}

func (c *Curated) Name() string   { return "curated" }
func (c *Curated) Family() Family { return FamilyCurated }

func (c *Curated) Collect(_ context.Context) ([]Item, error) {
	now := c.now().UTC()
	var items []Item
	for _, skill := range c.skills {
		if skill.Name == "" || skill.URL == "" {
			continue
		}
		items = append(items, Item{
			ID:               DeriveID(skill.URL),
			Title:            skill.Name,
			Description:      Truncate(skill.Description, DescriptionLimit),
			URL:              skill.URL,
			Source:           "GitHub",
			SourceReputation: c.reputation,
			PublishedAt:      now,
			PublishedGuessed: true, // curated entries carry no publish date
			ContentType:      TypeCuratedSkill,
			Family:           FamilyCurated,
			Category:         CategorySkill,
		})
	}
	return items, nil
}

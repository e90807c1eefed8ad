package curate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/venturedigest/venturedigest/pkg/source"
)

var testNow = time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	name  string
	items []source.Item
	err   error
}

func (s *stubSource) Name() string          { return s.name }
func (s *stubSource) Family() source.Family { return source.FamilyFeed }
func (s *stubSource) Collect(context.Context) ([]source.Item, error) {
	return s.items, s.err
}

type memHistory struct {
	seen    map[string]string
	pruned  string
	seenErr error
	recErr  error
}

func newMemHistory() *memHistory {
	return &memHistory{seen: make(map[string]string)}
}

func (h *memHistory) Seen(context.Context) (map[string]string, error) {
	if h.seenErr != nil {
		return nil, h.seenErr
	}
	out := make(map[string]string, len(h.seen))
	for k, v := range h.seen {
		out[k] = v
	}
	return out, nil
}

func (h *memHistory) Record(_ context.Context, urls []string, day string) error {
	if h.recErr != nil {
		return h.recErr
	}
	for _, u := range urls {
		h.seen[u] = day
	}
	return nil
}

func (h *memHistory) Prune(_ context.Context, cutoff string) error {
	h.pruned = cutoff
	for u, day := range h.seen {
		if day < cutoff {
			delete(h.seen, u)
		}
	}
	return nil
}

func feedArticle(title, url string, published time.Time, sourceName string) source.Item {
	return source.Item{
		ID:               source.DeriveID(url),
		Title:            title,
		URL:              url,
		Source:           sourceName,
		SourceReputation: 0.9,
		PublishedAt:      published,
		ContentType:      source.TypeArticle,
		Family:           source.FamilyFeed,
	}
}

func testPipeline(t *testing.T, sources []source.Source, th Thresholds, history History) *Pipeline {
	t.Helper()
	classifier := NewClassifier(Vocabulary{})
	scorer := NewScorer(DefaultWeights(), nil, nil, th.MaxAge)
	scorer.now = func() time.Time { return testNow }
	p, err := New(sources, classifier, scorer, th, history)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	p.now = func() time.Time { return testNow }
	return p
}

func permissiveThresholds() Thresholds {
	th := DefaultThresholds()
	th.MinScore = 0
	return th
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	classifier := NewClassifier(Vocabulary{})
	scorer := NewScorer(DefaultWeights(), nil, nil, 48*time.Hour)
	sources := []source.Source{&stubSource{name: "stub"}}

	cases := []struct {
		name string
		fn   func() (*Pipeline, error)
	}{
		{"nil classifier", func() (*Pipeline, error) {
			return New(sources, nil, scorer, DefaultThresholds(), nil)
		}},
		{"nil scorer", func() (*Pipeline, error) {
			return New(sources, classifier, nil, DefaultThresholds(), nil)
		}},
		{"zero thresholds", func() (*Pipeline, error) {
			return New(sources, classifier, scorer, Thresholds{}, nil)
		}},
		{"no sources", func() (*Pipeline, error) {
			return New(nil, classifier, scorer, DefaultThresholds(), nil)
		}},
	}
	for _, tc := range cases {
		if _, err := tc.fn(); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: expected ErrConfig, got %v", tc.name, err)
		}
	}
}

func TestRunDeduplicatesWithinRun(t *testing.T) {
	t.Parallel()

	shared := feedArticle("How to build an llm startup mvp", "https://example.com/shared", testNow.Add(-time.Hour), "Blog A")
	a := &stubSource{name: "a", items: []source.Item{shared}}
	dup := shared
	dup.Source = "Blog B"
	b := &stubSource{name: "b", items: []source.Item{dup}}

	p := testPipeline(t, []source.Source{a, b}, permissiveThresholds(), nil)
	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if d.ItemCount != 1 {
		t.Fatalf("duplicate url not collapsed: %d items", d.ItemCount)
	}
	if d.Items[0].Source != "Blog A" {
		t.Fatalf("first occurrence not kept: %s", d.Items[0].Source)
	}
}

func TestRunSecondPassDropsShownItems(t *testing.T) {
	t.Parallel()

	items := []source.Item{
		feedArticle("How to build an llm startup mvp", "https://example.com/one", testNow.Add(-time.Hour), "Blog"),
		{
			ID:          source.DeriveID("https://github.com/example/skill"),
			Title:       "pdf-skill",
			URL:         "https://github.com/example/skill",
			Source:      "GitHub",
			ContentType: source.TypeCuratedSkill,
			Family:      source.FamilyCurated,
			Category:    source.CategorySkill,
			PublishedAt: testNow, PublishedGuessed: true,
			SourceReputation: 0.95,
		},
	}
	src := &stubSource{name: "stub", items: items}
	hist := newMemHistory()

	p := testPipeline(t, []source.Source{src}, permissiveThresholds(), hist)

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	if first.ItemCount != 2 {
		t.Fatalf("first run: expected 2 items, got %d", first.ItemCount)
	}
	if _, shown := hist.seen["https://example.com/one"]; !shown {
		t.Fatal("article url not recorded")
	}
	if _, shown := hist.seen["https://github.com/example/skill"]; shown {
		t.Fatal("curated skill url must not be recorded")
	}

	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if second.ItemCount != 1 {
		t.Fatalf("second run: expected only the skill to survive, got %d items", second.ItemCount)
	}
	if second.Items[0].ContentType != source.TypeCuratedSkill {
		t.Fatalf("surviving item is not the skill: %s", second.Items[0].URL)
	}
}

func TestRunHistoryFailureDegrades(t *testing.T) {
	t.Parallel()

	src := &stubSource{name: "stub", items: []source.Item{
		feedArticle("How to build an llm startup mvp", "https://example.com/one", testNow.Add(-time.Hour), "Blog"),
	}}
	hist := newMemHistory()
	hist.seenErr = fmt.Errorf("disk on fire")
	hist.recErr = fmt.Errorf("disk still on fire")

	p := testPipeline(t, []source.Source{src}, permissiveThresholds(), hist)
	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run must not fail on history errors: %v", err)
	}
	if d.ItemCount != 1 {
		t.Fatalf("expected 1 item with unreadable history, got %d", d.ItemCount)
	}
}

func TestRunDiversityCap(t *testing.T) {
	t.Parallel()

	var items []source.Item
	for i := 0; i < 6; i++ {
		items = append(items, feedArticle(
			fmt.Sprintf("How to build an llm startup mvp, part %d", i),
			fmt.Sprintf("https://prolific.example.com/%d", i),
			testNow.Add(-time.Duration(i)*time.Hour),
			"Prolific Blog",
		))
	}
	items = append(items, feedArticle("How to build an llm agent workflow", "https://other.example.com/post", testNow.Add(-30*time.Hour), "Quiet Blog"))
	src := &stubSource{name: "stub", items: items}

	th := permissiveThresholds()
	th.MaxPerSource = 3
	p := testPipeline(t, []source.Source{src}, th, nil)

	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	counts := make(map[string]int)
	for _, it := range d.Items {
		counts[it.Source]++
	}
	if counts["Prolific Blog"] != 3 {
		t.Fatalf("diversity cap not applied: %d items from prolific source", counts["Prolific Blog"])
	}
	// The lower-scored source keeps its slot rather than being crowded out.
	if counts["Quiet Blog"] != 1 {
		t.Fatalf("quiet source crowded out: %d", counts["Quiet Blog"])
	}
}

func TestRunAgeFilter(t *testing.T) {
	t.Parallel()

	src := &stubSource{name: "stub", items: []source.Item{
		feedArticle("How to build an llm startup mvp", "https://example.com/fresh", testNow.Add(-time.Hour), "Blog"),
		feedArticle("How to build an llm agent workflow", "https://example.com/stale", testNow.Add(-72*time.Hour), "Blog"),
	}}

	p := testPipeline(t, []source.Source{src}, permissiveThresholds(), nil)
	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if d.ItemCount != 1 || d.Items[0].URL != "https://example.com/fresh" {
		t.Fatalf("age filter failed: %+v", d.Items)
	}
}

func TestRunMinScoreThreshold(t *testing.T) {
	t.Parallel()

	weak := feedArticle("Let's build a birdhouse", "https://example.com/weak", testNow.Add(-47*time.Hour), "Hobby Blog")
	weak.SourceReputation = 0.3 // admitted by the classifier but weak on every score input
	src := &stubSource{name: "stub", items: []source.Item{
		// High signal: fresh, relevant, strong actionable phrasing.
		feedArticle("How to build an llm startup mvp from scratch", "https://example.com/strong", testNow.Add(-time.Hour), "Blog"),
		weak,
	}}

	th := DefaultThresholds() // MinScore 40
	p := testPipeline(t, []source.Source{src}, th, nil)
	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if d.ItemCount != 1 || d.Items[0].URL != "https://example.com/strong" {
		t.Fatalf("score threshold failed: %+v", d.Items)
	}
	if d.Items[0].DisplayScore < 40 {
		t.Fatalf("display score below threshold: %d", d.Items[0].DisplayScore)
	}
}

func TestRunOrderingAndTruncation(t *testing.T) {
	t.Parallel()

	var items []source.Item
	for i := 0; i < 40; i++ {
		it := feedArticle(
			fmt.Sprintf("How to build an llm startup mvp %d", i),
			fmt.Sprintf("https://s%d.example.com/post", i),
			testNow.Add(-time.Duration(i)*time.Hour),
			fmt.Sprintf("Blog %d", i), // distinct sources, cap never binds
		)
		it.Engagement = i * 10
		items = append(items, it)
	}
	src := &stubSource{name: "stub", items: items}

	p := testPipeline(t, []source.Source{src}, permissiveThresholds(), nil)
	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if d.ItemCount != 30 {
		t.Fatalf("max items not applied: %d", d.ItemCount)
	}
	for i := 1; i < len(d.Items); i++ {
		if d.Items[i-1].Score < d.Items[i].Score {
			t.Fatalf("items not sorted descending at %d: %f < %f", i, d.Items[i-1].Score, d.Items[i].Score)
		}
	}
}

func TestRunSourceFailureIsolated(t *testing.T) {
	t.Parallel()

	broken := &stubSource{name: "broken", err: fmt.Errorf("network down")}
	working := &stubSource{name: "working", items: []source.Item{
		feedArticle("How to build an llm startup mvp", "https://example.com/ok", testNow.Add(-time.Hour), "Blog"),
	}}

	p := testPipeline(t, []source.Source{broken, working}, permissiveThresholds(), nil)
	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if d.ItemCount != 1 {
		t.Fatalf("expected working source's item, got %d", d.ItemCount)
	}
}

func TestRunQuickWinsAndFeatured(t *testing.T) {
	t.Parallel()

	items := []source.Item{
		{
			ID: source.DeriveID("https://example.com/tut"), Title: "Quick 5 min tutorial: how to build an llm workflow",
			URL: "https://example.com/tut", Source: "Channel", SourceReputation: 0.9,
			PublishedAt: testNow.Add(-time.Hour), ContentType: source.TypeVideo, Family: source.FamilyFeed,
			VideoURL: "https://www.youtube.com/watch?v=abc123",
		},
		{
			ID: source.DeriveID("https://example.com/tool"), Title: "Cursor tips for llm startup teams",
			URL: "https://example.com/tool", Source: "Blog", SourceReputation: 0.9,
			PublishedAt: testNow.Add(-time.Hour), ContentType: source.TypeArticle, Family: source.FamilyFeed,
		},
		{
			ID: source.DeriveID("https://github.com/example/skill"), Title: "pdf-skill",
			URL: "https://github.com/example/skill", Source: "GitHub", SourceReputation: 0.95,
			PublishedAt: testNow, PublishedGuessed: true,
			ContentType: source.TypeCuratedSkill, Family: source.FamilyCurated, Category: source.CategorySkill,
		},
		{
			ID: source.DeriveID("https://pod.example.com/ep1"), Title: "Founder interview on llm products",
			URL: "https://pod.example.com/ep1", Source: "Pod", SourceReputation: 0.9,
			PublishedAt: testNow.Add(-time.Hour), ContentType: source.TypePodcast, Family: source.FamilyFeed,
			PodcastDuration: "45:00",
		},
	}
	src := &stubSource{name: "stub", items: items}

	p := testPipeline(t, []source.Source{src}, permissiveThresholds(), nil)
	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	labels := make(map[string]bool)
	for _, qw := range d.QuickWins {
		labels[qw.Type] = true
	}
	for _, want := range []string{"new_tool", "skill", "tutorial"} {
		if !labels[want] {
			t.Errorf("quick win %q missing (got %+v)", want, d.QuickWins)
		}
	}

	if d.FeaturedEpisode == nil || d.FeaturedEpisode.URL != "https://pod.example.com/ep1" {
		t.Fatalf("featured episode not selected: %+v", d.FeaturedEpisode)
	}
}

func TestRunSocialFallback(t *testing.T) {
	t.Parallel()

	src := &stubSource{name: "stub", items: []source.Item{
		feedArticle("How to build an llm startup mvp", "https://example.com/one", testNow.Add(-time.Hour), "Blog"),
	}}
	hist := newMemHistory()

	p := testPipeline(t, []source.Source{src}, permissiveThresholds(), hist)
	d, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(d.SocialPosts) == 0 {
		t.Fatal("social fallback not applied")
	}
	// Placeholder posts point at profiles and never reach history.
	for _, post := range d.SocialPosts {
		if _, shown := hist.seen[post.URL]; shown {
			t.Fatalf("placeholder post recorded in history: %s", post.URL)
		}
	}
}

func TestRunRecordsAndPrunesHistory(t *testing.T) {
	t.Parallel()

	src := &stubSource{name: "stub", items: []source.Item{
		feedArticle("How to build an llm startup mvp", "https://example.com/one", testNow.Add(-time.Hour), "Blog"),
	}}
	hist := newMemHistory()
	hist.seen["https://example.com/ancient"] = "2025-12-01"

	th := permissiveThresholds()
	th.RetentionDays = 30
	p := testPipeline(t, []source.Source{src}, th, hist)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if got := hist.seen["https://example.com/one"]; got != "2026-02-10" {
		t.Fatalf("url recorded under wrong day: %q", got)
	}
	if hist.pruned != "2026-01-11" {
		t.Fatalf("unexpected prune cutoff: %q", hist.pruned)
	}
	if _, still := hist.seen["https://example.com/ancient"]; still {
		t.Fatal("entry beyond retention not pruned")
	}
}

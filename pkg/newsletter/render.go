package newsletter

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/venturedigest/venturedigest/pkg/curate"
	"github.com/venturedigest/venturedigest/pkg/source"
)

// Options configure rendering.
type Options struct {
	MaxItems   int    // cap on items in the email body; 0 keeps all
	WebsiteURL string // linked in the footer
}

// Renderer turns a digest bundle into campaign-ready email bodies.
type Renderer struct {
	opts Options
	tmpl *template.Template
}

// New builds a renderer. The HTML template is parsed once.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("digest").Funcs(template.FuncMap{
		"emoji": categoryEmoji,
	}).Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse newsletter template: %w", err)
	}
	return &Renderer{opts: opts, tmpl: tmpl}, nil
}

var categoryOrder = []source.Category{
	source.CategoryTutorial,
	source.CategorySkill,
	source.CategoryTool,
	source.CategoryDeepDive,
	source.CategoryPodcast,
	source.CategoryResearch,
	source.CategoryBusiness,
	source.CategorySocial,
	source.CategoryNews,
}

var categoryTitles = map[source.Category]string{
	source.CategoryTutorial: "Tutorials & Guides",
	source.CategorySkill:    "Claude Skills",
	source.CategoryTool:     "New Tools",
	source.CategoryDeepDive: "Deep Dives",
	source.CategoryPodcast:  "Podcasts",
	source.CategoryResearch: "Research",
	source.CategoryBusiness: "Business",
	source.CategorySocial:   "From the Builders",
	source.CategoryNews:     "News",
}

func categoryEmoji(cat source.Category) string {
	switch cat {
	case source.CategoryTutorial:
		return "🎓"
	case source.CategorySkill:
		return "🧩"
	case source.CategoryTool:
		return "🛠️"
	case source.CategoryDeepDive:
		return "🔍"
	case source.CategoryPodcast:
		return "🎙️"
	case source.CategoryResearch:
		return "📄"
	case source.CategoryBusiness:
		return "💼"
	case source.CategorySocial:
		return "💬"
	default:
		return "📰"
	}
}

// section is one category block in the rendered email.
type section struct {
	Category source.Category
	Title    string
	Items    []source.Item
}

type templateData struct {
	Date       string
	ItemCount  int
	Sections   []section
	QuickWins  []curate.QuickWin
	Featured   *source.Item
	Social     []source.Item
	WebsiteURL string
}

func (r *Renderer) data(d *curate.Digest) templateData {
	items := d.Items
	if r.opts.MaxItems > 0 && len(items) > r.opts.MaxItems {
		items = items[:r.opts.MaxItems]
	}

	grouped := make(map[source.Category][]source.Item)
	for _, it := range items {
		grouped[it.Category] = append(grouped[it.Category], it)
	}
	var sections []section
	for _, cat := range categoryOrder {
		if len(grouped[cat]) == 0 {
			continue
		}
		sections = append(sections, section{
			Category: cat,
			Title:    categoryTitles[cat],
			Items:    grouped[cat],
		})
	}

	return templateData{
		Date:       d.GeneratedAt.Format("Monday, January 2, 2006"),
		ItemCount:  len(items),
		Sections:   sections,
		QuickWins:  d.QuickWins,
		Featured:   d.FeaturedEpisode,
		Social:     d.SocialPosts,
		WebsiteURL: r.opts.WebsiteURL,
	}
}

// Subject derives the campaign subject line from the top story.
func (r *Renderer) Subject(d *curate.Digest) string {
	if len(d.Items) == 0 {
		return "⚡ AI Digest: Today's picks for builders"
	}
	top := d.Items[0].Title
	return "⚡ AI Digest: " + source.Truncate(top, 60)
}

// HTML renders the full email body.
func (r *Renderer) HTML(d *curate.Digest) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, r.data(d)); err != nil {
		return "", fmt.Errorf("render newsletter: %w", err)
	}
	return buf.String(), nil
}

// Text renders the plain-text alternative body.
func (r *Renderer) Text(d *curate.Digest) string {
	data := r.data(d)
	var b strings.Builder

	fmt.Fprintf(&b, "AI VENTURE DIGEST — %s\n", data.Date)
	fmt.Fprintf(&b, "%d picks for builders today\n\n", data.ItemCount)

	if len(data.QuickWins) > 0 {
		b.WriteString("QUICK WINS\n")
		for _, qw := range data.QuickWins {
			fmt.Fprintf(&b, "* [%s] %s\n  %s\n", qw.Label, qw.Title, qw.URL)
		}
		b.WriteString("\n")
	}

	for _, sec := range data.Sections {
		fmt.Fprintf(&b, "%s\n%s\n", strings.ToUpper(sec.Title), strings.Repeat("-", len(sec.Title)))
		for _, it := range sec.Items {
			fmt.Fprintf(&b, "* %s (%s, score %d)\n  %s\n", it.Title, it.Source, it.DisplayScore, it.URL)
			if it.Description != "" {
				fmt.Fprintf(&b, "  %s\n", it.Description)
			}
		}
		b.WriteString("\n")
	}

	if data.Featured != nil {
		fmt.Fprintf(&b, "FEATURED EPISODE\n* %s (%s)\n  %s\n\n",
			data.Featured.Title, data.Featured.Source, data.Featured.URL)
	}

	if len(data.Social) > 0 {
		b.WriteString("FROM THE TIMELINE\n")
		for _, post := range data.Social {
			fmt.Fprintf(&b, "* %s: %s\n  %s\n", post.Source, post.Title, post.URL)
		}
		b.WriteString("\n")
	}

	if data.WebsiteURL != "" {
		fmt.Fprintf(&b, "Read online: %s\n", data.WebsiteURL)
	}
	b.WriteString("You are receiving this because you subscribed to AI Venture Digest.\n")
	b.WriteString("Unsubscribe: *|UNSUB|*\n")
	return b.String()
}

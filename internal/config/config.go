package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/venturedigest/venturedigest/pkg/curate"
	"github.com/venturedigest/venturedigest/pkg/source"
)

// Config is the root configuration. It is constructed once, validated,
// and passed read-only into every component.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Sources    SourcesConfig    `yaml:"sources"`
	Topics     []string         `yaml:"topics"`
	Keywords   KeywordsConfig   `yaml:"keywords"`
	Weights    WeightsConfig    `yaml:"weights"`
	Filters    FiltersConfig    `yaml:"filters"`
	Newsletter NewsletterConfig `yaml:"newsletter"`
	Mailchimp  MailchimpConfig  `yaml:"mailchimp"`
	Webhook    WebhookConfig    `yaml:"webhook"`
}

// DatabaseConfig configures the SQLite ledger.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP trigger API.
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"` // bearer token required by POST /api/v1/run when set
}

// ScheduleConfig configures the daemon run interval.
type ScheduleConfig struct {
	RunInterval string `yaml:"run_interval"`
}

// ParseRunInterval returns the run interval as a duration.
func (s ScheduleConfig) ParseRunInterval() time.Duration {
	d, err := time.ParseDuration(s.RunInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// SourcesConfig enumerates all content sources.
type SourcesConfig struct {
	Feeds      []FeedConfig     `yaml:"feeds"`
	Channels   []ChannelConfig  `yaml:"channels"`
	Podcasts   []FeedConfig     `yaml:"podcasts"`
	Social     SocialConfig     `yaml:"social"`
	HackerNews HackerNewsConfig `yaml:"hackernews"`
	Reddit     RedditConfig     `yaml:"reddit"`
	Skills     []SkillConfig    `yaml:"skills"`
}

// FeedConfig is a single syndicated feed entry.
type FeedConfig struct {
	Name       string  `yaml:"name"`
	URL        string  `yaml:"url"`
	Reputation float64 `yaml:"reputation"`
}

// ChannelConfig is a video channel followed via its feed.
type ChannelConfig struct {
	Name       string  `yaml:"name"`
	ChannelID  string  `yaml:"channel_id"`
	Reputation float64 `yaml:"reputation"`
}

// FeedURL returns the channel's syndication endpoint.
func (c ChannelConfig) FeedURL() string {
	return "https://www.youtube.com/feeds/videos.xml?channel_id=" + c.ChannelID
}

// SocialConfig configures the micro-blog mirror adapter.
type SocialConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Instances []string        `yaml:"instances"`
	Accounts  []AccountConfig `yaml:"accounts"`
}

// AccountConfig is a curated account to mirror.
type AccountConfig struct {
	Handle     string  `yaml:"handle"`
	Name       string  `yaml:"name"`
	Reputation float64 `yaml:"reputation"`
}

// HackerNewsConfig configures the link-aggregator adapter.
type HackerNewsConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Limit      int      `yaml:"limit"`
	MinScore   int      `yaml:"min_score"`
	Keywords   []string `yaml:"keywords"`
	Reputation float64  `yaml:"reputation"`
}

// RedditConfig configures the forum adapter.
type RedditConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Subreddits    []string `yaml:"subreddits"`
	MinEngagement int      `yaml:"min_engagement"`
	Reputation    float64  `yaml:"reputation"`
}

// SkillConfig is a curated-list entry.
type SkillConfig struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// KeywordsConfig overrides the built-in classifier vocabularies. Empty
// lists keep the defaults.
type KeywordsConfig struct {
	Actionable       []string `yaml:"actionable"`
	StrongActionable []string `yaml:"strong_actionable"`
	HardExclude      []string `yaml:"hard_exclude"`
	SoftExclude      []string `yaml:"soft_exclude"`
	Tools            []string `yaml:"tools"`
	Announcement     []string `yaml:"announcement"`
	RelevantTopics   []string `yaml:"relevant_topics"`
	ExcludeTopics    []string `yaml:"exclude_topics"`
	Shipping         []string `yaml:"shipping"`
	ShortIndicators  []string `yaml:"short_indicators"`
}

// Vocabulary converts the overrides to the classifier's input.
func (k KeywordsConfig) Vocabulary() curate.Vocabulary {
	return curate.Vocabulary{
		Actionable:       k.Actionable,
		StrongActionable: k.StrongActionable,
		HardExclude:      k.HardExclude,
		SoftExclude:      k.SoftExclude,
		Tools:            k.Tools,
		Announcement:     k.Announcement,
		RelevantTopics:   k.RelevantTopics,
		ExcludeTopics:    k.ExcludeTopics,
		Shipping:         k.Shipping,
		ShortIndicators:  k.ShortIndicators,
	}
}

// WeightsConfig holds the scoring coefficients.
type WeightsConfig struct {
	Reputation  float64            `yaml:"reputation"`
	Relevance   float64            `yaml:"relevance"`
	Recency     float64            `yaml:"recency"`
	Engagement  float64            `yaml:"engagement"`
	StrongBonus float64            `yaml:"strong_bonus"`
	Bonuses     map[string]float64 `yaml:"bonuses"`
}

// Weights converts to the scorer's coefficient set.
func (w WeightsConfig) Weights() curate.Weights {
	bonuses := make(map[source.Category]float64, len(w.Bonuses))
	for cat, bonus := range w.Bonuses {
		bonuses[source.Category(cat)] = bonus
	}
	return curate.Weights{
		Reputation:  w.Reputation,
		Relevance:   w.Relevance,
		Recency:     w.Recency,
		Engagement:  w.Engagement,
		StrongBonus: w.StrongBonus,
		Bonuses:     bonuses,
	}
}

// FiltersConfig holds the curation thresholds.
type FiltersConfig struct {
	MinScore      float64 `yaml:"min_score"`
	MaxAgeHours   int     `yaml:"max_age_hours"`
	MaxPerSource  int     `yaml:"max_per_source"`
	MaxItems      int     `yaml:"max_items"`
	RetentionDays int     `yaml:"retention_days"`
	SocialLimit   int     `yaml:"social_limit"`
}

// Thresholds converts to the pipeline's filter settings.
func (f FiltersConfig) Thresholds() curate.Thresholds {
	return curate.Thresholds{
		MinScore:      f.MinScore,
		MaxAge:        time.Duration(f.MaxAgeHours) * time.Hour,
		MaxPerSource:  f.MaxPerSource,
		MaxItems:      f.MaxItems,
		RetentionDays: f.RetentionDays,
		SocialLimit:   f.SocialLimit,
	}
}

// NewsletterConfig configures email rendering.
type NewsletterConfig struct {
	MaxItems   int    `yaml:"max_items"`
	FromName   string `yaml:"from_name"`
	ReplyTo    string `yaml:"reply_to"`
	WebsiteURL string `yaml:"website_url"`
}

// MailchimpConfig configures campaign delivery.
type MailchimpConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	ListID  string `yaml:"list_id"`
}

// WebhookConfig configures the generic webhook delivery target.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// Default returns a Config with the full tuned defaults.
func Default() *Config {
	weights := curate.DefaultWeights()
	bonuses := make(map[string]float64, len(weights.Bonuses))
	for cat, bonus := range weights.Bonuses {
		bonuses[string(cat)] = bonus
	}
	thresholds := curate.DefaultThresholds()

	return &Config{
		Database: DatabaseConfig{Path: "./venturedigest.db"},
		Server:   ServerConfig{Port: 8080},
		Schedule: ScheduleConfig{RunInterval: "24h"},
		Sources: SourcesConfig{
			Feeds: []FeedConfig{
				{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Reputation: 0.9},
				{Name: "The Verge AI", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml", Reputation: 0.85},
				{Name: "Hugging Face", URL: "https://huggingface.co/blog/feed.xml", Reputation: 0.95},
				{Name: "Simon Willison", URL: "https://simonwillison.net/atom/everything/", Reputation: 0.9},
			},
			HackerNews: HackerNewsConfig{
				Enabled:  true,
				Limit:    20,
				MinScore: 50,
				Keywords: []string{"AI", "GPT", "LLM", "Claude", "OpenAI", "Anthropic", "machine learning", "generative"},
				Reputation: 0.8,
			},
			Reddit: RedditConfig{
				Enabled:       true,
				Subreddits:    []string{"MachineLearning", "artificial", "ChatGPT", "LocalLLaMA"},
				MinEngagement: 100,
				Reputation:    0.7,
			},
			Social: SocialConfig{
				Enabled: false,
				Instances: []string{
					"https://nitter.poast.org",
					"https://nitter.privacydev.net",
				},
			},
		},
		Topics: curate.DefaultTopics(),
		Weights: WeightsConfig{
			Reputation:  weights.Reputation,
			Relevance:   weights.Relevance,
			Recency:     weights.Recency,
			Engagement:  weights.Engagement,
			StrongBonus: weights.StrongBonus,
			Bonuses:     bonuses,
		},
		Filters: FiltersConfig{
			MinScore:      thresholds.MinScore,
			MaxAgeHours:   int(thresholds.MaxAge / time.Hour),
			MaxPerSource:  thresholds.MaxPerSource,
			MaxItems:      thresholds.MaxItems,
			RetentionDays: thresholds.RetentionDays,
			SocialLimit:   thresholds.SocialLimit,
		},
		Newsletter: NewsletterConfig{
			MaxItems:   10,
			FromName:   "AI Venture Digest",
			ReplyTo:    "digest@example.com",
			WebsiteURL: "https://ai-venture-digest.vercel.app",
		},
	}
}

// Load reads configuration from a YAML file over the defaults and applies
// env var overrides for credentials.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VENTUREDIGEST_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("MAILCHIMP_API_KEY"); v != "" {
		cfg.Mailchimp.APIKey = v
		cfg.Mailchimp.Enabled = true
	}
	if v := os.Getenv("MAILCHIMP_LIST_ID"); v != "" {
		cfg.Mailchimp.ListID = v
	}
	if v := os.Getenv("MAILCHIMP_REPLY_TO"); v != "" {
		cfg.Newsletter.ReplyTo = v
	}
	if v := os.Getenv("DIGEST_WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
		cfg.Webhook.Enabled = true
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		cfg.Server.Secret = v
	}
}

// Validate fails closed: a run cannot proceed meaningfully without its
// thresholds, weights and at least one source.
func (c *Config) Validate() error {
	if c.Filters.MaxItems <= 0 || c.Filters.MaxPerSource <= 0 || c.Filters.MaxAgeHours <= 0 {
		return fmt.Errorf("%w: filters section", curate.ErrConfig)
	}
	if c.Filters.RetentionDays <= 0 {
		return fmt.Errorf("%w: filters.retention_days", curate.ErrConfig)
	}
	w := c.Weights
	if w.Reputation == 0 && w.Relevance == 0 && w.Recency == 0 && w.Engagement == 0 {
		return fmt.Errorf("%w: weights section", curate.ErrConfig)
	}
	if !c.anySourceConfigured() {
		return fmt.Errorf("%w: sources section", curate.ErrConfig)
	}
	return nil
}

func (c *Config) anySourceConfigured() bool {
	s := c.Sources
	return len(s.Feeds) > 0 || len(s.Channels) > 0 || len(s.Podcasts) > 0 ||
		len(s.Skills) > 0 ||
		(s.Social.Enabled && len(s.Social.Accounts) > 0) ||
		s.HackerNews.Enabled ||
		(s.Reddit.Enabled && len(s.Reddit.Subreddits) > 0)
}

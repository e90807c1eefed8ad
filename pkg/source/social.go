package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
)

// Account is a curated micro-blog account to mirror.
type Account struct {
	Handle     string
	Name       string
	Reputation float64
}

// Social collects posts from curated accounts via Nitter RSS mirrors,
// trying each configured instance until one answers.
type Social struct {
	client     *http.Client
	parser     *gofeed.Parser
	instances  []string
	accounts   []Account
	perAccount int
	now        func() time.Time
}

// NewSocial creates the social mirror adapter.
func NewSocial(instances []string, accounts []Account) *Social {
	if len(instances) == 0 {
		instances = []string{"https://nitter.poast.org", "https://nitter.privacydev.net"}
	}
	for i, inst := range instances {
		instances[i] = strings.TrimRight(inst, "/")
	}
	return &Social{
		client:     &http.Client{Timeout: 10 * time.Second},
		parser:     gofeed.NewParser(),
		instances:  instances,
		accounts:   accounts,
		perAccount: 3,
		now:        time.Now,
	}
}

func (s *Social) Name() string   { return "social" }
func (s *Social) Family() Family { return FamilyFeed }

func (s *Social) Collect(ctx context.Context) ([]Item, error) {
	var all []Item
	for _, account := range s.accounts {
		items, err := s.collectAccount(ctx, account)
		if err != nil {
			log.Warn().Str("account", account.Handle).Err(err).Msg("social fetch failed on all instances")
			continue
		}
		all = append(all, items...)
	}
	return all, nil
}

func (s *Social) collectAccount(ctx context.Context, account Account) ([]Item, error) {
	var lastErr error
	for _, instance := range s.instances {
		items, err := s.fetchMirror(ctx, instance, account)
		if err != nil {
			lastErr = err
			continue
		}
		return items, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no mirror instances configured")
	}
	return nil, lastErr
}

func (s *Social) fetchMirror(ctx context.Context, instance string, account Account) ([]Item, error) {
	feedURL := fmt.Sprintf("%s/%s/rss", instance, account.Handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create mirror request @%s: %w", account.Handle, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch mirror @%s: %w", account.Handle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror @%s status %d", account.Handle, resp.StatusCode)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse mirror @%s: %w", account.Handle, err)
	}

	now := s.now().UTC()
	var items []Item
	for _, entry := range feed.Items {
		if len(items) >= s.perAccount {
			break
		}
		title := StripMarkup(entry.Title)
		if strings.HasPrefix(title, "RT by") {
			continue
		}
		link := strings.Replace(entry.Link, instance, "https://x.com", 1)
		if title == "" || link == "" {
			continue
		}

		published := now
		guessed := false
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else {
			published, guessed = ParseTime(entry.Published, now)
		}

		items = append(items, Item{
			ID:               DeriveID(link),
			Title:            Truncate(title, 200),
			Description:      Truncate(StripMarkup(entry.Description), 280),
			URL:              link,
			Source:           "@" + account.Handle,
			SourceReputation: account.Reputation,
			PublishedAt:      published,
			PublishedGuessed: guessed,
			ContentType:      TypeSocialPost,
			Family:           FamilyFeed,
		})
	}
	return items, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/venturedigest/venturedigest/internal/config"
	"github.com/venturedigest/venturedigest/internal/scheduler"
	"github.com/venturedigest/venturedigest/internal/store"
	"github.com/venturedigest/venturedigest/pkg/curate"
	"github.com/venturedigest/venturedigest/pkg/deliver"
	"github.com/venturedigest/venturedigest/pkg/newsletter"
	"github.com/venturedigest/venturedigest/pkg/server"
	"github.com/venturedigest/venturedigest/pkg/source"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildSources(cfg *config.Config) []source.Source {
	var sources []source.Source

	var specs []source.FeedSpec
	for _, f := range cfg.Sources.Feeds {
		specs = append(specs, source.FeedSpec{
			Name:        f.Name,
			URL:         f.URL,
			Reputation:  f.Reputation,
			ContentType: source.TypeArticle,
		})
	}
	for _, c := range cfg.Sources.Channels {
		specs = append(specs, source.FeedSpec{
			Name:        c.Name,
			URL:         c.FeedURL(),
			Reputation:  c.Reputation,
			ContentType: source.TypeVideo,
		})
	}
	for _, p := range cfg.Sources.Podcasts {
		specs = append(specs, source.FeedSpec{
			Name:        p.Name,
			URL:         p.URL,
			Reputation:  p.Reputation,
			ContentType: source.TypePodcast,
		})
	}
	if len(specs) > 0 {
		sources = append(sources, source.NewFeeds(specs))
	}

	if cfg.Sources.HackerNews.Enabled {
		hn := cfg.Sources.HackerNews
		sources = append(sources, source.NewHackerNews(hn.Limit, hn.MinScore, hn.Keywords, hn.Reputation))
	}
	if cfg.Sources.Reddit.Enabled && len(cfg.Sources.Reddit.Subreddits) > 0 {
		rd := cfg.Sources.Reddit
		sources = append(sources, source.NewReddit(rd.Subreddits, rd.MinEngagement, rd.Reputation))
	}
	if cfg.Sources.Social.Enabled && len(cfg.Sources.Social.Accounts) > 0 {
		var accounts []source.Account
		for _, a := range cfg.Sources.Social.Accounts {
			accounts = append(accounts, source.Account{
				Handle:     a.Handle,
				Name:       a.Name,
				Reputation: a.Reputation,
			})
		}
		sources = append(sources, source.NewSocial(cfg.Sources.Social.Instances, accounts))
	}
	if len(cfg.Sources.Skills) > 0 {
		var skills []source.Skill
		for _, s := range cfg.Sources.Skills {
			skills = append(skills, source.Skill{
				Name:        s.Name,
				URL:         s.URL,
				Description: s.Description,
			})
		}
		sources = append(sources, source.NewCurated(skills, 0))
	}

	return sources
}

func buildPipeline(cfg *config.Config, history curate.History) (*curate.Pipeline, error) {
	classifier := curate.NewClassifier(cfg.Keywords.Vocabulary())
	thresholds := cfg.Filters.Thresholds()
	scorer := curate.NewScorer(
		cfg.Weights.Weights(),
		cfg.Topics,
		classifier.Vocab().StrongActionable,
		thresholds.MaxAge,
	)
	return curate.New(buildSources(cfg), classifier, scorer, thresholds, history)
}

func buildDeliveryManager(cfg *config.Config) (*deliver.Manager, error) {
	var deliverers []deliver.Deliverer

	if cfg.Mailchimp.Enabled && cfg.Mailchimp.APIKey != "" {
		renderer, err := newsletter.New(newsletter.Options{
			MaxItems:   cfg.Newsletter.MaxItems,
			WebsiteURL: cfg.Newsletter.WebsiteURL,
		})
		if err != nil {
			return nil, err
		}
		mc, err := deliver.NewMailchimp(deliver.MailchimpOpts{
			APIKey:   cfg.Mailchimp.APIKey,
			ListID:   cfg.Mailchimp.ListID,
			FromName: cfg.Newsletter.FromName,
			ReplyTo:  cfg.Newsletter.ReplyTo,
		}, renderer)
		if err != nil {
			return nil, err
		}
		deliverers = append(deliverers, mc)
	}
	if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
		deliverers = append(deliverers, deliver.NewWebhook(cfg.Webhook.URL, cfg.Webhook.Secret))
	}

	return deliver.NewManager(deliverers), nil
}

func runFetch(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	pipeline, err := buildPipeline(cfg, db)
	if err != nil {
		return err
	}

	ctx := context.Background()
	digest, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	if err := db.SaveDigest(ctx, digest); err != nil {
		log.Warn().Err(err).Msg("digest archive failed")
	}

	return printDigest(digest, jsonOutput)
}

func runShow(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	digest, err := db.LatestDigest(context.Background())
	if err != nil {
		return err
	}
	if digest == nil {
		fmt.Println("no digest yet (run: venturedigest fetch)")
		return nil
	}

	return printDigest(digest, jsonOutput)
}

func runSend() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	delivery, err := buildDeliveryManager(cfg)
	if err != nil {
		return err
	}
	if !delivery.HasDeliverers() {
		return fmt.Errorf("no delivery targets configured (set MAILCHIMP_API_KEY or DIGEST_WEBHOOK_URL)")
	}

	pipeline, err := buildPipeline(cfg, db)
	if err != nil {
		return err
	}

	ctx := context.Background()
	digest, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	if err := db.SaveDigest(ctx, digest); err != nil {
		log.Warn().Err(err).Msg("digest archive failed")
	}

	if err := delivery.Broadcast(ctx, digest); err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}
	log.Info().Int("items", digest.ItemCount).Msg("digest delivered")
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	pipeline, err := buildPipeline(cfg, db)
	if err != nil {
		return err
	}
	delivery, err := buildDeliveryManager(cfg)
	if err != nil {
		return err
	}

	srv := server.New(db, pipeline, delivery, port, cfg.Server.Secret)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	pipeline, err := buildPipeline(cfg, db)
	if err != nil {
		return err
	}
	delivery, err := buildDeliveryManager(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, pipeline, delivery, cfg.Schedule.ParseRunInterval())
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("scheduler error")
		}
	}()

	srv := server.New(db, pipeline, delivery, port, cfg.Server.Secret)
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
	}()

	return srv.ListenAndServe()
}

func printDigest(d *curate.Digest, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	fmt.Printf("digest generated %s — %d items\n\n", d.GeneratedAt.Format(time.RFC3339), d.ItemCount)

	if len(d.QuickWins) > 0 {
		fmt.Println("QUICK WINS")
		for _, qw := range d.QuickWins {
			fmt.Printf("  [%s] %s\n      %s\n", qw.Label, qw.Title, qw.URL)
		}
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tCATEGORY\tSOURCE\tTITLE")
	for _, it := range d.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.DisplayScore, it.Category, it.Source, it.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if d.FeaturedEpisode != nil {
		fmt.Printf("\nFEATURED EPISODE\n  %s (%s)\n  %s\n",
			d.FeaturedEpisode.Title, d.FeaturedEpisode.Source, d.FeaturedEpisode.URL)
	}
	if len(d.SocialPosts) > 0 {
		fmt.Println("\nFROM THE TIMELINE")
		for _, post := range d.SocialPosts {
			fmt.Printf("  %s: %s\n", post.Source, post.Title)
		}
	}
	return nil
}

package curate

// Vocabulary holds the keyword sets driving classification and scoring.
// Keyword sets are data, not control flow: every list can be replaced
// from configuration, and empty lists fall back to these defaults.
type Vocabulary struct {
	Actionable       []string
	StrongActionable []string
	HardExclude      []string
	SoftExclude      []string
	Tools            []string
	Announcement     []string
	RelevantTopics   []string
	ExcludeTopics    []string
	Shipping         []string
	ShortIndicators  []string
}

// DefaultVocabulary returns the built-in keyword sets tuned for a
// venture-builder audience.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Actionable: []string{
			"how to", "tutorial", "build", "create", "step by step", "guide",
			"in 5 min", "in 10 min", "in 15 min", "in 30 min", "from scratch",
			"complete guide", "hands-on", "walkthrough", "implement", "setup",
			"integrate", "automate", "workflow", "template", "boilerplate",
			"quickstart", "getting started", "beginner", "practical",
			"i built", "let's build", "building a", "making a", "code along",
			"full stack", "saas", "mvp", "launch", "ship",
		},
		StrongActionable: []string{
			"how to", "tutorial", "step by step", "build", "from scratch", "code along",
		},
		HardExclude: []string{
			// off-topic nature content (wrong-channel uploads)
			"anaconda", "jungle", "amazon rainforest", "wildlife", "animal", "snake",
			"nature documentary", "expedition", "tribe", "predator", "prey",
			// academic-paper references
			"paper analysis", "paper review", "arxiv", "research paper",
			"variational autoencoder", "theoretical", "proof that",
			// pure news/announcements
			"breaking:", "just announced", "exclusive:", "leaked",
			"drama", "controversy", "beef", "drama between",
			// funding and M&A
			"raises $", "raised $", "funding round", "valuation", "ipo",
			"acquires", "acquisition", "layoffs", "laid off",
			"series a", "series b", "seed round",
			// roundup phrasing
			"weekly roundup", "news recap", "this week in", "weekly digest",
			"what's new in", "announcing", "we're excited to announce",
		},
		SoftExclude: []string{
			"news", "announcement", "update", "reaction", "thoughts on",
			"my opinion", "review", "first look", "impressions",
			"interview", "podcast", "discussion",
		},
		Tools: []string{
			"cursor", "claude", "claude code", "chatgpt", "gpt-4", "gpt-5",
			"copilot", "v0", "bolt", "lovable", "replit", "windsurf",
			"langchain", "langgraph", "llamaindex", "autogen", "crewai",
			"n8n", "make.com", "zapier", "dify", "flowise", "langflow",
			"remotion", "elevenlabs", "runway", "midjourney", "stable diffusion",
			"perplexity", "phind", "gemini", "anthropic", "openai api",
			"supabase", "vercel", "netlify", "railway", "render",
		},
		Announcement: []string{
			"raises", "funding", "valuation", "announces", "partnership",
		},
		RelevantTopics: []string{
			"ai", "llm", "gpt", "claude", "agent", "automation", "workflow",
			"startup", "founder", "building", "product", "saas", "indie",
			"engineering", "developer", "coding", "programming",
			"rag", "embeddings", "vector", "prompt",
		},
		ExcludeTopics: []string{
			"politics", "election", "war", "celebrity", "sports",
			"healthcare policy", "regulation",
		},
		Shipping: []string{
			"build", "ship", "tutorial", "how to", "just launched",
		},
		ShortIndicators: []string{
			"5 min", "10 min", "15 min", "quick", "fast", "simple",
		},
	}
}

// DefaultTopics is the default relevance keyword list used by the scorer.
func DefaultTopics() []string {
	return []string{
		"generative ai", "llm", "ai tools", "ai apis", "coding assistants",
		"ai automation", "startup", "product launch", "go-to-market",
		"ai business", "venture", "mvp", "use case", "tutorial", "how to",
		"case study", "implementation", "workflow",
	}
}

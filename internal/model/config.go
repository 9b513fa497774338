package model

import "time"

// Config is the complete application configuration. Only the CLI
// layer reads flags, env vars, or config files; everything below it
// receives these values explicitly.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Cache   CacheConfig   `yaml:"cache"`
	Detect  DetectConfig  `yaml:"detect"`
	Fetch   FetchConfig   `yaml:"fetch"`
	LLM     LLMConfig     `yaml:"llm"`
	Output  OutputConfig  `yaml:"output"`
}

// HTTPConfig controls the reddit API client.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	RatePerSec   float64       `yaml:"rate_per_sec"` // Requests per second against the API host
	RateBurst    int           `yaml:"rate_burst"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
}

// CacheConfig controls the on-disk post cache.
type CacheConfig struct {
	Dir string `yaml:"dir"` // Root directory; one subfolder per subreddit
}

// DetectVariant selects which generation of the unformatted-code
// heuristics runs.
type DetectVariant string

const (
	// DetectBasic is the original behavior: run-length check only,
	// inline code spans left in place.
	DetectBasic DetectVariant = "basic"
	// DetectExtended adds inline-span stripping, the per-line density
	// check, and long-post suppression.
	DetectExtended DetectVariant = "extended"
)

// DetectConfig carries the detector thresholds. Zero values are
// replaced by the defaults below so a partial config file stays valid.
type DetectConfig struct {
	Variant              DetectVariant `yaml:"variant"`
	InlineThreshold      int           `yaml:"inline_threshold"`        // Pattern matches on one line that alone flag a post
	RunThreshold         int           `yaml:"run_threshold"`           // Consecutive code-like lines that flag a post
	LongPostLines        int           `yaml:"long_post_lines"`         // Non-empty line count above which suppression applies
	LongPostCodeFraction float64       `yaml:"long_post_code_fraction"` // Code-line fraction below which a long post is left alone
}

// FetchConfig controls the fetch phase of a sweep.
type FetchConfig struct {
	Limit   int `yaml:"limit"`   // Newest posts requested per subreddit
	Workers int `yaml:"workers"` // Concurrent subreddit fetches
}

// LLMConfig configures the optional digest narrative. Disabled unless
// Provider is set; never consulted by detection or review.
type LLMConfig struct {
	Provider  string `yaml:"provider,omitempty"` // "openai" or empty
	Model     string `yaml:"model,omitempty"`
	APIKey    string `yaml:"-"` // Env only, never persisted
	BaseURL   string `yaml:"base_url,omitempty"`
	MaxTokens int    `yaml:"max_tokens"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format  string `yaml:"format"` // json, report, markdown
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults, matching the thresholds
// the moderation heuristics were tuned with.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      2 * time.Minute,
			UserAgent:    "reddit-sweep/1.0 (moderation helper)",
			MaxBodyBytes: 4_000_000,
			RatePerSec:   1,
			RateBurst:    2,
		},
		Cache: CacheConfig{
			Dir: "caches",
		},
		Detect: DetectConfig{
			Variant:              DetectExtended,
			InlineThreshold:      3,
			RunThreshold:         3,
			LongPostLines:        50,
			LongPostCodeFraction: 0.30,
		},
		Fetch: FetchConfig{
			Limit:   1000,
			Workers: 4,
		},
		LLM: LLMConfig{
			MaxTokens: 1000,
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

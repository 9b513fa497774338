package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ripred/reddit/internal/detect"
	"github.com/ripred/reddit/internal/llm"
	"github.com/ripred/reddit/internal/memory"
	"github.com/ripred/reddit/internal/model"
	"github.com/ripred/reddit/internal/reddit"
	"github.com/ripred/reddit/internal/report"
	"github.com/ripred/reddit/internal/review"
	"github.com/ripred/reddit/internal/store"
	"github.com/ripred/reddit/internal/worker"
)

// nonInteractiveEnv forces every presented verdict to "flag" when
// set, which keeps automated runs deterministic. Checked once per
// presented post, never cached at startup.
const nonInteractiveEnv = "TEST_NONINTERACTIVE"

// decisionFile lives beside the per-subreddit cache folders.
const decisionFile = "app.yml"

var (
	reportKind      string
	showN           int
	limitReport     int
	digestEnabled   bool
	checkCodeFormat bool
	includeModqueue bool
	includeModmail  bool
	outputFormat    string
	offline         bool
	cacheDir        string
	fetchLimit      int
	concurrency     int
	sweepTimeout    time.Duration
	userAgent       string
	httpProxy       string
	httpsProxy      string

	basicDetector   bool
	inlineThreshold int
	runThreshold    int

	llmEnabled bool
	llmModel   string
	llmBaseURL string
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep [subreddits...]",
	Short: "Fetch the newest posts and generate moderation reports",
	Long: `Sweep fetches and caches the newest posts from each subreddit, then
generates the requested reports from the local cache.

With --check-code-format, posts that look like they contain unformatted
source code are presented one at a time for a verdict:
  y: flag it as a violation
  n: not a violation (remembered, never asked again)
  s: skip for now (asked again next run)
  c: cancel the rest of the check

Example:
  reddit sweep arduino --check-code-format --modqueue --output report
  reddit sweep arduino esp32 -r flair --digest --output markdown`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVarP(&reportKind, "report", "r", "", "generate a report; available option: flair")
	sweepCmd.Flags().IntVarP(&showN, "show", "l", 0, "show the last N cached posts")
	sweepCmd.Flags().IntVarP(&limitReport, "limit-report", "L", 0, "limit the number of cached posts scanned for reports")
	sweepCmd.Flags().BoolVarP(&digestEnabled, "digest", "D", false, "include a Monthly Digest report section")
	sweepCmd.Flags().BoolVar(&checkCodeFormat, "check-code-format", false, "check cached posts for code formatting violations interactively")
	sweepCmd.Flags().BoolVar(&includeModqueue, "modqueue", false, "include the number of posts waiting in the mod queue")
	sweepCmd.Flags().BoolVar(&includeModmail, "modmail", false, "include the number of unread modmail conversations")
	sweepCmd.Flags().StringVar(&outputFormat, "output", "json", "output format: json, report, or markdown")
	sweepCmd.Flags().BoolVar(&offline, "offline", false, "skip fetching and work from the local cache only")
	sweepCmd.Flags().StringVar(&cacheDir, "cache-dir", "caches", "post cache directory")
	sweepCmd.Flags().IntVar(&fetchLimit, "fetch-limit", 1000, "newest posts to request per subreddit")
	sweepCmd.Flags().IntVar(&concurrency, "concurrency", 4, "concurrent subreddit fetches")
	sweepCmd.Flags().DurationVar(&sweepTimeout, "timeout", 10*time.Minute, "overall fetch timeout")
	sweepCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	sweepCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	sweepCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	sweepCmd.Flags().BoolVar(&basicDetector, "basic-detector", false, "use the original run-length-only detector")
	sweepCmd.Flags().IntVar(&inlineThreshold, "inline-threshold", 0, "code idioms on one line that flag a post (default 3)")
	sweepCmd.Flags().IntVar(&runThreshold, "run-threshold", 0, "consecutive code-like lines that flag a post (default 3)")

	sweepCmd.Flags().BoolVar(&llmEnabled, "llm", false, "rewrite the digest narrative with an LLM")
	sweepCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	sweepCmd.Flags().StringVar(&llmBaseURL, "llm-base-url", "", "OpenAI-compatible base URL (e.g. Ollama)")

	// Config file and REDDIT_* env values sit below changed flags in
	// viper's precedence, so `cache: {dir: ...}` in the file works but
	// an explicit --cache-dir still wins.
	_ = viper.BindPFlag("cache.dir", sweepCmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("fetch.limit", sweepCmd.Flags().Lookup("fetch-limit"))
	_ = viper.BindPFlag("fetch.workers", sweepCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("http.timeout", sweepCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("http.user_agent", sweepCmd.Flags().Lookup("ua"))
	_ = viper.BindPFlag("detect.inline_threshold", sweepCmd.Flags().Lookup("inline-threshold"))
	_ = viper.BindPFlag("detect.run_threshold", sweepCmd.Flags().Lookup("run-threshold"))
	_ = viper.BindPFlag("llm.model", sweepCmd.Flags().Lookup("llm-model"))
	_ = viper.BindPFlag("llm.base_url", sweepCmd.Flags().Lookup("llm-base-url"))
	_ = viper.BindPFlag("output.format", sweepCmd.Flags().Lookup("output"))
}

func runSweep(cmd *cobra.Command, args []string) error {
	subreddits := args
	if len(subreddits) == 0 {
		subreddits = []string{"arduino"}
	}

	cfg := buildConfig()
	filters := filtersApplied()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Timeout)
	defer cancel()

	posts := store.NewDiskStore(cfg.Cache.Dir)
	detector := detect.NewDetector(cfg.Detect)
	decisions := memory.Load(filepath.Join(cfg.Cache.Dir, decisionFile))

	narrator, err := llm.NewNarrator(cfg.LLM)
	if err != nil {
		return fmt.Errorf("configure llm: %w", err)
	}

	var client *reddit.Client
	if !offline || includeModqueue || includeModmail {
		client = reddit.NewClient(cfg.HTTP)
	}

	fetched := fetchPhase(ctx, client, subreddits, cfg)

	out := report.NewOutput(filters)
	global := report.GlobalSummary{}

	for i, sub := range subreddits {
		result, ok := sweepSubreddit(ctx, subredditSweep{
			subreddit: sub,
			fetched:   fetched[i],
			posts:     posts,
			detector:  detector,
			decisions: decisions,
			client:    client,
			narrator:  narrator,
		})
		if !ok {
			continue
		}
		out.Add(sub, result)
		global.GlobalNetworkRetrievals += result.Summary.TotalPostsChecked
		if result.Summary.TotalPostsChecked > 0 {
			global.GlobalNetworkHits++
		}
		global.GlobalCachedPosts += posts.Count(sub)
	}

	if len(out.Results) == 0 {
		return fmt.Errorf("no valid subreddits were provided or found")
	}
	if len(subreddits) > 1 {
		out.GlobalSummary = &global
	}

	switch cfg.Output.Format {
	case "json":
		return report.RenderJSON(os.Stdout, out)
	case "markdown":
		return report.RenderMarkdown(os.Stdout, out)
	case "report":
		return report.RenderANSI(os.Stdout, out)
	default:
		return fmt.Errorf("unknown output format %q", cfg.Output.Format)
	}
}

// buildConfig resolves file, environment, and flag values through
// viper (see the BindPFlag calls in init). Unbound settings keep the
// defaults unless their flag was given.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Cache.Dir = viper.GetString("cache.dir")
	cfg.Fetch.Limit = viper.GetInt("fetch.limit")
	cfg.Fetch.Workers = viper.GetInt("fetch.workers")
	cfg.HTTP.Timeout = viper.GetDuration("http.timeout")
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	if ua := viper.GetString("http.user_agent"); ua != "" {
		cfg.HTTP.UserAgent = ua
	}

	if basicDetector {
		cfg.Detect.Variant = model.DetectBasic
	}
	if n := viper.GetInt("detect.inline_threshold"); n > 0 {
		cfg.Detect.InlineThreshold = n
	}
	if n := viper.GetInt("detect.run_threshold"); n > 0 {
		cfg.Detect.RunThreshold = n
	}

	if llmEnabled {
		cfg.LLM.Provider = "openai"
		cfg.LLM.Model = viper.GetString("llm.model")
		cfg.LLM.BaseURL = viper.GetString("llm.base_url")
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.Output.Format = viper.GetString("output.format")
	cfg.Output.Verbose = verbose
	return cfg
}

func filtersApplied() map[string]string {
	orNone := func(s string) string {
		if s == "" {
			return "None"
		}
		return s
	}
	enabled := func(b bool) string {
		if b {
			return "Enabled"
		}
		return "None"
	}
	intOrNone := func(n int) string {
		if n <= 0 {
			return "None"
		}
		return strconv.Itoa(n)
	}
	return map[string]string{
		"report":            orNone(reportKind),
		"show":              intOrNone(showN),
		"limit_report":      intOrNone(limitReport),
		"digest":            enabled(digestEnabled),
		"check_code_format": enabled(checkCodeFormat),
		"modqueue":          enabled(includeModqueue),
		"modmail":           enabled(includeModmail),
		"output":            outputFormat,
	}
}

// fetchPhase retrieves the newest posts for every subreddit, in
// parallel. In offline mode every slot is empty and the sweep works
// from the cache alone.
func fetchPhase(ctx context.Context, client *reddit.Client, subreddits []string, cfg *model.Config) []worker.FetchResult {
	if offline || client == nil {
		results := make([]worker.FetchResult, len(subreddits))
		for i, sub := range subreddits {
			results[i] = worker.FetchResult{Subreddit: sub}
		}
		return results
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Fetching %d subreddit(s) with %d worker(s)\n", len(subreddits), cfg.Fetch.Workers)
	}
	pool := worker.NewPool(cfg.Fetch.Workers)
	return pool.Run(ctx, subreddits, func(ctx context.Context, sub string) worker.FetchResult {
		fetched, err := client.NewestPosts(ctx, sub, cfg.Fetch.Limit)
		return worker.FetchResult{Subreddit: sub, Posts: fetched, Err: err}
	})
}

// subredditSweep carries everything one subreddit's sweep needs.
type subredditSweep struct {
	subreddit string
	fetched   worker.FetchResult
	posts     store.Store
	detector  *detect.Detector
	decisions *memory.Store
	client    *reddit.Client
	narrator  *llm.Narrator
}

// sweepSubreddit caches the fetch result and assembles the requested
// report sections. It returns ok=false when the subreddit produced
// nothing usable (fetch failed online), matching the original's
// skip-and-continue behavior.
func sweepSubreddit(ctx context.Context, sw subredditSweep) (*report.SubredditResult, bool) {
	if !offline && sw.fetched.Err != nil {
		log.Error("subreddit fetch failed, skipping", "subreddit", sw.subreddit, "err", sw.fetched.Err)
		return nil, false
	}

	var newPosts []model.Post
	for _, post := range sw.fetched.Posts {
		if _, isNew, err := sw.posts.Put(sw.subreddit, post); err != nil {
			log.Warn("caching post failed", "subreddit", sw.subreddit, "post", post.ID, "err", err)
		} else if isNew {
			newPosts = append(newPosts, post)
		}
	}

	result := &report.SubredditResult{
		NewPosts: newPosts,
		Summary: report.Summary{
			Subreddit:         sw.subreddit,
			NewPostsRetrieved: len(newPosts),
			TotalPostsChecked: len(sw.fetched.Posts),
		},
	}

	if includeModqueue && sw.client != nil {
		n := sw.client.ModqueueCount(ctx, sw.subreddit)
		result.ModqueueCount = &n
	}
	if includeModmail && sw.client != nil {
		n := sw.client.ModmailUnreadCount(ctx, sw.subreddit)
		result.ModmailCount = &n
	}

	cached, err := sw.posts.List(sw.subreddit)
	if err != nil {
		log.Error("listing cache failed", "subreddit", sw.subreddit, "err", err)
		return nil, false
	}

	if reportKind == "flair" {
		flair := report.Flair(cached, limitReport)
		result.Report.FlairSummary = flair
		result.Report.TotalUniqueFlairs = len(flair)
		result.Report.TotalCachedPosts = sw.posts.Count(sw.subreddit)
		if limitReport > 0 {
			result.Report.LimitedScanPosts = report.Show(cached, limitReport)
		}
	}
	if showN > 0 {
		result.Report.ShowPosts = report.Show(cached, showN)
	}
	if digestEnabled {
		digest := report.MonthlyDigest(cached, "Monthly Digest", limitReport)
		if sw.narrator != nil && digest.Message == "" {
			narrateDigest(ctx, sw.narrator, sw.subreddit, digest)
		}
		result.Report.MonthlyDigest = digest
	}
	if checkCodeFormat {
		session := review.NewSession(sw.detector, sw.decisions, os.Stdin, os.Stdout, func() bool {
			return os.Getenv(nonInteractiveEnv) != ""
		})
		violations, err := session.Run(cached)
		if err != nil {
			// Verdicts already given this run stay in memory and in
			// the returned violations; only the save needs retrying.
			log.Warn("saving decisions failed", "err", err)
		}
		result.Report.Violations = violations
		result.Report.CheckedCodeFormat = true
	}

	return result, true
}

// narrateDigest swaps in the LLM narrative when generation succeeds.
func narrateDigest(ctx context.Context, narrator *llm.Narrator, subreddit string, digest *report.Digest) {
	titles := make([]string, 0, len(digest.Posts))
	for _, p := range digest.Posts {
		titles = append(titles, p.Title)
	}
	narrative, err := narrator.Narrate(ctx, subreddit, digest.Header, titles)
	if err != nil {
		log.Warn("llm narrative failed, keeping template", "err", err)
		return
	}
	digest.Narrative = narrative
}

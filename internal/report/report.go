// Package report builds the sweep output tree and renders it as
// JSON, Markdown, or an ANSI terminal report. Everything here is pure
// formatting over already-computed data.
package report

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/ripred/reddit/internal/model"
)

// Output is the complete result of one sweep. The JSON shape matches
// the reports earlier versions of this tool produced, so downstream
// consumers keep parsing.
type Output struct {
	Results        map[string]*SubredditResult `json:"results"`
	GlobalSummary  *GlobalSummary              `json:"global_summary,omitempty"`
	FiltersApplied map[string]string           `json:"filters_applied"`

	// Order preserves the CLI argument order for renderers; JSON maps
	// are sorted by key regardless.
	Order []string `json:"-"`
}

// NewOutput creates an empty output tree.
func NewOutput(filters map[string]string) *Output {
	return &Output{
		Results:        map[string]*SubredditResult{},
		FiltersApplied: filters,
	}
}

// Add registers a subreddit result, remembering insertion order.
func (o *Output) Add(subreddit string, result *SubredditResult) {
	o.Results[subreddit] = result
	o.Order = append(o.Order, subreddit)
}

// ordered returns subreddit names in CLI order, falling back to
// sorted keys for outputs assembled without Add.
func (o *Output) ordered() []string {
	if len(o.Order) == len(o.Results) {
		return o.Order
	}
	names := make([]string, 0, len(o.Results))
	for name := range o.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubredditResult is the per-subreddit slice of the output.
type SubredditResult struct {
	NewPosts      []model.Post `json:"new_posts"`
	Summary       Summary      `json:"summary"`
	ModqueueCount *int         `json:"modqueue_count,omitempty"`
	ModmailCount  *int         `json:"modmail_count,omitempty"`
	Report        Section      `json:"report"`
}

// Summary counts the fetch outcome for one subreddit.
type Summary struct {
	Subreddit         string `json:"subreddit"`
	NewPostsRetrieved int    `json:"new_posts_retrieved"`
	TotalPostsChecked int    `json:"total_posts_checked"`
}

// Section holds the optional report blocks a sweep can produce.
type Section struct {
	FlairSummary      map[string]int    `json:"flair_summary,omitempty"`
	TotalUniqueFlairs int               `json:"total_unique_flairs,omitempty"`
	TotalCachedPosts  int               `json:"total_cached_posts,omitempty"`
	LimitedScanPosts  []PostView        `json:"limited_scan_posts,omitempty"`
	ShowPosts         []PostView        `json:"show_posts,omitempty"`
	MonthlyDigest     *Digest           `json:"monthly_digest,omitempty"`
	Violations        []model.Violation `json:"code_format_violations,omitempty"`
	CheckedCodeFormat bool              `json:"-"` // Distinguishes "no violations" from "not checked"
}

// PostView is the trimmed post shape shown in reports.
type PostView struct {
	Title    string `json:"title"`
	Selftext string `json:"selftext"`
	Author   string `json:"author"`
	Flair    string `json:"flair"`
}

// GlobalSummary aggregates across subreddits; present only when a
// sweep covered more than one.
type GlobalSummary struct {
	GlobalNetworkRetrievals int `json:"global_network_retrievals"`
	GlobalNetworkHits       int `json:"global_network_hits"`
	GlobalCachedPosts       int `json:"global_cached_posts"`
}

// Digest is the monthly digest block.
type Digest struct {
	Message   string     `json:"message,omitempty"`
	Header    string     `json:"header,omitempty"`
	Narrative string     `json:"narrative,omitempty"`
	Posts     []PostView `json:"digest_posts,omitempty"`
}

func viewOf(p model.Post) PostView {
	return PostView{
		Title:    p.Title,
		Selftext: p.Selftext,
		Author:   p.Author,
		Flair:    p.Flair(),
	}
}

// Flair tallies flair texts over the newest posts. A non-positive
// limit scans everything.
func Flair(posts []model.Post, limit int) map[string]int {
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	counts := map[string]int{}
	for _, p := range posts {
		counts[p.Flair()]++
	}
	return counts
}

// Show returns views of the newest n cached posts.
func Show(posts []model.Post, n int) []PostView {
	if n > len(posts) {
		n = len(posts)
	}
	views := make([]PostView, 0, n)
	for _, p := range posts[:n] {
		views = append(views, viewOf(p))
	}
	return views
}

// MonthlyDigest collects posts whose titles match pattern
// (case-insensitive) and wraps them in a narrative block. When
// nothing matches, the digest carries only a message.
func MonthlyDigest(posts []model.Post, pattern string, limit int) *Digest {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return &Digest{Message: fmt.Sprintf("Invalid digest pattern: %v", err)}
	}

	var matched []model.Post
	for _, p := range posts {
		if re.MatchString(p.Title) {
			matched = append(matched, p)
		}
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	if len(matched) == 0 {
		return &Digest{Message: "No Monthly Digest posts found."}
	}

	header := matched[0].Title
	highlights := ""
	for i, p := range matched {
		if i == 3 {
			break
		}
		if i > 0 {
			highlights += "; "
		}
		highlights += p.Title
	}

	digest := &Digest{
		Header: header,
		Narrative: fmt.Sprintf(
			"%s\n\nDuring this period, %d digest post(s) were identified. Highlights include: %s.\n\n"+
				"This digest summarizes key community highlights and statistics for the period.",
			header, len(matched), highlights),
	}
	for _, p := range matched {
		digest.Posts = append(digest.Posts, viewOf(p))
	}
	return digest
}

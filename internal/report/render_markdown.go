package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// RenderMarkdown writes the report as Markdown, section for section
// in the layout the tool has always used.
func RenderMarkdown(w io.Writer, out *Output) error {
	var b strings.Builder

	b.WriteString("# Subreddit Sweep Report\n\n")
	for _, name := range out.ordered() {
		result := out.Results[name]
		fmt.Fprintf(&b, "## Subreddit: %s\n\n", name)
		fmt.Fprintf(&b, "**Total posts checked:** %d\n", result.Summary.TotalPostsChecked)
		fmt.Fprintf(&b, "**New posts retrieved:** %d\n\n", result.Summary.NewPostsRetrieved)
		if result.ModqueueCount != nil {
			fmt.Fprintf(&b, "**Mod Queue Count:** %d\n\n", *result.ModqueueCount)
		}
		if result.ModmailCount != nil {
			fmt.Fprintf(&b, "**Modmail Count:** %d\n\n", *result.ModmailCount)
		}

		sec := result.Report
		if sec.FlairSummary != nil {
			b.WriteString("### Flair Report\n")
			for _, flair := range sortedKeys(sec.FlairSummary) {
				fmt.Fprintf(&b, "- **%s**: %d\n", flair, sec.FlairSummary[flair])
			}
			fmt.Fprintf(&b, "- **Total unique flairs:** %d\n", sec.TotalUniqueFlairs)
			fmt.Fprintf(&b, "- **Total cached posts (scanned for report):** %d\n\n", sec.TotalCachedPosts)
		}
		if sec.LimitedScanPosts != nil {
			fmt.Fprintf(&b, "### Limited Scan Report (Limit: %s)\n", out.FiltersApplied["limit_report"])
			writeMarkdownPosts(&b, sec.LimitedScanPosts)
		}
		if sec.ShowPosts != nil {
			b.WriteString("### Show Posts Report\n")
			writeMarkdownPosts(&b, sec.ShowPosts)
		}
		if sec.MonthlyDigest != nil {
			digest := sec.MonthlyDigest
			b.WriteString("### Monthly Digest Report\n")
			if digest.Message != "" {
				fmt.Fprintf(&b, "%s\n\n", digest.Message)
			} else {
				fmt.Fprintf(&b, "**Header:** %s\n", digest.Header)
				fmt.Fprintf(&b, "**Narrative Summary:** %s\n\n", digest.Narrative)
				b.WriteString("**Digest Posts:**\n")
				writeMarkdownPosts(&b, digest.Posts)
			}
		}
		if sec.CheckedCodeFormat {
			b.WriteString("### Code Format Violations\n")
			if len(sec.Violations) == 0 {
				b.WriteString("No confirmed violations.\n\n")
			}
			for i, v := range sec.Violations {
				fmt.Fprintf(&b, "- **Violation %d:**\n", i+1)
				fmt.Fprintf(&b, "  - Post ID: %s\n", v.ID)
				fmt.Fprintf(&b, "  - Title: %s\n", v.Title)
				fmt.Fprintf(&b, "  - Message: %s\n", v.Message)
			}
			b.WriteString("\n")
		}
	}

	if gs := out.GlobalSummary; gs != nil {
		b.WriteString("## Global Summary\n")
		fmt.Fprintf(&b, "- **Total network retrievals (over time):** %d\n", gs.GlobalNetworkRetrievals)
		fmt.Fprintf(&b, "- **Total cached posts (global):** %d\n\n", gs.GlobalCachedPosts)
	}

	b.WriteString("## Filters and options applied\n")
	for _, key := range sortedKeys(out.FiltersApplied) {
		fmt.Fprintf(&b, "- **%s:** %s\n", key, out.FiltersApplied[key])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownPosts(b *strings.Builder, posts []PostView) {
	for i, p := range posts {
		fmt.Fprintf(b, "**Post %d:**\n", i+1)
		fmt.Fprintf(b, "- Title: %s\n", p.Title)
		fmt.Fprintf(b, "- Author: %s\n", p.Author)
		fmt.Fprintf(b, "- Flair: %s\n", p.Flair)
		fmt.Fprintf(b, "- Selftext: %s\n\n", p.Selftext)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	subStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	fieldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// RenderANSI writes the human-readable terminal report.
func RenderANSI(w io.Writer, out *Output) error {
	var err error
	p := func(format string, a ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, a...)
		}
	}

	p("%s\n", titleStyle.Render("=== Human Readable Report ==="))
	for _, name := range out.ordered() {
		result := out.Results[name]
		p("%s\n", subStyle.Render("Subreddit: "+name))
		p("  %s\n", statStyle.Render(fmt.Sprintf("Total posts checked: %d", result.Summary.TotalPostsChecked)))
		p("  %s\n", statStyle.Render(fmt.Sprintf("New posts retrieved: %d", result.Summary.NewPostsRetrieved)))
		if result.ModqueueCount != nil {
			p("  %s\n", statStyle.Render(fmt.Sprintf("Mod Queue Count: %d", *result.ModqueueCount)))
		}
		if result.ModmailCount != nil {
			p("  %s\n", statStyle.Render(fmt.Sprintf("Modmail Count: %d", *result.ModmailCount)))
		}

		sec := result.Report
		if sec.FlairSummary != nil {
			p("\n  %s\n", sectionStyle.Render("Flair Report:"))
			for _, flair := range sortedKeys(sec.FlairSummary) {
				p("    %s: %d\n", flair, sec.FlairSummary[flair])
			}
			p("    %s\n", statStyle.Render(fmt.Sprintf("Total unique flairs: %d", sec.TotalUniqueFlairs)))
			p("    %s\n", statStyle.Render(fmt.Sprintf("Total cached posts (scanned for report): %d", sec.TotalCachedPosts)))
		}
		if sec.LimitedScanPosts != nil {
			p("\n  %s\n", sectionStyle.Render(fmt.Sprintf("Limited Scan Report (Limit: %s):", out.FiltersApplied["limit_report"])))
			writeANSIPosts(p, sec.LimitedScanPosts)
		}
		if sec.ShowPosts != nil {
			p("\n  %s\n", sectionStyle.Render("Show Posts Report:"))
			writeANSIPosts(p, sec.ShowPosts)
		}
		if sec.MonthlyDigest != nil {
			digest := sec.MonthlyDigest
			p("\n  %s\n", sectionStyle.Render("Monthly Digest Report:"))
			if digest.Message != "" {
				p("    %s\n", digest.Message)
			} else {
				p("    %s\n", fieldStyle.Render("Header: "+digest.Header))
				p("    %s %s\n", fieldStyle.Render("Narrative Summary:"), digest.Narrative)
				p("    %s\n", fieldStyle.Render("Digest Posts:"))
				writeANSIPosts(p, digest.Posts)
			}
		}
		if sec.CheckedCodeFormat {
			p("\n  %s\n", sectionStyle.Render("Code Format Violations:"))
			if len(sec.Violations) == 0 {
				p("    No confirmed violations.\n")
			}
			for i, v := range sec.Violations {
				p("    Violation %d:\n", i+1)
				p("      Post ID: %s\n", v.ID)
				p("      Title  : %s\n", v.Title)
				p("      Message: %s\n", v.Message)
			}
		}
		p("\n")
	}

	if gs := out.GlobalSummary; gs != nil {
		p("%s\n", subStyle.Render("Global Summary:"))
		p("  %s\n", statStyle.Render(fmt.Sprintf("Total network retrievals (over time): %d", gs.GlobalNetworkRetrievals)))
		p("  %s\n", statStyle.Render(fmt.Sprintf("Total cached posts (global): %d", gs.GlobalCachedPosts)))
	}

	p("\n%s\n", fieldStyle.Render("Filters applied:"))
	for _, key := range sortedKeys(out.FiltersApplied) {
		p("  %s: %s\n", key, out.FiltersApplied[key])
	}
	return err
}

func writeANSIPosts(p func(string, ...any), posts []PostView) {
	for i, post := range posts {
		p("    Post %d:\n", i+1)
		p("      Title  : %s\n", post.Title)
		p("      Author : %s\n", post.Author)
		p("      Flair  : %s\n", post.Flair)
		p("      Selftext: %s\n", post.Selftext)
	}
}

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ripred/reddit/internal/model"
)

func samplePosts() []model.Post {
	return []model.Post{
		{ID: "a", Title: "Monthly Digest - July", Author: "mod", CreatedUTC: 400, FlairText: "Digest", Selftext: "stats"},
		{ID: "b", Title: "LED won't blink", Author: "u1", CreatedUTC: 300, FlairText: "Help"},
		{ID: "c", Title: "My robot build", Author: "u2", CreatedUTC: 200},
		{ID: "d", Title: "Servo jitter", Author: "u3", CreatedUTC: 100, FlairText: "Help"},
	}
}

func TestFlair_CountsAndLimit(t *testing.T) {
	counts := Flair(samplePosts(), 0)

	if counts["Help"] != 2 || counts["Digest"] != 1 || counts["None"] != 1 {
		t.Errorf("Unexpected flair counts: %v", counts)
	}

	limited := Flair(samplePosts(), 2)
	if limited["Help"] != 1 || limited["Digest"] != 1 || len(limited) != 2 {
		t.Errorf("Expected only newest 2 posts counted, got %v", limited)
	}
}

func TestShow_NewestN(t *testing.T) {
	views := Show(samplePosts(), 2)

	if len(views) != 2 {
		t.Fatalf("Expected 2 views, got %d", len(views))
	}
	if views[0].Title != "Monthly Digest - July" || views[1].Title != "LED won't blink" {
		t.Errorf("Expected newest posts first, got %+v", views)
	}
	if views[1].Flair != "Help" {
		t.Errorf("Expected flair carried over, got %q", views[1].Flair)
	}

	if got := Show(samplePosts(), 99); len(got) != 4 {
		t.Errorf("Expected oversized n clamped, got %d views", len(got))
	}
}

func TestMonthlyDigest_MatchAndNarrative(t *testing.T) {
	digest := MonthlyDigest(samplePosts(), "Monthly Digest", 0)

	if digest.Message != "" {
		t.Fatalf("Expected matches, got message %q", digest.Message)
	}
	if digest.Header != "Monthly Digest - July" {
		t.Errorf("Expected header from first match, got %q", digest.Header)
	}
	if !strings.Contains(digest.Narrative, "1 digest post(s) were identified") {
		t.Errorf("Expected count in narrative, got %q", digest.Narrative)
	}
	if !strings.Contains(digest.Narrative, "Highlights include: Monthly Digest - July.") {
		t.Errorf("Expected highlights in narrative, got %q", digest.Narrative)
	}
	if len(digest.Posts) != 1 {
		t.Errorf("Expected 1 digest post, got %d", len(digest.Posts))
	}
}

func TestMonthlyDigest_CaseInsensitive(t *testing.T) {
	digest := MonthlyDigest(samplePosts(), "monthly digest", 0)
	if len(digest.Posts) != 1 {
		t.Errorf("Expected case-insensitive title match, got %+v", digest)
	}
}

func TestMonthlyDigest_NoMatches(t *testing.T) {
	digest := MonthlyDigest(samplePosts(), "Weekly Roundup", 0)

	if digest.Message != "No Monthly Digest posts found." {
		t.Errorf("Expected the no-match message, got %q", digest.Message)
	}
	if digest.Posts != nil {
		t.Errorf("Expected no digest posts, got %+v", digest.Posts)
	}
}

func buildOutput() *Output {
	out := NewOutput(map[string]string{"output": "json", "limit_report": "None"})
	three := 3
	out.Add("arduino", &SubredditResult{
		Summary:       Summary{Subreddit: "arduino", NewPostsRetrieved: 2, TotalPostsChecked: 4},
		ModqueueCount: &three,
		Report: Section{
			FlairSummary:      Flair(samplePosts(), 0),
			TotalUniqueFlairs: 3,
			TotalCachedPosts:  4,
			CheckedCodeFormat: true,
			Violations: []model.Violation{
				{ID: "b", Title: "LED won't blink", Message: model.ViolationMessage},
			},
		},
	})
	return out
}

func TestRenderJSON_Shape(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, buildOutput()); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	results, ok := decoded["results"].(map[string]any)
	if !ok {
		t.Fatal("Expected results object")
	}
	arduino, ok := results["arduino"].(map[string]any)
	if !ok {
		t.Fatal("Expected arduino result")
	}
	if arduino["modqueue_count"].(float64) != 3 {
		t.Errorf("Expected modqueue_count 3, got %v", arduino["modqueue_count"])
	}
	rep := arduino["report"].(map[string]any)
	violations := rep["code_format_violations"].([]any)
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation in JSON, got %d", len(violations))
	}
	v := violations[0].(map[string]any)
	if v["violation"] != model.ViolationMessage {
		t.Errorf("Expected stable violation message key/value, got %v", v)
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, buildOutput()); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	md := buf.String()

	for _, want := range []string{
		"## Subreddit: arduino",
		"**Total posts checked:** 4",
		"**Mod Queue Count:** 3",
		"### Flair Report",
		"- **Help**: 2",
		"### Code Format Violations",
		"- Post ID: b",
		"## Filters and options applied",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestRenderANSI_Content(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderANSI(&buf, buildOutput()); err != nil {
		t.Fatalf("RenderANSI failed: %v", err)
	}
	text := buf.String()

	for _, want := range []string{
		"Human Readable Report",
		"Subreddit: arduino",
		"Mod Queue Count: 3",
		"Code Format Violations:",
		"Post ID: b",
		"Filters applied:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected report to contain %q", want)
		}
	}
}

func TestOutput_OrderedFollowsInsertion(t *testing.T) {
	out := NewOutput(nil)
	out.Add("zzz", &SubredditResult{})
	out.Add("aaa", &SubredditResult{})

	got := out.ordered()
	if got[0] != "zzz" || got[1] != "aaa" {
		t.Errorf("Expected insertion order, got %v", got)
	}
}

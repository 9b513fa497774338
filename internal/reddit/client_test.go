package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ripred/reddit/internal/model"
)

func testConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "reddit-sweep-test",
		MaxBodyBytes: 1 << 20,
		RatePerSec:   1000, // Tests should not sleep
		RateBurst:    1000,
	}
}

func listingJSON(after string, ids ...string) string {
	var children []string
	for i, id := range ids {
		children = append(children, fmt.Sprintf(
			`{"data":{"id":%q,"title":"post %s","author":"someone","created_utc":%d,"selftext":"body","link_flair_text":null}}`,
			id, id, 1000-i))
	}
	return fmt.Sprintf(`{"data":{"after":%q,"children":[%s]}}`, after, strings.Join(children, ","))
}

func TestClient_NewestPosts(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/r/arduino/new.json" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, listingJSON("", "aaa", "bbb"))
	}))
	defer srv.Close()

	c := NewClient(testConfig())
	c.SetBaseURL(srv.URL)

	posts, err := c.NewestPosts(context.Background(), "arduino", 100)
	if err != nil {
		t.Fatalf("NewestPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
	if posts[0].ID != "aaa" || posts[0].Author != "someone" {
		t.Errorf("Unexpected first post %+v", posts[0])
	}
	if posts[0].Flair() != "None" {
		t.Errorf("Expected null flair reported as None, got %q", posts[0].Flair())
	}
	if gotUA != "reddit-sweep-test" {
		t.Errorf("Expected custom User-Agent, got %q", gotUA)
	}
}

func TestClient_NewestPostsFollowsAfterCursor(t *testing.T) {
	page := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		switch r.URL.Query().Get("after") {
		case "":
			fmt.Fprint(w, listingJSON("t3_bbb", "aaa", "bbb"))
		case "t3_bbb":
			fmt.Fprint(w, listingJSON("", "ccc"))
		default:
			t.Errorf("Unexpected cursor %q", r.URL.Query().Get("after"))
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig())
	c.SetBaseURL(srv.URL)

	posts, err := c.NewestPosts(context.Background(), "arduino", 10)
	if err != nil {
		t.Fatalf("NewestPosts failed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("Expected 3 posts across pages, got %d", len(posts))
	}
	if page != 2 {
		t.Errorf("Expected 2 page fetches, got %d", page)
	}
}

func TestClient_NewestPostsStopsAtLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Errorf("Expected page limit 2, got %q", got)
		}
		fmt.Fprint(w, listingJSON("t3_more", "aaa", "bbb"))
	}))
	defer srv.Close()

	c := NewClient(testConfig())
	c.SetBaseURL(srv.URL)

	posts, err := c.NewestPosts(context.Background(), "arduino", 2)
	if err != nil {
		t.Fatalf("NewestPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("Expected exactly the requested 2 posts, got %d", len(posts))
	}
}

func TestClient_NewestPostsEmptySubreddit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"after":"","children":[]}}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig())
	c.SetBaseURL(srv.URL)

	if _, err := c.NewestPosts(context.Background(), "ghosttown", 10); err == nil {
		t.Error("Expected error for subreddit with no posts")
	}
}

func TestClient_NewestPostsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "banned", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testConfig())
	c.SetBaseURL(srv.URL)

	if _, err := c.NewestPosts(context.Background(), "nope", 10); err == nil {
		t.Error("Expected error for HTTP 404")
	}
}

func TestClient_ModqueueCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/r/arduino/about/modqueue.json" {
			fmt.Fprint(w, listingJSON("", "aaa", "bbb", "ccc"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(testConfig())
	c.SetBaseURL(srv.URL)

	if got := c.ModqueueCount(context.Background(), "arduino"); got != 3 {
		t.Errorf("Expected 3 modqueue items, got %d", got)
	}
	// Failure path: unknown subreddit 404s and degrades to zero.
	if got := c.ModqueueCount(context.Background(), "other"); got != 0 {
		t.Errorf("Expected 0 on failure, got %d", got)
	}
}

func TestClient_ModmailUnreadCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"conversations":{"c1":{"state":0},"c2":{"state":1},"c3":{"state":0}}}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig())
	c.SetBaseURL(srv.URL)

	if got := c.ModmailUnreadCount(context.Background(), "arduino"); got != 2 {
		t.Errorf("Expected 2 unread conversations, got %d", got)
	}
}

// Package reddit is a small client for reddit's public JSON listing
// API. It fetches, it paces itself, and nothing more; everything the
// rest of the tool needs arrives as model.Post values.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/ripred/reddit/internal/model"
)

const defaultBaseURL = "https://www.reddit.com"

// pageSize is the listing page limit the API accepts.
const pageSize = 100

// Client talks to one reddit host with a shared pacer, so a sweep
// over many subreddits stays inside the public API rate limits.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxBytes   int64
	limiter    *rate.Limiter
}

// NewClient builds a client from explicit HTTP configuration.
func NewClient(cfg model.HTTPConfig) *Client {
	transport := &http.Transport{
		Proxy: proxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
	}

	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		baseURL:   defaultBaseURL,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		limiter:   rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

// proxyFunc prefers explicit proxy settings and falls back to the
// process environment.
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// SetBaseURL points the client at a different host. Tests use it to
// talk to an httptest server.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// NewestPosts fetches up to limit posts from /r/<subreddit>/new,
// newest first, following the listing's "after" cursor.
func (c *Client) NewestPosts(ctx context.Context, subreddit string, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = pageSize
	}

	var posts []model.Post
	after := ""
	for len(posts) < limit {
		page := pageSize
		if remaining := limit - len(posts); remaining < page {
			page = remaining
		}

		endpoint := fmt.Sprintf("%s/r/%s/new.json?limit=%d", c.baseURL, url.PathEscape(subreddit), page)
		if after != "" {
			endpoint += "&after=" + url.QueryEscape(after)
		}

		var page1 listing
		if err := c.getJSON(ctx, endpoint, &page1); err != nil {
			return nil, fmt.Errorf("fetch r/%s: %w", subreddit, err)
		}
		if len(page1.Data.Children) == 0 {
			break
		}
		for _, child := range page1.Data.Children {
			posts = append(posts, child.Data.toPost())
		}
		if page1.Data.After == "" {
			break
		}
		after = page1.Data.After
	}

	if len(posts) == 0 {
		return nil, fmt.Errorf("no posts found for r/%s", subreddit)
	}
	return posts, nil
}

// ModqueueCount returns the number of items waiting in the moderator
// queue. The endpoint needs moderator credentials; any failure is
// reported as zero with a warning, matching how the original handled
// it.
func (c *Client) ModqueueCount(ctx context.Context, subreddit string) int {
	endpoint := fmt.Sprintf("%s/r/%s/about/modqueue.json?limit=100", c.baseURL, url.PathEscape(subreddit))

	var queue listing
	if err := c.getJSON(ctx, endpoint, &queue); err != nil {
		log.Warn("modqueue fetch failed", "subreddit", subreddit, "err", err)
		return 0
	}
	return len(queue.Data.Children)
}

// ModmailUnreadCount returns the number of unread modmail
// conversations, zero on any failure.
func (c *Client) ModmailUnreadCount(ctx context.Context, subreddit string) int {
	endpoint := fmt.Sprintf("%s/api/mod/conversations?entity=%s&state=new", c.baseURL, url.QueryEscape(subreddit))

	var box modmailBox
	if err := c.getJSON(ctx, endpoint, &box); err != nil {
		log.Warn("modmail fetch failed", "subreddit", subreddit, "err", err)
		return 0
	}
	unread := 0
	for _, conv := range box.Conversations {
		if conv.IsNew() {
			unread++
		}
	}
	return unread
}

// getJSON performs one paced GET and decodes the body, which is read
// through a size cap so a misbehaving response cannot balloon memory.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		body = io.LimitReader(resp.Body, c.maxBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

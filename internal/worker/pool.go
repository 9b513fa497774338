// Package worker runs the fetch phase of a sweep concurrently. Only
// fetching is parallel; review and reporting stay sequential because
// they share the decision memory and the moderator's attention.
package worker

import (
	"context"
	"sync"

	"github.com/ripred/reddit/internal/model"
)

// FetchResult is the outcome of fetching one subreddit.
type FetchResult struct {
	Subreddit string
	Posts     []model.Post
	Err       error
}

// FetchFunc performs the fetch for a single subreddit.
type FetchFunc func(ctx context.Context, subreddit string) FetchResult

// Pool fans subreddit fetches out over a fixed number of workers.
type Pool struct {
	workers int
}

// NewPool creates a pool. Worker counts below one are clamped.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run fetches every subreddit and returns results in input order, so
// downstream reporting is deterministic regardless of which fetch
// finished first. A cancelled context leaves remaining slots with the
// context error instead of blocking.
func (p *Pool) Run(ctx context.Context, subreddits []string, fn FetchFunc) []FetchResult {
	results := make([]FetchResult, len(subreddits))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = FetchResult{Subreddit: subreddits[i], Err: err}
					continue
				}
				results[i] = fn(ctx, subreddits[i])
			}
		}()
	}

	for i := range subreddits {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

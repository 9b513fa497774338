// Package store is the on-disk post cache: one JSON file per post
// under a folder per subreddit, with a memory layer so repeated
// listings within a run parse each file once.
package store

import (
	"regexp"

	"github.com/ripred/reddit/internal/model"
)

// Store is what the report and review layers need from the cache.
type Store interface {
	// List returns every cached post for the subreddit, newest
	// first. Ties on created time keep a stable order across calls
	// within one run.
	List(subreddit string) ([]model.Post, error)

	// Put caches a post unless it is already cached. The returned
	// post is the authoritative copy (the existing file wins) and the
	// flag reports whether it was newly written.
	Put(subreddit string, post model.Post) (model.Post, bool, error)

	// Count returns the number of cached posts for the subreddit.
	Count(subreddit string) int
}

// customFlairsFile is a reserved name inside cache folders, written
// by older tooling; it is never a post.
const customFlairsFile = "custom_flairs.json"

var unsafeChars = regexp.MustCompile(`[^\w-]`)

// folderName maps a subreddit name to a filesystem-safe folder.
func folderName(subreddit string) string {
	return unsafeChars.ReplaceAllString(subreddit, "_")
}

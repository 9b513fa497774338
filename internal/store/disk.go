package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ripred/reddit/internal/model"
)

// DiskStore keeps posts as pretty-printed JSON files so moderators
// can inspect the cache with ordinary tools. Parsed posts are
// memoized in memory; post files are write-once so the memo never
// goes stale within a run.
type DiskStore struct {
	root string
	mem  *gocache.Cache
}

// NewDiskStore creates a store rooted at dir (created on demand).
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{
		root: dir,
		mem:  gocache.New(gocache.NoExpiration, 0),
	}
}

func (s *DiskStore) folder(subreddit string) string {
	return filepath.Join(s.root, folderName(subreddit))
}

// List implements Store. Malformed files are skipped with a warning;
// one bad file must not sink the batch.
func (s *DiskStore) List(subreddit string) ([]model.Post, error) {
	folder := s.folder(subreddit)
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache folder: %w", err)
	}

	// ReadDir returns names sorted, which keeps the created-time tie
	// order stable across calls.
	var posts []model.Post
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || name == customFlairsFile {
			continue
		}
		post, err := s.readPost(filepath.Join(folder, name))
		if err != nil {
			log.Warn("skipping unreadable cache file", "path", filepath.Join(folder, name), "err", err)
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedUTC > posts[j].CreatedUTC
	})
	return posts, nil
}

func (s *DiskStore) readPost(path string) (model.Post, error) {
	if v, ok := s.mem.Get(path); ok {
		return v.(model.Post), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.Post{}, err
	}
	var post model.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return model.Post{}, fmt.Errorf("parse post: %w", err)
	}
	s.mem.Set(path, post, gocache.NoExpiration)
	return post, nil
}

// Put implements Store. An existing cache file is authoritative: the
// post on disk is returned unchanged and nothing is rewritten.
func (s *DiskStore) Put(subreddit string, post model.Post) (model.Post, bool, error) {
	if post.ID == "" {
		return post, false, fmt.Errorf("post has no ID")
	}

	folder := s.folder(subreddit)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return post, false, fmt.Errorf("create cache folder: %w", err)
	}

	path := filepath.Join(folder, post.ID+".json")
	if cached, err := s.readPost(path); err == nil {
		return cached, false, nil
	} else if !os.IsNotExist(err) {
		log.Warn("replacing unreadable cache file", "path", path, "err", err)
	}

	data, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return post, false, fmt.Errorf("marshal post: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return post, false, fmt.Errorf("write cache file: %w", err)
	}
	s.mem.Set(path, post, gocache.NoExpiration)
	return post, true, nil
}

// Count implements Store.
func (s *DiskStore) Count(subreddit string) int {
	entries, err := os.ReadDir(s.folder(subreddit))
	if err != nil {
		return 0
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			n++
		}
	}
	return n
}

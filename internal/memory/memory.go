// Package memory keeps the moderator's durable verdicts so a post
// decided once is never presented again, across runs.
package memory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// Decision values stored per post ID. Both suppress re-presentation;
// they are kept distinct so the file records what actually happened.
const (
	DecisionExcused = "excused"
	DecisionFlagged = "flagged"
)

// sectionCodeFormat is the one section this tool owns in the decision
// file. The file is a section -> {key: value} mapping so future
// checks can add their own sections without a format change.
const sectionCodeFormat = "codeformat"

// Store is the identity-keyed decision memory. Keys are post IDs, not
// content hashes: an edited post stays excused, which is deliberate.
type Store struct {
	path     string
	sections map[string]map[string]string
}

// Load reads the decision file at path. A missing or unreadable file
// is not an error: the moderator simply has no prior decisions yet.
func Load(path string) *Store {
	s := &Store{
		path:     path,
		sections: map[string]map[string]string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("decision file unreadable, starting empty", "path", path, "err", err)
		}
		return s
	}
	if err := yaml.Unmarshal(data, &s.sections); err != nil {
		log.Warn("decision file corrupt, starting empty", "path", path, "err", err)
		s.sections = map[string]map[string]string{}
	}
	if s.sections == nil {
		s.sections = map[string]map[string]string{}
	}
	return s
}

func (s *Store) codeFormat() map[string]string {
	sec := s.sections[sectionCodeFormat]
	if sec == nil {
		sec = map[string]string{}
		s.sections[sectionCodeFormat] = sec
	}
	return sec
}

// Seen reports whether the post already has any recorded decision,
// excused or flagged.
func (s *Store) Seen(id string) bool {
	_, ok := s.codeFormat()[id]
	return ok
}

// IsExcused reports whether the moderator marked the post clean.
func (s *Store) IsExcused(id string) bool {
	return s.codeFormat()[id] == DecisionExcused
}

// MarkExcused records a "not a violation" verdict.
func (s *Store) MarkExcused(id string) {
	s.codeFormat()[id] = DecisionExcused
}

// MarkFlagged records a confirmed violation, so the same post is not
// re-reported on the next run.
func (s *Store) MarkFlagged(id string) {
	s.codeFormat()[id] = DecisionFlagged
}

// Len returns the number of recorded decisions.
func (s *Store) Len() int {
	return len(s.codeFormat())
}

// Persist writes the complete current state. The write goes through a
// temp file and rename so a crash cannot leave a half-written file.
// On failure the in-memory state is untouched; the caller may retry.
func (s *Store) Persist() error {
	data, err := yaml.Marshal(s.sections)
	if err != nil {
		return fmt.Errorf("marshal decisions: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create decision dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".app-*.yml")
	if err != nil {
		return fmt.Errorf("create temp decision file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write decisions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close decision file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace decision file: %w", err)
	}
	return nil
}

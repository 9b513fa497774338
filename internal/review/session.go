// Package review drives the interactive moderation loop over
// detector candidates, recording durable verdicts as it goes.
package review

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ripred/reddit/internal/detect"
	"github.com/ripred/reddit/internal/memory"
	"github.com/ripred/reddit/internal/model"
)

// Verdict is one moderator decision for a presented post.
type Verdict int

const (
	VerdictFlag Verdict = iota
	VerdictExcuse
	VerdictSkip
	VerdictCancel
)

// Session walks a batch of posts, presents each detector hit that has
// no prior decision, and collects confirmed violations. A session
// owns its decision store for the duration of one Run and persists it
// exactly once, whether the run finishes or is cancelled.
type Session struct {
	detector *detect.Detector
	memory   *memory.Store
	in       *bufio.Reader
	out      io.Writer

	// autoFlag is consulted once per presented post; when it returns
	// true the verdict is flag without reading input. The CLI binds
	// this to the non-interactive env flag so deep logic never reads
	// the environment itself.
	autoFlag func() bool
}

// NewSession wires a session. autoFlag may be nil for always
// interactive behavior.
func NewSession(detector *detect.Detector, mem *memory.Store, in io.Reader, out io.Writer, autoFlag func() bool) *Session {
	if autoFlag == nil {
		autoFlag = func() bool { return false }
	}
	return &Session{
		detector: detector,
		memory:   mem,
		in:       bufio.NewReader(in),
		out:      out,
		autoFlag: autoFlag,
	}
}

// Run scans posts in the given order and returns the confirmed
// violations. Posts the detector calls clean, and posts with a prior
// excused or flagged decision, pass through silently. The returned
// error, if any, is a persist failure; the violation list is valid
// either way and decisions already made are kept in memory so the
// caller may retry persistence.
func (s *Session) Run(posts []model.Post) ([]model.Violation, error) {
	var violations []model.Violation

scan:
	for _, post := range posts {
		if post.ID == "" || s.memory.Seen(post.ID) {
			continue
		}
		if !s.detector.Detect(post.Selftext) {
			continue
		}

		s.present(post)

		switch s.verdict(post) {
		case VerdictFlag:
			violations = append(violations, model.NewViolation(post))
			s.memory.MarkFlagged(post.ID)
		case VerdictExcuse:
			s.memory.MarkExcused(post.ID)
		case VerdictSkip:
			// No decision recorded: the post comes back next run.
		case VerdictCancel:
			fmt.Fprintln(s.out, "Cancelling code format check.")
			break scan
		}
	}

	if err := s.memory.Persist(); err != nil {
		return violations, fmt.Errorf("persist decisions: %w", err)
	}
	return violations, nil
}

// present prints the candidate with its full, untruncated body.
func (s *Session) present(post model.Post) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Potential Code Format Violation Detected:")
	fmt.Fprintf(s.out, "Post ID: %s\n", post.ID)
	fmt.Fprintf(s.out, "Title: %s\n", post.Title)
	fmt.Fprintf(s.out, "Author: %s\n", post.Author)
	fmt.Fprintln(s.out, "Complete Selftext:")
	fmt.Fprintln(s.out, post.Selftext)
}

// verdict obtains one decision for the presented post. Unrecognized
// input re-prompts for the same post; EOF or a read error cancels the
// session so piped input can never hang.
func (s *Session) verdict(post model.Post) Verdict {
	if s.autoFlag() {
		fmt.Fprintln(s.out, "Non-interactive mode set; automatically flagging this post.")
		return VerdictFlag
	}

	for {
		fmt.Fprint(s.out, "Does this post contain unformatted code? (y/n/s/c): ")
		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			return VerdictCancel
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return VerdictFlag
		case "n":
			return VerdictExcuse
		case "s":
			return VerdictSkip
		case "c":
			return VerdictCancel
		}
		if err != nil {
			// Trailing partial line without newline and no verdict.
			return VerdictCancel
		}
	}
}

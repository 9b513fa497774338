package detect

import (
	"strings"

	"github.com/ripred/reddit/internal/model"
)

// Detector decides whether a post body contains unformatted source
// code. It is stateless and safe to reuse across posts.
type Detector struct {
	cfg model.DetectConfig
}

// NewDetector builds a detector from explicit configuration. Zero
// thresholds fall back to the defaults so a sparse config file keeps
// the tuned behavior.
func NewDetector(cfg model.DetectConfig) *Detector {
	def := model.DefaultConfig().Detect
	if cfg.Variant == "" {
		cfg.Variant = def.Variant
	}
	if cfg.InlineThreshold <= 0 {
		cfg.InlineThreshold = def.InlineThreshold
	}
	if cfg.RunThreshold <= 0 {
		cfg.RunThreshold = def.RunThreshold
	}
	if cfg.LongPostLines <= 0 {
		cfg.LongPostLines = def.LongPostLines
	}
	if cfg.LongPostCodeFraction <= 0 {
		cfg.LongPostCodeFraction = def.LongPostCodeFraction
	}
	return &Detector{cfg: cfg}
}

// Detect reports whether body, after stripping properly formatted
// code, still reads like pasted source.
//
// Extended variant, in order:
//  1. long-post suppression: a post with more than LongPostLines
//     non-empty lines and a code fraction under LongPostCodeFraction
//     is clean, full stop; long prose that mentions a few code
//     tokens must not nag the moderator;
//  2. density: any single line with InlineThreshold or more idiom
//     matches is a violation on its own;
//  3. run-length: RunThreshold consecutive code-like lines is a
//     violation.
//
// Basic variant keeps inline spans in the text and runs the
// run-length check alone.
func (d *Detector) Detect(body string) bool {
	extended := d.cfg.Variant == model.DetectExtended
	cleaned := Normalize(body, extended)

	// Blank lines are invisible to every check: never counted, never
	// break or extend a run.
	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if extended {
		if len(lines) > d.cfg.LongPostLines {
			codeLines := 0
			for _, line := range lines {
				if LooksLikeCode(line) {
					codeLines++
				}
			}
			if float64(codeLines)/float64(len(lines)) < d.cfg.LongPostCodeFraction {
				return false
			}
		}

		for _, line := range lines {
			if CountMatches(line) >= d.cfg.InlineThreshold {
				return true
			}
		}
	}

	run := 0
	for _, line := range lines {
		if LooksLikeCode(line) {
			run++
			if run >= d.cfg.RunThreshold {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

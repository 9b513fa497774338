package detect

import (
	"html"
	"regexp"
	"strings"
)

// inlineSpan matches a single-backtick code span on one line.
var inlineSpan = regexp.MustCompile("`[^`\n]+`")

// Normalize prepares a raw post body for classification: HTML
// entities are decoded first (escaped angle brackets hide #include
// lines otherwise), then every properly marked code region is
// removed so only prose-context text remains.
//
// Fenced blocks are tracked with a parity toggle: a line whose
// trimmed content starts with ``` flips the inside flag and is
// dropped itself. An odd number of fence markers therefore swallows
// everything to the end of the document. That matches how the
// heuristics have always behaved and is relied on by callers.
func Normalize(raw string, stripInline bool) string {
	text := html.UnescapeString(raw)

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	inside := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inside = !inside
			continue
		}
		if inside {
			continue
		}
		// Indented code blocks: dropped outright, not unindented.
		if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}
		if stripInline {
			line = inlineSpan.ReplaceAllString(line, "")
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

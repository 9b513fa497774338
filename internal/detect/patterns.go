package detect

import "regexp"

// codePatterns are the surface idioms that mark a line as probable
// Arduino/C/C++ source. They match anywhere in the line; this is a
// likelihood estimate over prose, not a parser, and the review loop
// exists because it gets things wrong.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:#\s*)?include\s*<[^>]+>`),
	regexp.MustCompile(`(?i)\bvoid\s+\w+\s*\([^)]*\)\s*{`),
	regexp.MustCompile(`(?i)\bfor\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)\bwhile\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)\bif\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)\bSerial\.println\s*\(`),
	regexp.MustCompile(`(?i)\bpinMode\s*\(`),
	regexp.MustCompile(`(?i)\bdigitalWrite\s*\(`),
	regexp.MustCompile(`(?i)\banalogRead\s*\(`),
	regexp.MustCompile(`(?i)\banalogWrite\s*\(`),
	regexp.MustCompile(`(?i)printf\s*\(`),
}

// LooksLikeCode reports whether a single normalized line matches any
// code idiom. Callers normalize first; running this on raw text would
// count properly fenced code.
func LooksLikeCode(line string) bool {
	for _, p := range codePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// CountMatches returns the total number of idiom matches across all
// rules. A one-line `if(..){..}else{..}` concatenation packs several
// matches, which is what the density heuristic keys on.
func CountMatches(line string) int {
	n := 0
	for _, p := range codePatterns {
		n += len(p.FindAllString(line, -1))
	}
	return n
}

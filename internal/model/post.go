package model

// Post represents one cached subreddit submission. The JSON field
// names match the cache files written by earlier versions of this
// tool, so an existing caches/ tree keeps working.
type Post struct {
	ID         string  `json:"id"`                        // Stable reddit base36 ID, cache and memory key
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`               // Unix timestamp as reported by the API
	Selftext   string  `json:"selftext"`                  // Raw markdown body, possibly HTML-escaped
	FlairText  string  `json:"link_flair_text,omitempty"` // May be empty; reported as "None"
}

// Flair returns the flair text with the original "None" placeholder
// for unflaired posts.
func (p Post) Flair() string {
	if p.FlairText == "" {
		return "None"
	}
	return p.FlairText
}

// ViolationMessage is the fixed explanation attached to every
// confirmed violation. Kept stable for golden-output tests.
const ViolationMessage = "Post contains unformatted source code. Please format your code in proper code blocks."

// Violation records one confirmed code-formatting violation.
type Violation struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"violation"`
}

// NewViolation builds the violation record for a flagged post.
func NewViolation(p Post) Violation {
	return Violation{
		ID:      p.ID,
		Title:   p.Title,
		Message: ViolationMessage,
	}
}

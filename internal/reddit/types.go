package reddit

import "github.com/ripred/reddit/internal/model"

// listing is the envelope reddit wraps around every paged endpoint.
type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// submission carries the handful of fields this tool cares about.
// Deleted accounts come back as a JSON null author.
type submission struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        *string `json:"author"`
	CreatedUTC    float64 `json:"created_utc"`
	Selftext      string  `json:"selftext"`
	LinkFlairText *string `json:"link_flair_text"`
}

func (s submission) toPost() model.Post {
	post := model.Post{
		ID:         s.ID,
		Title:      s.Title,
		Author:     "None",
		CreatedUTC: s.CreatedUTC,
		Selftext:   s.Selftext,
	}
	if s.Author != nil && *s.Author != "" {
		post.Author = *s.Author
	}
	if s.LinkFlairText != nil {
		post.FlairText = *s.LinkFlairText
	}
	return post
}

// modmailBox is the shape of /api/mod/conversations.
type modmailBox struct {
	Conversations map[string]modmailConversation `json:"conversations"`
}

type modmailConversation struct {
	State int `json:"state"`
}

// IsNew reports whether the conversation is unread. State 0 is "new"
// in the modmail API.
func (c modmailConversation) IsNew() bool {
	return c.State == 0
}

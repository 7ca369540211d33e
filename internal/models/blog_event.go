package models

import "time"

// Blog event types published after successful mutations.
const (
	BlogCreated = "blog.created"
	BlogUpdated = "blog.updated"
	BlogDeleted = "blog.deleted"
)

// BlogEvent describes a change to a blog post.
type BlogEvent struct {
	Type          string    `json:"type"`
	BlogID        int64     `json:"blog_id,omitempty"`
	CreatorUserID string    `json:"creator_user_id,omitempty"`
	Title         string    `json:"title,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

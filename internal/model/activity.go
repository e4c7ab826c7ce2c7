package model

import "time"

// Activity is a rendered ledger or comment event for the admin dashboard and
// the live websocket feed.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	User      string    `json:"user,omitempty"`
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	PostID    string    `json:"postId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	Counters  *Counters `json:"counters,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Activity types
const (
	ActivityInteraction       = "interaction"
	ActivityInteractionRemove = "interaction_removed"
	ActivityCommentCreated    = "comment_created"
	ActivityCommentDeleted    = "comment_deleted"
)

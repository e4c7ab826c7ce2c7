package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interaction is one row of the engagement ledger. Exactly one of PostID and
// CommentID is set. NULL targets never collide in the composite unique
// indexes, so each index only constrains its own target type.
type Interaction struct {
	ID        string          `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string          `gorm:"type:uuid;not null;index:idx_interaction_user_post,unique;index:idx_interaction_user_comment,unique" json:"userId"`
	PostID    *string         `gorm:"type:uuid;index:idx_interaction_user_post,unique;index" json:"postId,omitempty"`
	CommentID *string         `gorm:"type:uuid;index:idx_interaction_user_comment,unique;index" json:"commentId,omitempty"`
	Kind      InteractionKind `gorm:"type:varchar(20);not null;index:idx_interaction_user_post,unique;index:idx_interaction_user_comment,unique" json:"type"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Post    *Post    `gorm:"foreignKey:PostID;references:ID" json:"-"`
	Comment *Comment `gorm:"foreignKey:CommentID;references:ID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Interaction) TableName() string {
	return "interactions"
}

// InteractionKind is the type of engagement recorded in the ledger.
type InteractionKind string

const (
	KindLike    InteractionKind = "like"
	KindDislike InteractionKind = "dislike"
	KindView    InteractionKind = "view"
	KindShare   InteractionKind = "share"
)

// Target types for ledger lookups
const (
	TargetTypePost    = "post"
	TargetTypeComment = "comment"
)

// Valid reports whether k is a known kind.
func (k InteractionKind) Valid() bool {
	switch k {
	case KindLike, KindDislike, KindView, KindShare:
		return true
	}
	return false
}

// Removable reports whether a user can take back an interaction of kind k.
// Views and shares are permanent once recorded.
func (k InteractionKind) Removable() bool {
	switch k {
	case KindLike, KindDislike:
		return true
	case KindView, KindShare:
		return false
	}
	return false
}

// Opposite returns the mutually exclusive kind, if any.
func (k InteractionKind) Opposite() (InteractionKind, bool) {
	switch k {
	case KindLike:
		return KindDislike, true
	case KindDislike:
		return KindLike, true
	case KindView, KindShare:
		return "", false
	}
	return "", false
}

// CounterColumn returns the posts column mirroring k.
func (k InteractionKind) CounterColumn() string {
	switch k {
	case KindLike:
		return "likes"
	case KindDislike:
		return "dislikes"
	case KindView:
		return "views"
	case KindShare:
		return "shares"
	}
	return ""
}

// Verb is the past-tense phrase used in messages and activity feeds.
func (k InteractionKind) Verb() string {
	switch k {
	case KindLike:
		return "liked"
	case KindDislike:
		return "disliked"
	case KindView:
		return "viewed"
	case KindShare:
		return "shared"
	}
	return string(k)
}

// InteractionState is the viewer's like/dislike state on one target.
type InteractionState struct {
	Liked    bool
	Disliked bool
}

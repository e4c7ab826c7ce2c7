package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a blog article. The four counters mirror the interactions ledger.
type Post struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Slug      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Excerpt   string    `gorm:"type:text" json:"excerpt"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Image     string    `gorm:"type:text" json:"image"`
	Category  string    `gorm:"type:varchar(100);index" json:"category"`
	AuthorID  string    `gorm:"type:uuid;not null;index" json:"authorId"`
	ReadTime  string    `gorm:"type:varchar(50)" json:"readTime"`
	Published bool      `gorm:"default:false;index" json:"published"`
	Likes     int64     `gorm:"not null;default:0" json:"likes"`
	Dislikes  int64     `gorm:"not null;default:0" json:"dislikes"`
	Shares    int64     `gorm:"not null;default:0" json:"shares"`
	Views     int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Post) TableName() string {
	return "posts"
}

// Counters returns the post's engagement counters.
func (p *Post) Counters() Counters {
	return Counters{Likes: p.Likes, Dislikes: p.Dislikes, Shares: p.Shares, Views: p.Views}
}

// Counters is the aggregate engagement snapshot returned after a ledger write.
type Counters struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
	Shares   int64 `json:"shares"`
	Views    int64 `json:"views"`
}

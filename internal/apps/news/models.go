package news

import (
	"time"

	"github.com/google/uuid"
)

// Article is an aggregated environmental news item pulled from external
// feeds or entered by an admin.
type Article struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:50;not null;default:'environment';index" json:"category"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	Link        string    `gorm:"size:500;uniqueIndex" json:"link"`
	Source      string    `gorm:"size:100" json:"source"`
	Likes       int       `gorm:"default:0" json:"likes"`
	Published   time.Time `gorm:"index" json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateArticleRequest struct {
	Title       string    `json:"title" validate:"required,max=300"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	Link        string    `json:"link" validate:"required,url"`
	Source      string    `json:"source"`
	Published   time.Time `json:"published"`
}

type FeedResponse struct {
	Trending []Article `json:"trending"`
	Latest   []Article `json:"latest"`
}

package news

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrDuplicateLink   = errors.New("article link already exists")
)

type NewsService struct {
	db *gorm.DB
}

func NewNewsService(db *gorm.DB) *NewsService {
	return &NewsService{db: db}
}

// Feed returns the ten most liked and twenty most recent articles,
// optionally narrowed by a text query and a publish date range.
func (s *NewsService) Feed(query string, from, to *time.Time) (*FeedResponse, error) {
	base := s.db.Model(&Article{}).Where("image_url <> ''")
	if query != "" {
		pattern := "%" + query + "%"
		base = base.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if from != nil && to != nil {
		base = base.Where("published BETWEEN ? AND ?", *from, *to)
	}

	feed := &FeedResponse{Trending: []Article{}, Latest: []Article{}}
	if err := base.Session(&gorm.Session{}).Order("likes DESC").Limit(10).Find(&feed.Trending).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Order("published DESC").Limit(20).Find(&feed.Latest).Error; err != nil {
		return nil, err
	}
	return feed, nil
}

func (s *NewsService) Latest(limit int) ([]Article, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	var articles []Article
	err := s.db.Where("image_url <> ''").Order("published DESC").Limit(limit).
		Find(&articles).Error
	return articles, err
}

// Like increments an article's like counter atomically and returns the new
// count.
func (s *NewsService) Like(id uuid.UUID) (int, error) {
	result := s.db.Model(&Article{}).Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrArticleNotFound
	}

	var article Article
	if err := s.db.First(&article, "id = ?", id).Error; err != nil {
		return 0, err
	}
	return article.Likes, nil
}

// Create ingests one article. Duplicate links are rejected so feed refreshes
// stay idempotent.
func (s *NewsService) Create(req *CreateArticleRequest) (*Article, error) {
	var existing int64
	if err := s.db.Model(&Article{}).Where("link = ?", req.Link).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrDuplicateLink
	}

	category := req.Category
	if category == "" {
		category = "environment"
	}
	published := req.Published
	if published.IsZero() {
		published = time.Now()
	}

	article := &Article{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		ImageURL:    req.ImageURL,
		Link:        req.Link,
		Source:      req.Source,
		Published:   published,
	}
	if err := s.db.Create(article).Error; err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	return article, nil
}

package news

import (
	"github.com/Pratham722007/Hackout-25/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NewsPlugin struct{}

func New() *NewsPlugin {
	return &NewsPlugin{}
}

func (p *NewsPlugin) ID() string { return "news" }

func (p *NewsPlugin) Models() []interface{} {
	return []interface{}{
		&Article{},
	}
}

func (p *NewsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewNewsHandler(NewNewsService(db))

	router.Get("/feed", handler.GetFeed)
	router.Get("/latest", handler.GetLatest)
	router.Post("/:id/like", handler.LikeArticle)
}

func (p *NewsPlugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewNewsHandler(NewNewsService(db))

	router.Post("/", handler.CreateArticle)
}

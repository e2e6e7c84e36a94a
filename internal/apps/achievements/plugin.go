package achievements

import (
	"github.com/Pratham722007/Hackout-25/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AchievementsPlugin wires the gamification domain into the platform. The
// tracker is built once in main and shared with the reports domain, which
// feeds it report events.
type AchievementsPlugin struct {
	store      Store
	tracker    *Tracker
	projection *Projection
}

func New(store Store, tracker *Tracker) *AchievementsPlugin {
	return &AchievementsPlugin{
		store:      store,
		tracker:    tracker,
		projection: NewProjection(store),
	}
}

func (p *AchievementsPlugin) ID() string { return "achievements" }

func (p *AchievementsPlugin) Models() []interface{} {
	return []interface{}{
		&Achievement{},
		&UserAchievement{},
		&UserStats{},
		&AchievementNotification{},
		&Leaderboard{},
	}
}

func (p *AchievementsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewHandler(p.tracker, p.projection, p.store)

	router.Get("/progress", handler.GetProgress)
	router.Get("/catalog", handler.GetCatalog)
	router.Get("/notifications", handler.GetNotifications)
	router.Post("/notifications/read", handler.MarkNotificationsRead)
	router.Post("/track", handler.TrackAction)
}

func (p *AchievementsPlugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewHandler(p.tracker, p.projection, p.store)

	router.Post("/seed", handler.SeedCatalog)
	router.Post("/users/:id/recalculate", handler.RecalculateUser)
	router.Post("/users/:id/accuracy", handler.SetAccuracy)
	router.Post("/leaderboard/rebuild", handler.RebuildLeaderboards)
}

func (p *AchievementsPlugin) RegisterPublicRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewHandler(p.tracker, p.projection, p.store)

	router.Get("/leaderboard", handler.GetLeaderboard)
}

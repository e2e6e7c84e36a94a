package apps

import (
	"github.com/Pratham722007/Hackout-25/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin defines the interface every platform domain must implement.
type Plugin interface {
	// ID returns the unique domain identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts domain routes on the given Fiber group.
	// The group is already prefixed with /api and has JWT middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// AdminPlugin extends Plugin with admin-only route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has both JWT and Admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// PublicPlugin extends Plugin with unauthenticated route registration,
// for surfaces like the public leaderboard and heatmap feed.
type PublicPlugin interface {
	Plugin

	// RegisterPublicRoutes mounts routes that require no JWT.
	RegisterPublicRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

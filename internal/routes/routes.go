package routes

import (
	"time"

	"github.com/Pratham722007/Hackout-25/internal/apps"
	"github.com/Pratham722007/Hackout-25/internal/config"
	"github.com/Pratham722007/Hackout-25/internal/handlers"
	"github.com/Pratham722007/Hackout-25/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	clerkHandler *handlers.ClerkWebhookHandler,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected auth routes get JWT middleware individually so the public
	// auth group stays open.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// User sync webhook (HMAC-authenticated, no JWT)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/clerk", clerkHandler.HandleEvent)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))

	// Plugin routes: a JWT-protected group per plugin, plus optional admin
	// and public surfaces.
	protected := api.Group("/p", middleware.JWTProtected(cfg))
	public := api.Group("/public")
	for _, p := range plugins {
		p.RegisterRoutes(protected.Group("/"+p.ID()), db, cfg)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin.Group("/"+p.ID()), db, cfg)
		}
		if pp, ok := p.(apps.PublicPlugin); ok {
			pp.RegisterPublicRoutes(public.Group("/"+p.ID()), db, cfg)
		}
	}
}

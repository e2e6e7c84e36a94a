package achievements

import (
	"time"

	"github.com/Pratham722007/Hackout-25/internal/dto"
	"github.com/Pratham722007/Hackout-25/internal/identity"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handler struct {
	tracker    *Tracker
	projection *Projection
	store      Store
	validate   *validator.Validate
}

func NewHandler(tracker *Tracker, projection *Projection, store Store) *Handler {
	return &Handler{
		tracker:    tracker,
		projection: projection,
		store:      store,
		validate:   validator.New(),
	}
}

// GetProgress handles GET /progress - the user's achievement dashboard.
func (h *Handler) GetProgress(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	summary, err := h.projection.ProgressSummary(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load progress",
		})
	}
	return c.JSON(summary)
}

// GetCatalog handles GET /catalog - all active achievements grouped by
// category with the user's progress.
func (h *Handler) GetCatalog(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	grouped, err := h.projection.CatalogWithProgress(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load achievements",
		})
	}
	return c.JSON(fiber.Map{"categories": grouped})
}

// GetNotifications handles GET /notifications - unread unlock notifications.
func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	notifications, err := h.projection.UnreadNotifications(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load notifications",
		})
	}
	return c.JSON(fiber.Map{"notifications": notifications, "count": len(notifications)})
}

// MarkNotificationsRead handles POST /notifications/read. An empty body
// acknowledges everything.
func (h *Handler) MarkNotificationsRead(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req MarkReadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid request body",
			})
		}
	}

	if err := h.projection.MarkRead(userID, req.NotificationIDs); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to mark notifications read",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// TrackAction handles POST /track - client-reported activity events.
// Only map views are accepted here; report events come from the report
// pipeline itself.
func (h *Handler) TrackAction(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req TrackActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "action_type is required",
		})
	}

	switch req.ActionType {
	case "map_view":
		h.tracker.TrackMapView(userID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Unsupported action type",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetLeaderboard handles GET /leaderboard?metric=points&limit=10. Public.
func (h *Handler) GetLeaderboard(c *fiber.Ctx) error {
	metric := ParseRankMetric(c.Query("metric", string(RankByPoints)))
	limit := c.QueryInt("limit", leaderboardLimit)

	board, err := h.projection.Leaderboard(metric, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load leaderboard",
		})
	}
	return c.JSON(board)
}

// SeedCatalog handles POST /admin/seed - inserts missing catalog entries.
func (h *Handler) SeedCatalog(c *fiber.Ctx) error {
	created, err := SeedDefaults(h.store)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to seed achievements",
		})
	}
	return c.JSON(fiber.Map{"created": created})
}

// RecalculateUser handles POST /admin/users/:id/recalculate.
func (h *Handler) RecalculateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}
	if err := h.tracker.Reevaluate(userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to recalculate achievements",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// SetAccuracy handles POST /admin/users/:id/accuracy.
func (h *Handler) SetAccuracy(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	var req SetAccuracyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Accuracy must be between 0 and 100",
		})
	}

	if err := h.tracker.SetValidationAccuracy(userID, req.Accuracy); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update accuracy",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// RebuildLeaderboards handles POST /admin/leaderboard/rebuild.
func (h *Handler) RebuildLeaderboards(c *fiber.Ctx) error {
	if err := h.projection.RebuildSnapshots(time.Now()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to rebuild leaderboards",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

package news

import (
	"errors"
	"time"

	"github.com/Pratham722007/Hackout-25/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NewsHandler struct {
	service  *NewsService
	validate *validator.Validate
}

func NewNewsHandler(service *NewsService) *NewsHandler {
	return &NewsHandler{service: service, validate: validator.New()}
}

// GetFeed handles GET /feed?q=&from=&to=.
func (h *NewsHandler) GetFeed(c *fiber.Ctx) error {
	var from, to *time.Time
	if f, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		from = &f
	}
	if t, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		end := t.AddDate(0, 0, 1)
		to = &end
	}

	feed, err := h.service.Feed(c.Query("q"), from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load news feed",
		})
	}
	return c.JSON(feed)
}

// GetLatest handles GET /latest?limit=10.
func (h *NewsHandler) GetLatest(c *fiber.Ctx) error {
	articles, err := h.service.Latest(c.QueryInt("limit", 10))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load articles",
		})
	}
	return c.JSON(fiber.Map{"articles": articles})
}

// LikeArticle handles POST /:id/like.
func (h *NewsHandler) LikeArticle(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid article id",
		})
	}

	likes, err := h.service.Like(id)
	if errors.Is(err, ErrArticleNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Article not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to like article",
		})
	}
	return c.JSON(fiber.Map{"likes": likes})
}

// CreateArticle handles POST / (admin).
func (h *NewsHandler) CreateArticle(c *fiber.Ctx) error {
	var req CreateArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Title and a valid link are required",
		})
	}

	article, err := h.service.Create(&req)
	if errors.Is(err, ErrDuplicateLink) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Article already ingested",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create article",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

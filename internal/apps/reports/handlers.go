package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/Pratham722007/Hackout-25/internal/dto"
	"github.com/Pratham722007/Hackout-25/internal/identity"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	service  *ReportService
	export   *ExportService
	validate *validator.Validate
}

func NewReportHandler(service *ReportService, export *ExportService) *ReportHandler {
	return &ReportHandler{
		service:  service,
		export:   export,
		validate: validator.New(),
	}
}

// CreateReport handles POST /reports.
func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Title, description and report type are required",
		})
	}

	report, err := h.service.Create(userID, &req)
	switch {
	case errors.Is(err, ErrInvalidType):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Unknown report type",
		})
	case errors.Is(err, ErrInvalidSeverity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Unknown severity",
		})
	case errors.Is(err, ErrInvalidCoordinate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Coordinates out of range",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create report",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// ListReports handles GET /reports with filter and pagination query params.
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	resp, err := h.service.List(
		c.Query("type"),
		c.Query("severity"),
		c.Query("status"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 20),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list reports",
		})
	}
	return c.JSON(resp)
}

// GetReport handles GET /reports/:id.
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report id",
		})
	}

	report, err := h.service.Get(id)
	if errors.Is(err, ErrReportNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Report not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load report",
		})
	}
	return c.JSON(report)
}

// GetHeatmap handles GET /heatmap. Authenticated requests count as a map
// view for the explorer achievements; anonymous ones just get the feed.
func (h *ReportHandler) GetHeatmap(c *fiber.Ctx) error {
	var viewer *uuid.UUID
	if userID, err := identity.UserIDFromContext(c); err == nil {
		viewer = &userID
	}

	points, err := h.service.Heatmap(viewer, c.Query("type"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load heatmap",
		})
	}
	return c.JSON(fiber.Map{"points": points, "count": len(points)})
}

// GetAlerts handles GET /alerts?days=7.
func (h *ReportHandler) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.service.Alerts(c.QueryInt("days", 7))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load alerts",
		})
	}
	return c.JSON(fiber.Map{"alerts": alerts, "count": len(alerts)})
}

// GetStatistics handles GET /statistics.
func (h *ReportHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load statistics",
		})
	}
	return c.JSON(stats)
}

// ValidateReport handles POST /reports/:id/validate (admin).
func (h *ReportHandler) ValidateReport(c *fiber.Ctx) error {
	validatorID, err := identity.UserIDFromContext(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report id",
		})
	}

	var req ValidateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.service.Validate(validatorID, id, &req)
	switch {
	case errors.Is(err, ErrInvalidStatus):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Status must be validated, rejected or under_review",
		})
	case errors.Is(err, ErrReportNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Report not found",
		})
	case errors.Is(err, ErrAlreadyValidated):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Report was already reviewed",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update report",
		})
	}
	return c.JSON(report)
}

// ExportCSV handles GET /export/csv (admin).
func (h *ReportHandler) ExportCSV(c *fiber.Ctx) error {
	data, err := h.export.ExportCSV(c.Query("status"))
	if errors.Is(err, ErrInvalidStatus) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Unknown status filter",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to export reports",
		})
	}

	filename := fmt.Sprintf("reports_%s.csv", time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}

package reports

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Pratham722007/Hackout-25/internal/classifier"
	"github.com/Pratham722007/Hackout-25/internal/geocoding"
	"github.com/Pratham722007/Hackout-25/internal/mailer"
	"github.com/Pratham722007/Hackout-25/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidType       = errors.New("invalid report type")
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidCoordinate = errors.New("coordinates out of range")
	ErrAlreadyValidated  = errors.New("report already validated")
)

// ActivityTracker receives activity events from the report pipeline.
// Satisfied by the achievements tracker; faked in tests.
type ActivityTracker interface {
	TrackReportCreated(userID uuid.UUID, latitude, longitude float64, reportType, severity string)
	TrackReportValidated(userID uuid.UUID, reportCreatedAt time.Time)
	TrackMapView(userID uuid.UUID)
}

type ReportService struct {
	db       *gorm.DB
	tracker  ActivityTracker
	scorer   classifier.Scorer
	geocoder geocoding.Geocoder
	mail     mailer.Mailer
}

func NewReportService(db *gorm.DB, tracker ActivityTracker, scorer classifier.Scorer, geocoder geocoding.Geocoder, mail mailer.Mailer) *ReportService {
	return &ReportService{
		db:       db,
		tracker:  tracker,
		scorer:   scorer,
		geocoder: geocoder,
		mail:     mail,
	}
}

// Create validates and stores a new report. Classification and geocoding
// are best-effort enrichment: their failure never rejects the report. The
// activity event and any alert emails are fired after the row is durable.
func (s *ReportService) Create(userID uuid.UUID, req *CreateReportRequest) (*Report, error) {
	if !ValidTypes[req.ReportType] {
		return nil, ErrInvalidType
	}
	severity := req.Severity
	if severity == "" {
		severity = SeverityMedium
	}
	if !ValidSeverities[severity] {
		return nil, ErrInvalidSeverity
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return nil, ErrInvalidCoordinate
	}

	report := &Report{
		Title:       req.Title,
		Description: req.Description,
		ReportType:  req.ReportType,
		Severity:    severity,
		Status:      StatusPending,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		CreatedBy:   &userID,
	}

	if confidence, err := s.scorer.Score(req.Description, req.ReportType); err != nil {
		slog.Warn("classification failed", "report_type", req.ReportType, "error", err)
	} else {
		report.ConfidenceScore = confidence
	}

	if name, err := s.geocoder.ReverseGeocode(req.Latitude, req.Longitude); err != nil {
		slog.Warn("reverse geocoding failed", "lat", req.Latitude, "lon", req.Longitude, "error", err)
	} else {
		report.LocationName = name
	}

	if err := s.db.Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.tracker.TrackReportCreated(userID, report.Latitude, report.Longitude, report.ReportType, report.Severity)

	if report.IsHighSeverity() {
		go s.sendAlerts(report)
	}
	return report, nil
}

// sendAlerts emails every opted-in user about a high severity report.
func (s *ReportService) sendAlerts(report *Report) {
	var recipients []string
	err := s.db.Model(&models.User{}).
		Where("alerts_opt_in = ? AND is_verified = ?", true, true).
		Pluck("email", &recipients).Error
	if err != nil {
		slog.Error("failed to load alert recipients", "report_id", report.ID, "error", err)
		return
	}
	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("[%s] %s incident reported", report.Severity, report.ReportType)
	body := fmt.Sprintf(
		"A %s severity %s report was just filed.\n\nTitle: %s\nLocation: %s (%.4f, %.4f)\n\n%s\n",
		report.Severity, report.ReportType, report.Title,
		report.LocationName, report.Latitude, report.Longitude,
		report.Description,
	)
	if err := s.mail.Send(recipients, subject, body); err != nil {
		slog.Error("failed to send alert emails", "report_id", report.ID, "error", err)
	}
}

func (s *ReportService) Get(id uuid.UUID) (*Report, error) {
	var report Report
	err := s.db.First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports newest first with optional type, severity and status
// filters.
func (s *ReportService) List(reportType, severity, status string, page, limit int) (*ListReportsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&Report{})
	if reportType != "" {
		query = query.Where("report_type = ?", reportType)
	}
	if severity != "" {
		query = query.Where("severity = ?", severity)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []Report
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &ListReportsResponse{
		Reports:    items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Heatmap returns the coordinate feed for the map. Rejected reports are
// excluded. When a user is known the view counts toward their explorer
// achievements.
func (s *ReportService) Heatmap(userID *uuid.UUID, reportType string) ([]HeatmapPoint, error) {
	query := s.db.Model(&Report{}).Where("status <> ?", StatusRejected)
	if reportType != "" {
		query = query.Where("report_type = ?", reportType)
	}

	var points []HeatmapPoint
	if err := query.Order("created_at DESC").Limit(5000).Find(&points).Error; err != nil {
		return nil, err
	}

	if userID != nil {
		s.tracker.TrackMapView(*userID)
	}
	return points, nil
}

// Validate moves a pending report through review. Moving it to validated or
// rejected records the moderator and, on success, credits their validation
// activity.
func (s *ReportService) Validate(validatorID uuid.UUID, reportID uuid.UUID, req *ValidateReportRequest) (*Report, error) {
	if !ValidStatuses[req.Status] || req.Status == StatusPending {
		return nil, ErrInvalidStatus
	}

	report, err := s.Get(reportID)
	if err != nil {
		return nil, err
	}
	if report.Status == StatusValidated || report.Status == StatusRejected {
		return nil, ErrAlreadyValidated
	}

	report.Status = req.Status
	report.VerificationNotes = req.Notes
	report.ValidatedBy = &validatorID
	report.Verified = req.Status == StatusValidated
	if err := s.db.Save(report).Error; err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	if req.Status == StatusValidated || req.Status == StatusRejected {
		s.tracker.TrackReportValidated(validatorID, report.CreatedAt)
	}
	return report, nil
}

// Alerts returns recent high severity reports for the alert feed.
func (s *ReportService) Alerts(days int) ([]Report, error) {
	if days < 1 || days > 90 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	var items []Report
	err := s.db.Where("severity IN ? AND created_at >= ? AND status <> ?",
		[]string{SeverityHigh, SeverityCritical}, cutoff, StatusRejected).
		Order("created_at DESC").Find(&items).Error
	return items, err
}

// Statistics aggregates counts for the dashboard.
func (s *ReportService) Statistics() (*Statistics, error) {
	stats := &Statistics{}

	if err := s.db.Model(&Report{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}
	counts := map[string]*int64{
		StatusPending:   &stats.PendingReports,
		StatusValidated: &stats.ValidatedReports,
		StatusRejected:  &stats.RejectedReports,
	}
	for status, dst := range counts {
		if err := s.db.Model(&Report{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, err
		}
	}

	err := s.db.Model(&Report{}).
		Select("report_type, COUNT(*) as count").
		Group("report_type").Order("count DESC").
		Scan(&stats.ByType).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&Report{}).
		Select("severity, COUNT(*) as count").
		Group("severity").Order("count DESC").
		Scan(&stats.BySeverity).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

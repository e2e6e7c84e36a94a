package reports

import (
	"time"

	"github.com/google/uuid"
)

// Report types match the categories the field teams actually file.
const (
	TypeAirPollution         = "air_pollution"
	TypeWaterPollution       = "water_pollution"
	TypeNoisePollution       = "noise_pollution"
	TypeWasteManagement      = "waste_management"
	TypeDeforestation        = "deforestation"
	TypeWildlifeConservation = "wildlife_conservation"
	TypeClimateChange        = "climate_change"
	TypeOther                = "other"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

const (
	StatusPending     = "pending"
	StatusValidated   = "validated"
	StatusRejected    = "rejected"
	StatusUnderReview = "under_review"
)

var ValidTypes = map[string]bool{
	TypeAirPollution:         true,
	TypeWaterPollution:       true,
	TypeNoisePollution:       true,
	TypeWasteManagement:      true,
	TypeDeforestation:        true,
	TypeWildlifeConservation: true,
	TypeClimateChange:        true,
	TypeOther:                true,
}

var ValidSeverities = map[string]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

var ValidStatuses = map[string]bool{
	StatusPending:     true,
	StatusValidated:   true,
	StatusRejected:    true,
	StatusUnderReview: true,
}

// Report is a citizen-submitted environmental incident, the unit everything
// else in the platform hangs off: the heatmap, alerts and achievements.
type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ReportType  string    `gorm:"size:50;not null;index" json:"report_type"`
	Severity    string    `gorm:"size:20;not null;default:'medium';index" json:"severity"`
	Status      string    `gorm:"size:20;not null;default:'pending';index" json:"status"`

	Latitude     float64 `gorm:"not null;index:idx_reports_coords" json:"latitude"`
	Longitude    float64 `gorm:"not null;index:idx_reports_coords" json:"longitude"`
	LocationName string  `gorm:"size:255" json:"location_name"`
	Address      string  `gorm:"type:text" json:"address"`

	// ConfidenceScore is the classifier's 0-1 estimate that the report text
	// matches its declared type.
	ConfidenceScore   float64 `gorm:"default:0" json:"confidence_score"`
	Verified          bool    `gorm:"default:false" json:"verified"`
	VerificationNotes string  `gorm:"type:text" json:"verification_notes,omitempty"`

	CreatedBy   *uuid.UUID `gorm:"type:uuid;index" json:"created_by,omitempty"`
	ValidatedBy *uuid.UUID `gorm:"type:uuid" json:"validated_by,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsHighSeverity reports whether this report counts toward impact
// achievements and alert emails.
func (r *Report) IsHighSeverity() bool {
	return r.Severity == SeverityHigh || r.Severity == SeverityCritical
}

// HeatmapPoint is the trimmed projection served to the map client.
type HeatmapPoint struct {
	ID         uuid.UUID `json:"id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ReportType string    `json:"report_type"`
	Severity   string    `json:"severity"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// TypeCount is one slice of the report type distribution.
type TypeCount struct {
	ReportType string `json:"report_type"`
	Count      int64  `json:"count"`
}

// SeverityCount is one slice of the severity distribution.
type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int64  `json:"count"`
}

// Statistics aggregates the report corpus for the dashboard.
type Statistics struct {
	TotalReports     int64           `json:"total_reports"`
	PendingReports   int64           `json:"pending_reports"`
	ValidatedReports int64           `json:"validated_reports"`
	RejectedReports  int64           `json:"rejected_reports"`
	ByType           []TypeCount     `json:"by_type"`
	BySeverity       []SeverityCount `json:"by_severity"`
}

// --- request/response DTOs ---

type CreateReportRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	ReportType  string  `json:"report_type" validate:"required"`
	Severity    string  `json:"severity"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	Address     string  `json:"address"`
}

type ValidateReportRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type ListReportsResponse struct {
	Reports    []Report `json:"reports"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

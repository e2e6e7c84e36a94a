package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

// ExportCSV dumps the report corpus, optionally filtered by status, for
// offline analysis.
func (s *ExportService) ExportCSV(status string) ([]byte, error) {
	query := s.db.Model(&Report{})
	if status != "" {
		if !ValidStatuses[status] {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}

	var items []Report
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	headers := []string{
		"id", "title", "report_type", "severity", "status",
		"latitude", "longitude", "location_name",
		"confidence_score", "verified", "created_at",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range items {
		record := []string{
			r.ID.String(),
			r.Title,
			r.ReportType,
			r.Severity,
			r.Status,
			strconv.FormatFloat(r.Latitude, 'f', 6, 64),
			strconv.FormatFloat(r.Longitude, 'f', 6, 64),
			r.LocationName,
			strconv.FormatFloat(r.ConfidenceScore, 'f', 3, 64),
			strconv.FormatBool(r.Verified),
			r.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

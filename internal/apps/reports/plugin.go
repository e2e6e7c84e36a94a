package reports

import (
	"github.com/Pratham722007/Hackout-25/internal/classifier"
	"github.com/Pratham722007/Hackout-25/internal/config"
	"github.com/Pratham722007/Hackout-25/internal/geocoding"
	"github.com/Pratham722007/Hackout-25/internal/mailer"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReportsPlugin wires the reporting domain. The tracker comes from the
// achievements domain so report activity feeds the gamification ledger.
type ReportsPlugin struct {
	tracker ActivityTracker
}

func New(tracker ActivityTracker) *ReportsPlugin {
	return &ReportsPlugin{tracker: tracker}
}

func (p *ReportsPlugin) ID() string { return "reports" }

func (p *ReportsPlugin) Models() []interface{} {
	return []interface{}{
		&Report{},
	}
}

func (p *ReportsPlugin) handler(db *gorm.DB, cfg *config.Config) *ReportHandler {
	service := NewReportService(db, p.tracker,
		classifier.FromConfig(cfg),
		geocoding.NewHTTPGeocoder(cfg),
		mailer.FromConfig(cfg))
	return NewReportHandler(service, NewExportService(db))
}

func (p *ReportsPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := p.handler(db, cfg)

	router.Post("/reports", handler.CreateReport)
	router.Get("/reports", handler.ListReports)
	router.Get("/reports/:id", handler.GetReport)
	router.Get("/heatmap", handler.GetHeatmap)
	router.Get("/alerts", handler.GetAlerts)
	router.Get("/statistics", handler.GetStatistics)
}

func (p *ReportsPlugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := p.handler(db, cfg)

	router.Post("/reports/:id/validate", handler.ValidateReport)
	router.Get("/export/csv", handler.ExportCSV)
}

func (p *ReportsPlugin) RegisterPublicRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := p.handler(db, cfg)

	router.Get("/heatmap", handler.GetHeatmap)
}

package achievements

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// highSeverityLevels are report severities counted toward impact achievements.
var highSeverityLevels = map[string]bool{
	"high":     true,
	"critical": true,
}

// helpfulValidationWindow is how soon after submission a validation still
// counts as a quick response.
const helpfulValidationWindow = 24 * time.Hour

// Tracker ingests activity events into the per-user ledger and triggers an
// evaluation pass after each one. Tracking is fire-and-forget: failures are
// logged and swallowed so a broken ledger never blocks the action that
// produced the event.
type Tracker struct {
	store Store
}

func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// TrackReportCreated records a submitted report: counters, location and type
// variety, severity and the daily streak, then evaluates achievements.
func (t *Tracker) TrackReportCreated(userID uuid.UUID, latitude, longitude float64, reportType, severity string) {
	err := t.store.WithinUserLock(userID, func(tx Store) error {
		stats, err := tx.GetOrCreateStats(userID)
		if err != nil {
			return err
		}
		stats.ReportsCreated++
		stats.AddLocation(latitude, longitude)
		stats.AddReportType(reportType)
		if highSeverityLevels[severity] {
			stats.HighSeverityFound++
		}
		stats.UpdateStreak(time.Now())
		if err := tx.SaveStats(stats); err != nil {
			return err
		}
		return evaluate(tx, stats, TriggerReportCreated)
	})
	if err != nil {
		slog.Error("failed to track report creation", "user_id", userID, "error", err)
	}
}

// TrackReportValidated records a validation performed by the user. A
// validation within 24 hours of the report's submission also counts as
// helpful.
func (t *Tracker) TrackReportValidated(userID uuid.UUID, reportCreatedAt time.Time) {
	err := t.store.WithinUserLock(userID, func(tx Store) error {
		stats, err := tx.GetOrCreateStats(userID)
		if err != nil {
			return err
		}
		stats.ReportsValidated++
		if time.Since(reportCreatedAt) <= helpfulValidationWindow {
			stats.HelpfulValidations++
		}
		stats.UpdateStreak(time.Now())
		if err := tx.SaveStats(stats); err != nil {
			return err
		}
		return evaluate(tx, stats, TriggerReportValidated)
	})
	if err != nil {
		slog.Error("failed to track report validation", "user_id", userID, "error", err)
	}
}

// TrackMapView records one heatmap view.
func (t *Tracker) TrackMapView(userID uuid.UUID) {
	err := t.store.WithinUserLock(userID, func(tx Store) error {
		stats, err := tx.GetOrCreateStats(userID)
		if err != nil {
			return err
		}
		stats.MapViews++
		stats.UpdateStreak(time.Now())
		if err := tx.SaveStats(stats); err != nil {
			return err
		}
		return evaluate(tx, stats, TriggerMapView)
	})
	if err != nil {
		slog.Error("failed to track map view", "user_id", userID, "error", err)
	}
}

// SetValidationAccuracy stores an externally computed accuracy score
// (0-100) and re-evaluates accuracy achievements. Unlike the Track methods
// this is an explicit admin action, so errors are returned.
func (t *Tracker) SetValidationAccuracy(userID uuid.UUID, accuracy float64) error {
	if accuracy < 0 {
		accuracy = 0
	} else if accuracy > 100 {
		accuracy = 100
	}
	return t.store.WithinUserLock(userID, func(tx Store) error {
		stats, err := tx.GetOrCreateStats(userID)
		if err != nil {
			return err
		}
		stats.ValidationAccuracy = accuracy
		if err := tx.SaveStats(stats); err != nil {
			return err
		}
		return evaluate(tx, stats, TriggerRecalculation)
	})
}

// Reevaluate runs a full evaluation pass without mutating counters. Used by
// admins after catalog changes or to repair drift.
func (t *Tracker) Reevaluate(userID uuid.UUID) error {
	return t.store.WithinUserLock(userID, func(tx Store) error {
		stats, err := tx.GetOrCreateStats(userID)
		if err != nil {
			return err
		}
		return evaluate(tx, stats, TriggerRecalculation)
	})
}

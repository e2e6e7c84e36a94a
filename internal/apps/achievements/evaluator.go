package achievements

import (
	"fmt"
	"log/slog"
	"time"
)

// metricValue maps an achievement metric onto the ledger field it measures.
// Unknown metrics read as zero so a bad catalog row can never unlock.
func metricValue(stats *UserStats, metric Metric) int {
	switch metric {
	case MetricReportCount:
		return stats.ReportsCreated
	case MetricValidationCount:
		return stats.ReportsValidated
	case MetricStreakDays:
		return stats.StreakBest
	case MetricMapUsage:
		return stats.MapViews
	case MetricHighSeverity:
		return stats.HighSeverityFound
	case MetricAccuracyScore:
		return int(stats.ValidationAccuracy)
	case MetricLocationVariety:
		return len(stats.Locations())
	case MetricReportTypes:
		return len(stats.ReportTypes())
	case MetricQuickResponse:
		return stats.HelpfulValidations
	case MetricCommunityHelp:
		return stats.CommunityContributions
	default:
		return 0
	}
}

// evaluate scans every active achievement against the current ledger. A
// failure on one achievement is logged and the scan continues; one broken
// catalog row must not block the rest.
func evaluate(store Store, stats *UserStats, trigger Trigger) error {
	active, err := store.ActiveAchievements()
	if err != nil {
		return fmt.Errorf("failed to load achievement catalog: %w", err)
	}
	for i := range active {
		if err := evaluateOne(store, stats, &active[i]); err != nil {
			slog.Error("achievement evaluation failed",
				"achievement", active[i].Name,
				"user_id", stats.UserID,
				"trigger", trigger,
				"error", err)
		}
	}
	return nil
}

func evaluateOne(store Store, stats *UserStats, a *Achievement) error {
	progress, err := store.GetOrCreateProgress(stats.UserID, a.ID)
	if err != nil {
		return err
	}
	if progress.IsUnlocked {
		return nil
	}
	progress.CurrentProgress = metricValue(stats, a.Metric)
	if progress.CurrentProgress >= a.TargetValue {
		return unlock(store, stats, a, progress)
	}
	return store.SaveProgress(progress)
}

// unlock flips the achievement to unlocked, records the notification and
// awards its points. Progress is pinned to the target even if the underlying
// counter keeps growing.
func unlock(store Store, stats *UserStats, a *Achievement, progress *UserAchievement) error {
	now := time.Now()
	progress.IsUnlocked = true
	progress.UnlockedAt = &now
	progress.CurrentProgress = a.TargetValue
	progress.NotificationSent = true
	if err := store.SaveProgress(progress); err != nil {
		return err
	}

	notification := &AchievementNotification{
		UserID:        stats.UserID,
		AchievementID: a.ID,
		Message:       fmt.Sprintf("Achievement Unlocked: %s! %s", a.Name, a.Description),
	}
	if err := store.CreateNotification(notification); err != nil {
		return err
	}

	stats.TotalPoints += a.Points
	stats.AchievementsUnlocked++
	stats.RecalcLevel()
	if err := store.SaveStats(stats); err != nil {
		return err
	}

	slog.Info("achievement unlocked",
		"achievement", a.Name,
		"tier", a.Tier,
		"points", a.Points,
		"user_id", stats.UserID)
	return nil
}

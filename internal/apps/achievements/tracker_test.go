package achievements

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededTracker(t *testing.T, defs []Achievement) (*Tracker, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	_, err := store.SeedAchievements(defs)
	require.NoError(t, err)
	return NewTracker(store), store
}

func findProgress(t *testing.T, store *MemoryStore, userID uuid.UUID, name string) *UserAchievement {
	t.Helper()
	progress, err := store.ListProgress(userID)
	require.NoError(t, err)
	for i := range progress {
		if progress[i].Achievement.Name == name {
			return &progress[i]
		}
	}
	return nil
}

func TestFirstReportUnlocks(t *testing.T) {
	tracker, store := seededTracker(t, DefaultCatalog())
	userID := uuid.New()

	tracker.TrackReportCreated(userID, 40.0, -73.0, "air_pollution", "low")

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReportsCreated)
	assert.Equal(t, 10, stats.TotalPoints)
	assert.Equal(t, 1, stats.AchievementsUnlocked)

	first := findProgress(t, store, userID, "First Report")
	require.NotNil(t, first)
	assert.True(t, first.IsUnlocked)
	assert.Equal(t, 1, first.CurrentProgress)
	require.NotNil(t, first.UnlockedAt)

	notifications, err := store.UnreadNotifications(userID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "First Report")
}

func TestUnlockIsOneShot(t *testing.T) {
	tracker, store := seededTracker(t, []Achievement{
		{Name: "First Report", Category: CategoryReporter, Tier: TierBronze, Metric: MetricReportCount, TargetValue: 1, Points: 10},
	})
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		tracker.TrackReportCreated(userID, 40.0+float64(i), -73.0, "other", "low")
	}

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.ReportsCreated)
	assert.Equal(t, 10, stats.TotalPoints, "points awarded exactly once")
	assert.Equal(t, 1, stats.AchievementsUnlocked)

	notifications, err := store.UnreadNotifications(userID)
	require.NoError(t, err)
	assert.Len(t, notifications, 1, "notification created exactly once")

	first := findProgress(t, store, userID, "First Report")
	require.NotNil(t, first)
	assert.Equal(t, 1, first.CurrentProgress, "progress pinned to target after unlock")
}

func TestProgressAdvancesBelowTarget(t *testing.T) {
	tracker, store := seededTracker(t, []Achievement{
		{Name: "Environmental Activist", Category: CategoryReporter, Tier: TierSilver, Metric: MetricReportCount, TargetValue: 5, Points: 25},
	})
	userID := uuid.New()

	tracker.TrackReportCreated(userID, 40.0, -73.0, "other", "low")
	tracker.TrackReportCreated(userID, 41.0, -73.0, "other", "low")

	progress := findProgress(t, store, userID, "Environmental Activist")
	require.NotNil(t, progress)
	assert.False(t, progress.IsUnlocked)
	assert.Equal(t, 2, progress.CurrentProgress)

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPoints)
}

func TestExactTargetUnlocks(t *testing.T) {
	tracker, store := seededTracker(t, []Achievement{
		{Name: "Getting Started", Category: CategoryReporter, Tier: TierBronze, Metric: MetricReportCount, TargetValue: 3, Points: 15},
	})
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		tracker.TrackReportCreated(userID, 40.0+float64(i), -73.0, "other", "low")
	}

	progress := findProgress(t, store, userID, "Getting Started")
	require.NotNil(t, progress)
	assert.True(t, progress.IsUnlocked, "reaching the target exactly unlocks")
}

func TestHighSeverityCounting(t *testing.T) {
	tracker, store := seededTracker(t, nil)
	userID := uuid.New()

	tracker.TrackReportCreated(userID, 40.0, -73.0, "air_pollution", "high")
	tracker.TrackReportCreated(userID, 41.0, -73.0, "water_pollution", "critical")
	tracker.TrackReportCreated(userID, 42.0, -73.0, "noise_pollution", "medium")

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.HighSeverityFound)
}

func TestLocationAndTypeVarietyThroughTracker(t *testing.T) {
	tracker, store := seededTracker(t, nil)
	userID := uuid.New()

	tracker.TrackReportCreated(userID, 40.0000, -73.0000, "air_pollution", "low")
	tracker.TrackReportCreated(userID, 40.0050, -73.0050, "air_pollution", "low")
	tracker.TrackReportCreated(userID, 40.0200, -73.0200, "waste_management", "low")

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Len(t, stats.Locations(), 2, "nearby coordinates collapse into one")
	assert.Len(t, stats.ReportTypes(), 2)
	assert.Equal(t, 3, stats.ReportsCreated)
}

func TestValidationWithinWindowIsHelpful(t *testing.T) {
	tracker, store := seededTracker(t, nil)
	userID := uuid.New()

	tracker.TrackReportValidated(userID, time.Now().Add(-time.Hour))
	tracker.TrackReportValidated(userID, time.Now().Add(-25*time.Hour))

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ReportsValidated)
	assert.Equal(t, 1, stats.HelpfulValidations, "only the validation inside 24h counts")
}

func TestMapViewTracking(t *testing.T) {
	tracker, store := seededTracker(t, []Achievement{
		{Name: "Map Explorer", Category: CategoryExplorer, Tier: TierBronze, Metric: MetricMapUsage, TargetValue: 5, Points: 15},
	})
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		tracker.TrackMapView(userID)
	}

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.MapViews)
	assert.Equal(t, 15, stats.TotalPoints)

	explorer := findProgress(t, store, userID, "Map Explorer")
	require.NotNil(t, explorer)
	assert.True(t, explorer.IsUnlocked)
}

func TestSetValidationAccuracyClampsAndEvaluates(t *testing.T) {
	tracker, store := seededTracker(t, []Achievement{
		{Name: "Sharp Eye", Category: CategoryExpert, Tier: TierGold, Metric: MetricAccuracyScore, TargetValue: 80, Points: 100},
	})
	userID := uuid.New()

	require.NoError(t, tracker.SetValidationAccuracy(userID, 150))

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), stats.ValidationAccuracy)

	sharp := findProgress(t, store, userID, "Sharp Eye")
	require.NotNil(t, sharp)
	assert.True(t, sharp.IsUnlocked)
}

func TestUnknownMetricNeverUnlocks(t *testing.T) {
	tracker, store := seededTracker(t, []Achievement{
		{Name: "Mystery", Category: CategoryPioneer, Tier: TierBronze, Metric: Metric("teleport_count"), TargetValue: 1, Points: 5},
	})
	userID := uuid.New()

	tracker.TrackReportCreated(userID, 40.0, -73.0, "other", "low")

	mystery := findProgress(t, store, userID, "Mystery")
	require.NotNil(t, mystery)
	assert.False(t, mystery.IsUnlocked)
	assert.Zero(t, mystery.CurrentProgress)
}

func TestPointsMatchUnlockedSum(t *testing.T) {
	tracker, store := seededTracker(t, DefaultCatalog())
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		tracker.TrackReportCreated(userID, 40.0+float64(i)*0.05, -73.0, "other", "low")
	}
	tracker.TrackReportValidated(userID, time.Now().Add(-time.Hour))

	stats, err := store.GetStats(userID)
	require.NoError(t, err)

	progress, err := store.ListProgress(userID)
	require.NoError(t, err)
	sum := 0
	unlocked := 0
	for _, ua := range progress {
		if ua.IsUnlocked {
			sum += ua.Achievement.Points
			unlocked++
		}
	}
	assert.Equal(t, sum, stats.TotalPoints)
	assert.Equal(t, unlocked, stats.AchievementsUnlocked)
	assert.Equal(t, LevelForPoints(stats.TotalPoints), stats.Level)
}

func TestReevaluateRepairsDrift(t *testing.T) {
	tracker, store := seededTracker(t, []Achievement{
		{Name: "Dedicated Reporter", Category: CategoryReporter, Tier: TierSilver, Metric: MetricReportCount, TargetValue: 10, Points: 50},
	})
	userID := uuid.New()

	// Counters written outside the tracker, as a migration backfill would.
	stats, err := store.GetOrCreateStats(userID)
	require.NoError(t, err)
	stats.ReportsCreated = 12
	require.NoError(t, store.SaveStats(stats))

	require.NoError(t, tracker.Reevaluate(userID))

	dedicated := findProgress(t, store, userID, "Dedicated Reporter")
	require.NotNil(t, dedicated)
	assert.True(t, dedicated.IsUnlocked)
}

package achievements

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressSummaryForNewUser(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements(DefaultCatalog())
	require.NoError(t, err)
	projection := NewProjection(store)

	summary, err := projection.ProgressSummary(uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Level)
	assert.Zero(t, summary.TotalPoints)
	assert.Zero(t, summary.AchievementsUnlocked)
	assert.Equal(t, len(DefaultCatalog()), summary.TotalAchievements)
	assert.Zero(t, summary.CompletionPercentage)
	assert.Equal(t, 1, summary.UserRank)
	assert.Equal(t, 150, summary.NextLevelPoints)
	assert.Empty(t, summary.RecentAchievements)
	assert.Empty(t, summary.InProgress)
}

func TestProgressSummaryAfterActivity(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements(DefaultCatalog())
	require.NoError(t, err)
	tracker := NewTracker(store)
	projection := NewProjection(store)
	userID := uuid.New()

	tracker.TrackReportCreated(userID, 40.0, -73.0, "air_pollution", "low")

	summary, err := projection.ProgressSummary(userID)
	require.NoError(t, err)

	assert.Equal(t, 10, summary.TotalPoints)
	assert.Equal(t, 1, summary.AchievementsUnlocked)
	assert.Equal(t, 1, summary.ReportsCreated)
	assert.Equal(t, 1, summary.StreakCurrent)
	require.NotEmpty(t, summary.RecentAchievements)
	assert.Equal(t, "First Report", summary.RecentAchievements[0].Name)
	assert.NotEmpty(t, summary.InProgress, "partially progressed achievements surface")
	assert.LessOrEqual(t, len(summary.InProgress), 5)
}

func TestCompletionPercentageRounding(t *testing.T) {
	assert.Equal(t, 0.0, completionPercentage(0, 0))
	assert.Equal(t, 0.0, completionPercentage(0, 24))
	assert.Equal(t, 4.2, completionPercentage(1, 24))
	assert.Equal(t, 33.3, completionPercentage(8, 24))
	assert.Equal(t, 100.0, completionPercentage(24, 24))
}

func TestRankCountsStrictlyGreater(t *testing.T) {
	store := NewMemoryStore()

	for _, points := range []int{500, 300, 300, 100} {
		userID := uuid.New()
		stats, err := store.GetOrCreateStats(userID)
		require.NoError(t, err)
		stats.TotalPoints = points
		require.NoError(t, store.SaveStats(stats))
	}

	// Both 300-point users share rank 2; the 100-point user is rank 4.
	above, err := store.CountStatsAbove(RankByPoints, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(1), above)

	above, err = store.CountStatsAbove(RankByPoints, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), above)
}

func TestLeaderboardOrderingAndUsernames(t *testing.T) {
	store := NewMemoryStore()
	projection := NewProjection(store)

	users := []struct {
		name   string
		points int
	}{
		{"alice", 300},
		{"bob", 500},
		{"carol", 100},
	}
	for _, u := range users {
		userID := uuid.New()
		store.SetUsername(userID, u.name)
		stats, err := store.GetOrCreateStats(userID)
		require.NoError(t, err)
		stats.TotalPoints = u.points
		require.NoError(t, store.SaveStats(stats))
	}

	board, err := projection.Leaderboard(RankByPoints, 10)
	require.NoError(t, err)
	require.Len(t, board.Entries, 3)

	assert.Equal(t, "bob", board.Entries[0].Username)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, 500, board.Entries[0].Score)
	assert.Equal(t, "alice", board.Entries[1].Username)
	assert.Equal(t, 2, board.Entries[1].Rank)
	assert.Equal(t, "carol", board.Entries[2].Username)
	assert.Equal(t, 3, board.Entries[2].Rank)
}

func TestLeaderboardAlternateMetric(t *testing.T) {
	store := NewMemoryStore()
	projection := NewProjection(store)

	low := uuid.New()
	stats, err := store.GetOrCreateStats(low)
	require.NoError(t, err)
	stats.TotalPoints = 999
	stats.ReportsCreated = 1
	require.NoError(t, store.SaveStats(stats))

	high := uuid.New()
	stats, err = store.GetOrCreateStats(high)
	require.NoError(t, err)
	stats.ReportsCreated = 50
	require.NoError(t, store.SaveStats(stats))

	board, err := projection.Leaderboard(RankByReports, 10)
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, high, board.Entries[0].UserID)
	assert.Equal(t, 50, board.Entries[0].Score)
}

func TestParseRankMetric(t *testing.T) {
	assert.Equal(t, RankByPoints, ParseRankMetric(""))
	assert.Equal(t, RankByPoints, ParseRankMetric("bogus"))
	assert.Equal(t, RankByStreak, ParseRankMetric("streak"))
	assert.Equal(t, RankByAchievements, ParseRankMetric("achievements"))
}

func TestNotificationLifecycle(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements(DefaultCatalog())
	require.NoError(t, err)
	tracker := NewTracker(store)
	projection := NewProjection(store)
	userID := uuid.New()

	tracker.TrackReportCreated(userID, 40.0, -73.0, "other", "low")

	unread, err := projection.UnreadNotifications(userID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "First Report", unread[0].Name)
	assert.Equal(t, "#CD7F32", unread[0].Color)

	require.NoError(t, projection.MarkRead(userID, nil))

	unread, err = projection.UnreadNotifications(userID)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMarkReadSelective(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements([]Achievement{
		{Name: "First Report", Category: CategoryReporter, Tier: TierBronze, Metric: MetricReportCount, TargetValue: 1, Points: 10},
		{Name: "Getting Started", Category: CategoryReporter, Tier: TierBronze, Metric: MetricReportCount, TargetValue: 3, Points: 15},
	})
	require.NoError(t, err)
	tracker := NewTracker(store)
	projection := NewProjection(store)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		tracker.TrackReportCreated(userID, 40.0+float64(i), -73.0, "other", "low")
	}

	unread, err := projection.UnreadNotifications(userID)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	require.NoError(t, projection.MarkRead(userID, []uuid.UUID{unread[0].ID}))

	unread, err = projection.UnreadNotifications(userID)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestNotificationsScopedToUser(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements(DefaultCatalog())
	require.NoError(t, err)
	tracker := NewTracker(store)
	projection := NewProjection(store)

	winner := uuid.New()
	bystander := uuid.New()
	tracker.TrackReportCreated(winner, 40.0, -73.0, "other", "low")

	unread, err := projection.UnreadNotifications(bystander)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestCatalogWithProgressHidesLockedHidden(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements([]Achievement{
		{Name: "First Report", Category: CategoryReporter, Tier: TierBronze, Metric: MetricReportCount, TargetValue: 1, Points: 10},
		{Name: "Secret Pioneer", Category: CategoryPioneer, Tier: TierLegendary, Metric: MetricReportCount, TargetValue: 1000, Points: 5000, IsHidden: true},
	})
	require.NoError(t, err)
	// seeding forces IsActive but preserves IsHidden
	projection := NewProjection(store)

	grouped, err := projection.CatalogWithProgress(uuid.New())
	require.NoError(t, err)

	assert.Len(t, grouped[CategoryReporter], 1)
	assert.Empty(t, grouped[CategoryPioneer], "hidden achievements stay invisible until unlocked")
}

func TestRebuildSnapshots(t *testing.T) {
	store := NewMemoryStore()
	projection := NewProjection(store)

	for i, points := range []int{400, 200, 100} {
		userID := uuid.New()
		stats, err := store.GetOrCreateStats(userID)
		require.NoError(t, err)
		stats.TotalPoints = points
		stats.ReportsCreated = 10 - i
		require.NoError(t, store.SaveStats(stats))
	}

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, projection.RebuildSnapshots(now))

	snapshot := store.LeaderboardSnapshot(RankByPoints)
	require.Len(t, snapshot, 3)
	assert.Equal(t, 1, snapshot[0].Rank)
	assert.Equal(t, 400, snapshot[0].Score)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), snapshot[0].PeriodStart)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), snapshot[0].PeriodEnd)
}

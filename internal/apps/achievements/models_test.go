package achievements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateStreakFirstActivity(t *testing.T) {
	stats := &UserStats{}
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	stats.UpdateStreak(now)

	assert.Equal(t, 1, stats.StreakCurrent)
	assert.Equal(t, 1, stats.StreakBest)
	assert.Equal(t, now, stats.LastActivity)
}

func TestUpdateStreakSameDayIsNoOp(t *testing.T) {
	morning := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC)

	stats := &UserStats{}
	stats.UpdateStreak(morning)
	stats.UpdateStreak(evening)

	assert.Equal(t, 1, stats.StreakCurrent)
	assert.Equal(t, evening, stats.LastActivity)
}

func TestUpdateStreakConsecutiveDays(t *testing.T) {
	stats := &UserStats{}
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		stats.UpdateStreak(day.AddDate(0, 0, i))
	}

	assert.Equal(t, 3, stats.StreakCurrent)
	assert.Equal(t, 3, stats.StreakBest)
}

func TestUpdateStreakGapResets(t *testing.T) {
	stats := &UserStats{}
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	stats.UpdateStreak(day)
	stats.UpdateStreak(day.AddDate(0, 0, 1))
	stats.UpdateStreak(day.AddDate(0, 0, 5))

	assert.Equal(t, 1, stats.StreakCurrent)
	assert.Equal(t, 2, stats.StreakBest, "best must survive the reset")
}

func TestUpdateStreakBestNeverBelowCurrent(t *testing.T) {
	stats := &UserStats{}
	day := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		stats.UpdateStreak(day.AddDate(0, 0, i))
		assert.GreaterOrEqual(t, stats.StreakBest, stats.StreakCurrent)
	}
}

func TestUpdateStreakCrossesMidnight(t *testing.T) {
	stats := &UserStats{}
	lateNight := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	earlyMorning := time.Date(2025, 3, 11, 0, 5, 0, 0, time.UTC)

	stats.UpdateStreak(lateNight)
	stats.UpdateStreak(earlyMorning)

	assert.Equal(t, 2, stats.StreakCurrent, "calendar day change counts even minutes apart")
}

func TestAddLocationDedupWithinTolerance(t *testing.T) {
	stats := &UserStats{}

	assert.True(t, stats.AddLocation(40.0000, -73.0000))
	assert.False(t, stats.AddLocation(40.0050, -73.0050), "within 0.01 on both axes is a duplicate")
	assert.True(t, stats.AddLocation(40.0200, -73.0200), "0.02 away is a new location")

	assert.Len(t, stats.Locations(), 2)
}

func TestAddLocationOneAxisOutsideToleranceIsNew(t *testing.T) {
	stats := &UserStats{}

	stats.AddLocation(40.0, -73.0)
	assert.True(t, stats.AddLocation(40.0, -73.5))

	assert.Len(t, stats.Locations(), 2)
}

func TestAddReportTypeIdempotent(t *testing.T) {
	stats := &UserStats{}

	assert.True(t, stats.AddReportType("air_pollution"))
	assert.False(t, stats.AddReportType("air_pollution"))
	assert.True(t, stats.AddReportType("deforestation"))

	assert.ElementsMatch(t, []string{"air_pollution", "deforestation"}, stats.ReportTypes())
}

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points int
		level  int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},   // 100 + 150
		{449, 3},   // next threshold at 100+150+200
		{450, 4},
		{699, 4},
		{700, 5},
		{1000, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForPoints(tt.points), "points=%d", tt.points)
	}
}

func TestNextLevelPoints(t *testing.T) {
	assert.Equal(t, 150, NextLevelPoints(1))
	assert.Equal(t, 200, NextLevelPoints(2))
	assert.Equal(t, 350, NextLevelPoints(5))
}

func TestRecalcLevelReportsChange(t *testing.T) {
	stats := &UserStats{Level: 1, TotalPoints: 120}

	assert.True(t, stats.RecalcLevel())
	assert.Equal(t, 2, stats.Level)
	assert.False(t, stats.RecalcLevel())
}

func TestProgressPercentageCapped(t *testing.T) {
	ua := &UserAchievement{
		CurrentProgress: 7,
		Achievement:     Achievement{TargetValue: 5},
	}
	assert.Equal(t, float64(100), ua.ProgressPercentage())

	ua.CurrentProgress = 2
	assert.InDelta(t, 40.0, ua.ProgressPercentage(), 0.001)
}

func TestTierColorFallsBackToAchievementColor(t *testing.T) {
	a := &Achievement{Tier: TierGold}
	assert.Equal(t, "#FFD700", a.TierColor())

	unknown := &Achievement{Tier: Tier("mythic"), Color: "#123456"}
	assert.Equal(t, "#123456", unknown.TierColor())
}

package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	store := NewMemoryStore()

	created, err := SeedDefaults(store)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCatalog()), created)

	created, err = SeedDefaults(store)
	require.NoError(t, err)
	assert.Zero(t, created, "second seed creates nothing")

	count, err := store.CountActiveAchievements()
	require.NoError(t, err)
	assert.Equal(t, int64(len(DefaultCatalog())), count)
}

func TestDefaultCatalogIntegrity(t *testing.T) {
	knownMetrics := map[Metric]bool{
		MetricReportCount:     true,
		MetricValidationCount: true,
		MetricStreakDays:      true,
		MetricMapUsage:        true,
		MetricHighSeverity:    true,
		MetricAccuracyScore:   true,
		MetricLocationVariety: true,
		MetricReportTypes:     true,
		MetricQuickResponse:   true,
		MetricCommunityHelp:   true,
	}

	seen := make(map[string]bool)
	for _, a := range DefaultCatalog() {
		key := a.Name + "/" + string(a.Tier)
		assert.False(t, seen[key], "duplicate catalog entry %s", key)
		seen[key] = true

		assert.NotEmpty(t, a.Name)
		assert.NotEmpty(t, a.Description)
		assert.GreaterOrEqual(t, a.TargetValue, 1, "%s", a.Name)
		assert.GreaterOrEqual(t, a.Points, 1, "%s", a.Name)
		assert.True(t, knownMetrics[a.Metric], "%s uses unknown metric %s", a.Name, a.Metric)
	}
}

func TestDefaultCatalogCoversEveryTrack(t *testing.T) {
	byCategory := make(map[Category]int)
	for _, a := range DefaultCatalog() {
		byCategory[a.Category]++
	}

	for _, cat := range []Category{
		CategoryReporter, CategoryValidator, CategoryExplorer,
		CategoryStreak, CategoryImpact, CategoryCommunity, CategoryExpert,
	} {
		assert.Positive(t, byCategory[cat], "no achievements in %s track", cat)
	}
}

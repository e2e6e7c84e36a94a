package achievements

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	recentWindow      = 7 * 24 * time.Hour
	maxRecentShown    = 3
	maxInProgress     = 5
	leaderboardLimit  = 10
	leaderboardDepth  = 100
)

// Projection serves the read side of the achievement system: dashboards,
// notifications and leaderboards. It never mutates counters.
type Projection struct {
	store Store
}

func NewProjection(store Store) *Projection {
	return &Projection{store: store}
}

// ProgressSummary assembles the dashboard payload for one user. Missing
// stats rows are created on the fly so a brand new user sees a zeroed
// dashboard instead of an error.
func (p *Projection) ProgressSummary(userID uuid.UUID) (*ProgressSummaryResponse, error) {
	stats, err := p.store.GetOrCreateStats(userID)
	if err != nil {
		return nil, err
	}

	var (
		progress []UserAchievement
		total    int64
		above    int64
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		progress, err = p.store.ListProgress(userID)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = p.store.CountActiveAchievements()
		return err
	})
	g.Go(func() error {
		var err error
		above, err = p.store.CountStatsAbove(RankByPoints, stats.TotalPoints)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &ProgressSummaryResponse{
		Level:                stats.Level,
		TotalPoints:          stats.TotalPoints,
		AchievementsUnlocked: stats.AchievementsUnlocked,
		TotalAchievements:    int(total),
		CompletionPercentage: completionPercentage(stats.AchievementsUnlocked, int(total)),
		UserRank:             int(above) + 1,
		StreakCurrent:        stats.StreakCurrent,
		StreakBest:           stats.StreakBest,
		ReportsCreated:       stats.ReportsCreated,
		ReportsValidated:     stats.ReportsValidated,
		NextLevelPoints:      NextLevelPoints(stats.Level),
		RecentAchievements:   []AchievementProgressResponse{},
		InProgress:           []AchievementProgressResponse{},
	}

	cutoff := time.Now().Add(-recentWindow)
	var recent, inProgress []UserAchievement
	for _, ua := range progress {
		switch {
		case ua.IsUnlocked:
			if ua.UnlockedAt != nil && ua.UnlockedAt.After(cutoff) {
				recent = append(recent, ua)
			}
		case ua.CurrentProgress > 0:
			inProgress = append(inProgress, ua)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].UnlockedAt.After(*recent[j].UnlockedAt)
	})
	sort.SliceStable(inProgress, func(i, j int) bool {
		return inProgress[i].ProgressPercentage() > inProgress[j].ProgressPercentage()
	})
	if len(recent) > maxRecentShown {
		recent = recent[:maxRecentShown]
	}
	if len(inProgress) > maxInProgress {
		inProgress = inProgress[:maxInProgress]
	}
	for _, ua := range recent {
		summary.RecentAchievements = append(summary.RecentAchievements, toProgressResponse(ua))
	}
	for _, ua := range inProgress {
		summary.InProgress = append(summary.InProgress, toProgressResponse(ua))
	}
	return summary, nil
}

func completionPercentage(unlocked, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := float64(unlocked) / float64(total) * 100
	return math.Round(pct*10) / 10
}

func toProgressResponse(ua UserAchievement) AchievementProgressResponse {
	return AchievementProgressResponse{
		Name:            ua.Achievement.Name,
		Description:     ua.Achievement.Description,
		Category:        ua.Achievement.Category,
		Tier:            ua.Achievement.Tier,
		Icon:            ua.Achievement.Icon,
		Points:          ua.Achievement.Points,
		TargetValue:     ua.Achievement.TargetValue,
		CurrentProgress: ua.CurrentProgress,
		Percentage:      math.Round(ua.ProgressPercentage()*10) / 10,
		IsUnlocked:      ua.IsUnlocked,
		UnlockedAt:      ua.UnlockedAt,
	}
}

// CatalogWithProgress lists every active achievement alongside the user's
// progress toward it. Hidden achievements are excluded until unlocked.
func (p *Projection) CatalogWithProgress(userID uuid.UUID) (map[Category][]AchievementProgressResponse, error) {
	active, err := p.store.ActiveAchievements()
	if err != nil {
		return nil, err
	}
	progress, err := p.store.ListProgress(userID)
	if err != nil {
		return nil, err
	}
	byAchievement := make(map[uuid.UUID]UserAchievement, len(progress))
	for _, ua := range progress {
		byAchievement[ua.AchievementID] = ua
	}

	grouped := make(map[Category][]AchievementProgressResponse)
	for _, a := range active {
		ua, ok := byAchievement[a.ID]
		if a.IsHidden && !(ok && ua.IsUnlocked) {
			continue
		}
		if !ok {
			ua = UserAchievement{UserID: userID, AchievementID: a.ID}
		}
		ua.Achievement = a
		grouped[a.Category] = append(grouped[a.Category], toProgressResponse(ua))
	}
	return grouped, nil
}

// UnreadNotifications returns unlock notifications not yet acknowledged,
// newest first.
func (p *Projection) UnreadNotifications(userID uuid.UUID) ([]NotificationResponse, error) {
	notifications, err := p.store.UnreadNotifications(userID)
	if err != nil {
		return nil, err
	}
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationResponse{
			ID:          n.ID,
			Message:     n.Message,
			Name:        n.Achievement.Name,
			Icon:        n.Achievement.Icon,
			Tier:        n.Achievement.Tier,
			Points:      n.Achievement.Points,
			Color:       n.Achievement.TierColor(),
			IsDisplayed: n.IsDisplayed,
			CreatedAt:   n.CreatedAt,
		})
	}
	return out, nil
}

// MarkRead acknowledges notifications. An empty id list marks everything.
func (p *Projection) MarkRead(userID uuid.UUID, ids []uuid.UUID) error {
	return p.store.MarkNotificationsRead(userID, ids)
}

// Leaderboard computes a live ranking for the given metric. Ties share a
// rank determined by how many users strictly exceed the score.
func (p *Projection) Leaderboard(metric RankMetric, limit int) (*LeaderboardResponse, error) {
	if limit <= 0 || limit > leaderboardDepth {
		limit = leaderboardLimit
	}
	top, err := p.store.TopStats(metric, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(top))
	for _, stats := range top {
		ids = append(ids, stats.UserID)
	}
	names, err := p.store.Usernames(ids)
	if err != nil {
		return nil, err
	}

	resp := &LeaderboardResponse{Type: metric, Entries: []LeaderboardRowResponse{}}
	for _, stats := range top {
		score := rankScore(&stats, metric)
		above, err := p.store.CountStatsAbove(metric, score)
		if err != nil {
			return nil, err
		}
		resp.Entries = append(resp.Entries, LeaderboardRowResponse{
			Rank:                 int(above) + 1,
			UserID:               stats.UserID,
			Username:             names[stats.UserID],
			Level:                stats.Level,
			Score:                score,
			AchievementsUnlocked: stats.AchievementsUnlocked,
		})
	}
	resp.Count = len(resp.Entries)
	return resp, nil
}

// RebuildSnapshots refreshes the persisted leaderboard tables for every
// metric. The snapshot covers the current calendar month.
func (p *Projection) RebuildSnapshots(now time.Time) error {
	periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)
	metrics := []RankMetric{RankByPoints, RankByReports, RankByValidations, RankByStreak, RankByAchievements}
	for _, metric := range metrics {
		top, err := p.store.TopStats(metric, leaderboardDepth)
		if err != nil {
			return err
		}
		entries := make([]Leaderboard, 0, len(top))
		for i, stats := range top {
			entries = append(entries, Leaderboard{
				Type:        metric,
				UserID:      stats.UserID,
				Score:       rankScore(&stats, metric),
				Rank:        i + 1,
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
			})
		}
		if err := p.store.ReplaceLeaderboard(metric, entries); err != nil {
			return err
		}
	}
	return nil
}

// ParseRankMetric maps a query string value onto a leaderboard metric,
// defaulting to points.
func ParseRankMetric(s string) RankMetric {
	switch RankMetric(s) {
	case RankByReports, RankByValidations, RankByStreak, RankByAchievements:
		return RankMetric(s)
	default:
		return RankByPoints
	}
}

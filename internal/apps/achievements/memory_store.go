package achievements

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MemoryStore is a map-backed Store used in tests. A single mutex serializes
// all access, which trivially satisfies the per-user locking contract.
type MemoryStore struct {
	mu            sync.Mutex
	stats         map[uuid.UUID]*UserStats
	achievements  []Achievement
	progress      map[uuid.UUID]map[uuid.UUID]*UserAchievement
	notifications []AchievementNotification
	leaderboards  map[RankMetric][]Leaderboard
	usernames     map[uuid.UUID]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stats:        make(map[uuid.UUID]*UserStats),
		progress:     make(map[uuid.UUID]map[uuid.UUID]*UserAchievement),
		leaderboards: make(map[RankMetric][]Leaderboard),
		usernames:    make(map[uuid.UUID]string),
	}
}

// SetUsername registers a display name for leaderboard rows.
func (m *MemoryStore) SetUsername(userID uuid.UUID, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usernames[userID] = username
}

// LeaderboardSnapshot returns the stored snapshot for a metric.
func (m *MemoryStore) LeaderboardSnapshot(metric RankMetric) []Leaderboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Leaderboard(nil), m.leaderboards[metric]...)
}

func (m *MemoryStore) WithinUserLock(userID uuid.UUID, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&lockedMemoryStore{m})
}

func (m *MemoryStore) GetOrCreateStats(userID uuid.UUID) (*UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateStatsLocked(userID)
}

func (m *MemoryStore) GetStats(userID uuid.UUID) (*UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getStatsLocked(userID)
}

func (m *MemoryStore) SaveStats(stats *UserStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveStatsLocked(stats)
}

func (m *MemoryStore) ActiveAchievements() ([]Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeAchievementsLocked()
}

func (m *MemoryStore) CountActiveAchievements() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countActiveAchievementsLocked()
}

func (m *MemoryStore) SeedAchievements(defs []Achievement) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seedAchievementsLocked(defs)
}

func (m *MemoryStore) GetOrCreateProgress(userID, achievementID uuid.UUID) (*UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateProgressLocked(userID, achievementID)
}

func (m *MemoryStore) SaveProgress(progress *UserAchievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveProgressLocked(progress)
}

func (m *MemoryStore) ListProgress(userID uuid.UUID) ([]UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listProgressLocked(userID)
}

func (m *MemoryStore) CreateNotification(n *AchievementNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createNotificationLocked(n)
}

func (m *MemoryStore) UnreadNotifications(userID uuid.UUID) ([]AchievementNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unreadNotificationsLocked(userID)
}

func (m *MemoryStore) MarkNotificationsRead(userID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markNotificationsReadLocked(userID, ids)
}

func (m *MemoryStore) CountStatsAbove(metric RankMetric, score int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countStatsAboveLocked(metric, score)
}

func (m *MemoryStore) TopStats(metric RankMetric, limit int) ([]UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topStatsLocked(metric, limit)
}

func (m *MemoryStore) Usernames(ids []uuid.UUID) (map[uuid.UUID]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usernamesLocked(ids)
}

func (m *MemoryStore) ReplaceLeaderboard(metric RankMetric, entries []Leaderboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaceLeaderboardLocked(metric, entries)
}

// lockedMemoryStore is the view handed to WithinUserLock callbacks; the
// mutex is already held, so it delegates straight to the locked helpers.
type lockedMemoryStore struct {
	m *MemoryStore
}

func (l *lockedMemoryStore) WithinUserLock(userID uuid.UUID, fn func(tx Store) error) error {
	return fn(l)
}

func (l *lockedMemoryStore) GetOrCreateStats(userID uuid.UUID) (*UserStats, error) {
	return l.m.getOrCreateStatsLocked(userID)
}

func (l *lockedMemoryStore) GetStats(userID uuid.UUID) (*UserStats, error) {
	return l.m.getStatsLocked(userID)
}

func (l *lockedMemoryStore) SaveStats(stats *UserStats) error {
	return l.m.saveStatsLocked(stats)
}

func (l *lockedMemoryStore) ActiveAchievements() ([]Achievement, error) {
	return l.m.activeAchievementsLocked()
}

func (l *lockedMemoryStore) CountActiveAchievements() (int64, error) {
	return l.m.countActiveAchievementsLocked()
}

func (l *lockedMemoryStore) SeedAchievements(defs []Achievement) (int, error) {
	return l.m.seedAchievementsLocked(defs)
}

func (l *lockedMemoryStore) GetOrCreateProgress(userID, achievementID uuid.UUID) (*UserAchievement, error) {
	return l.m.getOrCreateProgressLocked(userID, achievementID)
}

func (l *lockedMemoryStore) SaveProgress(progress *UserAchievement) error {
	return l.m.saveProgressLocked(progress)
}

func (l *lockedMemoryStore) ListProgress(userID uuid.UUID) ([]UserAchievement, error) {
	return l.m.listProgressLocked(userID)
}

func (l *lockedMemoryStore) CreateNotification(n *AchievementNotification) error {
	return l.m.createNotificationLocked(n)
}

func (l *lockedMemoryStore) UnreadNotifications(userID uuid.UUID) ([]AchievementNotification, error) {
	return l.m.unreadNotificationsLocked(userID)
}

func (l *lockedMemoryStore) MarkNotificationsRead(userID uuid.UUID, ids []uuid.UUID) error {
	return l.m.markNotificationsReadLocked(userID, ids)
}

func (l *lockedMemoryStore) CountStatsAbove(metric RankMetric, score int) (int64, error) {
	return l.m.countStatsAboveLocked(metric, score)
}

func (l *lockedMemoryStore) TopStats(metric RankMetric, limit int) ([]UserStats, error) {
	return l.m.topStatsLocked(metric, limit)
}

func (l *lockedMemoryStore) Usernames(ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return l.m.usernamesLocked(ids)
}

func (l *lockedMemoryStore) ReplaceLeaderboard(metric RankMetric, entries []Leaderboard) error {
	return l.m.replaceLeaderboardLocked(metric, entries)
}

func (m *MemoryStore) getOrCreateStatsLocked(userID uuid.UUID) (*UserStats, error) {
	if stats, ok := m.stats[userID]; ok {
		cp := *stats
		return &cp, nil
	}
	stats := &UserStats{
		ID:                uuid.New(),
		UserID:            userID,
		Level:             1,
		LocationsReported: datatypes.JSON("[]"),
		ReportTypesUsed:   datatypes.JSON("[]"),
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	m.stats[userID] = stats
	cp := *stats
	return &cp, nil
}

func (m *MemoryStore) getStatsLocked(userID uuid.UUID) (*UserStats, error) {
	stats, ok := m.stats[userID]
	if !ok {
		return nil, ErrStatsNotFound
	}
	cp := *stats
	return &cp, nil
}

func (m *MemoryStore) saveStatsLocked(stats *UserStats) error {
	cp := *stats
	cp.UpdatedAt = time.Now()
	m.stats[stats.UserID] = &cp
	return nil
}

func (m *MemoryStore) activeAchievementsLocked() ([]Achievement, error) {
	var out []Achievement
	for _, a := range m.achievements {
		if a.IsActive {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].TargetValue < out[j].TargetValue
	})
	return out, nil
}

func (m *MemoryStore) countActiveAchievementsLocked() (int64, error) {
	var count int64
	for _, a := range m.achievements {
		if a.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) seedAchievementsLocked(defs []Achievement) (int, error) {
	created := 0
	for _, def := range defs {
		exists := false
		for _, a := range m.achievements {
			if a.Name == def.Name && a.Tier == def.Tier {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		def.ID = uuid.New()
		def.BadgeUnlocked = true
		def.IsActive = true
		def.CreatedAt = time.Now()
		m.achievements = append(m.achievements, def)
		created++
	}
	return created, nil
}

func (m *MemoryStore) getOrCreateProgressLocked(userID, achievementID uuid.UUID) (*UserAchievement, error) {
	byAchievement, ok := m.progress[userID]
	if !ok {
		byAchievement = make(map[uuid.UUID]*UserAchievement)
		m.progress[userID] = byAchievement
	}
	if p, ok := byAchievement[achievementID]; ok {
		cp := *p
		return &cp, nil
	}
	p := &UserAchievement{
		ID:            uuid.New(),
		UserID:        userID,
		AchievementID: achievementID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	byAchievement[achievementID] = p
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) saveProgressLocked(progress *UserAchievement) error {
	byAchievement, ok := m.progress[progress.UserID]
	if !ok {
		byAchievement = make(map[uuid.UUID]*UserAchievement)
		m.progress[progress.UserID] = byAchievement
	}
	cp := *progress
	cp.Achievement = Achievement{}
	cp.UpdatedAt = time.Now()
	byAchievement[progress.AchievementID] = &cp
	return nil
}

func (m *MemoryStore) listProgressLocked(userID uuid.UUID) ([]UserAchievement, error) {
	var out []UserAchievement
	for _, p := range m.progress[userID] {
		cp := *p
		for _, a := range m.achievements {
			if a.ID == p.AchievementID {
				cp.Achievement = a
				break
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Achievement.Name < out[j].Achievement.Name
	})
	return out, nil
}

func (m *MemoryStore) createNotificationLocked(n *AchievementNotification) error {
	cp := *n
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	cp.CreatedAt = time.Now()
	m.notifications = append(m.notifications, cp)
	return nil
}

func (m *MemoryStore) unreadNotificationsLocked(userID uuid.UUID) ([]AchievementNotification, error) {
	var out []AchievementNotification
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.UserID != userID || n.IsRead {
			continue
		}
		for _, a := range m.achievements {
			if a.ID == n.AchievementID {
				n.Achievement = a
				break
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *MemoryStore) markNotificationsReadLocked(userID uuid.UUID, ids []uuid.UUID) error {
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	for i := range m.notifications {
		n := &m.notifications[i]
		if n.UserID != userID {
			continue
		}
		if len(ids) > 0 && !wanted[n.ID] {
			continue
		}
		n.IsRead = true
		n.IsDisplayed = true
	}
	return nil
}

func rankScore(stats *UserStats, metric RankMetric) int {
	switch metric {
	case RankByReports:
		return stats.ReportsCreated
	case RankByValidations:
		return stats.ReportsValidated
	case RankByStreak:
		return stats.StreakBest
	case RankByAchievements:
		return stats.AchievementsUnlocked
	default:
		return stats.TotalPoints
	}
}

func (m *MemoryStore) countStatsAboveLocked(metric RankMetric, score int) (int64, error) {
	var count int64
	for _, stats := range m.stats {
		if rankScore(stats, metric) > score {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) topStatsLocked(metric RankMetric, limit int) ([]UserStats, error) {
	out := make([]UserStats, 0, len(m.stats))
	for _, stats := range m.stats {
		out = append(out, *stats)
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := rankScore(&out[i], metric), rankScore(&out[j], metric)
		if si != sj {
			return si > sj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) usernamesLocked(ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if name, ok := m.usernames[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

func (m *MemoryStore) replaceLeaderboardLocked(metric RankMetric, entries []Leaderboard) error {
	cp := make([]Leaderboard, len(entries))
	copy(cp, entries)
	m.leaderboards[metric] = cp
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*lockedMemoryStore)(nil)
)

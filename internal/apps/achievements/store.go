package achievements

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrStatsNotFound = errors.New("user stats not found")

// Store abstracts ledger persistence so the tracking and evaluation logic
// can run against Postgres in production and an in-memory fake in tests.
type Store interface {
	// WithinUserLock runs fn with exclusive write access to one user's
	// ledger. Mutations inside fn are atomic: either all land or none do.
	WithinUserLock(userID uuid.UUID, fn func(tx Store) error) error

	GetOrCreateStats(userID uuid.UUID) (*UserStats, error)
	GetStats(userID uuid.UUID) (*UserStats, error)
	SaveStats(stats *UserStats) error

	ActiveAchievements() ([]Achievement, error)
	CountActiveAchievements() (int64, error)
	SeedAchievements(defs []Achievement) (int, error)

	GetOrCreateProgress(userID, achievementID uuid.UUID) (*UserAchievement, error)
	SaveProgress(progress *UserAchievement) error
	ListProgress(userID uuid.UUID) ([]UserAchievement, error)

	CreateNotification(n *AchievementNotification) error
	UnreadNotifications(userID uuid.UUID) ([]AchievementNotification, error)
	MarkNotificationsRead(userID uuid.UUID, ids []uuid.UUID) error

	// CountStatsAbove returns how many users strictly exceed score on the
	// given metric. Rank is that count plus one, so ties share a rank.
	CountStatsAbove(metric RankMetric, score int) (int64, error)
	TopStats(metric RankMetric, limit int) ([]UserStats, error)
	Usernames(ids []uuid.UUID) (map[uuid.UUID]string, error)
	ReplaceLeaderboard(metric RankMetric, entries []Leaderboard) error
}

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func rankColumn(metric RankMetric) string {
	switch metric {
	case RankByReports:
		return "reports_created"
	case RankByValidations:
		return "reports_validated"
	case RankByStreak:
		return "streak_best"
	case RankByAchievements:
		return "achievements_unlocked"
	default:
		return "total_points"
	}
}

func (s *GormStore) WithinUserLock(userID uuid.UUID, fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txStore := &GormStore{db: tx}
		// Take the row lock up front so concurrent events for the same
		// user serialize instead of clobbering each other's counters.
		if err := txStore.lockStats(userID); err != nil {
			return err
		}
		return fn(txStore)
	})
}

func (s *GormStore) lockStats(userID uuid.UUID) error {
	var stats UserStats
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Inserting the row also acquires its lock for this transaction.
		_, err = s.createStats(userID)
	}
	return err
}

func (s *GormStore) createStats(userID uuid.UUID) (*UserStats, error) {
	stats := &UserStats{
		UserID:            userID,
		Level:             1,
		LocationsReported: datatypes.JSON("[]"),
		ReportTypesUsed:   datatypes.JSON("[]"),
	}
	if err := s.db.Create(stats).Error; err != nil {
		return nil, fmt.Errorf("failed to create user stats: %w", err)
	}
	return stats, nil
}

func (s *GormStore) GetOrCreateStats(userID uuid.UUID) (*UserStats, error) {
	var stats UserStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.createStats(userID)
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *GormStore) GetStats(userID uuid.UUID) (*UserStats, error) {
	var stats UserStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *GormStore) SaveStats(stats *UserStats) error {
	return s.db.Save(stats).Error
}

func (s *GormStore) ActiveAchievements() ([]Achievement, error) {
	var achievements []Achievement
	err := s.db.Where("is_active = ?", true).Order("category, target_value").
		Find(&achievements).Error
	return achievements, err
}

func (s *GormStore) CountActiveAchievements() (int64, error) {
	var count int64
	err := s.db.Model(&Achievement{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (s *GormStore) SeedAchievements(defs []Achievement) (int, error) {
	created := 0
	for _, def := range defs {
		var existing Achievement
		err := s.db.Where("name = ? AND tier = ?", def.Name, def.Tier).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		def.BadgeUnlocked = true
		def.IsActive = true
		if err := s.db.Create(&def).Error; err != nil {
			return created, fmt.Errorf("failed to seed achievement %q: %w", def.Name, err)
		}
		created++
	}
	return created, nil
}

func (s *GormStore) GetOrCreateProgress(userID, achievementID uuid.UUID) (*UserAchievement, error) {
	var progress UserAchievement
	err := s.db.Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = UserAchievement{UserID: userID, AchievementID: achievementID}
		if err := s.db.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *GormStore) SaveProgress(progress *UserAchievement) error {
	return s.db.Omit("Achievement").Save(progress).Error
}

func (s *GormStore) ListProgress(userID uuid.UUID) ([]UserAchievement, error) {
	var progress []UserAchievement
	err := s.db.Preload("Achievement").Where("user_id = ?", userID).
		Find(&progress).Error
	return progress, err
}

func (s *GormStore) CreateNotification(n *AchievementNotification) error {
	return s.db.Omit("Achievement").Create(n).Error
}

func (s *GormStore) UnreadNotifications(userID uuid.UUID) ([]AchievementNotification, error) {
	var notifications []AchievementNotification
	err := s.db.Preload("Achievement").
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (s *GormStore) MarkNotificationsRead(userID uuid.UUID, ids []uuid.UUID) error {
	q := s.db.Model(&AchievementNotification{}).Where("user_id = ?", userID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	return q.Updates(map[string]interface{}{"is_read": true, "is_displayed": true}).Error
}

func (s *GormStore) CountStatsAbove(metric RankMetric, score int) (int64, error) {
	var count int64
	col := rankColumn(metric)
	err := s.db.Model(&UserStats{}).Where(col+" > ?", score).Count(&count).Error
	return count, err
}

func (s *GormStore) TopStats(metric RankMetric, limit int) ([]UserStats, error) {
	var stats []UserStats
	col := rankColumn(metric)
	err := s.db.Order(col + " DESC, created_at ASC").Limit(limit).Find(&stats).Error
	return stats, err
}

func (s *GormStore) Usernames(ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	var rows []struct {
		ID       uuid.UUID
		Username string
	}
	err := s.db.Table("users").Select("id, username").Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.Username
	}
	return names, nil
}

func (s *GormStore) ReplaceLeaderboard(metric RankMetric, entries []Leaderboard) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("type = ?", metric).Delete(&Leaderboard{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

var _ Store = (*GormStore)(nil)

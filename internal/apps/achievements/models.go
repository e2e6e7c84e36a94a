package achievements

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Category groups achievements on the dashboard.
type Category string

const (
	CategoryReporter  Category = "reporter"
	CategoryValidator Category = "validator"
	CategoryExplorer  Category = "explorer"
	CategoryStreak    Category = "streak"
	CategoryImpact    Category = "impact"
	CategoryCommunity Category = "community"
	CategoryExpert    Category = "expert"
	CategoryPioneer   Category = "pioneer"
)

type Tier string

const (
	TierBronze    Tier = "bronze"
	TierSilver    Tier = "silver"
	TierGold      Tier = "gold"
	TierPlatinum  Tier = "platinum"
	TierDiamond   Tier = "diamond"
	TierLegendary Tier = "legendary"
)

// Metric selects which ledger field an achievement's progress is measured
// against.
type Metric string

const (
	MetricReportCount     Metric = "report_count"
	MetricValidationCount Metric = "validation_count"
	MetricStreakDays      Metric = "streak_days"
	MetricMapUsage        Metric = "map_usage"
	MetricHighSeverity    Metric = "high_severity"
	MetricAccuracyScore   Metric = "accuracy_score"
	MetricLocationVariety Metric = "location_variety"
	MetricReportTypes     Metric = "report_types"
	MetricQuickResponse   Metric = "quick_response"
	MetricCommunityHelp   Metric = "community_help"
)

// Trigger names the event that started an evaluation pass. Informational
// only; the evaluator never branches on it.
type Trigger string

const (
	TriggerReportCreated   Trigger = "report_created"
	TriggerReportValidated Trigger = "report_validated"
	TriggerMapView         Trigger = "map_view"
	TriggerRecalculation   Trigger = "recalculation"
)

// Achievement is an immutable catalog entry describing an unlockable goal.
type Achievement struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null;uniqueIndex:idx_achievements_name_tier" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Category      Category  `gorm:"size:20;not null;index" json:"category"`
	Tier          Tier      `gorm:"size:20;not null;uniqueIndex:idx_achievements_name_tier" json:"tier"`
	Metric        Metric    `gorm:"size:30;not null" json:"metric"`
	TargetValue   int       `gorm:"not null;check:target_value >= 1" json:"target_value"`
	Icon          string    `gorm:"size:10;default:'🏆'" json:"icon"`
	Color         string    `gorm:"size:7;default:'#16a085'" json:"color"`
	Points        int       `gorm:"default:10;check:points >= 1" json:"points"`
	BadgeUnlocked bool      `gorm:"default:true" json:"badge_unlocked"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	IsHidden      bool      `gorm:"default:false" json:"is_hidden"`
	CreatedAt     time.Time `json:"created_at"`
}

var tierColors = map[Tier]string{
	TierBronze:    "#CD7F32",
	TierSilver:    "#C0C0C0",
	TierGold:      "#FFD700",
	TierPlatinum:  "#E5E4E2",
	TierDiamond:   "#B9F2FF",
	TierLegendary: "#FF69B4",
}

// TierColor returns the display color for the achievement's tier, falling
// back to the achievement's own color for unknown tiers.
func (a *Achievement) TierColor() string {
	if c, ok := tierColors[a.Tier]; ok {
		return c
	}
	return a.Color
}

// UserStats is the per-user ledger of cumulative activity counters.
// One row per user, created lazily on the first tracked event.
type UserStats struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	ReportsCreated    int `gorm:"default:0" json:"reports_created"`
	ReportsValidated  int `gorm:"default:0" json:"reports_validated"`
	HighSeverityFound int `gorm:"default:0" json:"high_severity_found"`

	MapViews      int       `gorm:"default:0" json:"map_views"`
	StreakCurrent int       `gorm:"default:0" json:"streak_current"`
	StreakBest    int       `gorm:"default:0" json:"streak_best"`
	LastActivity  time.Time `json:"last_activity"`

	// ValidationAccuracy is externally supplied (0-100); the ledger never
	// derives it.
	ValidationAccuracy float64        `gorm:"default:0" json:"validation_accuracy"`
	LocationsReported  datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"locations_reported"`
	ReportTypesUsed    datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"report_types_used"`

	TotalPoints          int `gorm:"default:0" json:"total_points"`
	AchievementsUnlocked int `gorm:"default:0" json:"achievements_unlocked"`
	Level                int `gorm:"default:1" json:"level"`

	HelpfulValidations     int `gorm:"default:0" json:"helpful_validations"`
	CommunityContributions int `gorm:"default:0" json:"community_contributions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// locationTolerance is the coordinate dedup tolerance in degrees on each axis.
const locationTolerance = 0.01

// Locations decodes the reported-location set. A corrupt or empty column
// decodes as no locations.
func (s *UserStats) Locations() [][2]float64 {
	var locs [][2]float64
	if len(s.LocationsReported) > 0 {
		_ = json.Unmarshal(s.LocationsReported, &locs)
	}
	return locs
}

// AddLocation records a coordinate pair unless an existing one lies within
// the dedup tolerance on both axes. Location sets stay small, so a linear
// scan is enough. Returns true if the set grew.
func (s *UserStats) AddLocation(latitude, longitude float64) bool {
	locs := s.Locations()
	for _, existing := range locs {
		if math.Abs(existing[0]-latitude) < locationTolerance &&
			math.Abs(existing[1]-longitude) < locationTolerance {
			return false
		}
	}
	locs = append(locs, [2]float64{latitude, longitude})
	if b, err := json.Marshal(locs); err == nil {
		s.LocationsReported = datatypes.JSON(b)
	}
	return true
}

// ReportTypes decodes the set of report type tags the user has used.
func (s *UserStats) ReportTypes() []string {
	var types []string
	if len(s.ReportTypesUsed) > 0 {
		_ = json.Unmarshal(s.ReportTypesUsed, &types)
	}
	return types
}

// AddReportType inserts a type tag into the variety set. Idempotent.
func (s *UserStats) AddReportType(reportType string) bool {
	types := s.ReportTypes()
	for _, t := range types {
		if t == reportType {
			return false
		}
	}
	types = append(types, reportType)
	if b, err := json.Marshal(types); err == nil {
		s.ReportTypesUsed = datatypes.JSON(b)
	}
	return true
}

// UpdateStreak advances the consecutive-day counter. Same calendar day is a
// no-op, exactly one day later increments, any larger gap (or no prior
// activity) resets to 1. State only advances when an event arrives; there is
// no background ticking. StreakBest never falls below StreakCurrent.
func (s *UserStats) UpdateStreak(now time.Time) {
	if s.LastActivity.IsZero() {
		s.StreakCurrent = 1
	} else {
		switch calendarDaysBetween(s.LastActivity, now) {
		case 0:
			// same day, no change
		case 1:
			s.StreakCurrent++
		default:
			s.StreakCurrent = 1
		}
	}
	if s.StreakCurrent > s.StreakBest {
		s.StreakBest = s.StreakCurrent
	}
	s.LastActivity = now
}

// LevelForPoints derives the level from total points: level 1 ends at 100
// points and each subsequent level costs 50 more than the previous one.
func LevelForPoints(points int) int {
	level := 1
	required := 100
	for points >= required {
		points -= required
		level++
		required += 50
	}
	return level
}

// NextLevelPoints returns the cost of the level after the given one.
func NextLevelPoints(level int) int {
	return 100 + level*50
}

// RecalcLevel rederives Level from TotalPoints. Returns true if it changed.
func (s *UserStats) RecalcLevel() bool {
	level := LevelForPoints(s.TotalPoints)
	if level != s.Level {
		s.Level = level
		return true
	}
	return false
}

func calendarDaysBetween(a, b time.Time) int {
	au := a.UTC()
	bu := b.UTC()
	da := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// UserAchievement tracks one user's progress against one catalog entry.
// Unlocking is one-way: once IsUnlocked is set it never reverts, and
// CurrentProgress is pinned to the achievement's target.
type UserAchievement struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`

	CurrentProgress int        `gorm:"default:0" json:"current_progress"`
	IsUnlocked      bool       `gorm:"default:false;index" json:"is_unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at"`

	NotificationSent bool `gorm:"default:false" json:"-"`
	IsFeatured       bool `gorm:"default:false" json:"is_featured"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressPercentage reports completion capped at 100.
func (ua *UserAchievement) ProgressPercentage() float64 {
	if ua.Achievement.TargetValue == 0 {
		return 100
	}
	pct := float64(ua.CurrentProgress) / float64(ua.Achievement.TargetValue) * 100
	return math.Min(100, pct)
}

// AchievementNotification is created exactly once when an achievement
// transitions to unlocked, then mutated only to flip its flags.
type AchievementNotification struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	AchievementID uuid.UUID   `gorm:"type:uuid;not null" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`
	Message       string      `gorm:"type:text" json:"message"`
	IsRead        bool        `gorm:"default:false;index" json:"is_read"`
	IsDisplayed   bool        `gorm:"default:false" json:"is_displayed"`
	CreatedAt     time.Time   `json:"created_at"`
}

// RankMetric names a leaderboard ordering.
type RankMetric string

const (
	RankByPoints       RankMetric = "points"
	RankByReports      RankMetric = "reports"
	RankByValidations  RankMetric = "validations"
	RankByStreak       RankMetric = "streak"
	RankByAchievements RankMetric = "achievements"
)

// Leaderboard is a denormalized ranking snapshot, rebuilt on demand.
type Leaderboard struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type        RankMetric `gorm:"size:20;not null;uniqueIndex:idx_leaderboard_entry" json:"type"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_leaderboard_entry" json:"user_id"`
	Score       int        `gorm:"not null" json:"score"`
	Rank        int        `gorm:"not null" json:"rank"`
	PeriodStart time.Time  `gorm:"not null;uniqueIndex:idx_leaderboard_entry" json:"period_start"`
	PeriodEnd   time.Time  `gorm:"not null;uniqueIndex:idx_leaderboard_entry" json:"period_end"`
	CreatedAt   time.Time  `json:"created_at"`
}

// --- DTOs ---

type AchievementProgressResponse struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Category        Category   `json:"category"`
	Tier            Tier       `json:"tier"`
	Icon            string     `json:"icon"`
	Points          int        `json:"points"`
	TargetValue     int        `json:"target_value"`
	CurrentProgress int        `json:"current_progress"`
	Percentage      float64    `json:"percentage"`
	IsUnlocked      bool       `json:"is_unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at,omitempty"`
}

type ProgressSummaryResponse struct {
	Level                int                           `json:"level"`
	TotalPoints          int                           `json:"total_points"`
	AchievementsUnlocked int                           `json:"achievements_unlocked"`
	TotalAchievements    int                           `json:"total_achievements"`
	CompletionPercentage float64                       `json:"completion_percentage"`
	UserRank             int                           `json:"user_rank"`
	StreakCurrent        int                           `json:"streak_current"`
	StreakBest           int                           `json:"streak_best"`
	ReportsCreated       int                           `json:"reports_created"`
	ReportsValidated     int                           `json:"reports_validated"`
	NextLevelPoints      int                           `json:"next_level_points"`
	RecentAchievements   []AchievementProgressResponse `json:"recent_achievements"`
	InProgress           []AchievementProgressResponse `json:"in_progress"`
}

type NotificationResponse struct {
	ID          uuid.UUID `json:"id"`
	Message     string    `json:"message"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Tier        Tier      `json:"tier"`
	Points      int       `json:"points"`
	Color       string    `json:"color"`
	IsDisplayed bool      `json:"is_displayed"`
	CreatedAt   time.Time `json:"created_at"`
}

type LeaderboardRowResponse struct {
	Rank                 int       `json:"rank"`
	UserID               uuid.UUID `json:"user_id"`
	Username             string    `json:"username"`
	Level                int       `json:"level"`
	Score                int       `json:"score"`
	AchievementsUnlocked int       `json:"achievements_unlocked"`
}

type LeaderboardResponse struct {
	Type    RankMetric               `json:"type"`
	Entries []LeaderboardRowResponse `json:"entries"`
	Count   int                      `json:"count"`
}

type MarkReadRequest struct {
	NotificationIDs []uuid.UUID `json:"notification_ids"`
}

type TrackActionRequest struct {
	ActionType string `json:"action_type" validate:"required"`
}

type SetAccuracyRequest struct {
	Accuracy float64 `json:"accuracy" validate:"min=0,max=100"`
}

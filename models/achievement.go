package models

import "time"

// Achievement criteria types. Checked after every quest completion.
const (
	CriteriaQuestsCompleted   = "quests_completed"
	CriteriaLevelReached      = "level_reached"
	CriteriaGoldEarned        = "gold_earned"
	CriteriaXPEarned          = "xp_earned"
	CriteriaBountiesCompleted = "bounties_completed"
)

// Achievement is a milestone a user can unlock. System achievements
// (HomeID nil) are seeded once and visible to every home; homes can add
// their own on top.
type Achievement struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	HomeID      *string `gorm:"index" json:"home_id,omitempty"` // nil = system-wide
	Name        string  `gorm:"size:200;not null" json:"name"`
	Description string  `gorm:"size:1000" json:"description"`

	CriteriaType  string `gorm:"size:32;not null" json:"criteria_type"`
	CriteriaValue int    `gorm:"not null" json:"criteria_value"`

	Icon   string `gorm:"size:50" json:"icon"`
	System bool   `json:"is_system" gorm:"default:false"`

	Timestamps
}

// UserAchievement: unlocked instance (many-to-many, unlocked once).
type UserAchievement struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string    `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at" gorm:"autoCreateTime"`
}

// SystemAchievements is the seed set created at startup when absent.
var SystemAchievements = []Achievement{
	{
		Name:          "First Steps",
		Description:   "Complete your first quest",
		CriteriaType:  CriteriaQuestsCompleted,
		CriteriaValue: 1,
		Icon:          "🗡️",
		System:        true,
	},
	{
		Name:          "Seasoned Adventurer",
		Description:   "Complete 10 quests",
		CriteriaType:  CriteriaQuestsCompleted,
		CriteriaValue: 10,
		Icon:          "⚔️",
		System:        true,
	},
	{
		Name:          "Quest Veteran",
		Description:   "Complete 50 quests",
		CriteriaType:  CriteriaQuestsCompleted,
		CriteriaValue: 50,
		Icon:          "🛡️",
		System:        true,
	},
	{
		Name:          "Rising Hero",
		Description:   "Reach level 5",
		CriteriaType:  CriteriaLevelReached,
		CriteriaValue: 5,
		Icon:          "⭐",
		System:        true,
	},
	{
		Name:          "Living Legend",
		Description:   "Reach level 10",
		CriteriaType:  CriteriaLevelReached,
		CriteriaValue: 10,
		Icon:          "🌟",
		System:        true,
	},
	{
		Name:          "Gold Hoarder",
		Description:   "Hold 500 gold at once",
		CriteriaType:  CriteriaGoldEarned,
		CriteriaValue: 500,
		Icon:          "💰",
		System:        true,
	},
	{
		Name:          "Bounty Hunter",
		Description:   "Complete 5 daily bounties",
		CriteriaType:  CriteriaBountiesCompleted,
		CriteriaValue: 5,
		Icon:          "🎯",
		System:        true,
	},
}

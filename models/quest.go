package models

import "time"

// QuestType marks the corruption state of a quest instance.
const (
	QuestTypeStandard  = "standard"
	QuestTypeCorrupted = "corrupted"
)

// Quest is a single chore instance assigned to one user. Title, flavor and
// reward fields are snapshots taken from the template at generation time so
// later template edits never rewrite history; on completion XPReward and
// GoldReward are overwritten with the amounts actually earned.
type Quest struct {
	ID              string  `gorm:"primaryKey;type:uuid" json:"id"`
	HomeID          string  `gorm:"index;not null" json:"home_id"`
	QuestTemplateID *string `gorm:"index" json:"quest_template_id"` // nil for standalone quests
	AssignedTo      string  `gorm:"index;not null" json:"assigned_to"`

	Title       string `gorm:"size:200;not null" json:"title"`
	DisplayName string `gorm:"size:200" json:"display_name"`
	Description string `gorm:"size:1000" json:"description"`
	Tags        string `gorm:"size:500" json:"tags"`

	XPReward   int `json:"xp_reward" gorm:"default:10"`
	GoldReward int `json:"gold_reward" gorm:"default:5"`

	QuestType   string     `gorm:"default:'standard';index" json:"quest_type"` // standard | corrupted
	Completed   bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CorruptedAt *time.Time `json:"corrupted_at,omitempty"`

	Timestamps
}

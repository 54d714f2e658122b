package models

import "time"

// Recurrence values for QuestTemplate.Recurrence and Subscription.Recurrence.
const (
	RecurrenceOneOff  = "one-off"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// QuestTemplate is the reusable definition of a chore. Recurring templates
// carry a JSON schedule (e.g. {"type":"weekly","day":"monday","time":"08:00"})
// and are expanded into Quest instances by the generation pass.
type QuestTemplate struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	HomeID    string  `gorm:"index;not null" json:"home_id"`
	CreatedBy *string `json:"created_by,omitempty"`

	Title       string `gorm:"size:200;not null" json:"title"`
	DisplayName string `gorm:"size:200" json:"display_name"`
	Description string `gorm:"size:1000" json:"description"`
	Tags        string `gorm:"size:500" json:"tags"` // comma-joined

	XPReward   int `json:"xp_reward" gorm:"default:10"`
	GoldReward int `json:"gold_reward" gorm:"default:5"`

	Recurrence      string     `gorm:"default:'one-off'" json:"recurrence"` // one-off | daily | weekly | monthly
	Schedule        string     `gorm:"type:text" json:"schedule,omitempty"`
	DueInHours      *int       `json:"due_in_hours,omitempty"`
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`

	// System templates are seeded, not user-created.
	System bool `json:"system" gorm:"default:false"`

	Timestamps
}

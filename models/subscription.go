package models

import "time"

// Subscription lets one user follow a template on their own cadence,
// independent of the template's home-wide schedule. Paused subscriptions
// keep their state and resume where they left off.
type Subscription struct {
	ID              string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string `gorm:"index;not null" json:"user_id"`
	QuestTemplateID string `gorm:"index;not null" json:"quest_template_id"`

	Recurrence      string     `gorm:"default:'one-off'" json:"recurrence"`
	Schedule        string     `gorm:"type:text" json:"schedule,omitempty"`
	DueInHours      *int       `json:"due_in_hours,omitempty"`
	LastGeneratedAt *time.Time `json:"last_generated_at,omitempty"`

	Active bool `json:"is_active" gorm:"default:true"`

	Timestamps
}

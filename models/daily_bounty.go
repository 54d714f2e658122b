package models

// DailyBounty = the one template whose completions pay double today.
// At most one row per home per date; the date is stored as YYYY-MM-DD so the
// uniqueness check stays timezone-stable.
type DailyBounty struct {
	ID              string `gorm:"primaryKey;type:uuid" json:"id"`
	HomeID          string `gorm:"not null;uniqueIndex:idx_home_bounty_date" json:"home_id"`
	QuestTemplateID string `gorm:"not null" json:"quest_template_id"`
	BountyDate      string `gorm:"size:10;not null;uniqueIndex:idx_home_bounty_date" json:"bounty_date"`

	Timestamps
}

// BountyMultiplier applies to both XP and gold when a completed quest's
// template is the day's bounty.
const BountyMultiplier = 2

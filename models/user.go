package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a household member. XP, gold and level live directly on the row
// (denormalized for cheap reads); Level is recomputed from XP inside the same
// transaction that changes XP, never trusted on its own.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	HomeID       string `gorm:"not null;uniqueIndex:idx_home_username" json:"home_id"`
	Username     string `gorm:"not null;uniqueIndex:idx_home_username" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	AvatarURL    string `json:"avatar_url,omitempty"`

	XP    int `json:"xp" gorm:"default:0"`
	Gold  int `json:"gold" gorm:"default:0"`
	Level int `json:"level" gorm:"default:1"`

	// Consumable state. The elixir counter is the number of completions still
	// doubled; the shield expiry is checked lazily at read time (no expiry job).
	ActiveXPBoostCount int        `json:"active_xp_boost_count" gorm:"default:0"`
	ActiveShieldExpiry *time.Time `json:"active_shield_expiry,omitempty"`

	// Lifetime count of completions that were the day's bounty, kept for the
	// bounties_completed achievement criterion.
	BountiesCompleted int `json:"bounties_completed" gorm:"default:0"`

	Timestamps
}

// ShieldActive reports whether the purification shield still covers the user.
func (u *User) ShieldActive(now time.Time) bool {
	return u.ActiveShieldExpiry != nil && u.ActiveShieldExpiry.After(now)
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

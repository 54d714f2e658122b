package models

import "time"

// RewardEffect distinguishes plain shop treats from consumables. The effect
// is resolved into a consumable kind exactly once, at claim time; nothing
// downstream ever matches on reward names.
type RewardEffect string

const (
	RewardEffectNone    RewardEffect = ""
	RewardEffectXPBoost RewardEffect = "xp_boost"
	RewardEffectShield  RewardEffect = "shield"
)

// Valid reports whether the effect is one of the closed set.
func (e RewardEffect) Valid() bool {
	switch e {
	case RewardEffectNone, RewardEffectXPBoost, RewardEffectShield:
		return true
	}
	return false
}

// Reward is a shop catalog entry a member can spend gold on. Most are real-
// world treats ("Movie Night"); the two consumables carry an Effect.
type Reward struct {
	ID          string       `gorm:"primaryKey;type:uuid" json:"id"`
	HomeID      string       `gorm:"index;not null" json:"home_id"`
	Name        string       `gorm:"size:200;not null" json:"name"`
	Description string       `gorm:"size:1000" json:"description"`
	Cost        int          `gorm:"not null" json:"cost"`
	Effect      RewardEffect `gorm:"size:32;default:''" json:"effect"`

	Timestamps
}

// UserRewardClaim records a purchase. Cost is snapshotted so later price
// changes don't rewrite history.
type UserRewardClaim struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	RewardID  string    `gorm:"index;not null" json:"reward_id"`
	Cost      int       `gorm:"not null" json:"cost"`
	ClaimedAt time.Time `json:"claimed_at" gorm:"autoCreateTime"`
}

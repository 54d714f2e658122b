package services

import (
	"math"

	"majordomo-backend/models"
)

// RewardInput carries everything the payout pipeline needs, resolved by the
// caller inside the completion transaction: base amounts snapshotted on the
// quest, the completing user's corruption debuff, and the multiplier state.
// XPBoostRemaining is the elixir count after this completion consumed its
// charge, reported back to the client untouched.
type RewardInput struct {
	BaseXP           int
	BaseGold         int
	CorruptionDebuff float64
	IsDailyBounty    bool
	IsCorrupted      bool
	XPBoostActive    bool
	XPBoostRemaining int
}

// RewardBreakdown is the full account of a completion payout. Every input
// that shaped the final amounts rides along so clients can show the math.
type RewardBreakdown struct {
	XP               int     `json:"xp"`
	Gold             int     `json:"gold"`
	BaseXP           int     `json:"base_xp"`
	BaseGold         int     `json:"base_gold"`
	IsDailyBounty    bool    `json:"is_daily_bounty"`
	IsCorrupted      bool    `json:"is_corrupted"`
	CorruptionDebuff float64 `json:"corruption_debuff"`
	BountyMultiplier int     `json:"bounty_multiplier"`
	XPBoostActive    bool    `json:"xp_boost_active"`
	XPBoostRemaining int     `json:"xp_boost_remaining"`
}

// ComputeRewards runs the payout pipeline in fixed order: base amounts, then
// the corruption debuff, then the daily bounty multiplier, then the elixir
// doubling. Amounts are floored after every stage, and the elixir doubles
// gold as well as XP. The pipeline never produces negative amounts because
// base values are non-negative and the debuff never drops below 0.5.
func ComputeRewards(in RewardInput) RewardBreakdown {
	xp := in.BaseXP
	gold := in.BaseGold

	xp = int(math.Floor(float64(xp) * in.CorruptionDebuff))
	gold = int(math.Floor(float64(gold) * in.CorruptionDebuff))

	bountyMultiplier := 1
	if in.IsDailyBounty {
		bountyMultiplier = models.BountyMultiplier
	}
	xp *= bountyMultiplier
	gold *= bountyMultiplier

	if in.XPBoostActive {
		xp *= 2
		gold *= 2
	}

	return RewardBreakdown{
		XP:               xp,
		Gold:             gold,
		BaseXP:           in.BaseXP,
		BaseGold:         in.BaseGold,
		IsDailyBounty:    in.IsDailyBounty,
		IsCorrupted:      in.IsCorrupted,
		CorruptionDebuff: in.CorruptionDebuff,
		BountyMultiplier: bountyMultiplier,
		XPBoostActive:    in.XPBoostActive,
		XPBoostRemaining: in.XPBoostRemaining,
	}
}

package services

import (
	"fmt"
	"time"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
)

// ConsumableKind identifies what a consumable reward does. It is resolved
// exactly once, from Reward.Effect at claim time; everything downstream
// branches on this enum and never on reward names.
type ConsumableKind int

const (
	ConsumableXPBoost ConsumableKind = iota + 1
	ConsumableShield
)

const (
	// XPBoostCharges is how many completions a fresh elixir doubles.
	XPBoostCharges = 3
	// ShieldDuration is how long a purification shield pins the holder's
	// corruption debuff to 1.0.
	ShieldDuration = 24 * time.Hour
)

// ResolveConsumable maps a reward effect onto a consumable kind. Plain
// treats resolve to false.
func ResolveConsumable(effect models.RewardEffect) (ConsumableKind, bool) {
	switch effect {
	case models.RewardEffectXPBoost:
		return ConsumableXPBoost, true
	case models.RewardEffectShield:
		return ConsumableShield, true
	}
	return 0, false
}

// CheckNotStacking rejects a claim while the same consumable is still
// running. The error carries what's left so the client can show it.
func CheckNotStacking(user *models.User, kind ConsumableKind, reward *models.Reward, now time.Time) error {
	switch kind {
	case ConsumableXPBoost:
		if user.ActiveXPBoostCount > 0 {
			return apperrors.New(apperrors.CodeConsumableAlreadyActive).
				WithMessage(fmt.Sprintf("%s is active (%d quests remaining)", reward.Name, user.ActiveXPBoostCount)).
				WithDetails(map[string]interface{}{
					"reward_name":     reward.Name,
					"remaining_count": user.ActiveXPBoostCount,
					"user_id":         user.ID,
				})
		}
	case ConsumableShield:
		if user.ShieldActive(now) {
			hoursLeft := int(user.ActiveShieldExpiry.Sub(now).Hours())
			return apperrors.New(apperrors.CodeConsumableAlreadyActive).
				WithMessage(fmt.Sprintf("%s is active (%dh remaining)", reward.Name, hoursLeft)).
				WithDetails(map[string]interface{}{
					"reward_name": reward.Name,
					"expiry":      user.ActiveShieldExpiry.Format(time.RFC3339),
					"user_id":     user.ID,
				})
		}
	}
	return nil
}

// Activate applies the consumable's effect to the user's state. The caller
// persists the user in its own transaction.
func Activate(user *models.User, kind ConsumableKind, now time.Time) {
	switch kind {
	case ConsumableXPBoost:
		user.ActiveXPBoostCount = XPBoostCharges
	case ConsumableShield:
		expiry := now.Add(ShieldDuration)
		user.ActiveShieldExpiry = &expiry
	}
}

package services

import (
	"errors"
	"fmt"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"

	"gorm.io/gorm"
)

// ProgressionService owns every mutation of a user's XP, gold and level.
// Methods take the transaction handle they should run on, so the quest
// completion flow can fold them into its own transaction; callers outside a
// transaction wrap the call in DB.Transaction themselves.
type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// AwardXP adds xp to a user and recomputes their level from lifetime XP.
// Negative amounts are rejected; XP only ever grows.
func (s *ProgressionService) AwardXP(tx *gorm.DB, userID string, amount int, reason string) (*models.User, error) {
	if amount < 0 {
		return nil, apperrors.New(apperrors.CodeNegativeXP).WithDetails(map[string]interface{}{
			"amount":  amount,
			"user_id": userID,
		})
	}

	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUserNotFound).WithDetails(map[string]interface{}{"user_id": userID})
		}
		return nil, err
	}

	oldLevel := user.Level
	user.XP += amount
	user.Level = LevelForXP(user.XP)

	if err := tx.Save(&user).Error; err != nil {
		return nil, err
	}

	fmt.Printf("🎮 XP awarded: %s +%d → XP=%d, Lvl=%d (reason: %s)\n",
		user.Username, amount, user.XP, user.Level, reason)
	if user.Level > oldLevel {
		fmt.Printf("🎉 Level up: %s reached level %d\n", user.Username, user.Level)
	}

	return &user, nil
}

// AwardGold adjusts a user's gold balance. Negative amounts spend; the
// balance never goes below zero.
func (s *ProgressionService) AwardGold(tx *gorm.DB, userID string, amount int, reason string) (*models.User, error) {
	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeUserNotFound).WithDetails(map[string]interface{}{"user_id": userID})
		}
		return nil, err
	}

	if user.Gold+amount < 0 {
		return nil, apperrors.New(apperrors.CodeInsufficientGold).WithDetails(map[string]interface{}{
			"required": -amount,
			"current":  user.Gold,
			"user_id":  userID,
		})
	}

	user.Gold += amount
	if err := tx.Save(&user).Error; err != nil {
		return nil, err
	}

	fmt.Printf("💰 Gold adjusted: %s %+d → %d (reason: %s)\n", user.Username, amount, user.Gold, reason)

	return &user, nil
}

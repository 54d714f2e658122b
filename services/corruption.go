package services

import (
	"fmt"
	"time"

	"majordomo-backend/models"

	"gorm.io/gorm"
)

// Debuff tuning: each incomplete corrupted quest in the home shaves 5% off
// completion rewards, capped at 50%.
const (
	corruptionPenaltyPerQuest = 5
	corruptionPenaltyCap      = 50
)

// CorruptionService turns overdue quests into corrupted ones and prices the
// resulting household debuff. Sweeps are read-triggered; there is no timer.
type CorruptionService struct {
	DB *gorm.DB
}

func NewCorruptionService(db *gorm.DB) *CorruptionService {
	return &CorruptionService{DB: db}
}

// SweepHousehold corrupts every overdue quest in the home: incomplete, past
// a real due date, not already corrupted. Quests corrupted on an earlier
// sweep keep their original corrupted_at, so running twice changes nothing.
// Returns the quests corrupted by THIS sweep.
func (s *CorruptionService) SweepHousehold(tx *gorm.DB, homeID string, now time.Time) ([]models.Quest, error) {
	var overdue []models.Quest
	err := tx.
		Where("home_id = ? AND completed = ? AND due_date IS NOT NULL AND due_date < ? AND quest_type <> ?",
			homeID, false, now, models.QuestTypeCorrupted).
		Find(&overdue).Error
	if err != nil {
		return nil, err
	}
	if len(overdue) == 0 {
		return overdue, nil
	}

	ids := make([]string, 0, len(overdue))
	for _, q := range overdue {
		ids = append(ids, q.ID)
	}
	err = tx.Model(&models.Quest{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"quest_type":   models.QuestTypeCorrupted,
		"corrupted_at": now,
	}).Error
	if err != nil {
		return nil, err
	}

	for i := range overdue {
		stamped := now
		overdue[i].QuestType = models.QuestTypeCorrupted
		overdue[i].CorruptedAt = &stamped
	}

	fmt.Printf("🧟 Corruption claimed %d quest(s) in home %s\n", len(overdue), homeID)
	return overdue, nil
}

// Debuff computes the completing user's reward multiplier. An active
// purification shield pins it to 1.0; otherwise every incomplete corrupted
// quest in the home costs 5%, down to a floor of 0.5. Runs on the caller's
// transaction so the count and the payout read the same state.
func (s *CorruptionService) Debuff(tx *gorm.DB, user *models.User, now time.Time) (float64, error) {
	if user.ShieldActive(now) {
		return 1.0, nil
	}

	var count int64
	err := tx.Model(&models.Quest{}).
		Where("home_id = ? AND quest_type = ? AND completed = ?", user.HomeID, models.QuestTypeCorrupted, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	penalty := int(count) * corruptionPenaltyPerQuest
	if penalty > corruptionPenaltyCap {
		penalty = corruptionPenaltyCap
	}
	return 1.0 - float64(penalty)/100.0, nil
}

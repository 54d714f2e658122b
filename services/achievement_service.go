package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
)

// AchievementService unlocks achievements and serves the achievement routes.
type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// AchievementUnlock is the quest-completion projection of a fresh unlock.
type AchievementUnlock struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

type userAchievementDetail struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	AchievementID string             `json:"achievement_id"`
	UnlockedAt    time.Time          `json:"unlocked_at"`
	Achievement   models.Achievement `json:"achievement"`
}

// EnsureSystemAchievements seeds the built-in achievement set. Idempotent:
// once any system achievement exists the seed is skipped entirely.
func (s *AchievementService) EnsureSystemAchievements() error {
	var count int64
	if err := s.DB.Model(&models.Achievement{}).Where("system = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := range models.SystemAchievements {
		achievement := models.SystemAchievements[i]
		if err := s.DB.Create(&achievement).Error; err != nil {
			return err
		}
	}
	log.Printf("🏆 Seeded %d system achievements", len(models.SystemAchievements))
	return nil
}

// CheckAndAward unlocks every achievement the user now qualifies for. Runs on
// the caller's transaction handle and returns only fresh unlocks.
func (s *AchievementService) CheckAndAward(tx *gorm.DB, user *models.User) ([]AchievementUnlock, error) {
	var achievements []models.Achievement
	if err := tx.Where("home_id = ? OR system = ?", user.HomeID, true).Find(&achievements).Error; err != nil {
		return nil, err
	}

	unlocked := []AchievementUnlock{}
	for _, achievement := range achievements {
		var count int64
		if err := tx.Model(&models.UserAchievement{}).
			Where("user_id = ? AND achievement_id = ?", user.ID, achievement.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}

		met, err := s.meetsCriteria(tx, user, &achievement)
		if err != nil {
			return nil, err
		}
		if !met {
			continue
		}

		userAchievement := models.UserAchievement{UserID: user.ID, AchievementID: achievement.ID}
		if err := tx.Create(&userAchievement).Error; err != nil {
			return nil, err
		}
		unlocked = append(unlocked, AchievementUnlock{
			ID:         achievement.ID,
			Name:       achievement.Name,
			UnlockedAt: userAchievement.UnlockedAt,
		})
		fmt.Printf("🏆 Achievement unlocked: %s → %s\n", achievement.Name, user.Username)
	}
	return unlocked, nil
}

func (s *AchievementService) meetsCriteria(tx *gorm.DB, user *models.User, achievement *models.Achievement) (bool, error) {
	switch achievement.CriteriaType {
	case models.CriteriaQuestsCompleted:
		var count int64
		if err := tx.Model(&models.Quest{}).
			Where("assigned_to = ? AND completed = ?", user.ID, true).
			Count(&count).Error; err != nil {
			return false, err
		}
		return count >= int64(achievement.CriteriaValue), nil
	case models.CriteriaLevelReached:
		return user.Level >= achievement.CriteriaValue, nil
	case models.CriteriaGoldEarned:
		// Current balance, not lifetime earnings.
		return user.Gold >= achievement.CriteriaValue, nil
	case models.CriteriaXPEarned:
		return user.XP >= achievement.CriteriaValue, nil
	case models.CriteriaBountiesCompleted:
		return user.BountiesCompleted >= achievement.CriteriaValue, nil
	}
	return false, nil
}

func validCriteriaType(criteriaType string) bool {
	switch criteriaType {
	case models.CriteriaQuestsCompleted, models.CriteriaLevelReached,
		models.CriteriaGoldEarned, models.CriteriaXPEarned, models.CriteriaBountiesCompleted:
		return true
	}
	return false
}

// ListAchievements handles GET /api/achievements. Returns the home's custom
// achievements plus the system set.
func (s *AchievementService) ListAchievements(c *fiber.Ctx) error {
	var achievements []models.Achievement
	if err := s.DB.Where("home_id = ? OR system = ?", currentHomeID(c), true).
		Order("created_at ASC").Find(&achievements).Error; err != nil {
		log.Printf("DB Error listing achievements: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}
	return c.JSON(achievements)
}

// GetAchievement handles GET /api/achievements/:id.
func (s *AchievementService) GetAchievement(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid achievement ID"})
	}

	achievement, err := s.loadVisible(id, currentHomeID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(achievement)
}

// loadVisible fetches an achievement the home may see: its own or a system one.
func (s *AchievementService) loadVisible(id, homeID string) (*models.Achievement, error) {
	var achievement models.Achievement
	err := s.DB.Where("id = ?", id).First(&achievement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeAchievementNotFound).
			WithDetails(map[string]interface{}{"achievement_id": id})
	}
	if err != nil {
		return nil, err
	}
	if !achievement.System && (achievement.HomeID == nil || *achievement.HomeID != homeID) {
		return nil, apperrors.New(apperrors.CodeAchievementNotFound).
			WithDetails(map[string]interface{}{"achievement_id": id})
	}
	return &achievement, nil
}

// GetUserAchievements handles GET /api/achievements/users/:userID. Unlocks
// come back with the full achievement embedded.
func (s *AchievementService) GetUserAchievements(c *fiber.Ctx) error {
	return s.userAchievements(c, c.Params("userID"))
}

// GetMyAchievements handles GET /api/achievements/me.
func (s *AchievementService) GetMyAchievements(c *fiber.Ctx) error {
	return s.userAchievements(c, currentUserID(c))
}

func (s *AchievementService) userAchievements(c *fiber.Ctx, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	err := s.DB.Where("id = ? AND home_id = ?", userID, currentHomeID(c)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperrors.New(apperrors.CodeUserNotFound).
			WithDetails(map[string]interface{}{"user_id": userID}))
	}
	if err != nil {
		return respondError(c, err)
	}

	var unlocks []models.UserAchievement
	if err := s.DB.Where("user_id = ?", userID).Order("unlocked_at ASC").Find(&unlocks).Error; err != nil {
		return respondError(c, err)
	}

	details := []userAchievementDetail{}
	for _, unlock := range unlocks {
		var achievement models.Achievement
		if err := s.DB.Where("id = ?", unlock.AchievementID).First(&achievement).Error; err != nil {
			continue
		}
		details = append(details, userAchievementDetail{
			ID:            unlock.ID,
			UserID:        unlock.UserID,
			AchievementID: unlock.AchievementID,
			UnlockedAt:    unlock.UnlockedAt,
			Achievement:   achievement,
		})
	}
	return c.JSON(details)
}

// CreateAchievement handles POST /api/achievements. Custom achievements are
// home-scoped; the system flag is never client-settable.
func (s *AchievementService) CreateAchievement(c *fiber.Ctx) error {
	var req struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		CriteriaType  string `json:"criteria_type"`
		CriteriaValue int    `json:"criteria_value"`
		Icon          string `json:"icon"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !validCriteriaType(req.CriteriaType) {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Invalid criteria type").
			WithDetails(map[string]interface{}{
				"criteria_type": req.CriteriaType,
				"valid_types": []string{
					models.CriteriaQuestsCompleted, models.CriteriaLevelReached,
					models.CriteriaGoldEarned, models.CriteriaXPEarned, models.CriteriaBountiesCompleted,
				},
			}))
	}

	homeID := currentHomeID(c)
	achievement := models.Achievement{
		HomeID:        &homeID,
		Name:          req.Name,
		Description:   req.Description,
		CriteriaType:  req.CriteriaType,
		CriteriaValue: req.CriteriaValue,
		Icon:          req.Icon,
	}
	if err := s.DB.Create(&achievement).Error; err != nil {
		log.Printf("DB Error creating achievement: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create achievement"})
	}
	return c.Status(fiber.StatusCreated).JSON(achievement)
}

// AwardAchievement handles POST /api/achievements/:id/award/:userID, a manual
// grant that skips criteria checking.
func (s *AchievementService) AwardAchievement(c *fiber.Ctx) error {
	achievementID := c.Params("id")
	userID := c.Params("userID")
	if _, err := uuid.Parse(achievementID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid achievement ID"})
	}
	if _, err := uuid.Parse(userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	homeID := currentHomeID(c)

	var user models.User
	err := s.DB.Where("id = ? AND home_id = ?", userID, homeID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperrors.New(apperrors.CodeUserNotFound).
			WithDetails(map[string]interface{}{"user_id": userID}))
	}
	if err != nil {
		return respondError(c, err)
	}

	achievement, err := s.loadVisible(achievementID, homeID)
	if err != nil {
		return respondError(c, err)
	}

	var count int64
	if err := s.DB.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error; err != nil {
		return respondError(c, err)
	}
	if count > 0 {
		return respondError(c, apperrors.New(apperrors.CodeAchievementAlreadyUnlocked).
			WithDetails(map[string]interface{}{"user_id": userID, "achievement_id": achievementID}))
	}

	unlock := models.UserAchievement{UserID: userID, AchievementID: achievementID}
	if err := s.DB.Create(&unlock).Error; err != nil {
		log.Printf("DB Error awarding achievement: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award achievement"})
	}
	fmt.Printf("🏆 Achievement awarded manually: %s → %s\n", achievement.Name, user.Username)
	return c.Status(fiber.StatusCreated).JSON(unlock)
}

// RunCheck handles POST /api/achievements/users/:userID/check and returns any
// newly unlocked achievements.
func (s *AchievementService) RunCheck(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if _, err := uuid.Parse(userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var unlocked []AchievementUnlock
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND home_id = ?", userID, currentHomeID(c)).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeUserNotFound).
					WithDetails(map[string]interface{}{"user_id": userID})
			}
			return err
		}
		var txErr error
		unlocked, txErr = s.CheckAndAward(tx, &user)
		return txErr
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(unlocked)
}

// DeleteAchievement handles DELETE /api/achievements/:id. System achievements
// cannot be deleted.
func (s *AchievementService) DeleteAchievement(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid achievement ID"})
	}

	var achievement models.Achievement
	err := s.DB.Where("id = ? AND home_id = ?", id, currentHomeID(c)).First(&achievement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperrors.New(apperrors.CodeAchievementNotFound).
			WithDetails(map[string]interface{}{"achievement_id": id}))
	}
	if err != nil {
		return respondError(c, err)
	}

	if err := s.DB.Delete(&achievement).Error; err != nil {
		log.Printf("DB Error deleting achievement: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete achievement"})
	}
	return c.JSON(fiber.Map{"detail": "Achievement deleted"})
}

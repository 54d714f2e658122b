package services

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
)

// ShopService serves the reward shop: the home's catalog plus gold-for-perks
// claims. Consumable effects (elixir, shield) activate at claim time.
type ShopService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewShopService(db *gorm.DB, progression *ProgressionService) *ShopService {
	return &ShopService{DB: db, Progression: progression}
}

// ListRewards handles GET /api/rewards.
func (s *ShopService) ListRewards(c *fiber.Ctx) error {
	var rewards []models.Reward
	if err := s.DB.Where("home_id = ?", currentHomeID(c)).Order("cost ASC").Find(&rewards).Error; err != nil {
		log.Printf("DB Error listing rewards: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch rewards"})
	}
	return c.JSON(rewards)
}

// GetReward handles GET /api/rewards/:id.
func (s *ShopService) GetReward(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	}

	var reward models.Reward
	err := s.DB.Where("id = ? AND home_id = ?", id, currentHomeID(c)).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperrors.New(apperrors.CodeRewardNotFound).
			WithDetails(map[string]interface{}{"reward_id": id}))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reward)
}

// CreateReward handles POST /api/rewards.
func (s *ShopService) CreateReward(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Cost        int    `json:"cost"`
		Effect      string `json:"effect"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Cost < 0 {
		return respondError(c, apperrors.New(apperrors.CodeNegativeAmount).
			WithMessage("Reward cost cannot be negative").
			WithDetails(map[string]interface{}{"cost": req.Cost}))
	}
	effect := models.RewardEffect(req.Effect)
	if !effect.Valid() {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Invalid reward effect").
			WithDetails(map[string]interface{}{
				"effect":        req.Effect,
				"valid_effects": []string{string(models.RewardEffectXPBoost), string(models.RewardEffectShield)},
			}))
	}

	reward := models.Reward{
		HomeID:      currentHomeID(c),
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		Effect:      effect,
	}
	if err := s.DB.Create(&reward).Error; err != nil {
		log.Printf("DB Error creating reward: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create reward"})
	}
	return c.Status(fiber.StatusCreated).JSON(reward)
}

// DeleteReward handles DELETE /api/rewards/:id.
func (s *ShopService) DeleteReward(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	}

	var reward models.Reward
	err := s.DB.Where("id = ? AND home_id = ?", id, currentHomeID(c)).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperrors.New(apperrors.CodeRewardNotFound).
			WithDetails(map[string]interface{}{"reward_id": id}))
	}
	if err != nil {
		return respondError(c, err)
	}

	if err := s.DB.Delete(&reward).Error; err != nil {
		log.Printf("DB Error deleting reward: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete reward"})
	}
	return c.JSON(fiber.Map{"detail": "Reward deleted"})
}

// ClaimReward handles POST /api/rewards/:id/claim?user_id=. Affordability,
// stacking, the gold deduction, effect activation and the claim record all
// commit or roll back together.
func (s *ShopService) ClaimReward(c *fiber.Ctx) error {
	rewardID := c.Params("id")
	if _, err := uuid.Parse(rewardID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid reward ID"})
	}
	userID := c.Query("user_id")
	if _, err := uuid.Parse(userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or missing user_id query parameter"})
	}
	homeID := currentHomeID(c)

	var claim models.UserRewardClaim
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND home_id = ?", userID, homeID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeUserNotFound).
					WithDetails(map[string]interface{}{"user_id": userID})
			}
			return err
		}

		var reward models.Reward
		if err := tx.Where("id = ? AND home_id = ?", rewardID, homeID).First(&reward).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeRewardNotFound).
					WithDetails(map[string]interface{}{"reward_id": rewardID})
			}
			return err
		}

		if user.Gold < reward.Cost {
			return apperrors.New(apperrors.CodeInsufficientGold).
				WithDetails(map[string]interface{}{
					"required":  reward.Cost,
					"current":   user.Gold,
					"user_id":   user.ID,
					"reward_id": reward.ID,
				})
		}

		now := time.Now()
		kind, isConsumable := ResolveConsumable(reward.Effect)
		if isConsumable {
			if err := CheckNotStacking(&user, kind, &reward, now); err != nil {
				return err
			}
		}

		if _, err := s.Progression.AwardGold(tx, user.ID, -reward.Cost, "claimed "+reward.Name); err != nil {
			return err
		}

		if isConsumable {
			Activate(&user, kind, now)
			updates := map[string]interface{}{
				"active_xp_boost_count": user.ActiveXPBoostCount,
				"active_shield_expiry":  user.ActiveShieldExpiry,
			}
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
				return err
			}
			log.Printf("✨ Consumable activated: %s for %s", reward.Name, user.Username)
		}

		claim = models.UserRewardClaim{UserID: user.ID, RewardID: reward.ID, Cost: reward.Cost}
		return tx.Create(&claim).Error
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(claim)
}

// GetUserClaims handles GET /api/rewards/user/:userID/claims.
func (s *ShopService) GetUserClaims(c *fiber.Ctx) error {
	userID := c.Params("userID")
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

	var claims []models.UserRewardClaim
	if err := s.DB.Where("user_id = ?", userID).Order("claimed_at DESC").Find(&claims).Error; err != nil {
		log.Printf("DB Error listing reward claims: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch reward claims"})
	}
	return c.JSON(claims)
}

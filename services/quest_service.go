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

// QuestService serves quest instances: the household board (which also
// advances the recurring-quest clock and the corruption sweep), CRUD, the
// completion orchestrator, and the hardware trigger endpoint.
type QuestService struct {
	DB           *gorm.DB
	Generation   *GenerationService
	Corruption   *CorruptionService
	Progression  *ProgressionService
	Bounty       *BountyService
	Achievements *AchievementService
}

func NewQuestService(
	db *gorm.DB,
	generation *GenerationService,
	corruption *CorruptionService,
	progression *ProgressionService,
	bounty *BountyService,
	achievements *AchievementService,
) *QuestService {
	return &QuestService{
		DB:           db,
		Generation:   generation,
		Corruption:   corruption,
		Progression:  progression,
		Bounty:       bounty,
		Achievements: achievements,
	}
}

// ListQuests handles GET /api/quests. Reading the board is what drives the
// scheduler: due recurring instances are generated and overdue quests are
// corrupted before the list is returned. Either step failing only logs; the
// board stays readable.
func (s *QuestService) ListQuests(c *fiber.Ctx) error {
	homeID := currentHomeID(c)

	if _, err := s.Generation.GenerateDueQuests(homeID); err != nil {
		log.Printf("⚠️ Recurring quest generation failed for home %s: %v", homeID, err)
	}
	if err := s.DB.Transaction(func(tx *gorm.DB) error {
		_, txErr := s.Corruption.SweepHousehold(tx, homeID, time.Now())
		return txErr
	}); err != nil {
		log.Printf("⚠️ Corruption sweep failed for home %s: %v", homeID, err)
	}

	query := s.DB.Where("home_id = ?", homeID)
	if c.Query("completed") != "" {
		query = query.Where("completed = ?", c.QueryBool("completed"))
	}

	var quests []models.Quest
	if err := query.Order("created_at DESC").Find(&quests).Error; err != nil {
		log.Printf("DB Error listing quests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch quests"})
	}
	return c.JSON(quests)
}

// GetQuest handles GET /api/quests/:id.
func (s *QuestService) GetQuest(c *fiber.Ctx) error {
	quest, ok := s.loadQuest(c)
	if !ok {
		return nil
	}
	return c.JSON(quest)
}

// loadQuest fetches the home-scoped quest from the :id param, writing the
// error response itself when the lookup fails.
func (s *QuestService) loadQuest(c *fiber.Ctx) (*models.Quest, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quest ID"})
		return nil, false
	}

	var quest models.Quest
	err := s.DB.Where("id = ? AND home_id = ?", id, currentHomeID(c)).First(&quest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = respondError(c, apperrors.New(apperrors.CodeQuestNotFound).
			WithDetails(map[string]interface{}{"quest_id": id}))
		return nil, false
	}
	if err != nil {
		_ = respondError(c, err)
		return nil, false
	}
	return &quest, true
}

// GetUserQuests handles GET /api/quests/user/:userID with an optional
// ?completed= filter.
func (s *QuestService) GetUserQuests(c *fiber.Ctx) error {
	userID := c.Params("userID")
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

	query := s.DB.Where("home_id = ? AND assigned_to = ?", homeID, userID)
	if c.Query("completed") != "" {
		query = query.Where("completed = ?", c.QueryBool("completed"))
	}

	var quests []models.Quest
	if err := query.Order("created_at DESC").Find(&quests).Error; err != nil {
		log.Printf("DB Error listing user quests: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch quests"})
	}
	return c.JSON(quests)
}

// CreateQuest handles POST /api/quests?user_id=. Creates an instance from a
// template, snapshotting the template's fields onto the quest row.
func (s *QuestService) CreateQuest(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if _, err := uuid.Parse(userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or missing user_id query parameter"})
	}

	var req struct {
		QuestTemplateID string     `json:"quest_template_id"`
		DueDate         *time.Time `json:"due_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
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

	var template models.QuestTemplate
	err = s.DB.Where("id = ? AND home_id = ?", req.QuestTemplateID, homeID).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperrors.New(apperrors.CodeQuestTemplateNotFound).
			WithDetails(map[string]interface{}{"template_id": req.QuestTemplateID}))
	}
	if err != nil {
		return respondError(c, err)
	}

	// Due date comes from the request on this path, not due_in_hours.
	quest := NewQuestFromTemplate(&template, user.ID, time.Now())
	quest.DueDate = req.DueDate

	if err := s.DB.Create(quest).Error; err != nil {
		log.Printf("DB Error creating quest: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create quest"})
	}
	return c.Status(fiber.StatusCreated).JSON(quest)
}

// CreateStandaloneQuest handles POST /api/quests/standalone?user_id=. The
// quest carries its own fields and no template link.
func (s *QuestService) CreateStandaloneQuest(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if _, err := uuid.Parse(userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or missing user_id query parameter"})
	}

	req := struct {
		Title       string     `json:"title"`
		DisplayName string     `json:"display_name"`
		Description string     `json:"description"`
		Tags        string     `json:"tags"`
		XPReward    int        `json:"xp_reward"`
		GoldReward  int        `json:"gold_reward"`
		DueDate     *time.Time `json:"due_date"`
	}{XPReward: 10, GoldReward: 5}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Title is required").
			WithDetails(map[string]interface{}{"field": "title"}))
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

	quest := models.Quest{
		HomeID:      homeID,
		AssignedTo:  user.ID,
		Title:       req.Title,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Tags:        req.Tags,
		XPReward:    req.XPReward,
		GoldReward:  req.GoldReward,
		QuestType:   models.QuestTypeStandard,
		DueDate:     req.DueDate,
	}
	if err := s.DB.Create(&quest).Error; err != nil {
		log.Printf("DB Error creating standalone quest: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create quest"})
	}
	return c.Status(fiber.StatusCreated).JSON(quest)
}

// UpdateQuest handles PUT /api/quests/:id. Partial update of the snapshot
// fields; completion state only ever changes through the complete endpoint.
func (s *QuestService) UpdateQuest(c *fiber.Ctx) error {
	quest, ok := s.loadQuest(c)
	if !ok {
		return nil
	}

	var req struct {
		Title       *string    `json:"title"`
		DisplayName *string    `json:"display_name"`
		Description *string    `json:"description"`
		Tags        *string    `json:"tags"`
		XPReward    *int       `json:"xp_reward"`
		GoldReward  *int       `json:"gold_reward"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Title != nil {
		quest.Title = *req.Title
	}
	if req.DisplayName != nil {
		quest.DisplayName = *req.DisplayName
	}
	if req.Description != nil {
		quest.Description = *req.Description
	}
	if req.Tags != nil {
		quest.Tags = *req.Tags
	}
	if req.XPReward != nil {
		quest.XPReward = *req.XPReward
	}
	if req.GoldReward != nil {
		quest.GoldReward = *req.GoldReward
	}
	if req.DueDate != nil {
		quest.DueDate = req.DueDate
	}

	if err := s.DB.Save(quest).Error; err != nil {
		log.Printf("DB Error updating quest: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update quest"})
	}
	return c.JSON(quest)
}

// DeleteQuest handles DELETE /api/quests/:id.
func (s *QuestService) DeleteQuest(c *fiber.Ctx) error {
	quest, ok := s.loadQuest(c)
	if !ok {
		return nil
	}

	if err := s.DB.Delete(quest).Error; err != nil {
		log.Printf("DB Error deleting quest: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete quest"})
	}
	return c.JSON(fiber.Map{"detail": "Quest deleted"})
}

// ConvertToTemplate handles POST /api/quests/:id/convert-to-template. A
// standalone quest becomes the first instance of a brand-new template; the
// assignee gets an active subscription so future cycles reach them.
func (s *QuestService) ConvertToTemplate(c *fiber.Ctx) error {
	quest, ok := s.loadQuest(c)
	if !ok {
		return nil
	}

	if quest.QuestTemplateID != nil {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Quest is already linked to a template").
			WithDetails(map[string]interface{}{
				"quest_id":    quest.ID,
				"template_id": *quest.QuestTemplateID,
			}))
	}

	req := struct {
		Recurrence string `json:"recurrence"`
		Schedule   string `json:"schedule"`
		DueInHours *int   `json:"due_in_hours"`
	}{Recurrence: models.RecurrenceOneOff}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if _, err := ParseSchedule(req.Recurrence, req.Schedule); err != nil {
		return respondError(c, err)
	}

	assignee := quest.AssignedTo
	template := models.QuestTemplate{
		HomeID:      quest.HomeID,
		CreatedBy:   &assignee,
		Title:       quest.Title,
		DisplayName: quest.DisplayName,
		Description: quest.Description,
		Tags:        quest.Tags,
		XPReward:    quest.XPReward,
		GoldReward:  quest.GoldReward,
		Recurrence:  req.Recurrence,
		Schedule:    req.Schedule,
		DueInHours:  req.DueInHours,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&template).Error; err != nil {
			return err
		}
		if err := tx.Model(quest).Update("quest_template_id", template.ID).Error; err != nil {
			return err
		}
		subscription := models.Subscription{
			UserID:          assignee,
			QuestTemplateID: template.ID,
			Recurrence:      req.Recurrence,
			Schedule:        req.Schedule,
			DueInHours:      req.DueInHours,
			Active:          true,
		}
		return tx.Create(&subscription).Error
	})
	if err != nil {
		log.Printf("DB Error converting quest to template: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to convert quest to template"})
	}

	log.Printf("📋 Quest %s converted to template %s (%s)", quest.ID, template.ID, template.Title)
	return c.Status(fiber.StatusCreated).JSON(template)
}

// CompleteQuest handles POST /api/quests/:id/complete. The load, the reward
// math, the quest flip, the user mutation and the achievement pass all
// commit or roll back as one unit.
func (s *QuestService) CompleteQuest(c *fiber.Ctx) error {
	questID := c.Params("id")
	if _, err := uuid.Parse(questID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid quest ID"})
	}
	homeID := currentHomeID(c)
	now := time.Now()

	var (
		quest     models.Quest
		breakdown RewardBreakdown
		unlocked  []AchievementUnlock
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND home_id = ?", questID, homeID).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeQuestNotFound).
					WithDetails(map[string]interface{}{"quest_id": questID})
			}
			return err
		}

		if quest.Completed {
			var completedAt interface{}
			if quest.CompletedAt != nil {
				completedAt = quest.CompletedAt.Format(time.RFC3339)
			}
			return apperrors.New(apperrors.CodeQuestAlreadyCompleted).
				WithDetails(map[string]interface{}{
					"quest_id":     quest.ID,
					"completed_at": completedAt,
				})
		}

		var user models.User
		if err := tx.Where("id = ?", quest.AssignedTo).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeUserNotFound).
					WithDetails(map[string]interface{}{"user_id": quest.AssignedTo})
			}
			return err
		}

		bounty, err := s.Bounty.TodayBounty(tx, homeID, now)
		if err != nil {
			return err
		}
		isBounty := bounty != nil && quest.QuestTemplateID != nil &&
			*quest.QuestTemplateID == bounty.QuestTemplateID

		debuff, err := s.Corruption.Debuff(tx, &user, now)
		if err != nil {
			return err
		}

		boostActive := user.ActiveXPBoostCount > 0
		breakdown = ComputeRewards(RewardInput{
			BaseXP:           quest.XPReward,
			BaseGold:         quest.GoldReward,
			CorruptionDebuff: debuff,
			IsDailyBounty:    isBounty,
			IsCorrupted:      quest.QuestType == models.QuestTypeCorrupted,
			XPBoostActive:    boostActive,
			XPBoostRemaining: user.ActiveXPBoostCount,
		})

		completedAt := now
		quest.Completed = true
		quest.CompletedAt = &completedAt
		quest.XPReward = breakdown.XP
		quest.GoldReward = breakdown.Gold
		if err := tx.Save(&quest).Error; err != nil {
			return err
		}

		if _, err := s.Progression.AwardXP(tx, user.ID, breakdown.XP, "quest completed: "+quest.Title); err != nil {
			return err
		}
		if _, err := s.Progression.AwardGold(tx, user.ID, breakdown.Gold, "quest completed: "+quest.Title); err != nil {
			return err
		}

		// Reload so the boost and bounty bookkeeping and the achievement
		// pass see the freshly awarded stats.
		if err := tx.Where("id = ?", user.ID).First(&user).Error; err != nil {
			return err
		}
		if boostActive {
			user.ActiveXPBoostCount--
		}
		if isBounty {
			user.BountiesCompleted++
		}
		if boostActive || isBounty {
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
		}
		breakdown.XPBoostRemaining = user.ActiveXPBoostCount

		var checkErr error
		unlocked, checkErr = s.Achievements.CheckAndAward(tx, &user)
		return checkErr
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"quest":        quest,
		"rewards":      breakdown,
		"achievements": unlocked,
	})
}

// CheckCorruption handles POST /api/quests/check-corruption, the explicit
// sweep for cron jobs and manual pokes.
func (s *QuestService) CheckCorruption(c *fiber.Ctx) error {
	var corrupted []models.Quest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		corrupted, txErr = s.Corruption.SweepHousehold(tx, currentHomeID(c), time.Now())
		return txErr
	})
	if err != nil {
		return respondError(c, err)
	}

	ids := make([]string, 0, len(corrupted))
	for _, quest := range corrupted {
		ids = append(ids, quest.ID)
	}
	return c.JSON(fiber.Map{
		"corrupted_count":     len(corrupted),
		"corrupted_quest_ids": ids,
	})
}

// TriggerQuest handles POST /api/triggers/quest/:templateID, the NFC tag and
// voice assistant path: create an instance for the caller and complete it on
// the spot at raw template values, no multipliers.
func (s *QuestService) TriggerQuest(c *fiber.Ctx) error {
	templateID := c.Params("templateID")
	if _, err := uuid.Parse(templateID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template ID"})
	}
	homeID := currentHomeID(c)
	userID := currentUserID(c)
	now := time.Now()

	var (
		quest  *models.Quest
		user   *models.User
		xpGold [2]int
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var template models.QuestTemplate
		if err := tx.Where("id = ?", templateID).First(&template).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeQuestTemplateNotFound).
					WithDetails(map[string]interface{}{"template_id": templateID})
			}
			return err
		}
		if template.HomeID != homeID {
			return apperrors.New(apperrors.CodeForbidden).
				WithMessage("Not authorized to trigger this quest").
				WithDetails(map[string]interface{}{"template_id": templateID})
		}

		quest = NewQuestFromTemplate(&template, userID, now)
		quest.DueDate = nil
		completedAt := now
		quest.Completed = true
		quest.CompletedAt = &completedAt
		if err := tx.Create(quest).Error; err != nil {
			return err
		}

		if _, err := s.Progression.AwardXP(tx, userID, template.XPReward, "triggered: "+template.Title); err != nil {
			return err
		}
		awarded, err := s.Progression.AwardGold(tx, userID, template.GoldReward, "triggered: "+template.Title)
		if err != nil {
			return err
		}
		user = awarded
		xpGold = [2]int{template.XPReward, template.GoldReward}
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"quest":   quest,
		"user_stats": fiber.Map{
			"level": user.Level,
			"xp":    user.XP,
			"gold":  user.Gold,
		},
		"rewards": fiber.Map{
			"xp":   xpGold[0],
			"gold": xpGold[1],
		},
	})
}

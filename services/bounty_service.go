package services

import (
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
)

// BountyService manages the daily bounty, a randomly drawn quest template
// whose completions pay double rewards for the rest of the day.
type BountyService struct {
	DB *gorm.DB
}

func NewBountyService(db *gorm.DB) *BountyService {
	return &BountyService{DB: db}
}

// bountyDate formats a time as the YYYY-MM-DD key bounty rows are stored under.
func bountyDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// TodayBounty returns today's bounty for the home, or nil when none exists.
func (s *BountyService) TodayBounty(tx *gorm.DB, homeID string, now time.Time) (*models.DailyBounty, error) {
	var bounty models.DailyBounty
	err := tx.Where("home_id = ? AND bounty_date = ?", homeID, bountyDate(now)).First(&bounty).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bounty, nil
}

// GetOrCreateToday returns today's bounty, drawing a random template when none
// exists yet. Yesterday's template stays out of the draw unless it is the
// home's only one. Homes without templates get nil.
func (s *BountyService) GetOrCreateToday(tx *gorm.DB, homeID string, now time.Time) (*models.DailyBounty, error) {
	existing, err := s.TodayBounty(tx, homeID, now)
	if err != nil || existing != nil {
		return existing, err
	}

	excludeID := ""
	var yesterday models.DailyBounty
	err = tx.Where("home_id = ? AND bounty_date = ?", homeID, bountyDate(now.AddDate(0, 0, -1))).First(&yesterday).Error
	if err == nil {
		excludeID = yesterday.QuestTemplateID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	template, err := s.drawTemplate(tx, homeID, excludeID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, nil
	}

	bounty := models.DailyBounty{
		HomeID:          homeID,
		QuestTemplateID: template.ID,
		BountyDate:      bountyDate(now),
	}
	if err := tx.Create(&bounty).Error; err != nil {
		return nil, err
	}
	log.Printf("🎯 Daily bounty for home %s: %s (%dx rewards)", homeID, template.Title, models.BountyMultiplier)
	return &bounty, nil
}

// drawTemplate picks a random template from the home's pool. excludeID is
// dropped from the pool only when other candidates remain.
func (s *BountyService) drawTemplate(tx *gorm.DB, homeID string, excludeID string) (*models.QuestTemplate, error) {
	var templates []models.QuestTemplate
	if err := tx.Where("home_id = ?", homeID).Find(&templates).Error; err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}

	candidates := templates
	if excludeID != "" {
		filtered := make([]models.QuestTemplate, 0, len(templates))
		for _, t := range templates {
			if t.ID != excludeID {
				filtered = append(filtered, t)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	pick := candidates[rand.Intn(len(candidates))]
	return &pick, nil
}

// GetTodayBounty handles GET /api/bounty/today. Creates today's bounty on
// first read so every home member sees the same draw.
func (s *BountyService) GetTodayBounty(c *fiber.Ctx) error {
	homeID := currentHomeID(c)

	var bounty *models.DailyBounty
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		bounty, txErr = s.GetOrCreateToday(tx, homeID, time.Now())
		return txErr
	})
	if err != nil {
		log.Printf("DB Error fetching daily bounty: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch daily bounty"})
	}

	if bounty == nil {
		return c.JSON(fiber.Map{
			"bounty":  nil,
			"message": "No quest templates available to create bounty",
		})
	}

	return c.JSON(s.bountyPayload(bounty))
}

// RefreshBounty handles POST /api/bounty/refresh. Discards today's draw and
// picks again, with no exclusion.
func (s *BountyService) RefreshBounty(c *fiber.Ctx) error {
	homeID := currentHomeID(c)
	now := time.Now()

	var bounty *models.DailyBounty
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("home_id = ? AND bounty_date = ?", homeID, bountyDate(now)).
			Delete(&models.DailyBounty{}).Error; err != nil {
			return err
		}

		template, err := s.drawTemplate(tx, homeID, "")
		if err != nil {
			return err
		}
		if template == nil {
			return apperrors.New(apperrors.CodeInvalidInput).
				WithMessage("No quest templates available to create bounty").
				WithDetails(map[string]interface{}{"home_id": homeID})
		}

		bounty = &models.DailyBounty{
			HomeID:          homeID,
			QuestTemplateID: template.ID,
			BountyDate:      bountyDate(now),
		}
		return tx.Create(bounty).Error
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Printf("🎯 Daily bounty refreshed for home %s", homeID)
	return c.JSON(s.bountyPayload(bounty))
}

// CheckBounty handles GET /api/bounty/check/:templateID. Tells the client
// whether completing the template today pays the bounty multiplier.
func (s *BountyService) CheckBounty(c *fiber.Ctx) error {
	templateID := c.Params("templateID")
	if _, err := uuid.Parse(templateID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template ID"})
	}

	bounty, err := s.TodayBounty(s.DB, currentHomeID(c), time.Now())
	if err != nil {
		log.Printf("DB Error checking daily bounty: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check daily bounty"})
	}

	isBounty := bounty != nil && bounty.QuestTemplateID == templateID
	multiplier := 1
	if isBounty {
		multiplier = models.BountyMultiplier
	}

	return c.JSON(fiber.Map{
		"is_daily_bounty":  isBounty,
		"bonus_multiplier": multiplier,
	})
}

// bountyPayload embeds the full template so clients can render the card
// without a second fetch.
func (s *BountyService) bountyPayload(bounty *models.DailyBounty) fiber.Map {
	var template *models.QuestTemplate
	var loaded models.QuestTemplate
	if err := s.DB.Where("id = ?", bounty.QuestTemplateID).First(&loaded).Error; err == nil {
		template = &loaded
	}

	return fiber.Map{
		"bounty":           bounty,
		"template":         template,
		"bonus_multiplier": models.BountyMultiplier,
	}
}

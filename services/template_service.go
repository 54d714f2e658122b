package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
)

// TemplateService manages quest templates, the reusable definitions recurring
// quests are stamped from.
type TemplateService struct {
	DB         *gorm.DB
	Scribe     *ScribeClient
	Generation *GenerationService
}

func NewTemplateService(db *gorm.DB, scribe *ScribeClient, generation *GenerationService) *TemplateService {
	return &TemplateService{DB: db, Scribe: scribe, Generation: generation}
}

// CreateTemplate handles POST /api/quests/templates?created_by=&skip_ai=.
// The template is created immediately; unless skip_ai is set, the scribe
// fills in display content and the reward economy in the background.
func (s *TemplateService) CreateTemplate(c *fiber.Ctx) error {
	createdBy := c.Query("created_by")
	if _, err := uuid.Parse(createdBy); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or missing created_by query parameter"})
	}
	skipAI := c.QueryBool("skip_ai", false)

	req := struct {
		Title       string `json:"title"`
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
		Tags        string `json:"tags"`
		XPReward    int    `json:"xp_reward"`
		GoldReward  int    `json:"gold_reward"`
		Recurrence  string `json:"recurrence"`
		Schedule    string `json:"schedule"`
		DueInHours  *int   `json:"due_in_hours"`
	}{XPReward: 10, GoldReward: 5, Recurrence: models.RecurrenceOneOff}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("Title is required").
			WithDetails(map[string]interface{}{"field": "title"}))
	}

	homeID := currentHomeID(c)
	var creator models.User
	err := s.DB.Where("id = ? AND home_id = ?", createdBy, homeID).First(&creator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperrors.New(apperrors.CodeUserNotFound).
			WithDetails(map[string]interface{}{"user_id": createdBy}))
	}
	if err != nil {
		return respondError(c, err)
	}

	if _, err := ParseSchedule(req.Recurrence, req.Schedule); err != nil {
		return respondError(c, err)
	}

	template := models.QuestTemplate{
		HomeID:      homeID,
		CreatedBy:   &creator.ID,
		Title:       req.Title,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Tags:        req.Tags,
		XPReward:    req.XPReward,
		GoldReward:  req.GoldReward,
		Recurrence:  req.Recurrence,
		Schedule:    req.Schedule,
		DueInHours:  req.DueInHours,
	}
	if err := s.DB.Create(&template).Error; err != nil {
		log.Printf("DB Error creating quest template: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create quest template"})
	}

	if !skipAI {
		go s.enrichTemplate(template.ID, template.Title)
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

// enrichTemplate runs the scribe for a freshly created template. Fire and
// forget: failures only log, the template keeps its creation values.
func (s *TemplateService) enrichTemplate(templateID, title string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var content *QuestContent
	if !s.Scribe.Enabled() {
		log.Printf("⚠️ GROQ_API_KEY not set, using fallback quest content for %q", title)
		content = FallbackContent(title)
	} else {
		generated, err := s.Scribe.GenerateQuestContent(ctx, title)
		if err != nil {
			log.Printf("❌ Scribe generation failed for %q: %v", title, err)
			return
		}
		content = generated
	}

	if err := s.ApplyScribeContent(templateID, content); err != nil {
		log.Printf("❌ Failed to apply scribe content to template %s: %v", templateID, err)
		return
	}
	log.Printf("📜 Scribe content applied to template %s (%q)", templateID, title)
}

// ApplyScribeContent merges scribe output into a template. Display fields
// fill only when the creator left them blank; the reward economy always
// comes from the scores.
func (s *TemplateService) ApplyScribeContent(templateID string, content *QuestContent) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var template models.QuestTemplate
		if err := tx.Where("id = ?", templateID).First(&template).Error; err != nil {
			return err
		}

		if template.DisplayName == "" {
			template.DisplayName = content.DisplayName
		}
		if template.Description == "" {
			template.Description = content.Description
		}
		if template.Tags == "" {
			template.Tags = content.Tags
		}
		template.XPReward = content.XP()
		template.GoldReward = content.Gold()

		return tx.Save(&template).Error
	})
}

// ListTemplates handles GET /api/quests/templates. Pass include_system=false
// to hide seeded system templates.
func (s *TemplateService) ListTemplates(c *fiber.Ctx) error {
	query := s.DB.Where("home_id = ?", currentHomeID(c))
	if !c.QueryBool("include_system", true) {
		query = query.Where("system = ?", false)
	}

	var templates []models.QuestTemplate
	if err := query.Order("created_at DESC").Find(&templates).Error; err != nil {
		log.Printf("DB Error listing quest templates: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch quest templates"})
	}
	return c.JSON(templates)
}

// GetTemplate handles GET /api/quests/templates/:id.
func (s *TemplateService) GetTemplate(c *fiber.Ctx) error {
	template, ok := s.loadTemplate(c)
	if !ok {
		return nil
	}
	return c.JSON(template)
}

// loadTemplate fetches the home-scoped template from the :id param, writing
// the error response itself when the lookup fails.
func (s *TemplateService) loadTemplate(c *fiber.Ctx) (*models.QuestTemplate, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template ID"})
		return nil, false
	}

	var template models.QuestTemplate
	err := s.DB.Where("id = ? AND home_id = ?", id, currentHomeID(c)).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = respondError(c, apperrors.New(apperrors.CodeQuestTemplateNotFound).
			WithDetails(map[string]interface{}{"template_id": id}))
		return nil, false
	}
	if err != nil {
		_ = respondError(c, err)
		return nil, false
	}
	return &template, true
}

// UpdateTemplate handles PUT /api/quests/templates/:id. Partial update; the
// recurrence/schedule pair is re-validated whenever either changes.
func (s *TemplateService) UpdateTemplate(c *fiber.Ctx) error {
	template, ok := s.loadTemplate(c)
	if !ok {
		return nil
	}

	var req struct {
		Title       *string `json:"title"`
		DisplayName *string `json:"display_name"`
		Description *string `json:"description"`
		Tags        *string `json:"tags"`
		XPReward    *int    `json:"xp_reward"`
		GoldReward  *int    `json:"gold_reward"`
		Recurrence  *string `json:"recurrence"`
		Schedule    *string `json:"schedule"`
		DueInHours  *int    `json:"due_in_hours"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	newRecurrence := template.Recurrence
	if req.Recurrence != nil {
		newRecurrence = *req.Recurrence
	}
	newSchedule := template.Schedule
	if req.Schedule != nil {
		newSchedule = *req.Schedule
	}
	if _, err := ParseSchedule(newRecurrence, newSchedule); err != nil {
		return respondError(c, err)
	}

	if req.Title != nil {
		template.Title = *req.Title
	}
	if req.DisplayName != nil {
		template.DisplayName = *req.DisplayName
	}
	if req.Description != nil {
		template.Description = *req.Description
	}
	if req.Tags != nil {
		template.Tags = *req.Tags
	}
	if req.XPReward != nil {
		template.XPReward = *req.XPReward
	}
	if req.GoldReward != nil {
		template.GoldReward = *req.GoldReward
	}
	template.Recurrence = newRecurrence
	template.Schedule = newSchedule
	if req.DueInHours != nil {
		template.DueInHours = req.DueInHours
	}

	if err := s.DB.Save(template).Error; err != nil {
		log.Printf("DB Error updating quest template: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update quest template"})
	}
	return c.JSON(template)
}

// DeleteTemplate handles DELETE /api/quests/templates/:id.
func (s *TemplateService) DeleteTemplate(c *fiber.Ctx) error {
	template, ok := s.loadTemplate(c)
	if !ok {
		return nil
	}

	if err := s.DB.Delete(template).Error; err != nil {
		log.Printf("DB Error deleting quest template: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete quest template"})
	}
	return c.JSON(fiber.Map{"detail": "Quest template deleted"})
}

// GenerateInstance handles POST /api/quests/templates/:id/generate-instance,
// the manual "generate now" path.
func (s *TemplateService) GenerateInstance(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template ID"})
	}

	quest, err := s.Generation.GenerateInstanceNow(id, currentHomeID(c), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(quest)
}

package services

import (
	"errors"
	"log"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"
)

// SubscriptionService manages personal template subscriptions: which
// recurring chores a user has opted into, on what cadence.
type SubscriptionService struct {
	DB *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{DB: db}
}

type subscriptionWithTemplate struct {
	models.Subscription
	Template *models.QuestTemplate `json:"template,omitempty"`
}

type upcomingSubscription struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	QuestTemplateID string               `json:"quest_template_id"`
	Recurrence      string               `json:"recurrence"`
	Schedule        string               `json:"schedule"`
	DueInHours      *int                 `json:"due_in_hours"`
	LastGeneratedAt *time.Time           `json:"last_generated_at"`
	Active          bool                 `json:"is_active"`
	CreatedAt       time.Time            `json:"created_at"`
	NextSpawnAt     time.Time            `json:"next_spawn_at"`
	Template        models.QuestTemplate `json:"template"`
}

// ListSubscriptions handles GET /api/subscriptions (?active_only=).
func (s *SubscriptionService) ListSubscriptions(c *fiber.Ctx) error {
	query := s.DB.Where("user_id = ?", currentUserID(c))
	if c.QueryBool("active_only", false) {
		query = query.Where("active = ?", true)
	}

	var subscriptions []models.Subscription
	if err := query.Order("created_at DESC").Find(&subscriptions).Error; err != nil {
		log.Printf("DB Error listing subscriptions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subscriptions"})
	}

	result := make([]subscriptionWithTemplate, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		entry := subscriptionWithTemplate{Subscription: subscription}
		var template models.QuestTemplate
		if err := s.DB.Where("id = ?", subscription.QuestTemplateID).First(&template).Error; err == nil {
			entry.Template = &template
		}
		result = append(result, entry)
	}
	return c.JSON(result)
}

// ListUpcoming handles GET /api/subscriptions/upcoming: active recurring
// subscriptions with their computed next spawn time, soonest first. One-offs,
// orphaned subscriptions and unparseable schedules are skipped.
func (s *SubscriptionService) ListUpcoming(c *fiber.Ctx) error {
	var subscriptions []models.Subscription
	if err := s.DB.Where("user_id = ? AND active = ?", currentUserID(c), true).
		Order("created_at DESC").Find(&subscriptions).Error; err != nil {
		log.Printf("DB Error listing subscriptions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch subscriptions"})
	}

	now := time.Now()
	result := []upcomingSubscription{}
	for _, subscription := range subscriptions {
		if subscription.Recurrence == models.RecurrenceOneOff {
			continue
		}

		var template models.QuestTemplate
		if err := s.DB.Where("id = ?", subscription.QuestTemplateID).First(&template).Error; err != nil {
			continue
		}

		sched, err := ParseSchedule(subscription.Recurrence, subscription.Schedule)
		if err != nil || sched == nil {
			continue
		}

		result = append(result, upcomingSubscription{
			ID:              subscription.ID,
			UserID:          subscription.UserID,
			QuestTemplateID: subscription.QuestTemplateID,
			Recurrence:      subscription.Recurrence,
			Schedule:        subscription.Schedule,
			DueInHours:      subscription.DueInHours,
			LastGeneratedAt: subscription.LastGeneratedAt,
			Active:          subscription.Active,
			CreatedAt:       subscription.CreatedAt,
			NextSpawnAt:     NextGenerationTime(sched, subscription.LastGeneratedAt, now),
			Template:        template,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].NextSpawnAt.Before(result[j].NextSpawnAt)
	})
	return c.JSON(result)
}

// GetSubscription handles GET /api/subscriptions/:id. Owner only.
func (s *SubscriptionService) GetSubscription(c *fiber.Ctx) error {
	subscription, ok := s.loadOwned(c, "Not authorized to view this subscription")
	if !ok {
		return nil
	}
	return c.JSON(subscription)
}

// loadOwned fetches the subscription from the :id param and enforces
// ownership, writing the error response itself when either fails.
func (s *SubscriptionService) loadOwned(c *fiber.Ctx, forbiddenMsg string) (*models.Subscription, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subscription ID"})
		return nil, false
	}

	var subscription models.Subscription
	err := s.DB.Where("id = ?", id).First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = respondError(c, apperrors.New(apperrors.CodeSubscriptionNotFound).
			WithDetails(map[string]interface{}{"subscription_id": id}))
		return nil, false
	}
	if err != nil {
		_ = respondError(c, err)
		return nil, false
	}
	if subscription.UserID != currentUserID(c) {
		_ = respondError(c, apperrors.New(apperrors.CodeForbidden).
			WithMessage(forbiddenMsg).
			WithDetails(map[string]interface{}{"subscription_id": id}))
		return nil, false
	}
	return &subscription, true
}

// CreateSubscription handles POST /api/subscriptions.
func (s *SubscriptionService) CreateSubscription(c *fiber.Ctx) error {
	req := struct {
		QuestTemplateID string `json:"quest_template_id"`
		Recurrence      string `json:"recurrence"`
		Schedule        string `json:"schedule"`
		DueInHours      *int   `json:"due_in_hours"`
	}{Recurrence: models.RecurrenceOneOff}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	userID := currentUserID(c)
	var template models.QuestTemplate
	err := s.DB.Where("id = ? AND home_id = ?", req.QuestTemplateID, currentHomeID(c)).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, apperrors.New(apperrors.CodeQuestTemplateNotFound).
			WithDetails(map[string]interface{}{"template_id": req.QuestTemplateID}))
	}
	if err != nil {
		return respondError(c, err)
	}

	var count int64
	if err := s.DB.Model(&models.Subscription{}).
		Where("user_id = ? AND quest_template_id = ?", userID, req.QuestTemplateID).
		Count(&count).Error; err != nil {
		return respondError(c, err)
	}
	if count > 0 {
		return respondError(c, apperrors.New(apperrors.CodeInvalidInput).
			WithMessage("You are already subscribed to this template. Update the existing subscription instead.").
			WithDetails(map[string]interface{}{"template_id": req.QuestTemplateID, "user_id": userID}))
	}

	if _, err := ParseSchedule(req.Recurrence, req.Schedule); err != nil {
		return respondError(c, err)
	}

	subscription := models.Subscription{
		UserID:          userID,
		QuestTemplateID: req.QuestTemplateID,
		Recurrence:      req.Recurrence,
		Schedule:        req.Schedule,
		DueInHours:      req.DueInHours,
		Active:          true,
	}
	if err := s.DB.Create(&subscription).Error; err != nil {
		log.Printf("DB Error creating subscription: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create subscription"})
	}
	return c.Status(fiber.StatusCreated).JSON(subscription)
}

// UpdateSubscription handles PATCH /api/subscriptions/:id: reschedule,
// pause or resume.
func (s *SubscriptionService) UpdateSubscription(c *fiber.Ctx) error {
	subscription, ok := s.loadOwned(c, "Not authorized to update this subscription")
	if !ok {
		return nil
	}

	var req struct {
		Recurrence *string `json:"recurrence"`
		Schedule   *string `json:"schedule"`
		DueInHours *int    `json:"due_in_hours"`
		Active     *bool   `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	newRecurrence := subscription.Recurrence
	if req.Recurrence != nil {
		newRecurrence = *req.Recurrence
	}
	newSchedule := subscription.Schedule
	if req.Schedule != nil {
		newSchedule = *req.Schedule
	}
	if _, err := ParseSchedule(newRecurrence, newSchedule); err != nil {
		return respondError(c, err)
	}

	subscription.Recurrence = newRecurrence
	subscription.Schedule = newSchedule
	if req.DueInHours != nil {
		subscription.DueInHours = req.DueInHours
	}
	if req.Active != nil {
		subscription.Active = *req.Active
	}

	if err := s.DB.Save(subscription).Error; err != nil {
		log.Printf("DB Error updating subscription: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update subscription"})
	}
	return c.JSON(subscription)
}

// DeleteSubscription handles DELETE /api/subscriptions/:id.
func (s *SubscriptionService) DeleteSubscription(c *fiber.Ctx) error {
	subscription, ok := s.loadOwned(c, "Not authorized to delete this subscription")
	if !ok {
		return nil
	}

	if err := s.DB.Delete(subscription).Error; err != nil {
		log.Printf("DB Error deleting subscription: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete subscription"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

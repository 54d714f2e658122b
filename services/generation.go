package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"majordomo-backend/apperrors"
	"majordomo-backend/models"

	"gorm.io/gorm"
)

// GenerationService expands recurring templates into quest instances. It is
// read-triggered: the quest listing calls it before returning, so instances
// appear on the first request at or after their scheduled time. There is no
// background job.
type GenerationService struct {
	DB *gorm.DB
}

func NewGenerationService(db *gorm.DB) *GenerationService {
	return &GenerationService{DB: db}
}

// NewQuestFromTemplate snapshots a template into a fresh instance for one
// user. The copy is deliberate: template edits after generation must never
// rewrite quests already on the board.
func NewQuestFromTemplate(template *models.QuestTemplate, userID string, now time.Time) *models.Quest {
	templateID := template.ID
	quest := &models.Quest{
		HomeID:          template.HomeID,
		QuestTemplateID: &templateID,
		AssignedTo:      userID,
		Title:           template.Title,
		DisplayName:     template.DisplayName,
		Description:     template.Description,
		Tags:            template.Tags,
		XPReward:        template.XPReward,
		GoldReward:      template.GoldReward,
		QuestType:       models.QuestTypeStandard,
	}
	if template.DueInHours != nil && *template.DueInHours > 0 {
		due := now.Add(time.Duration(*template.DueInHours) * time.Hour)
		quest.DueDate = &due
	}
	return quest
}

// GenerateDueQuests checks every recurring template in the home and creates
// one instance per household member for each that is due. Rules:
//
//   - A template with an incomplete instance still on the board is skipped
//     and its last_generated_at is NOT advanced, so it fires as soon as the
//     old instance clears.
//   - A due template generates exactly one cycle no matter how long it went
//     unchecked; missed cycles are never backfilled.
//   - A malformed schedule logs and skips its template, never aborting the
//     pass for the rest of the home.
//
// The whole pass commits in one transaction. Returns how many instances were
// created.
func (s *GenerationService) GenerateDueQuests(homeID string) (int, error) {
	created := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// Templates generated within the hour can't be due again; skip the
		// schedule math for them.
		var templates []models.QuestTemplate
		err := tx.Where("home_id = ? AND recurrence <> ?", homeID, models.RecurrenceOneOff).
			Where("last_generated_at IS NULL OR last_generated_at < ?", now.Add(-time.Hour)).
			Find(&templates).Error
		if err != nil {
			return err
		}
		if len(templates) == 0 {
			return nil
		}

		var members []models.User
		for i := range templates {
			template := &templates[i]
			if template.Schedule == "" {
				continue
			}

			sched, err := ParseSchedule(template.Recurrence, template.Schedule)
			if err != nil {
				log.Printf("⚠️ Skipping template %s (%s): %v", template.ID, template.Title, err)
				continue
			}

			next := NextGenerationTime(sched, template.LastGeneratedAt, now)
			if now.Before(next) {
				continue
			}

			var incomplete int64
			err = tx.Model(&models.Quest{}).
				Where("quest_template_id = ? AND completed = ?", template.ID, false).
				Count(&incomplete).Error
			if err != nil {
				return err
			}
			if incomplete > 0 {
				continue
			}

			if members == nil {
				if err := tx.Where("home_id = ?", homeID).Find(&members).Error; err != nil {
					return err
				}
			}
			for _, member := range members {
				if err := tx.Create(NewQuestFromTemplate(template, member.ID, now)).Error; err != nil {
					return err
				}
				created++
			}

			if err := tx.Model(template).Update("last_generated_at", now).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		fmt.Printf("🔁 Generated %d recurring quest(s) for home %s\n", created, homeID)
	}
	return created, nil
}

// GenerateInstanceNow spawns one instance for the requesting user alone,
// ignoring the schedule and the incomplete-instance rule. Advances
// last_generated_at so the scheduled pass doesn't immediately double up.
func (s *GenerationService) GenerateInstanceNow(templateID, homeID, userID string) (*models.Quest, error) {
	var quest *models.Quest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var template models.QuestTemplate
		err := tx.Where("id = ? AND home_id = ?", templateID, homeID).First(&template).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeQuestTemplateNotFound).WithDetails(map[string]interface{}{
					"template_id": templateID,
				})
			}
			return err
		}

		now := time.Now().UTC()
		quest = NewQuestFromTemplate(&template, userID, now)
		if err := tx.Create(quest).Error; err != nil {
			return err
		}
		return tx.Model(&template).Update("last_generated_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return quest, nil
}

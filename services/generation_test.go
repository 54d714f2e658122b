package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"majordomo-backend/models"
	"majordomo-backend/testutil"
)

func seedTemplate(t *testing.T, db *gorm.DB, homeID string, mutate func(*models.QuestTemplate)) *models.QuestTemplate {
	t.Helper()
	tmpl := &models.QuestTemplate{
		HomeID:     homeID,
		Title:      "Clean Kitchen",
		XPReward:   25,
		GoldReward: 15,
		Recurrence: models.RecurrenceDaily,
		Schedule:   `{"type":"daily","time":"00:00"}`,
	}
	if mutate != nil {
		mutate(tmpl)
	}
	require.NoError(t, db.Create(tmpl).Error)
	return tmpl
}

func TestGenerationService_FansOutToAllMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	for _, name := range []string{"bob", "charlie"} {
		require.NoError(t, db.Create(&models.User{HomeID: home.ID, Username: name, PasswordHash: "x", Level: 1}).Error)
	}
	tmpl := seedTemplate(t, db, home.ID, nil)

	svc := NewGenerationService(db)
	created, err := svc.GenerateDueQuests(home.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	var quests []models.Quest
	require.NoError(t, db.Where("quest_template_id = ?", tmpl.ID).Find(&quests).Error)
	require.Len(t, quests, 3)

	assignees := map[string]bool{}
	for _, q := range quests {
		assignees[q.AssignedTo] = true
		assert.Equal(t, "Clean Kitchen", q.Title)
		assert.Equal(t, 25, q.XPReward)
		assert.Equal(t, 15, q.GoldReward)
		assert.Equal(t, models.QuestTypeStandard, q.QuestType)
		assert.False(t, q.Completed)
	}
	assert.Len(t, assignees, 3, "one instance per member, no duplicates")

	var fresh models.QuestTemplate
	require.NoError(t, db.First(&fresh, "id = ?", tmpl.ID).Error)
	assert.NotNil(t, fresh.LastGeneratedAt)
}

func TestGenerationService_SkipsWhileIncompleteInstanceExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	tmpl := seedTemplate(t, db, home.ID, func(tm *models.QuestTemplate) {
		last := time.Now().UTC().Add(-48 * time.Hour)
		tm.LastGeneratedAt = &last
	})
	seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) {
		q.QuestTemplateID = &tmpl.ID
	})

	svc := NewGenerationService(db)
	created, err := svc.GenerateDueQuests(home.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	var count int64
	require.NoError(t, db.Model(&models.Quest{}).Where("quest_template_id = ?", tmpl.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "still just the stale instance")

	// The clock did not advance: once the stale instance clears, the next
	// pass fires immediately.
	var fresh models.QuestTemplate
	require.NoError(t, db.First(&fresh, "id = ?", tmpl.ID).Error)
	require.NotNil(t, fresh.LastGeneratedAt)
	assert.Equal(t, tmpl.LastGeneratedAt.Unix(), fresh.LastGeneratedAt.Unix())
}

func TestGenerationService_SingleCycleNoBackfill(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	tmpl := seedTemplate(t, db, home.ID, func(tm *models.QuestTemplate) {
		// Ten days of downtime still yields exactly one new instance.
		last := time.Now().UTC().Add(-10 * 24 * time.Hour)
		tm.LastGeneratedAt = &last
	})

	svc := NewGenerationService(db)
	created, err := svc.GenerateDueQuests(home.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var count int64
	require.NoError(t, db.Model(&models.Quest{}).Where("quest_template_id = ?", tmpl.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGenerationService_SetsDueDateFromTemplate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	hours := 48
	seedTemplate(t, db, home.ID, func(tm *models.QuestTemplate) { tm.DueInHours = &hours })

	svc := NewGenerationService(db)
	before := time.Now().UTC()
	_, err := svc.GenerateDueQuests(home.ID)
	require.NoError(t, err)

	var quest models.Quest
	require.NoError(t, db.First(&quest).Error)
	require.NotNil(t, quest.DueDate)
	assert.WithinDuration(t, before.Add(48*time.Hour), *quest.DueDate, 5*time.Second)
}

func TestGenerationService_RecentlyGeneratedTemplateNotReprocessed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	seedTemplate(t, db, home.ID, func(tm *models.QuestTemplate) {
		last := time.Now().UTC().Add(-10 * time.Minute)
		tm.LastGeneratedAt = &last
	})

	svc := NewGenerationService(db)
	created, err := svc.GenerateDueQuests(home.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestGenerationService_MalformedScheduleSkippedNotFatal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	seedTemplate(t, db, home.ID, func(tm *models.QuestTemplate) {
		tm.Title = "Broken"
		tm.Schedule = `{broken json`
	})
	good := seedTemplate(t, db, home.ID, func(tm *models.QuestTemplate) { tm.Title = "Good" })

	svc := NewGenerationService(db)
	created, err := svc.GenerateDueQuests(home.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var quest models.Quest
	require.NoError(t, db.First(&quest, "quest_template_id = ?", good.ID).Error)
	assert.Equal(t, "Good", quest.Title)
}

func TestGenerationService_OneOffTemplatesNeverGenerate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	seedTemplate(t, db, home.ID, func(tm *models.QuestTemplate) {
		tm.Recurrence = models.RecurrenceOneOff
		tm.Schedule = ""
	})

	svc := NewGenerationService(db)
	created, err := svc.GenerateDueQuests(home.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestGenerationService_GenerateInstanceNow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	require.NoError(t, db.Create(&models.User{HomeID: home.ID, Username: "bob", PasswordHash: "x", Level: 1}).Error)
	hours := 24
	tmpl := seedTemplate(t, db, home.ID, func(tm *models.QuestTemplate) { tm.DueInHours = &hours })

	svc := NewGenerationService(db)
	quest, err := svc.GenerateInstanceNow(tmpl.ID, home.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, quest.AssignedTo)
	require.NotNil(t, quest.DueDate)

	// Only the requesting user gets an instance on the manual path.
	var count int64
	require.NoError(t, db.Model(&models.Quest{}).Where("quest_template_id = ?", tmpl.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var fresh models.QuestTemplate
	require.NoError(t, db.First(&fresh, "id = ?", tmpl.ID).Error)
	assert.NotNil(t, fresh.LastGeneratedAt)
}

func TestGenerationService_GenerateInstanceNow_BypassesIncompleteRule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	tmpl := seedTemplate(t, db, home.ID, nil)
	seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) { q.QuestTemplateID = &tmpl.ID })

	svc := NewGenerationService(db)
	_, err := svc.GenerateInstanceNow(tmpl.ID, home.ID, user.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Quest{}).Where("quest_template_id = ?", tmpl.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestGenerationService_GenerateInstanceNow_WrongHome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	tmpl := seedTemplate(t, db, home.ID, nil)

	svc := NewGenerationService(db)
	_, err := svc.GenerateInstanceNow(tmpl.ID, "some-other-home", user.ID)
	require.Error(t, err)
}

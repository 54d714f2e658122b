package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"majordomo-backend/models"
	"majordomo-backend/testutil"
)

func TestBountyService_GetOrCreateToday_IsStableForTheDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	seedTemplate(t, db, home.ID, nil)
	seedTemplate(t, db, home.ID, func(tmpl *models.QuestTemplate) { tmpl.Title = "Do Laundry" })
	svc := NewBountyService(db)
	now := time.Now().UTC()

	first, err := svc.GetOrCreateToday(db, home.ID, now)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, bountyDate(now), first.BountyDate)

	second, err := svc.GetOrCreateToday(db, home.ID, now.Add(3*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID, "same calendar day must reuse the bounty")
}

func TestBountyService_GetOrCreateToday_AvoidsYesterdaysTemplate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	a := seedTemplate(t, db, home.ID, nil)
	b := seedTemplate(t, db, home.ID, func(tmpl *models.QuestTemplate) { tmpl.Title = "Do Laundry" })
	svc := NewBountyService(db)
	now := time.Now().UTC()

	yesterday := models.DailyBounty{
		HomeID:          home.ID,
		QuestTemplateID: a.ID,
		BountyDate:      bountyDate(now.Add(-24 * time.Hour)),
	}
	require.NoError(t, db.Create(&yesterday).Error)

	bounty, err := svc.GetOrCreateToday(db, home.ID, now)
	require.NoError(t, err)
	require.NotNil(t, bounty)
	assert.Equal(t, b.ID, bounty.QuestTemplateID, "yesterday's template must not repeat when another exists")
}

func TestBountyService_GetOrCreateToday_SingleTemplateMayRepeat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	only := seedTemplate(t, db, home.ID, nil)
	svc := NewBountyService(db)
	now := time.Now().UTC()

	yesterday := models.DailyBounty{
		HomeID:          home.ID,
		QuestTemplateID: only.ID,
		BountyDate:      bountyDate(now.Add(-24 * time.Hour)),
	}
	require.NoError(t, db.Create(&yesterday).Error)

	bounty, err := svc.GetOrCreateToday(db, home.ID, now)
	require.NoError(t, err)
	require.NotNil(t, bounty, "a single-template home still gets a bounty")
	assert.Equal(t, only.ID, bounty.QuestTemplateID)
}

func TestBountyService_GetOrCreateToday_NoTemplates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, _ := seedHomeUser(t, db)
	svc := NewBountyService(db)

	bounty, err := svc.GetOrCreateToday(db, home.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, bounty)
}

func TestBountyService_GetTodayBounty_Endpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	seedTemplate(t, db, home.ID, nil)
	svc := NewBountyService(db)

	app := testApp(user, func(app *fiber.App) {
		app.Get("/api/bounty/today", svc.GetTodayBounty)
	})

	status, body := performJSON(t, app, http.MethodGet, "/api/bounty/today", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, body["bounty"])
	assert.EqualValues(t, models.BountyMultiplier, body["bonus_multiplier"])
	assert.NotNil(t, body["template"])
}

func TestBountyService_GetTodayBounty_EmptyHome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, user := seedHomeUser(t, db)
	svc := NewBountyService(db)

	app := testApp(user, func(app *fiber.App) {
		app.Get("/api/bounty/today", svc.GetTodayBounty)
	})

	status, body := performJSON(t, app, http.MethodGet, "/api/bounty/today", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["bounty"])
	assert.Equal(t, "No quest templates available to create bounty", body["message"])
}

func TestBountyService_RefreshBounty_RedrawsToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	seedTemplate(t, db, home.ID, nil)
	svc := NewBountyService(db)
	now := time.Now().UTC()

	existing, err := svc.GetOrCreateToday(db, home.ID, now)
	require.NoError(t, err)
	require.NotNil(t, existing)

	app := testApp(user, func(app *fiber.App) {
		app.Post("/api/bounty/refresh", svc.RefreshBounty)
	})

	status, body := performJSON(t, app, http.MethodPost, "/api/bounty/refresh", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, body["bounty"])

	var count int64
	require.NoError(t, db.Model(&models.DailyBounty{}).
		Where("home_id = ? AND bounty_date = ?", home.ID, bountyDate(now)).
		Count(&count).Error)
	assert.EqualValues(t, 1, count, "refresh must leave exactly one bounty for today")
}

func TestBountyService_RefreshBounty_NoTemplates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, user := seedHomeUser(t, db)
	svc := NewBountyService(db)

	app := testApp(user, func(app *fiber.App) {
		app.Post("/api/bounty/refresh", svc.RefreshBounty)
	})

	status, body := performJSON(t, app, http.MethodPost, "/api/bounty/refresh", nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, body))
}

func TestBountyService_CheckBounty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	bountyTmpl := seedTemplate(t, db, home.ID, nil)
	otherTmpl := seedTemplate(t, db, home.ID, func(tmpl *models.QuestTemplate) { tmpl.Title = "Do Laundry" })
	svc := NewBountyService(db)

	require.NoError(t, db.Create(&models.DailyBounty{
		HomeID:          home.ID,
		QuestTemplateID: bountyTmpl.ID,
		BountyDate:      bountyDate(time.Now().UTC()),
	}).Error)

	app := testApp(user, func(app *fiber.App) {
		app.Get("/api/bounty/check/:templateID", svc.CheckBounty)
	})

	status, body := performJSON(t, app, http.MethodGet, "/api/bounty/check/"+bountyTmpl.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_daily_bounty"])
	assert.EqualValues(t, models.BountyMultiplier, body["bonus_multiplier"])

	status, body = performJSON(t, app, http.MethodGet, "/api/bounty/check/"+otherTmpl.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["is_daily_bounty"])
	assert.EqualValues(t, 1, body["bonus_multiplier"])
}

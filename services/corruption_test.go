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

func seedQuest(t *testing.T, db *gorm.DB, homeID, userID string, mutate func(*models.Quest)) *models.Quest {
	t.Helper()
	q := &models.Quest{
		HomeID:     homeID,
		AssignedTo: userID,
		Title:      "Take out Trash",
		XPReward:   20,
		GoldReward: 10,
		QuestType:  models.QuestTypeStandard,
	}
	if mutate != nil {
		mutate(q)
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

func TestCorruptionService_SweepHousehold(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	svc := NewCorruptionService(db)
	now := time.Now().UTC()

	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	overdue := seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) { q.DueDate = &past })
	seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) { q.DueDate = &future })
	seedQuest(t, db, home.ID, user.ID, nil) // no due date, never corrupts
	seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) {
		q.DueDate = &past
		q.Completed = true
	})

	corrupted, err := svc.SweepHousehold(db, home.ID, now)
	require.NoError(t, err)
	require.Len(t, corrupted, 1)
	assert.Equal(t, overdue.ID, corrupted[0].ID)

	var fresh models.Quest
	require.NoError(t, db.First(&fresh, "id = ?", overdue.ID).Error)
	assert.Equal(t, models.QuestTypeCorrupted, fresh.QuestType)
	require.NotNil(t, fresh.CorruptedAt)
}

func TestCorruptionService_SweepIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	svc := NewCorruptionService(db)
	now := time.Now().UTC()

	past := now.Add(-2 * time.Hour)
	q := seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) { q.DueDate = &past })

	first, err := svc.SweepHousehold(db, home.ID, now)
	require.NoError(t, err)
	require.Len(t, first, 1)

	var afterFirst models.Quest
	require.NoError(t, db.First(&afterFirst, "id = ?", q.ID).Error)
	firstStamp := *afterFirst.CorruptedAt

	second, err := svc.SweepHousehold(db, home.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, second)

	var afterSecond models.Quest
	require.NoError(t, db.First(&afterSecond, "id = ?", q.ID).Error)
	assert.Equal(t, firstStamp.Unix(), afterSecond.CorruptedAt.Unix(), "corrupted_at must not be re-stamped")
}

func TestCorruptionService_SweepScopedToHome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	other := &models.Home{Name: "Other Home", Slug: "other-home", InviteCode: "other-inv"}
	require.NoError(t, db.Create(other).Error)
	otherUser := &models.User{HomeID: other.ID, Username: "zed", PasswordHash: "x", Level: 1}
	require.NoError(t, db.Create(otherUser).Error)

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) { q.DueDate = &past })
	neighbor := seedQuest(t, db, other.ID, otherUser.ID, func(q *models.Quest) { q.DueDate = &past })

	svc := NewCorruptionService(db)
	corrupted, err := svc.SweepHousehold(db, home.ID, now)
	require.NoError(t, err)
	assert.Len(t, corrupted, 1)

	var fresh models.Quest
	require.NoError(t, db.First(&fresh, "id = ?", neighbor.ID).Error)
	assert.Equal(t, models.QuestTypeStandard, fresh.QuestType, "other homes stay untouched")
}

func TestCorruptionService_Debuff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	svc := NewCorruptionService(db)
	now := time.Now().UTC()

	mkCorrupted := func(n int) {
		for i := 0; i < n; i++ {
			seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) {
				q.QuestType = models.QuestTypeCorrupted
				stamp := now.Add(-time.Hour)
				q.CorruptedAt = &stamp
			})
		}
	}

	debuff, err := svc.Debuff(db, user, now)
	require.NoError(t, err)
	assert.Equal(t, 1.0, debuff)

	mkCorrupted(1)
	debuff, err = svc.Debuff(db, user, now)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, debuff, 1e-9)

	mkCorrupted(2) // three total
	debuff, err = svc.Debuff(db, user, now)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, debuff, 1e-9)

	mkCorrupted(9) // twelve total, capped at ten's worth
	debuff, err = svc.Debuff(db, user, now)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, debuff, 1e-9)
}

func TestCorruptionService_Debuff_ShieldOverrides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	svc := NewCorruptionService(db)
	now := time.Now().UTC()

	for i := 0; i < 4; i++ {
		seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) { q.QuestType = models.QuestTypeCorrupted })
	}

	expiry := now.Add(3 * time.Hour)
	user.ActiveShieldExpiry = &expiry
	debuff, err := svc.Debuff(db, user, now)
	require.NoError(t, err)
	assert.Equal(t, 1.0, debuff)

	// An expired shield stops helping.
	gone := now.Add(-time.Minute)
	user.ActiveShieldExpiry = &gone
	debuff, err = svc.Debuff(db, user, now)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, debuff, 1e-9)
}

func TestCorruptionService_Debuff_IgnoresCompletedCorrupted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	home, user := seedHomeUser(t, db)
	svc := NewCorruptionService(db)
	now := time.Now().UTC()

	seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) {
		q.QuestType = models.QuestTypeCorrupted
		q.Completed = true
	})
	seedQuest(t, db, home.ID, user.ID, func(q *models.Quest) { q.QuestType = models.QuestTypeCorrupted })

	debuff, err := svc.Debuff(db, user, now)
	require.NoError(t, err)
	assert.InDelta(t, 0.95, debuff, 1e-9, "completed corrupted quests stop weighing on the house")
}

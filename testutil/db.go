package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"majordomo-backend/models"
)

// SetupTestDB opens an in-memory SQLite database with the full schema
// migrated. Each call gets its own database, so tests stay independent.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "SetupTestDB: open sqlite")

	require.NoError(t, db.AutoMigrate(
		&models.Home{},
		&models.User{},
		&models.QuestTemplate{},
		&models.Quest{},
		&models.DailyBounty{},
		&models.Reward{},
		&models.UserRewardClaim{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Subscription{},
	), "SetupTestDB: automigrate")

	return db
}

package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"majordomo-backend/models"
	"majordomo-backend/utils"
)

// BackupWorker periodically exports every table to JSON, zips the export and
// uploads it to R2. Only started when object storage is configured.
type BackupWorker struct {
	db       *gorm.DB
	interval time.Duration
}

func NewBackupWorker(db *gorm.DB) *BackupWorker {
	interval := 24 * time.Hour
	if raw := os.Getenv("BACKUP_INTERVAL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			interval = time.Duration(hours) * time.Hour
		}
	}
	return &BackupWorker{db: db, interval: interval}
}

func (w *BackupWorker) Start(ctx context.Context) {
	log.Printf("🔁 Starting backup worker (every %s)…", w.interval)

	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("❌ Failed to create backup scheduler: %v", err)
		return
	}

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			if err := w.runBackup(ctx); err != nil {
				log.Printf("❌ Backup failed: %v", err)
			}
		}),
	)
	if err != nil {
		log.Printf("❌ Failed to schedule backup job: %v", err)
		return
	}

	sched.Start()

	// One immediate pass so a fresh deployment has a backup right away.
	go func() {
		if err := w.runBackup(ctx); err != nil {
			log.Printf("⚠️ Initial backup failed: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("⚠️ Backup scheduler shutdown: %v", err)
		}
		log.Println("Backup worker stopped.")
	}()
}

func (w *BackupWorker) runBackup(ctx context.Context) error {
	files, err := w.exportTables()
	if err != nil {
		return err
	}

	archive, err := utils.ZipFiles(files)
	if err != nil {
		return fmt.Errorf("failed to build backup archive: %w", err)
	}

	key := fmt.Sprintf("backups/majordomo-%s.zip", time.Now().UTC().Format("20060102-150405"))
	url, err := utils.UploadBytesToR2(ctx, key, "application/zip", archive)
	if err != nil {
		return err
	}

	log.Printf("✅ Backup uploaded: %s (%d tables, %d bytes)", url, len(files), len(archive))
	return nil
}

// exportTables dumps every table, soft-deleted rows included, as indented
// JSON keyed by table name.
func (w *BackupWorker) exportTables() (map[string][]byte, error) {
	tables := []struct {
		name string
		rows interface{}
	}{
		{"homes", &[]models.Home{}},
		{"users", &[]models.User{}},
		{"quest_templates", &[]models.QuestTemplate{}},
		{"quests", &[]models.Quest{}},
		{"subscriptions", &[]models.Subscription{}},
		{"rewards", &[]models.Reward{}},
		{"reward_claims", &[]models.UserRewardClaim{}},
		{"achievements", &[]models.Achievement{}},
		{"user_achievements", &[]models.UserAchievement{}},
		{"daily_bounties", &[]models.DailyBounty{}},
	}

	files := make(map[string][]byte, len(tables))
	for _, t := range tables {
		if err := w.db.Unscoped().Find(t.rows).Error; err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", t.name, err)
		}
		data, err := json.MarshalIndent(t.rows, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", t.name, err)
		}
		files[t.name+".json"] = data
	}
	return files, nil
}

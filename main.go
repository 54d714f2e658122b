package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"majordomo-backend/handlers"
	"majordomo-backend/models"
	"majordomo-backend/services"
	"majordomo-backend/utils"
	"majordomo-backend/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	seed := flag.Bool("seed", false, "seed the demo home before serving")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName:   "Majordomo API",
		BodyLimit: 10 * 1024 * 1024, // avatars cap at 5MB, leave headroom
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}
	originList := strings.Split(allowedOrigins, ",")
	for i, origin := range originList {
		originList[i] = strings.TrimSpace(origin)
	}
	allowedOrigins = strings.Join(originList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Home{},
		&models.User{},
		&models.QuestTemplate{},
		&models.Quest{},
		&models.Subscription{},
		&models.Reward{},
		&models.UserRewardClaim{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.DailyBounty{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	r2Enabled := utils.R2Configured()
	if r2Enabled {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
	} else {
		log.Println("⚠️  R2 not configured, avatars stored locally and backups disabled")
	}

	progressionService := services.NewProgressionService(db)
	corruptionService := services.NewCorruptionService(db)
	generationService := services.NewGenerationService(db)
	bountyService := services.NewBountyService(db)
	achievementService := services.NewAchievementService(db)
	shopService := services.NewShopService(db, progressionService)
	scribeClient := services.NewScribeClient()
	templateService := services.NewTemplateService(db, scribeClient, generationService)
	questService := services.NewQuestService(db, generationService, corruptionService,
		progressionService, bountyService, achievementService)
	subscriptionService := services.NewSubscriptionService(db)
	userService := services.NewUserService(db, progressionService)
	homeService := services.NewHomeService(db)
	authService := services.NewAuthService(db)

	if err := achievementService.EnsureSystemAchievements(); err != nil {
		log.Fatal("failed to seed system achievements:", err)
	}

	if *seed {
		if err := seedDemoData(db); err != nil {
			log.Fatal("failed to seed demo data:", err)
		}
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Majordomo API is running"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupHomeRoutes(app, homeService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupQuestRoutes(app, questService, templateService)
	handlers.SetupBountyRoutes(app, bountyService)
	handlers.SetupRewardRoutes(app, shopService)
	handlers.SetupAchievementRoutes(app, achievementService)
	handlers.SetupSubscriptionRoutes(app, subscriptionService)

	app.Static("/uploads", "./uploads")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r2Enabled {
		workers.NewBackupWorker(db).Start(ctx)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("⚠️ Shutdown error: %v", err)
	}
}

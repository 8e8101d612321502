package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bounty-board-system/handlers"
	"bounty-board-system/middleware"
	"bounty-board-system/models"
	"bounty-board-system/services"
	"bounty-board-system/workers"

	firebase "firebase.google.com/go/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bounty-board-system/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // avatars only, 10MB is plenty
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:8081")
		allowedOriginsEnv = "http://localhost:8081"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserFollow{},
		&models.AccountCounter{},
		&models.Bounty{},
		&models.BountyTag{},
		&models.BountyHunter{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.Review{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	counter := models.AccountCounter{ID: 1, NextAccount: 1}
	if err := db.Where("id = ?", 1).FirstOrCreate(&counter).Error; err != nil {
		log.Fatal("failed to seed account counter:", err)
	}

	// Firebase Admin picks up GOOGLE_APPLICATION_CREDENTIALS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	firebaseApp, err := firebase.NewApp(ctx, nil)
	if err != nil {
		log.Fatal("failed to initialize Firebase app:", err)
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatal("failed to initialize Firebase auth client:", err)
	}

	bountyService := services.NewBountyService(db)
	settlementService := services.NewSettlementService(db)
	conversationService := services.NewConversationService(db)
	userService := services.NewUserService(db)
	reviewService := services.NewReviewService(db)
	notificationService := services.NewNotificationService(db)

	pushClient := workers.NewPushClient(db)
	go workers.PollNotifications(ctx, pushClient, 15*time.Second)

	sweeper, err := services.StartOrphanSweep(db, 10*time.Minute)
	if err != nil {
		log.Fatal("failed to start orphan sweep scheduler:", err)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	secured := app.Group("/", middleware.FirebaseAuthMiddleware(authClient))
	handlers.SetupBountyRoutes(secured, bountyService, settlementService, conversationService)
	handlers.SetupConversationRoutes(secured, conversationService)
	handlers.SetupUserRoutes(secured, userService, reviewService, notificationService)

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
	log.Println("✅ Notification push worker running (every 15s)")
	log.Println("✅ Orphan sweep running (every 10m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := sweeper.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

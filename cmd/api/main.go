package main

import (
	"log"
	"time"

	config "github.com/classlearning/study_journal/configs"
	"github.com/classlearning/study_journal/database"
	"github.com/classlearning/study_journal/handlers"
	"github.com/classlearning/study_journal/jobs"
	"github.com/classlearning/study_journal/notifications"
	"github.com/classlearning/study_journal/routes"
	"github.com/classlearning/study_journal/services"
	ws "github.com/classlearning/study_journal/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	database.Migrate(db)

	email := notifications.NewEmailService()
	hub := ws.NewHub()
	go hub.Run()

	quizStore := services.NewQuizStore(db)
	generator := services.NewQuizGenerator()
	sessions := services.NewSessionManager()
	certificates := services.NewCertificateService(db)

	authHandler := &handlers.AuthHandler{DB: db, Email: email}
	journalHandler := &handlers.JournalHandler{DB: db, Hub: hub}
	feedHandler := &handlers.FeedHandler{Hub: hub}
	quizHandler := &handlers.QuizHandler{
		DB:           db,
		Store:        quizStore,
		Generator:    generator,
		Sessions:     sessions,
		Certificates: certificates,
	}
	certificateHandler := &handlers.CertificateHandler{Certificates: certificates}

	reminderJob := &jobs.ReminderJob{DB: db, Email: email}
	c := cron.New()
	c.AddFunc("0 17 * * *", reminderJob.SendJournalReminders)
	go c.Start()
	log.Println("✅ Cron job for journal reminders scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Study Journal",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Study Journal API",
		})
	})

	routes.AuthRoutes(app, authHandler)
	routes.JournalRoutes(app, journalHandler, feedHandler)
	routes.QuizRoutes(app, quizHandler, certificateHandler)
	routes.UploadRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.ConfigOr("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}

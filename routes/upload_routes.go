package routes

import (
	"github.com/classlearning/study_journal/handlers"
	"github.com/classlearning/study_journal/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/uploads/signature", middleware.Protected(), handlers.GenerateUploadSignature)
}

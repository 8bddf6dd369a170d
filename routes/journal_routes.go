package routes

import (
	"github.com/classlearning/study_journal/handlers"
	"github.com/classlearning/study_journal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func JournalRoutes(app *fiber.App, h *handlers.JournalHandler, feed *handlers.FeedHandler) {
	api := app.Group("/api/v1")

	journals := api.Group("/journals", middleware.Protected())
	journals.Post("", h.CreateJournal)
	journals.Get("", h.ListJournals)
	journals.Get("/stats", h.GetJournalStats)
	journals.Get("/:journalId", h.GetJournal)
	journals.Put("/:journalId", h.UpdateJournal)
	journals.Delete("/:journalId", h.DeleteJournal)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(feed.ServeFeed))
}

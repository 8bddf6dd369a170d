package routes

import (
	"github.com/classlearning/study_journal/handlers"
	"github.com/classlearning/study_journal/middleware"
	"github.com/gofiber/fiber/v2"
)

func QuizRoutes(app *fiber.App, h *handlers.QuizHandler, certs *handlers.CertificateHandler) {
	api := app.Group("/api/v1", middleware.Protected())

	api.Post("/journals/:journalId/quiz", h.GenerateQuiz)
	api.Get("/journals/:journalId/quiz", h.GetQuizForJournal)

	quizzes := api.Group("/quizzes")
	quizzes.Get("", h.ListMyQuizzes)
	quizzes.Get("/:quizId", h.GetQuiz)
	quizzes.Post("/:quizId/submit", h.SubmitQuiz)

	session := quizzes.Group("/:quizId/session")
	session.Post("", h.CreateSession)
	session.Get("", h.GetSession)
	session.Post("/start", h.StartSession)
	session.Post("/answer", h.AnswerQuestion)
	session.Post("/next", h.NextQuestion)
	session.Post("/previous", h.PreviousQuestion)
	session.Post("/goto", h.GotoQuestion)

	api.Get("/certificates", certs.ListMyCertificates)
}

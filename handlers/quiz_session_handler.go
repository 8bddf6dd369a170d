package handlers

import (
	"errors"

	"github.com/classlearning/study_journal/services"
	"github.com/gofiber/fiber/v2"
)

// Session endpoints drive one user through a quiz: instructions, question
// navigation with instant feedback, then completion. Completing the last
// question grades the session and persists the result in a single
// mark-complete write.

func (h *QuizHandler) CreateSession(c *fiber.Ctx) error {
	quiz, err := h.ownedQuiz(c)
	if err != nil {
		return err
	}
	if quiz.Completed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Quiz already completed"})
	}

	// Creating a session always starts fresh; any in-flight session for the
	// same quiz is discarded along with its answers.
	session, err := h.Sessions.Create(quiz)
	if err != nil {
		return malformedQuiz(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session.Snapshot())
}

func (h *QuizHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}
	return c.JSON(session.Snapshot())
}

func (h *QuizHandler) StartSession(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return sessionError(c, err)
	}
	return c.JSON(session.Snapshot())
}

func (h *QuizHandler) AnswerQuestion(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}

	type Request struct {
		OptionID string `json:"option_id" validate:"required,oneof=A B C D"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	feedback, err := session.Select(req.OptionID)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(fiber.Map{
		"feedback": feedback,
		"session":  session.Snapshot(),
	})
}

func (h *QuizHandler) NextQuestion(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}

	completed, err := session.Next()
	if err != nil {
		return sessionError(c, err)
	}
	if !completed {
		return c.JSON(session.Snapshot())
	}

	result, err := session.Score()
	if err != nil {
		return sessionError(c, err)
	}

	scoring := services.BuildScoring(session.Questions(), session.Answers(), session.Policy(), result)
	if err := h.Store.MarkComplete(session.QuizID, scoring); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save quiz results"})
	}

	if quiz, err := h.Store.GetByID(session.QuizID); err == nil {
		h.issueCertificate(quiz, result.Percentage)
	}
	h.Sessions.Remove(session.QuizID, session.UserID)

	return c.JSON(fiber.Map{
		"message":        "Quiz completed",
		"total_score":    result.TotalScore,
		"percentage":     result.Percentage,
		"correct_count":  result.CorrectCount,
		"answer_results": result.AnswerResults,
	})
}

func (h *QuizHandler) PreviousQuestion(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}
	if err := session.Previous(); err != nil {
		return sessionError(c, err)
	}
	return c.JSON(session.Snapshot())
}

func (h *QuizHandler) GotoQuestion(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if err != nil {
		return err
	}

	type Request struct {
		QuestionIndex *int `json:"question_index" validate:"required"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := session.Jump(*req.QuestionIndex); err != nil {
		return sessionError(c, err)
	}
	return c.JSON(session.Snapshot())
}

func (h *QuizHandler) ownedSession(c *fiber.Ctx) (*services.QuizSession, error) {
	quiz, err := h.ownedQuiz(c)
	if err != nil {
		return nil, err
	}

	userID, _ := currentUserID(c)
	session, err := h.Sessions.Get(quiz.ID, userID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "No active session for this quiz")
	}
	return session, nil
}

func sessionError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrSessionCompleted),
		errors.Is(err, services.ErrSessionNotStarted),
		errors.Is(err, services.ErrAlreadyStarted):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

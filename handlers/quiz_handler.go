package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/classlearning/study_journal/models"
	"github.com/classlearning/study_journal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizHandler struct {
	DB           *gorm.DB
	Store        *services.QuizStore
	Generator    *services.QuizGenerator
	Sessions     *services.SessionManager
	Certificates *services.CertificateService
}

type QuizResponse struct {
	ID             uuid.UUID             `json:"id"`
	JournalID      uuid.UUID             `json:"journal_id"`
	UserID         uuid.UUID             `json:"user_id"`
	JournalSummary string                `json:"journal_summary"`
	Questions      []models.QuizQuestion `json:"questions"`
	Scoring        *models.QuizScoring   `json:"scoring"`
	Completed      bool                  `json:"completed"`
	CreatedAt      time.Time             `json:"created_at"`
	CompletedAt    *time.Time            `json:"completed_at"`
}

func quizResponse(quiz *models.Quiz) (QuizResponse, error) {
	questions, err := quiz.DecodeQuestions()
	if err != nil {
		return QuizResponse{}, err
	}
	scoring, err := quiz.DecodeScoring()
	if err != nil {
		return QuizResponse{}, err
	}
	return QuizResponse{
		ID:             quiz.ID,
		JournalID:      quiz.JournalID,
		UserID:         quiz.UserID,
		JournalSummary: quiz.JournalSummary,
		Questions:      questions,
		Scoring:        scoring,
		Completed:      quiz.Completed,
		CreatedAt:      quiz.CreatedAt,
		CompletedAt:    quiz.CompletedAt,
	}, nil
}

// GenerateQuiz creates a quiz for a journal entry. If a quiz already exists
// it is returned as-is; the existence check is read-then-decide, so two
// concurrent generate calls for the same journal can still both create one.
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	journalID := c.Params("journalId")
	var journal models.Journal
	if err := h.DB.First(&journal, "id = ? AND user_id = ?", journalID, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Journal not found"})
	}

	if existing, err := h.Store.GetByJournal(journal.ID); err == nil {
		response, err := quizResponse(existing)
		if err != nil {
			return malformedQuiz(c, err)
		}
		return c.JSON(response)
	} else if !errors.Is(err, services.ErrQuizNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up quiz"})
	}

	generated, err := h.Generator.Generate(journal.Title, journal.Content, journal.Grade)
	if err != nil {
		log.Printf("🔥 Quiz generation failed for journal %s: %v", journal.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to generate quiz"})
	}

	quiz, err := h.Store.Create(journal.ID, userID, generated)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save quiz"})
	}

	response, err := quizResponse(quiz)
	if err != nil {
		return malformedQuiz(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// GetQuizForJournal returns 404 when no quiz exists yet; that is the normal
// state before generation, not a failure.
func (h *QuizHandler) GetQuizForJournal(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	journalID := c.Params("journalId")
	var journal models.Journal
	if err := h.DB.First(&journal, "id = ? AND user_id = ?", journalID, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Journal not found"})
	}

	quiz, err := h.Store.GetByJournal(journal.ID)
	if err != nil {
		if errors.Is(err, services.ErrQuizNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No quiz yet"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch quiz"})
	}

	response, err := quizResponse(quiz)
	if err != nil {
		return malformedQuiz(c, err)
	}
	return c.JSON(response)
}

func (h *QuizHandler) ListMyQuizzes(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user"})
	}

	quizzes, err := h.Store.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch quizzes"})
	}

	responses := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		response, err := quizResponse(&quizzes[i])
		if err != nil {
			return malformedQuiz(c, err)
		}
		responses = append(responses, response)
	}
	return c.JSON(responses)
}

func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.ownedQuiz(c)
	if err != nil {
		return err
	}

	response, err := quizResponse(quiz)
	if err != nil {
		return malformedQuiz(c, err)
	}
	return c.JSON(response)
}

type SubmitAnswersRequest struct {
	Answers []struct {
		QuestionID       int     `json:"question_id" validate:"required,min=1"`
		SelectedOptionID *string `json:"selected_option_id"`
	} `json:"answers" validate:"required"`
}

// SubmitQuiz is the direct submission path: all answers arrive in one call,
// unanswered questions count as wrong. Resubmitting overwrites the scoring
// block with the same-shaped result (last write wins).
func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	quiz, err := h.ownedQuiz(c)
	if err != nil {
		return err
	}

	var req SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	questions, err := quiz.DecodeQuestions()
	if err != nil {
		return malformedQuiz(c, err)
	}

	answers := make([]*string, len(questions))
	for _, answer := range req.Answers {
		for i, question := range questions {
			if question.QuestionID == answer.QuestionID {
				answers[i] = answer.SelectedOptionID
			}
		}
	}

	stored, err := quiz.DecodeScoring()
	if err != nil {
		return malformedQuiz(c, err)
	}
	policy := models.DefaultScoringPolicy(len(questions))
	if stored != nil && !stored.ScoringPolicy.IsZero() {
		policy = stored.ScoringPolicy
	}

	result := services.ScoreAnswers(questions, answers, policy)
	scoring := services.BuildScoring(questions, answers, policy, result)
	if err := h.Store.MarkComplete(quiz.ID, scoring); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save quiz results"})
	}

	h.issueCertificate(quiz, result.Percentage)

	return c.JSON(fiber.Map{
		"message":        "Quiz submitted successfully",
		"total_score":    result.TotalScore,
		"percentage":     result.Percentage,
		"correct_count":  result.CorrectCount,
		"answer_results": result.AnswerResults,
	})
}

// ownedQuiz loads the quiz from the route param and checks ownership. It
// returns a *fiber.Error so callers can return it directly; it never writes
// the response itself.
func (h *QuizHandler) ownedQuiz(c *fiber.Ctx) (*models.Quiz, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user")
	}

	quizID, err := uuid.Parse(c.Params("quizId"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid quiz ID")
	}

	quiz, err := h.Store.GetByID(quizID)
	if err != nil || quiz.UserID != userID {
		return nil, fiber.NewError(fiber.StatusNotFound, "Quiz not found")
	}
	return quiz, nil
}

func (h *QuizHandler) issueCertificate(quiz *models.Quiz, percentage int) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", quiz.UserID).Error; err != nil {
		log.Printf("Skipping certificate, user %s not found: %v", quiz.UserID, err)
		return
	}
	var journal models.Journal
	if err := h.DB.First(&journal, "id = ?", quiz.JournalID).Error; err != nil {
		log.Printf("Skipping certificate, journal %s not found: %v", quiz.JournalID, err)
		return
	}
	go h.Certificates.CheckAndGenerate(user, quiz, journal.Title, percentage)
}

func malformedQuiz(c *fiber.Ctx, err error) error {
	log.Printf("🔥 Malformed quiz record: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Stored quiz is malformed"})
}

package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/classlearning/study_journal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrQuizNotFound = errors.New("quiz not found")

// QuizStore owns persistence of quiz records. "Not found" is the expected
// steady state for a journal with no quiz yet; callers decide whether that is
// an error.
type QuizStore struct {
	DB *gorm.DB
}

func NewQuizStore(db *gorm.DB) *QuizStore {
	return &QuizStore{DB: db}
}

// Create persists a fresh, uncompleted quiz. The caller is expected to have
// checked GetByJournal first; nothing here enforces one-quiz-per-journal, so
// concurrent generate requests for the same journal can still produce
// duplicates (read-then-decide, not a constraint).
func (s *QuizStore) Create(journalID, userID uuid.UUID, generated *GeneratedQuiz) (*models.Quiz, error) {
	questionsJSON, err := json.Marshal(generated.Questions)
	if err != nil {
		return nil, err
	}
	scoringJSON, err := json.Marshal(models.QuizScoring{ScoringPolicy: generated.Scoring})
	if err != nil {
		return nil, err
	}

	quiz := models.Quiz{
		JournalID:      journalID,
		UserID:         userID,
		JournalSummary: generated.JournalSummary,
		Questions:      questionsJSON,
		Scoring:        scoringJSON,
		Completed:      false,
	}
	if err := s.DB.Create(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetByJournal returns the first quiz generated from the given journal.
func (s *QuizStore) GetByJournal(journalID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.DB.Where("journal_id = ?", journalID).Order("created_at ASC").First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

func (s *QuizStore) GetByID(quizID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := s.DB.First(&quiz, "id = ?", quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

func (s *QuizStore) ListByUser(userID uuid.UUID) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// MarkComplete overwrites the scoring block and flips completed to true.
// Re-applying the same scoring yields the same final state; nothing guards
// against a concurrent double submission (last write wins).
func (s *QuizStore) MarkComplete(quizID uuid.UUID, scoring models.QuizScoring) error {
	scoringJSON, err := json.Marshal(scoring)
	if err != nil {
		return err
	}

	now := time.Now()
	result := s.DB.Model(&models.Quiz{}).Where("id = ?", quizID).Updates(map[string]interface{}{
		"scoring":      scoringJSON,
		"completed":    true,
		"completed_at": now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuizNotFound
	}
	return nil
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ErrMalformedRecord is returned when a stored quiz document does not decode
// into the expected shape. Callers must not fall back to partial data.
var ErrMalformedRecord = errors.New("malformed quiz record")

const (
	QuestionsPerQuiz   = 5
	OptionsPerQuestion = 4
)

var validOptionIDs = map[string]bool{"A": true, "B": true, "C": true, "D": true}

type QuizOption struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
}

type QuizQuestion struct {
	QuestionID      int          `json:"question_id"`
	QuestionText    string       `json:"question_text"`
	Options         []QuizOption `json:"options"`
	CorrectOptionID string       `json:"correct_option_id"`
	Explanation     string       `json:"explanation,omitempty"`
}

// ExplanationText never returns an empty string: questions stored without an
// explanation get a synthesized "correct answer was X" message at read time.
func (q QuizQuestion) ExplanationText() string {
	if q.Explanation != "" {
		return q.Explanation
	}
	return fmt.Sprintf("The correct answer was %s.", q.CorrectOptionID)
}

func (q QuizQuestion) CorrectOptionText() string {
	for _, opt := range q.Options {
		if opt.OptionID == q.CorrectOptionID {
			return opt.Text
		}
	}
	return ""
}

type UserAnswer struct {
	QuestionID       int     `json:"question_id"`
	SelectedOptionID *string `json:"selected_option_id"`
}

type QuizAnswerResult struct {
	QuestionID       int     `json:"question_id"`
	SelectedOptionID *string `json:"selected_option_id"`
	IsCorrect        bool    `json:"is_correct"`
	EarnedPoints     int     `json:"earned_points"`
	Explanation      string  `json:"explanation"`
}

type ScoringPolicy struct {
	PointsPerCorrect int `json:"points_per_correct"`
	PointsPerWrong   int `json:"points_per_wrong"`
	MaxScore         int `json:"max_score"`
}

// QuizScoring is the scoring block persisted on completion. The policy fields
// are present from creation; the result fields only once completed.
type QuizScoring struct {
	ScoringPolicy
	TotalScore    int                `json:"total_score"`
	Percentage    int                `json:"percentage"`
	UserAnswers   []UserAnswer       `json:"user_answers,omitempty"`
	AnswerResults []QuizAnswerResult `json:"answer_results,omitempty"`
}

type Quiz struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JournalID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"journal_id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	JournalSummary string         `gorm:"type:text" json:"journal_summary"`
	Questions      datatypes.JSON `gorm:"type:jsonb;not null" json:"questions"`
	Scoring        datatypes.JSON `gorm:"type:jsonb" json:"scoring"`
	Completed      bool           `gorm:"not null;default:false" json:"completed"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Journal Journal `gorm:"foreignkey:JournalID" json:"-"`
	User    User    `gorm:"foreignkey:UserID" json:"-"`
}

// DecodeQuestions is the validated read boundary for the questions column.
func (q *Quiz) DecodeQuestions() ([]QuizQuestion, error) {
	var questions []QuizQuestion
	if err := json.Unmarshal(q.Questions, &questions); err != nil {
		return nil, fmt.Errorf("%w: questions: %v", ErrMalformedRecord, err)
	}
	if err := ValidateQuestions(questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return questions, nil
}

func (q *Quiz) DecodeScoring() (*QuizScoring, error) {
	if len(q.Scoring) == 0 {
		return nil, nil
	}
	var scoring QuizScoring
	if err := json.Unmarshal(q.Scoring, &scoring); err != nil {
		return nil, fmt.Errorf("%w: scoring: %v", ErrMalformedRecord, err)
	}
	return &scoring, nil
}

// ValidateQuestions enforces the quiz shape: exactly 5 questions in
// generation order, each with 4 uniquely-lettered options and a correct
// option that references one of them.
func ValidateQuestions(questions []QuizQuestion) error {
	if len(questions) != QuestionsPerQuiz {
		return fmt.Errorf("expected %d questions, got %d", QuestionsPerQuiz, len(questions))
	}
	for i, question := range questions {
		if question.QuestionID != i+1 {
			return fmt.Errorf("question %d: expected question_id %d, got %d", i+1, i+1, question.QuestionID)
		}
		if question.QuestionText == "" {
			return fmt.Errorf("question %d: empty question_text", question.QuestionID)
		}
		if len(question.Options) != OptionsPerQuestion {
			return fmt.Errorf("question %d: expected %d options, got %d", question.QuestionID, OptionsPerQuestion, len(question.Options))
		}
		seen := map[string]bool{}
		for _, opt := range question.Options {
			if !validOptionIDs[opt.OptionID] {
				return fmt.Errorf("question %d: invalid option_id %q", question.QuestionID, opt.OptionID)
			}
			if seen[opt.OptionID] {
				return fmt.Errorf("question %d: duplicate option_id %q", question.QuestionID, opt.OptionID)
			}
			if opt.Text == "" {
				return fmt.Errorf("question %d: option %s has empty text", question.QuestionID, opt.OptionID)
			}
			seen[opt.OptionID] = true
		}
		if !seen[question.CorrectOptionID] {
			return fmt.Errorf("question %d: correct_option_id %q is not one of the options", question.QuestionID, question.CorrectOptionID)
		}
	}
	return nil
}

// DefaultScoringPolicy mirrors the scoring used when the generator does not
// supply a policy: one point per correct answer, max score = question count.
func DefaultScoringPolicy(questionCount int) ScoringPolicy {
	return ScoringPolicy{
		PointsPerCorrect: 1,
		PointsPerWrong:   0,
		MaxScore:         questionCount,
	}
}

func (p ScoringPolicy) IsZero() bool {
	return p.PointsPerCorrect == 0 && p.PointsPerWrong == 0 && p.MaxScore == 0
}

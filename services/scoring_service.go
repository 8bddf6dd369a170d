package services

import (
	"math"

	"github.com/classlearning/study_journal/models"
)

// ScoreResult keeps both numbers the review screen needs: TotalScore is
// policy points, Percentage is the 0-100 headline (rounded correct ratio).
type ScoreResult struct {
	AnswerResults []models.QuizAnswerResult `json:"answer_results"`
	TotalScore    int                       `json:"total_score"`
	CorrectCount  int                       `json:"correct_count"`
	Percentage    int                       `json:"percentage"`
}

// ScoreAnswers grades a finished quiz. answers is aligned by index to
// questions; a nil entry means the question was never answered and is scored
// as incorrect. The function is pure: no persistence, no hidden state.
func ScoreAnswers(questions []models.QuizQuestion, answers []*string, policy models.ScoringPolicy) ScoreResult {
	if policy.IsZero() {
		policy = models.DefaultScoringPolicy(len(questions))
	}

	result := ScoreResult{
		AnswerResults: make([]models.QuizAnswerResult, 0, len(questions)),
	}

	for i, question := range questions {
		var selected *string
		if i < len(answers) {
			selected = answers[i]
		}

		isCorrect := selected != nil && *selected == question.CorrectOptionID
		earned := policy.PointsPerWrong
		if isCorrect {
			earned = policy.PointsPerCorrect
			result.CorrectCount++
		}
		result.TotalScore += earned

		result.AnswerResults = append(result.AnswerResults, models.QuizAnswerResult{
			QuestionID:       question.QuestionID,
			SelectedOptionID: selected,
			IsCorrect:        isCorrect,
			EarnedPoints:     earned,
			Explanation:      question.ExplanationText(),
		})
	}

	if len(questions) > 0 {
		result.Percentage = int(math.Round(float64(result.CorrectCount) / float64(len(questions)) * 100))
	}

	return result
}

// BuildScoring assembles the scoring block persisted when a quiz is marked
// complete.
func BuildScoring(questions []models.QuizQuestion, answers []*string, policy models.ScoringPolicy, result ScoreResult) models.QuizScoring {
	if policy.IsZero() {
		policy = models.DefaultScoringPolicy(len(questions))
	}

	userAnswers := make([]models.UserAnswer, 0, len(questions))
	for i, question := range questions {
		var selected *string
		if i < len(answers) {
			selected = answers[i]
		}
		userAnswers = append(userAnswers, models.UserAnswer{
			QuestionID:       question.QuestionID,
			SelectedOptionID: selected,
		})
	}

	return models.QuizScoring{
		ScoringPolicy: policy,
		TotalScore:    result.TotalScore,
		Percentage:    result.Percentage,
		UserAnswers:   userAnswers,
		AnswerResults: result.AnswerResults,
	}
}

package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	config "github.com/classlearning/study_journal/configs"
	"github.com/classlearning/study_journal/models"
)

// ErrGenerationFailed covers both transport failures and schema violations
// from the generation API. No partial quiz is ever persisted on this error.
var ErrGenerationFailed = errors.New("quiz generation failed")

const generateQuizFunction = "generate_quiz_from_journal_with_explanations"

type QuizGenerator struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewQuizGenerator() *QuizGenerator {
	return &QuizGenerator{
		BaseURL: config.Config("AI_BASE_URL"),
		APIKey:  config.Config("AI_API_KEY"),
		Model:   config.ConfigOr("AI_MODEL", "gpt-5-mini"),
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type GeneratedQuiz struct {
	JournalSummary string                `json:"journal_summary"`
	Questions      []models.QuizQuestion `json:"questions"`
	Scoring        models.ScoringPolicy  `json:"scoring"`
}

type chatMessage struct {
	Role         string `json:"role"`
	Content      string `json:"content"`
	FunctionCall *struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function_call,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate asks the AI API for exactly 5 multiple-choice questions about the
// journal entry. The shape is enforced through the function-calling schema
// (minItems/maxItems) and re-validated locally before anything is returned.
func (g *QuizGenerator) Generate(journalTitle, journalContent string, gradeLevel int) (*GeneratedQuiz, error) {
	if journalContent == "" {
		return nil, fmt.Errorf("%w: journal content is empty", ErrGenerationFailed)
	}

	reqBody := map[string]interface{}{
		"model": g.Model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a helpful AI that generates quizzes from journal content.",
			},
			{
				"role": "user",
				"content": fmt.Sprintf(
					"Generate a quiz from this journal entry titled %q, written by a grade %d student. Content: %s. Make sure each question has an explanation that will help the student understand the correct answer.",
					journalTitle, gradeLevel, journalContent,
				),
			},
		},
		"functions":     []map[string]interface{}{quizFunctionSchema()},
		"function_call": map[string]string{"name": generateQuizFunction},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequest("POST", g.BaseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: AI API error (status %d): %s", ErrGenerationFailed, resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, result.Error.Message)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.FunctionCall == nil {
		return nil, fmt.Errorf("%w: AI returned no function call", ErrGenerationFailed)
	}

	var generated GeneratedQuiz
	if err := json.Unmarshal([]byte(result.Choices[0].Message.FunctionCall.Arguments), &generated); err != nil {
		return nil, fmt.Errorf("%w: malformed function arguments: %v", ErrGenerationFailed, err)
	}

	if err := models.ValidateQuestions(generated.Questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if generated.Scoring.IsZero() {
		generated.Scoring = models.DefaultScoringPolicy(len(generated.Questions))
	}

	// Every persisted question must carry explanatory text for the results
	// review, even when the model skipped it.
	for i, question := range generated.Questions {
		if question.Explanation == "" {
			generated.Questions[i].Explanation = fmt.Sprintf(
				"For question %q, the correct answer is %s: %q. This can be found in the journal where it discusses this topic.",
				question.QuestionText, question.CorrectOptionID, question.CorrectOptionText(),
			)
		}
	}

	return &generated, nil
}

func quizFunctionSchema() map[string]interface{} {
	return map[string]interface{}{
		"name":        generateQuizFunction,
		"description": "Generate exactly 5 multiple-choice questions (4 options each) from a user-provided journal, plus scoring and end-of-quiz explanations for each question.",
		"parameters": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"journal_summary": map[string]interface{}{
					"type":        "string",
					"description": "A short summary of the journal entry.",
				},
				"questions": map[string]interface{}{
					"type":        "array",
					"description": "Array of exactly 5 generated multiple-choice questions.",
					"minItems":    models.QuestionsPerQuiz,
					"maxItems":    models.QuestionsPerQuiz,
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"question_id": map[string]interface{}{
								"type":        "integer",
								"description": "1-based question index",
							},
							"question_text": map[string]interface{}{
								"type":        "string",
								"description": "The full question text.",
							},
							"options": map[string]interface{}{
								"type":     "array",
								"minItems": models.OptionsPerQuestion,
								"maxItems": models.OptionsPerQuestion,
								"items": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"option_id": map[string]interface{}{
											"type":        "string",
											"description": "Option letter: A, B, C, or D",
										},
										"text": map[string]interface{}{
											"type":        "string",
											"description": "Option text.",
										},
									},
									"required": []string{"option_id", "text"},
								},
							},
							"correct_option_id": map[string]interface{}{
								"type":        "string",
								"description": "Correct option ID (A, B, C, or D).",
							},
							"explanation": map[string]interface{}{
								"type":        "string",
								"description": "Why the correct answer is correct, in student-friendly language.",
							},
						},
						"required": []string{"question_id", "question_text", "options", "correct_option_id"},
					},
				},
			},
			"required": []string{"journal_summary", "questions"},
		},
	}
}

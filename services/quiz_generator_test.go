package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/classlearning/study_journal/models"
)

func generatorArguments(questionCount int) string {
	questions := make([]map[string]interface{}, 0, questionCount)
	for i := 0; i < questionCount; i++ {
		questions = append(questions, map[string]interface{}{
			"question_id":   i + 1,
			"question_text": fmt.Sprintf("What happened on day %d?", i+1),
			"options": []map[string]string{
				{"option_id": "A", "text": "It rained"},
				{"option_id": "B", "text": "We visited the museum"},
				{"option_id": "C", "text": "School was closed"},
				{"option_id": "D", "text": "We planted trees"},
			},
			"correct_option_id": "B",
		})
	}
	args, _ := json.Marshal(map[string]interface{}{
		"journal_summary": "A school trip to the museum.",
		"questions":       questions,
	})
	return string(args)
}

func chatResponse(arguments string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": "",
					"function_call": map[string]string{
						"name":      generateQuizFunction,
						"arguments": arguments,
					},
				},
			},
		},
	})
	return body
}

func newTestGenerator(url string) *QuizGenerator {
	return &QuizGenerator{
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "test-model",
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotAuth string
	var gotRequest map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Write(chatResponse(generatorArguments(5)))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	generated, err := g.Generate("Museum Day", "Today our class went to the museum and saw dinosaur bones.", 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotPath != "/v1/chat/completions" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if fc, ok := gotRequest["function_call"].(map[string]interface{}); !ok || fc["name"] != generateQuizFunction {
		t.Fatalf("function_call not forced to %s: %v", generateQuizFunction, gotRequest["function_call"])
	}

	if generated.JournalSummary != "A school trip to the museum." {
		t.Fatalf("journal_summary = %q", generated.JournalSummary)
	}
	if len(generated.Questions) != models.QuestionsPerQuiz {
		t.Fatalf("got %d questions", len(generated.Questions))
	}
	if generated.Scoring.IsZero() {
		t.Fatalf("default scoring policy not applied")
	}
	if generated.Scoring.PointsPerCorrect != 1 || generated.Scoring.MaxScore != 5 {
		t.Fatalf("scoring = %+v", generated.Scoring)
	}
}

func TestGenerate_SynthesizesMissingExplanations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatResponse(generatorArguments(5)))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	generated, err := g.Generate("Museum Day", "Today our class went to the museum.", 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i, question := range generated.Questions {
		if question.Explanation == "" {
			t.Fatalf("question %d has no explanation", i+1)
		}
		if !strings.Contains(question.Explanation, `the correct answer is B: "We visited the museum"`) {
			t.Fatalf("question %d explanation = %q", i+1, question.Explanation)
		}
	}
}

func TestGenerate_RejectsWrongQuestionCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatResponse(generatorArguments(3)))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	if _, err := g.Generate("Museum Day", "content", 5); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerate_RejectsInvalidCorrectOption(t *testing.T) {
	args := strings.ReplaceAll(generatorArguments(5), `"correct_option_id":"B"`, `"correct_option_id":"E"`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chatResponse(args))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	if _, err := g.Generate("Museum Day", "content", 5); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	if _, err := g.Generate("Museum Day", "content", 5); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerate_NoFunctionCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "I cannot do that."}}]}`))
	}))
	defer server.Close()

	g := newTestGenerator(server.URL)
	if _, err := g.Generate("Museum Day", "content", 5); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

func TestGenerate_EmptyJournalContent(t *testing.T) {
	g := newTestGenerator("http://invalid.local")
	if _, err := g.Generate("Museum Day", "", 5); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
}

package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// testQuizApp mounts the quiz endpoints behind a stub of the jwt middleware
// so ownership checks see an authenticated user.
func testQuizApp(h *QuizHandler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": uuid.New().String()})
		c.Locals("user", token)
		return c.Next()
	})
	app.Get("/quizzes/:quizId", h.GetQuiz)
	app.Post("/quizzes/:quizId/submit", h.SubmitQuiz)
	app.Post("/quizzes/:quizId/session/answer", h.AnswerQuestion)
	return app
}

func TestQuizEndpoints_InvalidQuizID(t *testing.T) {
	app := testQuizApp(&QuizHandler{})

	cases := []struct {
		method string
		path   string
	}{
		{"GET", "/quizzes/not-a-uuid"},
		{"POST", "/quizzes/not-a-uuid/submit"},
		{"POST", "/quizzes/not-a-uuid/session/answer"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), "Invalid quiz ID") {
				t.Fatalf("body = %q, want the invalid quiz ID message", string(body))
			}
		})
	}
}

package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/classlearning/study_journal/models"
	"github.com/google/uuid"
)

func newTestSession(t *testing.T) *QuizSession {
	t.Helper()
	questions := fiveQuestions([5]string{"A", "B", "C", "D", "A"})
	return NewQuizSession(uuid.New(), uuid.New(), questions, models.DefaultScoringPolicy(len(questions)))
}

func TestSession_StartsOnInstructions(t *testing.T) {
	s := newTestSession(t)

	if got := s.Snapshot().State; got != SessionInstructions {
		t.Fatalf("state = %q, want %q", got, SessionInstructions)
	}
	if _, err := s.Select("A"); !errors.Is(err, ErrSessionNotStarted) {
		t.Fatalf("Select before start: err = %v, want ErrSessionNotStarted", err)
	}
	if _, err := s.Next(); !errors.Is(err, ErrSessionNotStarted) {
		t.Fatalf("Next before start: err = %v, want ErrSessionNotStarted", err)
	}
}

func TestSession_StartTwice(t *testing.T) {
	s := newTestSession(t)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start: err = %v, want ErrAlreadyStarted", err)
	}
}

func TestSession_SelectOverwritesAndRecomputesFeedback(t *testing.T) {
	s := newTestSession(t)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	fb, err := s.Select("B")
	if err != nil {
		t.Fatalf("Select B: %v", err)
	}
	if fb.IsCorrect {
		t.Fatalf("B should be incorrect on question 1")
	}

	fb, err = s.Select("A")
	if err != nil {
		t.Fatalf("Select A: %v", err)
	}
	if !fb.IsCorrect {
		t.Fatalf("A should be correct on question 1")
	}

	answers := s.Answers()
	if answers[0] == nil || *answers[0] != "A" {
		t.Fatalf("stored answer = %v, want A", answers[0])
	}
}

func TestSession_SelectRejectsUnknownOption(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	if _, err := s.Select("E"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("Select E: err = %v, want ErrInvalidOption", err)
	}
	if s.Answers()[0] != nil {
		t.Fatalf("rejected selection must not be recorded")
	}
}

func TestSession_NextRequiresAnswer(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	if _, err := s.Next(); !errors.Is(err, ErrAnswerRequired) {
		t.Fatalf("Next unanswered: err = %v, want ErrAnswerRequired", err)
	}

	if _, err := s.Select("A"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	completed, err := s.Next()
	if err != nil {
		t.Fatalf("Next answered: %v", err)
	}
	if completed {
		t.Fatalf("completed after question 1 of 5")
	}
	if got := s.Snapshot().CurrentQuestion; got != 1 {
		t.Fatalf("current = %d, want 1", got)
	}
}

func TestSession_PreviousPreservesAnswers(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	if err := s.Previous(); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("Previous on first question: err = %v, want ErrInvalidQuestion", err)
	}

	s.Select("A")
	s.Next()
	s.Select("C")

	if err := s.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}

	answers := s.Answers()
	if answers[0] == nil || *answers[0] != "A" {
		t.Fatalf("answer 0 lost after navigation: %v", answers[0])
	}
	if answers[1] == nil || *answers[1] != "C" {
		t.Fatalf("answer 1 lost after navigation: %v", answers[1])
	}
	if got := s.Snapshot().CurrentQuestion; got != 0 {
		t.Fatalf("current = %d, want 0", got)
	}
}

func TestSession_JumpStartsFromInstructions(t *testing.T) {
	s := newTestSession(t)

	if err := s.Jump(3); err != nil {
		t.Fatalf("Jump: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != SessionAnswering {
		t.Fatalf("state = %q, want %q", snap.State, SessionAnswering)
	}
	if snap.CurrentQuestion != 3 {
		t.Fatalf("current = %d, want 3", snap.CurrentQuestion)
	}

	if err := s.Jump(5); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("Jump out of range: err = %v, want ErrInvalidQuestion", err)
	}
	if err := s.Jump(-1); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("Jump negative: err = %v, want ErrInvalidQuestion", err)
	}
}

func TestSession_CompletionIsTerminal(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	picks := []string{"A", "B", "C", "D", "B"}
	for i, pick := range picks {
		if _, err := s.Select(pick); err != nil {
			t.Fatalf("Select %d: %v", i, err)
		}
		completed, err := s.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if completed != (i == len(picks)-1) {
			t.Fatalf("completed = %v on question %d", completed, i)
		}
	}

	if s.Snapshot().State != SessionCompleted {
		t.Fatalf("state = %q, want completed", s.Snapshot().State)
	}
	if _, err := s.Select("A"); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("Select after completion: err = %v", err)
	}
	if _, err := s.Next(); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("Next after completion: err = %v", err)
	}
	if err := s.Previous(); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("Previous after completion: err = %v", err)
	}
	if err := s.Jump(0); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("Jump after completion: err = %v", err)
	}

	result, err := s.Score()
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// A B C D B against key A B C D A: four correct.
	if result.TotalScore != 4 || result.Percentage != 80 {
		t.Fatalf("score = %d/%d%%, want 4/80%%", result.TotalScore, result.Percentage)
	}
}

func TestSession_ScoreBeforeCompletion(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	if _, err := s.Score(); err == nil {
		t.Fatalf("Score before completion should fail")
	}
}

func quizForManager(t *testing.T) *models.Quiz {
	t.Helper()
	questions := fiveQuestions([5]string{"A", "B", "C", "D", "A"})
	raw, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("encode questions: %v", err)
	}
	return &models.Quiz{ID: uuid.New(), UserID: uuid.New(), Questions: raw}
}

func TestSessionManager_CreateReplacesExisting(t *testing.T) {
	m := NewSessionManager()
	quiz := quizForManager(t)

	first, err := m.Create(quiz)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	first.Start()
	first.Select("A")

	second, err := m.Create(quiz)
	if err != nil {
		t.Fatalf("re-Create: %v", err)
	}
	if second == first {
		t.Fatalf("re-creating must return a fresh session")
	}
	if second.Snapshot().State != SessionInstructions {
		t.Fatalf("fresh session state = %q", second.Snapshot().State)
	}
	for i, a := range second.Answers() {
		if a != nil {
			t.Fatalf("fresh session kept answer %d = %q", i, *a)
		}
	}

	got, err := m.Get(quiz.ID, quiz.UserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != second {
		t.Fatalf("Get returned stale session")
	}
}

func TestSessionManager_GetAndRemove(t *testing.T) {
	m := NewSessionManager()
	quiz := quizForManager(t)

	if _, err := m.Get(quiz.ID, quiz.UserID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get missing: err = %v, want ErrSessionNotFound", err)
	}

	if _, err := m.Create(quiz); err != nil {
		t.Fatalf("Create: %v", err)
	}
	m.Remove(quiz.ID, quiz.UserID)

	if _, err := m.Get(quiz.ID, quiz.UserID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get after Remove: err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionManager_CreateRejectsMalformedQuiz(t *testing.T) {
	m := NewSessionManager()
	quiz := &models.Quiz{ID: uuid.New(), UserID: uuid.New(), Questions: []byte(`{"not": "a list"}`)}

	if _, err := m.Create(quiz); !errors.Is(err, models.ErrMalformedRecord) {
		t.Fatalf("Create malformed: err = %v, want ErrMalformedRecord", err)
	}
}

func TestSessionManager_CreateRejectsMalformedScoring(t *testing.T) {
	m := NewSessionManager()
	quiz := quizForManager(t)
	quiz.Scoring = []byte(`[1, 2, 3]`)

	if _, err := m.Create(quiz); !errors.Is(err, models.ErrMalformedRecord) {
		t.Fatalf("Create with malformed scoring: err = %v, want ErrMalformedRecord", err)
	}
}

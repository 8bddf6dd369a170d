package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/classlearning/study_journal/models"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound   = errors.New("no active quiz session")
	ErrSessionCompleted  = errors.New("quiz session already completed")
	ErrSessionNotStarted = errors.New("quiz session not started")
	ErrAnswerRequired    = errors.New("answer the current question before moving on")
	ErrInvalidOption     = errors.New("selected option is not one of the question's options")
	ErrInvalidQuestion   = errors.New("question index out of range")
	ErrAlreadyStarted    = errors.New("quiz session already started")
)

type SessionState string

const (
	SessionInstructions SessionState = "instructions"
	SessionAnswering    SessionState = "answering"
	SessionCompleted    SessionState = "completed"
)

// QuizSession walks one user through one quiz: instructions, then the
// questions in order (with free navigation), then completion. Navigation and
// answering within a session are strictly sequential; the session itself does
// no locking.
type QuizSession struct {
	QuizID    uuid.UUID
	UserID    uuid.UUID
	questions []models.QuizQuestion
	policy    models.ScoringPolicy
	state     SessionState
	current   int
	answers   []*string
}

// AnswerFeedback is the immediate per-answer feedback, recomputed from the
// currently stored answer every time the user selects an option.
type AnswerFeedback struct {
	QuestionID  int    `json:"question_id"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

type SessionSnapshot struct {
	QuizID          uuid.UUID    `json:"quiz_id"`
	State           SessionState `json:"state"`
	CurrentQuestion int          `json:"current_question"`
	TotalQuestions  int          `json:"total_questions"`
	Answers         []*string    `json:"answers"`
}

func NewQuizSession(quizID, userID uuid.UUID, questions []models.QuizQuestion, policy models.ScoringPolicy) *QuizSession {
	return &QuizSession{
		QuizID:    quizID,
		UserID:    userID,
		questions: questions,
		policy:    policy,
		state:     SessionInstructions,
		answers:   make([]*string, len(questions)),
	}
}

func (s *QuizSession) Start() error {
	switch s.state {
	case SessionCompleted:
		return ErrSessionCompleted
	case SessionAnswering:
		return ErrAlreadyStarted
	}
	s.state = SessionAnswering
	s.current = 0
	return nil
}

// Select records the chosen option for the current question. Selecting again
// before advancing overwrites the previous choice.
func (s *QuizSession) Select(optionID string) (AnswerFeedback, error) {
	if err := s.requireAnswering(); err != nil {
		return AnswerFeedback{}, err
	}

	question := s.questions[s.current]
	valid := false
	for _, opt := range question.Options {
		if opt.OptionID == optionID {
			valid = true
			break
		}
	}
	if !valid {
		return AnswerFeedback{}, fmt.Errorf("%w: %q", ErrInvalidOption, optionID)
	}

	s.answers[s.current] = &optionID
	return AnswerFeedback{
		QuestionID:  question.QuestionID,
		IsCorrect:   optionID == question.CorrectOptionID,
		Explanation: question.ExplanationText(),
	}, nil
}

// Next advances to the following question, or completes the session when
// called on the last one. Moving forward requires the current question to be
// answered.
func (s *QuizSession) Next() (completed bool, err error) {
	if err := s.requireAnswering(); err != nil {
		return false, err
	}
	if s.answers[s.current] == nil {
		return false, ErrAnswerRequired
	}
	if s.current == len(s.questions)-1 {
		s.state = SessionCompleted
		return true, nil
	}
	s.current++
	return false, nil
}

// Previous is always allowed regardless of answer state, except on the first
// question. Recorded answers are preserved.
func (s *QuizSession) Previous() error {
	if err := s.requireAnswering(); err != nil {
		return err
	}
	if s.current == 0 {
		return ErrInvalidQuestion
	}
	s.current--
	return nil
}

// Jump moves directly to any question without sequential traversal. Jumping
// from the instructions screen starts the session.
func (s *QuizSession) Jump(index int) error {
	if s.state == SessionCompleted {
		return ErrSessionCompleted
	}
	if index < 0 || index >= len(s.questions) {
		return ErrInvalidQuestion
	}
	s.state = SessionAnswering
	s.current = index
	return nil
}

// Score grades the session. Only valid once completed.
func (s *QuizSession) Score() (ScoreResult, error) {
	if s.state != SessionCompleted {
		return ScoreResult{}, ErrSessionNotStarted
	}
	return ScoreAnswers(s.questions, s.answers, s.policy), nil
}

func (s *QuizSession) Questions() []models.QuizQuestion {
	return s.questions
}

func (s *QuizSession) Policy() models.ScoringPolicy {
	return s.policy
}

// Answers returns a copy of the recorded answers, aligned to question order.
func (s *QuizSession) Answers() []*string {
	out := make([]*string, len(s.answers))
	copy(out, s.answers)
	return out
}

func (s *QuizSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		QuizID:          s.QuizID,
		State:           s.state,
		CurrentQuestion: s.current,
		TotalQuestions:  len(s.questions),
		Answers:         s.Answers(),
	}
}

func (s *QuizSession) requireAnswering() error {
	switch s.state {
	case SessionCompleted:
		return ErrSessionCompleted
	case SessionInstructions:
		return ErrSessionNotStarted
	}
	return nil
}

// SessionManager holds the in-memory sessions, keyed by quiz and user.
// Creating a session for a quiz that already has one replaces it: restarting
// discards all previously recorded answers.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*QuizSession
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*QuizSession)}
}

func sessionKey(quizID, userID uuid.UUID) string {
	return quizID.String() + "|" + userID.String()
}

func (m *SessionManager) Create(quiz *models.Quiz) (*QuizSession, error) {
	questions, err := quiz.DecodeQuestions()
	if err != nil {
		return nil, err
	}

	stored, err := quiz.DecodeScoring()
	if err != nil {
		return nil, err
	}
	policy := models.DefaultScoringPolicy(len(questions))
	if stored != nil && !stored.ScoringPolicy.IsZero() {
		policy = stored.ScoringPolicy
	}

	session := NewQuizSession(quiz.ID, quiz.UserID, questions, policy)

	m.mu.Lock()
	m.sessions[sessionKey(quiz.ID, quiz.UserID)] = session
	m.mu.Unlock()
	return session, nil
}

func (m *SessionManager) Get(quizID, userID uuid.UUID) (*QuizSession, error) {
	m.mu.RLock()
	session, ok := m.sessions[sessionKey(quizID, userID)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *SessionManager) Remove(quizID, userID uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, sessionKey(quizID, userID))
	m.mu.Unlock()
}

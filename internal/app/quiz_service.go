package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"qcm-challenge/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
// Put indexes a session by id and by its user's name and returns the session it
// displaced for that name, if any.
type SessionRepository interface {
	Put(session *Session) (previous *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// DefaultRetention is how long a finished sitting stays readable before it is
// dropped from the registry.
const DefaultRetention = 10 * time.Minute

// QuizSettings configures the sittings the service creates.
type QuizSettings struct {
	Duration     time.Duration
	AdvanceDelay time.Duration
	AllowRestart bool
	Retention    time.Duration
	Clock        Clock
	NewID        func() string
}

// QuizService contains the quiz use cases: starting sittings, forwarding
// student actions and recording results.
type QuizService struct {
	sessions     SessionRepository
	bank         *QuestionBank
	gate         *CompletionGate
	participants *ParticipantLog
	settings     QuizSettings
}

func NewQuizService(sessions SessionRepository, bank *QuestionBank, gate *CompletionGate, participants *ParticipantLog, settings QuizSettings) *QuizService {
	if settings.Clock == nil {
		settings.Clock = SystemClock()
	}
	if settings.NewID == nil {
		settings.NewID = uuid.NewString
	}
	if settings.Retention <= 0 {
		settings.Retention = DefaultRetention
	}
	return &QuizService{
		sessions:     sessions,
		bank:         bank,
		gate:         gate,
		participants: participants,
		settings:     settings,
	}
}

// StartSession opens a sitting for a student who has not completed the quiz yet.
func (s *QuizService) StartSession(ctx context.Context, user domain.User) (*Session, error) {
	user, err := NewStudent(user.Name, user.Pole, user.Phone)
	if err != nil {
		return nil, err
	}
	return s.start(ctx, user, true)
}

// Restart replaces a sitting with a fresh one for the same user. Users already
// in the completion gate may only restart when AllowRestart is set.
func (s *QuizService) Restart(ctx context.Context, sessionID string) (*Session, error) {
	old, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.start(ctx, old.User(), !s.settings.AllowRestart)
}

func (s *QuizService) start(ctx context.Context, user domain.User, checkGate bool) (*Session, error) {
	if checkGate {
		done, err := s.gate.Has(ctx, user.Name)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, domain.ErrAlreadyCompleted
		}
	}

	questions, err := s.bank.Sequence(ctx, user.Pole)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	id := s.settings.NewID()
	session := NewSession(id, user, questions, SessionOptions{
		Duration:     s.settings.Duration,
		AdvanceDelay: s.settings.AdvanceDelay,
		Clock:        s.settings.Clock,
		OnFinish: func(record domain.ParticipantRecord) error {
			s.scheduleEviction(id)
			return s.recordResult(record)
		},
	})

	// The displaced sitting's clock must stop before the new one starts ticking.
	if previous := s.sessions.Put(session); previous != nil && previous != session {
		previous.Abort()
		s.sessions.Delete(previous.ID())
	}
	if err := session.Start(); err != nil {
		s.sessions.Delete(session.ID())
		return nil, err
	}
	log.Printf("session %s started for %q (%d questions)", session.ID(), user.Name, len(questions))
	return session, nil
}

// scheduleEviction drops a finished sitting once its result has been readable
// for the retention period.
func (s *QuizService) scheduleEviction(sessionID string) {
	s.settings.Clock.AfterFunc(s.settings.Retention, func() {
		s.sessions.Delete(sessionID)
	})
}

func (s *QuizService) recordResult(record domain.ParticipantRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// the gate is written before the record
	if err := s.gate.Register(ctx, record.Name); err != nil {
		return err
	}
	if err := s.participants.Append(ctx, record); err != nil {
		return err
	}
	log.Printf("recorded result for %q: %d/%d (%d%%)", record.Name, record.Score, record.MaxScore, record.Percentage)
	return nil
}

// Snapshot returns the state of a sitting.
func (s *QuizService) Snapshot(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// SelectAnswer forwards an answer to the sitting.
func (s *QuizService) SelectAnswer(_ context.Context, sessionID string, index int) (domain.SessionSnapshot, error) {
	return s.act(sessionID, func(session *Session) error { return session.SelectAnswer(index) })
}

// Skip moves the sitting past its current question.
func (s *QuizService) Skip(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	return s.act(sessionID, (*Session).Skip)
}

// End finishes the sitting immediately.
func (s *QuizService) End(_ context.Context, sessionID string) (domain.SessionSnapshot, error) {
	return s.act(sessionID, (*Session).End)
}

// Subscribe returns a channel of snapshots for a sitting.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionSnapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

func (s *QuizService) act(sessionID string, fn func(*Session) error) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	if err := fn(session); err != nil {
		return session.Snapshot(), err
	}
	return session.Snapshot(), nil
}

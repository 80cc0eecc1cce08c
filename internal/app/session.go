package app

import (
	"log"
	"sync"
	"time"

	"qcm-challenge/internal/domain"
)

// DefaultDuration is the countdown budget of a sitting.
const DefaultDuration = 120 * time.Second

// DefaultAdvanceDelay leaves the answer feedback visible before moving on.
const DefaultAdvanceDelay = time.Second

// SessionOptions tunes a quiz session.
type SessionOptions struct {
	Duration     time.Duration
	AdvanceDelay time.Duration
	Clock        Clock
	// OnFinish receives the participant record exactly once, under the session lock.
	OnFinish func(domain.ParticipantRecord) error
}

// Session is one user's sitting over a fixed question sequence.
// All transitions, including countdown ticks and delayed advances, are
// serialized by mu.
type Session struct {
	id        string
	user      domain.User
	questions []domain.Question
	budget    int
	delay     time.Duration
	clock     Clock
	onFinish  func(domain.ParticipantRecord) error

	mu            sync.Mutex
	status        domain.SessionStatus
	cursor        int
	score         int
	answers       []domain.AnswerEntry
	answered      bool
	remaining     int
	reason        domain.FinishReason
	result        *domain.ParticipantRecord
	done          chan struct{}
	cancelAdvance func() bool
	subscribers   map[chan domain.SessionSnapshot]struct{}
}

// NewSession builds a session in the NotStarted state.
func NewSession(id string, user domain.User, questions []domain.Question, opts SessionOptions) *Session {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.AdvanceDelay < 0 {
		opts.AdvanceDelay = 0
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	budget := int(opts.Duration / time.Second)
	if budget < 1 {
		budget = 1
	}
	seq := make([]domain.Question, len(questions))
	copy(seq, questions)
	return &Session{
		id:          id,
		user:        user,
		questions:   seq,
		budget:      budget,
		delay:       opts.AdvanceDelay,
		clock:       opts.Clock,
		onFinish:    opts.OnFinish,
		status:      domain.StatusNotStarted,
		remaining:   budget,
		subscribers: make(map[chan domain.SessionSnapshot]struct{}),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) User() domain.User { return s.user }

// Start activates the session and begins the countdown.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusNotStarted {
		return domain.ErrSessionStarted
	}
	if len(s.questions) == 0 {
		return domain.ErrNoQuestions
	}
	s.cursor = 0
	s.score = 0
	s.answers = make([]domain.AnswerEntry, 0, len(s.questions))
	s.answered = false
	s.remaining = s.budget
	s.status = domain.StatusActive

	s.done = make(chan struct{})
	go s.run(s.clock.NewTicker(time.Second), s.done)

	s.broadcastLocked()
	return nil
}

func (s *Session) run(ticker Ticker, done <-chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			if err := s.Tick(); err != nil {
				log.Printf("session %s: finish on expiry: %v", s.id, err)
			}
		}
	}
}

// Tick consumes one second of the budget and finishes the session when it runs out.
func (s *Session) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return nil
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		return s.finishLocked(domain.FinishExpired)
	}
	s.broadcastLocked()
	return nil
}

// SelectAnswer scores the current question and locks it until the cursor moves.
func (s *Session) SelectAnswer(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return domain.ErrSessionNotActive
	}
	if s.answered {
		return domain.ErrAlreadyAnswered
	}
	question := s.questions[s.cursor]
	if index < 0 || index >= len(question.Options) {
		return domain.ErrOptionOutOfRange
	}

	correct := index == question.Correct
	s.answers = append(s.answers, domain.AnswerEntry{
		QuestionID: question.ID,
		Selected:   index,
		Correct:    correct,
	})
	if correct {
		s.score++
	}
	s.answered = true
	s.broadcastLocked()

	if s.delay <= 0 {
		return s.advanceLocked()
	}
	cursor := s.cursor
	s.cancelAdvance = s.clock.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.status != domain.StatusActive || s.cursor != cursor || !s.answered {
			return
		}
		s.cancelAdvance = nil
		if err := s.advanceLocked(); err != nil {
			log.Printf("session %s: finish after last answer: %v", s.id, err)
		}
	})
	return nil
}

// Skip moves past the current question without scoring it. The skip is logged
// with domain.SkippedIndex so the answer log stays aligned with the cursor.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return domain.ErrSessionNotActive
	}
	if s.answered {
		return domain.ErrAlreadyAnswered
	}
	s.answers = append(s.answers, domain.AnswerEntry{
		QuestionID: s.questions[s.cursor].ID,
		Selected:   domain.SkippedIndex,
		Skipped:    true,
	})
	s.answered = true
	return s.advanceLocked()
}

// End finishes the session immediately, whatever remains.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusActive {
		return domain.ErrSessionNotActive
	}
	return s.finishLocked(domain.FinishEnded)
}

// Abort stops the clock of a session that is being replaced. No record is written.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusFinished {
		return
	}
	s.status = domain.StatusFinished
	s.reason = domain.FinishAborted
	s.stopClockLocked()
	s.broadcastLocked()
}

func (s *Session) advanceLocked() error {
	if s.cursor < len(s.questions)-1 {
		s.cursor++
		s.answered = false
		s.broadcastLocked()
		return nil
	}
	return s.finishLocked(domain.FinishCompleted)
}

func (s *Session) finishLocked(reason domain.FinishReason) error {
	if s.status == domain.StatusFinished {
		return nil
	}
	s.status = domain.StatusFinished
	s.reason = reason
	s.stopClockLocked()

	maxScore := len(s.questions)
	record := domain.ParticipantRecord{
		Name:          s.user.Name,
		Pole:          s.user.Pole,
		Phone:         s.user.Phone,
		Score:         s.score,
		MaxScore:      maxScore,
		Percentage:    domain.Percentage(s.score, maxScore),
		DateSubmitted: s.clock.Now(),
	}
	s.result = &record
	s.broadcastLocked()

	if s.onFinish == nil {
		return nil
	}
	return s.onFinish(record)
}

func (s *Session) stopClockLocked() {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	if s.cancelAdvance != nil {
		s.cancelAdvance()
		s.cancelAdvance = nil
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel of snapshots, primed with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionSnapshot, func()) {
	ch := make(chan domain.SessionSnapshot, 8)

	// sent under the lock: later broadcasts queue behind it
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the oldest update so a slow reader never blocks a transition
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	answers := make([]domain.AnswerEntry, len(s.answers))
	copy(answers, s.answers)

	snap := domain.SessionSnapshot{
		SessionID:        s.id,
		User:             s.user,
		Status:           s.status,
		Cursor:           s.cursor,
		Total:            len(s.questions),
		Score:            s.score,
		Answered:         s.answered,
		RemainingSeconds: s.remaining,
		Answers:          answers,
		FinishReason:     s.reason,
	}
	if s.status == domain.StatusActive {
		q := s.questions[s.cursor]
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		snap.Question = &domain.QuestionView{ID: q.ID, Text: q.Text, Options: options}
	}
	if s.result != nil {
		result := *s.result
		snap.Result = &result
	}
	return snap
}

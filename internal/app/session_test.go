package app_test

import (
	"errors"
	"testing"
	"time"

	"qcm-challenge/internal/app"
	"qcm-challenge/internal/domain"
)

type recorder struct {
	records []domain.ParticipantRecord
}

func (r *recorder) onFinish(rec domain.ParticipantRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func newTestSession(t *testing.T, questions []domain.Question, delay time.Duration) (*app.Session, *manualClock, *recorder) {
	t.Helper()
	clock := newManualClock()
	rec := &recorder{}
	session := app.NewSession("s1", domain.User{Name: "Alice", Pole: "Data Science", Phone: "0600"}, questions, app.SessionOptions{
		Duration:     app.DefaultDuration,
		AdvanceDelay: delay,
		Clock:        clock,
		OnFinish:     rec.onFinish,
	})
	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return session, clock, rec
}

func makeQuestions(correct ...int) []domain.Question {
	questions := make([]domain.Question, len(correct))
	for i, c := range correct {
		questions[i] = domain.Question{
			ID:      int64(i + 1),
			Text:    "question",
			Options: []string{"a", "b", "c", "d"},
			Correct: c,
		}
	}
	return questions
}

func TestAllCorrectAnswersScoreFull(t *testing.T) {
	questions := makeQuestions(0, 3, 1, 2, 2)
	session, _, rec := newTestSession(t, questions, 0)

	for _, q := range questions {
		if err := session.SelectAnswer(q.Correct); err != nil {
			t.Fatalf("select: %v", err)
		}
	}

	snap := session.Snapshot()
	if snap.Status != domain.StatusFinished || snap.FinishReason != domain.FinishCompleted {
		t.Fatalf("expected completed session, got %s/%s", snap.Status, snap.FinishReason)
	}
	if snap.Score != len(questions) {
		t.Fatalf("expected score %d, got %d", len(questions), snap.Score)
	}
	if len(rec.records) != 1 || rec.records[0].Percentage != 100 {
		t.Fatalf("expected one 100%% record, got %+v", rec.records)
	}
}

func TestAnswerLogTracksCursor(t *testing.T) {
	session, _, _ := newTestSession(t, makeQuestions(0, 1, 2, 3, 0, 1), 0)

	actions := []func() error{
		func() error { return session.SelectAnswer(0) },
		func() error { return session.Skip() },
		func() error { return session.SelectAnswer(3) },
		func() error { return session.Skip() },
		func() error { return session.SelectAnswer(0) },
	}
	for i, act := range actions {
		if err := act(); err != nil {
			t.Fatalf("action %d: %v", i, err)
		}
		snap := session.Snapshot()
		if snap.Status != domain.StatusActive {
			t.Fatalf("action %d: expected active, got %s", i, snap.Status)
		}
		if len(snap.Answers) != snap.Cursor {
			t.Fatalf("action %d: answer log %d != cursor %d", i, len(snap.Answers), snap.Cursor)
		}
	}

	snap := session.Snapshot()
	if !snap.Answers[1].Skipped || snap.Answers[1].Selected != domain.SkippedIndex || snap.Answers[1].Correct {
		t.Fatalf("expected skip entry, got %+v", snap.Answers[1])
	}
	if snap.Score != 2 {
		t.Fatalf("expected score 2, got %d", snap.Score)
	}
}

func TestCountdownExpiryFinishesWithoutAnswers(t *testing.T) {
	session, _, rec := newTestSession(t, makeQuestions(0, 1, 2), 0)

	for i := 0; i < 119; i++ {
		if err := session.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if snap := session.Snapshot(); snap.Status != domain.StatusActive || snap.RemainingSeconds != 1 {
		t.Fatalf("expected active with 1s left, got %s/%d", snap.Status, snap.RemainingSeconds)
	}

	if err := session.Tick(); err != nil {
		t.Fatalf("last tick: %v", err)
	}
	snap := session.Snapshot()
	if snap.Status != domain.StatusFinished || snap.FinishReason != domain.FinishExpired {
		t.Fatalf("expected expired session, got %s/%s", snap.Status, snap.FinishReason)
	}
	if snap.Score != 0 || len(snap.Answers) != 0 {
		t.Fatalf("expected empty result, got score=%d answers=%d", snap.Score, len(snap.Answers))
	}
	if len(rec.records) != 1 || rec.records[0].MaxScore != 3 {
		t.Fatalf("expected one record with maxScore 3, got %+v", rec.records)
	}

	// further ticks are ignored
	if err := session.Tick(); err != nil {
		t.Fatalf("tick after finish: %v", err)
	}
	if len(rec.records) != 1 {
		t.Fatalf("finish ran twice")
	}
}

func TestSecondSelectIsRejectedUntilAdvance(t *testing.T) {
	session, clock, _ := newTestSession(t, makeQuestions(1, 2), time.Second)

	if err := session.SelectAnswer(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := session.SelectAnswer(0); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if err := session.Skip(); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected skip to be locked, got %v", err)
	}
	snap := session.Snapshot()
	if len(snap.Answers) != 1 || snap.Score != 1 || snap.Cursor != 0 || !snap.Answered {
		t.Fatalf("second select mutated state: %+v", snap)
	}

	clock.RunPending()
	snap = session.Snapshot()
	if snap.Cursor != 1 || snap.Answered {
		t.Fatalf("expected advance to question 2, got cursor=%d answered=%v", snap.Cursor, snap.Answered)
	}
	if len(snap.Answers) != snap.Cursor {
		t.Fatalf("answer log %d != cursor %d", len(snap.Answers), snap.Cursor)
	}
}

func TestEndAfterPartialAnswers(t *testing.T) {
	session, _, rec := newTestSession(t, makeQuestions(0, 0, 0, 0, 0, 0, 0, 0, 0, 0), 0)

	for _, idx := range []int{0, 1, 0} {
		if err := session.SelectAnswer(idx); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	if err := session.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected one record, got %d", len(rec.records))
	}
	got := rec.records[0]
	if got.MaxScore != 10 || got.Score != 2 || got.Percentage != 20 {
		t.Fatalf("unexpected record %+v", got)
	}
	if err := session.End(); !errors.Is(err, domain.ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive on second end, got %v", err)
	}
	if err := session.SelectAnswer(0); !errors.Is(err, domain.ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive after finish, got %v", err)
	}
}

func TestTwoQuestionEndToEnd(t *testing.T) {
	session, clock, rec := newTestSession(t, makeQuestions(0, 1), time.Second)

	if err := session.SelectAnswer(0); err != nil {
		t.Fatalf("select 1: %v", err)
	}
	clock.RunPending()
	if err := session.SelectAnswer(1); err != nil {
		t.Fatalf("select 2: %v", err)
	}
	if session.Snapshot().Status != domain.StatusActive {
		t.Fatalf("session should wait for the feedback delay")
	}
	clock.RunPending()

	snap := session.Snapshot()
	if snap.Status != domain.StatusFinished || snap.Score != 2 {
		t.Fatalf("expected finished with score 2, got %s/%d", snap.Status, snap.Score)
	}
	if snap.Result == nil || snap.Result.Percentage != 100 || snap.Result.MaxScore != 2 {
		t.Fatalf("unexpected result %+v", snap.Result)
	}
	if len(rec.records) != 1 || rec.records[0].Name != "Alice" || rec.records[0].Pole != "Data Science" {
		t.Fatalf("unexpected records %+v", rec.records)
	}
	if !rec.records[0].DateSubmitted.Equal(clock.Now()) {
		t.Fatalf("record should be stamped with the session clock")
	}
}

func TestExpiryCancelsPendingAdvance(t *testing.T) {
	session, clock, rec := newTestSession(t, makeQuestions(0, 1), time.Second)

	if err := session.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := 0; i < 120; i++ {
		_ = session.Tick()
	}
	if clock.PendingCount() != 0 {
		t.Fatalf("finish should cancel the pending advance")
	}
	clock.RunPending()

	snap := session.Snapshot()
	if snap.Status != domain.StatusFinished || snap.Cursor != 0 || snap.Score != 1 {
		t.Fatalf("unexpected state after expiry: %+v", snap)
	}
	if len(rec.records) != 1 || rec.records[0].Percentage != 50 {
		t.Fatalf("unexpected records %+v", rec.records)
	}
}

func TestStartGuards(t *testing.T) {
	empty := app.NewSession("empty", domain.User{Name: "Bob"}, nil, app.SessionOptions{Clock: newManualClock()})
	if err := empty.Start(); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if empty.Snapshot().Status != domain.StatusNotStarted {
		t.Fatalf("failed start must leave the session untouched")
	}

	session, _, _ := newTestSession(t, makeQuestions(0), 0)
	if err := session.Start(); !errors.Is(err, domain.ErrSessionStarted) {
		t.Fatalf("expected ErrSessionStarted, got %v", err)
	}
	if err := session.SelectAnswer(4); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange, got %v", err)
	}
	if err := session.SelectAnswer(-1); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange, got %v", err)
	}
}

func TestAbortWritesNoRecord(t *testing.T) {
	session, _, rec := newTestSession(t, makeQuestions(0, 1), 0)
	session.Abort()

	snap := session.Snapshot()
	if snap.Status != domain.StatusFinished || snap.FinishReason != domain.FinishAborted {
		t.Fatalf("expected aborted session, got %s/%s", snap.Status, snap.FinishReason)
	}
	if len(rec.records) != 0 {
		t.Fatalf("abort must not record a result")
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	session, _, _ := newTestSession(t, makeQuestions(2, 2), 0)

	ch, cancel := session.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.Question == nil || initial.RemainingSeconds != 120 {
		t.Fatalf("unexpected initial snapshot %+v", initial)
	}

	if err := session.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if update := <-ch; update.RemainingSeconds != 119 {
		t.Fatalf("expected 119s left, got %d", update.RemainingSeconds)
	}
}

func TestSubscribeDuringTicksKeepsOrder(t *testing.T) {
	session, _, _ := newTestSession(t, makeQuestions(2, 2), 0)

	started := make(chan struct{})
	ticked := make(chan struct{})
	go func() {
		defer close(ticked)
		for i := 0; i < 60; i++ {
			if i == 5 {
				close(started)
			}
			_ = session.Tick()
		}
	}()

	<-started
	ch, cancel := session.Subscribe()
	defer cancel()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatalf("ticks blocked while a subscriber was joining")
	}

	last := 121
	for {
		select {
		case snap := <-ch:
			if snap.RemainingSeconds > last {
				t.Fatalf("received %ds after %ds", snap.RemainingSeconds, last)
			}
			last = snap.RemainingSeconds
			continue
		default:
		}
		break
	}
	if last != 60 {
		t.Fatalf("expected the latest snapshot to show 60s, got %d", last)
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		score, max, want int
	}{
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := domain.Percentage(c.score, c.max); got != c.want {
			t.Fatalf("Percentage(%d, %d) = %d, want %d", c.score, c.max, got, c.want)
		}
	}
}

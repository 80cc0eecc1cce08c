package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"qcm-challenge/internal/domain"
)

// QuestionBank serves the ordered question list. A non-empty stored list wins
// over the in-memory defaults, which the data source may replace at startup.
type QuestionBank struct {
	kv    KeyValueStore
	clock func() time.Time
	sf    singleflight.Group

	mu       sync.RWMutex
	defaults []domain.Question

	edit sync.Mutex
}

func NewQuestionBank(kv KeyValueStore, defaults []domain.Question) *QuestionBank {
	return &QuestionBank{kv: kv, clock: time.Now, defaults: cloneQuestions(defaults)}
}

// SetDefaults replaces the fallback list.
func (b *QuestionBank) SetDefaults(questions []domain.Question) {
	b.mu.Lock()
	b.defaults = cloneQuestions(questions)
	b.mu.Unlock()
}

// All returns the active question list.
func (b *QuestionBank) All(ctx context.Context) ([]domain.Question, error) {
	result, err, _ := b.sf.Do(domain.KeyQuestions, func() (interface{}, error) {
		stored, ok, err := loadOrAbsent[[]domain.Question](ctx, b.kv, domain.KeyQuestions)
		if err != nil {
			return nil, err
		}
		if ok && len(stored) > 0 {
			return stored, nil
		}
		b.mu.RLock()
		defer b.mu.RUnlock()
		return b.defaults, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

// Sequence returns the questions a student of pole sits: the ones tagged with
// the pole plus the untagged ones, in bank order.
func (b *QuestionBank) Sequence(ctx context.Context, pole string) ([]domain.Question, error) {
	all, err := b.All(ctx)
	if err != nil {
		return nil, err
	}
	seq := make([]domain.Question, 0, len(all))
	for _, q := range all {
		if q.Pole == "" || q.Pole == pole {
			seq = append(seq, q)
		}
	}
	return seq, nil
}

// Add validates q, stamps a fresh id and appends it.
func (b *QuestionBank) Add(ctx context.Context, q domain.Question) (domain.Question, error) {
	return b.mutate(ctx, q, func(list []domain.Question, q domain.Question) ([]domain.Question, domain.Question, error) {
		q.ID = nextID(list, b.clock().UnixMilli())
		return append(list, q), q, nil
	})
}

// Update replaces the question at index. The question keeps its id so
// answer log entries still point at it.
func (b *QuestionBank) Update(ctx context.Context, index int, q domain.Question) (domain.Question, error) {
	return b.mutate(ctx, q, func(list []domain.Question, q domain.Question) ([]domain.Question, domain.Question, error) {
		if index < 0 || index >= len(list) {
			return nil, q, domain.ErrIndexOutOfRange
		}
		q.ID = list[index].ID
		list[index] = q
		return list, q, nil
	})
}

// Delete removes the question at index.
func (b *QuestionBank) Delete(ctx context.Context, index int) error {
	b.edit.Lock()
	defer b.edit.Unlock()

	list, err := b.current(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return domain.ErrIndexOutOfRange
	}
	list = append(list[:index], list[index+1:]...)
	return b.save(ctx, list)
}

func (b *QuestionBank) mutate(ctx context.Context, q domain.Question, apply func([]domain.Question, domain.Question) ([]domain.Question, domain.Question, error)) (domain.Question, error) {
	q, err := normalizeQuestion(q)
	if err != nil {
		return domain.Question{}, err
	}

	b.edit.Lock()
	defer b.edit.Unlock()

	list, err := b.current(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	list, q, err = apply(list, q)
	if err != nil {
		return domain.Question{}, err
	}
	if err := b.save(ctx, list); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// current reads the list for an edit. It bypasses the singleflight group:
// joining a read that started before the previous save would lose that save.
func (b *QuestionBank) current(ctx context.Context) ([]domain.Question, error) {
	stored, ok, err := loadOrAbsent[[]domain.Question](ctx, b.kv, domain.KeyQuestions)
	if err != nil {
		return nil, err
	}
	if ok && len(stored) > 0 {
		return stored, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneQuestions(b.defaults), nil
}

func (b *QuestionBank) save(ctx context.Context, list []domain.Question) error {
	err := saveJSON(ctx, b.kv, domain.KeyQuestions, list)
	b.sf.Forget(domain.KeyQuestions)
	return err
}

// nextID returns candidate unless an existing question already holds it or a
// later id, in which case it continues after the highest one.
func nextID(list []domain.Question, candidate int64) int64 {
	for _, q := range list {
		if q.ID >= candidate {
			candidate = q.ID + 1
		}
	}
	return candidate
}

func normalizeQuestion(q domain.Question) (domain.Question, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Pole = strings.TrimSpace(q.Pole)
	if q.Text == "" {
		return q, domain.Invalid("question", "question text is required")
	}
	if len(q.Options) != domain.OptionCount {
		return q, domain.Invalid("options", "exactly four options are required")
	}
	options := make([]string, len(q.Options))
	for i, o := range q.Options {
		options[i] = strings.TrimSpace(o)
		if options[i] == "" {
			return q, domain.Invalid("options", "options must not be empty")
		}
	}
	q.Options = options
	if !q.ValidCorrect() {
		return q, domain.Invalid("correct", "correct answer must be between 0 and 3")
	}
	return q, nil
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

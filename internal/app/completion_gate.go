package app

import (
	"context"
	"sync"

	"qcm-challenge/internal/domain"
)

// CompletionGate remembers which identities already finished the quiz.
// Every call reads the full list from the store; nothing is cached.
type CompletionGate struct {
	kv KeyValueStore
	mu sync.Mutex
}

func NewCompletionGate(kv KeyValueStore) *CompletionGate {
	return &CompletionGate{kv: kv}
}

// Has reports whether name already completed a session.
func (g *CompletionGate) Has(ctx context.Context, name string) (bool, error) {
	names, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Register adds name to the gate. Registering a present name is a no-op.
func (g *CompletionGate) Register(ctx context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	names, err := g.load(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return saveJSON(ctx, g.kv, domain.KeyCompletedStudents, append(names, name))
}

// Names lists every registered identity in registration order.
func (g *CompletionGate) Names(ctx context.Context) ([]string, error) {
	return g.load(ctx)
}

func (g *CompletionGate) load(ctx context.Context) ([]string, error) {
	names, _, err := loadOrAbsent[[]string](ctx, g.kv, domain.KeyCompletedStudents)
	return names, err
}

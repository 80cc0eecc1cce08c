package app

import (
	"context"
	"strings"
	"sync"

	"qcm-challenge/internal/domain"
)

// PoleUsage pairs a pole with the number of participant records filed under it.
type PoleUsage struct {
	Name         string `json:"name"`
	Participants int    `json:"participants"`
}

// PoleRegistry manages the pole list shown at login.
type PoleRegistry struct {
	kv KeyValueStore

	mu       sync.RWMutex
	defaults []string

	edit sync.Mutex
}

func NewPoleRegistry(kv KeyValueStore, defaults []string) *PoleRegistry {
	return &PoleRegistry{kv: kv, defaults: append([]string(nil), defaults...)}
}

// SetDefaults replaces the fallback list.
func (r *PoleRegistry) SetDefaults(poles []string) {
	r.mu.Lock()
	r.defaults = append([]string(nil), poles...)
	r.mu.Unlock()
}

// List returns the stored poles, or the defaults when none are stored.
func (r *PoleRegistry) List(ctx context.Context) ([]string, error) {
	stored, ok, err := loadOrAbsent[[]string](ctx, r.kv, domain.KeyPoles)
	if err != nil {
		return nil, err
	}
	if ok && len(stored) > 0 {
		return stored, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.defaults...), nil
}

// Add appends a new pole; duplicates are rejected.
func (r *PoleRegistry) Add(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", "enter a pole name")
	}

	r.edit.Lock()
	defer r.edit.Unlock()

	poles, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range poles {
		if p == name {
			return nil, domain.ErrPoleExists
		}
	}
	poles = append(poles, name)
	return poles, saveJSON(ctx, r.kv, domain.KeyPoles, poles)
}

// Rename replaces the pole at index.
func (r *PoleRegistry) Rename(ctx context.Context, index int, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("name", "enter a pole name")
	}

	r.edit.Lock()
	defer r.edit.Unlock()

	poles, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(poles) {
		return nil, domain.ErrIndexOutOfRange
	}
	poles[index] = name
	return poles, saveJSON(ctx, r.kv, domain.KeyPoles, poles)
}

// Delete removes the pole at index. Participant records keep their pole.
func (r *PoleRegistry) Delete(ctx context.Context, index int) ([]string, error) {
	r.edit.Lock()
	defer r.edit.Unlock()

	poles, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(poles) {
		return nil, domain.ErrIndexOutOfRange
	}
	poles = append(poles[:index], poles[index+1:]...)
	return poles, saveJSON(ctx, r.kv, domain.KeyPoles, poles)
}

// Usage counts participant records per listed pole.
func (r *PoleRegistry) Usage(ctx context.Context, participants *ParticipantLog) ([]PoleUsage, error) {
	poles, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := participants.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(poles))
	for _, rec := range records {
		counts[rec.Pole]++
	}
	usage := make([]PoleUsage, len(poles))
	for i, p := range poles {
		usage[i] = PoleUsage{Name: p, Participants: counts[p]}
	}
	return usage, nil
}

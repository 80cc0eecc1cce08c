package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"qcm-challenge/internal/domain"
)

// KeyValueStore abstracts the persistent store (in-memory, Redis, Postgres).
// Values are JSON documents; Get returns domain.ErrKeyNotFound for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// loadJSON decodes the value stored under key. The bool is false when the key is absent.
// Malformed values yield a *domain.DecodeError.
func loadJSON[T any](ctx context.Context, kv KeyValueStore, key string) (T, bool, error) {
	var out T
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, &domain.DecodeError{Key: key, Err: err}
	}
	return out, true, nil
}

// loadOrAbsent is loadJSON for callers that keep their defaults on bad data:
// decode failures are logged and reported as absent, store failures still propagate.
func loadOrAbsent[T any](ctx context.Context, kv KeyValueStore, key string) (T, bool, error) {
	out, ok, err := loadJSON[T](ctx, kv, key)
	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		log.Printf("ignoring stored value: %v", decodeErr)
		var zero T
		return zero, false, nil
	}
	return out, ok, err
}

func saveJSON(ctx context.Context, kv KeyValueStore, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

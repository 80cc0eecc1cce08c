package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"qcm-challenge/internal/app"
	"qcm-challenge/internal/domain"
	"qcm-challenge/internal/infra/memory"
)

func TestCompletionGateRegisterIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	gate := app.NewCompletionGate(kv)

	if ok, err := gate.Has(ctx, "Alice"); err != nil || ok {
		t.Fatalf("expected empty gate, got %v %v", ok, err)
	}
	for i := 0; i < 2; i++ {
		if err := gate.Register(ctx, "Alice"); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	if ok, _ := gate.Has(ctx, "Alice"); !ok {
		t.Fatalf("expected Alice to be registered")
	}
	raw, err := kv.Get(ctx, domain.KeyCompletedStudents)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(raw) != `["Alice"]` {
		t.Fatalf("expected a single stored entry, got %s", raw)
	}
}

func TestCompletionGateIgnoresMalformedValue(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	_ = kv.Set(ctx, domain.KeyCompletedStudents, []byte(`{not json`))
	gate := app.NewCompletionGate(kv)

	ok, err := gate.Has(ctx, "Alice")
	if err != nil || ok {
		t.Fatalf("malformed value should read as empty, got %v %v", ok, err)
	}
	if err := gate.Register(ctx, "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if ok, _ := gate.Has(ctx, "Alice"); !ok {
		t.Fatalf("expected Alice after overwrite")
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	log := app.NewParticipantLog(memory.NewKVStore())
	base := time.Date(2024, 11, 25, 10, 0, 0, 0, time.UTC)

	records := []domain.ParticipantRecord{
		{Name: "five", Score: 5, MaxScore: 10, Percentage: 50, DateSubmitted: base.Add(3 * time.Minute)},
		{Name: "eight-late", Score: 8, MaxScore: 10, Percentage: 80, DateSubmitted: base.Add(2 * time.Minute)},
		{Name: "eight-early", Score: 8, MaxScore: 10, Percentage: 80, DateSubmitted: base},
	}
	for _, r := range records {
		if err := log.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	listed, err := log.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 || listed[0].Name != "five" {
		t.Fatalf("list must keep store order, got %+v", listed)
	}

	sorted, err := log.SortedByScoreDesc(ctx)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	want := []string{"eight-late", "eight-early", "five"}
	for i, name := range want {
		if sorted[i].Name != name {
			t.Fatalf("position %d: want %s, got %s", i, name, sorted[i].Name)
		}
	}
}

func TestGroupedByPole(t *testing.T) {
	ctx := context.Background()
	log := app.NewParticipantLog(memory.NewKVStore())
	base := time.Date(2024, 11, 25, 10, 0, 0, 0, time.UTC)

	for _, r := range []domain.ParticipantRecord{
		{Name: "a", Pole: "Web", Score: 3, MaxScore: 4, Percentage: 75, DateSubmitted: base},
		{Name: "b", Pole: "Data", Score: 1, MaxScore: 4, Percentage: 25, DateSubmitted: base},
		{Name: "c", Pole: "Web", Score: 4, MaxScore: 4, Percentage: 100, DateSubmitted: base},
		{Name: "d", Pole: "Web", Score: 3, MaxScore: 4, Percentage: 75, DateSubmitted: base.Add(time.Hour)},
		{Name: "e", Score: 2, MaxScore: 4, Percentage: 50, DateSubmitted: base},
	} {
		if err := log.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	groups, err := log.GroupedByPole(ctx)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Pole != "Data" || groups[1].Pole != domain.UnknownPole || groups[2].Pole != "Web" {
		t.Fatalf("unexpected pole order %s, %s, %s", groups[0].Pole, groups[1].Pole, groups[2].Pole)
	}
	web := groups[2].Participants
	if web[0].Name != "c" || web[1].Name != "d" || web[2].Name != "a" {
		t.Fatalf("unexpected web order %s, %s, %s", web[0].Name, web[1].Name, web[2].Name)
	}

	stats, err := log.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 5 || stats.HighestScore != 4 || stats.AveragePercent != 65 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestParticipantLogClear(t *testing.T) {
	ctx := context.Background()
	log := app.NewParticipantLog(memory.NewKVStore())
	_ = log.Append(ctx, domain.ParticipantRecord{Name: "a"})
	_ = log.Append(ctx, domain.ParticipantRecord{Name: "a"})

	listed, _ := log.List(ctx)
	if len(listed) != 2 {
		t.Fatalf("duplicates are appended, got %d", len(listed))
	}
	if err := log.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	listed, err := log.List(ctx)
	if err != nil || len(listed) != 0 {
		t.Fatalf("expected empty log, got %d (%v)", len(listed), err)
	}
	if stats := app.Summarize(listed); stats != (domain.ParticipantStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}

type failingStore struct{ memory.KVStore }

var errStoreDown = errors.New("store down")

func (*failingStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }

func TestStoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	kv := &failingStore{}

	if _, err := app.NewCompletionGate(kv).Has(ctx, "Alice"); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error from gate, got %v", err)
	}
	if err := app.NewParticipantLog(kv).Append(ctx, domain.ParticipantRecord{}); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error from log, got %v", err)
	}
}

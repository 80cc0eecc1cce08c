package app

import (
	"context"
	"sort"
	"sync"

	"qcm-challenge/internal/domain"
)

// ParticipantLog is the append-only list of finished sittings.
type ParticipantLog struct {
	kv KeyValueStore
	mu sync.Mutex
}

func NewParticipantLog(kv KeyValueStore) *ParticipantLog {
	return &ParticipantLog{kv: kv}
}

// Append stores record after the existing ones. No dedup is performed.
func (l *ParticipantLog) Append(ctx context.Context, record domain.ParticipantRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.List(ctx)
	if err != nil {
		return err
	}
	return saveJSON(ctx, l.kv, domain.KeyParticipants, append(records, record))
}

// List returns the records in store order.
func (l *ParticipantLog) List(ctx context.Context) ([]domain.ParticipantRecord, error) {
	records, _, err := loadOrAbsent[[]domain.ParticipantRecord](ctx, l.kv, domain.KeyParticipants)
	return records, err
}

// SortedByScoreDesc orders by score, most recent first on ties.
func (l *ParticipantLog) SortedByScoreDesc(ctx context.Context) ([]domain.ParticipantRecord, error) {
	records, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	return SortByScore(records), nil
}

// GroupedByPole buckets records per pole, poles in alphabetical order,
// each bucket by percentage then most recent first.
func (l *ParticipantLog) GroupedByPole(ctx context.Context) ([]domain.PoleGroup, error) {
	records, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByPole(records), nil
}

// Stats summarises the log for the admin dashboard.
func (l *ParticipantLog) Stats(ctx context.Context) (domain.ParticipantStats, error) {
	records, err := l.List(ctx)
	if err != nil {
		return domain.ParticipantStats{}, err
	}
	return Summarize(records), nil
}

// Clear drops every record.
func (l *ParticipantLog) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.kv.Delete(ctx, domain.KeyParticipants)
}

// SortByScore returns a sorted copy of records for the leaderboard.
func SortByScore(records []domain.ParticipantRecord) []domain.ParticipantRecord {
	sorted := make([]domain.ParticipantRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].DateSubmitted.After(sorted[j].DateSubmitted)
	})
	return sorted
}

// GroupByPole buckets records for the admin view.
func GroupByPole(records []domain.ParticipantRecord) []domain.PoleGroup {
	buckets := make(map[string][]domain.ParticipantRecord)
	for _, r := range records {
		pole := r.Pole
		if pole == "" {
			pole = domain.UnknownPole
		}
		buckets[pole] = append(buckets[pole], r)
	}

	poles := make([]string, 0, len(buckets))
	for pole := range buckets {
		poles = append(poles, pole)
	}
	sort.Strings(poles)

	groups := make([]domain.PoleGroup, 0, len(poles))
	for _, pole := range poles {
		list := buckets[pole]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Percentage != list[j].Percentage {
				return list[i].Percentage > list[j].Percentage
			}
			return list[i].DateSubmitted.After(list[j].DateSubmitted)
		})
		groups = append(groups, domain.PoleGroup{Pole: pole, Participants: list})
	}
	return groups
}

// Summarize computes total, rounded average percentage and highest score.
func Summarize(records []domain.ParticipantRecord) domain.ParticipantStats {
	stats := domain.ParticipantStats{Total: len(records)}
	if len(records) == 0 {
		return stats
	}
	sum := 0
	for i, r := range records {
		sum += r.Percentage
		if i == 0 || r.Score > stats.HighestScore {
			stats.HighestScore = r.Score
		}
	}
	stats.AveragePercent = domain.Percentage(sum, len(records)*100)
	return stats
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"focus-tracker/internal/repository"
	"focus-tracker/internal/stats"
)

// MaxHeatmapDays bounds a single heatmap request.
const MaxHeatmapDays = 366 * 2

// StatsService projects a user's trackers into totals, streaks and heatmap cells.
type StatsService interface {
	Summary(ctx context.Context, owner string, loc *time.Location) (stats.Summary, error)
	// Heatmap covers from..to inclusive. Zero bounds default to the year
	// ending today.
	Heatmap(ctx context.Context, owner string, from, to time.Time, loc *time.Location) ([]stats.Cell, time.Time, time.Time, error)
}

type statsService struct {
	trackers repository.TrackerRepository
	now      func() time.Time
}

func NewStatsService(trackers repository.TrackerRepository, now func() time.Time) StatsService {
	if now == nil {
		now = time.Now
	}
	return &statsService{
		trackers: trackers,
		now:      now,
	}
}

func (s *statsService) Summary(ctx context.Context, owner string, loc *time.Location) (stats.Summary, error) {
	trackers, err := s.trackers.ListByOwner(ctx, owner)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("load trackers of %s: %w", owner, err)
	}
	return stats.Summarize(trackers, s.now(), loc), nil
}

func (s *statsService) Heatmap(ctx context.Context, owner string, from, to time.Time, loc *time.Location) ([]stats.Cell, time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if to.IsZero() {
		to = s.now().In(loc)
	}
	if from.IsZero() {
		from = to.AddDate(-1, 0, 1)
	}
	if to.Before(from) {
		return nil, from, to, invalid("from", "from must not be after to")
	}
	if to.Sub(from) > MaxHeatmapDays*24*time.Hour {
		return nil, from, to, invalid("to", fmt.Sprintf("Range must not exceed %d days", MaxHeatmapDays))
	}

	trackers, err := s.trackers.ListByOwner(ctx, owner)
	if err != nil {
		return nil, from, to, fmt.Errorf("load trackers of %s: %w", owner, err)
	}
	return stats.Heatmap(trackers, from, to, loc), from, to, nil
}

// LoadLocation resolves an IANA zone name, falling back to def when name is
// blank.
func LoadLocation(name string, def *time.Location) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if def == nil {
			return time.UTC, nil
		}
		return def, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, invalid("tz", "Unknown time zone")
	}
	return loc, nil
}

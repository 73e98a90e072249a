// Package stats derives totals, streaks and a calendar heatmap from a user's
// trackers. Nothing here is stored; every call recomputes from the input.
package stats

import (
	"math"
	"sort"
	"time"

	"focus-tracker/internal/domain"
)

const dayLayout = "2006-01-02"

// Summary is the aggregate view over all of a user's trackers.
type Summary struct {
	TotalSeconds      int64   `json:"totalSeconds"`
	TotalHours        float64 `json:"totalHours"`
	Sessions          int     `json:"sessions"`
	ActiveDays        int     `json:"activeDays"`
	DailyAverageHours float64 `json:"dailyAverageHours"`
	CurrentStreak     int     `json:"currentStreak"`
	LongestStreak     int     `json:"longestStreak"`
	LastActiveDay     string  `json:"lastActiveDay,omitempty"`
}

// Cell is one calendar day of the heatmap.
type Cell struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Seconds int64  `json:"seconds"`
	Level   int    `json:"level"`
}

// Summarize computes the summary as seen at now, bucketing sessions into
// calendar days of loc.
func Summarize(trackers []domain.Tracker, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}

	var total int64
	seen := make(map[time.Time]struct{})
	for _, t := range trackers {
		total += t.Duration
		seen[dayOf(t.CreatedAt, loc)] = struct{}{}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	// newest first
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	s := Summary{
		TotalSeconds: total,
		TotalHours:   round1(float64(total) / 3600),
		Sessions:     len(trackers),
		ActiveDays:   len(days),
	}
	if len(days) == 0 {
		return s
	}

	s.DailyAverageHours = round1(float64(total) / 3600 / float64(len(days)))
	s.LastActiveDay = days[0].Format(dayLayout)
	s.CurrentStreak = currentStreak(days, dayOf(now, loc))
	s.LongestStreak = longestStreak(days)
	return s
}

// currentStreak counts the run of consecutive days ending at the newest
// active day, provided that day is no earlier than yesterday. Sessions dated
// in the future count as well.
func currentStreak(days []time.Time, today time.Time) int {
	if daysBetween(days[0], today) > 1 {
		return 0
	}
	streak := 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) != 1 {
			break
		}
		streak++
	}
	return streak
}

func longestStreak(days []time.Time) int {
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Heatmap returns one cell per calendar day from from to to inclusive. An
// inverted range yields no cells.
func Heatmap(trackers []domain.Tracker, from, to time.Time, loc *time.Location) []Cell {
	if loc == nil {
		loc = time.UTC
	}
	first, last := dayOf(from, loc), dayOf(to, loc)
	if last.Before(first) {
		return []Cell{}
	}

	type bucket struct {
		count   int
		seconds int64
	}
	buckets := make(map[time.Time]*bucket)
	for _, t := range trackers {
		d := dayOf(t.CreatedAt, loc)
		if d.Before(first) || d.After(last) {
			continue
		}
		b, ok := buckets[d]
		if !ok {
			b = &bucket{}
			buckets[d] = b
		}
		b.count++
		b.seconds += t.Duration
	}

	cells := make([]Cell, 0, daysBetween(first, last)+1)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		cell := Cell{Date: d.Format(dayLayout)}
		if b, ok := buckets[d]; ok {
			cell.Count = b.count
			cell.Seconds = b.seconds
		}
		cell.Level = Level(cell.Count)
		cells = append(cells, cell)
	}
	return cells
}

// Level maps a day's session count to a heatmap intensity from 0 to 4.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count < 3:
		return 1
	case count < 6:
		return 2
	case count < 9:
		return 3
	default:
		return 4
	}
}

// dayOf returns the calendar date of t in loc as midnight UTC, so that
// consecutive days are exactly 24h apart regardless of DST.
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

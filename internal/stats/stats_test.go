package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"focus-tracker/internal/domain"
)

func session(at time.Time, seconds int64) domain.Tracker {
	return domain.Tracker{Type: domain.TrackerTypeStopwatch, Duration: seconds, CreatedAt: at}
}

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, day(2025, 3, 10, 12), time.UTC)
	require.Equal(t, Summary{}, s)
}

func TestSummarizeConsecutiveDaysEndingToday(t *testing.T) {
	now := day(2025, 3, 10, 18)
	trackers := []domain.Tracker{
		session(day(2025, 3, 9, 9), 1800),
		session(day(2025, 3, 10, 9), 3600),
		session(day(2025, 3, 10, 14), 1800),
	}

	s := Summarize(trackers, now, time.UTC)
	require.Equal(t, int64(7200), s.TotalSeconds)
	require.Equal(t, 2.0, s.TotalHours)
	require.Equal(t, 3, s.Sessions)
	require.Equal(t, 2, s.ActiveDays)
	require.Equal(t, 1.0, s.DailyAverageHours)
	require.Equal(t, 2, s.CurrentStreak)
	require.Equal(t, 2, s.LongestStreak)
	require.Equal(t, "2025-03-10", s.LastActiveDay)
}

func TestSummarizeStreakEndingYesterdayStillCounts(t *testing.T) {
	now := day(2025, 3, 10, 8)
	trackers := []domain.Tracker{
		session(day(2025, 3, 8, 9), 60),
		session(day(2025, 3, 9, 9), 60),
	}

	s := Summarize(trackers, now, time.UTC)
	require.Equal(t, 2, s.CurrentStreak)
}

func TestSummarizeFutureSessionKeepsStreak(t *testing.T) {
	now := day(2025, 3, 10, 8)
	trackers := []domain.Tracker{
		session(day(2025, 3, 9, 9), 60),
		session(day(2025, 3, 10, 7), 60),
		session(day(2025, 3, 11, 9), 60),
	}

	s := Summarize(trackers, now, time.UTC)
	require.Equal(t, 3, s.CurrentStreak)
	require.Equal(t, "2025-03-11", s.LastActiveDay)

	// a lone session next week still starts a streak
	s = Summarize([]domain.Tracker{session(day(2025, 3, 17, 9), 60)}, now, time.UTC)
	require.Equal(t, 1, s.CurrentStreak)
}

func TestSummarizeBrokenStreak(t *testing.T) {
	now := day(2025, 3, 10, 8)
	trackers := []domain.Tracker{
		session(day(2025, 3, 1, 9), 60),
		session(day(2025, 3, 2, 9), 60),
		session(day(2025, 3, 3, 9), 60),
		session(day(2025, 3, 7, 9), 60),
		session(day(2025, 3, 8, 9), 60),
	}

	s := Summarize(trackers, now, time.UTC)
	require.Equal(t, 0, s.CurrentStreak)
	require.Equal(t, 3, s.LongestStreak)
	require.Equal(t, 5, s.ActiveDays)
}

func TestSummarizeRoundsToOneDecimal(t *testing.T) {
	now := day(2025, 3, 10, 12)
	trackers := []domain.Tracker{
		session(day(2025, 3, 8, 9), 1000),
		session(day(2025, 3, 9, 9), 1000),
		session(day(2025, 3, 10, 9), 1000),
	}

	s := Summarize(trackers, now, time.UTC)
	require.Equal(t, 0.8, s.TotalHours)
	require.Equal(t, 0.3, s.DailyAverageHours)
}

func TestSummarizeUsesLocationForDayBoundaries(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 20:00 UTC on the 9th is already the 10th in Tokyo
	trackers := []domain.Tracker{
		session(day(2025, 3, 9, 1), 600),
		session(day(2025, 3, 9, 20), 600),
	}
	now := day(2025, 3, 10, 2)

	utc := Summarize(trackers, now, time.UTC)
	require.Equal(t, 1, utc.ActiveDays)

	local := Summarize(trackers, now, tokyo)
	require.Equal(t, 2, local.ActiveDays)
	require.Equal(t, 2, local.CurrentStreak)
}

func TestHeatmap(t *testing.T) {
	trackers := []domain.Tracker{
		session(day(2025, 3, 2, 9), 60),
		session(day(2025, 3, 2, 10), 60),
		session(day(2025, 3, 2, 11), 60),
		session(day(2025, 3, 4, 9), 120),
		session(day(2025, 2, 20, 9), 60),
	}

	cells := Heatmap(trackers, day(2025, 3, 1, 0), day(2025, 3, 4, 23), time.UTC)
	require.Len(t, cells, 4)
	require.Equal(t, Cell{Date: "2025-03-01"}, cells[0])
	require.Equal(t, Cell{Date: "2025-03-02", Count: 3, Seconds: 180, Level: 2}, cells[1])
	require.Equal(t, Cell{Date: "2025-03-03"}, cells[2])
	require.Equal(t, Cell{Date: "2025-03-04", Count: 1, Seconds: 120, Level: 1}, cells[3])
}

func TestHeatmapInvertedRange(t *testing.T) {
	cells := Heatmap(nil, day(2025, 3, 4, 0), day(2025, 3, 1, 0), time.UTC)
	require.Empty(t, cells)
}

func TestLevel(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 2: 1, 3: 2, 5: 2, 6: 3, 8: 3, 9: 4, 40: 4}
	for count, want := range cases {
		require.Equal(t, want, Level(count), "count %d", count)
	}
}

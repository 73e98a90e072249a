package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLayouts(t *testing.T) {
	now := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"date only", "2025-12-15", time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2025-12-15T10:30:00Z", time.Date(2025, 12, 15, 10, 30, 0, 0, time.UTC)},
		{"rfc3339 offset", "2025-12-15T10:30:00+02:00", time.Date(2025, 12, 15, 8, 30, 0, 0, time.UTC)},
		{"space separated", "2025-12-15 10:30", time.Date(2025, 12, 15, 10, 30, 0, 0, time.UTC)},
		{"padded", "  2025-12-15  ", time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, now, time.UTC)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	got, err := Parse("2025-12-15", time.Now(), loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 12, 14, 17, 0, 0, 0, time.UTC), got.UTC())
}

func TestParseNaturalLanguage(t *testing.T) {
	now := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	got, err := Parse("tomorrow", now, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 2, got.Day())
	require.Equal(t, time.December, got.Month())
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "qwzx vbnm"} {
		_, err := Parse(input, time.Now(), time.UTC)
		require.Error(t, err, "input %q", input)
	}
}

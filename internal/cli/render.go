package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"focus-tracker/internal/stats"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)

	// heatmap shades, level 0 to 4
	levelColors = []lipgloss.Color{"#2D333B", "#0E4429", "#006D32", "#26A641", "#39D353"}
	levelGlyphs = []string{"·", "░", "▒", "▓", "█"}
)

func (a *App) style(s lipgloss.Style, text string) string {
	if !a.color() {
		return text
	}
	return s.Render(text)
}

func (a *App) title(text string) {
	fmt.Fprintln(a.Out, a.style(styleTitle, text))
}

func (a *App) success(text string) {
	fmt.Fprintln(a.Out, a.style(styleSuccess, "✓ "+text))
}

func (a *App) warn(text string) {
	fmt.Fprintln(a.Err, a.style(styleWarning, "⚠ "+text))
}

func (a *App) muted(text string) {
	fmt.Fprintln(a.Out, a.style(styleMuted, text))
}

// formatSeconds renders a duration such as "1h 05m" or "42s".
func formatSeconds(secs int64) string {
	d := time.Duration(secs) * time.Second
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// renderHeatmap lays cells out as a calendar: one row per weekday starting
// on Sunday, one column per week. Cells must be consecutive days.
func renderHeatmap(cells []stats.Cell, color bool) string {
	if len(cells) == 0 {
		return ""
	}
	first, err := time.Parse(time.DateOnly, cells[0].Date)
	if err != nil {
		return ""
	}

	offset := int(first.Weekday())
	weeks := (offset + len(cells) + 6) / 7
	grid := make([][]string, 7)
	for row := range grid {
		grid[row] = make([]string, weeks)
		for col := range grid[row] {
			grid[row][col] = " "
		}
	}

	for i, cell := range cells {
		pos := offset + i
		level := min(max(cell.Level, 0), len(levelGlyphs)-1)
		glyph := levelGlyphs[level]
		if color {
			glyph = lipgloss.NewStyle().Foreground(levelColors[level]).Render("■")
		}
		grid[pos%7][pos/7] = glyph
	}

	labels := []string{"   ", "Mon", "   ", "Wed", "   ", "Fri", "   "}
	var b strings.Builder
	for row, line := range grid {
		b.WriteString(labels[row])
		b.WriteString(" ")
		b.WriteString(strings.Join(line, ""))
		b.WriteString("\n")
	}

	b.WriteString("    less ")
	for level := range levelGlyphs {
		if color {
			b.WriteString(lipgloss.NewStyle().Foreground(levelColors[level]).Render("■"))
		} else {
			b.WriteString(levelGlyphs[level])
		}
	}
	b.WriteString(" more\n")
	return b.String()
}

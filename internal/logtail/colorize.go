package logtail

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the colors used by Colorize.
type Palette struct {
	Time      string
	Component string
	Faint     string
	Levels    map[string]string
}

// DefaultPalette suits dark terminals.
func DefaultPalette() Palette {
	return Palette{
		Time:      "#808080",
		Component: "#87AFFF",
		Faint:     "#666666",
		Levels: map[string]string{
			"DEBUG": "#87CEEB",
			"INFO":  "#5FD75F",
			"WARN":  "#FFD700",
			"ERROR": "#FF6B6B",
		},
	}
}

// Colorize styles a console-format swatch log line. Other lines are returned
// unchanged.
func Colorize(line string, p Palette) string {
	parts := strings.Split(line, " | ")
	if len(parts) < 3 || Level(line) == "" {
		return line
	}
	style := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}

	lvl := strings.TrimSpace(parts[1])
	levelColor := p.Levels[strings.ToUpper(lvl)]
	if levelColor == "" {
		levelColor = p.Levels["ERROR"]
	}

	out := make([]string, 0, len(parts))
	out = append(out, style(p.Time).Render(parts[0]))
	out = append(out, style(levelColor).Bold(true).Render(lvl))
	out = append(out, style(p.Component).Render(parts[2]))
	out = append(out, parts[3:]...)
	return strings.Join(out, style(p.Faint).Render(" | "))
}

// ColorizeLines applies Colorize to every line.
func ColorizeLines(lines []string, p Palette) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Colorize(line, p)
	}
	return out
}

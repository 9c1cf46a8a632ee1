package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// RiskIndicator returns a colored risk class such as "● CRITIQUE".
func RiskIndicator(level domain.RiskLevel) string {
	switch level {
	case domain.RiskCritical:
		return StyleRed.Render("● CRITIQUE")
	case domain.RiskMajor:
		return StyleYellow.Render("● MAJEUR")
	case domain.RiskModerate:
		return StyleGreen.Render("● MODERE")
	default:
		return StyleDim.Render("● INCONNU")
	}
}

// SyncIndicator colors a two-track synchronization class.
func SyncIndicator(class domain.SyncClass) string {
	switch class {
	case domain.SyncCritical:
		return StyleRed.Render("▲ " + string(class))
	case domain.SyncBehind, domain.SyncAhead:
		return StyleYellow.Render("● " + string(class))
	case domain.SyncInPhase:
		return StyleGreen.Render("● " + string(class))
	default:
		return StyleDim.Render(string(class))
	}
}

// PerformanceIndicator colors an SPI or CPI level.
func PerformanceIndicator(level domain.PerformanceLevel) string {
	switch level {
	case domain.PerfBehind:
		return StyleRed.Render(string(level))
	case domain.PerfOnTrack:
		return StyleGreen.Render(string(level))
	case domain.PerfAhead:
		return StyleBlue.Render(string(level))
	default:
		return StyleDim.Render(string(level))
	}
}

// SeverityBadge colors an alert severity.
func SeverityBadge(sev domain.AlertSeverity) string {
	upper := strings.ToUpper(string(sev))
	switch sev {
	case domain.SeverityCritical:
		return StyleRed.Render("▲ " + upper)
	case domain.SeverityWarning:
		return StyleYellow.Render("● " + upper)
	default:
		return StyleBlue.Render("○ " + upper)
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2006-01-02"

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDays describes a calendar date relative to today, e.g. "J-3" or "J+12".
func RelativeDays(t, today time.Time) string {
	days := domain.DaysBetween(today, t)
	switch {
	case days == 0:
		return "J"
	case days > 0:
		return fmt.Sprintf("J-%d", days)
	default:
		return fmt.Sprintf("J+%d", -days)
	}
}

// DueStyled renders a date with urgency coloring against today.
func DueStyled(t, today time.Time) string {
	date := t.Format(dateLayout)
	rel := Dim("(" + RelativeDays(t, today) + ")")
	days := domain.DaysBetween(today, t)
	switch {
	case days < 0:
		return StyleRed.Render(date) + " " + rel
	case days <= 7:
		return StyleYellow.Render(date) + " " + rel
	default:
		return date + " " + rel
	}
}

// OptDate formats an optional calendar date, "--" when unset.
func OptDate(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return t.Format(dateLayout)
}

// DateSpan formats planned bounds as "start → end".
func DateSpan(start, end *time.Time) string {
	return OptDate(start) + " → " + OptDate(end)
}

// ActionStatusPill returns a colored indicator for an action status.
func ActionStatusPill(status domain.ActionStatus) string {
	switch status {
	case domain.ActionToSchedule:
		return StyleDim.Render("○ à planifier")
	case domain.ActionPlanned:
		return StyleBlue.Render("○ planifiée")
	case domain.ActionToDo:
		return StyleBlue.Render("● à faire")
	case domain.ActionInProgress:
		return StyleGreen.Render("● en cours")
	case domain.ActionBlocked:
		return StyleRed.Render("✖ bloquée")
	case domain.ActionWaiting, domain.ActionPostponed, domain.ActionInValidation:
		return StyleYellow.Render("◐ " + string(status))
	case domain.ActionDone:
		return StyleDim.Render("✔ terminée")
	case domain.ActionCancelled:
		return StyleDim.Render("⊘ annulée")
	default:
		return StyleDim.Render(string(status))
	}
}

// MilestoneStatusPill returns a colored indicator for a milestone status.
func MilestoneStatusPill(status domain.MilestoneStatus) string {
	switch status {
	case domain.MilestoneUpcoming:
		return StyleGreen.Render("● à venir")
	case domain.MilestoneApproaching:
		return StyleYellow.Render("● en approche")
	case domain.MilestoneInDanger:
		return StyleRed.Render("▲ en danger")
	case domain.MilestoneOverdue:
		return StyleRed.Render("✖ dépassé")
	case domain.MilestoneReached:
		return StyleDim.Render("✔ atteint")
	case domain.MilestoneCancelled:
		return StyleDim.Render("⊘ annulé")
	default:
		return StyleDim.Render(string(status))
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// OptFloat formats an optional index with two decimals, "n/a" when nil.
func OptFloat(v *float64) string {
	if v == nil {
		return Dim("n/a")
	}
	return fmt.Sprintf("%.2f", *v)
}

// Money formats an amount with thousands separators and no decimals.
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

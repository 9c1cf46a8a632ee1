package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/pilotage/internal/recalc"
)

// FormatPass renders the per-step outcome of one recalculation pass.
func FormatPass(e recalc.PassEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s %s\n\n",
		Dim("trigger"), string(e.Trigger),
		Dim("started"), e.StartedAt.Format(time.RFC3339))

	rows := make([][]string, 0, len(e.Steps))
	for _, s := range e.Steps {
		state := StyleGreen.Render("ok")
		if s.Err != nil {
			state = StyleRed.Render("failed: " + s.Err.Error())
		} else if s.Skipped > 0 {
			state = StyleYellow.Render("partial")
		}
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("%d", s.Updated),
			fmt.Sprintf("%d", s.Skipped),
			formatDuration(s.Duration),
			state,
		})
	}
	b.WriteString(Table{
		Headers: []string{"STEP", "UPDATED", "SKIPPED", "TIME", "STATE"},
		Rows:    rows,
		Right:   map[int]bool{1: true, 2: true, 3: true},
	}.Render())

	b.WriteString("\n")
	summary := fmt.Sprintf("%d updated, %d skipped in %s", e.Updated(), e.Skipped(), formatDuration(e.Duration))
	if e.Failed() {
		b.WriteString(StyleYellow.Render(summary) + "\n")
	} else {
		b.WriteString(StyleGreen.Render(summary) + "\n")
	}

	return RenderBox("Recalc Pass", b.String())
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}

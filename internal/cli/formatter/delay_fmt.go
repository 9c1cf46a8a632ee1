package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/engine"
)

// FormatDelayPreview renders the downstream shifts a source delay would cause.
func FormatDelayPreview(p *engine.DelayPreview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  Source:  %s %s\n", Bold(p.SourceTitle), TruncID(p.SourceID))
	fmt.Fprintf(&b, "  Retard:  %s\n\n", StyleRed.Render(fmt.Sprintf("%d days", p.RetardJours)))

	if len(p.Unscheduled) > 0 {
		fmt.Fprintf(&b, "  %s\n\n", Dim(fmt.Sprintf("%d linked actions have no planned dates and are not shifted.", len(p.Unscheduled))))
	}

	if p.IsEmpty() {
		b.WriteString(Dim("  No downstream action is impacted.") + "\n")
		return RenderBox("Delay Preview", b.String())
	}

	rows := make([][]string, 0, len(p.ImpactedActions))
	for _, imp := range p.ImpactedActions {
		lag := Dim("--")
		if imp.LagDays != 0 {
			lag = fmt.Sprintf("%d", imp.LagDays)
		}
		rows = append(rows, []string{
			imp.Title,
			DateSpan(imp.OldStart, imp.OldEnd),
			DateSpan(imp.NewStart, imp.NewEnd),
			StyleYellow.Render(fmt.Sprintf("+%d", imp.DecalageJours)),
			lag,
		})
	}
	b.WriteString(Table{
		Headers: []string{"ACTION", "CURRENT", "SHIFTED", "DAYS", "LAG"},
		Rows:    rows,
		Right:   map[int]bool{3: true, 4: true},
	}.Render())

	fmt.Fprintf(&b, "\n%s\n", Dim(fmt.Sprintf("%d actions impacted. Apply with: pilotage delay apply %s", len(p.ImpactedActions), p.SourceID)))
	return RenderBox("Delay Preview", b.String())
}

// FormatApplyResult renders the outcome of applying a delay preview.
func FormatApplyResult(res *app.ApplyDelayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Mode:     %s\n", string(res.Mode))
	fmt.Fprintf(&b, "  Applied:  %s\n", StyleGreen.Render(fmt.Sprintf("%d", res.AppliedCount)))
	if len(res.FailedIDs) > 0 {
		fmt.Fprintf(&b, "  Failed:   %s\n", StyleRed.Render(fmt.Sprintf("%d", len(res.FailedIDs))))
		for _, id := range res.FailedIDs {
			fmt.Fprintf(&b, "    - %s\n", id)
		}
	}
	return RenderBox("Delay Applied", b.String())
}

package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
)

const statusProgressBarWidth = 10

// FormatStatus renders the portfolio dashboard: milestones first, then the
// action count per status and the mean progress per axis.
func FormatStatus(milestones []*domain.Milestone, actions []*domain.Action, today time.Time) string {
	var b strings.Builder

	sorted := append([]*domain.Milestone(nil), milestones...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlannedDate.Before(sorted[j].PlannedDate)
	})

	rows := make([][]string, 0, len(sorted))
	for _, m := range sorted {
		slip := Dim("0")
		if m.SlipDays > 0 {
			slip = StyleRed.Render(fmt.Sprintf("+%d", m.SlipDays))
		}
		rows = append(rows, []string{
			Bold(m.Title),
			MilestoneStatusPill(m.Status),
			m.PlannedDate.Format(dateLayout),
			DueStyled(m.ProjectedDate, today),
			slip,
		})
	}
	b.WriteString(Header("Jalons") + "\n")
	if len(rows) == 0 {
		b.WriteString(Dim("  No milestones.") + "\n")
	} else {
		b.WriteString(Table{
			Headers: []string{"JALON", "STATUS", "PLANNED", "PROJECTED", "SLIP"},
			Rows:    rows,
			Right:   map[int]bool{4: true},
		}.Render())
	}

	b.WriteString("\n" + Header("Actions") + "\n")
	counts := make(map[domain.ActionStatus]int)
	for _, a := range actions {
		counts[a.Status]++
	}
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	countRows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		st := domain.ActionStatus(s)
		countRows = append(countRows, []string{ActionStatusPill(st), fmt.Sprintf("%d", counts[st])})
	}
	b.WriteString(Table{Headers: []string{"STATUS", "COUNT"}, Rows: countRows, Right: map[int]bool{1: true}}.Render())

	progress := engine.AxisProgress(actions)
	if len(progress) > 0 {
		axisRows := make([][]string, 0, len(progress))
		for _, axis := range engine.SortedAxes(progress) {
			axisRows = append(axisRows, []string{axis, RenderProgress(progress[axis], statusProgressBarWidth)})
		}
		b.WriteString("\n" + Header("Axes") + "\n")
		b.WriteString(RenderTable([]string{"AXIS", "PROGRESS"}, axisRows))
	}

	return RenderBox("Status", b.String())
}

// FormatProjection renders the projection of one milestone.
func FormatProjection(m *domain.Milestone, p *engine.Projection, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", Bold(m.Title))
	fmt.Fprintf(&b, "  Planned:    %s\n", m.PlannedDate.Format(dateLayout))
	fmt.Fprintf(&b, "  Projected:  %s\n", DueStyled(p.ProjectedDate, today))
	if p.SlipDays > 0 {
		fmt.Fprintf(&b, "  Slip:       %s\n", StyleRed.Render(fmt.Sprintf("%d days", p.SlipDays)))
	} else {
		fmt.Fprintf(&b, "  Slip:       %s\n", StyleGreen.Render("none"))
	}
	if p.Degraded {
		b.WriteString("\n" + StyleYellow.Render("  WARNING: degraded projection, "+p.Reason) + "\n")
	}
	return RenderBox("Projection", b.String())
}

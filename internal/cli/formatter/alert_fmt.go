package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/domain"
)

var severityRank = map[domain.AlertSeverity]int{
	domain.SeverityCritical: 0,
	domain.SeverityWarning:  1,
	domain.SeverityInfo:     2,
}

// FormatAlerts renders open alerts, most severe first.
func FormatAlerts(alerts []*domain.Alert) string {
	if len(alerts) == 0 {
		return RenderBox("Alerts", StyleGreen.Render("No open alerts."))
	}

	sorted := append([]*domain.Alert(nil), alerts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := severityRank[sorted[i].Severity], severityRank[sorted[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	rows := make([][]string, 0, len(sorted))
	for _, a := range sorted {
		rows = append(rows, []string{
			SeverityBadge(a.Severity),
			string(a.Condition),
			fmt.Sprintf("%s %s", string(a.EntityType), TruncID(a.EntityID)),
			a.Message,
		})
	}
	return RenderBox("Alerts", RenderTable([]string{"SEVERITY", "CONDITION", "ENTITY", "MESSAGE"}, rows))
}

func FormatAlertsResult(res *app.AlertsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Raised:    %d\n", res.Raised)
	fmt.Fprintf(&b, "  Existing:  %d\n", res.Existing)
	fmt.Fprintf(&b, "  Resolved:  %d\n", res.Resolved)
	if res.Skipped > 0 {
		fmt.Fprintf(&b, "  Skipped:   %s\n", StyleYellow.Render(fmt.Sprintf("%d", res.Skipped)))
	}
	return b.String()
}

package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/pilotage/internal/app"
)

func FormatRiskEvaluation(res *app.RiskEvaluation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Evaluated:  %d\n", res.Evaluated)
	fmt.Fprintf(&b, "  Updated:    %d\n", res.Updated)
	if res.Skipped > 0 {
		fmt.Fprintf(&b, "  Skipped:    %s\n", StyleYellow.Render(fmt.Sprintf("%d", res.Skipped)))
	}
	return RenderBox("Risk Scores", b.String())
}

// FormatRiskLinks renders the actions each open risk shares its scope with.
func FormatRiskLinks(res *app.RiskLinkResult) string {
	var b strings.Builder

	riskIDs := make([]string, 0, len(res.Links))
	for id := range res.Links {
		riskIDs = append(riskIDs, id)
	}
	sort.Strings(riskIDs)

	rows := make([][]string, 0, len(riskIDs))
	for _, id := range riskIDs {
		actions := res.Links[id]
		short := make([]string, 0, len(actions))
		for _, a := range actions {
			if len(a) > 8 {
				a = a[:8]
			}
			short = append(short, a)
		}
		rows = append(rows, []string{id, fmt.Sprintf("%d", len(actions)), Dim(strings.Join(short, ", "))})
	}
	if len(rows) == 0 {
		b.WriteString(Dim("  No open risk matches an action.") + "\n")
	} else {
		b.WriteString(Table{
			Headers: []string{"RISK", "ACTIONS", "IDS"},
			Rows:    rows,
			Right:   map[int]bool{1: true},
		}.Render())
	}

	fmt.Fprintf(&b, "\n  %d risks linked, %d links\n", res.RisksLinked, res.TotalLinks)
	if res.Persisted {
		fmt.Fprintf(&b, "  %s %d inserted, %d removed\n", StyleGreen.Render("persisted:"), res.Inserted, res.Removed)
	} else {
		b.WriteString(Dim("  advisory only, rerun with --persist to store") + "\n")
	}
	return RenderBox("Risk Links", b.String())
}

package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pilotage/internal/app"
	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/alexanderramin/pilotage/internal/engine"
)

// FormatPerformance renders earned value indices and the two-track gap.
func FormatPerformance(r *app.PerformanceReport) string {
	var b strings.Builder
	ev := r.EarnedValue

	b.WriteString(Header("Earned value") + "\n")
	b.WriteString(Table{
		Headers: []string{"BAC", "PV", "EV", "AC"},
		Rows:    [][]string{{Money(ev.BAC), Money(ev.PV), Money(ev.EV), Money(ev.AC)}},
		Right:   map[int]bool{0: true, 1: true, 2: true, 3: true},
	}.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "  SPI  %s  %s\n", OptFloat(ev.SPI), PerformanceIndicator(r.SPILevel))
	fmt.Fprintf(&b, "  CPI  %s  %s\n", OptFloat(ev.CPI), PerformanceIndicator(r.CPILevel))
	fmt.Fprintf(&b, "  EAC  %s   ETC  %s   VAC  %s\n", optMoney(ev.EAC), optMoney(ev.ETC), optMoney(ev.VAC))

	b.WriteString("\n" + Header("Synchronization") + "\n")
	b.WriteString(formatSync(r.Sync, r.Trend))

	if len(r.AxisProgress) > 0 {
		rows := make([][]string, 0, len(r.AxisProgress))
		for _, axis := range engine.SortedAxes(r.AxisProgress) {
			rows = append(rows, []string{axis, RenderProgress(r.AxisProgress[axis], statusProgressBarWidth)})
		}
		b.WriteString("\n" + RenderTable([]string{"AXIS", "PROGRESS"}, rows))
	}

	return RenderBox("Performance", b.String())
}

func formatSync(gap engine.SyncGap, trend engine.SyncTrend) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Technical     %5.1f%%\n", gap.TechnicalPct)
	fmt.Fprintf(&b, "  Mobilization  %5.1f%%  %s\n", gap.MobilizationPct, Dim(strings.Join(gap.MobilizationAxes, ", ")))
	fmt.Fprintf(&b, "  Gap           %+5.1f   %s\n", gap.Gap, SyncIndicator(gap.Class))

	switch {
	case !trend.HasBaseline:
		fmt.Fprintf(&b, "  Trend         %s\n", Dim(string(trend.Trend)+" (no baseline yet)"))
	default:
		label := string(trend.Trend)
		switch trend.Trend {
		case domain.TrendImproving:
			label = StyleGreen.Render(label)
		case domain.TrendDegrading:
			label = StyleRed.Render(label)
		}
		fmt.Fprintf(&b, "  Trend         %s %s\n", label,
			Dim(fmt.Sprintf("(%+.1f since %s)", trend.Delta, trend.BaselineAt.Format(dateLayout))))
	}
	return b.String()
}

func optMoney(v *float64) string {
	if v == nil {
		return Dim("n/a")
	}
	return Money(*v)
}

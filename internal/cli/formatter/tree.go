package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/pilotage/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	Status domain.ActionStatus
	Detail string
	// Blocking marks a blocking prerequisite edge into this node.
	Blocking bool
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders items as an indented tree with box-drawing connectors
// and right-aligned detail badges.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	badges := make([]string, len(items))
	widest := 0

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		switch {
		case item.Status.IsClosed():
			title = StyleGreen.Render("✔ ") + Dim(title)
		case item.Status == domain.ActionInProgress:
			title = StyleYellow.Render("▶ ") + StyleYellow.Bold(true).Render(title)
		case item.Status == domain.ActionBlocked:
			title = StyleRed.Render("✖ ") + title
		}
		if item.Level > 0 && !item.Blocking {
			title += Dim(" (info)")
		}

		contents[idx] = prefix + title
		if item.Detail != "" {
			badges[idx] = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		widest = max(widest, lipgloss.Width(contents[idx]))
	}

	var b strings.Builder
	for i, c := range contents {
		if badges[i] == "" {
			b.WriteString(c + "\n")
			continue
		}
		pad := widest - lipgloss.Width(c)
		b.WriteString(c + strings.Repeat(" ", pad) + "  " + badges[i] + "\n")
	}
	return b.String()
}

// PrerequisiteTree flattens the upstream action graph of a milestone into
// tree items, depth first. An action already on the current path is shown
// once more with a cycle marker and not expanded.
func PrerequisiteTree(m *domain.Milestone, actions map[string]*domain.Action, maxDepth int) []TreeItem {
	items := []TreeItem{{Title: Bold(m.Title), Detail: m.PlannedDate.Format(dateLayout)}}
	onPath := map[string]bool{}

	var walk func(prereqs []domain.Prerequisite, level int)
	walk = func(prereqs []domain.Prerequisite, level int) {
		for i, p := range prereqs {
			item := TreeItem{
				Level:    level,
				IsLast:   i == len(prereqs)-1,
				Blocking: p.Kind == domain.LinkBlocking,
			}
			a, ok := actions[p.ActionID]
			if !ok {
				item.Title = StyleRed.Render("missing " + p.ActionID)
				items = append(items, item)
				continue
			}
			item.Title = a.Title
			item.Status = a.Status
			item.Detail = OptDate(a.EffectiveEnd())
			if onPath[a.ID] {
				item.Title += StyleRed.Render(" ↺ cycle")
				items = append(items, item)
				continue
			}
			items = append(items, item)
			if level >= maxDepth {
				continue
			}
			onPath[a.ID] = true
			walk(a.Prerequisites, level+1)
			delete(onPath, a.ID)
		}
	}
	walk(m.Prerequisites, 1)
	return items
}

package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
)

// Projection is the outcome of projecting one milestone.
type Projection struct {
	ProjectedDate time.Time
	SlipDays      int
	Degraded      bool
	// Reason explains a degraded projection, e.g. the id closing a cycle.
	Reason string
}

// Projector computes milestone projected dates over the action graph.
// Traversal is bounded by MaxDepth and by an on-path set, so cyclic or
// pathological graphs terminate with a degraded result instead of failing.
type Projector struct {
	MaxDepth int
	Logger   *slog.Logger
}

// NewProjector returns a Projector. A nil logger discards warnings.
func NewProjector(maxDepth int, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Projector{MaxDepth: maxDepth, Logger: logger}
}

// projection carries per-call traversal state.
type projection struct {
	p        *Projector
	actions  map[string]*domain.Action
	memo     map[string]*time.Time
	onPath   map[string]bool
	degraded bool
	reason   string
}

// Project returns the projected date of m: the later of its planned date and
// the effective completion of every prerequisite action.
func (p *Projector) Project(m *domain.Milestone, actions map[string]*domain.Action) Projection {
	st := &projection{
		p:       p,
		actions: actions,
		memo:    make(map[string]*time.Time),
		onPath:  make(map[string]bool),
	}

	projected := domain.TruncateDay(m.PlannedDate)
	for _, prereq := range m.Prerequisites {
		if end := st.completion(prereq.ActionID, 1); end != nil {
			projected = domain.MaxDate(projected, domain.TruncateDay(*end))
		}
	}

	if st.degraded {
		p.Logger.Warn("degraded milestone projection",
			"milestone_id", m.ID, "reason", st.reason, "max_depth", p.MaxDepth)
	}

	return Projection{
		ProjectedDate: projected,
		SlipDays:      domain.ComputeSlipDays(m.PlannedDate, projected),
		Degraded:      st.degraded,
		Reason:        st.reason,
	}
}

// completion returns the effective completion date of an action, or nil when
// the action is unknown, cancelled or has no date at all.
func (st *projection) completion(id string, depth int) *time.Time {
	a, ok := st.actions[id]
	if !ok || a.Status == domain.ActionCancelled {
		return nil
	}
	if a.ActualEnd != nil {
		return a.ActualEnd
	}
	if end, ok := st.memo[id]; ok {
		return end
	}

	if depth > st.p.MaxDepth {
		st.degrade(fmt.Sprintf("depth limit %d exceeded at action %s", st.p.MaxDepth, id))
		return a.PlannedEnd
	}
	if st.onPath[id] {
		st.degrade(fmt.Sprintf("dependency cycle through action %s", id))
		return a.PlannedEnd
	}

	st.onPath[id] = true
	end := a.PlannedEnd
	for _, upstream := range a.Prerequisites {
		if upstream.Kind != domain.LinkBlocking {
			continue
		}
		up, ok := st.actions[upstream.ActionID]
		if !ok || up.Status.IsClosed() {
			continue
		}
		if upEnd := st.completion(upstream.ActionID, depth+1); upEnd != nil {
			if end == nil || upEnd.After(*end) {
				end = upEnd
			}
		}
	}
	delete(st.onPath, id)

	st.memo[id] = end
	return end
}

func (st *projection) degrade(reason string) {
	if !st.degraded {
		st.reason = reason
	}
	st.degraded = true
}

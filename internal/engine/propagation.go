package engine

import (
	"fmt"
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
)

// ImpactedAction is one downstream action shifted by a delay preview.
type ImpactedAction struct {
	ID            string
	Title         string
	DecalageJours int
	OldStart      *time.Time
	OldEnd        *time.Time
	NewStart      *time.Time
	NewEnd        *time.Time
	LinkID        string
	LagDays       int
}

// DelayPreview is the immutable result of previewing a source delay.
type DelayPreview struct {
	SourceID        string
	SourceTitle     string
	RetardJours     int
	GeneratedAt     time.Time
	ImpactedActions []ImpactedAction
	// Unscheduled lists linked targets with no planned dates. They have
	// nothing to shift and are left out of ImpactedActions.
	Unscheduled []string
}

// IsEmpty reports whether applying the preview would change nothing.
func (p *DelayPreview) IsEmpty() bool {
	return p == nil || len(p.ImpactedActions) == 0
}

// SourceDelay returns the number of days the source finished late, or zero
// when it has no actual end or finished on time.
func SourceDelay(source *domain.Action) int {
	if source.ActualEnd == nil || source.PlannedEnd == nil {
		return 0
	}
	d := domain.DaysBetween(*source.PlannedEnd, *source.ActualEnd)
	if d < 0 {
		return 0
	}
	return d
}

// BuildDelayPreview computes the shift each linked target would receive.
// Every target receives the full source delay; the link lag is reported but
// does not reduce the shift. Targets listed by several links appear once,
// attributed to the first link naming them.
func BuildDelayPreview(source *domain.Action, links []*domain.SyncLink, targets map[string]*domain.Action, now time.Time) (*DelayPreview, error) {
	preview := &DelayPreview{
		SourceID:    source.ID,
		SourceTitle: source.Title,
		GeneratedAt: now.UTC(),
	}

	retard := SourceDelay(source)
	if retard <= 0 {
		return preview, nil
	}
	preview.RetardJours = retard

	seen := make(map[string]bool)
	for _, link := range links {
		for _, targetID := range link.TargetActionIDs {
			if seen[targetID] {
				continue
			}
			seen[targetID] = true

			target, ok := targets[targetID]
			if !ok {
				return nil, fmt.Errorf("sync link %s target %s: %w", link.ID, targetID, domain.ErrNotFound)
			}
			if target.PlannedStart == nil && target.PlannedEnd == nil {
				preview.Unscheduled = append(preview.Unscheduled, target.ID)
				continue
			}
			preview.ImpactedActions = append(preview.ImpactedActions, ImpactedAction{
				ID:            target.ID,
				Title:         target.Title,
				DecalageJours: retard,
				OldStart:      target.PlannedStart,
				OldEnd:        target.PlannedEnd,
				NewStart:      shiftDate(target.PlannedStart, retard),
				NewEnd:        shiftDate(target.PlannedEnd, retard),
				LinkID:        link.ID,
				LagDays:       link.LagDays,
			})
		}
	}
	return preview, nil
}

// TargetIDs returns the distinct target ids named by links, in link order.
func TargetIDs(links []*domain.SyncLink) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, l := range links {
		for _, id := range l.TargetActionIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func shiftDate(t *time.Time, days int) *time.Time {
	if t == nil {
		return nil
	}
	shifted := domain.AddDays(*t, days)
	return &shifted
}

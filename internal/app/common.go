package app

import (
	"time"

	"github.com/alexanderramin/pilotage/internal/domain"
)

// RecomputeRequest drives every recomputation use case. Now overrides the
// clock; Actor defaults to the system actor.
type RecomputeRequest struct {
	Now   *time.Time
	Actor string
}

// ResolveNow returns the request clock or the current UTC time.
func (r RecomputeRequest) ResolveNow() time.Time {
	if r.Now != nil {
		return r.Now.UTC()
	}
	return time.Now().UTC()
}

// ResolveActor returns the request actor or the system actor.
func (r RecomputeRequest) ResolveActor() string {
	if r.Actor == "" {
		return domain.SystemActor
	}
	return r.Actor
}

// EntityFailure records one entity a recomputation had to skip.
type EntityFailure struct {
	EntityType domain.EntityType
	EntityID   string
	Err        error
}

// RecomputeResult summarises a status or projection recomputation.
type RecomputeResult struct {
	Evaluated int
	Updated   int
	Skipped   int
	// Degraded lists milestones whose projection hit a cycle or depth limit.
	Degraded []string
	Failures []EntityFailure
}

func (r *RecomputeResult) Fail(et domain.EntityType, id string, err error) {
	r.Skipped++
	r.Failures = append(r.Failures, EntityFailure{EntityType: et, EntityID: id, Err: err})
}

type RiskEvaluation struct {
	Evaluated int
	Updated   int
	Skipped   int
}

type RiskLinkRequest struct {
	// Persist reconciles the stored automatic links with the computed ones.
	Persist bool
	Actor   string
}

type RiskLinkResult struct {
	RisksLinked int
	TotalLinks  int
	// Links maps risk id to the ids of the actions sharing its scope.
	Links     map[string][]string
	Persisted bool
	Inserted  int
	Removed   int
}

type AlertsResult struct {
	Raised   int
	Existing int
	Resolved int
	Skipped  int
}

type DedupeResult struct {
	Removed    int
	RemovedIDs []string
	Skipped    int
}

type SnapshotResult struct {
	Recorded bool
	Snapshot domain.SyncSnapshot
}

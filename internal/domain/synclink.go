package domain

// SyncLink ties an action on the technical track to one or more actions on
// the mobilization track.
type SyncLink struct {
	ID              string
	SourceActionID  string
	TargetActionIDs []string
	LagDays         int
	Kind            SyncLinkKind
}

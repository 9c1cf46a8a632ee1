package app

import (
	"time"

	"github.com/alexanderramin/pilotage/internal/config"
	"github.com/alexanderramin/pilotage/internal/engine"
)

type DelayPreviewRequest struct {
	SourceActionID string
	Now            *time.Time
}

// Confirmation is the explicit approval an irreversible delay apply needs.
type Confirmation struct {
	Actor     string
	Confirmed bool
}

type ApplyDelayRequest struct {
	Preview      *engine.DelayPreview
	Confirmation Confirmation
	Now          *time.Time
}

type ApplyDelayResult struct {
	Mode         config.DelayApplyMode
	AppliedCount int
	FailedIDs    []string
}

type DelayErrorCode string

const (
	DelayErrConfirmationRequired DelayErrorCode = "CONFIRMATION_REQUIRED"
	DelayErrStalePreview         DelayErrorCode = "STALE_PREVIEW"
)

// DelayError is a coded failure of the delay apply workflow.
type DelayError struct {
	Code    DelayErrorCode
	Message string
}

func (e *DelayError) Error() string {
	return string(e.Code) + ": " + e.Message
}

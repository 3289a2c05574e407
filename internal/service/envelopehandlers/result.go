package envelopehandlers

// Action is the terminal outcome of envelope processing, reported in the
// processed-envelope notification.
type Action string

const (
	ExceptionRecord    Action = "EXCEPTION_RECORD"
	AutoCreatedCase    Action = "AUTO_CREATED_CASE"
	AutoAttachedToCase Action = "AUTO_ATTACHED_TO_CASE"
	AutoUpdatedCase    Action = "AUTO_UPDATED_CASE"
)

// Result is the uniform outcome returned by every classification handler.
type Result struct {
	CcdID  int64
	Action Action
}

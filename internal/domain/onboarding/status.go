package onboarding

// SessionStatus represents the lifecycle of an onboarding session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusFinished  SessionStatus = "finished"
	SessionStatusDismissed SessionStatus = "dismissed"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusFinished, SessionStatusDismissed:
		return true
	}
	return false
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	switch s {
	case SessionStatusActive:
		return target == SessionStatusFinished || target == SessionStatusDismissed
	default:
		// Finished and dismissed are terminal
		return false
	}
}

// SaleCheckStatus is the state of the first-sale check
type SaleCheckStatus string

const (
	SaleCheckPending    SaleCheckStatus = "pending"
	SaleCheckProcessing SaleCheckStatus = "processing"
	SaleCheckCompleted  SaleCheckStatus = "completed"
)

// CanTransitionTo checks if the sale check can move to the target status.
// Only processing may fall back to pending.
func (s SaleCheckStatus) CanTransitionTo(target SaleCheckStatus) bool {
	switch s {
	case SaleCheckPending:
		return target == SaleCheckProcessing
	case SaleCheckProcessing:
		return target == SaleCheckCompleted || target == SaleCheckPending
	default:
		return false
	}
}

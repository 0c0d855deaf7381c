package onboarding

import (
	"time"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeOnboardingSession = "OnboardingSession"

// Event type constants
const (
	EventTypeOnboardingStarted    = "OnboardingStarted"
	EventTypeStepCompleted        = "OnboardingStepCompleted"
	EventTypeStepSkipped          = "OnboardingStepSkipped"
	EventTypeLinkShared           = "AffiliateLinkShared"
	EventTypeFirstSaleDetected    = "FirstSaleDetected"
	EventTypeCelebrationTriggered = "CelebrationTriggered"
	EventTypeOnboardingFinished   = "OnboardingFinished"
	EventTypeOnboardingDismissed  = "OnboardingDismissed"
)

// Celebration reasons
const (
	CelebrationWelcome   = "welcome"
	CelebrationFirstSale = "first_sale"
)

// OnboardingStartedEvent is raised when the user starts the flow
type OnboardingStartedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
}

// NewOnboardingStartedEvent creates a new OnboardingStartedEvent
func NewOnboardingStartedEvent(s *OnboardingSession, at time.Time) *OnboardingStartedEvent {
	return &OnboardingStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOnboardingStarted, AggregateTypeOnboardingSession, s.ID, s.UserID, at),
		SessionID:       s.ID,
	}
}

// StepCompletedEvent is raised when a step is completed with its reward
type StepCompletedEvent struct {
	shared.BaseDomainEvent
	SessionID   uuid.UUID `json:"session_id"`
	Step        Step      `json:"step"`
	Points      int       `json:"points"`
	TotalPoints int       `json:"total_points"`
}

// NewStepCompletedEvent creates a new StepCompletedEvent
func NewStepCompletedEvent(s *OnboardingSession, step Step, points int, at time.Time) *StepCompletedEvent {
	return &StepCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStepCompleted, AggregateTypeOnboardingSession, s.ID, s.UserID, at),
		SessionID:       s.ID,
		Step:            step,
		Points:          points,
		TotalPoints:     s.LocalPointsTotal(),
	}
}

// StepSkippedEvent is raised when a step is skipped without reward
type StepSkippedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
	Step      Step      `json:"step"`
}

// NewStepSkippedEvent creates a new StepSkippedEvent
func NewStepSkippedEvent(s *OnboardingSession, step Step, at time.Time) *StepSkippedEvent {
	return &StepSkippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStepSkipped, AggregateTypeOnboardingSession, s.ID, s.UserID, at),
		SessionID:       s.ID,
		Step:            step,
	}
}

// LinkSharedEvent is raised when the platform accepted a share
type LinkSharedEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID              `json:"session_id"`
	BrandID   string                 `json:"brand_id"`
	Channel   affiliate.ShareChannel `json:"channel"`
}

// NewLinkSharedEvent creates a new LinkSharedEvent
func NewLinkSharedEvent(s *OnboardingSession, channel affiliate.ShareChannel, at time.Time) *LinkSharedEvent {
	e := &LinkSharedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLinkShared, AggregateTypeOnboardingSession, s.ID, s.UserID, at),
		SessionID:       s.ID,
		Channel:         channel,
	}
	if s.Share.Brand != nil {
		e.BrandID = s.Share.Brand.ID
	}
	return e
}

// FirstSaleDetectedEvent is raised when the platform reports the first sale
type FirstSaleDetectedEvent struct {
	shared.BaseDomainEvent
	SessionID   uuid.UUID             `json:"session_id"`
	Transaction affiliate.Transaction `json:"transaction"`
}

// NewFirstSaleDetectedEvent creates a new FirstSaleDetectedEvent
func NewFirstSaleDetectedEvent(s *OnboardingSession, tx affiliate.Transaction, at time.Time) *FirstSaleDetectedEvent {
	return &FirstSaleDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFirstSaleDetected, AggregateTypeOnboardingSession, s.ID, s.UserID, at),
		SessionID:       s.ID,
		Transaction:     tx,
	}
}

// CelebrationTriggeredEvent asks the front-end to play the celebration effect
type CelebrationTriggeredEvent struct {
	shared.BaseDomainEvent
	SessionID uuid.UUID `json:"session_id"`
	Reason    string    `json:"reason"`
}

// NewCelebrationTriggeredEvent creates a new CelebrationTriggeredEvent
func NewCelebrationTriggeredEvent(s *OnboardingSession, reason string, at time.Time) *CelebrationTriggeredEvent {
	return &CelebrationTriggeredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCelebrationTriggered, AggregateTypeOnboardingSession, s.ID, s.UserID, at),
		SessionID:       s.ID,
		Reason:          reason,
	}
}

// OnboardingFinishedEvent is raised when the platform recorded completion
type OnboardingFinishedEvent struct {
	shared.BaseDomainEvent
	SessionID   uuid.UUID `json:"session_id"`
	TotalPoints int       `json:"total_points"`
	SaleSkipped bool      `json:"sale_skipped"`
}

// NewOnboardingFinishedEvent creates a new OnboardingFinishedEvent
func NewOnboardingFinishedEvent(s *OnboardingSession, saleSkipped bool, at time.Time) *OnboardingFinishedEvent {
	return &OnboardingFinishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOnboardingFinished, AggregateTypeOnboardingSession, s.ID, s.UserID, at),
		SessionID:       s.ID,
		TotalPoints:     s.LocalPointsTotal(),
		SaleSkipped:     saleSkipped,
	}
}

// OnboardingDismissedEvent is raised when the user closes the flow early
type OnboardingDismissedEvent struct {
	shared.BaseDomainEvent
	SessionID      uuid.UUID `json:"session_id"`
	CompletedSteps []int     `json:"completed_steps"`
}

// NewOnboardingDismissedEvent creates a new OnboardingDismissedEvent
func NewOnboardingDismissedEvent(s *OnboardingSession, at time.Time) *OnboardingDismissedEvent {
	return &OnboardingDismissedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOnboardingDismissed, AggregateTypeOnboardingSession, s.ID, s.UserID, at),
		SessionID:       s.ID,
		CompletedSteps:  s.CompletedSteps.Ints(),
	}
}

package onboarding

import (
	"fmt"
	"time"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/shared"
)

// PointsNotification is the transient "+N points" banner
type PointsNotification struct {
	Step      Step      `json:"step"`
	Points    int       `json:"points"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingRequest marks an upstream call in progress for the session
type PendingRequest struct {
	Operation string    `json:"operation"`
	Since     time.Time `json:"since"`
}

// ShareSelection is the share step sub-state
type ShareSelection struct {
	Brand        *affiliate.Brand       `json:"brand,omitempty"`
	OptionsShown bool                   `json:"options_shown"`
	Channel      affiliate.ShareChannel `json:"channel,omitempty"`
	ConfirmedAt  *time.Time             `json:"confirmed_at,omitempty"`
}

// AdvanceAt returns when the confirmed share completes the step, or nil
func (s ShareSelection) AdvanceAt() *time.Time {
	if s.ConfirmedAt == nil {
		return nil
	}
	at := s.ConfirmedAt.Add(ShareConfirmationDelay)
	return &at
}

// SaleCheck is the sale step sub-state
type SaleCheck struct {
	Status      SaleCheckStatus        `json:"status"`
	Checked     bool                   `json:"checked"`
	Transaction *affiliate.Transaction `json:"transaction,omitempty"`
}

// OnboardingSession is the aggregate root for one user's pass through the
// onboarding flow. CurrentStep is always the lowest step not yet completed.
type OnboardingSession struct {
	shared.BaseAggregateRoot
	UserID            string               `json:"user_id"`
	Status            SessionStatus        `json:"status"`
	User              affiliate.RemoteUser `json:"user"`
	CompletedSteps    StepSet              `json:"completed_steps"`
	SkippedSteps      StepSet              `json:"skipped_steps"`
	CelebratedWelcome bool                 `json:"celebrated_welcome"`
	Notification      *PointsNotification  `json:"notification,omitempty"`
	Share             ShareSelection       `json:"share"`
	Sale              SaleCheck            `json:"sale"`
	Pending           *PendingRequest      `json:"pending,omitempty"`
	FinishedAt        *time.Time           `json:"finished_at,omitempty"`
	DismissedAt       *time.Time           `json:"dismissed_at,omitempty"`
}

// NewOnboardingSession opens a session for a user from the platform snapshot
func NewOnboardingSession(userID string, user affiliate.RemoteUser, now time.Time) (*OnboardingSession, error) {
	if userID == "" {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if user.Points < 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Points balance cannot be negative")
	}

	return &OnboardingSession{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		UserID:            userID,
		Status:            SessionStatusActive,
		User:              user,
		CompletedSteps:    StepSet{},
		SkippedSteps:      StepSet{},
		Sale:              SaleCheck{Status: SaleCheckPending},
	}, nil
}

// CurrentStep returns the lowest step not yet completed, or StepFinished
func (s *OnboardingSession) CurrentStep() Step {
	for _, step := range Steps() {
		if !s.CompletedSteps.Contains(step) {
			return step
		}
	}
	return StepFinished
}

// LocalPointsTotal sums the rewards of completed steps that were not skipped.
// It is a display approximation; the platform owns the real balance.
func (s *OnboardingSession) LocalPointsTotal() int {
	total := 0
	for _, step := range s.CompletedSteps {
		if !s.SkippedSteps.Contains(step) {
			total += RewardFor(step)
		}
	}
	return total
}

// IsLive reports whether results may still be applied to the session
func (s *OnboardingSession) IsLive() bool {
	return s.Status == SessionStatusActive
}

// CanAcknowledgeSale reports whether the finish action is enabled
func (s *OnboardingSession) CanAcknowledgeSale() bool {
	return s.IsLive() && s.CurrentStep() == StepSale && s.Sale.Status == SaleCheckCompleted
}

// ---------------------------------------------------------------------------
// Guards
// ---------------------------------------------------------------------------

func (s *OnboardingSession) ensureLive() error {
	if !s.IsLive() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Session is %s", s.Status))
	}
	return nil
}

// RequireStep rejects action unless the session is live and on step
func (s *OnboardingSession) RequireStep(step Step, action string) error {
	if err := s.ensureLive(); err != nil {
		return err
	}
	if current := s.CurrentStep(); current != step {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot %s while on step %s", action, current))
	}
	return nil
}

func (s *OnboardingSession) requireNoShareConfirmation(action string) error {
	if s.Share.ConfirmedAt != nil {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot %s after the link was shared", action))
	}
	return nil
}

// ---------------------------------------------------------------------------
// In-flight requests
// ---------------------------------------------------------------------------

// InFlight reports whether an upstream call started within PendingLease
func (s *OnboardingSession) InFlight(now time.Time) bool {
	return s.Pending != nil && now.Sub(s.Pending.Since) < PendingLease
}

// RequireIdle rejects any transition while an upstream call is in flight.
// Dismiss is the only operation that does not go through it.
func (s *OnboardingSession) RequireIdle(now time.Time) error {
	if s.InFlight(now) {
		return shared.NewDomainError("REQUEST_IN_FLIGHT",
			fmt.Sprintf("%s is still being processed", s.Pending.Operation))
	}
	return nil
}

// BeginRequest records an upstream call in progress
func (s *OnboardingSession) BeginRequest(operation string, now time.Time) error {
	if err := s.ensureLive(); err != nil {
		return err
	}
	if err := s.RequireIdle(now); err != nil {
		return err
	}
	s.Pending = &PendingRequest{Operation: operation, Since: now}
	s.Touch(now)
	return nil
}

// EndRequest clears the in-flight marker
func (s *OnboardingSession) EndRequest(now time.Time) {
	s.Pending = nil
	s.Touch(now)
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

// complete adds step to CompletedSteps. Rewarded steps raise a notification.
func (s *OnboardingSession) complete(step Step, rewarded bool, now time.Time) {
	s.CompletedSteps = s.CompletedSteps.Add(step)
	if rewarded {
		points := RewardFor(step)
		s.Notification = &PointsNotification{
			Step:      step,
			Points:    points,
			ExpiresAt: now.Add(NotificationDuration),
		}
		s.AddDomainEvent(NewStepCompletedEvent(s, step, points, now))
	} else {
		s.SkippedSteps = s.SkippedSteps.Add(step)
		s.AddDomainEvent(NewStepSkippedEvent(s, step, now))
	}
	s.Touch(now)
}

// Start moves WELCOME -> PROFILE and fires the welcome celebration once
func (s *OnboardingSession) Start(now time.Time) error {
	if err := s.RequireStep(StepWelcome, "start onboarding"); err != nil {
		return err
	}

	s.complete(StepWelcome, true, now)
	s.AddDomainEvent(NewOnboardingStartedEvent(s, now))

	if !s.CelebratedWelcome {
		s.CelebratedWelcome = true
		s.AddDomainEvent(NewCelebrationTriggeredEvent(s, CelebrationWelcome, now))
	}
	return nil
}

// CompleteProfile moves PROFILE -> SHARE once the platform accepted the profile
func (s *OnboardingSession) CompleteProfile(now time.Time) error {
	if err := s.RequireStep(StepProfile, "complete profile"); err != nil {
		return err
	}
	s.complete(StepProfile, true, now)
	return nil
}

// Skip advances past the profile or share step without awarding points
func (s *OnboardingSession) Skip(step Step, now time.Time) error {
	if step != StepProfile && step != StepShare {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Step %s cannot be skipped this way", step))
	}
	if err := s.RequireStep(step, "skip "+step.String()); err != nil {
		return err
	}
	if step == StepShare {
		if err := s.requireNoShareConfirmation("skip"); err != nil {
			return err
		}
		s.Share = ShareSelection{}
	}
	s.complete(step, false, now)
	return nil
}

// SelectBrand picks the brand whose link will be shared
func (s *OnboardingSession) SelectBrand(brand affiliate.Brand, now time.Time) error {
	if err := s.RequireStep(StepShare, "select a brand"); err != nil {
		return err
	}
	if err := s.requireNoShareConfirmation("change brand"); err != nil {
		return err
	}
	s.Share = ShareSelection{Brand: &brand}
	s.Touch(now)
	return nil
}

// DeselectBrand resets the share selection
func (s *OnboardingSession) DeselectBrand(now time.Time) error {
	if err := s.RequireStep(StepShare, "deselect a brand"); err != nil {
		return err
	}
	if err := s.requireNoShareConfirmation("deselect brand"); err != nil {
		return err
	}
	s.Share = ShareSelection{}
	s.Touch(now)
	return nil
}

// ShowShareOptions reveals the social share buttons for the selected brand
func (s *OnboardingSession) ShowShareOptions(now time.Time) error {
	if err := s.RequireStep(StepShare, "show share options"); err != nil {
		return err
	}
	if s.Share.Brand == nil {
		return shared.NewDomainError("INVALID_STATE", "Select a brand before sharing")
	}
	s.Share.OptionsShown = true
	s.Touch(now)
	return nil
}

// CanShare checks whether a share through channel may be attempted
func (s *OnboardingSession) CanShare(channel affiliate.ShareChannel) error {
	if err := s.RequireStep(StepShare, "share a link"); err != nil {
		return err
	}
	if !channel.IsValid() {
		return shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Unknown share channel: %s", channel))
	}
	if s.Share.Brand == nil {
		return shared.NewDomainError("INVALID_STATE", "Select a brand before sharing")
	}
	if channel.IsSocial() && !s.Share.OptionsShown {
		return shared.NewDomainError("INVALID_STATE", "Share options are not shown")
	}
	return s.requireNoShareConfirmation("share again")
}

// ConfirmShare records a share the platform accepted. The step completes
// once the confirmation has been displayed for ShareConfirmationDelay.
func (s *OnboardingSession) ConfirmShare(channel affiliate.ShareChannel, now time.Time) error {
	if err := s.CanShare(channel); err != nil {
		return err
	}
	confirmedAt := now
	s.Share.Channel = channel
	s.Share.ConfirmedAt = &confirmedAt
	s.AddDomainEvent(NewLinkSharedEvent(s, channel, now))
	s.Touch(now)
	return nil
}

// BeginSaleCheck moves the sale check to processing
func (s *OnboardingSession) BeginSaleCheck(now time.Time) error {
	if err := s.RequireStep(StepSale, "check for a sale"); err != nil {
		return err
	}
	if !s.Sale.Status.CanTransitionTo(SaleCheckProcessing) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot check for a sale while %s", s.Sale.Status))
	}
	s.Sale.Status = SaleCheckProcessing
	s.Touch(now)
	return nil
}

// ApplySaleCheck records the platform's answer. A positive answer carries
// the transaction so the completed state can display it.
func (s *OnboardingSession) ApplySaleCheck(tx *affiliate.Transaction, now time.Time) error {
	if err := s.RequireStep(StepSale, "record a sale check"); err != nil {
		return err
	}
	if s.Sale.Status != SaleCheckProcessing {
		return shared.NewDomainError("INVALID_STATE", "No sale check in progress")
	}

	s.Sale.Checked = true
	if tx == nil {
		s.Sale.Status = SaleCheckPending
		s.Touch(now)
		return nil
	}

	s.Sale.Status = SaleCheckCompleted
	s.Sale.Transaction = tx
	s.AddDomainEvent(NewFirstSaleDetectedEvent(s, *tx, now))
	s.AddDomainEvent(NewCelebrationTriggeredEvent(s, CelebrationFirstSale, now))
	s.Touch(now)
	return nil
}

// RevertSaleCheck restores pending after a failed call, keeping Checked as it was
func (s *OnboardingSession) RevertSaleCheck(now time.Time) {
	if s.Sale.Status == SaleCheckProcessing {
		s.Sale.Status = SaleCheckPending
		s.Touch(now)
	}
}

// CanCompleteSale checks the SALE -> FINISHED guard without mutating.
// Steps 1 to 3 must be complete, which requireStep enforces.
func (s *OnboardingSession) CanCompleteSale(skipped bool) error {
	if err := s.RequireStep(StepSale, "finish onboarding"); err != nil {
		return err
	}
	if s.Sale.Status == SaleCheckProcessing {
		return shared.NewDomainError("REQUEST_IN_FLIGHT", "Sale check is still being processed")
	}
	if !skipped && s.Sale.Status != SaleCheckCompleted {
		return shared.NewDomainError("INVALID_STATE", "No confirmed sale to acknowledge")
	}
	return nil
}

// CompleteSale moves SALE -> FINISHED after the platform recorded completion
func (s *OnboardingSession) CompleteSale(skipped bool, now time.Time) error {
	if err := s.CanCompleteSale(skipped); err != nil {
		return err
	}
	if !s.Status.CanTransitionTo(SessionStatusFinished) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finish session in %s status", s.Status))
	}

	s.complete(StepSale, !skipped, now)
	s.Status = SessionStatusFinished
	s.FinishedAt = &now
	s.User.FirstTimeLogin = false
	s.Pending = nil
	s.AddDomainEvent(NewOnboardingFinishedEvent(s, skipped, now))
	return nil
}

// Dismiss closes the session without recording completion on the platform
func (s *OnboardingSession) Dismiss(now time.Time) error {
	if !s.Status.CanTransitionTo(SessionStatusDismissed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot dismiss session in %s status", s.Status))
	}
	s.Status = SessionStatusDismissed
	s.DismissedAt = &now
	s.Pending = nil
	s.Touch(now)
	s.AddDomainEvent(NewOnboardingDismissedEvent(s, now))
	return nil
}

// Settle applies time-driven changes: a due share advance and an expired
// notification. It returns true if anything changed.
func (s *OnboardingSession) Settle(now time.Time) bool {
	changed := false

	if s.Notification != nil && !now.Before(s.Notification.ExpiresAt) {
		s.Notification = nil
		changed = true
	}

	if s.IsLive() && s.CurrentStep() == StepShare {
		if at := s.Share.AdvanceAt(); at != nil && !now.Before(*at) {
			s.complete(StepShare, true, now)
			s.Share = ShareSelection{}
			changed = true
		}
	}

	return changed
}

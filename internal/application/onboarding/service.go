package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Operation names recorded on the session while an upstream call is in flight
const (
	OperationProfile   = "profile"
	OperationShare     = "share"
	OperationSaleCheck = "sale_check"
	OperationFinish    = "finish"
)

// OnboardingService orchestrates the onboarding state machine. Local
// transitions are applied directly; transitions that depend on the platform
// are applied only after the platform accepted the write.
type OnboardingService struct {
	repo            onboarding.SessionRepository
	platform        PlatformClient
	catalog         CatalogProvider
	validator       *ProfileValidator
	poller          *TransactionPoller
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	linkBaseURL     string
	now             func() time.Time
	logger          *zap.Logger
}

// Option configures an OnboardingService
type Option func(*OnboardingService)

// WithClock replaces the wall clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *OnboardingService) {
		s.now = now
	}
}

// WithLinkBaseURL sets the tracked link prefix
func WithLinkBaseURL(baseURL string) Option {
	return func(s *OnboardingService) {
		s.linkBaseURL = baseURL
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *OnboardingService) {
		s.logger = logger
	}
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(repo onboarding.SessionRepository, platform PlatformClient, catalog CatalogProvider, opts ...Option) *OnboardingService {
	s := &OnboardingService{
		repo:        repo,
		platform:    platform,
		catalog:     catalog,
		validator:   NewProfileValidator(),
		linkBaseURL: affiliate.DefaultLinkBaseURL,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.poller = NewTransactionPoller(platform, s.logger)
	return s
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OnboardingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *OnboardingService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// ---------------------------------------------------------------------------
// Session lifecycle
// ---------------------------------------------------------------------------

// Open returns the user's live session, creating one if none exists
func (s *OnboardingService) Open(ctx context.Context, userID string, req OpenSessionRequest) (*OpenSessionResponse, error) {
	catalog := s.catalogSnapshot()

	existing, err := s.repo.FindLiveByUser(ctx, userID)
	if err == nil {
		resp, err := s.settleAndRespond(ctx, existing)
		if err != nil {
			return nil, err
		}
		s.businessMetrics.RecordSessionOpened(ctx, true)
		return &OpenSessionResponse{Session: *resp, Catalog: *catalog, Resumed: true}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	session, err := onboarding.NewOnboardingSession(userID, req.User, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("onboarding session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("user_id", userID),
	)
	s.businessMetrics.RecordSessionOpened(ctx, false)

	resp := ToSessionResponse(session, catalog, s.linkBaseURL, nil)
	return &OpenSessionResponse{Session: resp, Catalog: *catalog}, nil
}

// Get returns the settled snapshot of a session
func (s *OnboardingService) Get(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	session, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.settleAndRespond(ctx, session)
}

// Dismiss ends the session without marking completion on the platform.
// It is available in every step, even while a request is in flight.
func (s *OnboardingService) Dismiss(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	session, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := session.Dismiss(s.now()); err != nil {
		return nil, err
	}
	return s.commit(ctx, session)
}

// ---------------------------------------------------------------------------
// Welcome
// ---------------------------------------------------------------------------

// Start completes the welcome step
func (s *OnboardingService) Start(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	return s.mutate(ctx, userID, id, func(session *onboarding.OnboardingSession, now time.Time) error {
		return session.Start(now)
	})
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

// SubmitProfile validates the form, saves it on the platform and only then
// completes the profile step. Validation errors never reach the platform.
func (s *OnboardingService) SubmitProfile(ctx context.Context, userID string, id uuid.UUID, form onboarding.ProfileForm) (*SessionResponse, error) {
	form = form.Normalize()

	return runRemote(ctx, s, userID, id, remoteCall[struct{}]{
		operation: OperationProfile,
		prepare: func(session *onboarding.OnboardingSession, _ time.Time) error {
			if err := session.RequireStep(onboarding.StepProfile, "submit profile"); err != nil {
				return err
			}
			if fieldErrors := s.validator.Validate(form); len(fieldErrors) > 0 {
				return shared.NewValidationError(fieldErrors)
			}
			return nil
		},
		call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.platform.SaveProfile(ctx, ProfilePayload{
				Name:           form.FullName,
				Email:          form.Email,
				Phone:          form.FullPhone(s.catalogSnapshot().DialCode(form.CountryCode)),
				PaymentMethod:  string(form.PaymentMethod),
				PaymentDetails: form.PaymentDetails,
			})
		},
		apply: func(session *onboarding.OnboardingSession, _ struct{}, now time.Time) error {
			return session.CompleteProfile(now)
		},
	})
}

// SkipProfile advances past the profile step without points
func (s *OnboardingService) SkipProfile(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	return s.mutate(ctx, userID, id, func(session *onboarding.OnboardingSession, now time.Time) error {
		return session.Skip(onboarding.StepProfile, now)
	})
}

// ---------------------------------------------------------------------------
// Share
// ---------------------------------------------------------------------------

// SelectBrand picks a catalog brand for the share step
func (s *OnboardingService) SelectBrand(ctx context.Context, userID string, id uuid.UUID, req SelectBrandRequest) (*SessionResponse, error) {
	brand, err := s.catalogSnapshot().Brand(req.BrandID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, id, func(session *onboarding.OnboardingSession, now time.Time) error {
		return session.SelectBrand(*brand, now)
	})
}

// DeselectBrand clears the share selection
func (s *OnboardingService) DeselectBrand(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	return s.mutate(ctx, userID, id, func(session *onboarding.OnboardingSession, now time.Time) error {
		return session.DeselectBrand(now)
	})
}

// ShowShareOptions reveals the social share intents
func (s *OnboardingService) ShowShareOptions(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	return s.mutate(ctx, userID, id, func(session *onboarding.OnboardingSession, now time.Time) error {
		return session.ShowShareOptions(now)
	})
}

// Share records a copy or social share. The share mission is marked on the
// platform first; the step advances once the confirmation has been shown.
func (s *OnboardingService) Share(ctx context.Context, userID string, id uuid.UUID, req ShareRequest) (*SessionResponse, error) {
	return runRemote(ctx, s, userID, id, remoteCall[struct{}]{
		operation: OperationShare,
		prepare: func(session *onboarding.OnboardingSession, _ time.Time) error {
			return session.CanShare(req.Channel)
		},
		call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.platform.MarkShareMission(ctx)
		},
		apply: func(session *onboarding.OnboardingSession, _ struct{}, now time.Time) error {
			return session.ConfirmShare(req.Channel, now)
		},
	})
}

// SkipShare advances past the share step without points
func (s *OnboardingService) SkipShare(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	return s.mutate(ctx, userID, id, func(session *onboarding.OnboardingSession, now time.Time) error {
		return session.Skip(onboarding.StepShare, now)
	})
}

// ---------------------------------------------------------------------------
// Sale
// ---------------------------------------------------------------------------

// CheckTransaction runs one user-invoked first-sale check
func (s *OnboardingService) CheckTransaction(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	return runRemote(ctx, s, userID, id, remoteCall[*affiliate.Transaction]{
		operation: OperationSaleCheck,
		prepare: func(session *onboarding.OnboardingSession, now time.Time) error {
			return session.BeginSaleCheck(now)
		},
		call: s.poller.Check,
		rollback: func(session *onboarding.OnboardingSession, now time.Time) {
			session.RevertSaleCheck(now)
		},
		apply: func(session *onboarding.OnboardingSession, tx *affiliate.Transaction, now time.Time) error {
			return session.ApplySaleCheck(tx, now)
		},
	})
}

// AcknowledgeSale finishes onboarding after a confirmed first sale
func (s *OnboardingService) AcknowledgeSale(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	return s.finish(ctx, userID, id, false)
}

// SkipSale finishes onboarding without waiting for a sale
func (s *OnboardingService) SkipSale(ctx context.Context, userID string, id uuid.UUID) (*SessionResponse, error) {
	return s.finish(ctx, userID, id, true)
}

// finish records completion on the platform, then applies step 4.
// On failure the session stays open and unchanged.
func (s *OnboardingService) finish(ctx context.Context, userID string, id uuid.UUID, skipped bool) (*SessionResponse, error) {
	return runRemote(ctx, s, userID, id, remoteCall[struct{}]{
		operation: OperationFinish,
		prepare: func(session *onboarding.OnboardingSession, _ time.Time) error {
			return session.CanCompleteSale(skipped)
		},
		call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.platform.CompleteOnboarding(ctx)
		},
		apply: func(session *onboarding.OnboardingSession, _ struct{}, now time.Time) error {
			return session.CompleteSale(skipped, now)
		},
	})
}

// ---------------------------------------------------------------------------
// Plumbing
// ---------------------------------------------------------------------------

// remoteCall describes a transition that depends on a platform write
type remoteCall[T any] struct {
	operation string
	prepare   func(*onboarding.OnboardingSession, time.Time) error
	call      func(context.Context) (T, error)
	rollback  func(*onboarding.OnboardingSession, time.Time)
	apply     func(*onboarding.OnboardingSession, T, time.Time) error
}

// runRemote marks the session busy, calls the platform, then reloads the
// session and applies the result only if the session is still live.
// Whatever happens after the call, the in-flight marker is cleared.
func runRemote[T any](ctx context.Context, s *OnboardingService, userID string, id uuid.UUID, rc remoteCall[T]) (*SessionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "onboarding", rc.operation,
		telemetry.SpanAttrSessionID.String(id.String()),
		telemetry.SpanAttrOperation.String(rc.operation),
	)
	defer span.End()

	resp, err := runRemoteInSpan(ctx, s, userID, id, rc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.SpanAttrStep.Int(resp.CurrentStep))
	telemetry.SetOK(span)
	return resp, nil
}

func runRemoteInSpan[T any](ctx context.Context, s *OnboardingService, userID string, id uuid.UUID, rc remoteCall[T]) (*SessionResponse, error) {
	session, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.Settle(now)
	if rc.prepare != nil {
		if err := rc.prepare(session, now); err != nil {
			return nil, err
		}
	}
	if err := session.BeginRequest(rc.operation, now); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	s.publish(ctx, s.drainEvents(session))

	// The call is not cancelled when the caller goes away; its result is
	// still checked against the session below.
	detached := context.WithoutCancel(ctx)
	result, callErr := rc.call(detached)

	session, err = s.repo.FindByID(detached, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, s.dropResult(id, rc.operation)
		}
		return nil, err
	}
	if !session.IsLive() {
		return nil, s.dropResult(id, rc.operation)
	}

	now = s.now()
	session.Settle(now)
	session.EndRequest(now)

	if callErr != nil {
		s.logger.Warn("platform call failed",
			zap.String("session_id", id.String()),
			zap.String("operation", rc.operation),
			zap.Error(callErr),
		)
		s.businessMetrics.RecordUpstreamFailure(detached, rc.operation)
		if rc.rollback != nil {
			rc.rollback(session, now)
		}
		s.release(detached, session, rc.operation)
		return nil, callErr
	}

	if err := rc.apply(session, result, now); err != nil {
		// The platform accepted the write but the session moved on meanwhile
		// (an expired lease let another transition through).
		s.logger.Warn("platform result no longer applies",
			zap.String("session_id", id.String()),
			zap.String("operation", rc.operation),
			zap.Error(err),
		)
		s.release(detached, session, rc.operation)
		return nil, err
	}

	resp, err := s.commit(detached, session)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, s.dropResult(id, rc.operation)
	}
	return resp, err
}

// release saves a session whose in-flight marker was cleared without
// applying the platform result
func (s *OnboardingService) release(ctx context.Context, session *onboarding.OnboardingSession, operation string) {
	if _, err := s.commit(ctx, session); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return
		}
		s.logger.Error("failed to clear in-flight marker",
			zap.String("session_id", session.ID.String()),
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
}

func (s *OnboardingService) dropResult(id uuid.UUID, operation string) error {
	s.logger.Info("dropping result for closed session",
		zap.String("session_id", id.String()),
		zap.String("operation", operation),
	)
	return shared.ErrSessionClosed
}

// mutate applies a local transition to a settled session and commits it.
// Local transitions wait for any in-flight platform call to finish.
func (s *OnboardingService) mutate(ctx context.Context, userID string, id uuid.UUID, fn func(*onboarding.OnboardingSession, time.Time) error) (*SessionResponse, error) {
	session, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session.Settle(now)
	if err := session.RequireIdle(now); err != nil {
		return nil, err
	}
	if err := fn(session, now); err != nil {
		return nil, err
	}
	return s.commit(ctx, session)
}

// find loads a session owned by userID
func (s *OnboardingService) find(ctx context.Context, userID string, id uuid.UUID) (*onboarding.OnboardingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

// settleAndRespond persists time-driven changes before returning a snapshot
func (s *OnboardingService) settleAndRespond(ctx context.Context, session *onboarding.OnboardingSession) (*SessionResponse, error) {
	if !session.Settle(s.now()) {
		resp := ToSessionResponse(session, s.catalogSnapshot(), s.linkBaseURL, nil)
		return &resp, nil
	}

	resp, err := s.commit(ctx, session)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		// Another request already saved a newer version; show that one.
		fresh, findErr := s.repo.FindByID(ctx, session.ID)
		if findErr != nil {
			return nil, findErr
		}
		fresh.Settle(s.now())
		r := ToSessionResponse(fresh, s.catalogSnapshot(), s.linkBaseURL, nil)
		return &r, nil
	}
	return resp, err
}

// commit saves a live session or discards a closed one, then publishes
// its events and builds the response
func (s *OnboardingService) commit(ctx context.Context, session *onboarding.OnboardingSession) (*SessionResponse, error) {
	if session.IsLive() {
		if err := s.repo.Save(ctx, session); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Delete(ctx, session.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	events := s.drainEvents(session)
	s.publish(ctx, events)

	resp := ToSessionResponse(session, s.catalogSnapshot(), s.linkBaseURL, events)
	return &resp, nil
}

func (s *OnboardingService) drainEvents(session *onboarding.OnboardingSession) []shared.DomainEvent {
	events := session.GetDomainEvents()
	session.ClearDomainEvents()
	return events
}

func (s *OnboardingService) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 {
		return
	}
	s.recordMetrics(ctx, events)

	span := trace.SpanFromContext(ctx)
	for _, e := range events {
		telemetry.AddEvent(span, e.EventType(), telemetry.SpanAttrSessionID.String(e.AggregateID().String()))
	}

	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		// Event delivery is best effort; the session is already saved.
		s.logger.Error("failed to publish onboarding events", zap.Error(err))
	}
}

func (s *OnboardingService) recordMetrics(ctx context.Context, events []shared.DomainEvent) {
	for _, e := range events {
		switch ev := e.(type) {
		case *onboarding.StepCompletedEvent:
			s.businessMetrics.RecordStepCompleted(ctx, int(ev.Step), ev.Points)
		case *onboarding.StepSkippedEvent:
			s.businessMetrics.RecordStepSkipped(ctx, int(ev.Step))
		case *onboarding.OnboardingFinishedEvent:
			s.businessMetrics.RecordSessionFinished(ctx, ev.TotalPoints, ev.SaleSkipped)
		case *onboarding.OnboardingDismissedEvent:
			s.businessMetrics.RecordSessionDismissed(ctx, len(ev.CompletedSteps))
		}
	}
}

func (s *OnboardingService) catalogSnapshot() *affiliate.Catalog {
	if s.catalog == nil {
		return &affiliate.Catalog{Missions: affiliate.DefaultMissions()}
	}
	return s.catalog.Catalog()
}

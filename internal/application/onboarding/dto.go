package onboarding

import (
	"time"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Effects are fire-and-forget UI side effects attached to a response
const (
	EffectCelebrate = "celebrate"
)

// ==================== Requests ====================

// OpenSessionRequest carries the host page's snapshot of the user
type OpenSessionRequest struct {
	User affiliate.RemoteUser `json:"user"`
}

// SelectBrandRequest picks a brand on the share step
type SelectBrandRequest struct {
	BrandID string `json:"brand_id" binding:"required"`
}

// ShareRequest shares the selected brand's link through a channel
type ShareRequest struct {
	Channel affiliate.ShareChannel `json:"channel" binding:"required,oneof=copy whatsapp facebook twitter"`
}

// ==================== Responses ====================

// NotificationResponse is the transient points banner
type NotificationResponse struct {
	Step      int       `json:"step"`
	Points    int       `json:"points"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareResponse is the share step sub-state with the derived tracked link
type ShareResponse struct {
	Brand        *affiliate.Brand  `json:"brand,omitempty"`
	OptionsShown bool              `json:"options_shown"`
	Link         string            `json:"link,omitempty"`
	ShareURLs    map[string]string `json:"share_urls,omitempty"`
	Channel      string            `json:"channel,omitempty"`
	ConfirmedAt  *time.Time        `json:"confirmed_at,omitempty"`
	AdvanceAt    *time.Time        `json:"advance_at,omitempty"`
}

// SaleResponse is the sale step sub-state
type SaleResponse struct {
	Status         string                 `json:"status"`
	Checked        bool                   `json:"checked"`
	Transaction    *affiliate.Transaction `json:"transaction,omitempty"`
	CanAcknowledge bool                   `json:"can_acknowledge"`
}

// MissionResponse is a checklist row with completion taken from the session
type MissionResponse struct {
	affiliate.Mission
	Completed bool `json:"completed"`
}

// SessionResponse is the read-only snapshot of a session handed to the front-end
type SessionResponse struct {
	ID               uuid.UUID             `json:"id"`
	Status           string                `json:"status"`
	CurrentStep      int                   `json:"current_step"`
	CurrentStepName  string                `json:"current_step_name"`
	CompletedSteps   []int                 `json:"completed_steps"`
	SkippedSteps     []int                 `json:"skipped_steps"`
	LocalPointsTotal int                   `json:"local_points_total"`
	StepRewards      map[int]int           `json:"step_rewards"`
	Notification     *NotificationResponse `json:"notification,omitempty"`
	Share            ShareResponse         `json:"share"`
	Sale             SaleResponse          `json:"sale"`
	Pending          string                `json:"pending,omitempty"`
	User             affiliate.RemoteUser  `json:"user"`
	Missions         []MissionResponse     `json:"missions"`
	Effects          []string              `json:"effects"`
	Version          int                   `json:"version"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// OpenSessionResponse adds the bootstrap catalog to the session
type OpenSessionResponse struct {
	Session SessionResponse   `json:"session"`
	Catalog affiliate.Catalog `json:"catalog"`
	Resumed bool              `json:"resumed"`
}

// ToSessionResponse converts the aggregate into its response form
func ToSessionResponse(s *onboarding.OnboardingSession, catalog *affiliate.Catalog, linkBaseURL string, events []shared.DomainEvent) SessionResponse {
	rewards := make(map[int]int)
	for step, points := range onboarding.RewardTable() {
		rewards[int(step)] = points
	}

	current := s.CurrentStep()
	resp := SessionResponse{
		ID:               s.ID,
		Status:           s.Status.String(),
		CurrentStep:      int(current),
		CurrentStepName:  current.String(),
		CompletedSteps:   s.CompletedSteps.Ints(),
		SkippedSteps:     s.SkippedSteps.Ints(),
		LocalPointsTotal: s.LocalPointsTotal(),
		StepRewards:      rewards,
		Share:            toShareResponse(s, linkBaseURL),
		Sale: SaleResponse{
			Status:         string(s.Sale.Status),
			Checked:        s.Sale.Checked,
			Transaction:    s.Sale.Transaction,
			CanAcknowledge: s.CanAcknowledgeSale(),
		},
		User:      s.User,
		Missions:  MissionProgress(catalog, s),
		Effects:   EffectsFromEvents(events),
		Version:   s.GetVersion(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}

	if n := s.Notification; n != nil {
		resp.Notification = &NotificationResponse{Step: int(n.Step), Points: n.Points, ExpiresAt: n.ExpiresAt}
	}
	if s.Pending != nil {
		resp.Pending = s.Pending.Operation
	}
	return resp
}

func toShareResponse(s *onboarding.OnboardingSession, linkBaseURL string) ShareResponse {
	share := ShareResponse{
		Brand:        s.Share.Brand,
		OptionsShown: s.Share.OptionsShown,
		Channel:      string(s.Share.Channel),
		ConfirmedAt:  s.Share.ConfirmedAt,
		AdvanceAt:    s.Share.AdvanceAt(),
	}
	if s.Share.Brand == nil {
		return share
	}

	share.Link = affiliate.GenerateLink(linkBaseURL, s.User.Code(), s.Share.Brand.Name)
	if s.Share.OptionsShown {
		share.ShareURLs = make(map[string]string)
		for _, ch := range []affiliate.ShareChannel{affiliate.ShareChannelWhatsApp, affiliate.ShareChannelFacebook, affiliate.ShareChannelTwitter} {
			share.ShareURLs[string(ch)] = affiliate.ShareURL(ch, share.Link)
		}
	}
	return share
}

// MissionProgress marks each catalog mission completed when its step is.
// Mission IDs are step numbers.
func MissionProgress(catalog *affiliate.Catalog, s *onboarding.OnboardingSession) []MissionResponse {
	missions := affiliate.DefaultMissions()
	if catalog != nil && len(catalog.Missions) > 0 {
		missions = catalog.Missions
	}

	out := make([]MissionResponse, 0, len(missions))
	for _, m := range missions {
		completed := false
		if s != nil {
			completed = s.CompletedSteps.Contains(onboarding.Step(m.ID))
		}
		out = append(out, MissionResponse{Mission: m, Completed: completed})
	}
	return out
}

// EffectsFromEvents maps raised domain events to UI effects
func EffectsFromEvents(events []shared.DomainEvent) []string {
	effects := make([]string, 0)
	for _, e := range events {
		if e.EventType() == onboarding.EventTypeCelebrationTriggered {
			effects = append(effects, EffectCelebrate)
		}
	}
	return effects
}

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LedgerService fronts the platform's points ledger: tracked links and
// reward redemption. It keeps no balance of its own.
type LedgerService struct {
	platform        PlatformClient
	catalog         CatalogProvider
	guard           shared.InFlightGuard
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(platform PlatformClient, catalog CatalogProvider, guard shared.InFlightGuard, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		platform: platform,
		catalog:  catalog,
		guard:    guard,
		logger:   logger,
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (s *LedgerService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// GenerateLink asks the platform for a tracked link for brandID
func (s *LedgerService) GenerateLink(ctx context.Context, req GenerateLinkRequest) (*GenerateLinkResponse, error) {
	result, err := s.platform.GenerateLink(ctx, req.BrandID)
	if err != nil {
		return nil, err
	}
	if result == nil || !result.Success || result.AffiliateLink == "" {
		s.logger.Warn("platform declined link generation", zap.String("brand_id", req.BrandID))
		return nil, affiliate.ErrLinkGeneration
	}
	return &GenerateLinkResponse{BrandID: req.BrandID, AffiliateLink: result.AffiliateLink}, nil
}

// Rewards lists the catalog rewards flagged against balance
func (s *LedgerService) Rewards(balance int) []RewardResponse {
	return RewardList(s.rewards(), balance)
}

// Redeem exchanges points for a reward. The balance check is advisory and
// only spares a round trip; duplicate submissions are rejected while the
// first is still waiting on the platform.
func (s *LedgerService) Redeem(ctx context.Context, userID, rewardID string, req RedeemRequest) (*RedeemResponse, error) {
	reward, err := s.catalogSnapshot().Reward(rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.CanRedeem(req.Balance) {
		s.businessMetrics.RecordRedemption(ctx, rewardID, telemetry.RedemptionInsufficient)
		return nil, shared.ErrInsufficientPoints
	}

	key := fmt.Sprintf("redeem:%s:%s", userID, rewardID)
	acquired, err := s.guard.Acquire(ctx, key, shared.DefaultInFlightTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire redemption lock: %w", err)
	}
	if !acquired {
		s.businessMetrics.RecordRedemption(ctx, rewardID, telemetry.RedemptionDuplicate)
		return nil, shared.ErrRequestInFlight
	}

	detached := context.WithoutCancel(ctx)
	defer func() {
		if err := s.guard.Release(detached, key); err != nil {
			s.logger.Warn("failed to release redemption lock", zap.String("key", key), zap.Error(err))
		}
	}()

	result, err := s.platform.RedeemReward(detached, rewardID)
	if err != nil {
		if errors.Is(err, affiliate.ErrUpstreamRejected) {
			s.businessMetrics.RecordRedemption(ctx, rewardID, telemetry.RedemptionRejected)
			return nil, redemptionRejected(err.Error())
		}
		s.businessMetrics.RecordRedemption(ctx, rewardID, telemetry.RedemptionFailed)
		return nil, err
	}
	if result == nil || !result.Success {
		message := ""
		if result != nil {
			message = result.Message
		}
		s.businessMetrics.RecordRedemption(ctx, rewardID, telemetry.RedemptionRejected)
		return nil, redemptionRejected(message)
	}

	s.logger.Info("reward redeemed",
		zap.String("user_id", userID),
		zap.String("reward_id", rewardID),
		zap.Int("points", reward.Points),
	)
	s.businessMetrics.RecordRedemption(ctx, rewardID, telemetry.RedemptionSucceeded)
	return &RedeemResponse{RewardID: rewardID, Points: reward.Points, Message: result.Message}, nil
}

func redemptionRejected(message string) *shared.DomainError {
	if message == "" {
		return affiliate.ErrRedemptionRejected
	}
	return shared.NewDomainError(affiliate.ErrRedemptionRejected.Code, message)
}

func (s *LedgerService) rewards() []affiliate.Reward {
	return s.catalogSnapshot().Rewards
}

func (s *LedgerService) catalogSnapshot() *affiliate.Catalog {
	if s.catalog == nil {
		return &affiliate.Catalog{}
	}
	return s.catalog.Catalog()
}

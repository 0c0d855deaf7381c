package onboarding

import (
	"context"

	"github.com/affiliate/backend/internal/domain/affiliate"
	"go.uber.org/zap"
)

// TransactionPoller asks the platform whether the user's first sale has
// happened. It runs once per user action; there is no background polling.
type TransactionPoller struct {
	platform PlatformClient
	logger   *zap.Logger
}

// NewTransactionPoller creates a new TransactionPoller
func NewTransactionPoller(platform PlatformClient, logger *zap.Logger) *TransactionPoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionPoller{platform: platform, logger: logger}
}

// Check returns the first transaction, or nil when there is none yet.
// A positive answer without a payload yields an empty transaction.
func (p *TransactionPoller) Check(ctx context.Context) (*affiliate.Transaction, error) {
	result, err := p.platform.CheckFirstTransaction(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil || !result.HasTransaction {
		p.logger.Debug("no transaction yet")
		return nil, nil
	}
	if result.Transaction == nil {
		p.logger.Warn("platform reported a transaction without details")
		return &affiliate.Transaction{}, nil
	}
	p.logger.Info("first transaction detected",
		zap.String("brand", result.Transaction.BrandName),
		zap.String("commission", result.Transaction.Commission.String()),
	)
	return result.Transaction, nil
}

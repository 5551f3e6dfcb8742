package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"time"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	AttachGatewayIDs(ctx context.Context, reference, checkoutID, merchantID string) error
	// MarkSuccess and MarkFailed report false when the row already left Pending.
	MarkSuccess(ctx context.Context, reference, receipt, phone string) (bool, error)
	MarkFailed(ctx context.Context, reference string) (bool, error)
	FindByReference(ctx context.Context, reference string) (*models.Transaction, error)
	FindByCheckoutID(ctx context.Context, checkoutID string) (*models.Transaction, error)
	FindViewByReference(ctx context.Context, reference string) (*models.TransactionView, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]models.Transaction, error)
}

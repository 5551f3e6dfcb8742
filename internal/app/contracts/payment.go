package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
)

type PaymentUsecase interface {
	InitiatePayment(ctx context.Context, identity *models.Identity, request *requests.InitiatePayment) (*responses.PaymentInitiation, error)
	CheckStatus(ctx context.Context, identity *models.Identity, reference string) (*responses.PaymentStatus, error)
	ProcessPayment(ctx context.Context, identity *models.Identity, request *requests.ProcessPayment) (*responses.PaymentStatus, error)
	GetReceipt(ctx context.Context, identity *models.Identity, reference string) (*responses.PaymentReceipt, error)
	HandleMpesaCallback(ctx context.Context, rawBody []byte, remoteAddr string) *responses.MpesaCallbackAck
	ReconcilePending(ctx context.Context) (int, error)
}

type PaymentReconciler interface {
	HandleCallback(ctx context.Context, callback *requests.MpesaCallback) *responses.MpesaCallbackAck
	// Settle and Fail report false when another path already finalized the transaction.
	Settle(ctx context.Context, transaction *models.Transaction, receipt, phone string) (bool, error)
	Fail(ctx context.Context, transaction *models.Transaction, reason string) (bool, error)
}

package contracts

import (
	"context"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
)

type PaymentGatewayService interface {
	Authenticate(ctx context.Context) (string, error)
	RequestPush(ctx context.Context, request *requests.MpesaPush) (*responses.MpesaPush, error)
	// QueryStatus never fails: anything it cannot interpret is reported as pending.
	QueryStatus(ctx context.Context, checkoutID string) *responses.MpesaStatusQuery
}

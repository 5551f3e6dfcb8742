package payments

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/testsupport/memstore"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockPaymentUsecase struct {
	mock.Mock
}

func (m *MockPaymentUsecase) InitiatePayment(ctx context.Context, identity *models.Identity, request *requests.InitiatePayment) (*responses.PaymentInitiation, error) {
	args := m.Called(ctx, identity, request)
	initiation, _ := args.Get(0).(*responses.PaymentInitiation)
	return initiation, args.Error(1)
}

func (m *MockPaymentUsecase) CheckStatus(ctx context.Context, identity *models.Identity, reference string) (*responses.PaymentStatus, error) {
	args := m.Called(ctx, identity, reference)
	status, _ := args.Get(0).(*responses.PaymentStatus)
	return status, args.Error(1)
}

func (m *MockPaymentUsecase) ProcessPayment(ctx context.Context, identity *models.Identity, request *requests.ProcessPayment) (*responses.PaymentStatus, error) {
	args := m.Called(ctx, identity, request)
	status, _ := args.Get(0).(*responses.PaymentStatus)
	return status, args.Error(1)
}

func (m *MockPaymentUsecase) GetReceipt(ctx context.Context, identity *models.Identity, reference string) (*responses.PaymentReceipt, error) {
	args := m.Called(ctx, identity, reference)
	receipt, _ := args.Get(0).(*responses.PaymentReceipt)
	return receipt, args.Error(1)
}

func (m *MockPaymentUsecase) HandleMpesaCallback(ctx context.Context, rawBody []byte, remoteAddr string) *responses.MpesaCallbackAck {
	args := m.Called(ctx, rawBody, remoteAddr)
	return args.Get(0).(*responses.MpesaCallbackAck)
}

func (m *MockPaymentUsecase) ReconcilePending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestWorkerRunOnce(t *testing.T) {
	cfg := &config.InternalConfig{Payment: config.AppPayment{ReconcileLeaderLockTTL: time.Minute}}

	t.Run("leader sweeps and releases the lock", func(t *testing.T) {
		redis := memstore.NewRedis()
		usecase := &MockPaymentUsecase{}
		usecase.On("ReconcilePending", mock.Anything).Return(2, nil).Once()
		worker := NewWorker(zap.NewNop(), cfg, &redisLocker{redis: redis}, usecase)

		worker.runOnce(context.Background())

		usecase.AssertExpectations(t)
		holder, _ := redis.Get(context.Background(), constvars.LockKeyPaymentReconcileLeader)
		assert.Empty(t, holder, "leader lock should be released after the sweep")
	})

	t.Run("follower skips the sweep", func(t *testing.T) {
		redis := memstore.NewRedis()
		_, _ = redis.TrySetNX(context.Background(), constvars.LockKeyPaymentReconcileLeader, "other-instance", time.Minute)
		usecase := &MockPaymentUsecase{}
		worker := NewWorker(zap.NewNop(), cfg, &redisLocker{redis: redis}, usecase)

		worker.runOnce(context.Background())

		usecase.AssertNotCalled(t, "ReconcilePending", mock.Anything)
	})
}

func TestWorkerStartStop(t *testing.T) {
	cfg := &config.InternalConfig{Payment: config.AppPayment{ReconcileCronSpec: "not a spec"}}
	worker := NewWorker(zap.NewNop(), cfg, &redisLocker{redis: memstore.NewRedis()}, &MockPaymentUsecase{})

	worker.Start(context.Background())
	assert.Len(t, worker.cron.Entries(), 1, "invalid spec falls back to the default schedule")
	worker.Stop()
}

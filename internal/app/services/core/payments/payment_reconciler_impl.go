package payments

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/utils"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// paymentReconciler is the single place where a Pending transaction becomes terminal.
// Both the provider callback and the status poll end up here.
type paymentReconciler struct {
	Transactor            contracts.Transactor
	TransactionRepository contracts.TransactionRepository
	AppointmentRepository contracts.AppointmentRepository
	EventPublisher        contracts.EventPublisher
	Storage               contracts.Storage
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
	Now                   func() time.Time
}

var (
	paymentReconcilerInstance contracts.PaymentReconciler
	oncePaymentReconciler     sync.Once
)

func NewPaymentReconciler(
	transactor contracts.Transactor,
	transactionRepository contracts.TransactionRepository,
	appointmentRepository contracts.AppointmentRepository,
	eventPublisher contracts.EventPublisher,
	storage contracts.Storage,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentReconciler {
	oncePaymentReconciler.Do(func() {
		paymentReconcilerInstance = newPaymentReconciler(
			transactor,
			transactionRepository,
			appointmentRepository,
			eventPublisher,
			storage,
			internalConfig,
			logger,
		)
	})
	return paymentReconcilerInstance
}

func newPaymentReconciler(
	transactor contracts.Transactor,
	transactionRepository contracts.TransactionRepository,
	appointmentRepository contracts.AppointmentRepository,
	eventPublisher contracts.EventPublisher,
	storage contracts.Storage,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *paymentReconciler {
	return &paymentReconciler{
		Transactor:            transactor,
		TransactionRepository: transactionRepository,
		AppointmentRepository: appointmentRepository,
		EventPublisher:        eventPublisher,
		Storage:               storage,
		InternalConfig:        internalConfig,
		Log:                   logger,
		Now:                   time.Now,
	}
}

// HandleCallback never fails: whatever happens the provider gets the fixed acknowledgment.
func (r *paymentReconciler) HandleCallback(ctx context.Context, callback *requests.MpesaCallback) *responses.MpesaCallbackAck {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	stk := callback.Body.StkCallback
	resultCode := stk.ResultCode.String()
	r.Log.Info("paymentReconciler.HandleCallback called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingCheckoutIDKey, stk.CheckoutRequestID),
		zap.String(constvars.LoggingResultCodeKey, resultCode),
		zap.String(constvars.LoggingResultDescKey, stk.ResultDesc),
	)

	ack := &responses.MpesaCallbackAck{
		ResultCode: 0,
		ResultDesc: constvars.MpesaCallbackAckResultDesc,
	}

	if stk.CheckoutRequestID == "" || resultCode == "" {
		r.Log.Warn("paymentReconciler.HandleCallback incomplete callback ignored",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return ack
	}

	transaction, err := r.TransactionRepository.FindByCheckoutID(ctx, stk.CheckoutRequestID)
	if err != nil {
		r.Log.Error("paymentReconciler.HandleCallback error finding transaction",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCheckoutIDKey, stk.CheckoutRequestID),
			zap.Error(err),
		)
		return ack
	}
	if transaction == nil {
		r.Log.Warn("paymentReconciler.HandleCallback unknown checkout id",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCheckoutIDKey, stk.CheckoutRequestID),
		)
		return ack
	}
	if transaction.IsTerminal() {
		r.Log.Info("paymentReconciler.HandleCallback transaction already final",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReferenceKey, transaction.Reference),
			zap.String(constvars.LoggingStatusKey, transaction.Status),
		)
		return ack
	}

	if resultCode == constvars.MpesaResultCodeSuccess {
		receipt, phone := callbackMetadata(stk.CallbackMetadata)
		if _, err := r.Settle(ctx, transaction, receipt, phone); err != nil {
			r.Log.Error("paymentReconciler.HandleCallback error settling transaction",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingReferenceKey, transaction.Reference),
				zap.Error(err),
			)
		}
		return ack
	}

	if _, err := r.Fail(ctx, transaction, stk.ResultDesc); err != nil {
		r.Log.Error("paymentReconciler.HandleCallback error failing transaction",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReferenceKey, transaction.Reference),
			zap.Error(err),
		)
	}
	return ack
}

// Settle marks the transaction Success and the appointment Scheduled/Paid in one unit of work.
func (r *paymentReconciler) Settle(ctx context.Context, transaction *models.Transaction, receipt, phone string) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var changed bool
	err := r.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		changed, err = r.TransactionRepository.MarkSuccess(ctx, transaction.Reference, receipt, phone)
		if err != nil || !changed {
			return err
		}
		return r.AppointmentRepository.MarkPaid(ctx, transaction.AppointmentID)
	})
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	utils.LogBusinessEvent(r.Log, "payment_settled", requestID,
		zap.String(constvars.LoggingReferenceKey, transaction.Reference),
		zap.String(constvars.LoggingAppointmentIDKey, transaction.AppointmentID),
		zap.Float64(constvars.LoggingAmountKey, transaction.Amount),
	)

	r.publish(ctx, requestID, transaction, constvars.EventPaymentSettled, constvars.TransactionStatusSuccess, receipt)
	if err := r.storeReceipt(ctx, transaction.Reference); err != nil {
		r.Log.Warn("paymentReconciler.Settle receipt not stored",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReferenceKey, transaction.Reference),
			zap.Error(err),
		)
	}
	return true, nil
}

// Fail leaves the appointment PendingPayment so the patient can retry.
func (r *paymentReconciler) Fail(ctx context.Context, transaction *models.Transaction, reason string) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	changed, err := r.TransactionRepository.MarkFailed(ctx, transaction.Reference)
	if err != nil || !changed {
		return false, err
	}

	utils.LogBusinessEvent(r.Log, "payment_failed", requestID,
		zap.String(constvars.LoggingReferenceKey, transaction.Reference),
		zap.String(constvars.LoggingResultDescKey, reason),
	)
	r.publish(ctx, requestID, transaction, constvars.EventPaymentFailed, constvars.TransactionStatusFailed, "")
	return true, nil
}

// storeReceipt writes the settled transaction view as JSON to the receipt bucket.
func (r *paymentReconciler) storeReceipt(ctx context.Context, reference string) error {
	if r.Storage == nil {
		return nil
	}
	view, err := r.TransactionRepository.FindViewByReference(ctx, reference)
	if err != nil {
		return err
	}
	if view == nil {
		return nil
	}
	return r.Storage.UploadJSON(ctx, r.InternalConfig.Payment.ReceiptBucketName, utils.GenerateReceiptObjectName(reference), toPaymentStatus(view))
}

func (r *paymentReconciler) publish(ctx context.Context, requestID string, transaction *models.Transaction, eventType, status, receipt string) {
	if r.EventPublisher == nil {
		return
	}
	event := &models.Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Reference:     transaction.Reference,
		AppointmentID: transaction.AppointmentID,
		PatientID:     transaction.PatientID,
		Amount:        transaction.Amount,
		Status:        status,
		Receipt:       receipt,
		OccurredAt:    r.Now().UTC(),
	}
	if err := r.EventPublisher.Publish(ctx, event); err != nil {
		r.Log.Warn("paymentReconciler.publish failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReferenceKey, transaction.Reference),
			zap.Error(err),
		)
	}
}

func callbackMetadata(metadata *requests.MpesaCallbackMetadata) (receipt, phone string) {
	if metadata == nil {
		return "", ""
	}
	for _, item := range metadata.Item {
		switch item.Name {
		case constvars.MpesaCallbackItemReceipt:
			receipt = metadataString(item.Value)
		case constvars.MpesaCallbackItemPhone:
			phone = metadataString(item.Value)
		}
	}
	return receipt, phone
}

func metadataString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case interface{ String() string }:
		return v.String()
	}
	return ""
}

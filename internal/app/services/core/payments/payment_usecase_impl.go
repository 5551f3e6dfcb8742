package payments

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/shared/ratelimiter"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const stkPushLimiterGroup = "STK-PUSH"

type paymentUsecase struct {
	TransactionRepository   contracts.TransactionRepository
	AppointmentRepository   contracts.AppointmentRepository
	PatientRepository       contracts.PatientRepository
	CallbackAuditRepository contracts.CallbackAuditRepository
	PaymentGateway          contracts.PaymentGatewayService
	Reconciler              contracts.PaymentReconciler
	LockService             contracts.LockerService
	PushLimiter             *ratelimiter.ResourceLimiter
	Storage                 contracts.Storage
	InternalConfig          *config.InternalConfig
	Log                     *zap.Logger
	Now                     func() time.Time
}

var (
	paymentUsecaseInstance contracts.PaymentUsecase
	oncePaymentUsecase     sync.Once
)

func NewPaymentUsecase(
	transactionRepository contracts.TransactionRepository,
	appointmentRepository contracts.AppointmentRepository,
	patientRepository contracts.PatientRepository,
	callbackAuditRepository contracts.CallbackAuditRepository,
	paymentGateway contracts.PaymentGatewayService,
	reconciler contracts.PaymentReconciler,
	lockService contracts.LockerService,
	pushLimiter *ratelimiter.ResourceLimiter,
	storage contracts.Storage,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentUsecase {
	oncePaymentUsecase.Do(func() {
		instance := &paymentUsecase{
			TransactionRepository:   transactionRepository,
			AppointmentRepository:   appointmentRepository,
			PatientRepository:       patientRepository,
			CallbackAuditRepository: callbackAuditRepository,
			PaymentGateway:          paymentGateway,
			Reconciler:              reconciler,
			LockService:             lockService,
			PushLimiter:             pushLimiter,
			Storage:                 storage,
			InternalConfig:          internalConfig,
			Log:                     logger,
			Now:                     time.Now,
		}
		paymentUsecaseInstance = instance
	})
	return paymentUsecaseInstance
}

// InitiatePayment records a Pending transaction before anything reaches the gateway,
// so a callback can never arrive for a reference the ledger does not know.
func (uc *paymentUsecase) InitiatePayment(ctx context.Context, identity *models.Identity, request *requests.InitiatePayment) (*responses.PaymentInitiation, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.InitiatePayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, request.AppointmentID),
		zap.String(constvars.LoggingPaymentMethodKey, request.PaymentMethod),
		zap.Float64(constvars.LoggingAmountKey, request.Amount),
	)

	appointment, err := uc.AppointmentRepository.FindByID(ctx, request.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, exceptions.ErrAppointmentNotFound(request.AppointmentID)
	}
	if err := uc.authorizePatient(ctx, identity, appointment.PatientID); err != nil {
		return nil, err
	}
	if appointment.PaymentStatus == constvars.PaymentStatusPaid {
		return nil, exceptions.ErrAlreadyProcessed(appointment.ID, constvars.PaymentStatusPaid)
	}
	if appointment.Status != constvars.AppointmentStatusPendingPayment {
		return nil, exceptions.ErrAppointmentNotPayable(appointment.ID, appointment.Status, appointment.PaymentStatus)
	}

	isMpesa := request.PaymentMethod == constvars.PaymentMethodMpesa
	phone := ""
	if isMpesa {
		phone = utils.NormalizeMpesaPhone(request.PhoneNumber)
		if err := uc.checkPushQuota(ctx, appointment.ID); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		Reference:     utils.GenerateTransactionReference(uc.Now()),
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		Amount:        request.Amount,
		PaymentMethod: request.PaymentMethod,
		Status:        constvars.TransactionStatusPending,
		MpesaPhone:    phone,
	}
	if err := uc.TransactionRepository.Create(ctx, transaction); err != nil {
		return nil, err
	}

	response := &responses.PaymentInitiation{
		TransactionRef: transaction.Reference,
		Status:         transaction.Status,
		Amount:         transaction.Amount,
		PaymentMethod:  transaction.PaymentMethod,
		Message:        constvars.PaymentInitiatedSuccessfully,
	}
	if !isMpesa {
		return response, nil
	}

	push, err := uc.PaymentGateway.RequestPush(ctx, &requests.MpesaPush{
		PhoneNumber: request.PhoneNumber,
		Amount:      request.Amount,
		Reference:   transaction.Reference,
		Description: uc.InternalConfig.Mpesa.TransactionDesc,
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.InitiatePayment push failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReferenceKey, transaction.Reference),
			zap.Error(err),
		)
		if _, failErr := uc.Reconciler.Fail(ctx, transaction, err.Error()); failErr != nil {
			uc.Log.Error("paymentUsecase.InitiatePayment error failing transaction",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingReferenceKey, transaction.Reference),
				zap.Error(failErr),
			)
		}
		return nil, err
	}

	if err := uc.TransactionRepository.AttachGatewayIDs(ctx, transaction.Reference, push.CheckoutRequestID, push.MerchantRequestID); err != nil {
		// The push is live at Daraja but the row cannot be matched, so keep the ids for manual reconciliation.
		uc.Log.Error("paymentUsecase.InitiatePayment accepted push not recorded",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReferenceKey, transaction.Reference),
			zap.String(constvars.LoggingCheckoutIDKey, push.CheckoutRequestID),
			zap.String(constvars.LoggingMerchantIDKey, push.MerchantRequestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Log.Info("paymentUsecase.InitiatePayment push accepted",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReferenceKey, transaction.Reference),
		zap.String(constvars.LoggingCheckoutIDKey, push.CheckoutRequestID),
		zap.String(constvars.LoggingMerchantIDKey, push.MerchantRequestID),
	)

	response.CheckoutRequestID = push.CheckoutRequestID
	response.Message = constvars.PaymentSTKPushSentSuccessfully
	return response, nil
}

// CheckStatus asks the gateway about a Pending push before answering, and reconciles the outcome.
func (uc *paymentUsecase) CheckStatus(ctx context.Context, identity *models.Identity, reference string) (*responses.PaymentStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CheckStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReferenceKey, reference),
	)

	transaction, err := uc.findOwnedTransaction(ctx, identity, reference)
	if err != nil {
		return nil, err
	}
	if transaction.IsAwaitingGateway() {
		if _, err := uc.refreshFromGateway(ctx, transaction); err != nil {
			return nil, err
		}
	}
	return uc.statusView(ctx, reference)
}

// ProcessPayment settles non push methods, which are confirmed at the counter.
func (uc *paymentUsecase) ProcessPayment(ctx context.Context, identity *models.Identity, request *requests.ProcessPayment) (*responses.PaymentStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ProcessPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReferenceKey, request.TransactionRef),
	)

	transaction, err := uc.findOwnedTransaction(ctx, identity, request.TransactionRef)
	if err != nil {
		return nil, err
	}
	if transaction.PaymentMethod == constvars.PaymentMethodMpesa {
		return nil, exceptions.ErrMethodNotProcessable(transaction.Reference, transaction.PaymentMethod)
	}
	if transaction.IsTerminal() {
		return nil, exceptions.ErrAlreadyProcessed(transaction.Reference, transaction.Status)
	}

	changed, err := uc.Reconciler.Settle(ctx, transaction, "", "")
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, exceptions.ErrAlreadyProcessed(transaction.Reference, constvars.TransactionStatusSuccess)
	}
	return uc.statusView(ctx, transaction.Reference)
}

// GetReceipt presigns the stored receipt, writing it first when the settle path could not.
func (uc *paymentUsecase) GetReceipt(ctx context.Context, identity *models.Identity, reference string) (*responses.PaymentReceipt, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.GetReceipt called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReferenceKey, reference),
	)

	transaction, err := uc.findOwnedTransaction(ctx, identity, reference)
	if err != nil {
		return nil, err
	}
	if transaction.Status != constvars.TransactionStatusSuccess {
		return nil, exceptions.ErrReceiptNotFound(reference)
	}

	bucket := uc.InternalConfig.Payment.ReceiptBucketName
	objectName := utils.GenerateReceiptObjectName(reference)
	exists, err := uc.Storage.ObjectExists(ctx, bucket, objectName)
	if err != nil {
		return nil, err
	}
	if !exists {
		view, err := uc.TransactionRepository.FindViewByReference(ctx, reference)
		if err != nil {
			return nil, err
		}
		if view == nil {
			return nil, exceptions.ErrReceiptNotFound(reference)
		}
		if err := uc.Storage.UploadJSON(ctx, bucket, objectName, toPaymentStatus(view)); err != nil {
			return nil, err
		}
	}

	expiry := time.Duration(uc.InternalConfig.Payment.ReceiptPresignExpiryInMinutes) * time.Minute
	url, err := uc.Storage.GetObjectUrlWithExpiryTime(ctx, bucket, objectName, expiry)
	if err != nil {
		return nil, err
	}
	return &responses.PaymentReceipt{
		TransactionRef: reference,
		URL:            url,
		ExpiresAt:      uc.Now().Add(expiry).UTC(),
	}, nil
}

// HandleMpesaCallback audits the raw body, then hands the parsed callback to the reconciler.
func (uc *paymentUsecase) HandleMpesaCallback(ctx context.Context, rawBody []byte, remoteAddr string) *responses.MpesaCallbackAck {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.HandleMpesaCallback called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRemoteAddrKey, remoteAddr),
	)

	var callback requests.MpesaCallback
	parseErr := json.Unmarshal(rawBody, &callback)
	uc.audit(ctx, requestID, &callback, rawBody, remoteAddr)

	if parseErr != nil {
		uc.Log.Warn("paymentUsecase.HandleMpesaCallback unreadable body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(parseErr),
		)
		return &responses.MpesaCallbackAck{ResultCode: 0, ResultDesc: constvars.MpesaCallbackAckResultDesc}
	}
	return uc.Reconciler.HandleCallback(ctx, &callback)
}

// ReconcilePending covers lost callbacks by querying the gateway for old Pending pushes.
func (uc *paymentUsecase) ReconcilePending(ctx context.Context) (int, error) {
	cfg := uc.InternalConfig.Payment
	stale, err := uc.TransactionRepository.ListStalePending(ctx, uc.Now().Add(-cfg.ReconcileStaleAfter), cfg.ReconcileBatchSize)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for i := range stale {
		if ctx.Err() != nil {
			break
		}
		changed, err := uc.refreshFromGateway(ctx, &stale[i])
		if err != nil {
			uc.Log.Warn("paymentUsecase.ReconcilePending error reconciling transaction",
				zap.String(constvars.LoggingReferenceKey, stale[i].Reference),
				zap.Error(err),
			)
			continue
		}
		if changed {
			resolved++
		}
	}

	uc.Log.Info("paymentUsecase.ReconcilePending finished",
		zap.Int(constvars.LoggingCountKey, len(stale)),
		zap.Int("resolved", resolved),
	)
	return resolved, nil
}

// refreshFromGateway holds a per reference lock so concurrent polls cost one gateway query.
// Without redis the query still happens; the ledger updates are idempotent.
func (uc *paymentUsecase) refreshFromGateway(ctx context.Context, transaction *models.Transaction) (bool, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	lockKey := constvars.LockKeyPaymentQueryPrefix + transaction.Reference

	acquired, lockValue, err := uc.LockService.TryLock(ctx, lockKey, uc.InternalConfig.Payment.StatusQueryLockTTL)
	if err != nil {
		uc.Log.Warn("paymentUsecase.refreshFromGateway lock unavailable, querying anyway",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingReferenceKey, transaction.Reference),
			zap.Error(err),
		)
	} else if !acquired {
		return false, nil
	} else {
		defer uc.LockService.Unlock(ctx, lockKey, lockValue)
	}

	current, err := uc.TransactionRepository.FindByReference(ctx, transaction.Reference)
	if err != nil {
		return false, err
	}
	if current == nil || !current.IsAwaitingGateway() {
		return false, nil
	}

	result := uc.PaymentGateway.QueryStatus(ctx, current.MpesaCheckoutID)
	uc.Log.Info("paymentUsecase.refreshFromGateway query result",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReferenceKey, current.Reference),
		zap.String(constvars.LoggingStatusKey, result.Outcome),
		zap.String(constvars.LoggingResultCodeKey, result.ResultCode),
	)

	switch {
	case result.Settled():
		return uc.Reconciler.Settle(ctx, current, "", "")
	case result.Failed():
		return uc.Reconciler.Fail(ctx, current, result.ResultDesc)
	}
	return false, nil
}

func (uc *paymentUsecase) checkPushQuota(ctx context.Context, appointmentID string) error {
	if uc.PushLimiter == nil {
		return nil
	}
	cfg := uc.InternalConfig.Payment
	out, err := uc.PushLimiter.ApplyResourceLimiter(ctx, &ratelimiter.ApplyResourceLimiterInput{
		ResourceName:     appointmentID,
		LimiterGroupName: stkPushLimiterGroup,
		WindowDuration:   cfg.PushWindow,
		MaxQuota:         cfg.MaxPushesPerWindow,
		NowUTC:           uc.Now().UTC(),
	})
	if err != nil {
		// the limiter guards the phone owner from spam, not correctness
		uc.Log.Warn("paymentUsecase.checkPushQuota limiter unavailable",
			zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil
	}
	if !out.Allowed {
		return exceptions.ErrPushRateLimited(appointmentID, out.RetryAfter)
	}
	return nil
}

func (uc *paymentUsecase) findOwnedTransaction(ctx context.Context, identity *models.Identity, reference string) (*models.Transaction, error) {
	transaction, err := uc.TransactionRepository.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, exceptions.ErrTransactionNotFound(reference)
	}
	if err := uc.authorizePatient(ctx, identity, transaction.PatientID); err != nil {
		return nil, err
	}
	return transaction, nil
}

// authorizePatient keeps patients on their own payments; staff roles pass through.
func (uc *paymentUsecase) authorizePatient(ctx context.Context, identity *models.Identity, patientID string) error {
	if identity == nil || identity.Role != constvars.RolePatient {
		return nil
	}
	patient, err := uc.PatientRepository.FindByUserID(ctx, identity.UserID)
	if err != nil {
		return err
	}
	if patient == nil || patient.ID != patientID {
		return exceptions.ErrForbidden(nil, identity.Role)
	}
	return nil
}

func (uc *paymentUsecase) statusView(ctx context.Context, reference string) (*responses.PaymentStatus, error) {
	view, err := uc.TransactionRepository.FindViewByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, exceptions.ErrTransactionNotFound(reference)
	}
	return toPaymentStatus(view), nil
}

func (uc *paymentUsecase) audit(ctx context.Context, requestID string, callback *requests.MpesaCallback, rawBody []byte, remoteAddr string) {
	if uc.CallbackAuditRepository == nil {
		return
	}
	stk := callback.Body.StkCallback
	err := uc.CallbackAuditRepository.Insert(ctx, &models.CallbackAudit{
		CheckoutRequestID: stk.CheckoutRequestID,
		MerchantRequestID: stk.MerchantRequestID,
		ResultCode:        stk.ResultCode.String(),
		ResultDesc:        stk.ResultDesc,
		RawBody:           string(rawBody),
		RemoteAddr:        remoteAddr,
		ReceivedAt:        uc.Now().UTC(),
	})
	if err != nil {
		uc.Log.Warn("paymentUsecase.audit failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingCheckoutIDKey, stk.CheckoutRequestID),
			zap.Error(err),
		)
	}
}

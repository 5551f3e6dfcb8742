package controllers

import (
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/utils"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentController struct {
	Log            *zap.Logger
	PaymentUsecase contracts.PaymentUsecase
	InternalConfig *config.InternalConfig
}

var (
	paymentControllerInstance *PaymentController
	oncePaymentController     sync.Once
)

func NewPaymentController(logger *zap.Logger, paymentUsecase contracts.PaymentUsecase, internalConfig *config.InternalConfig) *PaymentController {
	oncePaymentController.Do(func() {
		paymentControllerInstance = &PaymentController{
			Log:            logger,
			PaymentUsecase: paymentUsecase,
			InternalConfig: internalConfig,
		}
	})
	return paymentControllerInstance
}

func (ctrl *PaymentController) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "PaymentController.InitiatePayment")
	if !ok {
		return
	}

	request := new(requests.InitiatePayment)
	if err := decodeAndValidate(r, request); err != nil {
		ctrl.Log.Error("PaymentController.InitiatePayment invalid request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	response, err := ctrl.PaymentUsecase.InitiatePayment(ctx, identity, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "PaymentController.InitiatePayment", err)
		return
	}

	ctrl.Log.Info("PaymentController.InitiatePayment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingReferenceKey, response.TransactionRef),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, response.Message, response)
}

func (ctrl *PaymentController) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "PaymentController.ProcessPayment")
	if !ok {
		return
	}

	request := new(requests.ProcessPayment)
	if err := decodeAndValidate(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	response, err := ctrl.PaymentUsecase.ProcessPayment(ctx, identity, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "PaymentController.ProcessPayment", err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentProcessedSuccessfully, response)
}

func (ctrl *PaymentController) CheckStatus(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "PaymentController.CheckStatus")
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	response, err := ctrl.PaymentUsecase.CheckStatus(ctx, identity, chi.URLParam(r, "reference"))
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "PaymentController.CheckStatus", err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentStatusFetchedSuccessfully, response)
}

func (ctrl *PaymentController) GetReceipt(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "PaymentController.GetReceipt")
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	response, err := ctrl.PaymentUsecase.GetReceipt(ctx, identity, chi.URLParam(r, "reference"))
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "PaymentController.GetReceipt", err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentReceiptFetchedSuccessfully, response)
}

// MpesaCallback always answers 200 with the fixed acknowledgment, otherwise Daraja keeps retrying.
func (ctrl *PaymentController) MpesaCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := utils.GetRequestID(r.Context())

	utils.LogSecurityEvent(ctrl.Log, "mpesa_callback_received", requestID, "info",
		zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
		zap.String(constvars.LoggingUserAgentKey, r.UserAgent()),
	)

	rawBody, ok := r.Context().Value(constvars.CONTEXT_RAW_BODY_KEY).([]byte)
	if !ok {
		var err error
		rawBody, err = io.ReadAll(r.Body)
		if err != nil {
			ctrl.Log.Error("PaymentController.MpesaCallback cannot read body",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			ctrl.AcknowledgeMpesaCallback(w, r)
			return
		}
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	ack := ctrl.PaymentUsecase.HandleMpesaCallback(ctx, rawBody, r.RemoteAddr)

	ctrl.Log.Info("PaymentController.MpesaCallback handled",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildRawResponse(w, constvars.StatusOK, ack)
}

// AcknowledgeMpesaCallback answers Daraja without touching any payment state.
func (ctrl *PaymentController) AcknowledgeMpesaCallback(w http.ResponseWriter, r *http.Request) {
	utils.BuildRawResponse(w, constvars.StatusOK, &responses.MpesaCallbackAck{ResultCode: 0, ResultDesc: constvars.MpesaCallbackAckResultDesc})
}

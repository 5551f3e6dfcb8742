package controllers

import (
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AppointmentController struct {
	Log                *zap.Logger
	AppointmentUsecase contracts.AppointmentUsecase
	InternalConfig     *config.InternalConfig
}

var (
	appointmentControllerInstance *AppointmentController
	onceAppointmentController     sync.Once
)

func NewAppointmentController(logger *zap.Logger, appointmentUsecase contracts.AppointmentUsecase, internalConfig *config.InternalConfig) *AppointmentController {
	onceAppointmentController.Do(func() {
		appointmentControllerInstance = &AppointmentController{
			Log:                logger,
			AppointmentUsecase: appointmentUsecase,
			InternalConfig:     internalConfig,
		}
	})
	return appointmentControllerInstance
}

func (ctrl *AppointmentController) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "AppointmentController.CreateAppointment")
	if !ok {
		return
	}

	request := new(requests.CreateAppointment)
	if err := decodeAndValidate(r, request); err != nil {
		ctrl.Log.Error("AppointmentController.CreateAppointment invalid request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	response, err := ctrl.AppointmentUsecase.CreateAppointment(ctx, identity, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.CreateAppointment", err)
		return
	}

	ctrl.Log.Info("AppointmentController.CreateAppointment succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, response.AppointmentID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.AppointmentCreatedSuccessfully, response)
}

func (ctrl *AppointmentController) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	requestID, _, ok := caller(ctrl.Log, w, r, "AppointmentController.GetAvailableSlots")
	if !ok {
		return
	}

	query := r.URL.Query()
	request := &requests.AvailableSlotsQuery{
		DoctorID: query.Get("doctorId"),
		Date:     query.Get("date"),
	}
	if request.DoctorID == "" || request.Date == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingQueryParams(nil, constvars.ErrClientMissingSlotQueryParams))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	response, err := ctrl.AppointmentUsecase.GetAvailableSlots(ctx, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.GetAvailableSlots", err)
		return
	}

	ctrl.Log.Info("AppointmentController.GetAvailableSlots succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(response.AvailableSlots)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AvailableSlotsFetchedSuccessfully, response)
}

func (ctrl *AppointmentController) FindAll(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "AppointmentController.FindAll")
	if !ok {
		return
	}

	query := r.URL.Query()
	request := &requests.ListAppointments{
		Status:   query.Get("status"),
		Date:     query.Get("date"),
		FromDate: query.Get("fromDate"),
		ToDate:   query.Get("toDate"),
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	response, err := ctrl.AppointmentUsecase.FindAll(ctx, identity, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.FindAll", err)
		return
	}

	ctrl.Log.Info("AppointmentController.FindAll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(response)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AppointmentsFetchedSuccessfully, response)
}

func (ctrl *AppointmentController) FindByID(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "AppointmentController.FindByID")
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	response, err := ctrl.AppointmentUsecase.FindByID(ctx, identity, chi.URLParam(r, "id"))
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.FindByID", err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AppointmentFetchedSuccessfully, response)
}

func (ctrl *AppointmentController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "AppointmentController.UpdateStatus")
	if !ok {
		return
	}

	request := new(requests.UpdateAppointment)
	if err := decodeAndValidate(r, request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	appointmentID := chi.URLParam(r, "id")
	response, err := ctrl.AppointmentUsecase.UpdateStatus(ctx, identity, appointmentID, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.UpdateStatus", err)
		return
	}

	ctrl.Log.Info("AppointmentController.UpdateStatus succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingStatusKey, response.Status),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AppointmentUpdatedSuccessfully, response)
}

func (ctrl *AppointmentController) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID, identity, ok := caller(ctrl.Log, w, r, "AppointmentController.Cancel")
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	appointmentID := chi.URLParam(r, "id")
	response, err := ctrl.AppointmentUsecase.Cancel(ctx, identity, appointmentID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, requestID, "AppointmentController.Cancel", err)
		return
	}

	ctrl.Log.Info("AppointmentController.Cancel succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AppointmentCancelledSuccessfully, response)
}

package appointments

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/slot"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type appointmentUsecase struct {
	Transactor            contracts.Transactor
	AppointmentRepository contracts.AppointmentRepository
	DoctorRepository      contracts.DoctorRepository
	PatientRepository     contracts.PatientRepository
	EventPublisher        contracts.EventPublisher
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
	Now                   func() time.Time
	location              *time.Location
}

var (
	appointmentUsecaseInstance contracts.AppointmentUsecase
	onceAppointmentUsecase     sync.Once
)

func NewAppointmentUsecase(
	transactor contracts.Transactor,
	appointmentRepository contracts.AppointmentRepository,
	doctorRepository contracts.DoctorRepository,
	patientRepository contracts.PatientRepository,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	onceAppointmentUsecase.Do(func() {
		appointmentUsecaseInstance = newAppointmentUsecase(
			transactor,
			appointmentRepository,
			doctorRepository,
			patientRepository,
			eventPublisher,
			internalConfig,
			logger,
		)
	})
	return appointmentUsecaseInstance
}

func newAppointmentUsecase(
	transactor contracts.Transactor,
	appointmentRepository contracts.AppointmentRepository,
	doctorRepository contracts.DoctorRepository,
	patientRepository contracts.PatientRepository,
	eventPublisher contracts.EventPublisher,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *appointmentUsecase {
	return &appointmentUsecase{
		Transactor:            transactor,
		AppointmentRepository: appointmentRepository,
		DoctorRepository:      doctorRepository,
		PatientRepository:     patientRepository,
		EventPublisher:        eventPublisher,
		InternalConfig:        internalConfig,
		Log:                   logger,
		Now:                   time.Now,
		location:              utils.LoadLocation(internalConfig.App.Timezone),
	}
}

// CreateAppointment runs the booking checks in order and inserts a PendingPayment appointment.
// Everything after the date check happens under the doctor's row lock.
func (uc *appointmentUsecase) CreateAppointment(ctx context.Context, identity *models.Identity, request *requests.CreateAppointment) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.CreateAppointment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.String(constvars.LoggingAppointmentDateKey, request.AppointmentDate),
		zap.String(constvars.LoggingAppointmentTimeKey, request.AppointmentTime),
	)

	date, err := utils.ParseDate(request.AppointmentDate, uc.location)
	if err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	today := utils.StartOfDay(uc.Now().In(uc.location))
	if date.Before(today) {
		return nil, exceptions.ErrBookingInvalidDate(request.AppointmentDate, today.Format(constvars.DateFormat))
	}

	clockOffset, err := utils.ParseClock(request.AppointmentTime)
	if err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	clock := utils.FormatClock(clockOffset)

	patient, err := uc.resolveBookingPatient(ctx, identity, request.PatientID)
	if err != nil {
		return nil, err
	}

	var (
		appointment *models.Appointment
		doctor      *models.Doctor
	)
	err = uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		doctor, err = uc.DoctorRepository.FindByIDForUpdate(ctx, request.DoctorID)
		if err != nil {
			return err
		}
		if doctor == nil {
			return exceptions.ErrDoctorNotFound(request.DoctorID)
		}

		window, err := slot.NewWindow(doctor.AvailableTimeFrom, doctor.AvailableTimeTo)
		if err != nil {
			return exceptions.BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevInvalidInput)
		}
		if !window.Contains(clockOffset) {
			return exceptions.ErrBookingOutsideHours(clock, doctor.AvailableTimeFrom, doctor.AvailableTimeTo)
		}
		if !slot.WorksOn(doctor.AvailableDays, date.Weekday()) {
			return exceptions.ErrDoctorUnavailable(date.Weekday().String(), doctor.AvailableDays)
		}

		taken, err := uc.AppointmentRepository.CountActiveAtSlot(ctx, doctor.ID, request.AppointmentDate, clock)
		if err != nil {
			return err
		}
		if taken > 0 {
			return exceptions.ErrSlotTaken(nil, doctor.ID, request.AppointmentDate, clock)
		}

		booked, err := uc.AppointmentRepository.CountActiveOnDate(ctx, doctor.ID, request.AppointmentDate)
		if err != nil {
			return err
		}
		if booked >= doctor.MaxPatientsPerDay {
			return exceptions.ErrCapacityExceeded(doctor.ID, request.AppointmentDate, booked, doctor.MaxPatientsPerDay)
		}

		appointment = &models.Appointment{
			PatientID:       patient.ID,
			DoctorID:        doctor.ID,
			AppointmentDate: request.AppointmentDate,
			AppointmentTime: clock,
			Status:          constvars.AppointmentStatusPendingPayment,
			PaymentStatus:   constvars.PaymentStatusUnpaid,
			ConsultationFee: doctor.ConsultationFee,
			ReasonForVisit:  request.ReasonForVisit,
			Symptoms:        request.Symptoms,
			Notes:           request.Notes,
			CreatedBy:       identity.UserID,
		}
		return uc.AppointmentRepository.Create(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, requestID, &models.Event{
		ID:            uuid.NewString(),
		Type:          constvars.EventAppointmentBooked,
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		Amount:        appointment.ConsultationFee,
		Status:        appointment.Status,
		OccurredAt:    uc.Now().UTC(),
	})

	utils.LogBusinessEvent(uc.Log, "appointment_booked", requestID,
		zap.String(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingDoctorIDKey, doctor.ID),
		zap.String(constvars.LoggingPatientIDKey, patient.ID),
	)

	response := toAppointmentResponse(appointment)
	response.PatientName = patient.FirstName + " " + patient.LastName
	response.DoctorName = doctor.DisplayName()
	response.Specialization = doctor.Specialization
	return response, nil
}

func (uc *appointmentUsecase) GetAvailableSlots(ctx context.Context, request *requests.AvailableSlotsQuery) (*responses.AvailableSlots, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.GetAvailableSlots called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.String(constvars.LoggingAppointmentDateKey, request.Date),
	)

	date, err := utils.ParseDate(request.Date, uc.location)
	if err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	doctor, err := uc.DoctorRepository.FindByID(ctx, request.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, exceptions.ErrDoctorNotFound(request.DoctorID)
	}

	response := &responses.AvailableSlots{
		Date:           request.Date,
		DoctorID:       doctor.ID,
		DayOfWeek:      date.Weekday().String(),
		AvailableSlots: []string{},
	}

	if !slot.WorksOn(doctor.AvailableDays, date.Weekday()) {
		response.Message = "Doctor is not available on " + date.Weekday().String()
		return response, nil
	}

	window, err := slot.NewWindow(doctor.AvailableTimeFrom, doctor.AvailableTimeTo)
	if err != nil {
		return nil, exceptions.BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevInvalidInput)
	}

	booked, err := uc.AppointmentRepository.ListBookedTimes(ctx, doctor.ID, request.Date)
	if err != nil {
		return nil, err
	}

	step := time.Duration(uc.InternalConfig.Booking.SlotGranularityInMinutes) * time.Minute
	response.AvailableSlots = slot.Format(slot.Available(window, step, slot.ParseBooked(booked)))
	return response, nil
}

// FindAll scopes the listing by role. Patients and doctors without a profile see nothing.
func (uc *appointmentUsecase) FindAll(ctx context.Context, identity *models.Identity, request *requests.ListAppointments) ([]responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.FindAll called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRoleKey, identity.Role),
	)

	filter := models.AppointmentFilter{
		Status:   request.Status,
		Date:     request.Date,
		FromDate: request.FromDate,
		ToDate:   request.ToDate,
	}

	switch identity.Role {
	case constvars.RolePatient:
		patient, err := uc.PatientRepository.FindByUserID(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		if patient == nil {
			return []responses.Appointment{}, nil
		}
		filter.PatientID = patient.ID
	case constvars.RoleDoctor:
		doctor, err := uc.DoctorRepository.FindByUserID(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		if doctor == nil {
			return []responses.Appointment{}, nil
		}
		filter.DoctorID = doctor.ID
	}

	details, err := uc.AppointmentRepository.FindAllDetails(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]responses.Appointment, 0, len(details))
	for i := range details {
		result = append(result, *toAppointmentDetailResponse(&details[i]))
	}

	uc.Log.Info("appointmentUsecase.FindAll succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(result)),
	)
	return result, nil
}

func (uc *appointmentUsecase) FindByID(ctx context.Context, identity *models.Identity, appointmentID string) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	detail, err := uc.AppointmentRepository.FindDetailByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, exceptions.ErrAppointmentNotFound(appointmentID)
	}
	if err := uc.authorizeAccess(ctx, identity, &detail.Appointment); err != nil {
		return nil, err
	}
	return toAppointmentDetailResponse(detail), nil
}

// UpdateStatus keeping the current status only rewrites notes.
// Scheduled is reserved for the payment path and cannot be set by hand.
func (uc *appointmentUsecase) UpdateStatus(ctx context.Context, identity *models.Identity, appointmentID string, request *requests.UpdateAppointment) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.UpdateStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String(constvars.LoggingStatusKey, request.Status),
	)

	return uc.transition(ctx, identity, appointmentID, func(current *models.Appointment) error {
		if request.Status == current.Status {
			return nil
		}
		if request.Status == constvars.AppointmentStatusScheduled || !models.CanTransition(current.Status, request.Status) {
			return exceptions.ErrInvalidTransition(current.Status, request.Status)
		}
		return nil
	}, request.Status, request.Notes)
}

func (uc *appointmentUsecase) Cancel(ctx context.Context, identity *models.Identity, appointmentID string) (*responses.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Cancel called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	return uc.transition(ctx, identity, appointmentID, func(current *models.Appointment) error {
		if !models.CanTransition(current.Status, constvars.AppointmentStatusCancelled) {
			return exceptions.ErrInvalidTransition(current.Status, constvars.AppointmentStatusCancelled)
		}
		return nil
	}, constvars.AppointmentStatusCancelled, "")
}

func (uc *appointmentUsecase) transition(
	ctx context.Context,
	identity *models.Identity,
	appointmentID string,
	allowed func(current *models.Appointment) error,
	to, notes string,
) (*responses.Appointment, error) {
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := uc.AppointmentRepository.FindByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if current == nil {
			return exceptions.ErrAppointmentNotFound(appointmentID)
		}
		if err := uc.authorizeAccess(ctx, identity, current); err != nil {
			return err
		}
		if err := allowed(current); err != nil {
			return err
		}

		changed, err := uc.AppointmentRepository.UpdateStatus(ctx, appointmentID, current.Status, to, notes)
		if err != nil {
			return err
		}
		if !changed {
			return exceptions.ErrInvalidTransition(current.Status, to)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail, err := uc.AppointmentRepository.FindDetailByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, exceptions.ErrAppointmentNotFound(appointmentID)
	}
	return toAppointmentDetailResponse(detail), nil
}

// resolveBookingPatient books patients for themselves; staff name the patient explicitly.
func (uc *appointmentUsecase) resolveBookingPatient(ctx context.Context, identity *models.Identity, patientID string) (*models.Patient, error) {
	if identity.Role == constvars.RolePatient {
		patient, err := uc.PatientRepository.FindByUserID(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		if patient == nil {
			return nil, exceptions.ErrPatientNotFound(identity.UserID)
		}
		return patient, nil
	}

	if patientID == "" {
		return nil, exceptions.ErrMissingQueryParams(nil, "patientId is required")
	}
	patient, err := uc.PatientRepository.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, exceptions.ErrPatientNotFound(patientID)
	}
	return patient, nil
}

// authorizeAccess limits patients and doctors to their own appointments.
func (uc *appointmentUsecase) authorizeAccess(ctx context.Context, identity *models.Identity, appointment *models.Appointment) error {
	switch identity.Role {
	case constvars.RolePatient:
		patient, err := uc.PatientRepository.FindByUserID(ctx, identity.UserID)
		if err != nil {
			return err
		}
		if patient == nil || patient.ID != appointment.PatientID {
			return exceptions.ErrForbidden(nil, identity.Role)
		}
	case constvars.RoleDoctor:
		doctor, err := uc.DoctorRepository.FindByUserID(ctx, identity.UserID)
		if err != nil {
			return err
		}
		if doctor == nil || doctor.ID != appointment.DoctorID {
			return exceptions.ErrForbidden(nil, identity.Role)
		}
	}
	return nil
}

func (uc *appointmentUsecase) publish(ctx context.Context, requestID string, event *models.Event) {
	if uc.EventPublisher == nil {
		return
	}
	if err := uc.EventPublisher.Publish(ctx, event); err != nil {
		uc.Log.Warn("appointmentUsecase.publish failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingAppointmentIDKey, event.AppointmentID),
			zap.Error(err),
		)
	}
}

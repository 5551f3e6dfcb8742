package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, identity *models.Identity, request *requests.CreateAppointment) (*responses.Appointment, error)
	GetAvailableSlots(ctx context.Context, request *requests.AvailableSlotsQuery) (*responses.AvailableSlots, error)
	FindAll(ctx context.Context, identity *models.Identity, request *requests.ListAppointments) ([]responses.Appointment, error)
	FindByID(ctx context.Context, identity *models.Identity, appointmentID string) (*responses.Appointment, error)
	UpdateStatus(ctx context.Context, identity *models.Identity, appointmentID string, request *requests.UpdateAppointment) (*responses.Appointment, error)
	Cancel(ctx context.Context, identity *models.Identity, appointmentID string) (*responses.Appointment, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	CountActiveAtSlot(ctx context.Context, doctorID, date, clock string) (int, error)
	CountActiveOnDate(ctx context.Context, doctorID, date string) (int, error)
	ListBookedTimes(ctx context.Context, doctorID, date string) ([]string, error)
	FindByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	FindByIDForUpdate(ctx context.Context, appointmentID string) (*models.Appointment, error)
	FindDetailByID(ctx context.Context, appointmentID string) (*models.AppointmentDetail, error)
	FindAllDetails(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentDetail, error)
	// UpdateStatus only applies when the stored status still equals from.
	UpdateStatus(ctx context.Context, appointmentID, from, to, notes string) (bool, error)
	MarkPaid(ctx context.Context, appointmentID string) error
}

package appointments

import (
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/responses"
)

func toAppointmentResponse(appointment *models.Appointment) *responses.Appointment {
	return &responses.Appointment{
		AppointmentID:   appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		AppointmentDate: appointment.AppointmentDate,
		AppointmentTime: appointment.AppointmentTime,
		Status:          appointment.Status,
		PaymentStatus:   appointment.PaymentStatus,
		ConsultationFee: appointment.ConsultationFee,
		ReasonForVisit:  appointment.ReasonForVisit,
		Symptoms:        appointment.Symptoms,
		Notes:           appointment.Notes,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

func toAppointmentDetailResponse(detail *models.AppointmentDetail) *responses.Appointment {
	response := toAppointmentResponse(&detail.Appointment)
	response.PatientName = detail.PatientFirstName + " " + detail.PatientLastName
	response.DoctorName = "Dr. " + detail.DoctorFirstName + " " + detail.DoctorLastName
	response.Specialization = detail.Specialization
	return response
}

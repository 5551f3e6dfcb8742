package payments

import (
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/dto/responses"
)

func toPaymentStatus(view *models.TransactionView) *responses.PaymentStatus {
	return &responses.PaymentStatus{
		TransactionRef:    view.Reference,
		Status:            view.Status,
		Amount:            view.Amount,
		PaymentMethod:     view.PaymentMethod,
		CheckoutRequestID: view.MpesaCheckoutID,
		MpesaReceipt:      view.MpesaReceipt,
		MpesaPhone:        view.MpesaPhone,
		PatientName:       view.PatientFirstName + " " + view.PatientLastName,
		DoctorName:        "Dr. " + view.DoctorFirstName + " " + view.DoctorLastName,
		Specialization:    view.Specialization,
		Appointment: responses.PaymentAppointment{
			AppointmentID:   view.AppointmentID,
			AppointmentDate: view.AppointmentDate,
			AppointmentTime: view.AppointmentTime,
			Status:          view.AppointmentStatus,
			PaymentStatus:   view.PaymentStatus,
			ConsultationFee: view.ConsultationFee,
			ReasonForVisit:  view.ReasonForVisit,
		},
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}
}

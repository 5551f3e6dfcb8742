package models

import (
	"hospital-service/internal/pkg/constvars"
	"time"
)

type Appointment struct {
	ID              string    `json:"appointmentId"`
	PatientID       string    `json:"patientId"`
	DoctorID        string    `json:"doctorId"`
	AppointmentDate string    `json:"appointmentDate"`
	AppointmentTime string    `json:"appointmentTime"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	ConsultationFee float64   `json:"consultationFee"`
	ReasonForVisit  string    `json:"reasonForVisit"`
	Symptoms        string    `json:"symptoms,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AppointmentDetail is an appointment joined with its patient and doctor.
type AppointmentDetail struct {
	Appointment
	PatientFirstName string `json:"patientFirstName"`
	PatientLastName  string `json:"patientLastName"`
	PatientPhone     string `json:"patientPhone,omitempty"`
	DoctorFirstName  string `json:"doctorFirstName"`
	DoctorLastName   string `json:"doctorLastName"`
	Specialization   string `json:"specialization"`
}

type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Status    string
	Date      string
	FromDate  string
	ToDate    string
}

var appointmentTransitions = map[string][]string{
	constvars.AppointmentStatusPendingPayment: {constvars.AppointmentStatusScheduled, constvars.AppointmentStatusCancelled},
	constvars.AppointmentStatusScheduled:      {constvars.AppointmentStatusCompleted, constvars.AppointmentStatusCancelled},
}

// CanTransition reports whether the appointment lifecycle allows from -> to.
func CanTransition(from, to string) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveAppointmentStatuses hold a doctor's slot.
var ActiveAppointmentStatuses = []string{
	constvars.AppointmentStatusPendingPayment,
	constvars.AppointmentStatusScheduled,
	constvars.AppointmentStatusCompleted,
}

package responses

import "time"

type Appointment struct {
	AppointmentID   string    `json:"appointmentId"`
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
	PatientName     string    `json:"patientName,omitempty"`
	DoctorName      string    `json:"doctorName,omitempty"`
	Specialization  string    `json:"specialization,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type AvailableSlots struct {
	Date           string   `json:"date"`
	DoctorID       string   `json:"doctorId"`
	DayOfWeek      string   `json:"dayOfWeek"`
	AvailableSlots []string `json:"availableSlots"`
	Message        string   `json:"message,omitempty"`
}

package models

import (
	"hospital-service/internal/pkg/constvars"
	"time"
)

type Transaction struct {
	ID              string    `json:"id"`
	Reference       string    `json:"transactionRef"`
	AppointmentID   string    `json:"appointmentId"`
	PatientID       string    `json:"patientId"`
	Amount          float64   `json:"amount"`
	PaymentMethod   string    `json:"paymentMethod"`
	Status          string    `json:"status"`
	MpesaCheckoutID string    `json:"checkoutRequestId,omitempty"`
	MpesaMerchantID string    `json:"merchantRequestId,omitempty"`
	MpesaReceipt    string    `json:"mpesaReceipt,omitempty"`
	MpesaPhone      string    `json:"mpesaPhone,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (t *Transaction) IsTerminal() bool {
	return t.Status == constvars.TransactionStatusSuccess || t.Status == constvars.TransactionStatusFailed
}

func (t *Transaction) IsAwaitingGateway() bool {
	return t.Status == constvars.TransactionStatusPending && t.MpesaCheckoutID != ""
}

// TransactionView is a transaction joined with its appointment, patient and doctor.
type TransactionView struct {
	Transaction
	AppointmentDate   string  `json:"appointmentDate"`
	AppointmentTime   string  `json:"appointmentTime"`
	AppointmentStatus string  `json:"appointmentStatus"`
	PaymentStatus     string  `json:"paymentStatus"`
	ConsultationFee   float64 `json:"consultationFee"`
	ReasonForVisit    string  `json:"reasonForVisit"`
	PatientFirstName  string  `json:"-"`
	PatientLastName   string  `json:"-"`
	DoctorFirstName   string  `json:"-"`
	DoctorLastName    string  `json:"-"`
	Specialization    string  `json:"specialization"`
}

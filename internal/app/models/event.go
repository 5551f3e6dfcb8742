package models

import "time"

// Event is published to the events queue after a booking or a payment outcome is committed.
type Event struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Reference     string    `json:"reference"`
	AppointmentID string    `json:"appointmentId"`
	PatientID     string    `json:"patientId"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	Receipt       string    `json:"receipt,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

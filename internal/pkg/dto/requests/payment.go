package requests

type InitiatePayment struct {
	AppointmentID string  `json:"appointmentId" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,payment_method"`
	PhoneNumber   string  `json:"phoneNumber" validate:"required_if=PaymentMethod M-Pesa"`
}

type ProcessPayment struct {
	TransactionRef string `json:"transactionRef" validate:"required"`
}

package constvars

const (
	ResponseUnknown = "unknown"

	AppointmentCreatedSuccessfully    = "appointment booked successfully"
	AppointmentsFetchedSuccessfully   = "appointments fetched successfully"
	AppointmentFetchedSuccessfully    = "appointment fetched successfully"
	AppointmentUpdatedSuccessfully    = "appointment updated successfully"
	AppointmentCancelledSuccessfully  = "appointment cancelled successfully"
	AvailableSlotsFetchedSuccessfully = "available slots fetched successfully"

	PaymentInitiatedSuccessfully      = "payment initiated"
	PaymentSTKPushSentSuccessfully    = "STK Push sent to your phone. Please enter your M-Pesa PIN."
	PaymentStatusFetchedSuccessfully  = "payment status fetched successfully"
	PaymentProcessedSuccessfully      = "payment processed successfully"
	PaymentReceiptFetchedSuccessfully = "payment receipt fetched successfully"

	HealthCheckOK = "ok"
)

package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_IDENTITY_KEY             ContextKey = "identity"
	CONTEXT_RAW_BODY_KEY             ContextKey = "raw_body"
)

const (
	REQUEST_ID_PREFIX = "HMS_SVC_"
)

const (
	RoleAdmin        = "Admin"
	RoleDoctor       = "Doctor"
	RolePatient      = "Patient"
	RoleReceptionist = "Receptionist"
)

// Appointment lifecycle
const (
	AppointmentStatusPendingPayment = "PendingPayment"
	AppointmentStatusScheduled      = "Scheduled"
	AppointmentStatusCompleted      = "Completed"
	AppointmentStatusCancelled      = "Cancelled"
)

const (
	PaymentStatusUnpaid = "Unpaid"
	PaymentStatusPaid   = "Paid"
)

// Transaction lifecycle
const (
	TransactionStatusPending = "Pending"
	TransactionStatusSuccess = "Success"
	TransactionStatusFailed  = "Failed"
)

const (
	PaymentMethodMpesa     = "M-Pesa"
	PaymentMethodCash      = "Cash"
	PaymentMethodCard      = "Card"
	PaymentMethodInsurance = "Insurance"
)

const (
	TransactionReferencePrefix = "HMS"
	DateFormat                 = "2006-01-02"
	ClockFormat                = "15:04:05"
	ClockFormatShort           = "15:04"
	SlotGranularityInMinutes   = 30
)

const (
	EventPaymentSettled    = "payment.settled"
	EventPaymentFailed     = "payment.failed"
	EventAppointmentBooked = "appointment.booked"
)

const (
	LockKeyPaymentReconcileLeader = "payments:reconcile:leader"
	LockKeyPaymentQueryPrefix     = "payments:query:"
	CacheKeyMpesaAccessToken      = "mpesa:access_token"
)

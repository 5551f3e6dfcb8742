package constvars

// Validation messages, map it with respective tag field
var CustomValidationErrorMessages = map[string]string{
	"required":           "is required",
	"required_if":        "is required",
	"min":                "must be at least %s characters long",
	"max":                "maximum at %s characters long",
	"oneof":              "must be one of [%s]",
	"gt":                 "must be greater than %s",
	"gte":                "must be greater than or equal to %s",
	"datetime":           "must be a valid date in format YYYY-MM-DD",
	"clock_time":         "must be a valid time in format HH:MM or HH:MM:SS",
	"payment_method":     "must be one of [M-Pesa, Cash, Card, Insurance]",
	"appointment_status": "must be one of [PendingPayment, Scheduled, Completed, Cancelled]",
}

var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
	"gt":    true,
	"gte":   true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientNoTokenProvided               = "no token provided"

	ErrClientInvalidDate            = "cannot book appointments for past dates"
	ErrClientDoctorNotFound         = "doctor not found"
	ErrClientPatientNotFound        = "patient profile not found"
	ErrClientAppointmentNotFound    = "appointment not found"
	ErrClientTransactionNotFound    = "transaction not found"
	ErrClientReceiptNotFound        = "receipt not available for this transaction"
	ErrClientOutsideHours           = "doctor is available from %s to %s"
	ErrClientDoctorUnavailable      = "doctor is not available on %s, available days: %s"
	ErrClientSlotTaken              = "this time slot is already booked, please choose another time"
	ErrClientCapacityExceeded       = "doctor has reached maximum appointments for this day, please choose another date"
	ErrClientInvalidTransition      = "appointment cannot move from %s to %s"
	ErrClientAppointmentNotPayable  = "appointment cannot be paid in its current state"
	ErrClientAlreadyProcessed       = "transaction already processed"
	ErrClientMethodNotProcessable   = "M-Pesa payments are confirmed by the provider and cannot be processed manually"
	ErrClientGatewayAuth            = "payment service is unavailable, please contact support"
	ErrClientGatewayRejected        = "payment request was rejected: %s"
	ErrClientGatewayTimeout         = "payment service is taking too long to respond, please try again"
	ErrClientInvalidPhoneNumber     = "phone number is not a valid mobile number"
	ErrClientMissingSlotQueryParams = "doctorId and date are required"
	ErrClientPushRateLimited        = "too many payment prompts for this appointment, please wait before retrying"
)

// Error messages for developers
const (
	ErrDevInvalidInput           = "invalid input"
	ErrDevCannotParseJSON        = "cannot parse JSON"
	ErrDevCannotMarshalJSON      = "cannot marshal JSON"
	ErrDevValidationFailed       = "validation failed"
	ErrDevServerDeadlineExceeded = "server deadline exceeded"
	ErrDevMissingRequestID       = "request id missing from context"
	ErrDevCannotReadBody         = "cannot read request body"
	ErrDevCreateHTTPRequest      = "failed to create HTTP request"

	ErrDevAuthTokenMissing          = "token missing"
	ErrDevAuthTokenInvalidOrExpired = "token invalid or expired"
	ErrDevAuthIdentityMissing       = "identity missing from context"
	ErrDevRoleNotAllowed            = "role %s is not allowed"

	ErrDevDBFailedToFindData    = "failed to find data"
	ErrDevDBFailedToInsertData  = "failed to insert data"
	ErrDevDBFailedToUpdateData  = "failed to update data"
	ErrDevDBFailedToIterateData = "failed to iterate dataset"
	ErrDevDBFailedToBeginTx     = "failed to begin database transaction"
	ErrDevDBFailedToCommitTx    = "failed to commit database transaction"
	ErrDevMongoDBInsertDocument = "failed to insert document"

	ErrDevRedisGetNoData = "no data found in redis for key %s"
	ErrDevRedisSetData   = "failed to set data to redis"
	ErrDevRedisDelete    = "failed to delete data from redis"
	ErrDevRedisExpire    = "failed to set expiry on redis key"
	ErrDevRedisUnlock    = "failed to release redis lock"

	ErrDevMinioCreateObject  = "failed to create object in bucket %s"
	ErrDevMinioPresignObject = "failed to presign object in bucket %s"
	ErrDevRabbitMQPublish    = "failed to publish message to queue %s"

	ErrDevBookingPastDate       = "appointment date %s is before today %s"
	ErrDevDoctorNotFound        = "doctor %s not found"
	ErrDevPatientNotFound       = "patient for user %s not found"
	ErrDevAppointmentNotFound   = "appointment %s not found"
	ErrDevTransactionNotFound   = "transaction %s not found"
	ErrDevBookingOutsideHours   = "time %s outside window [%s, %s)"
	ErrDevDoctorUnavailable     = "weekday %s not in %s"
	ErrDevSlotTaken             = "slot %s %s already booked for doctor %s"
	ErrDevCapacityExceeded      = "doctor %s has %d of %d appointments on %s"
	ErrDevInvalidTransition     = "transition %s -> %s not allowed"
	ErrDevAppointmentNotPayable = "appointment %s is %s/%s"
	ErrDevAlreadyProcessed      = "transaction %s already %s"
	ErrDevMethodNotProcessable  = "transaction %s uses method %s"
	ErrDevGatewayAuth           = "mpesa authentication failed"
	ErrDevGatewayRejected       = "mpesa rejected the request"
	ErrDevGatewayTimeout        = "mpesa request timed out or was unreachable"
	ErrDevInvalidPhoneNumber    = "phone %s is not a possible number"
	ErrDevPushRateLimited       = "stk push quota exhausted for appointment %s, retry after %s"
)

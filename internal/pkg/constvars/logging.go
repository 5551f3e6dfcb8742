package constvars

const (
	LoggingRequestIDKey    = "request_id"
	LoggingErrorCodeKey    = "error_code"
	LoggingErrorMessageKey = "error_message"
	LoggingEndpointKey     = "endpoint"
	LoggingMethodKey       = "method"
	LoggingRemoteAddrKey   = "remote_addr"
	LoggingUserAgentKey    = "user_agent"
	LoggingQueryKey        = "query"
	LoggingStatusCodeKey   = "status_code"
	LoggingDurationKey     = "duration"
	LoggingSuccessKey      = "success"
	LoggingOperationKey    = "operation"
	LoggingCountKey        = "count"
	LoggingUserIDKey       = "user_id"
	LoggingRoleKey         = "role"
	LoggingQueueNameKey    = "queue_name"
)

const (
	LoggingRedisKey              = "redis_key"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
)

const (
	LoggingDoctorIDKey        = "doctor_id"
	LoggingPatientIDKey       = "patient_id"
	LoggingAppointmentIDKey   = "appointment_id"
	LoggingAppointmentDateKey = "appointment_date"
	LoggingAppointmentTimeKey = "appointment_time"
	LoggingReferenceKey       = "reference"
	LoggingCheckoutIDKey      = "checkout_request_id"
	LoggingMerchantIDKey      = "merchant_request_id"
	LoggingResultCodeKey      = "result_code"
	LoggingResultDescKey      = "result_desc"
	LoggingPaymentMethodKey   = "payment_method"
	LoggingAmountKey          = "amount"
	LoggingStatusKey          = "status"
)

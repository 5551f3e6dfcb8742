package exceptions

import (
	"fmt"
	"hospital-service/internal/pkg/constvars"
	"math"
	"time"
)

// Domain error codes, stable across releases so clients can branch on them.
const (
	CodeInvalidDate           = "INVALID_DATE"
	CodeNotFound              = "NOT_FOUND"
	CodeOutsideHours          = "OUTSIDE_HOURS"
	CodeDoctorUnavailable     = "DOCTOR_UNAVAILABLE"
	CodeSlotTaken             = "SLOT_TAKEN"
	CodeCapacityExceeded      = "CAPACITY_EXCEEDED"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeAppointmentNotPayable = "APPOINTMENT_NOT_PAYABLE"
	CodeGatewayAuthError      = "GATEWAY_AUTH_ERROR"
	CodeGatewayRejected       = "GATEWAY_REJECTED"
	CodeGatewayTimeout        = "GATEWAY_TIMEOUT"
	CodeAlreadyProcessed      = "ALREADY_PROCESSED"
	CodeMethodNotProcessable  = "METHOD_NOT_PROCESSABLE"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeValidation            = "VALIDATION_ERROR"
	CodeRateLimited           = "RATE_LIMITED"
)

var (
	// Request
	ErrCannotParseJSON = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusBadRequest, CodeValidation, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON, 3)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON, 3)
	}
	ErrInputValidation = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusBadRequest, CodeValidation, FormatFirstValidationError(err), constvars.ErrDevValidationFailed, 3)
	}
	ErrMissingQueryParams = func(err error, clientMessage string) *CustomError {
		return buildCustomError(err, constvars.StatusBadRequest, CodeValidation, clientMessage, constvars.ErrDevInvalidInput, 3)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusGatewayTimeout, "", constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded, 3)
	}
	ErrReadBody = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusBadRequest, CodeValidation, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotReadBody, 3)
	}
	ErrMissingRequestID = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMissingRequestID, 3)
	}

	// Identity
	ErrTokenMissing = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusUnauthorized, CodeUnauthorized, constvars.ErrClientNoTokenProvided, constvars.ErrDevAuthTokenMissing, 3)
	}
	ErrTokenInvalidOrExpired = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusUnauthorized, CodeUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthTokenInvalidOrExpired, 3)
	}
	ErrIdentityMissing = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusUnauthorized, CodeUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthIdentityMissing, 3)
	}
	ErrForbidden = func(err error, role string) *CustomError {
		return buildCustomError(err, constvars.StatusForbidden, CodeForbidden, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevRoleNotAllowed, role), 3)
	}

	// Booking
	ErrBookingInvalidDate = func(date, today string) *CustomError {
		return buildCustomError(nil, constvars.StatusBadRequest, CodeInvalidDate, constvars.ErrClientInvalidDate, fmt.Sprintf(constvars.ErrDevBookingPastDate, date, today), 3)
	}
	ErrDoctorNotFound = func(doctorID string) *CustomError {
		return buildCustomError(nil, constvars.StatusNotFound, CodeNotFound, constvars.ErrClientDoctorNotFound, fmt.Sprintf(constvars.ErrDevDoctorNotFound, doctorID), 3)
	}
	ErrPatientNotFound = func(userID string) *CustomError {
		return buildCustomError(nil, constvars.StatusNotFound, CodeNotFound, constvars.ErrClientPatientNotFound, fmt.Sprintf(constvars.ErrDevPatientNotFound, userID), 3)
	}
	ErrAppointmentNotFound = func(appointmentID string) *CustomError {
		return buildCustomError(nil, constvars.StatusNotFound, CodeNotFound, constvars.ErrClientAppointmentNotFound, fmt.Sprintf(constvars.ErrDevAppointmentNotFound, appointmentID), 3)
	}
	ErrBookingOutsideHours = func(clock, from, to string) *CustomError {
		return buildCustomError(nil, constvars.StatusBadRequest, CodeOutsideHours, fmt.Sprintf(constvars.ErrClientOutsideHours, from, to), fmt.Sprintf(constvars.ErrDevBookingOutsideHours, clock, from, to), 3)
	}
	ErrDoctorUnavailable = func(weekday, availableDays string) *CustomError {
		return buildCustomError(nil, constvars.StatusBadRequest, CodeDoctorUnavailable, fmt.Sprintf(constvars.ErrClientDoctorUnavailable, weekday, availableDays), fmt.Sprintf(constvars.ErrDevDoctorUnavailable, weekday, availableDays), 3)
	}
	ErrSlotTaken = func(err error, doctorID, date, clock string) *CustomError {
		return buildCustomError(err, constvars.StatusBadRequest, CodeSlotTaken, constvars.ErrClientSlotTaken, fmt.Sprintf(constvars.ErrDevSlotTaken, date, clock, doctorID), 3)
	}
	ErrCapacityExceeded = func(doctorID, date string, count, capacity int) *CustomError {
		return buildCustomError(nil, constvars.StatusBadRequest, CodeCapacityExceeded, constvars.ErrClientCapacityExceeded, fmt.Sprintf(constvars.ErrDevCapacityExceeded, doctorID, count, capacity, date), 3)
	}
	ErrInvalidTransition = func(from, to string) *CustomError {
		return buildCustomError(nil, constvars.StatusBadRequest, CodeInvalidTransition, fmt.Sprintf(constvars.ErrClientInvalidTransition, from, to), fmt.Sprintf(constvars.ErrDevInvalidTransition, from, to), 3)
	}

	// Payment
	ErrTransactionNotFound = func(reference string) *CustomError {
		return buildCustomError(nil, constvars.StatusNotFound, CodeNotFound, constvars.ErrClientTransactionNotFound, fmt.Sprintf(constvars.ErrDevTransactionNotFound, reference), 3)
	}
	ErrReceiptNotFound = func(reference string) *CustomError {
		return buildCustomError(nil, constvars.StatusNotFound, CodeNotFound, constvars.ErrClientReceiptNotFound, fmt.Sprintf(constvars.ErrDevTransactionNotFound, reference), 3)
	}
	ErrAppointmentNotPayable = func(appointmentID, status, paymentStatus string) *CustomError {
		return buildCustomError(nil, constvars.StatusBadRequest, CodeAppointmentNotPayable, constvars.ErrClientAppointmentNotPayable, fmt.Sprintf(constvars.ErrDevAppointmentNotPayable, appointmentID, status, paymentStatus), 3)
	}
	ErrAlreadyProcessed = func(reference, status string) *CustomError {
		return buildCustomError(nil, constvars.StatusConflict, CodeAlreadyProcessed, constvars.ErrClientAlreadyProcessed, fmt.Sprintf(constvars.ErrDevAlreadyProcessed, reference, status), 3)
	}
	ErrMethodNotProcessable = func(reference, method string) *CustomError {
		return buildCustomError(nil, constvars.StatusBadRequest, CodeMethodNotProcessable, constvars.ErrClientMethodNotProcessable, fmt.Sprintf(constvars.ErrDevMethodNotProcessable, reference, method), 3)
	}
	ErrGatewayAuth = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusBadGateway, CodeGatewayAuthError, constvars.ErrClientGatewayAuth, constvars.ErrDevGatewayAuth, 3)
	}
	ErrGatewayRejected = func(err error, reason string) *CustomError {
		return buildCustomError(err, constvars.StatusBadRequest, CodeGatewayRejected, fmt.Sprintf(constvars.ErrClientGatewayRejected, reason), constvars.ErrDevGatewayRejected, 3)
	}
	ErrGatewayTimeout = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusGatewayTimeout, CodeGatewayTimeout, constvars.ErrClientGatewayTimeout, constvars.ErrDevGatewayTimeout, 3)
	}
	ErrPushRateLimited = func(appointmentID string, retryAfter time.Duration) *CustomError {
		customErr := buildCustomError(nil, constvars.StatusTooManyRequests, CodeRateLimited, constvars.ErrClientPushRateLimited, fmt.Sprintf(constvars.ErrDevPushRateLimited, appointmentID, retryAfter), 3)
		customErr.RetryAfter = int(math.Ceil(retryAfter.Seconds()))
		return customErr
	}
	ErrInvalidPhoneNumber = func(err error, phone string) *CustomError {
		return buildCustomError(err, constvars.StatusBadRequest, CodeGatewayRejected, constvars.ErrClientInvalidPhoneNumber, fmt.Sprintf(constvars.ErrDevInvalidPhoneNumber, phone), 3)
	}

	// Postgres DB
	ErrPostgresDBFindData = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToFindData, 3)
	}
	ErrPostgresDBInsertData = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToInsertData, 3)
	}
	ErrPostgresDBUpdateData = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToUpdateData, 3)
	}
	ErrPostgresDBIterateDataset = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToIterateData, 3)
	}
	ErrPostgresDBBeginTx = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToBeginTx, 3)
	}
	ErrPostgresDBCommitTx = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToCommitTx, 3)
	}

	// Mongo DB
	ErrMongoDBInsertDocument = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMongoDBInsertDocument, 3)
	}

	// Redis
	ErrRedisGetNoData = func(err error, redisKey string) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisGetNoData, redisKey), 3)
	}
	ErrRedisSet = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSetData, 3)
	}
	ErrRedisDelete = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDelete, 3)
	}
	ErrRedisExpire = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisExpire, 3)
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisUnlock, 3)
	}

	// Minio
	ErrMinioCreateObject = func(err error, bucketName string) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioCreateObject, bucketName), 3)
	}
	ErrMinioPresignObject = func(err error, bucketName string) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioPresignObject, bucketName), 3)
	}

	// RabbitMQ
	ErrRabbitMQPublishMessage = func(err error, queueName string) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQPublish, queueName), 3)
	}

	// HTTP
	ErrCreateHTTPRequest = func(err error) *CustomError {
		return buildCustomError(err, constvars.StatusInternalServerError, "", constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCreateHTTPRequest, 3)
	}
)

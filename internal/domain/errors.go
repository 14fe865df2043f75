package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Is lets copies created by WithError match their sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing API key",
		StatusCode: 401,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrWorkerNotFound = &AppError{
		Code:       "WORKER_NOT_FOUND",
		Message:    "Worker not found",
		StatusCode: 404,
	}

	ErrTemplateNotFound = &AppError{
		Code:       "TEMPLATE_NOT_FOUND",
		Message:    "Biometric template not found",
		StatusCode: 404,
	}

	ErrCredentialExists = &AppError{
		Code:       "CREDENTIAL_ALREADY_EXISTS",
		Message:    "Device credential already registered",
		StatusCode: 409,
	}

	// Verification outcomes. NoEnrollment, NoMatch and DeviceUnsupported stay
	// distinct so callers can tell a first-time user from a failed match from
	// a device that cannot run the requested check.
	ErrNoEnrollment = &AppError{
		Code:       "NO_ENROLLMENT",
		Message:    "Worker has no active enrollment of this type",
		StatusCode: 404,
	}

	ErrNoMatch = &AppError{
		Code:       "NO_MATCH",
		Message:    "Verification ran but did not match any enrolled sample",
		StatusCode: 422,
	}

	ErrDeviceUnsupported = &AppError{
		Code:       "DEVICE_UNSUPPORTED",
		Message:    "Device does not support the requested verification method",
		StatusCode: 422,
	}

	ErrCaptureFailed = &AppError{
		Code:       "CAPTURE_FAILED",
		Message:    "Biometric capture failed",
		StatusCode: 422,
	}

	ErrEnrollmentFailed = &AppError{
		Code:       "ENROLLMENT_FAILED",
		Message:    "Enrollment did not complete",
		StatusCode: 422,
	}

	// Attendance errors
	ErrInvalidCode = &AppError{
		Code:       "INVALID_LOCATION_CODE",
		Message:    "Location code is unknown, inactive or expired",
		StatusCode: 422,
	}

	ErrDuplicateScan = &AppError{
		Code:       "DUPLICATE_SCAN",
		Message:    "An identical scan was recorded moments ago",
		StatusCode: 409,
	}

	ErrVerificationRequired = &AppError{
		Code:       "VERIFICATION_REQUIRED",
		Message:    "Scan requires a successful identity verification",
		StatusCode: 403,
	}

	ErrConcurrencyConflict = &AppError{
		Code:       "CONCURRENCY_CONFLICT",
		Message:    "Clock status was updated concurrently, re-fetch status and retry",
		StatusCode: 409,
	}

	ErrClockStatusNotFound = &AppError{
		Code:       "CLOCK_STATUS_NOT_FOUND",
		Message:    "No clock status recorded for this worker",
		StatusCode: 404,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}
)

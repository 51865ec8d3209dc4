// Package errors maps domain errors onto transport-level application
// errors with stable codes and HTTP status codes.
package errors

import (
	"errors"
	"net/http"

	"fmt"

	"maintdesk/domain/appointment"
	"maintdesk/domain/billing"
	"maintdesk/domain/report"
	"maintdesk/domain/request"
	"maintdesk/domain/shared"
	"maintdesk/domain/stock"
)

// ErrorCode is a stable machine-readable error code.
type ErrorCode string

const (
	// Generic codes
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	// Engine codes
	CodeInvalidTransition       ErrorCode = "INVALID_TRANSITION"
	CodeOutOfOrderApproval      ErrorCode = "OUT_OF_ORDER_APPROVAL"
	CodeAlreadyFinalized        ErrorCode = "ALREADY_FINALIZED"
	CodeInsufficientStock       ErrorCode = "INSUFFICIENT_STOCK"
	CodeInsufficientTechnicians ErrorCode = "INSUFFICIENT_TECHNICIANS"
	CodeAmountMismatch          ErrorCode = "AMOUNT_MISMATCH"
	CodeConcurrentModify        ErrorCode = "CONCURRENT_MODIFICATION"
)

// AppError is the error shape returned to API callers.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode maps the code onto an HTTP status.
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeConcurrentModify:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeInvalidTransition, CodeOutOfOrderApproval, CodeAlreadyFinalized,
		CodeInsufficientStock, CodeInsufficientTechnicians, CodeAmountMismatch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common constructors.

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequest, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError converts any error into an AppError, wrapping unknown
// errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternal, "internal server error")
}

// MapDomainError translates domain sentinels into coded application
// errors. The domain error message is preserved; it already names the
// entity, the current state and the attempted state.
func MapDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, shared.ErrInvalidTransition):
		return Wrap(err, CodeInvalidTransition, err.Error())
	case errors.Is(err, report.ErrOutOfOrderApproval):
		return Wrap(err, CodeOutOfOrderApproval, err.Error())
	case errors.Is(err, report.ErrAlreadyFinalized):
		return Wrap(err, CodeAlreadyFinalized, err.Error())
	case errors.Is(err, stock.ErrInsufficientStock):
		return Wrap(err, CodeInsufficientStock, err.Error())
	case errors.Is(err, appointment.ErrInsufficientTechnicians):
		return Wrap(err, CodeInsufficientTechnicians, err.Error())
	case errors.Is(err, billing.ErrAmountMismatch):
		return Wrap(err, CodeAmountMismatch, err.Error())
	case errors.Is(err, shared.ErrConcurrentModification):
		return Wrap(err, CodeConcurrentModify, err.Error())
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, request.ErrRequestNotFound),
		errors.Is(err, request.ErrParentNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, appointment.ErrWorkOrderNotFound),
		errors.Is(err, report.ErrReportNotFound),
		errors.Is(err, billing.ErrInvoiceNotFound),
		errors.Is(err, billing.ErrTransactionNotFound),
		errors.Is(err, billing.ErrLineNotFound),
		errors.Is(err, stock.ErrAccessoryNotFound):
		return Wrap(err, CodeNotFound, err.Error())
	case errors.Is(err, request.ErrNotRequester):
		return Wrap(err, CodeForbidden, err.Error())
	case errors.Is(err, request.ErrParentCycle),
		errors.Is(err, appointment.ErrOpenAppointmentExists),
		errors.Is(err, appointment.ErrDuplicateTechnician),
		errors.Is(err, billing.ErrDuplicateLine),
		errors.Is(err, billing.ErrLinesFrozen),
		errors.Is(err, billing.ErrReportNotApproved):
		return Wrap(err, CodeConflict, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		return Wrap(err, CodeForbidden, err.Error())
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		return Wrap(err, CodeValidation, err.Error())
	default:
		return Wrap(err, CodeInternal, err.Error())
	}
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal server error")
)

// Stable codes returned to clients.
const (
	CodeNotFound     = 30000
	CodeConflict     = 30001
	CodeInvalidInput = 30002
	CodeSystemError  = 80000
)

const SystemErrorMessage = "System error, we're unable to process your request at the moment"

type AppError struct {
	BaseError error
	Code      int
	Messages  []string
	Err       error
}

func (e *AppError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Cause: %v)", e.BaseError.Error(), msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.BaseError.Error(), msg)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

// Cause returns the wrapped lower-level error, if any.
func (e *AppError) Cause() error {
	return e.Err
}

func NewAppError(base error, code int, messages []string, err error) *AppError {
	return &AppError{BaseError: base, Code: code, Messages: messages, Err: err}
}

func NewNotFound(id int64) *AppError {
	return NewAppError(ErrNotFound, CodeNotFound,
		[]string{fmt.Sprintf("Cannot find resource with id %d", id)}, nil)
}

func NewConflict(uniqueValue string) *AppError {
	return NewAppError(ErrConflict, CodeConflict,
		[]string{fmt.Sprintf("Record with unique value %s already exists in the system", uniqueValue)}, nil)
}

// NewInvalidInput carries one message per offending field or setting.
func NewInvalidInput(messages ...string) *AppError {
	return NewAppError(ErrInvalidInput, CodeInvalidInput, messages, nil)
}

func NewInvalidField(field string, rejected any) *AppError {
	return NewInvalidInput(FieldMessage(field, rejected))
}

func FieldMessage(field string, rejected any) string {
	if rejected == nil {
		rejected = "null"
	}
	return fmt.Sprintf("Invalid value for field %s, rejected value: %v", field, rejected)
}

// NewInternal keeps details for logs only; clients see SystemErrorMessage.
func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, CodeSystemError, []string{details}, err)
}

func ToHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// As converts any error into an AppError; unclassified errors become internal ones.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("unclassified error", err)
}

// ErrorResponse is the body rendered for every failed request.
type ErrorResponse struct {
	Status  string   `json:"status"`
	Code    int      `json:"code"`
	Message []string `json:"message"`
}

func statusName(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

func (e *AppError) ToResponse() ErrorResponse {
	status := ToHTTPStatus(e)
	messages := e.Messages
	if status == http.StatusInternalServerError {
		return ErrorResponse{
			Status:  statusName(status),
			Code:    CodeSystemError,
			Message: []string{SystemErrorMessage},
		}
	}
	return ErrorResponse{Status: statusName(status), Code: e.Code, Message: messages}
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(NewNotFound(7)))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(NewConflict("0000000000000001")))
	assert.Equal(t, http.StatusUnprocessableEntity, ToHTTPStatus(NewInvalidInput("bad")))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(NewInternal("boom", errors.New("db down"))))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(errors.New("plain")))
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(fmt.Errorf("wrapped: %w", NewNotFound(1))))
}

func TestToResponse(t *testing.T) {
	resp := NewNotFound(42).ToResponse()
	assert.Equal(t, ErrorResponse{
		Status:  "NOT_FOUND",
		Code:    30000,
		Message: []string{"Cannot find resource with id 42"},
	}, resp)

	resp = NewConflict("0000000000002945").ToResponse()
	assert.Equal(t, "CONFLICT", resp.Status)
	assert.Equal(t, 30001, resp.Code)
	assert.Equal(t, []string{"Record with unique value 0000000000002945 already exists in the system"}, resp.Message)

	resp = NewInvalidInput("first", "second").ToResponse()
	assert.Equal(t, "UNPROCESSABLE_ENTITY", resp.Status)
	assert.Equal(t, 30002, resp.Code)
	assert.Equal(t, []string{"first", "second"}, resp.Message)
}

func TestToResponse_InternalDoesNotLeak(t *testing.T) {
	resp := NewInternal("failed to query users: relation missing", errors.New("pq: secret detail")).ToResponse()

	assert.Equal(t, "INTERNAL_SERVER_ERROR", resp.Status)
	assert.Equal(t, 80000, resp.Code)
	assert.Equal(t, []string{SystemErrorMessage}, resp.Message)
}

func TestAs(t *testing.T) {
	orig := NewInvalidField("first_name", "J")
	assert.Same(t, orig, As(fmt.Errorf("ctx: %w", orig)))

	converted := As(errors.New("boom"))
	assert.ErrorIs(t, converted, ErrInternal)
	assert.EqualError(t, converted.Cause(), "boom")
}

func TestFieldMessage(t *testing.T) {
	assert.Equal(t, "Invalid value for field first_name, rejected value: J", FieldMessage("first_name", "J"))
	assert.Equal(t, "Invalid value for field birth_date, rejected value: null", FieldMessage("birth_date", nil))
}

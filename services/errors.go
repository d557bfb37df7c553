package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yashrajoria/storefront-service/repository"
)

const (
	CodeInvalidData        = "INVALID_DATA"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodePartialCheckout    = "PARTIAL_CHECKOUT"
	CodeEmptyCart          = "EMPTY_CART"
	CodeUserExists         = "USER_EXISTS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
	CodeNotImplemented     = "NOT_IMPLEMENTED"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func InvalidInput(format string, args ...interface{}) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Code: CodeInvalidData, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict means a concurrent mutation won. The whole operation may be retried.
func Conflict(message string, err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Code: CodeConflict, Message: message, Err: err}
}

func StorageUnavailable(message string, err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusServiceUnavailable, Code: CodeStorageUnavailable, Message: message, Err: err}
}

func Internal(message string, err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: message, Err: err}
}

func NotImplemented(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotImplemented, Code: CodeNotImplemented, Message: message}
}

// EmptyCart covers both a missing account and an empty cart. It is reported
// as NOT_FOUND so the two cannot be told apart.
func EmptyCart() *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: "cart is empty or account does not exist"}
}

func PartialCheckout(orderID string, err error) *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       CodePartialCheckout,
		Message:    fmt.Sprintf("order %s was created but the cart could not be cleared", orderID),
		Err:        err,
	}
}

// fromRepository maps a repository error. notFound is used for ErrNotFound.
func fromRepository(err error, notFound string) *ServiceError {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return NotFound("%s", notFound)
	case errors.Is(err, repository.ErrConflict):
		return Conflict("concurrent update, try again", err)
	default:
		return StorageUnavailable("storage unavailable", err)
	}
}

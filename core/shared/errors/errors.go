package errors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Input errors, raised before any network I/O
	ErrCodeValidationError ErrorCode = "VALIDATION_ERROR"
	ErrCodeGenerationError ErrorCode = "QUERY_GENERATION_FAILED"

	// Configuration errors
	ErrCodeUnsupportedProtocol ErrorCode = "UNSUPPORTED_PROTOCOL"
	ErrCodeUnsupportedMethod   ErrorCode = "UNSUPPORTED_METHOD"

	// Transport errors
	ErrCodeExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"

	// Response handling errors
	ErrCodeDataSource      ErrorCode = "DATA_SOURCE_ERROR"
	ErrCodeFieldExtraction ErrorCode = "FIELD_EXTRACTION_FAILED"
	ErrCodeUnexpectedData  ErrorCode = "UNEXPECTED_DATA"
)

// AppError represents a client error with code and context
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new client error
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WrapError wraps an existing error with an error code and message
func WrapError(code ErrorCode, message string, err error) *AppError {
	return NewAppError(code, message, err)
}

// QueryExecutionError is returned when the transport fails to deliver a query.
// The underlying transport error is flattened into a message so its concrete
// type never reaches the caller.
type QueryExecutionError struct {
	*AppError

	// Request is the request that was attempted
	Request *http.Request
	// Response is a synthetic empty response, never nil
	Response *http.Response
}

// Unwrap returns the embedded AppError. The transport error is not reachable.
func (e *QueryExecutionError) Unwrap() error {
	return e.AppError
}

// NewQueryExecutionError builds a QueryExecutionError for req from a transport failure
func NewQueryExecutionError(req *http.Request, cause error) *QueryExecutionError {
	app := &AppError{
		Code:    ErrCodeExecutionFailed,
		Message: "druid API bad request",
	}
	if cause != nil {
		app.Err = errors.New(cause.Error())
	}
	return &QueryExecutionError{
		AppError: app,
		Request:  req,
		Response: EmptyResponse(req),
	}
}

// EmptyResponse returns a zero-status response with no headers and an empty body
func EmptyResponse(req *http.Request) *http.Response {
	return &http.Response{
		Status:     "",
		StatusCode: 0,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Body:       io.NopCloser(http.NoBody),
		Request:    req,
	}
}

// Validation creates a VALIDATION_ERROR
func Validation(message string, err error) *AppError {
	return NewAppError(ErrCodeValidationError, message, err)
}

// Code extracts the error code from an error chain, or "" if there is none
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return err != nil && Code(err) == code
}

// IsValidationError checks if the error is a parameter validation error
func IsValidationError(err error) bool {
	return hasCode(err, ErrCodeValidationError)
}

// IsGenerationError checks if the error came from a query generator
func IsGenerationError(err error) bool {
	return hasCode(err, ErrCodeGenerationError)
}

// IsUnsupportedProtocol checks if the error rejected a protocol
func IsUnsupportedProtocol(err error) bool {
	return hasCode(err, ErrCodeUnsupportedProtocol)
}

// IsUnsupportedMethod checks if the error rejected an HTTP method
func IsUnsupportedMethod(err error) bool {
	return hasCode(err, ErrCodeUnsupportedMethod)
}

// IsExecutionError checks if the error is a transport failure
func IsExecutionError(err error) bool {
	return hasCode(err, ErrCodeExecutionFailed)
}

// IsDataSourceError checks if the error reports an unknown data source
func IsDataSourceError(err error) bool {
	return hasCode(err, ErrCodeDataSource)
}

// IsFieldExtractionError checks if a response chunk was missing a field
func IsFieldExtractionError(err error) bool {
	return hasCode(err, ErrCodeFieldExtraction)
}

// IsUnexpectedData checks if a response body could not be interpreted
func IsUnexpectedData(err error) bool {
	return hasCode(err, ErrCodeUnexpectedData)
}

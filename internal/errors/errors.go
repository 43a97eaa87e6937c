package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "code" field of every error body.
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// APIError is the JSON error envelope. Message is always set.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{Code: code, Message: message, Details: details}
}

// RespondWithError writes err and aborts the remaining handlers.
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

var defaultMessages = map[string]string{
	ErrCodeUnauthorized:       "Authentication required",
	ErrCodeTokenExpired:       "Token has expired",
	ErrCodeInvalidCredentials: "Invalid credentials",
	ErrCodeForbidden:          "Access denied",
	ErrCodeInvalidInput:       "Invalid request",
	ErrCodeNotFound:           "Resource not found",
	ErrCodeConflict:           "Resource conflict",
	ErrCodeRateLimited:        "Too many requests, please try again later",
	ErrCodeInternalError:      "Internal server error",
}

func abort(c *gin.Context, status int, code, message string) {
	if message == "" {
		message = defaultMessages[code]
	}
	RespondWithError(c, status, NewAPIError(code, message))
}

func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// TokenExpired tells the client to use its refresh token.
func TokenExpired(c *gin.Context) {
	abort(c, http.StatusUnauthorized, ErrCodeTokenExpired, "")
}

func InvalidCredentials(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, message)
}

func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, ErrCodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, ErrCodeNotFound, message)
}

func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, ErrCodeInvalidInput, message)
}

// BadRequestWithDetails attaches field-level details, e.g. a list of validation failures.
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = defaultMessages[ErrCodeInvalidInput]
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, ErrCodeConflict, message)
}

func TooManyRequests(c *gin.Context) {
	abort(c, http.StatusTooManyRequests, ErrCodeRateLimited, "")
}

// InternalError hides the underlying cause; callers log it separately.
func InternalError(c *gin.Context, message string) {
	abort(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

package handlers

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/thewebvalue/task-management-api/internal/auth"
	apierrors "github.com/thewebvalue/task-management-api/internal/errors"
	"github.com/thewebvalue/task-management-api/internal/middleware"
	"github.com/thewebvalue/task-management-api/internal/services"
)

// validationErrors are rejected with 400 before anything is written.
var validationErrors = []error{
	services.ErrTitleRequired,
	services.ErrTitleTooLong,
	services.ErrNotesTooLong,
	services.ErrDeadlineRequired,
	services.ErrDeadlineInPast,
	services.ErrNoFieldsToUpdate,
	services.ErrInvalidDateFilter,
	services.ErrInvalidStatus,
	services.ErrPasswordTooShort,
	services.ErrFullNameRequired,
	services.ErrInvalidRole,
	services.ErrScoreOutOfRange,
	services.ErrMonthRequired,
	services.ErrMonthInFuture,
	services.ErrInvalidExportType,
}

// respondError maps a service error to its HTTP response. fallback is the
// message sent for unexpected errors, whose details are never exposed.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, auth.ErrForbidden):
		apierrors.Forbidden(c, detail(err, auth.ErrForbidden))
	case errors.Is(err, auth.ErrEmailDomainNotAllowed):
		apierrors.BadRequest(c, detail(err, auth.ErrEmailDomainNotAllowed))
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, "")
	case errors.Is(err, services.ErrInvalidRefreshToken),
		errors.Is(err, services.ErrUserNoLongerExists):
		apierrors.Unauthorized(c, sentence(err.Error()))
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.NotFound(c, sentence(err.Error()))
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, sentence(err.Error()))
	case isValidationError(err):
		apierrors.BadRequest(c, sentence(err.Error()))
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, fallback)
	}
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// detail returns the explanation wrapped around sentinel, or the sentinel's
// own text when there is none.
func detail(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		msg = rest
	}
	return sentence(msg)
}

func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// requireIdentity returns the caller's identity or writes a 401.
func requireIdentity(c *gin.Context) (*auth.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return identity, true
}

// parseIDParam parses a positive numeric path parameter or writes a 400.
func parseIDParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+label)
		return 0, false
	}
	return id, true
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// bindJSON decodes the body into req or writes a 400 carrying message. Binding
// tag failures are listed per field in the error details.
func bindJSON(c *gin.Context, req interface{}, message string) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.BadRequest(c, message)
		return false
	}
	fields := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	apierrors.BadRequestWithDetails(c, message, fields)
	return false
}

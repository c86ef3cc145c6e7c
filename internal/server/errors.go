package server

import (
	"errors"
	"net/http"
	"strings"

	alertdomain "github.com/agencyhq/opscore/internal/alert/domain"
	budgetdomain "github.com/agencyhq/opscore/internal/budget/domain"
	clientdomain "github.com/agencyhq/opscore/internal/client/domain"
	dispatchdomain "github.com/agencyhq/opscore/internal/dispatch/domain"
	notificationdomain "github.com/agencyhq/opscore/internal/notification/domain"
	offeringdomain "github.com/agencyhq/opscore/internal/offering/domain"
	profiledomain "github.com/agencyhq/opscore/internal/profile/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, offeringdomain.ErrCodeTaken),
		errors.Is(err, profiledomain.ErrEmailTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isClientValidationError(err),
		isOfferingValidationError(err),
		isAllocationValidationError(err),
		isProfileValidationError(err),
		isDispatchValidationError(err),
		errors.Is(err, alertdomain.ErrInvalidID),
		errors.Is(err, notificationdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, offeringdomain.ErrNotFound),
		errors.Is(err, budgetdomain.ErrNotFound),
		errors.Is(err, profiledomain.ErrNotFound),
		errors.Is(err, alertdomain.ErrNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, dispatchdomain.ErrUnknownRecipient),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isClientValidationError(err error) bool {
	switch err {
	case clientdomain.ErrInvalidName,
		clientdomain.ErrInvalidEmail,
		clientdomain.ErrInvalidStatus,
		clientdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isOfferingValidationError(err error) bool {
	switch err {
	case offeringdomain.ErrInvalidCode,
		offeringdomain.ErrInvalidName,
		offeringdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isAllocationValidationError(err error) bool {
	switch err {
	case budgetdomain.ErrInvalidClient,
		budgetdomain.ErrInvalidService,
		budgetdomain.ErrInvalidBudget,
		budgetdomain.ErrInvalidSpending,
		budgetdomain.ErrInvalidPeriod,
		budgetdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isProfileValidationError(err error) bool {
	switch err {
	case profiledomain.ErrInvalidName,
		profiledomain.ErrInvalidEmail,
		profiledomain.ErrInvalidRole,
		profiledomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isDispatchValidationError(err error) bool {
	switch err {
	case dispatchdomain.ErrInvalidRecipient,
		dispatchdomain.ErrInvalidSubject,
		dispatchdomain.ErrInvalidMessage,
		dispatchdomain.ErrInvalidChannel:
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

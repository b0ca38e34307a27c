package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
	auditdomain "github.com/smallbiznis/payrollrecon/internal/audit/domain"
	"github.com/smallbiznis/payrollrecon/internal/feed"
	paymentdomain "github.com/smallbiznis/payrollrecon/internal/payment/domain"
	payrolldomain "github.com/smallbiznis/payrollrecon/internal/payroll/domain"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
	plandomain "github.com/smallbiznis/payrollrecon/internal/plan/domain"
	"github.com/smallbiznis/payrollrecon/pkg/db"
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

	var fieldErr *payrolldomain.FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   fieldErr.Feed + "." + fieldErr.Column,
					Code:    "invalid_field",
					Message: fieldErr.Error(),
				},
			},
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
	case isConflictError(err):
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

// classifyErrorForLog returns the envelope type and code for request logs.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
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
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, feed.ErrMissingHeader),
		errors.Is(err, feed.ErrUnsupportedFormat):
		return true
	case isPlanValidationError(err),
		isPayscaleValidationError(err),
		isAgentValidationError(err),
		isPayrollValidationError(err),
		isPaymentValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, plandomain.ErrPlanExists),
		errors.Is(err, agentdomain.ErrAgentExists),
		db.IsDuplicateKeyErr(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, plandomain.ErrPlanNotFound),
		errors.Is(err, payscaledomain.ErrPayscaleNotFound),
		errors.Is(err, agentdomain.ErrAgentNotFound),
		errors.Is(err, payrolldomain.ErrBatchNotFound),
		errors.Is(err, payrolldomain.ErrLineNotFound),
		errors.Is(err, paymentdomain.ErrAccountNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, feed.ErrMissingHeader):
		return feed.ErrMissingHeader.Error()
	case errors.Is(err, feed.ErrUnsupportedFormat):
		return feed.ErrUnsupportedFormat.Error()
	case errors.Is(err, payrolldomain.ErrInvalidReportLine):
		return payrolldomain.ErrInvalidReportLine.Error()
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
	case "empty_report":
		return "report has no lines"
	case "missing_header":
		return "feed has no header row"
	case "unsupported_format":
		return "feed must be csv, tsv, txt or xlsx"
	case "account_not_in_line":
		return "account is not part of the line"
	case "invalid_page_token":
		return "invalid page_token"
	case "invalid_time_range":
		return "start_at must not be after end_at"
	default:
		return "invalid value"
	}
}

func isPlanValidationError(err error) bool {
	switch {
	case errors.Is(err, plandomain.ErrInvalidName),
		errors.Is(err, plandomain.ErrInvalidCommissionAmount):
		return true
	default:
		return false
	}
}

func isPayscaleValidationError(err error) bool {
	switch {
	case errors.Is(err, payscaledomain.ErrInvalidName),
		errors.Is(err, payscaledomain.ErrInvalidPercentage),
		errors.Is(err, payscaledomain.ErrInvalidCommission),
		errors.Is(err, payscaledomain.ErrUnknownPlan),
		errors.Is(err, payscaledomain.ErrInvalidManager):
		return true
	default:
		return false
	}
}

func isAgentValidationError(err error) bool {
	switch {
	case errors.Is(err, agentdomain.ErrInvalidIdentifier),
		errors.Is(err, agentdomain.ErrInvalidName),
		errors.Is(err, agentdomain.ErrInvalidEmail),
		errors.Is(err, agentdomain.ErrUnknownAgent),
		errors.Is(err, agentdomain.ErrUnknownPayscale):
		return true
	default:
		return false
	}
}

func isPayrollValidationError(err error) bool {
	switch {
	case errors.Is(err, payrolldomain.ErrInvalidBatchName),
		errors.Is(err, payrolldomain.ErrEmptyReport),
		errors.Is(err, payrolldomain.ErrInvalidReportLine):
		return true
	default:
		return false
	}
}

func isPaymentValidationError(err error) bool {
	switch {
	case errors.Is(err, paymentdomain.ErrInvalidDimension),
		errors.Is(err, paymentdomain.ErrAccountNotInLine):
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch {
	case errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidAction):
		return true
	default:
		return false
	}
}

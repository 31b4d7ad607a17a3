package apierrors

import (
	"net/http"

	"commerce-server/internal/observability"

	"github.com/gin-gonic/gin"
)

var logger = observability.NewLogger()

// Machine-readable error codes returned alongside messages.
const (
	CodeInvalidInput             = "INVALID_INPUT"
	CodeNotFound                 = "NOT_FOUND"
	CodeAlreadyConverted         = "ALREADY_CONVERTED"
	CodeStepsIncomplete          = "STEPS_INCOMPLETE"
	CodeCheckoutInProgress       = "CHECKOUT_IN_PROGRESS"
	CodeRetryUnavailable         = "RETRY_UNAVAILABLE"
	CodeRetryLimitExceeded       = "RETRY_LIMIT_EXCEEDED"
	CodeGatewayNotConfigured     = "GATEWAY_NOT_CONFIGURED"
	CodePaymentCapturedNoOrder   = "PAYMENT_CAPTURED_ORDER_FAILED"
	CodeInternalError            = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON structure returned to API clients
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respond writes the error response and logs correlation info
func respond(c *gin.Context, statusCode int, code, message string) {
	ctx := c.Request.Context()
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "status_code", Value: statusCode},
		observability.Field{Key: "error_code", Value: code},
		observability.Field{Key: "error_message", Value: message},
	)
	logger.Info(ctx, "API error response")

	c.JSON(statusCode, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, CodeNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, code, message string) {
	respond(c, http.StatusBadRequest, code, message)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, code, message string) {
	respond(c, http.StatusConflict, code, message)
}

// InternalErrorWithCode sends a 500 response carrying a specific error code.
// Used for the payment-captured-but-order-missing case which operators must
// be able to pick out of the stream.
func InternalErrorWithCode(c *gin.Context, code, message string, internalErr error) {
	ctx := c.Request.Context()
	logger.Error(ctx, "internal error", internalErr)
	respond(c, http.StatusInternalServerError, code, message)
}

// InternalError sends a sanitized 500 response - never exposes internal details
func InternalError(c *gin.Context, internalErr error) {
	ctx := c.Request.Context()
	logger.Error(ctx, "internal error", internalErr)
	respond(c, http.StatusInternalServerError, CodeInternalError, "An internal error occurred. Please try again later.")
}

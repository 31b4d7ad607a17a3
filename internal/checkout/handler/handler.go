package handler

import (
	"errors"
	"net/http"

	"commerce-server/internal/apierrors"
	"commerce-server/internal/checkout/processor"
	"commerce-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handler struct {
	processor processor.CheckoutProcessor
	logger    *observability.Logger
}

func New(processor processor.CheckoutProcessor, logger *observability.Logger) Handler {
	return Handler{processor: processor, logger: logger}
}

// TotalsPayload mirrors the totals an earlier pricing step computed
type TotalsPayload struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// PaymentRequest represents the HTTP request for the payment and retry endpoints
type PaymentRequest struct {
	CustomerID         string         `json:"customer_id" binding:"required,uuid"`
	PaymentMethodToken string         `json:"payment_method_token" binding:"required"`
	CardType           string         `json:"card_type"`
	CardLastFour       string         `json:"card_last_four"`
	CardExpMonth       int            `json:"card_exp_month"`
	CardExpYear        int            `json:"card_exp_year"`
	CheckoutTotals     *TotalsPayload `json:"checkout_totals,omitempty"`
}

func (r *PaymentRequest) toChargeRequest() (processor.ChargeRequest, error) {
	customerID, err := uuid.Parse(r.CustomerID)
	if err != nil {
		return processor.ChargeRequest{}, err
	}

	var supplied *processor.Totals
	if r.CheckoutTotals != nil {
		supplied = &processor.Totals{
			Subtotal: r.CheckoutTotals.Subtotal,
			Discount: r.CheckoutTotals.Discount,
			Shipping: r.CheckoutTotals.Shipping,
			Tax:      r.CheckoutTotals.Tax,
			Total:    r.CheckoutTotals.Total,
		}
	}

	return processor.ChargeRequest{
		CustomerID:   customerID,
		PaymentToken: r.PaymentMethodToken,
		Card: processor.CardDetails{
			Type:     r.CardType,
			Last4:    r.CardLastFour,
			ExpMonth: r.CardExpMonth,
			ExpYear:  r.CardExpYear,
		},
		SuppliedTotals: supplied,
	}, nil
}

// HandlePayment handles POST /api/checkout/payment
func (h *Handler) HandlePayment(c *gin.Context) {
	ctx := c.Request.Context()

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	chargeReq, err := req.toChargeRequest()
	if err != nil {
		apierrors.BadRequest(c, apierrors.CodeInvalidInput, "customer_id must be a valid UUID")
		return
	}

	outcome, err := h.processor.Pay(ctx, chargeReq)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.respondOutcome(c, outcome, false)
}

// HandleRetry handles POST /api/checkout/retry
func (h *Handler) HandleRetry(c *gin.Context) {
	ctx := c.Request.Context()

	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}

	chargeReq, err := req.toChargeRequest()
	if err != nil {
		apierrors.BadRequest(c, apierrors.CodeInvalidInput, "customer_id must be a valid UUID")
		return
	}

	outcome, err := h.processor.Retry(ctx, chargeReq)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.respondOutcome(c, outcome, true)
}

// HandleListAttempts handles GET /api/checkout/customers/:customer_id/attempts
func (h *Handler) HandleListAttempts(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, err := uuid.Parse(c.Param("customer_id"))
	if err != nil {
		apierrors.BadRequest(c, apierrors.CodeInvalidInput, "customer_id must be a valid UUID")
		return
	}

	transactions, err := h.processor.ListAttempts(ctx, customerID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// respondOutcome renders a payment outcome. Declines are a 200 with
// success=false: they are expected business results, not API errors.
func (h *Handler) respondOutcome(c *gin.Context, outcome processor.Outcome, isRetry bool) {
	if outcome.Status == processor.OutcomePaid {
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"status":       processor.OutcomePaid,
			"customer_id":  outcome.CustomerID,
			"order_id":     outcome.OrderID,
			"order_number": outcome.OrderNumber,
		})
		return
	}

	body := gin.H{
		"success":     false,
		"status":      processor.OutcomeDeclined,
		"customer_id": outcome.CustomerID,
		"error":       outcome.DeclineReason,
	}
	if outcome.DeclineCode != "" {
		body["response_code"] = outcome.DeclineCode
	}
	if isRetry {
		body["decline_count"] = outcome.DeclineCount
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, processor.ErrInvalidRequest):
		apierrors.BadRequest(c, apierrors.CodeInvalidInput, "customer_id and payment_method_token are required")
	case errors.Is(err, processor.ErrCustomerNotFound):
		apierrors.NotFound(c, "Customer not found")
	case errors.Is(err, processor.ErrAlreadyConverted):
		apierrors.BadRequest(c, apierrors.CodeAlreadyConverted, "Customer has already completed checkout")
	case errors.Is(err, processor.ErrStepsIncomplete):
		apierrors.BadRequest(c, apierrors.CodeStepsIncomplete, "Contact and address steps must be completed before payment")
	case errors.Is(err, processor.ErrRetryUnavailable):
		apierrors.BadRequest(c, apierrors.CodeRetryUnavailable, "No declined checkout to retry")
	case errors.Is(err, processor.ErrRetryLimitExceeded):
		apierrors.BadRequest(c, apierrors.CodeRetryLimitExceeded, "Maximum retry attempts reached. Please contact support.")
	case errors.Is(err, processor.ErrCheckoutInProgress):
		apierrors.Conflict(c, apierrors.CodeCheckoutInProgress, "A checkout for this customer is already in progress")
	case errors.Is(err, processor.ErrNoActiveGateway):
		apierrors.InternalErrorWithCode(c, apierrors.CodeGatewayNotConfigured, "Payment processing is not configured", err)
	case errors.Is(err, processor.ErrCommitFailed):
		apierrors.InternalErrorWithCode(c, apierrors.CodePaymentCapturedNoOrder, "Payment was processed but the order could not be recorded. Do not retry; contact support.", err)
	default:
		apierrors.InternalError(c, err)
	}
}

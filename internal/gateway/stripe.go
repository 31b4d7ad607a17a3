package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"commerce-server/internal/observability"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeGateway charges through Stripe PaymentIntents. Each configured
// gateway row carries its own secret key, so a per-call client is built
// from the token rather than setting the package-global key.
type StripeGateway struct {
	timeout time.Duration
	logger  *observability.Logger
}

// NewStripeGateway creates the production gateway with a bounded call timeout.
func NewStripeGateway(timeout time.Duration, logger *observability.Logger) *StripeGateway {
	return &StripeGateway{timeout: timeout, logger: logger}
}

// Charge confirms a PaymentIntent for the request. Authorize mode holds the
// funds with manual capture; purchase mode captures immediately.
func (g *StripeGateway) Charge(ctx context.Context, mode Mode, gatewayToken string, req ChargeRequest) (ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "gateway_mode", Value: string(mode)},
		observability.Field{Key: "order_ref", Value: req.OrderRef},
	)

	sc := &client.API{}
	sc.Init(gatewayToken, nil)

	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.PaymentMethodToken),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	if mode == ModeAuthorize {
		params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}
	if req.RetainOnSuccess {
		params.SetupFutureUsage = stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession))
	}
	params.AddMetadata("order_ref", req.OrderRef)
	if req.IP != "" {
		params.AddMetadata("customer_ip", req.IP)
	}

	pi, err := sc.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			// Card errors are business declines, not transport failures.
			g.logger.InfoWithError(ctx, "stripe declined charge", err)
			responseCode := string(stripeErr.Code)
			if stripeErr.DeclineCode != "" {
				responseCode = string(stripeErr.DeclineCode)
			}
			return ChargeResult{
				Approved: false,
				Transaction: Transaction{
					Succeeded:    false,
					Message:      stripeErr.Msg,
					ResponseCode: responseCode,
				},
			}, nil
		}
		g.logger.Error(ctx, "stripe charge failed", err)
		return ChargeResult{}, err
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
		g.logger.Info(ctx, "stripe approved charge")
		return ChargeResult{
			Approved: true,
			Transaction: Transaction{
				Token:        pi.ID,
				Succeeded:    true,
				Message:      "Approved",
				ResponseCode: string(pi.Status),
			},
		}, nil
	default:
		// Confirmed but not settled (e.g. requires_action); this flow has
		// no customer present to complete an action, so treat as declined.
		g.logger.Info(ctx, "stripe charge not settled, treating as decline")
		return ChargeResult{
			Approved: false,
			Transaction: Transaction{
				Token:        pi.ID,
				Succeeded:    false,
				Message:      "Payment could not be completed",
				ResponseCode: string(pi.Status),
			},
		}, nil
	}
}

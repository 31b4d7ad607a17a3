package email

import (
	"context"
	"fmt"

	"commerce-server/internal/observability"

	"github.com/shopspring/decimal"
)

// Sender abstracts the mail client so the service can be constructed
// disabled and faked in tests.
type Sender interface {
	SendEmail(ctx context.Context, from, to, subject, htmlContent string) (string, error)
}

// ConfirmationService sends the order confirmation receipt after a
// successful checkout commit. Sending is best-effort: a mail failure is
// logged and never fails the checkout.
type ConfirmationService struct {
	sender Sender
	from   string
	logger *observability.Logger
}

// NewConfirmationService creates the confirmation sender. A nil sender
// disables it.
func NewConfirmationService(sender Sender, from string, logger *observability.Logger) *ConfirmationService {
	return &ConfirmationService{sender: sender, from: from, logger: logger}
}

// SendOrderConfirmation emails the customer their order number and total.
func (s *ConfirmationService) SendOrderConfirmation(ctx context.Context, to, orderNumber string, total decimal.Decimal, currency string) {
	if s.sender == nil || to == "" {
		return
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "order_number", Value: orderNumber})

	subject := fmt.Sprintf("Order confirmation %s", orderNumber)
	html := fmt.Sprintf(
		`<h2>Thank you for your order!</h2>
<p>Your order <strong>%s</strong> has been received.</p>
<p>Order total: <strong>%s %s</strong></p>
<p>We'll send another email when your order ships.</p>`,
		orderNumber, total.StringFixed(2), currency,
	)

	if _, err := s.sender.SendEmail(ctx, s.from, to, subject, html); err != nil {
		s.logger.WarnWithError(ctx, "failed to send order confirmation email", err)
		return
	}
	s.logger.Info(ctx, "order confirmation email sent")
}

package gateway

import (
	"context"
	"fmt"
	"strings"

	"commerce-server/internal/observability"

	"github.com/google/uuid"
)

// Demo response codes
const (
	DemoResponseApproved          = "DEMO_APPROVED"
	DemoResponseDeclined          = "DEMO_DECLINE"
	DemoResponseInsufficientFunds = "DEMO_INSUFFICIENT_FUNDS"
)

// Token last-fours reserved for forced declines in demo environments.
var demoDeclineCodes = map[string]struct {
	code    string
	message string
}{
	"0002": {DemoResponseDeclined, "Card declined"},
	"0119": {DemoResponseInsufficientFunds, "Insufficient funds"},
}

// DemoGateway is a Port implementation that never touches the network.
// Payment tokens ending in a reserved last-four always decline; everything
// else approves. It exists so demo installs exercise the exact same
// orchestrator state machine as production.
type DemoGateway struct {
	logger *observability.Logger
}

// NewDemoGateway creates a simulated gateway.
func NewDemoGateway(logger *observability.Logger) *DemoGateway {
	return &DemoGateway{logger: logger}
}

// Charge simulates a processor response based on the token's last four.
func (g *DemoGateway) Charge(ctx context.Context, mode Mode, gatewayToken string, req ChargeRequest) (ChargeResult, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "gateway_mode", Value: string(mode)},
		observability.Field{Key: "order_ref", Value: req.OrderRef},
	)

	lastFour := req.PaymentMethodToken
	if len(lastFour) > 4 {
		lastFour = lastFour[len(lastFour)-4:]
	}

	if decline, ok := demoDeclineCodes[lastFour]; ok {
		g.logger.Info(ctx, "demo gateway forced decline")
		return ChargeResult{
			Approved: false,
			Transaction: Transaction{
				Succeeded:    false,
				Message:      decline.message,
				ResponseCode: decline.code,
				AVSCode:      "N",
				CVVCode:      "N",
			},
		}, nil
	}

	g.logger.Info(ctx, "demo gateway approved charge")
	return ChargeResult{
		Approved: true,
		Transaction: Transaction{
			Token:        fmt.Sprintf("demo_txn_%s", strings.ReplaceAll(uuid.New().String(), "-", "")),
			Succeeded:    true,
			Message:      "Approved",
			ResponseCode: DemoResponseApproved,
			AVSCode:      "Y",
			CVVCode:      "M",
		},
	}, nil
}

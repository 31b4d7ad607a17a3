package bootstrap

import (
	"context"
	"time"

	checkoutHandler "commerce-server/internal/checkout/handler"
	checkoutProcessor "commerce-server/internal/checkout/processor"
	"commerce-server/internal/clients/mail"
	redisClient "commerce-server/internal/clients/redis"
	"commerce-server/internal/config"
	"commerce-server/internal/email"
	"commerce-server/internal/gateway"
	"commerce-server/internal/idempotency"
	"commerce-server/internal/observability"
	"commerce-server/internal/store"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	Store  store.Store
	Logger *observability.Logger
	Redis  *redisClient.Client

	CheckoutHandler checkoutHandler.Handler
}

// Initialize wires every dependency once at startup. The gateway port is
// chosen here and nowhere else: the rest of the system only sees the
// gateway.Port interface.
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	dbStore, err := store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		return nil, err
	}

	rdb, err := redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		return nil, err
	}

	var gatewayPort gateway.Port
	if cfg.Gateway.DemoMode {
		logger.Info(ctx, "checkout running with simulated payment gateway")
		gatewayPort = gateway.NewDemoGateway(logger)
	} else {
		gatewayPort = gateway.NewStripeGateway(time.Duration(cfg.Gateway.TimeoutSeconds)*time.Second, logger)
	}

	var sender email.Sender
	if cfg.Email.ResendAPIKey != "" {
		resendClient, err := mail.NewResendClient(cfg.Email.ResendAPIKey, logger)
		if err != nil {
			return nil, err
		}
		sender = resendClient
	}
	confirmation := email.NewConfirmationService(sender, cfg.Email.DefaultSender, logger)

	lock := idempotency.NewCheckoutLock(rdb, logger)

	processor := checkoutProcessor.New(&dbStore, gatewayPort, lock, confirmation, logger)
	handler := checkoutHandler.New(processor, logger)

	return &Dependencies{
		Store:           dbStore,
		Logger:          logger,
		Redis:           rdb,
		CheckoutHandler: handler,
	}, nil
}

// Cleanup releases held connections during shutdown
func (d *Dependencies) Cleanup() {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}

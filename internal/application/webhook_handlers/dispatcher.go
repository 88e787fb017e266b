package webhook_handlers

import (
	"context"
	"errors"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	"github.com/rs/zerolog"
)

var errInvalidPayload = errors.New("invalid webhook payload")

// Result labels for a dispatched webhook
const (
	ResultForwarded      = "forwarded"
	ResultFailed         = "failed"
	ResultInvalidPayload = "invalid_payload"
	ResultNotHandled     = "not_handled"
)

const (
	MsgOrderProcessed       = "Order webhook processed"
	MsgOrderUpdateProcessed = "Order update webhook processed"
	MsgCustomerProcessed    = "Customer webhook processed"
	MsgUninstallProcessed   = "App uninstalled webhook processed"
	MsgComplianceProcessed  = "Compliance webhook processed"
	MsgNotHandled           = "Webhook received but not handled"
)

// Outcome is what the receiver tells Shopify plus how processing went.
// Shopify is always answered 200 once the signature checks out.
type Outcome struct {
	Message string
	Result  string
	Err     error
}

// Dispatcher routes verified webhook events by topic
type Dispatcher struct {
	orders      *OrderHandler
	customers   *CustomerHandler
	uninstalled *AppUninstalledHandler
	compliance  *ComplianceHandler
	logger      zerolog.Logger
}

// NewDispatcher wires the handlers for every topic the app subscribes to
func NewDispatcher(relay ports.RelayClient, sessions ports.SessionRepository, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		orders:      NewOrderHandler(relay, logger),
		customers:   NewCustomerHandler(relay, logger),
		uninstalled: NewAppUninstalledHandler(sessions, logger),
		compliance:  NewComplianceHandler(sessions, logger),
		logger:      logger,
	}
}

// Dispatch runs the handler for event.Topic. Handler errors are logged and
// reported in the Outcome, never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) Outcome {
	var out Outcome
	switch event.Topic {
	case domain.TopicOrdersCreate:
		out = d.finish(event, MsgOrderProcessed, d.orders.Handle(ctx, event, domain.OrderEventCreate))
	case domain.TopicOrdersUpdated:
		out = d.finish(event, MsgOrderUpdateProcessed, d.orders.Handle(ctx, event, domain.OrderEventUpdate))
	case domain.TopicCustomersCreate:
		out = d.finish(event, MsgCustomerProcessed, d.customers.Handle(ctx, event))
	case domain.TopicAppUninstalled:
		out = d.finish(event, MsgUninstallProcessed, d.uninstalled.Handle(ctx, event))
	case domain.TopicCustomersDataRequest, domain.TopicCustomersRedact, domain.TopicShopRedact:
		out = d.finish(event, MsgComplianceProcessed, d.compliance.Handle(ctx, event))
	default:
		d.logger.Info().Str("topic", event.RawTopic).Str("shop", event.Shop).Msg("Unhandled webhook topic")
		out = Outcome{Message: MsgNotHandled, Result: ResultNotHandled}
	}
	return out
}

func (d *Dispatcher) finish(event *domain.WebhookEvent, message string, err error) Outcome {
	out := Outcome{Message: message, Result: ResultForwarded, Err: err}
	if err == nil {
		return out
	}

	out.Result = ResultFailed
	if errors.Is(err, errInvalidPayload) {
		out.Result = ResultInvalidPayload
	}
	d.logger.Error().
		Err(err).
		Str("topic", event.RawTopic).
		Str("shop", event.Shop).
		Str("webhookId", event.WebhookID).
		Str("result", out.Result).
		Msg("Webhook processing failed")
	return out
}

package application

import (
	"context"
	"fmt"
	"strings"

	"gooscale-shopify-relay/internal/domain"
	"gooscale-shopify-relay/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// CustomerOrderService turns a submitted customer form into a Shopify
// customer and hands it to Gooscale
type CustomerOrderService struct {
	shopify ports.ShopifyClient
	relay   ports.RelayClient
	logger  zerolog.Logger
}

func NewCustomerOrderService(shopify ports.ShopifyClient, relay ports.RelayClient, logger zerolog.Logger) *CustomerOrderService {
	return &CustomerOrderService{
		shopify: shopify,
		relay:   relay,
		logger:  logger,
	}
}

// Submit validates the submission, creates the customer in the session's shop
// and forwards it. It returns the Shopify customer id. A failed forward is
// logged and does not fail the submission.
func (s *CustomerOrderService) Submit(ctx context.Context, session *domain.Session, submission *domain.CustomerOrderSubmission) (uint64, error) {
	if err := submission.Validate(); err != nil {
		return 0, err
	}
	if session == nil {
		return 0, domain.ErrNoSession
	}

	customer := &goshopify.Customer{
		FirstName: strings.TrimSpace(submission.FirstName),
		LastName:  strings.TrimSpace(submission.LastName),
		Email:     strings.TrimSpace(submission.Email),
		Phone:     strings.TrimSpace(submission.Phone),
		Addresses: []*goshopify.CustomerAddress{
			{
				Address1: strings.TrimSpace(submission.Address1),
				City:     strings.TrimSpace(submission.City),
				Province: strings.TrimSpace(submission.Province),
				Country:  strings.TrimSpace(submission.Country),
				Zip:      strings.TrimSpace(submission.Zip),
				Default:  true,
			},
		},
	}

	created, err := s.shopify.CreateCustomer(ctx, session.Shop, session.AccessToken, customer)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", session.Shop).Msg("Failed to create Shopify customer")
		return 0, fmt.Errorf("failed to create customer: %w", err)
	}

	if err := s.relay.ForwardCustomerOrder(ctx, created.Id, submission); err != nil {
		s.logger.Error().
			Err(err).
			Str("shop", session.Shop).
			Uint64("customerId", created.Id).
			Msg("Failed to forward customer order to Gooscale")
	}

	return created.Id, nil
}

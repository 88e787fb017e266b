package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoSession           = errors.New("no active shopify session")
	ErrInvalidShopDomain   = errors.New("invalid shop domain")
	ErrMissingShopDomain   = errors.New("missing shop domain")
	ErrInvalidState        = errors.New("invalid or expired oauth state")
	ErrInvalidHMAC         = errors.New("invalid hmac")
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrStoreNotLinked      = errors.New("store is not linked to gooscale")
	ErrWebhookTooLarge     = errors.New("webhook payload too large")
)

// RelayError is a non-2xx answer from the Gooscale platform
type RelayError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("gooscale %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// NetworkError is a transport failure talking to the Gooscale platform
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gooscale %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError lists the required fields a submission is missing
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "Missing required fields: " + strings.Join(e.MissingFields, ", ")
}

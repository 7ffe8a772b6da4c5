package billing

import (
	"context"
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
)

// creditsMetadataKey is where ship credits live on the Stripe customer.
const creditsMetadataKey = "ship_credits"

// StripeProvider implements Provider against the Stripe API. Construct
// it once at startup; a missing key is a configuration error there, not
// mid-request.
type StripeProvider struct{}

// NewStripeProvider sets the process-wide API key and returns the
// provider handle.
func NewStripeProvider(apiKey string) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("billing: stripe api key is required")
	}
	stripe.Key = apiKey
	return &StripeProvider{}, nil
}

// GetOrCreateCustomer finds the customer by email or creates one.
func (p *StripeProvider) GetOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)
	iter := customer.List(listParams)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("billing: list customers: %w", err)
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata(creditsMetadataKey, "0")
	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create customer: %w", err)
	}
	return c.ID, nil
}

// HasActiveSubscription reports whether the customer has any active
// subscription.
func (p *StripeProvider) HasActiveSubscription(ctx context.Context, customerID string) (bool, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)
	iter := subscription.List(params)
	if iter.Next() {
		return true, nil
	}
	if err := iter.Err(); err != nil {
		return false, fmt.Errorf("billing: list subscriptions: %w", err)
	}
	return false, nil
}

// Credits reads the remaining one-time credits from customer metadata.
func (p *StripeProvider) Credits(ctx context.Context, customerID string) (int64, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := customer.Get(customerID, params)
	if err != nil {
		return 0, fmt.Errorf("billing: get customer: %w", err)
	}
	return parseCredits(c.Metadata), nil
}

// ConsumeCredit decrements the credit counter by one. Returns false
// without error when no credit is available.
func (p *StripeProvider) ConsumeCredit(ctx context.Context, customerID string) (bool, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := customer.Get(customerID, params)
	if err != nil {
		return false, fmt.Errorf("billing: get customer: %w", err)
	}
	credits := parseCredits(c.Metadata)
	if credits <= 0 {
		return false, nil
	}
	update := &stripe.CustomerParams{}
	update.Context = ctx
	update.AddMetadata(creditsMetadataKey, strconv.FormatInt(credits-1, 10))
	if _, err := customer.Update(customerID, update); err != nil {
		return false, fmt.Errorf("billing: update credits: %w", err)
	}
	return true, nil
}

func parseCredits(metadata map[string]string) int64 {
	raw, ok := metadata[creditsMetadataKey]
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

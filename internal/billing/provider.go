// Package billing gates ship runs on payment state. The provider is the
// external boundary (Stripe); the gate holds the fail-closed /
// fail-open policy around one run.
package billing

import (
	"context"
	"errors"
)

// Plan names the access level a customer holds.
type Plan string

const (
	PlanNone   Plan = "none"
	PlanCredit Plan = "credit"
	PlanPro    Plan = "pro"
)

// Status is the payment state read before a run starts.
type Status struct {
	CustomerID string `json:"customerId"`
	Plan       Plan   `json:"plan"`
	Credits    int64  `json:"credits"`
}

// ErrNoAccess means the customer has neither a subscription nor credits.
var ErrNoAccess = errors.New("billing: no active subscription or credits")

// ErrVerification means the provider could not be consulted; access is
// denied (fail closed).
var ErrVerification = errors.New("billing: payment verification failed")

// Provider is the billing-provider boundary. All durable payment state
// lives behind it.
type Provider interface {
	GetOrCreateCustomer(ctx context.Context, email, name string) (string, error)
	HasActiveSubscription(ctx context.Context, customerID string) (bool, error)
	Credits(ctx context.Context, customerID string) (int64, error)
	ConsumeCredit(ctx context.Context, customerID string) (bool, error)
}

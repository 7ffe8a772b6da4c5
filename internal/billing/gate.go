package billing

import (
	"context"
	"fmt"
	"log"
)

// Gate applies the access policy around one run: fail closed before the
// run, fail open for the user after it.
type Gate struct {
	Provider Provider
}

// Authorize resolves the customer and checks access before a run.
// Provider errors become ErrVerification (no access granted); a customer
// with neither subscription nor credits gets ErrNoAccess.
func (g *Gate) Authorize(ctx context.Context, email, name string) (Status, error) {
	customerID, err := g.Provider.GetOrCreateCustomer(ctx, email, name)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	subscribed, err := g.Provider.HasActiveSubscription(ctx, customerID)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if subscribed {
		return Status{CustomerID: customerID, Plan: PlanPro}, nil
	}
	credits, err := g.Provider.Credits(ctx, customerID)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if credits <= 0 {
		return Status{CustomerID: customerID, Plan: PlanNone}, ErrNoAccess
	}
	return Status{CustomerID: customerID, Plan: PlanCredit, Credits: credits}, nil
}

// Settle consumes one credit after a successful run for non-subscribers.
// A settlement failure is logged and swallowed: the user already received
// the output and is never penalized twice for a billing-side error.
func (g *Gate) Settle(ctx context.Context, status Status) {
	if status.Plan != PlanCredit {
		return
	}
	consumed, err := g.Provider.ConsumeCredit(ctx, status.CustomerID)
	if err != nil {
		log.Printf("billing: credit settlement failed for %s: %v", status.CustomerID, err)
		return
	}
	if !consumed {
		log.Printf("billing: no credit left to settle for %s", status.CustomerID)
	}
}

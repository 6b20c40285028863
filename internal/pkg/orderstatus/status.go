package orderstatus

import "fmt"

// Order lifecycle states. PENDING is the only initial state; an order is
// created with it at checkout-session creation time.
const (
	PENDING    = "pending"    // created, awaiting payment capture
	CONFIRMED  = "confirmed"  // payment captured
	PROCESSING = "processing" // being prepared for shipment
	SHIPPED    = "shipped"    // handed to the carrier
	DELIVERED  = "delivered"  // carrier reported delivery
	CANCELLED  = "cancelled"  // payment failed, session expired or user cancelled
	REFUNDED   = "refunded"   // payment returned
)

// All enumerates every known status.
var All = []string{PENDING, CONFIRMED, PROCESSING, SHIPPED, DELIVERED, CANCELLED, REFUNDED}

// AllowedTransitions defines the valid edges of the order state machine.
// Key is the current status, value the set of valid target statuses.
// Any pair not listed here is denied; statuses mapping to an empty slice
// are terminal. Do not add edges without confirming the intended graph
// with the shop owner first.
var AllowedTransitions = map[string][]string{
	PENDING:    {CONFIRMED, CANCELLED},
	CONFIRMED:  {SHIPPED},
	PROCESSING: {},
	SHIPPED:    {DELIVERED},
	DELIVERED:  {},
	CANCELLED:  {},
	REFUNDED:   {},
}

// IsValid reports whether s is a member of the status set.
func IsValid(s string) bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// IsTerminal reports whether no transition out of s is accepted.
func IsTerminal(s string) bool {
	targets, ok := AllowedTransitions[s]
	return ok && len(targets) == 0
}

// CanTransition reports whether moving an order from one status to
// another is allowed. It is total over arbitrary strings: unknown
// statuses are denied like any unlisted edge.
func CanTransition(from, to string) bool {
	targets, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition-wrapped details if the
// edge is denied.
func ValidateTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

package enums

import "fmt"

// CheckoutState is the tag of the checkout wizard state machine.
type CheckoutState string

const (
	CheckoutStateReview       CheckoutState = "review"
	CheckoutStateShipping     CheckoutState = "shipping"
	CheckoutStateConfirmation CheckoutState = "confirmation"
	CheckoutStateSubmitting   CheckoutState = "submitting"
	CheckoutStateFailed       CheckoutState = "failed"
	CheckoutStateCompleted    CheckoutState = "completed"
)

var validCheckoutStates = []CheckoutState{
	CheckoutStateReview,
	CheckoutStateShipping,
	CheckoutStateConfirmation,
	CheckoutStateSubmitting,
	CheckoutStateFailed,
	CheckoutStateCompleted,
}

// String implements fmt.Stringer.
func (s CheckoutState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutState.
func (s CheckoutState) IsValid() bool {
	for _, candidate := range validCheckoutStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// Step returns the wizard step shown to the shopper, or 0 once the order is placed.
func (s CheckoutState) Step() int {
	switch s {
	case CheckoutStateReview:
		return 1
	case CheckoutStateShipping:
		return 2
	case CheckoutStateConfirmation, CheckoutStateSubmitting, CheckoutStateFailed:
		return 3
	default:
		return 0
	}
}

// ParseCheckoutState converts raw input into a CheckoutState.
func ParseCheckoutState(value string) (CheckoutState, error) {
	for _, candidate := range validCheckoutStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout state %q", value)
}

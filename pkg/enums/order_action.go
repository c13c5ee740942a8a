package enums

import "fmt"

// OrderAction is the decision a farmer takes on a pending order request.
type OrderAction string

const (
	OrderActionAccept OrderAction = "accept"
	OrderActionReject OrderAction = "reject"
)

// StatusFor maps the action onto the resulting order status.
func (a OrderAction) StatusFor() (OrderStatus, error) {
	switch a {
	case OrderActionAccept:
		return OrderStatusAccepted, nil
	case OrderActionReject:
		return OrderStatusRejected, nil
	default:
		return "", fmt.Errorf("invalid order action %q", a)
	}
}

// ParseOrderAction converts raw input into an OrderAction.
func ParseOrderAction(value string) (OrderAction, error) {
	switch OrderAction(value) {
	case OrderActionAccept:
		return OrderActionAccept, nil
	case OrderActionReject:
		return OrderActionReject, nil
	default:
		return "", fmt.Errorf("invalid order action %q", value)
	}
}

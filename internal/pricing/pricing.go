// Package pricing derives delivery charge and order totals from a subtotal.
package pricing

const (
	DefaultFreeDeliveryThreshold int64 = 499
	DefaultDeliveryCharge        int64 = 49
)

// Policy is a flat delivery fee waived at or above a subtotal threshold.
type Policy struct {
	FreeDeliveryThreshold int64 `json:"free_delivery_threshold"`
	DeliveryCharge        int64 `json:"delivery_charge"`
}

func DefaultPolicy() Policy {
	return Policy{
		FreeDeliveryThreshold: DefaultFreeDeliveryThreshold,
		DeliveryCharge:        DefaultDeliveryCharge,
	}
}

type Quote struct {
	Subtotal       int64 `json:"subtotal"`
	DeliveryCharge int64 `json:"delivery_charge"`
	Discount       int64 `json:"discount"`
	Total          int64 `json:"total"`
}

// DeliveryFee is 0 when subtotal >= threshold, the flat fee otherwise.
func (p Policy) DeliveryFee(subtotal int64) int64 {
	if subtotal >= p.FreeDeliveryThreshold {
		return 0
	}
	return p.DeliveryCharge
}

// Quote prices a subtotal. Discount is always 0 for now.
func (p Policy) Quote(subtotal int64) Quote {
	fee := p.DeliveryFee(subtotal)
	return Quote{
		Subtotal:       subtotal,
		DeliveryCharge: fee,
		Discount:       0,
		Total:          subtotal + fee,
	}
}

// AmountForFreeDelivery is how much more the customer must add to reach
// the threshold.
func (p Policy) AmountForFreeDelivery(subtotal int64) int64 {
	if subtotal >= p.FreeDeliveryThreshold {
		return 0
	}
	return p.FreeDeliveryThreshold - subtotal
}

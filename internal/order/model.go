package order

import (
	"time"

	"github.com/nourtarek555/BuyerMS3/internal/cart"
)

type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// Order is a durable record created once at checkout. The item snapshot
// is a point-in-time copy of the cart entries, not a live reference, and
// never changes after creation; only the status field moves afterwards.
type Order struct {
	ID            string               `json:"orderId"`
	BuyerID       string               `json:"buyerId"`
	SellerID      string               `json:"sellerId"`
	Items         map[string]cart.Item `json:"items"`
	TotalPrice    float64              `json:"totalPrice"`
	Status        Status               `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	BuyerName     string               `json:"buyerName"`
	BuyerAddress  string               `json:"buyerAddress"`
	SellerName    string               `json:"sellerName"`
	DeliveryType  DeliveryType         `json:"deliveryType"`
	DeliveryPrice float64              `json:"deliveryPrice"`
}

// ItemTotal sums the item lines without the delivery fee.
func (o *Order) ItemTotal() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.TotalPrice()
	}
	return total
}

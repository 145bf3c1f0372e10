package events

const (
	Exchange = "marketplace.events"

	OrderPlacedName    = "order.placed"
	OrderPlacedVersion = 1
	OrderPlacedKey     = "order.placed.v1"

	OrderStatusChangedName    = "order.status-changed"
	OrderStatusChangedVersion = 1
	OrderStatusChangedKey     = "order.status-changed.v1"

	producer = "buyerms"
)

type OrderLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type OrderPlaced struct {
	OrderID       string      `json:"orderId"`
	BuyerID       string      `json:"buyerId"`
	SellerID      string      `json:"sellerId"`
	Items         []OrderLine `json:"items"`
	TotalPrice    float64     `json:"totalPrice"`
	DeliveryType  string      `json:"deliveryType"`
	DeliveryPrice float64     `json:"deliveryPrice"`
}

type OrderStatusChanged struct {
	OrderID        string `json:"orderId"`
	BuyerID        string `json:"buyerId"`
	SellerID       string `json:"sellerId"`
	PreviousStatus string `json:"previousStatus"`
	NewStatus      string `json:"newStatus"`
}

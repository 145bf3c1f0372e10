package cart

// Product is the buyer-facing snapshot handed to AddItem: what the UI
// knows about a product at the moment the buyer taps "add".
type Product struct {
	ID       string  `json:"productId"`
	SellerID string  `json:"sellerId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL string  `json:"imageUrl"`
}

// Item is one cart entry. MaxStock caches the stock ceiling observed by
// the most recent successful reservation for this product: the units held
// in this cart plus the units still available remotely. It is advisory
// and re-validated on every quantity increase.
type Item struct {
	ProductID   string  `json:"productId"`
	SellerID    string  `json:"sellerId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"imageUrl"`
	MaxStock    int     `json:"maxStock"`
}

// TotalPrice is the line total for this entry.
func (i Item) TotalPrice() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

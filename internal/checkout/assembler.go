// Package checkout turns a cart into durable orders. Items are grouped
// by seller; each seller group becomes one order. Stock was already
// reserved when the items entered the cart, so checkout performs no
// stock mutation and simply consumes the reservations.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nourtarek555/BuyerMS3/internal/cart"
	"github.com/nourtarek555/BuyerMS3/internal/events"
	"github.com/nourtarek555/BuyerMS3/internal/order"
	"github.com/nourtarek555/BuyerMS3/internal/profile"
	"github.com/nourtarek555/BuyerMS3/internal/remotestore"
)

var ErrEmptyCart = errors.New("cart is empty")

// Cart is the slice of the cart store checkout needs.
type Cart interface {
	Items() (map[string]cart.Item, error)
	Clear(ctx context.Context, restoreStock bool) (bool, error)
}

type Profiles interface {
	Buyer(ctx context.Context, buyerID string) (profile.Buyer, error)
	Seller(ctx context.Context, sellerID string) (profile.Seller, error)
}

type FeeQuoter interface {
	Fee(buyerAddress string, pickup bool) float64
}

type Assembler struct {
	cart      Cart
	orders    order.Repository
	profiles  Profiles
	fees      FeeQuoter
	publisher events.Publisher
	logger    *log.Logger
}

func NewAssembler(c Cart, orders order.Repository, profiles Profiles, fees FeeQuoter, publisher events.Publisher, logger *log.Logger) *Assembler {
	return &Assembler{cart: c, orders: orders, profiles: profiles, fees: fees, publisher: publisher, logger: logger}
}

// Checkout creates one pending order per seller represented in the cart
// and empties the cart without restoring stock. Orders are created
// sequentially in seller order; the first persistence failure aborts the
// remaining groups and the cart is left intact so the buyer can retry.
func (a *Assembler) Checkout(ctx context.Context, buyerID string, deliveryType order.DeliveryType) ([]order.Order, error) {
	items, err := a.cart.Items()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	buyer, err := a.profiles.Buyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("load buyer profile: %w", err)
	}

	groups := groupBySeller(items)
	sellerIDs := make([]string, 0, len(groups))
	for id := range groups {
		sellerIDs = append(sellerIDs, id)
	}
	sort.Strings(sellerIDs)

	pickup := deliveryType == order.DeliveryTypePickup
	created := make([]order.Order, 0, len(groups))
	for _, sellerID := range sellerIDs {
		sellerName, err := a.sellerName(ctx, sellerID)
		if err != nil {
			return created, err
		}

		o := order.Order{
			ID:            uuid.NewString(),
			BuyerID:       buyerID,
			SellerID:      sellerID,
			Items:         groups[sellerID],
			Status:        order.StatusPending,
			CreatedAt:     time.Now().UTC(),
			BuyerName:     buyer.Name,
			BuyerAddress:  buyer.Address,
			SellerName:    sellerName,
			DeliveryType:  deliveryType,
			DeliveryPrice: a.fees.Fee(buyer.Address, pickup),
		}
		o.TotalPrice = o.ItemTotal() + o.DeliveryPrice

		if err := a.orders.Create(ctx, &o); err != nil {
			return created, fmt.Errorf("create order for seller %s: %w", sellerID, err)
		}
		created = append(created, o)

		if err := a.publisher.PublishOrderPlaced(ctx, &o); err != nil {
			a.logger.Printf("publish order.placed for %s: %v", o.ID, err)
		}
	}

	// The reservations are now consumed by the sale.
	if _, err := a.cart.Clear(ctx, false); err != nil {
		a.logger.Printf("clear cart after checkout: %v", err)
	}
	return created, nil
}

func (a *Assembler) sellerName(ctx context.Context, sellerID string) (string, error) {
	sl, err := a.profiles.Seller(ctx, sellerID)
	if err != nil {
		if errors.Is(err, remotestore.ErrNotFound) {
			return sellerID, nil
		}
		return "", fmt.Errorf("load seller profile %s: %w", sellerID, err)
	}
	return sl.DisplayName(), nil
}

// groupBySeller splits the flat cart map into per-seller snapshots.
func groupBySeller(items map[string]cart.Item) map[string]map[string]cart.Item {
	groups := make(map[string]map[string]cart.Item)
	for id, it := range items {
		g, ok := groups[it.SellerID]
		if !ok {
			g = make(map[string]cart.Item)
			groups[it.SellerID] = g
		}
		g[id] = it
	}
	return groups
}

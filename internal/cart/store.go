package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nourtarek555/BuyerMS3/internal/cart/prefs"
	"github.com/nourtarek555/BuyerMS3/internal/inventory"
)

// ErrItemNotFound is returned by operations referencing a product that is
// not in the cart.
var ErrItemNotFound = errors.New("Item not found in cart")

// NotEnoughStockError is the cart-level shortfall: nothing (or less than
// requested) could be added given what the cart already holds.
type NotEnoughStockError struct {
	Available int // maximum units this cart could hold
	InCart    int
}

func (e *NotEnoughStockError) Error() string {
	if e.InCart > 0 {
		return fmt.Sprintf("Not enough stock. Maximum available: %d (already have %d in cart)", e.Available, e.InCart)
	}
	return fmt.Sprintf("Not enough stock. Maximum available: %d", e.Available)
}

// Reservations is the slice of the inventory service the cart depends on.
type Reservations interface {
	Reserve(ctx context.Context, productID, sellerID string, quantity int) (inventory.Result, error)
	Release(ctx context.Context, productID, sellerID string, quantity int) (inventory.Result, error)
	CurrentStock(ctx context.Context, productID, sellerID string) (int, error)
}

// AddResult reports what AddItem actually did.
type AddResult struct {
	Added    int    `json:"added"`    // units reserved by this call
	Quantity int    `json:"quantity"` // cart quantity after the call
	NewStock int    `json:"newStock"`
	Partial  bool   `json:"partial"`
	Message  string `json:"message"`
}

// UpdateResult reports the outcome of a quantity change. StockUnverified
// is set when the authoritative stock could not be re-fetched and the
// check ran against the cached ceiling instead.
type UpdateResult struct {
	Quantity        int    `json:"quantity"`
	NewStock        int    `json:"newStock"`
	StockUnverified bool   `json:"stockUnverified,omitempty"`
	Message         string `json:"message"`
}

// Store owns the local persisted cart: a productId -> Item map serialized
// as one blob. Every stock-affecting mutation reserves or releases against
// the remote inventory first and only then commits the local change.
// A single mutex serializes local mutations; cross-device races are left
// to the remote store's conditional writes.
type Store struct {
	mu     sync.Mutex
	blob   prefs.Blob
	inv    Reservations
	logger *log.Logger
}

func NewStore(blob prefs.Blob, inv Reservations, logger *log.Logger) *Store {
	return &Store{blob: blob, inv: inv, logger: logger}
}

func (s *Store) load() (map[string]Item, error) {
	data, ok, err := s.blob.Load()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !ok {
		return map[string]Item{}, nil
	}
	items := map[string]Item{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (s *Store) save(items map[string]Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.blob.Save(data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// AddItem reserves up to requested units of p and merges them into the
// cart. When the known stock cannot cover the full request the deliverable
// part is added and the result is marked partial; when nothing can be
// added, a NotEnoughStockError names the ceiling. A failed reservation
// leaves the cart untouched.
func (s *Store) AddItem(ctx context.Context, p Product, requested int) (AddResult, error) {
	if requested <= 0 {
		return AddResult{}, inventory.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return AddResult{}, err
	}

	existing, has := items[p.ID]
	inCart := 0
	if has {
		inCart = existing.Quantity
	}

	deliverable := requested
	if inCart+requested > p.Stock {
		deliverable = p.Stock - inCart
		if deliverable < 0 {
			deliverable = 0
		}
	}
	if deliverable == 0 {
		return AddResult{}, &NotEnoughStockError{Available: p.Stock, InCart: inCart}
	}

	res, err := s.inv.Reserve(ctx, p.ID, p.SellerID, deliverable)
	if err != nil {
		// Surface the reservation failure unchanged; no local mutation.
		return AddResult{}, err
	}

	quantity := inCart + deliverable
	items[p.ID] = Item{
		ProductID:   p.ID,
		SellerID:    p.SellerID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    quantity,
		ImageURL:    p.ImageURL,
		MaxStock:    quantity + res.NewStock,
	}
	if err := s.save(items); err != nil {
		return AddResult{}, err
	}

	out := AddResult{
		Added:    deliverable,
		Quantity: quantity,
		NewStock: res.NewStock,
		Partial:  deliverable < requested,
	}
	if out.Partial {
		out.Message = fmt.Sprintf("Only %d more available. Added %d to cart.", deliverable, deliverable)
	} else {
		out.Message = fmt.Sprintf("Added %d to cart", deliverable)
	}
	return out, nil
}

// UpdateQuantity sets the cart quantity for a product, reserving or
// releasing the difference. A non-positive quantity removes the item. The
// authoritative remote stock is re-fetched before an increase; when that
// fetch fails, the cached ceiling is used and the result is flagged so the
// UI can warn that the check is unverified.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, newQty int) (UpdateResult, error) {
	if newQty <= 0 {
		if err := s.RemoveItem(ctx, productID); err != nil {
			return UpdateResult{}, err
		}
		return UpdateResult{Message: "Item removed from cart"}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return UpdateResult{}, err
	}
	existing, ok := items[productID]
	if !ok {
		return UpdateResult{}, ErrItemNotFound
	}

	diff := newQty - existing.Quantity
	if diff == 0 {
		return UpdateResult{Quantity: newQty, Message: "Quantity unchanged"}, nil
	}

	// Never trust the cached ceiling for an increase decision.
	ceiling := existing.MaxStock
	unverified := false
	if fresh, err := s.inv.CurrentStock(ctx, productID, existing.SellerID); err == nil {
		ceiling = fresh + existing.Quantity
	} else {
		s.logger.Printf("stock check for %s unverified: %v", productID, err)
		unverified = true
	}

	var res inventory.Result
	if diff > 0 {
		if newQty > ceiling {
			return UpdateResult{StockUnverified: unverified}, &NotEnoughStockError{Available: ceiling}
		}
		res, err = s.inv.Reserve(ctx, productID, existing.SellerID, diff)
	} else {
		res, err = s.inv.Release(ctx, productID, existing.SellerID, -diff)
	}
	if err != nil {
		return UpdateResult{StockUnverified: unverified}, err
	}

	existing.Quantity = newQty
	existing.MaxStock = newQty + res.NewStock
	items[productID] = existing
	if err := s.save(items); err != nil {
		return UpdateResult{}, err
	}

	return UpdateResult{
		Quantity:        newQty,
		NewStock:        res.NewStock,
		StockUnverified: unverified,
		Message:         "Quantity updated",
	}, nil
}

// RemoveItem releases the item's reserved units and deletes the entry.
// A failed release is logged and the entry is removed anyway; an orphaned
// reservation is an acceptable rare leak, not a blocking condition.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	existing, ok := items[productID]
	if !ok {
		return ErrItemNotFound
	}

	if _, err := s.inv.Release(ctx, productID, existing.SellerID, existing.Quantity); err != nil {
		s.logger.Printf("restore stock for %s failed, removing entry anyway: %v", productID, err)
	}

	delete(items, productID)
	return s.save(items)
}

// Clear empties the cart. With restoreStock the reserved units of every
// item are released concurrently first, and the returned flag reports
// whether every release provably succeeded; the cart is emptied either
// way. Without restoreStock (after a placed order) the local map is simply
// dropped, since the sale consumed the reservations.
func (s *Store) Clear(ctx context.Context, restoreStock bool) (allSucceeded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return false, err
	}

	if restoreStock && len(items) > 0 {
		var g errgroup.Group
		for _, it := range items {
			it := it
			g.Go(func() error {
				_, err := s.inv.Release(ctx, it.ProductID, it.SellerID, it.Quantity)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			s.logger.Printf("clear cart: not all reservations returned: %v", err)
			allSucceeded = false
		} else {
			allSucceeded = true
		}
	} else {
		allSucceeded = true
	}

	if err := s.blob.Delete(); err != nil {
		return allSucceeded, fmt.Errorf("clear cart: %w", err)
	}
	return allSucceeded, nil
}

// Items returns a copy of the cart map.
func (s *Store) Items() (map[string]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// TotalPrice sums the line totals of every entry.
func (s *Store) TotalPrice() (float64, error) {
	items, err := s.Items()
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, it := range items {
		total += it.TotalPrice()
	}
	return total, nil
}

// ItemCount is the number of individual units across all entries.
func (s *Store) ItemCount() (int, error) {
	items, err := s.Items()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return count, nil
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/nourtarek555/BuyerMS3/internal/cart"
	"github.com/nourtarek555/BuyerMS3/internal/cart/prefs"
	"github.com/nourtarek555/BuyerMS3/internal/delivery"
	"github.com/nourtarek555/BuyerMS3/internal/inventory"
	"github.com/nourtarek555/BuyerMS3/internal/order"
	"github.com/nourtarek555/BuyerMS3/internal/profile"
	"github.com/nourtarek555/BuyerMS3/internal/remotestore"
)

type fakeRepo struct {
	created []order.Order
	failFor string
}

func (r *fakeRepo) Create(ctx context.Context, o *order.Order) error {
	if r.failFor != "" && o.SellerID == r.failFor {
		return errors.New("insert failed")
	}
	r.created = append(r.created, *o)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	return nil, order.ErrOrderNotFound
}
func (r *fakeRepo) ListByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	return nil, nil
}
func (r *fakeRepo) ListBySeller(ctx context.Context, sellerID string) ([]order.Order, error) {
	return nil, nil
}
func (r *fakeRepo) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	return nil
}

type fakePublisher struct {
	placed []string
	err    error
}

func (p *fakePublisher) PublishOrderPlaced(ctx context.Context, o *order.Order) error {
	if p.err != nil {
		return p.err
	}
	p.placed = append(p.placed, o.ID)
	return nil
}
func (p *fakePublisher) PublishOrderStatusChanged(ctx context.Context, o *order.Order, previous order.Status) error {
	return nil
}
func (p *fakePublisher) Close() error { return nil }

type fixture struct {
	store     *cart.Store
	remote    *remotestore.MemoryStore
	repo      *fakeRepo
	publisher *fakePublisher
	asm       *Assembler
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func stockPath(sellerID, productID string) string {
	return fmt.Sprintf("sellers/%s/products/%s/stock", sellerID, productID)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	remote := remotestore.NewMemoryStore()
	remote.Seed("buyers/b1", `{"name":"Alex","address":"Street 90, New Cairo"}`)
	remote.Seed("sellers/s1/profile", `{"name":"Maria","shopName":"Corner Shop","address":"4 Market Sq"}`)
	remote.Seed("sellers/s2/profile", `{"name":"Omar","shopName":"Bakery","address":"9 Main St"}`)
	remote.Seed(stockPath("s1", "p1"), 10)
	remote.Seed(stockPath("s1", "p2"), 10)
	remote.Seed(stockPath("s2", "p3"), 10)

	store := cart.NewStore(prefs.NewMemoryBlob(), inventory.NewService(remote, discard()), discard())
	repo := &fakeRepo{}
	publisher := &fakePublisher{}
	asm := NewAssembler(store, repo, profile.NewService(remote), delivery.NewCalculator(delivery.Config{}), publisher, discard())
	return &fixture{store: store, remote: remote, repo: repo, publisher: publisher, asm: asm}
}

func addItem(t *testing.T, f *fixture, sellerID, productID string, price float64, qty int) {
	t.Helper()
	p := cart.Product{ID: productID, SellerID: sellerID, Name: "Item " + productID, Price: price, Stock: 10}
	if _, err := f.store.AddItem(context.Background(), p, qty); err != nil {
		t.Fatalf("add %s: %v", productID, err)
	}
}

func TestCheckoutGroupsBySeller(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addItem(t, f, "s1", "p1", 5, 2)
	addItem(t, f, "s1", "p2", 3, 1)
	addItem(t, f, "s2", "p3", 4, 2)

	orders, err := f.asm.Checkout(ctx, "b1", order.DeliveryTypeDelivery)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("created %d orders, want 2", len(orders))
	}

	bySeller := map[string]order.Order{}
	for _, o := range orders {
		bySeller[o.SellerID] = o
	}

	first := bySeller["s1"]
	if len(first.Items) != 2 {
		t.Fatalf("s1 order has %d items, want 2", len(first.Items))
	}
	// 2*5 + 1*3 items plus the local-zone fee
	if first.TotalPrice != 13+delivery.FeeLocal {
		t.Fatalf("s1 total %v", first.TotalPrice)
	}
	if first.Status != order.StatusPending {
		t.Fatalf("s1 status %s, want pending", first.Status)
	}
	if first.BuyerName != "Alex" || first.SellerName != "Corner Shop" {
		t.Fatalf("names not resolved: %+v", first)
	}

	second := bySeller["s2"]
	if len(second.Items) != 1 || second.SellerName != "Bakery" {
		t.Fatalf("unexpected s2 order %+v", second)
	}

	if len(f.publisher.placed) != 2 {
		t.Fatalf("published %d events, want 2", len(f.publisher.placed))
	}

	items, _ := f.store.Items()
	if len(items) != 0 {
		t.Fatalf("cart not cleared: %+v", items)
	}
	// Reservations stay consumed after a sale.
	if v, _ := f.remote.Value(stockPath("s1", "p1")); inventory.CoerceStock(v) != 8 {
		t.Fatalf("stock restored after checkout: %v", v)
	}
}

func TestCheckoutPickupHasNoFee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addItem(t, f, "s1", "p1", 5, 2)

	orders, err := f.asm.Checkout(ctx, "b1", order.DeliveryTypePickup)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if orders[0].DeliveryPrice != 0 || orders[0].TotalPrice != 10 {
		t.Fatalf("pickup order priced %+v", orders[0])
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.asm.Checkout(context.Background(), "b1", order.DeliveryTypeDelivery)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutMissingBuyerProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addItem(t, f, "s1", "p1", 5, 1)

	_, err := f.asm.Checkout(ctx, "ghost", order.DeliveryTypeDelivery)
	if err == nil {
		t.Fatal("expected error for missing buyer profile")
	}

	items, _ := f.store.Items()
	if len(items) != 1 {
		t.Fatal("cart mutated on failed checkout")
	}
}

func TestCheckoutMissingSellerProfileFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.remote.Seed(stockPath("s9", "p9"), 10)
	addItem(t, f, "s9", "p9", 2, 1)

	orders, err := f.asm.Checkout(ctx, "b1", order.DeliveryTypeDelivery)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if orders[0].SellerName != "s9" {
		t.Fatalf("seller name %q, want the raw id", orders[0].SellerName)
	}
}

func TestCheckoutAbortsOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addItem(t, f, "s1", "p1", 5, 1)
	addItem(t, f, "s2", "p3", 4, 1)
	f.repo.failFor = "s2"

	created, err := f.asm.Checkout(ctx, "b1", order.DeliveryTypeDelivery)
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if len(created) != 1 || created[0].SellerID != "s1" {
		t.Fatalf("unexpected created orders %+v", created)
	}

	items, _ := f.store.Items()
	if len(items) != 2 {
		t.Fatal("cart cleared despite failed checkout")
	}
}

func TestCheckoutToleratesPublishFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	addItem(t, f, "s1", "p1", 5, 1)
	f.publisher.err = errors.New("broker down")

	orders, err := f.asm.Checkout(ctx, "b1", order.DeliveryTypeDelivery)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("created %d orders, want 1", len(orders))
	}
}

package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/nourtarek555/BuyerMS3/internal/order"
)

func TestCacheAdd(t *testing.T) {
	c := NewCache(3)

	if !c.Add("a") {
		t.Fatal("first insert reported as duplicate")
	}
	if c.Add("a") {
		t.Fatal("duplicate insert reported as new")
	}

	c.Add("b")
	c.Add("c")
	c.Add("d") // evicts "a"

	if c.Len() != 3 {
		t.Fatalf("cache grew past capacity: %d", c.Len())
	}
	if !c.Add("a") {
		t.Fatal("evicted key still reported as seen")
	}
	if c.Add("d") {
		t.Fatal("recent key evicted too early")
	}
}

type captureSender struct {
	bodies []string
	err    error
}

func (s *captureSender) Send(ctx context.Context, buyerID, title, body string) error {
	if s.err != nil {
		return s.err
	}
	s.bodies = append(s.bodies, body)
	return nil
}

func testOrder(status order.Status, deliveryType order.DeliveryType) order.Order {
	return order.Order{
		ID:           "o1",
		BuyerID:      "b1",
		SellerName:   "Corner Shop",
		Status:       status,
		DeliveryType: deliveryType,
	}
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	t.Run("notifies on delivering", func(t *testing.T) {
		sender := &captureSender{}
		d := NewDispatcher(sender, logger)

		d.OrderStatusChanged(ctx, testOrder(order.StatusDelivering, order.DeliveryTypeDelivery), order.StatusAccepted)

		if len(sender.bodies) != 1 || !strings.Contains(sender.bodies[0], "on its way") {
			t.Fatalf("unexpected messages %v", sender.bodies)
		}
	})

	t.Run("pickup orders get a pickup message", func(t *testing.T) {
		sender := &captureSender{}
		d := NewDispatcher(sender, logger)

		d.OrderStatusChanged(ctx, testOrder(order.StatusReady, order.DeliveryTypePickup), order.StatusPreparing)

		if len(sender.bodies) != 1 || !strings.Contains(sender.bodies[0], "ready for pickup") {
			t.Fatalf("unexpected messages %v", sender.bodies)
		}
	})

	t.Run("silent statuses", func(t *testing.T) {
		sender := &captureSender{}
		d := NewDispatcher(sender, logger)

		for _, s := range []order.Status{order.StatusPending, order.StatusAccepted, order.StatusPreparing, order.StatusDelivered, order.StatusCancelled} {
			d.OrderStatusChanged(ctx, testOrder(s, order.DeliveryTypeDelivery), order.StatusPending)
		}
		if len(sender.bodies) != 0 {
			t.Fatalf("unexpected messages %v", sender.bodies)
		}
	})

	t.Run("repeated status sends once", func(t *testing.T) {
		sender := &captureSender{}
		d := NewDispatcher(sender, logger)

		o := testOrder(order.StatusReady, order.DeliveryTypeDelivery)
		d.OrderStatusChanged(ctx, o, order.StatusPreparing)
		d.OrderStatusChanged(ctx, o, order.StatusPreparing)

		if len(sender.bodies) != 1 {
			t.Fatalf("sent %d times, want 1", len(sender.bodies))
		}
	})

	t.Run("distinct orders are independent", func(t *testing.T) {
		sender := &captureSender{}
		d := NewDispatcher(sender, logger)

		for i := 0; i < 3; i++ {
			o := testOrder(order.StatusReady, order.DeliveryTypeDelivery)
			o.ID = fmt.Sprintf("o%d", i)
			d.OrderStatusChanged(ctx, o, order.StatusPreparing)
		}
		if len(sender.bodies) != 3 {
			t.Fatalf("sent %d times, want 3", len(sender.bodies))
		}
	})

	t.Run("send failure is swallowed", func(t *testing.T) {
		sender := &captureSender{err: fmt.Errorf("push gateway down")}
		d := NewDispatcher(sender, logger)

		d.OrderStatusChanged(ctx, testOrder(order.StatusReady, order.DeliveryTypeDelivery), order.StatusPreparing)
	})
}

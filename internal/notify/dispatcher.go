// Package notify turns confirmed order status changes into buyer-facing
// messages. Only statuses a buyer needs to act on produce a message, and
// each (order, status) pair is sent at most once per cache window.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/nourtarek555/BuyerMS3/internal/order"
)

// Sender delivers a single message to a buyer. The push transport lives
// behind this interface.
type Sender interface {
	Send(ctx context.Context, buyerID, title, body string) error
}

// LogSender writes messages to the log. Used when no push transport is
// configured.
type LogSender struct {
	Logger *log.Logger
}

func (s *LogSender) Send(ctx context.Context, buyerID, title, body string) error {
	s.Logger.Printf("notify %s: %s: %s", buyerID, title, body)
	return nil
}

const defaultCacheSize = 512

type Dispatcher struct {
	sender Sender
	sent   *Cache
	logger *log.Logger
}

func NewDispatcher(sender Sender, logger *log.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, sent: NewCache(defaultCacheSize), logger: logger}
}

// OrderStatusChanged implements order.Notifier. A send failure is logged
// and dropped; notifications never block or fail a status change.
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, o order.Order, previous order.Status) {
	body := messageFor(o)
	if body == "" {
		return
	}
	key := fmt.Sprintf("%s:%s", o.ID, o.Status)
	if !d.sent.Add(key) {
		return
	}
	if err := d.sender.Send(ctx, o.BuyerID, "Order update", body); err != nil {
		d.logger.Printf("send notification for order %s: %v", o.ID, err)
	}
}

func messageFor(o order.Order) string {
	switch o.Status {
	case order.StatusReady:
		if o.DeliveryType == order.DeliveryTypePickup {
			return fmt.Sprintf("Your order from %s is ready for pickup.", o.SellerName)
		}
		return fmt.Sprintf("Your order from %s is ready.", o.SellerName)
	case order.StatusDelivering:
		return fmt.Sprintf("Your order from %s is on its way.", o.SellerName)
	default:
		return ""
	}
}

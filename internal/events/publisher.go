package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nourtarek555/BuyerMS3/internal/order"
)

// Publisher emits domain events for downstream consumers.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, o *order.Order) error
	PublishOrderStatusChanged(ctx context.Context, o *order.Order, previous order.Status) error
	Close() error
}

type RabbitPublisher struct {
	ch *amqp.Channel
}

func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the exchange so publish never fails due to missing infra
	err = ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", Exchange, err)
	}

	return &RabbitPublisher{ch: ch}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, o *order.Order) error {
	payload := OrderPlaced{
		OrderID:       o.ID,
		BuyerID:       o.BuyerID,
		SellerID:      o.SellerID,
		Items:         orderLines(o),
		TotalPrice:    o.TotalPrice,
		DeliveryType:  string(o.DeliveryType),
		DeliveryPrice: o.DeliveryPrice,
	}

	env := EventEnvelope[OrderPlaced]{
		EventName:    OrderPlacedName,
		EventVersion: OrderPlacedVersion,
		EventID:      uuid.NewString(),
		Producer:     producer,
		PartitionKey: o.ID,
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", OrderPlacedName, err)
	}
	return p.publishJSON(ctx, OrderPlacedKey, body)
}

func (p *RabbitPublisher) PublishOrderStatusChanged(ctx context.Context, o *order.Order, previous order.Status) error {
	env := EventEnvelope[OrderStatusChanged]{
		EventName:    OrderStatusChangedName,
		EventVersion: OrderStatusChangedVersion,
		EventID:      uuid.NewString(),
		Producer:     producer,
		PartitionKey: o.ID,
		OccurredAt:   time.Now().UTC(),
		Payload: OrderStatusChanged{
			OrderID:        o.ID,
			BuyerID:        o.BuyerID,
			SellerID:       o.SellerID,
			PreviousStatus: string(previous),
			NewStatus:      string(o.Status),
		},
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", OrderStatusChangedName, err)
	}
	return p.publishJSON(ctx, OrderStatusChangedKey, body)
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// orderLines flattens the item snapshot in a stable order.
func orderLines(o *order.Order) []OrderLine {
	lines := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, *order.Order) error { return nil }
func (NopPublisher) PublishOrderStatusChanged(context.Context, *order.Order, order.Status) error {
	return nil
}
func (NopPublisher) Close() error { return nil }

// StatusNotifier adapts a Publisher to order.Notifier. Publish failures
// are logged; a broker outage never blocks a status change.
type StatusNotifier struct {
	Publisher Publisher
	Logger    *log.Logger
}

func (n *StatusNotifier) OrderStatusChanged(ctx context.Context, o order.Order, previous order.Status) {
	if err := n.Publisher.PublishOrderStatusChanged(ctx, &o, previous); err != nil {
		n.Logger.Printf("publish status change for order %s: %v", o.ID, err)
	}
}

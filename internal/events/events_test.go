package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nourtarek555/BuyerMS3/internal/cart"
	"github.com/nourtarek555/BuyerMS3/internal/order"
)

func TestEnvelopeValidate(t *testing.T) {
	env := EventEnvelope[OrderPlaced]{
		EventName:    OrderPlacedName,
		EventVersion: OrderPlacedVersion,
		EventID:      uuid.NewString(),
		Producer:     producer,
		PartitionKey: "o1",
		OccurredAt:   time.Now().UTC(),
	}
	require.NoError(t, env.Validate(OrderPlacedName, OrderPlacedVersion))

	env.EventName = "wrong.event"
	require.Error(t, env.Validate(OrderPlacedName, OrderPlacedVersion))

	env.EventName = OrderPlacedName
	env.PartitionKey = ""
	require.Error(t, env.Validate(OrderPlacedName, OrderPlacedVersion))
}

func TestEnvelopeJSONFieldNames(t *testing.T) {
	env := EventEnvelope[OrderStatusChanged]{
		EventName:    OrderStatusChangedName,
		EventVersion: OrderStatusChangedVersion,
		EventID:      uuid.NewString(),
		Producer:     producer,
		PartitionKey: "o1",
		OccurredAt:   time.Now().UTC(),
		Payload: OrderStatusChanged{
			OrderID:        "o1",
			PreviousStatus: "pending",
			NewStatus:      "accepted",
		},
	}

	body, err := json.Marshal(env)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(body, &asMap))
	for _, field := range []string{"eventName", "eventVersion", "eventId", "producer", "partitionKey", "occurredAt", "payload"} {
		require.Contains(t, asMap, field)
	}

	payload, ok := asMap["payload"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "pending", payload["previousStatus"])
	require.Equal(t, "accepted", payload["newStatus"])
}

func TestOrderLinesStableOrder(t *testing.T) {
	o := &order.Order{
		Items: map[string]cart.Item{
			"p3": {ProductID: "p3", Quantity: 1, UnitPrice: 2},
			"p1": {ProductID: "p1", Quantity: 2, UnitPrice: 5},
			"p2": {ProductID: "p2", Quantity: 3, UnitPrice: 1},
		},
	}

	lines := orderLines(o)
	require.Len(t, lines, 3)
	require.Equal(t, "p1", lines[0].ProductID)
	require.Equal(t, "p2", lines[1].ProductID)
	require.Equal(t, "p3", lines[2].ProductID)
}

package notify

import (
	"testing"
	"time"

	"github.com/example/storefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestActorNotifierCountsEvents(t *testing.T) {
	n, err := NewActorNotifier(zap.NewNop())
	require.NoError(t, err)
	defer n.Stop()

	order := models.Order{
		OrderID: primitive.NewObjectID(),
		Items:   []models.OrderItem{{Title: "Phone", UnitPrice: 10, Quantity: 2}},
		Total:   20,
	}
	n.OrderPlaced("user-1", order)
	n.OrderPlaced("user-1", order)
	now := time.Now()
	order.DeliveredAt = &now
	n.OrderDelivered("user-1", order)

	stats, err := n.Stats(time.Second)
	require.NoError(t, err)
	assert.Equal(t, Stats{Placed: 2, Delivered: 1}, stats)
}

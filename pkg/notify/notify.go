// Package notify publishes order lifecycle events to a protoactor actor that
// logs them. Sends are fire-and-forget; request handlers never wait on it.
package notify

import (
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/storefront/pkg/models"
	"go.uber.org/zap"
)

// Messages
type OrderPlaced struct {
	UserID    string
	OrderID   string
	Total     float64
	ItemCount int
}

type OrderDelivered struct {
	UserID      string
	OrderID     string
	DeliveredAt time.Time
}

type GetStats struct{}

type Stats struct {
	Placed    int
	Delivered int
}

// OrderActor handles order lifecycle notifications
type OrderActor struct {
	logger *zap.Logger
	stats  Stats
}

func (a *OrderActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *OrderPlaced:
		a.stats.Placed++
		a.logger.Info("Order placed",
			zap.String("user_id", msg.UserID),
			zap.String("order_id", msg.OrderID),
			zap.Float64("total", msg.Total),
			zap.Int("item_count", msg.ItemCount))

	case *OrderDelivered:
		a.stats.Delivered++
		a.logger.Info("Order delivered",
			zap.String("user_id", msg.UserID),
			zap.String("order_id", msg.OrderID),
			zap.Time("delivered_at", msg.DeliveredAt))

	case *GetStats:
		ctx.Respond(&Stats{Placed: a.stats.Placed, Delivered: a.stats.Delivered})

	case *actor.Started:
		a.logger.Info("Order notifier started")

	case *actor.Stopped:
		a.logger.Info("Order notifier stopped")
	}
}

// ActorNotifier owns the actor system and the order actor's PID.
type ActorNotifier struct {
	system *actor.ActorSystem
	pid    *actor.PID
}

func NewActorNotifier(logger *zap.Logger) (*ActorNotifier, error) {
	system := actor.NewActorSystem()

	props := actor.PropsFromProducer(func() actor.Actor {
		return &OrderActor{logger: logger.Named("order-notifier")}
	})
	pid, err := system.Root.SpawnNamed(props, "order-notifier")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn order notifier: %w", err)
	}

	return &ActorNotifier{system: system, pid: pid}, nil
}

func (n *ActorNotifier) OrderPlaced(userID string, order models.Order) {
	n.system.Root.Send(n.pid, &OrderPlaced{
		UserID:    userID,
		OrderID:   order.OrderID.Hex(),
		Total:     order.Total,
		ItemCount: len(order.Items),
	})
}

func (n *ActorNotifier) OrderDelivered(userID string, order models.Order) {
	deliveredAt := time.Now()
	if order.DeliveredAt != nil {
		deliveredAt = *order.DeliveredAt
	}
	n.system.Root.Send(n.pid, &OrderDelivered{
		UserID:      userID,
		OrderID:     order.OrderID.Hex(),
		DeliveredAt: deliveredAt,
	})
}

// Stats asks the actor for its counters. Messages sent before the call are
// processed first because the mailbox is ordered.
func (n *ActorNotifier) Stats(timeout time.Duration) (Stats, error) {
	res, err := n.system.Root.RequestFuture(n.pid, &GetStats{}, timeout).Result()
	if err != nil {
		return Stats{}, err
	}
	stats, ok := res.(*Stats)
	if !ok {
		return Stats{}, fmt.Errorf("unexpected stats response %T", res)
	}
	return *stats, nil
}

func (n *ActorNotifier) Stop() error {
	return n.system.Root.StopFuture(n.pid).Wait()
}

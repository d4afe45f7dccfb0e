package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
)

type Order struct {
	OrderID     primitive.ObjectID `bson:"orderId" json:"orderId"`
	Items       []OrderItem        `bson:"items" json:"items"`
	Total       float64            `bson:"total" json:"total"`
	OrderedAt   time.Time          `bson:"orderedAt" json:"orderedAt"`
	DeliveredAt *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Title     string             `bson:"title" json:"title"`
	UnitPrice float64            `bson:"unitPrice" json:"unitPrice"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

func (o *Order) Status() OrderStatus {
	if o.DeliveredAt != nil {
		return OrderStatusDelivered
	}
	return OrderStatusPending
}

// OrderTotal sums unit price times quantity without float drift.
func OrderTotal(items []OrderItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}

// PlaceOrder snapshots the resolved cart into a new pending order and empties
// the cart. Callers check that items is non-empty.
func (u *User) PlaceOrder(items []CartItem, now time.Time) Order {
	order := Order{
		OrderID:   primitive.NewObjectID(),
		Items:     make([]OrderItem, 0, len(items)),
		OrderedAt: now,
	}
	for _, it := range items {
		order.Items = append(order.Items, OrderItem{
			ProductID: it.Product.ID,
			Title:     it.Product.Title,
			UnitPrice: it.Product.EffectivePrice(),
			Quantity:  it.Quantity,
		})
	}
	order.Total = OrderTotal(order.Items)

	u.PendingOrders = append(u.PendingOrders, order)
	u.Cart = []CartEntry{}
	return order
}

// FindOrder looks up an order in either list.
func (u *User) FindOrder(orderID primitive.ObjectID) (*Order, OrderStatus, bool) {
	for i := range u.PendingOrders {
		if u.PendingOrders[i].OrderID == orderID {
			return &u.PendingOrders[i], OrderStatusPending, true
		}
	}
	for i := range u.DeliveredOrders {
		if u.DeliveredOrders[i].OrderID == orderID {
			return &u.DeliveredOrders[i], OrderStatusDelivered, true
		}
	}
	return nil, "", false
}

// DeliverOrder moves a pending order to the delivered list. It reports false
// when no pending order has that id.
func (u *User) DeliverOrder(orderID primitive.ObjectID, now time.Time) (Order, bool) {
	for i, o := range u.PendingOrders {
		if o.OrderID != orderID {
			continue
		}
		delivered := now
		o.DeliveredAt = &delivered
		u.PendingOrders = append(u.PendingOrders[:i:i], u.PendingOrders[i+1:]...)
		u.DeliveredOrders = append(u.DeliveredOrders, o)
		return o, true
	}
	return Order{}, false
}

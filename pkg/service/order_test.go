package service

import (
	"context"
	"errors"
	"testing"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCheckoutMovesCartIntoPendingOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.signup(t, "Ann", "ann@example.com")
	phone := env.product(t, "Phone", 100, func(p *models.Product) { p.DiscountPrice = floatPtr(80) })
	buds := env.product(t, "Buds", 19.99)

	_, err := env.cart.Add(ctx, uid, phone.ID.Hex(), 2)
	require.NoError(t, err)
	_, err = env.cart.Add(ctx, uid, buds.ID.Hex(), 3)
	require.NoError(t, err)

	order, err := env.orders.Checkout(ctx, uid)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 80.0, order.Items[0].UnitPrice)
	assert.Equal(t, 219.97, order.Total)
	assert.Nil(t, order.DeliveredAt)

	u, err := env.store.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, u.Cart)
	require.Len(t, u.PendingOrders, 1)
	assert.Equal(t, order.OrderID, u.PendingOrders[0].OrderID)

	require.Len(t, env.notifier.placed, 1)
	logs, err := env.store.GetAuditLogs(ctx, order.OrderID.Hex(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "checkout", logs[0].Action)

	views, err := env.orders.ListOrders(ctx, uid)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.OrderStatusPending, views[0].Status)
	assert.Empty(t, views[0].CustomerEmail)
}

func TestCheckoutRejectsUnorderableCarts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.signup(t, "Ann", "ann@example.com")

	_, err := env.orders.Checkout(ctx, uid)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	gone := env.product(t, "Gone", 10)
	_, err = env.cart.Add(ctx, uid, gone.ID.Hex(), 1)
	require.NoError(t, err)
	require.NoError(t, env.store.DeleteProduct(ctx, gone.ID))
	_, err = env.orders.Checkout(ctx, uid)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	sold := env.product(t, "Sold out", 10, func(p *models.Product) { p.InStock = false })
	_, err = env.cart.Add(ctx, uid, sold.ID.Hex(), 1)
	require.NoError(t, err)
	_, err = env.orders.Checkout(ctx, uid)
	require.Error(t, err)
	assert.Equal(t, "Sold out is out of stock", errs.Message(err))

	u, err := env.store.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, u.Cart, 2)
	assert.Empty(t, u.PendingOrders)
	assert.Empty(t, env.notifier.placed)
}

func TestCheckoutSkipsDanglingEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.signup(t, "Ann", "ann@example.com")
	phone := env.product(t, "Phone", 100)
	gone := env.product(t, "Gone", 10)

	_, err := env.cart.Add(ctx, uid, phone.ID.Hex(), 1)
	require.NoError(t, err)
	_, err = env.cart.Add(ctx, uid, gone.ID.Hex(), 1)
	require.NoError(t, err)
	require.NoError(t, env.store.DeleteProduct(ctx, gone.ID))

	order, err := env.orders.Checkout(ctx, uid)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 100.0, order.Total)

	u, err := env.store.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, u.Cart)
}

func TestMarkDelivered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.signup(t, "Ann", "ann@example.com")
	phone := env.product(t, "Phone", 100)

	_, err := env.cart.Add(ctx, uid, phone.ID.Hex(), 1)
	require.NoError(t, err)
	order, err := env.orders.Checkout(ctx, uid)
	require.NoError(t, err)

	delivered, err := env.orders.MarkDelivered(ctx, uid.Hex(), order.OrderID.Hex())
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)

	u, err := env.store.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, u.PendingOrders)
	require.Len(t, u.DeliveredOrders, 1)
	assert.Equal(t, order.OrderID, u.DeliveredOrders[0].OrderID)
	assert.Len(t, env.notifier.delivered, 1)

	_, err = env.orders.MarkDelivered(ctx, uid.Hex(), order.OrderID.Hex())
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = env.orders.MarkDelivered(ctx, uid.Hex(), primitive.NewObjectID().Hex())
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = env.orders.MarkDelivered(ctx, primitive.NewObjectID().Hex(), order.OrderID.Hex())
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = env.orders.MarkDelivered(ctx, "bad", "bad")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestListAllOrdersPendingFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.signup(t, "Ann", "ann@example.com")
	bob := env.signup(t, "Bob", "bob@example.com")
	phone := env.product(t, "Phone", 100)

	place := func(uid primitive.ObjectID) *models.Order {
		_, err := env.cart.Add(ctx, uid, phone.ID.Hex(), 1)
		require.NoError(t, err)
		o, err := env.orders.Checkout(ctx, uid)
		require.NoError(t, err)
		return o
	}
	annOrder := place(ann)
	bobOrder := place(bob)
	_, err := env.orders.MarkDelivered(ctx, ann.Hex(), annOrder.OrderID.Hex())
	require.NoError(t, err)

	views, err := env.orders.ListAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, bobOrder.OrderID, views[0].OrderID)
	assert.Equal(t, models.OrderStatusPending, views[0].Status)
	assert.Equal(t, "bob@example.com", views[0].CustomerEmail)
	assert.Equal(t, annOrder.OrderID, views[1].OrderID)
	assert.Equal(t, models.OrderStatusDelivered, views[1].Status)
	assert.Equal(t, "Ann", views[1].CustomerName)
}

package service

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderView is an order together with its state and, in admin listings, its customer.
type OrderView struct {
	models.Order
	Status        models.OrderStatus `json:"status"`
	UserID        string             `json:"userId,omitempty"`
	CustomerName  string             `json:"customerName,omitempty"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
}

type OrderService struct {
	users    repository.UserStore
	products repository.ProductStore
	notifier OrderNotifier
	audit    *auditor
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService wires the order flow. notifier and audit may be nil.
func NewOrderService(users repository.UserStore, products repository.ProductStore, audit repository.AuditStore, notifier OrderNotifier, logger *zap.Logger) *OrderService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	logger = logger.Named("orders")
	return &OrderService{
		users:    users,
		products: products,
		notifier: notifier,
		audit:    &auditor{store: audit, service: "orders", logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// Checkout turns the resolvable part of the cart into a pending order and
// empties the cart in the same write.
func (s *OrderService) Checkout(ctx context.Context, userID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	_, err := mutateUser(ctx, s.users, userID, func(u *models.User) (bool, error) {
		products, err := s.products.GetProducts(ctx, u.CartProductIDs())
		if err != nil {
			return false, internal(err, "load cart products")
		}
		items := u.ResolveCart(products)
		if len(items) == 0 {
			return false, errs.Validationf("Cart is empty")
		}
		for _, it := range items {
			if !it.Product.InStock {
				return false, errs.Validationf("%s is out of stock", it.Product.Title)
			}
		}
		order = u.PlaceOrder(items, s.now())
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("user_id", userID.Hex()),
		zap.String("order_id", order.OrderID.Hex()),
		zap.Float64("total", order.Total))
	s.notifier.OrderPlaced(userID.Hex(), order)
	s.audit.record(ctx, "checkout", order.OrderID.Hex(), bson.M{
		"user_id": userID.Hex(),
		"total":   order.Total,
		"items":   len(order.Items),
	})
	return &order, nil
}

// ListOrders returns the customer's pending orders followed by delivered ones.
func (s *OrderService) ListOrders(ctx context.Context, userID primitive.ObjectID) ([]OrderView, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, internal(err, "load user")
	}
	return userOrders(u, false), nil
}

// MarkDelivered moves a pending order to the delivered list.
func (s *OrderService) MarkDelivered(ctx context.Context, userID, orderID string) (*models.Order, error) {
	uid, err := parseID(userID, "User")
	if err != nil {
		return nil, err
	}
	oid, err := parseID(orderID, "Order")
	if err != nil {
		return nil, err
	}

	var delivered models.Order
	_, err = mutateUser(ctx, s.users, uid, func(u *models.User) (bool, error) {
		_, status, ok := u.FindOrder(oid)
		if !ok {
			return false, errs.NotFoundf("Order not found")
		}
		if status == models.OrderStatusDelivered {
			return false, errs.Validationf("Order already delivered")
		}
		delivered, _ = u.DeliverOrder(oid, s.now())
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order delivered",
		zap.String("user_id", userID),
		zap.String("order_id", orderID))
	s.notifier.OrderDelivered(userID, delivered)
	s.audit.record(ctx, "deliver", orderID, bson.M{"user_id": userID})
	return &delivered, nil
}

// ListAllOrders flattens every customer's orders, pending ones first.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]OrderView, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, internal(err, "list users")
	}

	var pending, delivered []OrderView
	for _, u := range users {
		for _, v := range userOrders(u, true) {
			if v.Status == models.OrderStatusPending {
				pending = append(pending, v)
			} else {
				delivered = append(delivered, v)
			}
		}
	}
	return append(append(make([]OrderView, 0, len(pending)+len(delivered)), pending...), delivered...), nil
}

func userOrders(u *models.User, withCustomer bool) []OrderView {
	views := make([]OrderView, 0, len(u.PendingOrders)+len(u.DeliveredOrders))
	add := func(o models.Order, status models.OrderStatus) {
		v := OrderView{Order: o, Status: status}
		if withCustomer {
			v.UserID = u.ID.Hex()
			v.CustomerName = u.Name
			v.CustomerEmail = u.Email
		}
		views = append(views, v)
	}
	for _, o := range u.PendingOrders {
		add(o, models.OrderStatusPending)
	}
	for _, o := range u.DeliveredOrders {
		add(o, models.OrderStatusDelivered)
	}
	return views
}

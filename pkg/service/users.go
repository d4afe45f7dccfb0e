package service

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnknownProduct names a cart line whose product no longer exists.
const UnknownProduct = "Unknown"

type LineSummary struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type OrderSummary struct {
	OrderID     string        `json:"orderId"`
	Date        time.Time     `json:"date"`
	DeliveredAt *time.Time    `json:"deliveredAt,omitempty"`
	Products    []LineSummary `json:"products"`
	Total       float64       `json:"total"`
}

// UserSummary is a customer as shown in the admin user list.
type UserSummary struct {
	ID             string         `json:"_id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	CreatedAt      time.Time      `json:"createdAt"`
	Cart           []LineSummary  `json:"cart"`
	PendingOrders  []OrderSummary `json:"pendingOrders"`
	PreviousOrders []OrderSummary `json:"previousOrders"`
}

type UserAdminService struct {
	users    repository.UserStore
	products repository.ProductStore
}

func NewUserAdminService(users repository.UserStore, products repository.ProductStore) *UserAdminService {
	return &UserAdminService{users: users, products: products}
}

// List returns every user with cart lines resolved against the catalog. Orders
// are described from their own snapshots.
func (s *UserAdminService) List(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, internal(err, "list users")
	}

	var ids []primitive.ObjectID
	for _, u := range users {
		ids = append(ids, u.CartProductIDs()...)
	}
	products, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		return nil, internal(err, "load cart products")
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{
			ID:             u.ID.Hex(),
			Name:           u.Name,
			Email:          u.Email,
			CreatedAt:      u.CreatedAt,
			Cart:           cartLines(u.Cart, products),
			PendingOrders:  orderSummaries(u.PendingOrders),
			PreviousOrders: orderSummaries(u.DeliveredOrders),
		})
	}
	return out, nil
}

func cartLines(cart []models.CartEntry, products map[primitive.ObjectID]*models.Product) []LineSummary {
	lines := make([]LineSummary, 0, len(cart))
	for _, e := range cart {
		line := LineSummary{ProductID: e.Product.Hex(), Name: UnknownProduct, Quantity: e.Quantity}
		if p, ok := products[e.Product]; ok {
			line.Name = p.Title
			line.Price = p.EffectivePrice()
		}
		lines = append(lines, line)
	}
	return lines
}

func orderSummaries(orders []models.Order) []OrderSummary {
	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		s := OrderSummary{
			OrderID:     o.OrderID.Hex(),
			Date:        o.OrderedAt,
			DeliveredAt: o.DeliveredAt,
			Products:    make([]LineSummary, 0, len(o.Items)),
			Total:       o.Total,
		}
		for _, it := range o.Items {
			name := it.Title
			if name == "" {
				name = UnknownProduct
			}
			s.Products = append(s.Products, LineSummary{
				ProductID: it.ProductID.Hex(),
				Name:      name,
				Price:     it.UnitPrice,
				Quantity:  it.Quantity,
			})
		}
		out = append(out, s)
	}
	return out
}

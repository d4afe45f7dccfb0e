package service

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CartService struct {
	users    repository.UserStore
	products repository.ProductStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewCartService(users repository.UserStore, products repository.ProductStore, logger *zap.Logger) *CartService {
	return &CartService{
		users:    users,
		products: products,
		logger:   logger.Named("cart"),
		now:      time.Now,
	}
}

// Add puts quantity units of productID into the cart, merging with an existing
// entry for the same product. Stock is not checked here.
func (s *CartService) Add(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, errs.Validationf("Quantity must be at least 1")
	}
	pid, err := parseID(productID, "Product")
	if err != nil {
		return nil, err
	}
	// GetProducts is never served from the read cache, so a product deleted
	// through a tier without the cache cannot be added from a stale copy.
	found, err := s.products.GetProducts(ctx, []primitive.ObjectID{pid})
	if err != nil {
		return nil, internal(err, "load product")
	}
	p, ok := found[pid]
	if !ok {
		return nil, errs.NotFoundf("Product not found")
	}

	u, err := mutateUser(ctx, s.users, userID, func(u *models.User) (bool, error) {
		if !u.AddToCart(p, quantity, s.now()) {
			return false, errs.Validationf("Quantity is too large")
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Added to cart",
		zap.String("user_id", userID.Hex()),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return s.resolve(ctx, u)
}

// List returns the cart joined with live products. Dangling entries are omitted.
func (s *CartService) List(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, internal(err, "load user")
	}
	return s.resolve(ctx, u)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID primitive.ObjectID, productID string, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, errs.Validationf("Quantity must be at least 1")
	}
	pid, err := parseID(productID, "Product")
	if err != nil {
		return nil, err
	}

	u, err := mutateUser(ctx, s.users, userID, func(u *models.User) (bool, error) {
		if !u.SetCartQuantity(pid, quantity) {
			return false, errs.NotFoundf("Product not found in cart")
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, u)
}

// Remove drops every entry for productID. Removing an absent product succeeds.
func (s *CartService) Remove(ctx context.Context, userID primitive.ObjectID, productID string) ([]models.CartItem, error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return s.List(ctx, userID)
	}

	u, err := mutateUser(ctx, s.users, userID, func(u *models.User) (bool, error) {
		return u.RemoveFromCart(pid), nil
	})
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, u)
}

func (s *CartService) resolve(ctx context.Context, u *models.User) ([]models.CartItem, error) {
	products, err := s.products.GetProducts(ctx, u.CartProductIDs())
	if err != nil {
		return nil, internal(err, "load cart products")
	}
	return u.ResolveCart(products), nil
}

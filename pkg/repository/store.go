package repository

import (
	"context"
	"errors"

	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrVersionConflict is returned by SaveUser when the stored document changed
// since it was read.
var ErrVersionConflict = errors.New("user document was modified concurrently")

type UserStore interface {
	// CreateUser inserts u and sets its ID and Version. A taken email is a Conflict.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// SaveUser replaces the whole document if its version still matches u.Version,
	// then bumps u.Version.
	SaveUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// GetProducts returns the products that exist among ids. Missing ids are absent
	// from the map rather than an error.
	GetProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, id primitive.ObjectID, patch *models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}

type SiteInfoStore interface {
	// GetSiteInfo returns the singleton, creating it with defaults when missing.
	GetSiteInfo(ctx context.Context) (*models.SiteInfo, error)
	UpdateSiteInfo(ctx context.Context, patch *models.SiteInfoPatch) (*models.SiteInfo, error)
}

type AuditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*models.AuditLog, error)
}

// Store is everything the services need from the database.
type Store interface {
	UserStore
	ProductStore
	SiteInfoStore
	AuditStore
}

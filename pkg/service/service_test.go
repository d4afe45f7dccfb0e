package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	mu        sync.Mutex
	placed    []models.Order
	delivered []models.Order
}

func (n *recordingNotifier) OrderPlaced(userID string, order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order)
}

func (n *recordingNotifier) OrderDelivered(userID string, order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, order)
}

type testEnv struct {
	store    *repository.MemoryRepository
	fs       afero.Fs
	notifier *recordingNotifier
	auth     *AuthService
	cart     *CartService
	orders   *OrderService
	catalog  *CatalogService
	site     *SiteInfoService
	users    *UserAdminService
}

var testAuthConfig = config.AuthConfig{
	JWTSecret:  "test-secret",
	TokenTTL:   time.Hour,
	BcryptCost: bcrypt.MinCost,
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryRepository()
	fs := afero.NewMemMapFs()
	notifier := &recordingNotifier{}
	logger := zap.NewNop()

	return &testEnv{
		store:    store,
		fs:       fs,
		notifier: notifier,
		auth:     NewAuthService(store, testAuthConfig, logger),
		cart:     NewCartService(store, store, logger),
		orders:   NewOrderService(store, store, store, notifier, logger),
		catalog:  NewCatalogService(store, repository.NewImageStore(fs, "/uploads"), store, 4, logger),
		site:     NewSiteInfoService(store, store, logger),
		users:    NewUserAdminService(store, store),
	}
}

func (e *testEnv) signup(t *testing.T, name, email string) primitive.ObjectID {
	t.Helper()
	res, err := e.auth.Signup(context.Background(), SignupInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	id, err := primitive.ObjectIDFromHex(res.User.ID)
	require.NoError(t, err)
	return id
}

func (e *testEnv) product(t *testing.T, title string, price float64, mutate ...func(p *models.Product)) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Price: price, Category: "Phones", InStock: true}
	for _, m := range mutate {
		m(p)
	}
	require.NoError(t, e.store.CreateProduct(context.Background(), p))
	return p
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

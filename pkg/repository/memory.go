package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository implements Store in process memory with the same semantics
// as MongoRepository. Values are copied on the way in and out.
type MemoryRepository struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	emails   map[string]primitive.ObjectID
	products map[primitive.ObjectID]*models.Product
	order    []primitive.ObjectID
	siteInfo *models.SiteInfo
	audit    []*models.AuditLog
}

var _ Store = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[primitive.ObjectID]*models.User),
		emails:   make(map[string]primitive.ObjectID),
		products: make(map[primitive.ObjectID]*models.Product),
	}
}

func (m *MemoryRepository) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := models.NormalizeEmail(u.Email)
	if _, ok := m.emails[email]; ok {
		return errs.Conflictf("Email already exists")
	}

	now := time.Now()
	u.ID = primitive.NewObjectID()
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Version = 1
	if u.Cart == nil {
		u.Cart = []models.CartEntry{}
	}
	if u.PendingOrders == nil {
		u.PendingOrders = []models.Order{}
	}
	if u.DeliveredOrders == nil {
		u.DeliveredOrders = []models.Order{}
	}

	m.users[u.ID] = u.Clone()
	m.emails[email] = u.ID
	return nil
}

func (m *MemoryRepository) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, errs.NotFoundf("user not found")
	}
	return u.Clone(), nil
}

func (m *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.emails[models.NormalizeEmail(email)]
	if !ok {
		return nil, errs.NotFoundf("user not found")
	}
	return m.users[id].Clone(), nil
}

func (m *MemoryRepository) SaveUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[u.ID]
	if !ok || stored.Version != u.Version {
		return ErrVersionConflict
	}

	next := u.Clone()
	next.Version = u.Version + 1
	next.UpdatedAt = time.Now()
	m.users[u.ID] = next

	u.Version = next.Version
	u.UpdatedAt = next.UpdatedAt
	return nil
}

func (m *MemoryRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	if p.DiscountPrice != nil {
		d := *p.DiscountPrice
		c.DiscountPrice = &d
	}
	return &c
}

func (m *MemoryRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.SchemaVersion = models.ProductSchemaVersion
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}

	m.products[p.ID] = cloneProduct(p)
	m.order = append(m.order, p.ID)
	return nil
}

func (m *MemoryRepository) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, errs.NotFoundf("product not found")
	}
	return cloneProduct(p), nil
}

func (m *MemoryRepository) GetProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := make(map[primitive.ObjectID]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			found[id] = cloneProduct(p)
		}
	}
	return found, nil
}

func matchesFilter(p *models.Product, f models.ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.Featured && !p.Featured {
		return false
	}
	if f.HotDeals && !p.HotDeals {
		return false
	}
	return true
}

func (m *MemoryRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	products := []*models.Product{}
	for _, id := range m.order {
		p, ok := m.products[id]
		if !ok || !matchesFilter(p, filter) {
			continue
		}
		products = append(products, cloneProduct(p))
	}
	if filter.NewestFirst {
		for i, j := 0, len(products)-1; i < j; i, j = i+1, j-1 {
			products[i], products[j] = products[j], products[i]
		}
	}
	return products, nil
}

func (m *MemoryRepository) UpdateProduct(ctx context.Context, id primitive.ObjectID, patch *models.ProductPatch) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, errs.NotFoundf("product not found")
	}
	patch.Apply(p)
	p.UpdatedAt = time.Now()
	return cloneProduct(p), nil
}

func (m *MemoryRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return errs.NotFoundf("product not found")
	}
	delete(m.products, id)
	for i, pid := range m.order {
		if pid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneSiteInfo(s *models.SiteInfo) *models.SiteInfo {
	c := *s
	c.Categories = append([]string{}, s.Categories...)
	return &c
}

func (m *MemoryRepository) ensureSiteInfo() *models.SiteInfo {
	if m.siteInfo == nil {
		m.siteInfo = models.DefaultSiteInfo(time.Now())
	}
	return m.siteInfo
}

func (m *MemoryRepository) GetSiteInfo(ctx context.Context) (*models.SiteInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return cloneSiteInfo(m.ensureSiteInfo()), nil
}

func (m *MemoryRepository) UpdateSiteInfo(ctx context.Context, patch *models.SiteInfoPatch) (*models.SiteInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := m.ensureSiteInfo()
	patch.Apply(info)
	info.UpdatedAt = time.Now()
	return cloneSiteInfo(info), nil
}

func (m *MemoryRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now()
	c := *log
	m.audit = append(m.audit, &c)
	return nil
}

func (m *MemoryRepository) GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var logs []*models.AuditLog
	for i := len(m.audit) - 1; i >= 0; i-- {
		if limit > 0 && int64(len(logs)) >= limit {
			break
		}
		if m.audit[i].EntityID == entityID {
			c := *m.audit[i]
			logs = append(logs, &c)
		}
	}
	return logs, nil
}

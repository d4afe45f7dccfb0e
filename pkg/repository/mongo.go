package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection     = "users"
	productsCollection  = "products"
	siteInfoCollection  = "siteinfos"
	auditLogsCollection = "audit_logs"
)

type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

var _ Store = (*MongoRepository)(nil)

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique email index and the catalog sort index.
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "create users.email index")
	}

	_, err = m.products().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "create products indexes")
	}
	return nil
}

func (m *MongoRepository) users() *mongo.Collection {
	return m.database.Collection(usersCollection)
}

func (m *MongoRepository) products() *mongo.Collection {
	return m.database.Collection(productsCollection)
}

func (m *MongoRepository) siteInfo() *mongo.Collection {
	return m.database.Collection(siteInfoCollection)
}

func (m *MongoRepository) auditLogs() *mongo.Collection {
	return m.database.Collection(auditLogsCollection)
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.NotFoundf("%s not found", what)
	}
	return errors.Wrapf(err, "find %s", what)
}

// Users

func (m *MongoRepository) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now()
	u.ID = primitive.NewObjectID()
	u.Email = models.NormalizeEmail(u.Email)
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

	if _, err := m.users().InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Conflictf("Email already exists")
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (m *MongoRepository) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := m.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &u, nil
}

func (m *MongoRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := m.users().FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&u); err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &u, nil
}

func (m *MongoRepository) SaveUser(ctx context.Context, u *models.User) error {
	next := u.Clone()
	next.Version = u.Version + 1
	next.UpdatedAt = time.Now()

	res, err := m.users().ReplaceOne(ctx, bson.M{"_id": u.ID, "version": u.Version}, next)
	if err != nil {
		return errors.Wrap(err, "replace user")
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}

	u.Version = next.Version
	u.UpdatedAt = next.UpdatedAt
	return nil
}

func (m *MongoRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.users().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find users")
	}
	defer cursor.Close(ctx)

	users := []*models.User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode users")
	}
	return users, nil
}

// Products

func (m *MongoRepository) CreateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.SchemaVersion = models.ProductSchemaVersion
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}

	if _, err := m.products().InsertOne(ctx, p); err != nil {
		return errors.Wrap(err, "insert product")
	}
	return nil
}

func (m *MongoRepository) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := m.products().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFoundOr(err, "product")
	}
	return &p, nil
}

func (m *MongoRepository) GetProducts(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	found := make(map[primitive.ObjectID]*models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := m.products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

func productQuery(f models.ProductFilter) bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Search != "" {
		q["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	if f.Featured {
		q["featured"] = true
	}
	if f.HotDeals {
		q["hotDeals"] = true
	}
	return q
}

func (m *MongoRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	opts := options.Find()
	if filter.NewestFirst {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	} else {
		opts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}

	cursor, err := m.products().Find(ctx, productQuery(filter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	defer cursor.Close(ctx)

	products := []*models.Product{}
	if err = cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func (m *MongoRepository) UpdateProduct(ctx context.Context, id primitive.ObjectID, patch *models.ProductPatch) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Product
	err := m.products().FindOneAndUpdate(ctx, bson.M{"_id": id}, patch.Update(time.Now()), opts).Decode(&p)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	return &p, nil
}

func (m *MongoRepository) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if res.DeletedCount == 0 {
		return errs.NotFoundf("product not found")
	}
	return nil
}

// Site info

func siteInfoDefaults(now time.Time, skip bson.M) bson.M {
	d := models.DefaultSiteInfo(now)
	onInsert := bson.M{
		"siteName":     d.SiteName,
		"categories":   d.Categories,
		"contactEmail": d.ContactEmail,
		"contactPhone": d.ContactPhone,
		"address":      d.Address,
		"socialLinks":  d.SocialLinks,
		"about":        d.About,
		"createdAt":    now,
	}
	// mongo rejects an update that names the same path in $set and $setOnInsert.
	for k := range skip {
		delete(onInsert, k)
	}
	return onInsert
}

func (m *MongoRepository) GetSiteInfo(ctx context.Context) (*models.SiteInfo, error) {
	now := time.Now()
	update := bson.M{
		"$setOnInsert": func() bson.M {
			d := siteInfoDefaults(now, nil)
			d["updatedAt"] = now
			return d
		}(),
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var info models.SiteInfo
	err := m.siteInfo().FindOneAndUpdate(ctx, bson.M{"_id": models.SiteInfoID}, update, opts).Decode(&info)
	if mongo.IsDuplicateKeyError(err) {
		// lost the insert race; the document exists now
		err = m.siteInfo().FindOne(ctx, bson.M{"_id": models.SiteInfoID}).Decode(&info)
	}
	if err != nil {
		return nil, errors.Wrap(err, "upsert site info")
	}
	return &info, nil
}

func (m *MongoRepository) UpdateSiteInfo(ctx context.Context, patch *models.SiteInfoPatch) (*models.SiteInfo, error) {
	now := time.Now()
	set := patch.SetFields()
	set["updatedAt"] = now
	update := bson.M{
		"$set":         set,
		"$setOnInsert": siteInfoDefaults(now, set),
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var info models.SiteInfo
	err := m.siteInfo().FindOneAndUpdate(ctx, bson.M{"_id": models.SiteInfoID}, update, opts).Decode(&info)
	if err != nil {
		return nil, errors.Wrap(err, "update site info")
	}
	return &info, nil
}

// Audit logs

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	log.CreatedAt = time.Now()
	_, err := m.auditLogs().InsertOne(ctx, log)
	return err
}

func (m *MongoRepository) GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*models.AuditLog, error) {
	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := m.auditLogs().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*models.AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ImageStorage stores uploaded product images and returns their URLs.
type ImageStorage interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(url string) error
}

// Upload is one uploaded file.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProductInput is the JSON body of a product creation.
type ProductInput struct {
	Title         string   `json:"title"`
	Price         *float64 `json:"price"`
	DiscountPrice *float64 `json:"discountPrice"`
	Description   string   `json:"description"`
	InStock       *bool    `json:"inStock"`
	Featured      bool     `json:"featured"`
	HotDeals      bool     `json:"hotDeals"`
	NewProduct    bool     `json:"newProduct"`
	Category      string   `json:"category"`
	CoverImage    string   `json:"coverImage"`
	Images        []string `json:"images"`
}

// ProductForm is the multipart variant of ProductInput. Every value arrives as text.
type ProductForm struct {
	Title         string `form:"title"`
	Price         string `form:"price"`
	DiscountPrice string `form:"discountPrice"`
	Description   string `form:"description"`
	InStock       string `form:"inStock"`
	Featured      string `form:"featured"`
	HotDeals      string `form:"hotDeals"`
	NewProduct    string `form:"newProduct"`
	Category      string `form:"category"`
}

// Input converts the form values. Empty values count as absent.
func (f *ProductForm) Input() (ProductInput, error) {
	in := ProductInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
	}

	var err error
	if in.Price, err = formFloat("price", f.Price); err != nil {
		return in, err
	}
	if in.DiscountPrice, err = formFloat("discountPrice", f.DiscountPrice); err != nil {
		return in, err
	}
	if in.InStock, err = formBool("inStock", f.InStock); err != nil {
		return in, err
	}
	flags := []struct {
		name  string
		value string
		dst   *bool
	}{
		{"featured", f.Featured, &in.Featured},
		{"hotDeals", f.HotDeals, &in.HotDeals},
		{"newProduct", f.NewProduct, &in.NewProduct},
	}
	for _, fl := range flags {
		v, err := formBool(fl.name, fl.value)
		if err != nil {
			return in, err
		}
		if v != nil {
			*fl.dst = *v
		}
	}
	return in, nil
}

func formFloat(name, value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := cast.ToFloat64E(value)
	if err != nil || !finite(f) {
		return nil, errs.Validationf("%s must be a number", name)
	}
	return &f, nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func formBool(name, value string) (*bool, error) {
	value = strings.TrimSpace(value)
	switch value {
	case "":
		return nil, nil
	case "on":
		b := true
		return &b, nil
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return nil, errs.Validationf("%s must be true or false", name)
	}
	return &b, nil
}

type CatalogService struct {
	products  repository.ProductStore
	images    ImageStorage
	maxImages int
	audit     *auditor
	logger    *zap.Logger
}

// NewCatalogService builds the catalog. images may be nil on the shop tier,
// which never writes.
func NewCatalogService(products repository.ProductStore, images ImageStorage, audit repository.AuditStore, maxImages int, logger *zap.Logger) *CatalogService {
	logger = logger.Named("catalog")
	return &CatalogService{
		products:  products,
		images:    images,
		maxImages: maxImages,
		audit:     &auditor{store: audit, service: "catalog", logger: logger},
		logger:    logger,
	}
}

// List returns products in the given category whose title contains search.
// An empty category or "All" matches every category.
func (s *CatalogService) List(ctx context.Context, category, search string) ([]*models.Product, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, "All") {
		category = ""
	}
	return s.list(ctx, models.ProductFilter{Category: category, Search: strings.TrimSpace(search)})
}

func (s *CatalogService) Featured(ctx context.Context) ([]*models.Product, error) {
	return s.list(ctx, models.ProductFilter{Featured: true})
}

func (s *CatalogService) HotDeals(ctx context.Context) ([]*models.Product, error) {
	return s.list(ctx, models.ProductFilter{HotDeals: true})
}

// ListAll is the admin listing, newest first.
func (s *CatalogService) ListAll(ctx context.Context) ([]*models.Product, error) {
	return s.list(ctx, models.ProductFilter{NewestFirst: true})
}

func (s *CatalogService) list(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	products, err := s.products.ListProducts(ctx, filter)
	if err != nil {
		return nil, internal(err, "list products")
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	pid, err := parseID(id, "Product")
	if err != nil {
		return nil, err
	}
	p, err := s.products.GetProduct(ctx, pid)
	if err != nil {
		return nil, internal(err, "load product")
	}
	return p, nil
}

func validateProduct(p *models.Product) error {
	if !finite(p.Price) {
		return errs.Validationf("price must be a number")
	}
	if p.DiscountPrice != nil && !finite(*p.DiscountPrice) {
		return errs.Validationf("discountPrice must be a number")
	}
	if err := validateStruct(p); err != nil {
		return err
	}
	if p.DiscountPrice != nil && *p.DiscountPrice >= p.Price {
		return errs.Validationf("discountPrice must be lower than price")
	}
	return nil
}

// Create validates the input, stores the uploaded images and inserts the product.
// Images stored for a product that could not be inserted are removed again.
func (s *CatalogService) Create(ctx context.Context, in ProductInput, cover *Upload, gallery []Upload) (*models.Product, error) {
	if in.Price == nil {
		return nil, errs.Validationf("price is required")
	}
	p := &models.Product{
		Title:         strings.TrimSpace(in.Title),
		Price:         *in.Price,
		DiscountPrice: in.DiscountPrice,
		Description:   in.Description,
		InStock:       true,
		Featured:      in.Featured,
		HotDeals:      in.HotDeals,
		NewProduct:    in.NewProduct,
		Category:      strings.TrimSpace(in.Category),
		CoverImage:    in.CoverImage,
		Images:        append([]string{}, in.Images...),
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if s.maxImages > 0 && len(p.Images)+len(gallery) > s.maxImages {
		return nil, errs.Validationf("at most %d images are allowed", s.maxImages)
	}

	saved, err := s.storeUploads(ctx, p, cover, gallery)
	if err != nil {
		return nil, err
	}
	if err := s.products.CreateProduct(ctx, p); err != nil {
		s.removeImages(saved)
		return nil, internal(err, "create product")
	}

	s.logger.Info("Product created", zap.String("product_id", p.ID.Hex()), zap.String("title", p.Title))
	s.audit.record(ctx, "create", p.ID.Hex(), bson.M{"title": p.Title, "price": p.Price})
	return p, nil
}

func (s *CatalogService) storeUploads(ctx context.Context, p *models.Product, cover *Upload, gallery []Upload) ([]string, error) {
	if cover == nil && len(gallery) == 0 {
		return nil, nil
	}
	if s.images == nil {
		return nil, errs.Validationf("image uploads are not enabled")
	}

	var saved []string
	save := func(u Upload) (string, error) {
		url, err := s.images.Save(ctx, u.Filename, u.Content)
		if err != nil {
			s.removeImages(saved)
			return "", internal(err, fmt.Sprintf("store image %s", u.Filename))
		}
		saved = append(saved, url)
		return url, nil
	}

	if cover != nil {
		url, err := save(*cover)
		if err != nil {
			return nil, err
		}
		p.CoverImage = url
	}
	for _, u := range gallery {
		url, err := save(u)
		if err != nil {
			return nil, err
		}
		p.Images = append(p.Images, url)
	}
	return saved, nil
}

func (s *CatalogService) removeImages(urls []string) {
	if s.images == nil {
		return
	}
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.images.Remove(url); err != nil {
			s.logger.Warn("Failed to remove image", zap.String("url", url), zap.Error(err))
		}
	}
}

// Update merges the provided fields into the product. The merged record must
// still be valid.
func (s *CatalogService) Update(ctx context.Context, id string, patch *models.ProductPatch) (*models.Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if patch.Category != nil {
		c := strings.TrimSpace(*patch.Category)
		patch.Category = &c
	}
	merged := *existing
	patch.Apply(&merged)
	if err := validateProduct(&merged); err != nil {
		return nil, err
	}

	updated, err := s.products.UpdateProduct(ctx, existing.ID, patch)
	if err != nil {
		return nil, internal(err, "update product")
	}
	s.removeImages(replacedImages(existing, updated))

	s.logger.Info("Product updated", zap.String("product_id", id))
	s.audit.record(ctx, "update", id, bson.M{"update": patch.Update(updated.UpdatedAt)["$set"]})
	return updated, nil
}

// replacedImages lists the image URLs of before that after no longer references.
func replacedImages(before, after *models.Product) []string {
	kept := make(map[string]struct{}, len(after.Images)+1)
	kept[after.CoverImage] = struct{}{}
	for _, url := range after.Images {
		kept[url] = struct{}{}
	}
	var gone []string
	for _, url := range append([]string{before.CoverImage}, before.Images...) {
		if _, ok := kept[url]; !ok {
			gone = append(gone, url)
		}
	}
	return gone
}

// Delete removes the product. Carts that reference it keep a dangling entry.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.DeleteProduct(ctx, p.ID); err != nil {
		return internal(err, "delete product")
	}
	s.removeImages(append([]string{p.CoverImage}, p.Images...))

	s.logger.Info("Product deleted", zap.String("product_id", id))
	s.audit.record(ctx, "delete", id, bson.M{"title": p.Title})
	return nil
}

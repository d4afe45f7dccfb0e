package service

import (
	"context"
	"strings"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// AllCategories heads the category list served to the shop.
const AllCategories = "All"

type SiteInfoService struct {
	store  repository.SiteInfoStore
	audit  *auditor
	logger *zap.Logger
}

func NewSiteInfoService(store repository.SiteInfoStore, audit repository.AuditStore, logger *zap.Logger) *SiteInfoService {
	logger = logger.Named("siteinfo")
	return &SiteInfoService{
		store:  store,
		audit:  &auditor{store: audit, service: "siteinfo", logger: logger},
		logger: logger,
	}
}

// Get returns the site info, creating the default document on first use.
func (s *SiteInfoService) Get(ctx context.Context) (*models.SiteInfo, error) {
	info, err := s.store.GetSiteInfo(ctx)
	if err != nil {
		return nil, internal(err, "load site info")
	}
	return info, nil
}

// Update merges the provided fields. A missing document is created first.
func (s *SiteInfoService) Update(ctx context.Context, patch *models.SiteInfoPatch) (*models.SiteInfo, error) {
	if patch.SiteName != nil {
		name := strings.TrimSpace(*patch.SiteName)
		if name == "" {
			return nil, errs.Validationf("siteName must not be empty")
		}
		patch.SiteName = &name
	}
	if patch.ContactEmail != nil {
		email := strings.TrimSpace(*patch.ContactEmail)
		if email != "" {
			if err := validate.Var(email, "email"); err != nil {
				return nil, errs.Validationf("contactEmail must be a valid email")
			}
		}
		patch.ContactEmail = &email
	}

	info, err := s.store.UpdateSiteInfo(ctx, patch)
	if err != nil {
		return nil, internal(err, "update site info")
	}

	s.logger.Info("Site info updated")
	s.audit.record(ctx, "update", models.SiteInfoID, bson.M{"update": patch.SetFields()})
	return info, nil
}

// Categories lists the configured categories behind the "All" pseudo-category.
func (s *SiteInfoService) Categories(ctx context.Context) ([]string, error) {
	info, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{AllCategories}, info.Categories...), nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteInfoLazyDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	info, err := env.site.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SiteInfoID, info.ID)
	assert.Equal(t, "My Site", info.SiteName)
	assert.Empty(t, info.Categories)

	cats, err := env.site.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"All"}, cats)
}

func TestSiteInfoUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	categories := []string{" Phones ", "Audio", "", "Phones"}
	info, err := env.site.Update(ctx, &models.SiteInfoPatch{
		Categories:   &categories,
		ContactEmail: strPtr("shop@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Phones", "Audio"}, info.Categories)
	assert.Equal(t, "My Site", info.SiteName)

	info, err = env.site.Update(ctx, &models.SiteInfoPatch{About: strPtr("We sell phones")})
	require.NoError(t, err)
	assert.Equal(t, "We sell phones", info.About)
	assert.Equal(t, "shop@example.com", info.ContactEmail)

	cats, err := env.site.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Phones", "Audio"}, cats)

	logs, err := env.store.GetAuditLogs(ctx, models.SiteInfoID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestSiteInfoUpdateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.site.Update(ctx, &models.SiteInfoPatch{SiteName: strPtr("   ")})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = env.site.Update(ctx, &models.SiteInfoPatch{ContactEmail: strPtr("nope")})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	info, err := env.site.Update(ctx, &models.SiteInfoPatch{ContactEmail: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, info.ContactEmail)
}

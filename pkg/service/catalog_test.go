package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/example/storefront/pkg/errs"
	"github.com/example/storefront/pkg/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreateStoresUploads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.catalog.Create(ctx,
		ProductInput{Title: " Phone ", Price: floatPtr(100), DiscountPrice: floatPtr(90), Category: "Phones", Featured: true},
		&Upload{Filename: "cover.png", Content: strings.NewReader("cover")},
		[]Upload{{Filename: "side.jpg", Content: strings.NewReader("side")}},
	)
	require.NoError(t, err)
	assert.Equal(t, "Phone", p.Title)
	assert.True(t, p.InStock)
	assert.Equal(t, models.ProductSchemaVersion, p.SchemaVersion)
	require.True(t, strings.HasPrefix(p.CoverImage, "/uploads/"))
	require.Len(t, p.Images, 1)

	data, err := afero.ReadFile(env.fs, strings.TrimPrefix(p.CoverImage, "/uploads"))
	require.NoError(t, err)
	assert.Equal(t, "cover", string(data))

	logs, err := env.store.GetAuditLogs(ctx, p.ID.Hex(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "create", logs[0].Action)
}

func TestCatalogCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   ProductInput
		msg  string
	}{
		{"missing title", ProductInput{Price: floatPtr(1), Category: "A"}, "title is required"},
		{"missing price", ProductInput{Title: "X", Category: "A"}, "price is required"},
		{"negative price", ProductInput{Title: "X", Price: floatPtr(-1), Category: "A"}, "price must be 0 or more"},
		{"missing category", ProductInput{Title: "X", Price: floatPtr(1)}, "category is required"},
		{"discount not lower", ProductInput{Title: "X", Price: floatPtr(10), DiscountPrice: floatPtr(10), Category: "A"}, "discountPrice must be lower than price"},
		{"infinite price", ProductInput{Title: "X", Price: floatPtr(math.Inf(1)), Category: "A"}, "price must be a number"},
		{"NaN price", ProductInput{Title: "X", Price: floatPtr(math.NaN()), Category: "A"}, "price must be a number"},
		{"infinite discount", ProductInput{Title: "X", Price: floatPtr(10), DiscountPrice: floatPtr(math.Inf(-1)), Category: "A"}, "discountPrice must be a number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.catalog.Create(ctx, tc.in, nil, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrValidation))
			assert.Equal(t, tc.msg, errs.Message(err))
		})
	}

	_, err := env.catalog.Create(ctx, ProductInput{Title: "X", Price: floatPtr(1), Category: "A"},
		&Upload{Filename: "cover.exe", Content: strings.NewReader("x")}, nil)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	tooMany := make([]Upload, 5)
	for i := range tooMany {
		tooMany[i] = Upload{Filename: "a.png", Content: strings.NewReader("x")}
	}
	_, err = env.catalog.Create(ctx, ProductInput{Title: "X", Price: floatPtr(1), Category: "A"}, nil, tooMany)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	all, err := env.catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCatalogCreateRemovesImagesWhenGalleryFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.Create(ctx, ProductInput{Title: "X", Price: floatPtr(1), Category: "A"},
		&Upload{Filename: "cover.png", Content: strings.NewReader("x")},
		[]Upload{{Filename: "bad.txt", Content: strings.NewReader("x")}})
	require.Error(t, err)

	entries, err := afero.ReadDir(env.fs, "/")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCatalogUpdateMergesFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Phone", 100, func(p *models.Product) {
		p.Description = "fast"
		p.DiscountPrice = floatPtr(90)
	})

	updated, err := env.catalog.Update(ctx, p.ID.Hex(), &models.ProductPatch{Price: floatPtr(120), Title: strPtr(" Phone 2 ")})
	require.NoError(t, err)
	assert.Equal(t, "Phone 2", updated.Title)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, "fast", updated.Description)
	require.NotNil(t, updated.DiscountPrice)
	assert.Equal(t, 90.0, *updated.DiscountPrice)

	_, err = env.catalog.Update(ctx, p.ID.Hex(), &models.ProductPatch{Price: floatPtr(50)})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	cleared, err := env.catalog.Update(ctx, p.ID.Hex(), &models.ProductPatch{ClearDiscount: true, Price: floatPtr(50)})
	require.NoError(t, err)
	assert.Nil(t, cleared.DiscountPrice)
	assert.Equal(t, 50.0, cleared.Price)

	_, err = env.catalog.Update(ctx, p.ID.Hex(), &models.ProductPatch{Title: strPtr("  ")})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = env.catalog.Update(ctx, "missing", &models.ProductPatch{})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestCatalogUpdateRemovesReplacedImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.catalog.Create(ctx, ProductInput{Title: "Phone", Price: floatPtr(10), Category: "Phones"},
		&Upload{Filename: "cover.png", Content: strings.NewReader("cover")},
		[]Upload{
			{Filename: "side.jpg", Content: strings.NewReader("side")},
			{Filename: "back.jpg", Content: strings.NewReader("back")},
		})
	require.NoError(t, err)
	require.Len(t, p.Images, 2)
	stored := func(url string) bool {
		ok, err := afero.Exists(env.fs, strings.TrimPrefix(url, "/uploads"))
		require.NoError(t, err)
		return ok
	}

	kept := []string{p.Images[0]}
	updated, err := env.catalog.Update(ctx, p.ID.Hex(), &models.ProductPatch{
		CoverImage: strPtr("https://cdn.example.com/phone.png"),
		Images:     &kept,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/phone.png", updated.CoverImage)

	assert.False(t, stored(p.CoverImage))
	assert.True(t, stored(p.Images[0]))
	assert.False(t, stored(p.Images[1]))

	_, err = env.catalog.Update(ctx, p.ID.Hex(), &models.ProductPatch{Title: strPtr("Phone 2")})
	require.NoError(t, err)
	assert.True(t, stored(p.Images[0]))
}

func TestCatalogDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.catalog.Create(ctx, ProductInput{Title: "Phone", Price: floatPtr(10), Category: "Phones"},
		&Upload{Filename: "cover.png", Content: strings.NewReader("x")}, nil)
	require.NoError(t, err)

	require.NoError(t, env.catalog.Delete(ctx, p.ID.Hex()))
	_, err = env.catalog.Get(ctx, p.ID.Hex())
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	entries, err := afero.ReadDir(env.fs, "/")
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.True(t, errors.Is(env.catalog.Delete(ctx, p.ID.Hex()), errs.ErrNotFound))
}

func TestCatalogShopReads(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.product(t, "Smartphone X1", 100, func(p *models.Product) { p.Featured = true })
	env.product(t, "Wireless Earbuds", 20, func(p *models.Product) {
		p.Category = "Audio"
		p.HotDeals = true
	})

	all, err := env.catalog.List(ctx, "All", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	audio, err := env.catalog.List(ctx, "Audio", "")
	require.NoError(t, err)
	require.Len(t, audio, 1)
	assert.Equal(t, "Wireless Earbuds", audio[0].Title)

	search, err := env.catalog.List(ctx, "", "PHONE")
	require.NoError(t, err)
	require.Len(t, search, 1)

	featured, err := env.catalog.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Smartphone X1", featured[0].Title)

	deals, err := env.catalog.HotDeals(ctx)
	require.NoError(t, err)
	require.Len(t, deals, 1)

	newest, err := env.catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wireless Earbuds", newest[0].Title)

	_, err = env.catalog.Get(ctx, "zzz")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestProductFormInput(t *testing.T) {
	form := ProductForm{
		Title:         "Phone",
		Price:         "99.5",
		DiscountPrice: "",
		InStock:       "false",
		Featured:      "on",
		HotDeals:      "true",
		Category:      "Phones",
	}
	in, err := form.Input()
	require.NoError(t, err)
	require.NotNil(t, in.Price)
	assert.Equal(t, 99.5, *in.Price)
	assert.Nil(t, in.DiscountPrice)
	require.NotNil(t, in.InStock)
	assert.False(t, *in.InStock)
	assert.True(t, in.Featured)
	assert.True(t, in.HotDeals)
	assert.False(t, in.NewProduct)

	for _, bad := range []string{"cheap", "Inf", "-Inf", "NaN", "+inf"} {
		form.Price = bad
		_, err = form.Input()
		assert.True(t, errors.Is(err, errs.ErrValidation), bad)
		assert.Equal(t, "price must be a number", errs.Message(err), bad)
	}

	form.Price = "10"
	form.DiscountPrice = "Inf"
	_, err = form.Input()
	assert.Equal(t, "discountPrice must be a number", errs.Message(err))
}

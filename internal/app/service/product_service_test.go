package service

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *ProductInput)
		fields []string
	}{
		{"valid", func(in *ProductInput) {}, nil},
		{"missing name", func(in *ProductInput) { in.Name = "  " }, []string{"name"}},
		{"no images", func(in *ProductInput) { in.Images = nil }, []string{"images"}},
		{"bad category", func(in *ProductInput) { in.Category = "gold" }, []string{"category"}},
		{"no variants", func(in *ProductInput) { in.Variants = nil }, []string{"variants"}},
		{"variant without name or price", func(in *ProductInput) {
			in.Variants[1] = VariantInput{Price: 0}
		}, []string{"variants.1.name", "variants.1.price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := camphorInput()
			tt.mutate(&in)
			errs := in.Validate()
			if tt.fields == nil {
				assert.Nil(t, errs)
				return
			}
			require.NotNil(t, errs)
			assert.Len(t, errs, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, errs, f)
			}
		})
	}
}

func TestProductService_CreateDerivesSlugAndPricing(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	first, err := f.products.CreateProduct(ctx, camphorInput())
	require.NoError(t, err)
	assert.Equal(t, "pure-bhimseni-camphor", first.Slug)
	assert.Equal(t, int64(199), first.BasePrice)
	assert.Equal(t, int64(169), first.SellingPrice)
	assert.Equal(t, testStorageURL+"/products/tmp/camphor.jpg", first.ThumbnailURL)

	second, err := f.products.CreateProduct(ctx, camphorInput())
	require.NoError(t, err)
	assert.Equal(t, "pure-bhimseni-camphor-2", second.Slug)

	third, err := f.products.CreateProduct(ctx, camphorInput())
	require.NoError(t, err)
	assert.Equal(t, "pure-bhimseni-camphor-3", third.Slug)

	found, err := f.products.GetProductBySlug("pure-bhimseni-camphor-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)
	require.Len(t, found.Variants, 2)
	assert.True(t, found.Variants[0].InStock)
}

func TestProductService_CreateRejectsInvalid(t *testing.T) {
	f := setupCatalog(t)

	in := camphorInput()
	in.Images = nil
	_, err := f.products.CreateProduct(context.Background(), in)

	var errs FormErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "images")
}

func TestProductService_UpdateRenamesAndCleansImages(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	product, err := f.products.CreateProduct(ctx, camphorInput())
	require.NoError(t, err)

	oldURL, err := f.objects.Upload(ctx, storage.ProductImageKey(product.ID, "image/jpeg"), bytes.NewReader([]byte("old")), 3, "image/jpeg")
	require.NoError(t, err)
	newURL, err := f.objects.Upload(ctx, storage.ProductImageKey(product.ID, "image/png"), bytes.NewReader([]byte("new")), 3, "image/png")
	require.NoError(t, err)

	in := camphorInput()
	in.Images = []string{oldURL, newURL}
	product, err = f.products.UpdateProduct(ctx, product.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "pure-bhimseni-camphor", product.Slug)
	assert.Len(t, f.objects.Keys(), 2)

	in.Name = "Bhimseni Camphor Tablets"
	in.Images = []string{newURL}
	in.Variants = []VariantInput{{ID: product.Variants[1].ID, Name: "100g Pack", Price: 279, MRP: 349}}
	updated, err := f.products.UpdateProduct(ctx, product.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "bhimseni-camphor-tablets", updated.Slug)
	assert.Equal(t, int64(279), updated.SellingPrice)
	assert.Equal(t, newURL, updated.ThumbnailURL)

	keys := f.objects.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasSuffix(newURL, keys[0]))

	reloaded, err := f.products.GetProductByID(product.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Variants, 1)
	assert.Equal(t, product.Variants[1].ID, reloaded.Variants[0].ID)
}

func TestProductService_UpdateMissing(t *testing.T) {
	f := setupCatalog(t)
	_, err := f.products.UpdateProduct(context.Background(), "missing", camphorInput())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteRemovesImageFolder(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	product, err := f.products.CreateProduct(ctx, camphorInput())
	require.NoError(t, err)
	for _, ct := range []string{"image/jpeg", "image/webp"} {
		_, err := f.objects.Upload(ctx, storage.ProductImageKey(product.ID, ct), bytes.NewReader([]byte("x")), 1, ct)
		require.NoError(t, err)
	}
	_, err = f.objects.Upload(ctx, storage.ProductImageKey("other", "image/png"), bytes.NewReader([]byte("x")), 1, "image/png")
	require.NoError(t, err)

	require.NoError(t, f.products.DeleteProduct(ctx, product.ID))

	_, err = f.products.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Len(t, f.objects.Keys(), 1)

	assert.ErrorIs(t, f.products.DeleteProduct(ctx, product.ID), ErrProductNotFound)
}

func TestProductService_FlagsAndVariantLookup(t *testing.T) {
	f := setupCatalog(t)

	product, err := f.products.CreateProduct(context.Background(), camphorInput())
	require.NoError(t, err)
	variantID := product.Variants[0].ID

	_, variant, err := f.products.FindVariant(product.ID, variantID)
	require.NoError(t, err)
	assert.Equal(t, int64(169), variant.Price)

	_, _, err = f.products.FindVariant(product.ID, "nope")
	assert.ErrorIs(t, err, ErrVariantNotFound)

	require.NoError(t, f.products.SetStock(product.ID, false))
	_, _, err = f.products.FindVariant(product.ID, variantID)
	assert.ErrorIs(t, err, ErrOutOfStock)

	require.NoError(t, f.products.SetFeatured(product.ID, true))
	featured, err := f.products.ListProducts(ProductListOptions{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.False(t, featured[0].InStock)

	assert.ErrorIs(t, f.products.SetStock("missing", true), ErrProductNotFound)
}

func TestProductService_ListSorting(t *testing.T) {
	f := setupCatalog(t)
	ctx := context.Background()

	for _, p := range []struct {
		name  string
		price int64
	}{{"Agarbatti", 99}, {"Camphor", 169}, {"Deepam Oil", 249}} {
		in := camphorInput()
		in.Name = p.name
		in.Variants = []VariantInput{{Name: "Pack", Price: p.price}}
		_, err := f.products.CreateProduct(ctx, in)
		require.NoError(t, err)
	}

	asc, err := f.products.ListProducts(ProductListOptions{Sort: ProductSortPriceAsc})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "Agarbatti", asc[0].Name)

	desc, err := f.products.ListProducts(ProductListOptions{Sort: ProductSortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, "Deepam Oil", desc[0].Name)

	byName, err := f.products.ListProducts(ProductListOptions{Sort: ProductSortName, Limit: 2})
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, "Camphor", byName[1].Name)

	cat := model.CategoryCamphor
	inCategory, err := f.products.ListProducts(ProductListOptions{Category: &cat, Search: "oil"})
	require.NoError(t, err)
	require.Len(t, inCategory, 1)
	assert.Equal(t, "Deepam Oil", inCategory[0].Name)
}

func TestProductService_InquiryURL(t *testing.T) {
	f := setupCatalog(t)

	product, err := f.products.CreateProduct(context.Background(), camphorInput())
	require.NoError(t, err)

	link, err := f.products.InquiryURL(product.Slug, product.Variants[1].ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://wa.me/918300051198?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	text := parsed.Query().Get("text")
	assert.Contains(t, text, "*Pure Bhimseni Camphor* (100g Pack)")

	fallback, err := f.products.InquiryURL(product.Slug, "")
	require.NoError(t, err)
	assert.Contains(t, fallback, "%2850g%20Pack%29")

	_, err = f.products.InquiryURL("missing", "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_ListCategories(t *testing.T) {
	f := setupCatalog(t)

	categories, err := f.products.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, len(model.ProductCategories))
	assert.Equal(t, model.CategoryCamphor, categories[0].Slug)
}

package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/omart/marketplace/internal/domain"
	"github.com/omart/marketplace/internal/listing"
	"github.com/omart/marketplace/internal/media"
	"github.com/omart/marketplace/internal/models"
	"github.com/omart/marketplace/internal/transport"
)

func lampRequest() transport.ProductRequest {
	price := decimal.RequireFromString("25.50")
	return transport.ProductRequest{
		Title:       ptr("Vintage Lamp"),
		Description: ptr("Brass desk lamp, works fine"),
		Price:       &price,
		Category:    ptr("Other"),
		Tags:        []string{"Lamp", " brass ", "lamp"},
	}
}

func listIDs(t *testing.T, svc *CatalogService, q url.Values) []uuid.UUID {
	t.Helper()

	f, _ := listing.ParseFilters(q)
	page, err := svc.ListProducts(context.Background(), f)
	require.NoError(t, err)
	out := make([]uuid.UUID, 0, len(page.Products))
	for _, p := range page.Products {
		out = append(out, p.ID)
	}
	return out
}

func TestCatalog_VintageLampLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)
	admin := env.user(t, "ada", domain.RoleAdmin)

	p, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(1))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.True(t, p.IsAvailable)
	assert.Equal(t, domain.ConditionNew, p.Condition)
	assert.Equal(t, []string{"lamp", "brass"}, p.Tags)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("25.5")))
	require.Len(t, p.Images, 1)
	assert.Equal(t, "mart/products/1", p.Images[0].PublicID)

	assert.NotContains(t, listIDs(t, env.Catalog, url.Values{}), p.ID)

	_, err = env.Mod.Approve(ctx, admin, p.ID)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{p.ID}, listIDs(t, env.Catalog, url.Values{"category": {"Other"}}))
	assert.True(t, env.Index.indexed[p.ID])

	_, err = env.Catalog.MarkSold(ctx, seller, p.ID, nil)
	require.NoError(t, err)
	assert.NotContains(t, listIDs(t, env.Catalog, url.Values{"category": {"Other"}}), p.ID)
	assert.False(t, env.Index.indexed[p.ID])

	got, err := env.Catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)
	assert.False(t, got.IsAvailable)
	assert.NotNil(t, got.SoldAt)

	assert.Equal(t, []string{EventProductCreated, EventProductApproved, EventProductSold}, env.Events.types())
	require.Len(t, env.Mail.sent, 1)
	assert.Equal(t, "Vintage Lamp", env.Mail.sent[0].title)
}

func TestCatalog_CreateRejectsSixthImageBeforeUpload(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "sam", domain.RoleSeller)

	_, err := env.Catalog.CreateProduct(context.Background(), seller, lampRequest(), jpegs(6))
	require.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, media.ErrTooManyFiles)
	assert.Zero(t, env.Storage.uploads)

	var count int64
	require.NoError(t, env.DB.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCatalog_CreateRequiresImageAndFields(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "sam", domain.RoleSeller)
	ctx := context.Background()

	_, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), nil)
	assert.ErrorIs(t, err, media.ErrNoFiles)

	_, err = env.Catalog.CreateProduct(ctx, seller, transport.ProductRequest{Title: ptr("x")}, jpegs(1))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, verr.Fields, 3)

	bad := lampRequest()
	bad.Category = ptr("Weapons")
	neg := decimal.NewFromInt(-1)
	bad.Price = &neg
	_, err = env.Catalog.CreateProduct(ctx, seller, bad, jpegs(1))
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Zero(t, env.Storage.uploads)
}

func TestCatalog_BuyerCannotCreate(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.user(t, "bo", domain.RoleBuyer)

	_, err := env.Catalog.CreateProduct(context.Background(), buyer, lampRequest(), jpegs(1))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, env.Storage.uploads)
}

func TestCatalog_CreateCompensatesWhenPersistenceFails(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "sam", domain.RoleSeller)

	require.NoError(t, env.DB.Callback().Create().Before("gorm:create").Register("test:fail_products", func(tx *gorm.DB) {
		if tx.Statement.Table == "products" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	_, err := env.Catalog.CreateProduct(context.Background(), seller, lampRequest(), jpegs(3))
	require.Error(t, err)
	assert.Equal(t, 3, env.Storage.uploads)
	assert.ElementsMatch(t, []string{"mart/products/1", "mart/products/2", "mart/products/3"}, env.Storage.destroyed)
	assert.Empty(t, env.Events.types())
}

func TestCatalog_CreateUploadFailureLeavesNothingBehind(t *testing.T) {
	env := newTestEnv(t)
	env.Storage.failAt = 2
	seller := env.user(t, "sam", domain.RoleSeller)

	_, err := env.Catalog.CreateProduct(context.Background(), seller, lampRequest(), jpegs(3))
	require.ErrorIs(t, err, media.ErrUpload)
	assert.Equal(t, []string{"mart/products/1"}, env.Storage.destroyed)

	var count int64
	require.NoError(t, env.DB.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCatalog_SoldProductRefusesEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)
	stranger := env.user(t, "eve", domain.RoleSeller)
	admin := env.user(t, "ada", domain.RoleAdmin)

	p, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(1))
	require.NoError(t, err)
	_, err = env.Mod.Approve(ctx, admin, p.ID)
	require.NoError(t, err)
	_, err = env.Catalog.MarkSold(ctx, admin, p.ID, ptr(stranger.ID))
	require.NoError(t, err)

	for _, actor := range []domain.Actor{seller, stranger, admin} {
		_, err := env.Catalog.UpdateProduct(ctx, actor, p.ID, transport.ProductRequest{Title: ptr("New title")}, nil)
		require.ErrorIs(t, err, domain.ErrProductSold)
		assert.ErrorIs(t, err, ErrValidation)
	}

	got, err := env.Repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vintage Lamp", got.Title)
	require.NotNil(t, got.BuyerID)
	assert.Equal(t, stranger.ID, *got.BuyerID)
}

func TestCatalog_UpdateAppendsImagesWithinCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)
	stranger := env.user(t, "eve", domain.RoleSeller)

	p, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(3))
	require.NoError(t, err)

	_, err = env.Catalog.UpdateProduct(ctx, stranger, p.ID, transport.ProductRequest{Title: ptr("Mine now")}, nil)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.Catalog.UpdateProduct(ctx, seller, p.ID, transport.ProductRequest{}, jpegs(3))
	require.ErrorIs(t, err, media.ErrTooManyFiles)
	assert.Equal(t, 3, env.Storage.uploads)

	price := decimal.RequireFromString("19.99")
	up, err := env.Catalog.UpdateProduct(ctx, seller, p.ID, transport.ProductRequest{
		Title:    ptr("Vintage Brass Lamp"),
		Price:    &price,
		Location: &transport.LocationRequest{City: ptr("Austin")},
	}, jpegs(2))
	require.NoError(t, err)
	assert.Equal(t, "Vintage Brass Lamp", up.Title)
	assert.Equal(t, "Austin", up.Location.City)
	assert.Equal(t, domain.StatusPending, up.Status)
	assert.True(t, up.Price.Equal(price))
	require.Len(t, up.Images, 5)
	assert.Equal(t, "mart/products/1", up.Images[0].PublicID)
	assert.Equal(t, "mart/products/5", up.Images[4].PublicID)
	assert.Equal(t, []string{"lamp", "brass"}, up.Tags)
}

func TestCatalog_UpdatedTagsAreSearchable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)
	admin := env.user(t, "ada", domain.RoleAdmin)

	p, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(1))
	require.NoError(t, err)
	_, err = env.Mod.Approve(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p.ID}, listIDs(t, env.Catalog, url.Values{"search": {"brass"}}))

	_, err = env.Catalog.UpdateProduct(ctx, seller, p.ID, transport.ProductRequest{Tags: []string{"R&B", "Vinyl"}}, nil)
	require.NoError(t, err)

	var stored models.Product
	require.NoError(t, env.DB.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, "r&b\nvinyl", stored.SearchTags)
	assert.Equal(t, []uuid.UUID{p.ID}, listIDs(t, env.Catalog, url.Values{"search": {"r&b"}}))
	assert.Empty(t, listIDs(t, env.Catalog, url.Values{"search": {`"`}}))
}

func TestCatalog_DeleteDestroysRemoteImages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)
	stranger := env.user(t, "eve", domain.RoleBuyer)

	p, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(2))
	require.NoError(t, err)

	require.ErrorIs(t, env.Catalog.DeleteProduct(ctx, stranger, p.ID), ErrForbidden)
	require.NoError(t, env.Catalog.DeleteProduct(ctx, seller, p.ID))
	assert.ElementsMatch(t, []string{"mart/products/1", "mart/products/2"}, env.Storage.destroyed)

	_, err = env.Catalog.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var images int64
	require.NoError(t, env.DB.Model(&models.ProductImage{}).Count(&images).Error)
	assert.Zero(t, images)
}

func TestCatalog_GetProductCountsViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)

	p, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(1))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		got, err := env.Catalog.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.EqualValues(t, i, got.ViewCount)
	}

	_, err = env.Catalog.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_MarkSoldRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)
	stranger := env.user(t, "eve", domain.RoleSeller)

	p, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(1))
	require.NoError(t, err)

	_, err = env.Catalog.MarkSold(ctx, seller, p.ID, nil)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = env.Catalog.MarkSold(ctx, stranger, p.ID, nil)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCatalog_ListingCacheInvalidatedOnMutation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)
	admin := env.user(t, "ada", domain.RoleAdmin)

	assert.Empty(t, listIDs(t, env.Catalog, url.Values{}))
	assert.Len(t, env.Cache.data, 1)

	p, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(1))
	require.NoError(t, err)
	assert.Empty(t, env.Cache.data)

	_, err = env.Mod.Approve(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p.ID}, listIDs(t, env.Catalog, url.Values{}))
	assert.Equal(t, []uuid.UUID{p.ID}, listIDs(t, env.Catalog, url.Values{}))
	assert.Equal(t, 2, env.Cache.invalidated)
}

func TestCatalog_SellerProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seller := env.user(t, "sam", domain.RoleSeller)
	other := env.user(t, "eve", domain.RoleSeller)

	for i := 0; i < 3; i++ {
		_, err := env.Catalog.CreateProduct(ctx, seller, lampRequest(), jpegs(1))
		require.NoError(t, err)
	}
	_, err := env.Catalog.CreateProduct(ctx, other, lampRequest(), jpegs(1))
	require.NoError(t, err)

	page, err := env.Catalog.SellerProducts(ctx, seller, domain.StatusPending, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.EqualValues(t, 3, page.Pagination.TotalProducts)
	assert.True(t, page.Pagination.HasNext)

	_, err = env.Catalog.SellerProducts(ctx, seller, "archived", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}

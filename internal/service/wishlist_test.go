package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anantkv/saree-store/internal/domain/models"
	"github.com/anantkv/saree-store/internal/service"
	"github.com/anantkv/saree-store/internal/storage"
)

func TestWishlistToggle(t *testing.T) {
	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Banarasi Saree", Price: 1999, Stock: 10})
	wishlist := newFakeWishlistRepo(products)
	svc := service.NewWishlistService(discardLogger(), wishlist, products)

	wishlisted, err := svc.Toggle(context.Background(), 1, saree.ID)
	require.NoError(t, err)
	assert.True(t, wishlisted)

	items, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Banarasi Saree", items[0].ProductName)

	// второй вызов убирает товар из списка
	wishlisted, err = svc.Toggle(context.Background(), 1, saree.ID)
	require.NoError(t, err)
	assert.False(t, wishlisted)

	items, err = svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWishlistToggle_UnknownProduct(t *testing.T) {
	products := newFakeProductRepo()
	wishlist := newFakeWishlistRepo(products)
	svc := service.NewWishlistService(discardLogger(), wishlist, products)

	_, err := svc.Toggle(context.Background(), 1, 42)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
}

// Два конкурентных Toggle по одному товару: проигравший вставку
// натыкается на дубль, но итог для него тот же — товар в списке.
func TestWishlistToggle_ConcurrentDuplicateAdd(t *testing.T) {
	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Kanjivaram Saree", Price: 8999, Stock: 4})
	wishlist := newFakeWishlistRepo(products)
	wishlist.createErr = storage.ErrWishlistItemExists
	svc := service.NewWishlistService(discardLogger(), wishlist, products)

	wishlisted, err := svc.Toggle(context.Background(), 1, saree.ID)
	require.NoError(t, err)
	assert.True(t, wishlisted)
}

func TestWishlistIsolatedPerUser(t *testing.T) {
	products := newFakeProductRepo()
	saree := products.add(&models.Product{Name: "Chanderi Saree", Price: 4999, Stock: 10})
	wishlist := newFakeWishlistRepo(products)
	svc := service.NewWishlistService(discardLogger(), wishlist, products)

	_, err := svc.Toggle(context.Background(), 1, saree.ID)
	require.NoError(t, err)

	items, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, items)
}

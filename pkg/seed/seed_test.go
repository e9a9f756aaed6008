package seed

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/example/possales/pkg/models"
	"github.com/example/possales/pkg/repository"
	"github.com/example/possales/pkg/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := repotest.Open(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	repotest.CreateProduct(t, db, "Soda", "Standard", "4.00")

	added, err := SeedCatalog(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, len(Catalog)-1, added)

	added, err = SeedCatalog(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, added)

	products, err := store.Products().List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(Catalog))
}

func TestGenerateSample(t *testing.T) {
	db := repotest.Open(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	repotest.CreateUser(t, db, "ana")
	_, err := SeedCatalog(ctx, store)
	require.NoError(t, err)

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	n, err := GenerateSample(ctx, store, SampleOptions{Orders: 20, Days: 6, Rand: rand.New(rand.NewSource(1)), Now: now})
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	var all []models.Order
	require.NoError(t, db.Preload("Items").Find(&all).Error)
	require.Len(t, all, 20)
	for _, o := range all {
		assert.Equal(t, models.OrderStatusCompleted, o.Status)
		assert.True(t, o.FinalAmount.Equal(o.TotalAmount.Add(o.GSTAmount)))
		assert.False(t, o.OrderTime.After(now))
		assert.True(t, o.OrderTime.After(now.AddDate(0, 0, -6)))
		require.NotEmpty(t, o.Items)
		assert.LessOrEqual(t, len(o.Items), 5)
		for _, it := range o.Items {
			assert.GreaterOrEqual(t, it.Quantity, 1)
			assert.LessOrEqual(t, it.Quantity, 10)
		}
	}
}

func TestGenerateSampleGuards(t *testing.T) {
	store := repotest.NewStore(t)
	ctx := context.Background()

	_, err := GenerateSample(ctx, store, SampleOptions{Orders: 5, Production: true})
	assert.ErrorIs(t, err, ErrProduction)

	_, err = GenerateSample(ctx, store, SampleOptions{Orders: 5})
	assert.ErrorIs(t, err, ErrNoData)

	n, err := GenerateSample(ctx, store, SampleOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

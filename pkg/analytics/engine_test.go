package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/possales/pkg/models"
	"github.com/example/possales/pkg/repository"
	"github.com/example/possales/pkg/repository/repotest"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 2026-10-14 is a Wednesday; its week starts on Monday 2026-10-12.
var asOf = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

type seeded struct {
	db    *gorm.DB
	store *repository.Store
	user  models.User
	shake models.Product
	soda  models.Product
	water models.Product
}

func seed(t *testing.T) *seeded {
	t.Helper()
	db := repotest.Open(t)
	s := &seeded{
		db:    db,
		store: repository.NewStore(db),
		user:  repotest.CreateUser(t, db, "ana"),
		shake: repotest.CreateProduct(t, db, "Shake", "Small", "10.00"),
		soda:  repotest.CreateProduct(t, db, "Soda", "Standard", "4.00"),
		water: repotest.CreateProduct(t, db, "Water Bottle", "Standard", "3.00"),
	}

	at := func(y int, m time.Month, d, h int) time.Time { return time.Date(y, m, d, h, 0, 0, 0, time.UTC) }
	repotest.CreateOrder(t, db, s.user.ID, s.shake, 1, "10.00", at(2026, 10, 14, 9))
	repotest.CreateOrder(t, db, s.user.ID, s.soda, 5, "20.00", at(2026, 10, 14, 11))
	repotest.CreateOrder(t, db, s.user.ID, s.water, 2, "5.00", at(2026, 10, 12, 0))
	repotest.CreateOrder(t, db, s.user.ID, s.water, 3, "7.00", at(2026, 10, 11, 23))
	repotest.CreateOrder(t, db, s.user.ID, s.shake, 4, "11.00", at(2026, 9, 30, 12))
	repotest.CreateOrder(t, db, s.user.ID, s.soda, 1, "100.00", at(2025, 12, 31, 18))
	repotest.CreateOrder(t, db, s.user.ID, s.soda, 1, "50.00", at(2026, 10, 15, 8))
	return s
}

func (s *seeded) engine(opts ...Option) *Engine {
	return NewEngine(s.store.Analytics(), zap.NewNop(), opts...)
}

func TestSalesSummaryWindows(t *testing.T) {
	s := seed(t)

	summary, err := s.engine().SalesSummary(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, "30.00", summary.Daily.StringFixed(2))
	assert.Equal(t, "35.00", summary.Weekly.StringFixed(2))
	assert.Equal(t, "42.00", summary.Monthly.StringFixed(2))
	assert.Equal(t, "53.00", summary.Yearly.StringFixed(2))

	assert.True(t, summary.Yearly.GreaterThanOrEqual(summary.Monthly))
	assert.True(t, summary.Monthly.GreaterThanOrEqual(summary.Weekly))
	assert.True(t, summary.Weekly.GreaterThanOrEqual(summary.Daily))
}

func TestSalesSummaryEmptyIsZero(t *testing.T) {
	store := repotest.NewStore(t)

	summary, err := NewEngine(store.Analytics(), zap.NewNop()).SalesSummary(context.Background(), asOf)
	require.NoError(t, err)
	for _, v := range []decimal.Decimal{summary.Daily, summary.Weekly, summary.Monthly, summary.Yearly} {
		assert.True(t, v.IsZero())
	}
}

func TestSalesSummaryUsesLocation(t *testing.T) {
	s := seed(t)
	ist := time.FixedZone("IST", 5*3600+1800)

	// 2026-10-11 23:00 UTC is already Monday in IST, so it joins the week.
	e := s.engine(WithLocation(ist))
	summary, err := e.SalesSummary(context.Background(), time.Date(2026, 10, 14, 12, 0, 0, 0, ist))
	require.NoError(t, err)

	assert.Equal(t, "30.00", summary.Daily.StringFixed(2))
	assert.Equal(t, "42.00", summary.Weekly.StringFixed(2))
	assert.Equal(t, ist, e.Location())
}

func TestSalesSummaryIdempotent(t *testing.T) {
	s := seed(t)
	e := s.engine()
	ctx := context.Background()

	first, err := e.SalesSummary(ctx, asOf)
	require.NoError(t, err)
	second, err := e.SalesSummary(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTopProducts(t *testing.T) {
	s := seed(t)
	e := s.engine()
	ctx := context.Background()

	top, err := e.TopProducts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []ProductQuantity{
		{Name: "Soda", TotalQuantity: 7},
		{Name: "Shake", TotalQuantity: 5},
		{Name: "Water Bottle", TotalQuantity: 5},
	}, top)

	limited, err := e.TopProducts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "Shake", limited[1].Name)
}

func TestMonthlySeries(t *testing.T) {
	s := seed(t)

	series, err := s.engine().MonthlySeries(context.Background(), asOf, 0)
	require.NoError(t, err)

	require.Len(t, series, 3)
	assert.Equal(t, "December 2025", series[0].Label)
	assert.Equal(t, "100.00", series[0].Total.StringFixed(2))
	assert.Equal(t, "September 2026", series[1].Label)
	assert.Equal(t, "11.00", series[1].Total.StringFixed(2))
	assert.Equal(t, "October 2026", series[2].Label)
	assert.Equal(t, "42.00", series[2].Total.StringFixed(2))

	short, err := s.engine().MonthlySeries(context.Background(), asOf, 7)
	require.NoError(t, err)
	require.Len(t, short, 1)
	assert.Equal(t, "October 2026", short[0].Label)
}

func TestProductRevenueUsesSnapshotPrice(t *testing.T) {
	s := seed(t)
	e := s.engine()
	ctx := context.Background()

	before, err := e.ProductRevenue(ctx)
	require.NoError(t, err)

	require.NoError(t, s.db.Model(&models.Product{}).Where("id = ?", s.soda.ID).Update("price", "9.99").Error)

	after, err := e.ProductRevenue(ctx)
	require.NoError(t, err)
	require.Len(t, after, 3)
	assert.Equal(t, "Soda", after[1].Name)
	assert.Equal(t, "170.00", after[1].TotalRevenue.StringFixed(2))
	assert.True(t, before[1].TotalRevenue.Equal(after[1].TotalRevenue))
}

type failingSource struct {
	Source
}

func (failingSource) SumFinalAmount(context.Context, time.Time, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("connection refused")
}

func TestReportPropagatesSourceErrors(t *testing.T) {
	_, err := NewEngine(failingSource{}, zap.NewNop()).Report(context.Background(), asOf)
	assert.ErrorContains(t, err, "connection refused")
}

func marshal(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestReportCaching(t *testing.T) {
	s := seed(t)
	mr := miniredis.RunT(t)
	cache := repository.NewRedisRepositoryFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	e := s.engine(WithCache(cache, time.Minute), WithClock(func() time.Time { return asOf }))

	first, err := e.Report(ctx, e.Today())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", first.AsOf)
	assert.Equal(t, "30.00", first.Daily.StringFixed(2))
	assert.Len(t, mr.Keys(), 1)

	repotest.CreateOrder(t, s.db, s.user.ID, s.shake, 1, "1.00", asOf)

	cached, err := e.Report(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, marshal(t, first), marshal(t, cached))

	e.Invalidate(ctx)
	fresh, err := e.Report(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, "31.00", fresh.Daily.StringFixed(2))
}

func TestReportWithoutCacheMatchesParts(t *testing.T) {
	s := seed(t)
	e := s.engine()
	ctx := context.Background()

	report, err := e.Report(ctx, asOf)
	require.NoError(t, err)
	e.Invalidate(ctx)

	summary, err := e.SalesSummary(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, summary, report.SalesSummary)
	assert.Len(t, report.PopularProducts, 3)
	assert.Len(t, report.MonthlySalesLastYear, 3)
	assert.Len(t, report.ProductSales, 3)
}

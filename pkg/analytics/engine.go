package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/possales/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultTopLimit   = 5
	DefaultWindowDays = 365

	generationKey = "analytics:generation"
)

// Source is the read model the engine aggregates over.
type Source interface {
	SumFinalAmount(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	QuantityByProduct(ctx context.Context, limit int) ([]repository.ProductQuantity, error)
	RevenueByProduct(ctx context.Context) ([]repository.ProductRevenue, error)
	OrderAmounts(ctx context.Context, from, to time.Time) ([]repository.OrderAmount, error)
}

// Cache stores finished reports. GetJSON must return repository.ErrCacheMiss
// for absent keys.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

type SalesSummary struct {
	Daily   decimal.Decimal `json:"daily_sales"`
	Weekly  decimal.Decimal `json:"weekly_sales"`
	Monthly decimal.Decimal `json:"monthly_sales"`
	Yearly  decimal.Decimal `json:"yearly_sales"`
}

type ProductQuantity struct {
	Name          string `json:"name"`
	TotalQuantity int64  `json:"total_sold"`
}

type MonthlyTotal struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

type ProductRevenue struct {
	Name         string          `json:"name"`
	TotalRevenue decimal.Decimal `json:"total_sales"`
}

type Report struct {
	AsOf string `json:"as_of"`
	SalesSummary
	PopularProducts      []ProductQuantity `json:"popular_products"`
	MonthlySalesLastYear []MonthlyTotal    `json:"monthly_sales_last_year"`
	ProductSales         []ProductRevenue  `json:"product_sales"`
}

type Engine struct {
	source   Source
	cache    Cache
	cacheTTL time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Engine)

// WithLocation sets the zone that day, week, month and year boundaries are
// computed in. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithCache enables report caching. A nil cache or a non-positive ttl leaves
// caching off.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		if cache != nil && ttl > 0 {
			e.cache = cache
			e.cacheTTL = ttl
		}
	}
}

func NewEngine(source Source, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		loc:    time.UTC,
		now:    time.Now,
		logger: logger.Named("analytics"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Today is midnight of the current day in the engine's zone.
func (e *Engine) Today() time.Time {
	return e.day(e.now())
}

func (e *Engine) day(t time.Time) time.Time {
	y, m, d := t.In(e.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.loc)
}

// SalesSummary sums final amounts for the day, week (from Monday), month and
// year that end with asOf's day.
func (e *Engine) SalesSummary(ctx context.Context, asOf time.Time) (SalesSummary, error) {
	day := e.day(asOf)
	end := day.AddDate(0, 0, 1)
	weekStart := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, e.loc)
	yearStart := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, e.loc)

	var summary SalesSummary
	windows := []struct {
		from time.Time
		dest *decimal.Decimal
	}{
		{day, &summary.Daily},
		{weekStart, &summary.Weekly},
		{monthStart, &summary.Monthly},
		{yearStart, &summary.Yearly},
	}
	for _, w := range windows {
		total, err := e.source.SumFinalAmount(ctx, w.from, end)
		if err != nil {
			return SalesSummary{}, fmt.Errorf("failed to sum sales since %s: %w", w.from.Format(time.DateOnly), err)
		}
		*w.dest = total.Round(2)
	}

	return summary, nil
}

// TopProducts ranks products by quantity sold, ties broken by name.
func (e *Engine) TopProducts(ctx context.Context, limit int) ([]ProductQuantity, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	rows, err := e.source.QuantityByProduct(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}

	top := make([]ProductQuantity, 0, len(rows))
	for _, r := range rows {
		if len(top) == limit {
			break
		}
		top = append(top, ProductQuantity{Name: r.Name, TotalQuantity: r.TotalQuantity})
	}
	return top, nil
}

// MonthlySeries totals final amounts per calendar month for orders placed in
// the windowDays before asOf's day, through the end of that day.
func (e *Engine) MonthlySeries(ctx context.Context, asOf time.Time, windowDays int) ([]MonthlyTotal, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	day := e.day(asOf)

	rows, err := e.source.OrderAmounts(ctx, day.AddDate(0, 0, -windowDays), day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly sales: %w", err)
	}

	series := make([]MonthlyTotal, 0, 13)
	var lastYear int
	var lastMonth time.Month
	for _, r := range rows {
		t := r.OrderTime.In(e.loc)
		if len(series) == 0 || t.Year() != lastYear || t.Month() != lastMonth {
			lastYear, lastMonth = t.Year(), t.Month()
			series = append(series, MonthlyTotal{
				Label: fmt.Sprintf("%s %d", lastMonth, lastYear),
				Total: decimal.Zero,
			})
		}
		cur := &series[len(series)-1]
		cur.Total = cur.Total.Add(r.FinalAmount)
	}
	for i := range series {
		series[i].Total = series[i].Total.Round(2)
	}

	return series, nil
}

// ProductRevenue sums the purchase-time item prices per product name.
func (e *Engine) ProductRevenue(ctx context.Context) ([]ProductRevenue, error) {
	rows, err := e.source.RevenueByProduct(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum product revenue: %w", err)
	}

	revenue := make([]ProductRevenue, 0, len(rows))
	for _, r := range rows {
		revenue = append(revenue, ProductRevenue{Name: r.Name, TotalRevenue: r.Revenue.Round(2)})
	}
	return revenue, nil
}

// Report builds the full analytics view for asOf, served from the cache when
// one is configured and holds a current entry.
func (e *Engine) Report(ctx context.Context, asOf time.Time) (*Report, error) {
	day := e.day(asOf)

	key, useCache := "", false
	if e.cache != nil {
		key, useCache = e.cacheKey(ctx, day)
	}
	if useCache {
		var cached Report
		err := e.cache.GetJSON(ctx, key, &cached)
		switch {
		case err == nil:
			return &cached, nil
		case !errors.Is(err, repository.ErrCacheMiss):
			e.logger.Warn("Analytics cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	report, err := e.build(ctx, day)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := e.cache.SetJSON(ctx, key, report, e.cacheTTL); err != nil {
			e.logger.Warn("Analytics cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

func (e *Engine) build(ctx context.Context, day time.Time) (*Report, error) {
	summary, err := e.SalesSummary(ctx, day)
	if err != nil {
		return nil, err
	}
	top, err := e.TopProducts(ctx, DefaultTopLimit)
	if err != nil {
		return nil, err
	}
	series, err := e.MonthlySeries(ctx, day, DefaultWindowDays)
	if err != nil {
		return nil, err
	}
	revenue, err := e.ProductRevenue(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		AsOf:                 day.Format(time.DateOnly),
		SalesSummary:         summary,
		PopularProducts:      top,
		MonthlySalesLastYear: series,
		ProductSales:         revenue,
	}, nil
}

// Invalidate retires every cached report. Entries are keyed by a generation
// counter, so bumping it is enough; old entries expire on their own.
func (e *Engine) Invalidate(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if _, err := e.cache.Incr(ctx, generationKey); err != nil {
		e.logger.Warn("Analytics cache invalidation failed", zap.Error(err))
	}
}

// cacheKey reports false when the current generation cannot be read, in
// which case the cache is bypassed.
func (e *Engine) cacheKey(ctx context.Context, day time.Time) (string, bool) {
	gen, err := e.cache.GetInt(ctx, generationKey)
	if err != nil {
		e.logger.Warn("Analytics cache generation read failed", zap.Error(err))
		return "", false
	}
	return fmt.Sprintf("analytics:report:%d:%s:%s", gen, e.loc.String(), day.Format(time.DateOnly)), true
}

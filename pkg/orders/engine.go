package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/possales/pkg/models"
	"github.com/example/possales/pkg/repository"
	"go.uber.org/zap"
)

type Engine struct {
	store  *repository.Store
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Engine)

// WithClock replaces the clock used to stamp new orders.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store *repository.Store, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: logger.Named("orders"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Finalize prices cart against the current catalog and stores the order with
// one item per valid entry. Either every row is committed or none is.
func (e *Engine) Finalize(ctx context.Context, userID uint, cart []CartItem) (*models.Order, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidRequest)
	}
	if len(cart) == 0 {
		return nil, fmt.Errorf("%w: no items provided", ErrInvalidRequest)
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "begin order", Err: err}
	}
	defer tx.Rollback()

	catalog, err := tx.Products().FindByIDs(ctx, productIDs(cart))
	if err != nil {
		return nil, &PersistenceError{Op: "load products", Err: err}
	}

	lines, total := Price(cart, catalog)
	if total.IsZero() {
		e.logger.Info("Rejected order without priced items",
			zap.Uint("user_id", userID),
			zap.Int("entries", len(cart)))
		return nil, ErrEmptyOrder
	}

	gst, final := Totals(total)
	order := &models.Order{
		UserID:      userID,
		TotalAmount: total,
		GSTAmount:   gst,
		FinalAmount: final,
		OrderTime:   e.now().UTC(),
		Status:      models.OrderStatusPending,
	}

	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, &PersistenceError{Op: "create order", Err: err}
	}

	for i := range lines {
		lines[i].OrderID = order.ID
		if err := tx.Orders().AddItem(ctx, &lines[i]); err != nil {
			return nil, &PersistenceError{Op: "create order item", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &PersistenceError{Op: "commit order", Err: err}
	}
	order.Items = lines

	e.logger.Info("Order finalized",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.Int("items", len(lines)),
		zap.String("final_amount", final.StringFixed(2)))

	return order, nil
}

// History returns the user's orders, newest first.
func (e *Engine) History(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := e.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// Order returns one of the user's orders or repository.ErrNotFound.
func (e *Engine) Order(ctx context.Context, orderID, userID uint) (*models.Order, error) {
	order, err := e.store.Orders().FindForUser(ctx, orderID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get order", Err: err}
	}
	return order, nil
}

func (e *Engine) Catalog(ctx context.Context) ([]models.Product, error) {
	products, err := e.store.Products().List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list products", Err: err}
	}
	return products, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Store is the unit-of-work entry point. Repositories taken from the Store
// run outside any transaction; Begin hands out a Tx whose repositories all
// share one transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Products() *ProductRepository { return &ProductRepository{db: s.db} }
func (s *Store) Users() *UserRepository { return &UserRepository{db: s.db} }
func (s *Store) Orders() *OrderRepository { return &OrderRepository{db: s.db} }
func (s *Store) Analytics() *AnalyticsRepository { return &AnalyticsRepository{db: s.db} }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &Tx{db: tx}, nil
}

// ErrTxDone is returned when a finished transaction is committed again.
var ErrTxDone = errors.New("transaction already finished")

type Tx struct {
	db   *gorm.DB
	done bool
}

func (t *Tx) Products() *ProductRepository { return &ProductRepository{db: t.db} }
func (t *Tx) Users() *UserRepository { return &UserRepository{db: t.db} }
func (t *Tx) Orders() *OrderRepository { return &OrderRepository{db: t.db} }

func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.db.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback is a no-op once the transaction has been committed or rolled
// back, so it is safe to defer.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.db.Rollback().Error
}

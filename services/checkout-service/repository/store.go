package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyRecorded = errors.New("payment intent already recorded")
	ErrConflict        = errors.New("unique constraint conflict")
	ErrReferenced      = errors.New("record is still referenced")
)

// Repositories is the set of stores bound to one database handle.
type Repositories interface {
	Inventory() InventoryRepository
	Carts() CartRepository
	Ledger() LedgerRepository
	Users() UserRepository
}

// Transactor runs fn with repositories bound to a single database transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	Repositories
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}

type GormStore struct {
	db        *gorm.DB
	inventory InventoryRepository
	carts     CartRepository
	ledger    LedgerRepository
	users     UserRepository
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:        db,
		inventory: NewGormInventoryRepository(db),
		carts:     NewGormCartRepository(db),
		ledger:    NewGormLedgerRepository(db),
		users:     NewGormUserRepository(db),
	}
}

func (s *GormStore) Inventory() InventoryRepository { return s.inventory }
func (s *GormStore) Carts() CartRepository          { return s.carts }
func (s *GormStore) Ledger() LedgerRepository       { return s.ledger }
func (s *GormStore) Users() UserRepository          { return s.users }

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormStore(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"freight/models"
)

// ErrRowShape - строка из базы не прошла проверку публичной формы.
// Отдельный вид ошибки, чтобы дрейф схемы не маскировался под ошибку запроса.
var ErrRowShape = errors.New("row shape mismatch")

var rowValidator = models.NewValidator()

func validateRow(v interface{}) error {
	if err := rowValidator.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrRowShape, err)
	}
	return nil
}

// querier покрывает и Manager, и *sqlx.Tx: композиция агрегатов работает
// одинаково в транзакции и вне её.
type querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type Storage struct {
	db *Manager
}

func NewStorage(db *Manager) *Storage {
	return &Storage{db: db}
}

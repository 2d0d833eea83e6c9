package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const (
	connectAttempts = 3
	connectBackoff  = 1000 * time.Millisecond
)

// Manager владеет пулом соединений и даёт репозиторию узкий контракт:
// запрос, транзакция, статистика пула.
type Manager struct {
	db  *sqlx.DB
	log zerolog.Logger

	mu    sync.Mutex
	ready bool
}

// PoolStats - текущее состояние пула соединений
type PoolStats struct {
	Total   int `json:"total"`
	Idle    int `json:"idle"`
	Waiting int `json:"waiting"`
}

func NewManager(dsn string, maxOpenConns, maxIdleConns int, log zerolog.Logger) (*Manager, error) {
	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if maxOpenConns > 0 {
		conn.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		conn.SetMaxIdleConns(maxIdleConns)
	}
	return &Manager{db: conn, log: log}, nil
}

// Connect проверяет соединение с базой, до 3 попыток с линейным backoff.
// Конкурентные вызовы объединяются: пока идёт попытка, остальные ждут на мьютексе.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err := m.db.PingContext(ctx); err != nil {
			lastErr = err
			m.log.Warn().
				Int("attempt", attempt).
				Int("max_attempts", connectAttempts).
				Err(err).
				Msg("database connection attempt failed")
			if attempt < connectAttempts {
				select {
				case <-time.After(time.Duration(attempt) * connectBackoff):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			continue
		}
		m.ready = true
		m.log.Info().Msg("database connection pool initialized")
		return nil
	}
	return fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, lastErr)
}

func (m *Manager) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := m.db.GetContext(ctx, dest, query, args...)
	m.logQuery(query, start, err)
	return err
}

func (m *Manager) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := m.db.SelectContext(ctx, dest, query, args...)
	m.logQuery(query, start, err)
	return err
}

func (m *Manager) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := m.db.ExecContext(ctx, query, args...)
	m.logQuery(query, start, err)
	return res, err
}

// InTransaction выполняет fn в одной транзакции: COMMIT при успехе,
// ROLLBACK при любой ошибке, соединение возвращается в пул в обоих случаях.
// Исходная ошибка отдаётся наверх без изменений.
func (m *Manager) InTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			m.log.Error().Err(rbErr).Msg("rollback failed")
		}
		m.log.Error().Err(err).Msg("transaction rolled back")
		return err
	}
	return tx.Commit()
}

func (m *Manager) Stats() PoolStats {
	s := m.db.Stats()
	return PoolStats{
		Total:   s.OpenConnections,
		Idle:    s.Idle,
		Waiting: int(s.WaitCount),
	}
}

func (m *Manager) DB() *sqlx.DB {
	return m.db
}

// Close дренирует и закрывает пул.
func (m *Manager) Close() error {
	m.log.Info().Msg("shutting down database connection pool")
	m.mu.Lock()
	m.ready = false
	m.mu.Unlock()
	return m.db.Close()
}

func (m *Manager) logQuery(query string, start time.Time, err error) {
	duration := time.Since(start)
	if err != nil && err != sql.ErrNoRows {
		m.log.Error().Str("query", query).Dur("duration", duration).Err(err).Msg("database query failed")
		return
	}
	m.log.Debug().Str("query", query).Dur("duration", duration).Msg("executed query")
}

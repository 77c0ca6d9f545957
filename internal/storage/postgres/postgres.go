package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/steamfriends/internal/setup/config"
	"github.com/robalyx/steamfriends/internal/storage"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bunotel"
	"go.uber.org/zap"
)

// Record is a single persisted key/value row.
type Record struct {
	bun.BaseModel `bun:"table:steam_friend_records,alias:r"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Backend stores values in a PostgreSQL table through bun.
type Backend struct {
	db     *bun.DB
	logger *zap.Logger
}

// New connects to PostgreSQL and creates the records table if it is missing.
func New(ctx context.Context, cfg *config.PostgreSQL, logger *zap.Logger) (*Backend, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(true),
		pgdriver.WithApplicationName("steamfriends"),
	))

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(NewQueryHook(logger.Named("postgres_query")))
	db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithDBName(cfg.DBName)))

	if _, err := db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	logger.Info("Database connection established")

	return &Backend{
		db:     db,
		logger: logger.Named("postgres_store"),
	}, nil
}

// Get reads the value stored for key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}

	var record Record
	err := b.db.NewSelect().
		Model(&record).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select %s: %w", key, err)
	}

	return []byte(record.Value), nil
}

// Put inserts or replaces the value stored for key.
func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}

	record := &Record{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}

	_, err := b.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}

	return nil
}

// Close closes the database connection pool.
func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		b.logger.Error("Failed to close database connection", zap.Error(err))
		return err
	}

	b.logger.Info("Database connection closed")

	return nil
}

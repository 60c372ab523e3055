package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"listing-organizer/internal/contextkeys"
	"listing-organizer/internal/core/domain"
	"listing-organizer/internal/core/port"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier - часть *pgxpool.Pool, которой пользуется кэш.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createTableQuery = `
CREATE TABLE IF NOT EXISTS property_cache (
	owner_id    TEXT        NOT NULL,
	property_id TEXT        NOT NULL,
	payload     JSONB       NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (owner_id, property_id)
)`

// PostgresPropertyCache хранит последние известные версии объектов пользователя.
// Записи старше maxAge считаются промахом.
type PostgresPropertyCache struct {
	db     Querier
	maxAge time.Duration
	now    func() time.Time
}

var _ port.PropertyCachePort = (*PostgresPropertyCache)(nil)

func NewPostgresPropertyCache(db Querier, maxAge time.Duration) (*PostgresPropertyCache, error) {
	if db == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPropertyCache{db: db, maxAge: maxAge, now: time.Now}, nil
}

// EnsureSchema создает таблицу кэша, если ее еще нет.
func (c *PostgresPropertyCache) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create property_cache table: %w", err)
	}
	return nil
}

func (c *PostgresPropertyCache) Get(ctx context.Context, ownerID, propertyID string) (*domain.Property, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "PostgresPropertyCache",
		"method":      "Get",
		"property_id": propertyID,
	})

	query := `SELECT payload FROM property_cache WHERE owner_id = $1 AND property_id = $2 AND updated_at > $3`
	var payload []byte
	err := c.db.QueryRow(ctx, query, ownerID, propertyID, c.now().Add(-c.maxAge)).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCacheMiss
		}
		repoLogger.Error("Failed to read cached property", err, nil)
		return nil, fmt.Errorf("failed to read cached property: %w", err)
	}

	var property domain.Property
	if err := json.Unmarshal(payload, &property); err != nil {
		repoLogger.Warn("Corrupted cache entry, treating as miss", port.Fields{"error": err.Error()})
		return nil, domain.ErrCacheMiss
	}
	return &property, nil
}

func (c *PostgresPropertyCache) Put(ctx context.Context, ownerID string, property domain.Property) error {
	if property.ID == "" {
		return fmt.Errorf("%w: property without id", domain.ErrInvalidIdentifier)
	}
	payload, err := json.Marshal(property)
	if err != nil {
		return fmt.Errorf("failed to encode property: %w", err)
	}

	query := `
		INSERT INTO property_cache (owner_id, property_id, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, property_id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := c.db.Exec(ctx, query, ownerID, property.ID, payload, c.now()); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to upsert cached property", err, port.Fields{
			"component":   "PostgresPropertyCache",
			"property_id": property.ID,
		})
		return fmt.Errorf("failed to store property: %w", err)
	}
	return nil
}

func (c *PostgresPropertyCache) Delete(ctx context.Context, ownerID, propertyID string) error {
	query := `DELETE FROM property_cache WHERE owner_id = $1 AND property_id = $2`
	if _, err := c.db.Exec(ctx, query, ownerID, propertyID); err != nil {
		return fmt.Errorf("failed to delete cached property: %w", err)
	}
	return nil
}

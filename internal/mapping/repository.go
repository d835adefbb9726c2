// Package mapping resolves broker epics to market data tickers and
// persists the validated associations.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/database"
)

// Repository stores validated symbol mappings.
type Repository interface {
	Get(ctx context.Context, epic string) (contracts.SymbolMapping, bool, error)
	Put(ctx context.Context, m contracts.SymbolMapping) error
	List(ctx context.Context) ([]contracts.SymbolMapping, error)
	Delete(ctx context.Context, epic string) error
}

// PostgresRepository persists mappings in edge10.symbol_mappings.
type PostgresRepository struct {
	db *database.DB
}

func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, epic string) (contracts.SymbolMapping, bool, error) {
	var m contracts.SymbolMapping
	err := r.db.Pool.QueryRow(ctx, `
		SELECT epic, ticker, confidence, validated_at
		FROM edge10.symbol_mappings
		WHERE epic = $1`, epic,
	).Scan(&m.Epic, &m.Ticker, &m.Confidence, &m.ValidatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.SymbolMapping{}, false, nil
	}
	if err != nil {
		return contracts.SymbolMapping{}, false, fmt.Errorf("get mapping %s: %w", epic, err)
	}
	return m, true, nil
}

func (r *PostgresRepository) Put(ctx context.Context, m contracts.SymbolMapping) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO edge10.symbol_mappings (epic, ticker, confidence, validated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (epic) DO UPDATE
		SET ticker = EXCLUDED.ticker,
		    confidence = EXCLUDED.confidence,
		    validated_at = EXCLUDED.validated_at`,
		m.Epic, m.Ticker, m.Confidence, m.ValidatedAt)
	if err != nil {
		return fmt.Errorf("put mapping %s: %w", m.Epic, err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]contracts.SymbolMapping, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT epic, ticker, confidence, validated_at
		FROM edge10.symbol_mappings
		ORDER BY epic`)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var out []contracts.SymbolMapping
	for rows.Next() {
		var m contracts.SymbolMapping
		if err := rows.Scan(&m.Epic, &m.Ticker, &m.Confidence, &m.ValidatedAt); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Delete(ctx context.Context, epic string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM edge10.symbol_mappings WHERE epic = $1`, epic)
	if err != nil {
		return fmt.Errorf("delete mapping %s: %w", epic, err)
	}
	return nil
}

// MemoryRepository is an in-process Repository used when no database
// is configured and in tests.
type MemoryRepository struct {
	mu       sync.Mutex
	mappings map[string]contracts.SymbolMapping
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{mappings: make(map[string]contracts.SymbolMapping)}
}

func (r *MemoryRepository) Get(_ context.Context, epic string) (contracts.SymbolMapping, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[epic]
	return m, ok, nil
}

func (r *MemoryRepository) Put(_ context.Context, m contracts.SymbolMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[m.Epic] = m
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]contracts.SymbolMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]contracts.SymbolMapping, 0, len(r.mappings))
	for _, m := range r.mappings {
		out = append(out, m)
	}
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, epic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mappings, epic)
	return nil
}

// Package store persists normalized attribute snapshots in PostgreSQL.
// Only inputs are stored; scores are recomputed on every ranking pass.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/swingscan/internal/contracts"
)

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS swingscan;

	CREATE TABLE IF NOT EXISTS swingscan.attribute_snapshots (
		symbol      TEXT        NOT NULL,
		fetched_at  TIMESTAMPTZ NOT NULL,
		sector      TEXT        NOT NULL,
		price       NUMERIC     NOT NULL,
		attributes  JSONB       NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (symbol, fetched_at)
	);

	CREATE INDEX IF NOT EXISTS idx_attribute_snapshots_latest
		ON swingscan.attribute_snapshots (symbol, fetched_at DESC);
`

// Repository handles attribute snapshot persistence
// ⭐ SSOT: 스냅샷 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the snapshot table when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveSnapshots stores every successful result and returns how many were written
func (r *Repository) SaveSnapshots(ctx context.Context, results []contracts.FetchResult) (int, error) {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO swingscan.attribute_snapshots (symbol, fetched_at, sector, price, attributes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, fetched_at) DO UPDATE SET
			sector = EXCLUDED.sector,
			price = EXCLUDED.price,
			attributes = EXCLUDED.attributes`

	for _, res := range results {
		if !res.OK() {
			continue
		}

		attrsJSON, err := json.Marshal(res.Attributes)
		if err != nil {
			return 0, fmt.Errorf("marshal %s: %w", res.Symbol, err)
		}

		batch.Queue(query,
			res.Attributes.Ticker,
			res.FetchedAt,
			string(res.Attributes.Sector),
			res.Attributes.Price,
			attrsJSON,
		)
	}

	if batch.Len() == 0 {
		return 0, nil
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	saved := 0
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return saved, fmt.Errorf("insert snapshot: %w", err)
		}
		saved++
	}

	return saved, nil
}

// LatestAttributes returns the newest snapshot per symbol, in the order of
// symbols. Symbols with no snapshot are skipped.
func (r *Repository) LatestAttributes(ctx context.Context, symbols []string) ([]contracts.StockAttributes, error) {
	if len(symbols) == 0 {
		return []contracts.StockAttributes{}, nil
	}

	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(s)
	}

	query := `
		SELECT DISTINCT ON (symbol) symbol, attributes
		FROM swingscan.attribute_snapshots
		WHERE symbol = ANY($1)
		ORDER BY symbol, fetched_at DESC`

	rows, err := r.pool.Query(ctx, query, upper)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshots: %w", err)
	}
	defer rows.Close()

	bySymbol := make(map[string]contracts.StockAttributes, len(upper))
	for rows.Next() {
		var symbol string
		var raw []byte
		if err := rows.Scan(&symbol, &raw); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		var a contracts.StockAttributes
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", symbol, err)
		}
		bySymbol[symbol] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orderBySymbols(upper, bySymbol), nil
}

func orderBySymbols(symbols []string, bySymbol map[string]contracts.StockAttributes) []contracts.StockAttributes {
	out := make([]contracts.StockAttributes, 0, len(symbols))
	for _, s := range symbols {
		if a, ok := bySymbol[s]; ok {
			out = append(out, a)
		}
	}
	return out
}

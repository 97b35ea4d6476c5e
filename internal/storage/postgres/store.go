package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rbtr/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	chain_id        BIGINT      NOT NULL,
	pool_address    TEXT        NOT NULL,
	block_number    BIGINT      NOT NULL,
	observed_at     TIMESTAMPTZ NOT NULL,
	tick_spacing    INTEGER     NOT NULL,
	tick            INTEGER     NOT NULL,
	sqrt_price_x96  NUMERIC(49) NOT NULL,
	liquidity       NUMERIC(39) NOT NULL,
	price           TEXT,
	unlocked        BOOLEAN     NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address, block_number)
)`

// Store provides Postgres persistence for pool snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// PutSnapshotBatch inserts snapshots. A snapshot for a block already stored is skipped.
func (s *Store) PutSnapshotBatch(ctx context.Context, snapshots []model.PoolSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		observedAt, err := time.Parse(time.RFC3339Nano, snap.ObservedAt)
		if err != nil {
			return fmt.Errorf("snapshot observed_at: %w", err)
		}
		var price *string
		if snap.Price != "" {
			price = &snap.Price
		}
		batch.Queue(`
			INSERT INTO pool_snapshots (
				chain_id, pool_address, block_number, observed_at, tick_spacing, tick,
				sqrt_price_x96, liquidity, price, unlocked
			) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9, $10)
			ON CONFLICT (chain_id, pool_address, block_number) DO NOTHING
		`,
			int64(snap.ChainID),
			snap.Pool,
			int64(snap.BlockNumber),
			observedAt,
			snap.TickSpacing,
			snap.Tick,
			snap.SqrtPriceX96,
			snap.Liquidity,
			price,
			snap.Unlocked,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot stored for a pool.
func (s *Store) LatestSnapshot(ctx context.Context, chainID uint64, poolAddress string) (model.PoolSnapshot, bool, error) {
	var (
		snap       model.PoolSnapshot
		chain      int64
		block      int64
		observedAt time.Time
		price      *string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT chain_id, pool_address, block_number, observed_at, tick_spacing, tick,
			sqrt_price_x96::text, liquidity::text, price, unlocked
		FROM pool_snapshots
		WHERE chain_id = $1 AND pool_address = $2
		ORDER BY block_number DESC
		LIMIT 1
	`, int64(chainID), poolAddress)
	err := row.Scan(&chain, &snap.Pool, &block, &observedAt, &snap.TickSpacing, &snap.Tick,
		&snap.SqrtPriceX96, &snap.Liquidity, &price, &snap.Unlocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolSnapshot{}, false, nil
		}
		return model.PoolSnapshot{}, false, err
	}
	snap.ChainID = uint64(chain)
	snap.BlockNumber = uint64(block)
	snap.ObservedAt = observedAt.UTC().Format(time.RFC3339Nano)
	if price != nil {
		snap.Price = *price
	}
	return snap, true, nil
}

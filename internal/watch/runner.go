package watch

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rbtr/internal/dex"
	"rbtr/internal/model"
	"rbtr/internal/storage"
)

// PoolReader is the part of *dex.Pool the runner needs.
type PoolReader interface {
	Address() common.Address
	Snapshot(ctx context.Context) (dex.PoolState, error)
}

// ChainInfo supplies chain id and head block for snapshot stamping.
type ChainInfo interface {
	ChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// RunConfig holds runtime settings for the watcher.
type RunConfig struct {
	Interval     time.Duration
	Count        int
	MaxRetries   int
	RetryBackoff time.Duration
	// Decimals of token0 and token1; price is omitted when nil.
	Decimals *[2]uint8
}

// Runner polls pool state and writes snapshots to storage.
type Runner struct {
	cfg     RunConfig
	pool    PoolReader
	chain   ChainInfo
	storage storage.Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewRunner builds a Runner with its dependencies. chainInfo may be nil, in
// which case chain id and block number are left zero.
func NewRunner(cfg RunConfig, pool PoolReader, chainInfo ChainInfo, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		pool:    pool,
		chain:   chainInfo,
		storage: storageSink,
		logger:  logger,
		now:     time.Now,
	}
}

// Run polls until Count snapshots are written or the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("pool is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	var chainID uint64
	if r.chain != nil {
		id, err := r.chainIDWithRetry(ctx)
		if err != nil {
			return fmt.Errorf("get chain id: %w", err)
		}
		if !id.IsUint64() {
			return fmt.Errorf("chain id does not fit in uint64: %s", id)
		}
		chainID = id.Uint64()
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for polls := 0; ; {
		snap, err := r.poll(ctx, chainID)
		if err != nil {
			return err
		}
		if err := r.storage.PutSnapshotBatch(ctx, []model.PoolSnapshot{snap}); err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
		polls++

		r.logger.Info("snapshot stored",
			zap.String("pool", snap.Pool),
			zap.Uint64("block", snap.BlockNumber),
			zap.Int64("tick", snap.Tick),
			zap.Int64("tick_spacing", snap.TickSpacing),
			zap.String("price", snap.Price),
		)

		if r.cfg.Count > 0 && polls >= r.cfg.Count {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) poll(ctx context.Context, chainID uint64) (model.PoolSnapshot, error) {
	var block uint64
	if r.chain != nil {
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			block, err = r.chain.LatestBlockNumber(ctx)
			if err != nil {
				r.logger.Warn("latest block fetch failed", zap.Error(err))
			}
			return err
		})
		if err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("get latest block: %w", err)
		}
	}

	var state dex.PoolState
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		state, err = r.pool.Snapshot(ctx)
		if err != nil {
			r.logger.Warn("pool snapshot failed", zap.String("pool", r.pool.Address().Hex()), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("pool snapshot: %w", err)
	}

	return buildSnapshot(chainID, block, r.pool.Address(), state, r.cfg.Decimals, r.now()), nil
}

func (r *Runner) chainIDWithRetry(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		id, err = r.chain.ChainID(ctx)
		if err != nil {
			r.logger.Warn("chain id fetch failed", zap.Error(err))
		}
		return err
	})
	return id, err
}

func buildSnapshot(chainID, block uint64, pool common.Address, state dex.PoolState, decimals *[2]uint8, observedAt time.Time) model.PoolSnapshot {
	snap := model.PoolSnapshot{
		ChainID:      chainID,
		Pool:         pool.Hex(),
		BlockNumber:  block,
		ObservedAt:   observedAt.UTC().Format(time.RFC3339Nano),
		TickSpacing:  state.TickSpacing,
		Tick:         state.Slot0.Tick,
		SqrtPriceX96: bigString(state.Slot0.SqrtPriceX96),
		Liquidity:    bigString(state.Liquidity),
		Unlocked:     state.Slot0.Unlocked,
	}
	if decimals != nil {
		snap.Price = dex.PriceFromSqrtX96(state.Slot0.SqrtPriceX96, decimals[0], decimals[1])
	}
	return snap
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

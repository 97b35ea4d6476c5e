package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rbtr/internal/dex"
	"rbtr/internal/storage"
	"rbtr/internal/storage/postgres"
	"rbtr/internal/watch"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pool, err := s.resolvePool(ctx)
	if err != nil {
		return err
	}

	var sink storage.Storage
	if s.run.PGDSN != "" {
		store, err := postgres.NewStore(ctx, s.run.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		logLastStored(ctx, s, store, pool.Address())
		sink = store
	} else {
		if s.run.Out == "" {
			return fmt.Errorf("output path is required")
		}
		sink = storage.NewJsonlStorage(s.run.Out)
	}

	decimals, err := poolDecimals(ctx, pool, s.client)
	if err != nil {
		s.logger.Warn("token decimals unavailable, price omitted", zap.String("pool", pool.Address().Hex()), zap.Error(err))
	}

	runner := watch.NewRunner(watch.RunConfig{
		Interval:     s.run.Interval,
		Count:        s.run.Count,
		MaxRetries:   s.run.MaxRetries,
		RetryBackoff: s.run.RetryBackoff,
		Decimals:     decimals,
	}, pool, s.client, sink, s.logger)

	s.logger.Info("watch start",
		zap.String("pool", pool.Address().Hex()),
		zap.String("endpoint", s.run.Endpoint),
		zap.Duration("interval", s.run.Interval),
		zap.Int("count", s.run.Count),
		zap.Bool("postgres", s.run.PGDSN != ""),
		zap.String("out", s.run.Out),
	)

	return runner.Run(ctx)
}

func poolDecimals(ctx context.Context, pool *dex.Pool, caller dex.Caller) (*[2]uint8, error) {
	token0, err := pool.Token0(ctx)
	if err != nil {
		return nil, err
	}
	token1, err := pool.Token1(ctx)
	if err != nil {
		return nil, err
	}

	var out [2]uint8
	for i, address := range [2]common.Address{token0, token1} {
		token, err := dex.NewToken(address, caller)
		if err != nil {
			return nil, err
		}
		if out[i], err = token.Decimals(ctx); err != nil {
			return nil, fmt.Errorf("token %s: %w", address.Hex(), err)
		}
	}
	return &out, nil
}

func logLastStored(ctx context.Context, s *session, store *postgres.Store, pool common.Address) {
	chainID, err := s.client.ChainID(ctx)
	if err != nil || !chainID.IsUint64() {
		return
	}
	last, ok, err := store.LatestSnapshot(ctx, chainID.Uint64(), pool.Hex())
	if err != nil {
		s.logger.Warn("latest stored snapshot lookup failed", zap.Error(err))
		return
	}
	if ok {
		s.logger.Info("resuming after stored snapshot", zap.Uint64("block", last.BlockNumber), zap.String("observed_at", last.ObservedAt))
	}
}

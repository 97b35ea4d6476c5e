package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rbtr/internal/chain"
	"rbtr/internal/config"
	"rbtr/internal/dex"
	"rbtr/internal/model"
)

func main() {
	root := &cobra.Command{
		Use:          "rbtr",
		Short:        "Read-only Uniswap V3 pool client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "./rbtr.toml", "operator config file (url_one, url_two, token_one, token_two)")
	root.PersistentFlags().String("endpoint", config.EndpointOne, "which configured RPC URL to use (one, two)")
	root.PersistentFlags().String("pool", "", "pool address; resolved from the factory when empty")
	root.PersistentFlags().String("factory", dex.UniswapV3FactoryAddress.Hex(), "V3 factory address used to resolve the pool")
	root.PersistentFlags().Uint32("fee", 3000, "fee tier used to resolve the pool")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Print tick spacing and current tick of the pool",
		RunE:  runPool,
	}
	poolCmd.Flags().Bool("slot0", false, "also print the full slot0 tuple")
	root.AddCommand(poolCmd)

	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Print ERC20 metadata of the configured tokens",
		RunE:  runTokens,
	}
	root.AddCommand(tokensCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll pool state and store snapshots",
		RunE:  runWatch,
	}
	watchCmd.Flags().Duration("interval", 12*time.Second, "poll interval")
	watchCmd.Flags().Int("count", 0, "number of snapshots to take, 0 means until interrupted")
	watchCmd.Flags().String("out", "./data/snapshots.jsonl", "output JSONL path")
	watchCmd.Flags().String("pg-dsn", "", "Postgres DSN; when set snapshots go to Postgres instead of JSONL")
	watchCmd.Flags().Int("max-retries", 5, "maximum retry attempts per RPC call")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// session bundles what every command needs after startup.
type session struct {
	cfg    config.Config
	run    config.RunConfig
	logger *zap.Logger
	client *chain.Client
}

func (s *session) Close() {
	if s.client != nil {
		s.client.Close()
	}
	_ = s.logger.Sync()
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	runCfg, err := config.LoadRun(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(runCfg.LogLevel)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Parse(runCfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	endpoint, err := cfg.Endpoint(runCfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := chain.NewClient(ctx, endpoint.String())
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	logger.Debug("rpc connected", zap.String("endpoint", runCfg.Endpoint), zap.String("host", endpoint.Host))

	return &session{cfg: cfg, run: runCfg, logger: logger, client: client}, nil
}

// resolvePool uses --pool when given, otherwise asks the factory for the
// token_one/token_two pool at --fee.
func (s *session) resolvePool(ctx context.Context) (*dex.Pool, error) {
	var address common.Address
	if s.run.Pool != "" {
		if !common.IsHexAddress(s.run.Pool) {
			return nil, fmt.Errorf("invalid pool address: %s", s.run.Pool)
		}
		address = common.HexToAddress(s.run.Pool)
	} else {
		if !common.IsHexAddress(s.run.Factory) {
			return nil, fmt.Errorf("invalid factory address: %s", s.run.Factory)
		}
		factory, err := dex.NewFactory(common.HexToAddress(s.run.Factory), s.client)
		if err != nil {
			return nil, err
		}
		address, err = factory.GetPool(ctx, s.cfg.TokenOne, s.cfg.TokenTwo, s.run.Fee)
		if err != nil {
			return nil, fmt.Errorf("resolve pool: %w", err)
		}
		s.logger.Info("pool resolved",
			zap.String("factory", factory.Address().Hex()),
			zap.String("pool", address.Hex()),
			zap.Uint32("fee", s.run.Fee),
		)
	}
	return dex.NewPool(address, s.client)
}

type poolReport struct {
	Pool        string     `json:"pool"`
	TickSpacing int64      `json:"tick_spacing"`
	CurrentTick int64      `json:"current_tick"`
	Slot0       *slot0JSON `json:"slot0,omitempty"`
}

type slot0JSON struct {
	SqrtPriceX96               string `json:"sqrt_price_x96"`
	ObservationIndex           uint16 `json:"observation_index"`
	ObservationCardinality     uint16 `json:"observation_cardinality"`
	ObservationCardinalityNext uint16 `json:"observation_cardinality_next"`
	FeeProtocol                uint8  `json:"fee_protocol"`
	Unlocked                   bool   `json:"unlocked"`
}

func runPool(cmd *cobra.Command, _ []string) error {
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

	spacing, err := pool.TickSpacing(ctx)
	if err != nil {
		return err
	}
	tick, err := pool.CurrentTick(ctx)
	if err != nil {
		return err
	}
	report := poolReport{
		Pool:        pool.Address().Hex(),
		TickSpacing: spacing,
		CurrentTick: tick,
	}

	if withSlot0, _ := cmd.Flags().GetBool("slot0"); withSlot0 {
		slot0, err := pool.Slot0(ctx)
		if err != nil {
			return err
		}
		report.Slot0 = &slot0JSON{
			SqrtPriceX96:               slot0.SqrtPriceX96.String(),
			ObservationIndex:           slot0.ObservationIndex,
			ObservationCardinality:     slot0.ObservationCardinality,
			ObservationCardinalityNext: slot0.ObservationCardinalityNext,
			FeeProtocol:                slot0.FeeProtocol,
			Unlocked:                   slot0.Unlocked,
		}
	}
	return writeJSON(cmd, report)
}

func runTokens(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	configured := []struct {
		role    string
		address common.Address
	}{
		{"token_one", s.cfg.TokenOne},
		{"token_two", s.cfg.TokenTwo},
	}
	metas := make([]model.TokenMeta, 0, len(configured))
	for _, c := range configured {
		token, err := dex.NewToken(c.address, s.client)
		if err != nil {
			return err
		}
		meta, err := token.Meta(ctx)
		if err != nil {
			return fmt.Errorf("%s %s: %w", c.role, c.address.Hex(), err)
		}
		meta.Role = c.role
		s.logger.Debug("token loaded", zap.String("role", c.role), zap.String("token", meta.Label()), zap.Uint8("decimals", meta.Decimals))
		metas = append(metas, meta)
	}
	return writeJSON(cmd, metas)
}

func writeJSON(cmd *cobra.Command, value interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

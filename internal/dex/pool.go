package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Slot0 mirrors the slot0() tuple in wire order.
type Slot0 struct {
	SqrtPriceX96               *big.Int
	Tick                       int64
	ObservationIndex           uint16
	ObservationCardinality     uint16
	ObservationCardinalityNext uint16
	FeeProtocol                uint8
	Unlocked                   bool
}

// FeeProtocol0 and FeeProtocol1 unpack the two 4-bit fee denominators.
func (s Slot0) FeeProtocol0() uint8 { return s.FeeProtocol & 0x0f }
func (s Slot0) FeeProtocol1() uint8 { return s.FeeProtocol >> 4 }

// TickInfo mirrors the ticks(int24) tuple.
type TickInfo struct {
	LiquidityGross                 *big.Int
	LiquidityNet                   *big.Int
	FeeGrowthOutside0X128          *big.Int
	FeeGrowthOutside1X128          *big.Int
	TickCumulativeOutside          int64
	SecondsPerLiquidityOutsideX128 *big.Int
	SecondsOutside                 uint32
	Initialized                    bool
}

// PositionInfo mirrors the positions(bytes32) tuple.
type PositionInfo struct {
	Liquidity                *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
	TokensOwed0              *big.Int
	TokensOwed1              *big.Int
}

// Observation mirrors the observations(uint256) tuple.
type Observation struct {
	BlockTimestamp                    uint32
	TickCumulative                    int64
	SecondsPerLiquidityCumulativeX128 *big.Int
	Initialized                       bool
}

// ProtocolFees holds the uncollected protocol fees per token.
type ProtocolFees struct {
	Token0 *big.Int
	Token1 *big.Int
}

// PoolState groups the mutable fields read by Snapshot.
type PoolState struct {
	TickSpacing int64
	Slot0       Slot0
	Liquidity   *big.Int
}

// Pool is a read-only binding to a V3 pool contract. It keeps no state besides
// the address and caller, so it is safe for concurrent use.
type Pool struct {
	c contract
}

// NewPool binds a pool address to a caller. The caller must outlive the binding.
func NewPool(address common.Address, caller Caller) (*Pool, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	return &Pool{c: contract{address: address, abi: poolABI, caller: caller}}, nil
}

// Address returns the bound pool address without a round trip.
func (p *Pool) Address() common.Address {
	return p.c.address
}

// TickSpacing returns the pool tick spacing.
func (p *Pool) TickSpacing(ctx context.Context) (int64, error) {
	values, err := p.c.call(ctx, "tickSpacing")
	if err != nil {
		return 0, err
	}
	return int24At("tickSpacing", values, 0)
}

// CurrentTick returns the tick field of slot0.
func (p *Pool) CurrentTick(ctx context.Context) (int64, error) {
	values, err := p.c.call(ctx, "slot0")
	if err != nil {
		return 0, err
	}
	return int24At("slot0", values, 1)
}

// Slot0 returns the full slot0 tuple.
func (p *Pool) Slot0(ctx context.Context) (Slot0, error) {
	const method = "slot0"
	values, err := p.c.call(ctx, method)
	if err != nil {
		return Slot0{}, err
	}

	var out Slot0
	sqrt, err := bigAt(method, values, 0)
	if err != nil {
		return Slot0{}, err
	}
	if out.SqrtPriceX96, err = CheckUint160(sqrt); err != nil {
		return Slot0{}, callErr(method, ErrNarrowing, err)
	}
	if out.Tick, err = int24At(method, values, 1); err != nil {
		return Slot0{}, err
	}
	if out.ObservationIndex, err = fieldAt[uint16](method, values, 2); err != nil {
		return Slot0{}, err
	}
	if out.ObservationCardinality, err = fieldAt[uint16](method, values, 3); err != nil {
		return Slot0{}, err
	}
	if out.ObservationCardinalityNext, err = fieldAt[uint16](method, values, 4); err != nil {
		return Slot0{}, err
	}
	if out.FeeProtocol, err = fieldAt[uint8](method, values, 5); err != nil {
		return Slot0{}, err
	}
	if out.Unlocked, err = fieldAt[bool](method, values, 6); err != nil {
		return Slot0{}, err
	}
	return out, nil
}

// Factory returns the deployer of the pool.
func (p *Pool) Factory(ctx context.Context) (common.Address, error) {
	return p.address(ctx, "factory")
}

// Token0 returns the lower-sorted token of the pair.
func (p *Pool) Token0(ctx context.Context) (common.Address, error) {
	return p.address(ctx, "token0")
}

// Token1 returns the higher-sorted token of the pair.
func (p *Pool) Token1(ctx context.Context) (common.Address, error) {
	return p.address(ctx, "token1")
}

// Fee returns the pool fee in hundredths of a bip.
func (p *Pool) Fee(ctx context.Context) (uint32, error) {
	values, err := p.c.call(ctx, "fee")
	if err != nil {
		return 0, err
	}
	return uint24At("fee", values, 0)
}

func (p *Pool) MaxLiquidityPerTick(ctx context.Context) (*big.Int, error) {
	return p.uint128(ctx, "maxLiquidityPerTick")
}

// Liquidity returns the in-range liquidity.
func (p *Pool) Liquidity(ctx context.Context) (*big.Int, error) {
	return p.uint128(ctx, "liquidity")
}

func (p *Pool) FeeGrowthGlobal0X128(ctx context.Context) (*big.Int, error) {
	return p.uint256(ctx, "feeGrowthGlobal0X128")
}

func (p *Pool) FeeGrowthGlobal1X128(ctx context.Context) (*big.Int, error) {
	return p.uint256(ctx, "feeGrowthGlobal1X128")
}

// ProtocolFees returns the protocol fees owed in each token.
func (p *Pool) ProtocolFees(ctx context.Context) (ProtocolFees, error) {
	const method = "protocolFees"
	values, err := p.c.call(ctx, method)
	if err != nil {
		return ProtocolFees{}, err
	}
	token0, err := bigAt(method, values, 0)
	if err != nil {
		return ProtocolFees{}, err
	}
	token1, err := bigAt(method, values, 1)
	if err != nil {
		return ProtocolFees{}, err
	}
	return ProtocolFees{Token0: token0, Token1: token1}, nil
}

// Ticks looks up a single tick.
func (p *Pool) Ticks(ctx context.Context, tick int64) (TickInfo, error) {
	const method = "ticks"
	if _, err := NarrowInt24(big.NewInt(tick)); err != nil {
		return TickInfo{}, callErr(method, ErrEncode, err)
	}
	values, err := p.c.call(ctx, method, big.NewInt(tick))
	if err != nil {
		return TickInfo{}, err
	}

	var out TickInfo
	if out.LiquidityGross, err = bigAt(method, values, 0); err != nil {
		return TickInfo{}, err
	}
	if out.LiquidityNet, err = bigAt(method, values, 1); err != nil {
		return TickInfo{}, err
	}
	if out.FeeGrowthOutside0X128, err = bigAt(method, values, 2); err != nil {
		return TickInfo{}, err
	}
	if out.FeeGrowthOutside1X128, err = bigAt(method, values, 3); err != nil {
		return TickInfo{}, err
	}
	if out.TickCumulativeOutside, err = int56At(method, values, 4); err != nil {
		return TickInfo{}, err
	}
	if out.SecondsPerLiquidityOutsideX128, err = bigAt(method, values, 5); err != nil {
		return TickInfo{}, err
	}
	if out.SecondsOutside, err = fieldAt[uint32](method, values, 6); err != nil {
		return TickInfo{}, err
	}
	if out.Initialized, err = fieldAt[bool](method, values, 7); err != nil {
		return TickInfo{}, err
	}
	return out, nil
}

// TickBitmap returns 256 packed initialized flags for a word position.
func (p *Pool) TickBitmap(ctx context.Context, wordPosition int16) (*big.Int, error) {
	values, err := p.c.call(ctx, "tickBitmap", wordPosition)
	if err != nil {
		return nil, err
	}
	return bigAt("tickBitmap", values, 0)
}

// Positions looks up a position by its key, see PositionKey.
func (p *Pool) Positions(ctx context.Context, key common.Hash) (PositionInfo, error) {
	const method = "positions"
	values, err := p.c.call(ctx, method, [32]byte(key))
	if err != nil {
		return PositionInfo{}, err
	}

	var out PositionInfo
	if out.Liquidity, err = bigAt(method, values, 0); err != nil {
		return PositionInfo{}, err
	}
	if out.FeeGrowthInside0LastX128, err = bigAt(method, values, 1); err != nil {
		return PositionInfo{}, err
	}
	if out.FeeGrowthInside1LastX128, err = bigAt(method, values, 2); err != nil {
		return PositionInfo{}, err
	}
	if out.TokensOwed0, err = bigAt(method, values, 3); err != nil {
		return PositionInfo{}, err
	}
	if out.TokensOwed1, err = bigAt(method, values, 4); err != nil {
		return PositionInfo{}, err
	}
	return out, nil
}

// Observations returns the oracle observation at index.
func (p *Pool) Observations(ctx context.Context, index uint64) (Observation, error) {
	const method = "observations"
	values, err := p.c.call(ctx, method, new(big.Int).SetUint64(index))
	if err != nil {
		return Observation{}, err
	}

	var out Observation
	if out.BlockTimestamp, err = fieldAt[uint32](method, values, 0); err != nil {
		return Observation{}, err
	}
	if out.TickCumulative, err = int56At(method, values, 1); err != nil {
		return Observation{}, err
	}
	if out.SecondsPerLiquidityCumulativeX128, err = bigAt(method, values, 2); err != nil {
		return Observation{}, err
	}
	if out.Initialized, err = fieldAt[bool](method, values, 3); err != nil {
		return Observation{}, err
	}
	return out, nil
}

// Snapshot reads tick spacing, slot0 and liquidity. These are three separate
// calls and may observe different blocks.
func (p *Pool) Snapshot(ctx context.Context) (PoolState, error) {
	spacing, err := p.TickSpacing(ctx)
	if err != nil {
		return PoolState{}, err
	}
	slot0, err := p.Slot0(ctx)
	if err != nil {
		return PoolState{}, err
	}
	liquidity, err := p.Liquidity(ctx)
	if err != nil {
		return PoolState{}, err
	}
	return PoolState{TickSpacing: spacing, Slot0: slot0, Liquidity: liquidity}, nil
}

func (p *Pool) address(ctx context.Context, method string) (common.Address, error) {
	values, err := p.c.call(ctx, method)
	if err != nil {
		return common.Address{}, err
	}
	return addressAt(method, values, 0)
}

func (p *Pool) uint128(ctx context.Context, method string) (*big.Int, error) {
	values, err := p.c.call(ctx, method)
	if err != nil {
		return nil, err
	}
	v, err := bigAt(method, values, 0)
	if err != nil {
		return nil, err
	}
	if _, err := CheckUint128(v); err != nil {
		return nil, callErr(method, ErrNarrowing, err)
	}
	return v, nil
}

func (p *Pool) uint256(ctx context.Context, method string) (*big.Int, error) {
	values, err := p.c.call(ctx, method)
	if err != nil {
		return nil, err
	}
	return bigAt(method, values, 0)
}

// PositionKey computes keccak256(abi.encodePacked(owner, tickLower, tickUpper)).
func PositionKey(owner common.Address, tickLower, tickUpper int64) (common.Hash, error) {
	for _, t := range []int64{tickLower, tickUpper} {
		if _, err := NarrowInt24(big.NewInt(t)); err != nil {
			return common.Hash{}, err
		}
	}
	packed := make([]byte, 0, common.AddressLength+6)
	packed = append(packed, owner.Bytes()...)
	packed = append(packed, int24Bytes(tickLower)...)
	packed = append(packed, int24Bytes(tickUpper)...)
	return crypto.Keccak256Hash(packed), nil
}

func int24Bytes(v int64) []byte {
	u := uint32(v) & 0xffffff
	return []byte{byte(u >> 16), byte(u >> 8), byte(u)}
}

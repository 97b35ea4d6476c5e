package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// UniswapV3FactoryAddress is the canonical factory on Ethereum mainnet.
var UniswapV3FactoryAddress = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")

// Factory resolves pools from a V3 factory.
type Factory struct {
	c contract
}

func NewFactory(address common.Address, caller Caller) (*Factory, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	factoryABI, err := V3FactoryABI()
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}
	return &Factory{c: contract{address: address, abi: factoryABI, caller: caller}}, nil
}

func (f *Factory) Address() common.Address {
	return f.c.address
}

// GetPool returns the pool for a token pair and fee tier. Token order does not
// matter. A zero address reply is reported as ErrPoolNotFound.
func (f *Factory) GetPool(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error) {
	const method = "getPool"
	feeArg, err := feeTier(method, fee)
	if err != nil {
		return common.Address{}, err
	}
	values, err := f.c.call(ctx, method, tokenA, tokenB, feeArg)
	if err != nil {
		return common.Address{}, err
	}
	pool, err := addressAt(method, values, 0)
	if err != nil {
		return common.Address{}, err
	}
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s/%s fee %d", ErrPoolNotFound, tokenA.Hex(), tokenB.Hex(), fee)
	}
	return pool, nil
}

// FeeAmountTickSpacing returns the tick spacing enabled for a fee tier, 0 if disabled.
func (f *Factory) FeeAmountTickSpacing(ctx context.Context, fee uint32) (int64, error) {
	const method = "feeAmountTickSpacing"
	feeArg, err := feeTier(method, fee)
	if err != nil {
		return 0, err
	}
	values, err := f.c.call(ctx, method, feeArg)
	if err != nil {
		return 0, err
	}
	return int24At(method, values, 0)
}

// feeTier converts a fee to its uint24 argument; the encoder does not range check it.
func feeTier(method string, fee uint32) (*big.Int, error) {
	v := new(big.Int).SetUint64(uint64(fee))
	if _, err := NarrowUint24(v); err != nil {
		return nil, callErr(method, ErrEncode, err)
	}
	return v, nil
}

package dex

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMeta(t *testing.T) {
	stringABI, _, err := erc20ABIInstances()
	require.NoError(t, err)

	decimals, err := stringABI.Methods["decimals"].Outputs.Pack(uint8(6))
	require.NoError(t, err)
	symbol, err := stringABI.Methods["symbol"].Outputs.Pack("USDC")
	require.NoError(t, err)
	name, err := stringABI.Methods["name"].Outputs.Pack("USD Coin")
	require.NoError(t, err)

	caller := newStubCaller().
		reply(stringABI.Methods["decimals"].ID, decimals).
		reply(stringABI.Methods["symbol"].ID, symbol).
		reply(stringABI.Methods["name"].ID, name)

	addr := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	token, err := NewToken(addr, caller)
	require.NoError(t, err)

	meta, err := token.Meta(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addr.Hex(), meta.Address)
	assert.Equal(t, uint8(6), meta.Decimals)
	assert.Equal(t, "USDC", meta.Symbol)
	assert.Equal(t, "USD Coin", meta.Name)
}

func TestTokenSymbolBytes32Fallback(t *testing.T) {
	_, bytes32ABI, err := erc20ABIInstances()
	require.NoError(t, err)

	var raw [32]byte
	copy(raw[:], "MKR")
	symbol, err := bytes32ABI.Methods["symbol"].Outputs.Pack(raw)
	require.NoError(t, err)

	caller := newStubCaller().reply(bytes32ABI.Methods["symbol"].ID, symbol)
	token, err := NewToken(common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2"), caller)
	require.NoError(t, err)

	got, err := token.Symbol(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MKR", got)
	assert.Equal(t, 2, caller.callCount())
}

func TestTokenDecimalsRequired(t *testing.T) {
	token, err := NewToken(common.HexToAddress("0x1111111111111111111111111111111111111111"), newStubCaller())
	require.NoError(t, err)

	_, err = token.Meta(context.Background())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFactoryGetPool(t *testing.T) {
	factoryABI, err := V3FactoryABI()
	require.NoError(t, err)

	tokenA := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	tokenB := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	method := factoryABI.Methods["getPool"]

	t.Run("found", func(t *testing.T) {
		reply, err := method.Outputs.Pack(testPool)
		require.NoError(t, err)
		caller := newStubCaller().reply(method.ID, reply)
		factory, err := NewFactory(UniswapV3FactoryAddress, caller)
		require.NoError(t, err)

		pool, err := factory.GetPool(context.Background(), tokenA, tokenB, 3000)
		require.NoError(t, err)
		assert.Equal(t, testPool, pool)
		assert.Equal(t, UniswapV3FactoryAddress, caller.lastTo())

		args, err := method.Inputs.Unpack(caller.calls[0].Data[4:])
		require.NoError(t, err)
		assert.Equal(t, tokenA, args[0])
		assert.Equal(t, tokenB, args[1])
		assert.Equal(t, 0, big.NewInt(3000).Cmp(args[2].(*big.Int)))
	})

	t.Run("not found", func(t *testing.T) {
		reply, err := method.Outputs.Pack(common.Address{})
		require.NoError(t, err)
		factory, err := NewFactory(UniswapV3FactoryAddress, newStubCaller().reply(method.ID, reply))
		require.NoError(t, err)

		_, err = factory.GetPool(context.Background(), tokenA, tokenB, 500)
		assert.ErrorIs(t, err, ErrPoolNotFound)
	})

	t.Run("fee out of range", func(t *testing.T) {
		caller := newStubCaller()
		factory, err := NewFactory(UniswapV3FactoryAddress, caller)
		require.NoError(t, err)

		_, err = factory.GetPool(context.Background(), tokenA, tokenB, 1<<24)
		assert.ErrorIs(t, err, ErrEncode)
		assert.Equal(t, 0, caller.callCount())
	})
}

func TestFactoryFeeAmountTickSpacing(t *testing.T) {
	factoryABI, err := V3FactoryABI()
	require.NoError(t, err)
	method := factoryABI.Methods["feeAmountTickSpacing"]

	reply, err := method.Outputs.Pack(big.NewInt(10))
	require.NoError(t, err)
	caller := newStubCaller().reply(method.ID, reply)
	factory, err := NewFactory(UniswapV3FactoryAddress, caller)
	require.NoError(t, err)

	spacing, err := factory.FeeAmountTickSpacing(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, int64(10), spacing)

	_, err = factory.FeeAmountTickSpacing(context.Background(), 1<<24)
	assert.ErrorIs(t, err, ErrEncode)
	assert.Equal(t, 1, caller.callCount())
}

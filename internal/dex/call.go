package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller submits eth_call requests. *chain.Client and *ethclient.Client satisfy it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// contract pairs a target address with the ABI table describing it.
type contract struct {
	address common.Address
	abi     abi.ABI
	caller  Caller
}

// call runs one round trip: pack, eth_call at latest, unpack and arity check.
func (c contract) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	m, ok := c.abi.Methods[method]
	if !ok {
		return nil, callErr(method, ErrEncode, fmt.Errorf("method not in schema"))
	}
	if c.caller == nil {
		return nil, callErr(method, ErrTransport, fmt.Errorf("caller is nil"))
	}

	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, callErr(method, ErrEncode, err)
	}

	to := c.address
	resp, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, callErr(method, ErrTransport, err)
	}

	values, err := c.abi.Unpack(method, resp)
	if err != nil {
		return nil, callErr(method, ErrDecode, err)
	}
	if len(values) != len(m.Outputs) {
		return nil, callErr(method, ErrDecode, fmt.Errorf("return size %d, want %d", len(values), len(m.Outputs)))
	}
	return values, nil
}

// Field readers used by accessors. Each one maps a type mismatch to ErrDecode
// and a range failure to ErrNarrowing.

func int24At(method string, values []interface{}, i int) (int64, error) {
	v, err := asBigInt(values[i])
	if err != nil {
		return 0, callErr(method, ErrDecode, fmt.Errorf("field %d: %w", i, err))
	}
	n, err := NarrowInt24(v)
	if err != nil {
		return 0, callErr(method, ErrNarrowing, fmt.Errorf("field %d: %w", i, err))
	}
	return n, nil
}

func int56At(method string, values []interface{}, i int) (int64, error) {
	v, err := asBigInt(values[i])
	if err != nil {
		return 0, callErr(method, ErrDecode, fmt.Errorf("field %d: %w", i, err))
	}
	n, err := NarrowInt56(v)
	if err != nil {
		return 0, callErr(method, ErrNarrowing, fmt.Errorf("field %d: %w", i, err))
	}
	return n, nil
}

func uint24At(method string, values []interface{}, i int) (uint32, error) {
	v, err := asBigInt(values[i])
	if err != nil {
		return 0, callErr(method, ErrDecode, fmt.Errorf("field %d: %w", i, err))
	}
	n, err := NarrowUint24(v)
	if err != nil {
		return 0, callErr(method, ErrNarrowing, fmt.Errorf("field %d: %w", i, err))
	}
	return n, nil
}

func bigAt(method string, values []interface{}, i int) (*big.Int, error) {
	v, err := asBigInt(values[i])
	if err != nil {
		return nil, callErr(method, ErrDecode, fmt.Errorf("field %d: %w", i, err))
	}
	return v, nil
}

func addressAt(method string, values []interface{}, i int) (common.Address, error) {
	v, err := asAddress(values[i])
	if err != nil {
		return common.Address{}, callErr(method, ErrDecode, fmt.Errorf("field %d: %w", i, err))
	}
	return v, nil
}

func fieldAt[T any](method string, values []interface{}, i int) (T, error) {
	v, ok := values[i].(T)
	if !ok {
		var zero T
		return zero, callErr(method, ErrDecode, fmt.Errorf("field %d: unexpected type %T", i, values[i]))
	}
	return v, nil
}

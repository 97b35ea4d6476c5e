package dex

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"rbtr/internal/model"
)

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

// Some older tokens (MKR, SAI) return bytes32 for symbol and name.
const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20ABIs     [2]abi.ABI
	erc20ABIsOnce sync.Once
	erc20ABIsErr  error
)

func erc20ABIInstances() (abi.ABI, abi.ABI, error) {
	erc20ABIsOnce.Do(func() {
		for i, src := range []string{erc20ABIStringJSON, erc20ABIBytes32JSON} {
			erc20ABIs[i], erc20ABIsErr = abi.JSON(strings.NewReader(src))
			if erc20ABIsErr != nil {
				return
			}
		}
	})
	return erc20ABIs[0], erc20ABIs[1], erc20ABIsErr
}

// Token is a read-only ERC20 metadata binding.
type Token struct {
	str     contract
	bytes32 contract
}

func NewToken(address common.Address, caller Caller) (*Token, error) {
	if caller == nil {
		return nil, fmt.Errorf("caller is nil")
	}
	stringABI, bytes32ABI, err := erc20ABIInstances()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	return &Token{
		str:     contract{address: address, abi: stringABI, caller: caller},
		bytes32: contract{address: address, abi: bytes32ABI, caller: caller},
	}, nil
}

func (t *Token) Address() common.Address {
	return t.str.address
}

// Decimals returns the token decimals.
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	values, err := t.str.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	return fieldAt[uint8]("decimals", values, 0)
}

// Symbol returns the token symbol, falling back to the bytes32 variant.
func (t *Token) Symbol(ctx context.Context) (string, error) {
	return t.text(ctx, "symbol")
}

// Name returns the token name, falling back to the bytes32 variant.
func (t *Token) Name(ctx context.Context) (string, error) {
	return t.text(ctx, "name")
}

// Meta loads decimals, symbol and name. Decimals is required; symbol and name
// are left empty when neither ABI variant decodes.
func (t *Token) Meta(ctx context.Context) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: t.Address().Hex()}

	decimals, err := t.Decimals(ctx)
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	if symbol, err := t.Symbol(ctx); err == nil {
		meta.Symbol = symbol
	}
	if name, err := t.Name(ctx); err == nil {
		meta.Name = name
	}
	return meta, nil
}

func (t *Token) text(ctx context.Context, method string) (string, error) {
	values, err := t.str.call(ctx, method)
	if err == nil {
		return fieldAt[string](method, values, 0)
	}
	values, fallbackErr := t.bytes32.call(ctx, method)
	if fallbackErr != nil {
		return "", err
	}
	if s, ok := bytes32ToString(values[0]); ok {
		return s, nil
	}
	return "", callErr(method, ErrDecode, fmt.Errorf("unexpected type %T", values[0]))
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

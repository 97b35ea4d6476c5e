package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	minInt24   = big.NewInt(-1 << 23)
	maxInt24   = big.NewInt((1 << 23) - 1)
	maxUint24  = big.NewInt((1 << 24) - 1)
	minInt56   = big.NewInt(-1 << 55)
	maxInt56   = big.NewInt((1 << 55) - 1)
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(common.Big1, 128), common.Big1)
	maxUint160 = new(big.Int).Sub(new(big.Int).Lsh(common.Big1, 160), common.Big1)
)

// NarrowInt24 converts an int24 value to int64, rejecting anything outside ±2^23.
func NarrowInt24(value *big.Int) (int64, error) {
	if value == nil {
		return 0, &NarrowingError{Type: "int24", Value: "<nil>"}
	}
	if value.Cmp(minInt24) < 0 || value.Cmp(maxInt24) > 0 {
		return 0, &NarrowingError{Type: "int24", Value: value.String()}
	}
	return value.Int64(), nil
}

// NarrowUint24 converts a uint24 value to uint32.
func NarrowUint24(value *big.Int) (uint32, error) {
	if value == nil {
		return 0, &NarrowingError{Type: "uint24", Value: "<nil>"}
	}
	if value.Sign() < 0 || value.Cmp(maxUint24) > 0 {
		return 0, &NarrowingError{Type: "uint24", Value: value.String()}
	}
	return uint32(value.Uint64()), nil
}

// NarrowInt56 converts an int56 value to int64.
func NarrowInt56(value *big.Int) (int64, error) {
	if value == nil {
		return 0, &NarrowingError{Type: "int56", Value: "<nil>"}
	}
	if value.Cmp(minInt56) < 0 || value.Cmp(maxInt56) > 0 {
		return 0, &NarrowingError{Type: "int56", Value: value.String()}
	}
	return value.Int64(), nil
}

// CheckUint128 keeps the value as *big.Int but verifies it fits in 128 bits.
func CheckUint128(value *big.Int) (*big.Int, error) {
	return checkUnsigned("uint128", value, maxUint128)
}

// CheckUint160 keeps the value as *big.Int but verifies it fits in 160 bits.
func CheckUint160(value *big.Int) (*big.Int, error) {
	return checkUnsigned("uint160", value, maxUint160)
}

func checkUnsigned(typ string, value *big.Int, max *big.Int) (*big.Int, error) {
	if value == nil {
		return nil, &NarrowingError{Type: typ, Value: "<nil>"}
	}
	if value.Sign() < 0 || value.Cmp(max) > 0 {
		return nil, &NarrowingError{Type: typ, Value: value.String()}
	}
	return new(big.Int).Set(value), nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil big int")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v == nil {
			return common.Address{}, fmt.Errorf("nil address")
		}
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

package dex

import (
	"math/big"
)

const priceScale = 18

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// PriceFromSqrtX96 returns the price of token0 in units of token1, adjusted for
// token decimals, as a decimal string with 18 fractional digits.
func PriceFromSqrtX96(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) string {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return "0"
	}
	num := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	denom := new(big.Int).Set(q192)

	if decimals0 > decimals1 {
		num.Mul(num, pow10(decimals0-decimals1))
	} else if decimals1 > decimals0 {
		denom.Mul(denom, pow10(decimals1-decimals0))
	}

	return new(big.Rat).SetFrac(num, denom).FloatString(priceScale)
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

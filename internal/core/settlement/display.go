package settlement

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DisplayAmount renders a raw token amount in whole units.
func DisplayAmount(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// DisplayPrice renders an oracle fixed-point price.
func DisplayPrice(price int64, exponent int32) decimal.Decimal {
	return decimal.New(price, exponent)
}

// DisplayStrike renders a strike computed with scale as a price.
func DisplayStrike(strike uint64, scale Scale) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(strike), scale.Exponent)
}

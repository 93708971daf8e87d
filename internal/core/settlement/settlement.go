// Package settlement holds the fixed-point arithmetic for covered calls:
// strike prices and the proportional split of escrowed base at exercise.
package settlement

import (
	"errors"
	"math/bits"
)

var (
	ErrZeroBase = errors.New("base amount must be positive")
	ErrOverflow = errors.New("strike does not fit in 64 bits")
)

// Scale carries the decimal conventions a strike is expressed in. Strikes
// use the oracle's fixed-point scale so they compare directly to mark prices.
type Scale struct {
	BaseDecimals  uint8
	QuoteDecimals uint8
	// Exponent is the oracle price exponent, usually negative.
	Exponent int32
}

// Power returns k such that strike = quote * 10^k / base.
func (s Scale) Power() int64 {
	return int64(s.BaseDecimals) - int64(s.QuoteDecimals) - int64(s.Exponent)
}

// CalcStrike returns floor(quoteAmount * 10^k / baseAmount) with k taken from
// scale. The product is formed in 128 bits.
func CalcStrike(baseAmount, quoteAmount uint64, scale Scale) (uint64, error) {
	if baseAmount == 0 {
		return 0, ErrZeroBase
	}

	k := scale.Power()
	if k < 0 {
		strike := quoteAmount / baseAmount
		for ; k < 0 && strike > 0; k++ {
			strike /= 10
		}
		return strike, nil
	}

	hi, lo := uint64(0), quoteAmount
	for ; k > 0; k-- {
		var ok bool
		if hi, lo, ok = mul128(hi, lo, 10); !ok {
			return 0, ErrOverflow
		}
	}
	if hi >= baseAmount {
		return 0, ErrOverflow
	}
	strike, _ := bits.Div64(hi, lo, baseAmount)
	return strike, nil
}

// mul128 multiplies the 128-bit value hi:lo by m.
func mul128(hi, lo, m uint64) (uint64, uint64, bool) {
	carry, outLo := bits.Mul64(lo, m)
	over, top := bits.Mul64(hi, m)
	if over != 0 {
		return 0, 0, false
	}
	outHi, c := bits.Add64(top, carry, 0)
	if c != 0 {
		return 0, 0, false
	}
	return outHi, outLo, true
}

// Settlements splits amount between seller and buyer. At or below the strike
// the seller keeps everything. Above it the seller keeps amount*strike/mark,
// rounded down, and the buyer receives the rest.
func Settlements(strike uint64, mark int64, amount uint64) (seller, buyer uint64) {
	if mark <= 0 || uint64(mark) <= strike {
		return amount, 0
	}

	hi, lo := bits.Mul64(amount, strike)
	// strike < mark so the quotient is below amount and hi < mark.
	seller, _ = bits.Div64(hi, lo, uint64(mark))
	return seller, amount - seller
}

// InTheMoney reports whether a mark price gives the buyer any upside.
func InTheMoney(strike uint64, mark int64) bool {
	return mark > 0 && uint64(mark) > strike
}

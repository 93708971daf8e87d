package entry

import (
	"errors"
	"fmt"
)

// OptionContract is a covered call between one seller and one buyer.
// Its ledger key is derived from the immutable terms and Salt.
type OptionContract struct {
	Seller      [20]byte `codec:"seller"`
	Buyer       [20]byte `codec:"buyer"`
	BaseMint    [20]byte `codec:"base_mint"`
	QuoteMint   [20]byte `codec:"quote_mint"`
	BaseAmount  uint64   `codec:"base_amount"`
	QuoteAmount uint64   `codec:"quote_amount"`
	Expiry      int64    `codec:"expiry"`

	Premium   Premium `codec:"premium"`
	Exercised bool    `codec:"exercised"`
	CreatedAt int64   `codec:"created_at"`
	Salt      uint8   `codec:"salt"`
	Deposit   uint64  `codec:"deposit"`
}

// Premium is either unset or paid with an amount, which may be zero.
type Premium struct {
	Paid   bool   `codec:"paid"`
	Amount uint64 `codec:"amount"`
}

// UnsetPremium is the premium of an option nobody has bought.
func UnsetPremium() Premium {
	return Premium{}
}

// PaidPremium is a premium paid with amount.
func PaidPremium(amount uint64) Premium {
	return Premium{Paid: true, Amount: amount}
}

func (p Premium) String() string {
	if !p.Paid {
		return "Unset"
	}
	return fmt.Sprintf("Paid(%d)", p.Amount)
}

func (o *OptionContract) Type() Type {
	return TypeOptionContract
}

func (o *OptionContract) Validate() error {
	if o.BaseAmount == 0 {
		return errors.New("base amount must be positive")
	}
	if o.QuoteAmount == 0 {
		return errors.New("quote amount must be positive")
	}
	if o.BaseMint == o.QuoteMint {
		return errors.New("base and quote mints must differ")
	}
	if !o.Premium.Paid && o.Premium.Amount != 0 {
		return errors.New("unset premium carries an amount")
	}
	if o.Exercised && !o.Premium.Paid {
		return errors.New("exercised option must have a premium")
	}
	return nil
}

// IsBought reports whether a premium has been paid.
func (o *OptionContract) IsBought() bool {
	return o.Premium.Paid
}

// PremiumAmount returns the premium paid and whether one was paid.
func (o *OptionContract) PremiumAmount() (uint64, bool) {
	return o.Premium.Amount, o.Premium.Paid
}

// SetPremium records the premium. It must only be called once.
func (o *OptionContract) SetPremium(amount uint64) {
	o.Premium = PaidPremium(amount)
}

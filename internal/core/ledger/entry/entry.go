package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	TypeAccountRoot    Type = 0x0061 // Native balance and owner count
	TypeOptionContract Type = 0x0063 // Covered call agreements
	TypeHolding        Type = 0x0068 // Token balances, including escrow vaults
	TypeExpiryMark     Type = 0x006d // Oracle price snapshot per expiry
	TypeMint           Type = 0x004d // Token definitions
	TypePriceFeed      Type = 0x0070 // Published oracle prices
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeAccountRoot:
		return "AccountRoot"
	case TypeOptionContract:
		return "OptionContract"
	case TypeHolding:
		return "Holding"
	case TypeExpiryMark:
		return "ExpiryMark"
	case TypeMint:
		return "Mint"
	case TypePriceFeed:
		return "PriceFeed"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Entry defines the interface for all ledger entries
type Entry interface {
	Type() Type
	Validate() error
}

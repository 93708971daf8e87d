package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

// Transaction type codes
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	// Token service
	TypeMintCreate Type = 1
	TypeMintTo     Type = 2

	// Price oracle
	TypePriceFeedSet Type = 10

	// Covered call lifecycle
	TypeOptionCreate   Type = 20
	TypeOptionBuy      Type = 21
	TypeOptionExercise Type = 22
	TypeOptionClose    Type = 23

	// Expiry marks
	TypeExpiryMarkSet    Type = 30
	TypeExpiryMarkDelete Type = 31
)

var typeNames = map[Type]string{
	TypeMintCreate:       "MintCreate",
	TypeMintTo:           "MintTo",
	TypePriceFeedSet:     "PriceFeedSet",
	TypeOptionCreate:     "OptionCreate",
	TypeOptionBuy:        "OptionBuy",
	TypeOptionExercise:   "OptionExercise",
	TypeOptionClose:      "OptionClose",
	TypeExpiryMarkSet:    "ExpiryMarkSet",
	TypeExpiryMarkDelete: "ExpiryMarkDelete",
}

var typeNameMap = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the transaction type name
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName returns the type for a transaction type name
func TypeFromName(name string) (Type, bool) {
	t, ok := typeNameMap[name]
	return t, ok
}

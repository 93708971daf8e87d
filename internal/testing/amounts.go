package testing

// NativeUnit is the number of native minor units in one whole unit.
const NativeUnit uint64 = 1_000_000

// DefaultFunding is what Fund gives each account.
const DefaultFunding = 1_000 * NativeUnit

// Native converts whole native units to minor units.
func Native(n uint64) uint64 {
	return n * NativeUnit
}

// Units converts a whole token amount to minor units of a mint with the
// given decimals.
func Units(whole uint64, decimals uint8) uint64 {
	for i := uint8(0); i < decimals; i++ {
		whole *= 10
	}
	return whole
}

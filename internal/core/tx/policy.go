package tx

import (
	"fmt"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/oracle"
)

// SettlementPolicy selects how options are exercised.
type SettlementPolicy string

const (
	// PolicyOracle settles European style: exercise at or after expiry for
	// the in-the-money share of the base vault, priced by the expiry mark.
	PolicyOracle SettlementPolicy = "oracle"
	// PolicyPhysical settles American style: exercise up to expiry, paying
	// the quote amount for the whole base amount.
	PolicyPhysical SettlementPolicy = "physical"
)

// ParseSettlementPolicy parses a configured policy name.
func ParseSettlementPolicy(s string) (SettlementPolicy, error) {
	switch p := SettlementPolicy(s); p {
	case PolicyOracle, PolicyPhysical:
		return p, nil
	default:
		return "", fmt.Errorf("unknown settlement policy %q", s)
	}
}

// DepositSchedule lists the storage deposit charged for each entry kind.
type DepositSchedule struct {
	Holding   uint64
	Option    uint64
	Mark      uint64
	Mint      uint64
	PriceFeed uint64
}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// SkipSignatureVerification skips signature checks (for testing)
	SkipSignatureVerification bool

	Deposits DepositSchedule

	SettlementPolicy SettlementPolicy

	// MarkWindow is how long before expiry a price may be published and
	// still be marked for that expiry.
	MarkWindow time.Duration

	// MaxPriceAge bounds how old an oracle price may be when it is read.
	MaxPriceAge time.Duration

	// MarkFeed is the only feed expiry marks are taken from. Marks are
	// refused while it is unset.
	MarkFeed oracle.Feed
}

// HasMarkFeed reports whether a mark feed is configured.
func (c EngineConfig) HasMarkFeed() bool {
	return c.MarkFeed.Publisher != [20]byte{}
}

const (
	DefaultMarkWindow  = 30 * time.Minute
	DefaultMaxPriceAge = 7 * 24 * time.Hour
)

// DefaultEngineConfig returns the configuration used when nothing is set.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Deposits: DepositSchedule{
			Holding:   2_039_280,
			Option:    2_463_840,
			Mark:      1_726_080,
			Mint:      1_461_600,
			PriceFeed: 1_648_560,
		},
		SettlementPolicy: PolicyOracle,
		MarkWindow:       DefaultMarkWindow,
		MaxPriceAge:      DefaultMaxPriceAge,
	}
}

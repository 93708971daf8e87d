// Package oracle provides builders for price feed transactions.
package oracle

import (
	"time"

	"github.com/LeJamon/coveredcall/internal/core/tx"
	oracletx "github.com/LeJamon/coveredcall/internal/core/tx/oracle"
	"github.com/LeJamon/coveredcall/internal/testing"
)

// PriceBuilder provides a fluent interface for building PriceFeedSet transactions.
type PriceBuilder struct {
	publisher   *testing.Account
	feedID      [32]byte
	price       int64
	conf        uint64
	exponent    int32
	publishTime int64
}

// Publish starts a price update of publisher's feed.
func Publish(publisher *testing.Account, feedID [32]byte, price int64, exponent int32) *PriceBuilder {
	return &PriceBuilder{
		publisher: publisher,
		feedID:    feedID,
		price:     price,
		exponent:  exponent,
	}
}

// Conf sets the confidence interval.
func (b *PriceBuilder) Conf(conf uint64) *PriceBuilder {
	b.conf = conf
	return b
}

// At sets the publish time.
func (b *PriceBuilder) At(t time.Time) *PriceBuilder {
	b.publishTime = t.Unix()
	return b
}

// Build constructs the PriceFeedSet transaction.
func (b *PriceBuilder) Build() tx.Transaction {
	return oracletx.NewPriceFeedSet(b.publisher.Address, testing.FeedIDHex(b.feedID),
		b.price, b.conf, b.exponent, b.publishTime)
}

// FeedID derives a feed identifier from a symbol such as "SOL/USD".
func FeedID(symbol string) [32]byte {
	return testing.FeedID(symbol)
}

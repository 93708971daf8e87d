// Package oracle answers "price no older than N seconds" queries for
// transaction handlers.
package oracle

//go:generate mockgen -source=oracle.go -destination=mock_oracle.go -package=oracle

import (
	"errors"
	"fmt"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
)

var (
	ErrPriceUnavailable = errors.New("price unavailable")
	ErrStalePrice       = errors.New("price is stale")
)

// Feed identifies a price feed by its publisher and feed id.
type Feed struct {
	Publisher [20]byte
	ID        [32]byte
}

// Keylet returns the ledger location of the feed.
func (f Feed) Keylet() keylet.Keylet {
	return keylet.PriceFeed(f.Publisher, f.ID)
}

// Price is a fixed-point reading: the value is Price * 10^Exponent.
type Price struct {
	Price       int64
	Conf        uint64
	Exponent    int32
	PublishTime int64
}

// View is the read access a Reader needs.
type View interface {
	Read(k keylet.Keylet) ([]byte, error)
}

// Reader returns the latest price of a feed, provided it was published no
// more than maxAge before now.
type Reader interface {
	PriceNoOlderThan(view View, feed Feed, maxAge time.Duration, now time.Time) (Price, error)
}

// LedgerReader reads prices from PriceFeed entries in the ledger.
type LedgerReader struct{}

func NewLedgerReader() *LedgerReader {
	return &LedgerReader{}
}

func (r *LedgerReader) PriceNoOlderThan(view View, feed Feed, maxAge time.Duration, now time.Time) (Price, error) {
	data, err := view.Read(feed.Keylet())
	if err != nil {
		return Price{}, fmt.Errorf("failed to read price feed: %w", err)
	}
	if data == nil {
		return Price{}, ErrPriceUnavailable
	}

	var pf entry.PriceFeed
	if err := entry.DecodeInto(data, &pf); err != nil {
		return Price{}, err
	}

	published := time.Unix(pf.PublishTime, 0)
	if now.Sub(published) > maxAge {
		return Price{}, fmt.Errorf("%w: published %s, max age %s", ErrStalePrice, published.UTC(), maxAge)
	}

	return Price{
		Price:       pf.Price,
		Conf:        pf.Conf,
		Exponent:    pf.Exponent,
		PublishTime: pf.PublishTime,
	}, nil
}

// Package oracle implements PriceFeedSet, which publishes prices that
// ExpiryMarkSet later reads through oracle.LedgerReader.
package oracle

import (
	"errors"
	"fmt"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/sirupsen/logrus"
)

// MaxPriceExponent bounds the magnitude of a feed exponent.
const MaxPriceExponent = 18

func init() {
	tx.Register(tx.TypePriceFeedSet, func() tx.Transaction {
		return &PriceFeedSet{BaseTx: *tx.NewBaseTx(tx.TypePriceFeedSet, "")}
	})
}

// PriceFeedSet creates or updates a price feed owned by Account.
type PriceFeedSet struct {
	tx.BaseTx

	// FeedID identifies the feed among the publisher's feeds (required, 32 hex bytes)
	FeedID string `json:"FeedID"`

	// Price is the fixed-point price, scaled by 10^Exponent
	Price int64 `json:"Price,string"`

	// Conf is the confidence interval in the same scale as Price
	Conf uint64 `json:"Conf,string"`

	Exponent int32 `json:"Exponent"`

	// PublishTime is when the price was observed, unix seconds (required)
	PublishTime int64 `json:"PublishTime"`
}

func NewPriceFeedSet(account, feedID string, price int64, conf uint64, exponent int32, publishTime int64) *PriceFeedSet {
	return &PriceFeedSet{
		BaseTx:      *tx.NewBaseTx(tx.TypePriceFeedSet, account),
		FeedID:      feedID,
		Price:       price,
		Conf:        conf,
		Exponent:    exponent,
		PublishTime: publishTime,
	}
}

func (p *PriceFeedSet) TxType() tx.Type {
	return tx.TypePriceFeedSet
}

func (p *PriceFeedSet) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := tx.DecodeHash("FeedID", p.FeedID); err != nil {
		return err
	}
	if p.PublishTime <= 0 {
		return errors.New("temMALFORMED: PublishTime is required")
	}
	if p.Exponent > MaxPriceExponent || p.Exponent < -MaxPriceExponent {
		return fmt.Errorf("temMALFORMED: Exponent must be within ±%d", MaxPriceExponent)
	}
	return nil
}

func (p *PriceFeedSet) Apply(ctx *tx.ApplyContext) tx.Result {
	feedID, err := tx.DecodeHash("FeedID", p.FeedID)
	if err != nil {
		return ctx.Fail(err)
	}

	// a price from the future cannot be checked against any clock
	if p.PublishTime > ctx.UnixNow() {
		return tx.TecPRICE_IRRELEVANT
	}

	k := keylet.PriceFeed(ctx.AccountID, feedID)
	var feed entry.PriceFeed
	found, err := ctx.ReadEntry(k, &feed)
	if err != nil {
		return ctx.Fail(err)
	}

	if found {
		if p.PublishTime < feed.PublishTime {
			return tx.TecPRICE_IRRELEVANT
		}
	} else {
		deposit := ctx.Config.Deposits.PriceFeed
		if r := ctx.Charge(ctx.AccountID, deposit); !r.IsSuccess() {
			return r
		}
		feed = entry.PriceFeed{
			Publisher: ctx.AccountID,
			FeedID:    feedID,
			Deposit:   deposit,
		}
	}

	feed.Price = p.Price
	feed.Conf = p.Conf
	feed.Exponent = p.Exponent
	feed.PublishTime = p.PublishTime

	if found {
		err = ctx.UpdateEntry(k, &feed)
	} else {
		err = ctx.InsertEntry(k, &feed)
	}
	if err != nil {
		return ctx.Fail(err)
	}

	ctx.Log.WithFields(logrus.Fields{
		"feed":         p.FeedID,
		"price":        p.Price,
		"exponent":     p.Exponent,
		"publish_time": p.PublishTime,
	}).Debug("price feed updated")
	return tx.TesSUCCESS
}

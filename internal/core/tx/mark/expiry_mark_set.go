// Package mark implements the transactions that snapshot an oracle price
// for an expiry and later remove that snapshot.
package mark

import (
	"errors"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/oracle"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/sirupsen/logrus"
)

func init() {
	tx.Register(tx.TypeExpiryMarkSet, func() tx.Transaction {
		return &ExpiryMarkSet{BaseTx: *tx.NewBaseTx(tx.TypeExpiryMarkSet, "")}
	})
}

// ExpiryMarkSet records the current price of the engine's mark feed as the
// mark for an expiry. Anyone may send it; the first sender funds the mark.
type ExpiryMarkSet struct {
	tx.BaseTx

	// Expiry is the unix time the mark settles (required)
	Expiry int64 `json:"Expiry"`
}

func NewExpiryMarkSet(account string, expiry int64) *ExpiryMarkSet {
	return &ExpiryMarkSet{
		BaseTx: *tx.NewBaseTx(tx.TypeExpiryMarkSet, account),
		Expiry: expiry,
	}
}

func (m *ExpiryMarkSet) TxType() tx.Type {
	return tx.TypeExpiryMarkSet
}

func (m *ExpiryMarkSet) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Expiry <= 0 {
		return errors.New("temBAD_EXPIRATION: Expiry is required")
	}
	return nil
}

// InWindow reports whether a price published at publishTime may mark
// expiry: within (expiry - window, expiry].
func InWindow(publishTime, expiry int64, window time.Duration) bool {
	return publishTime > expiry-int64(window/time.Second) && publishTime <= expiry
}

func (m *ExpiryMarkSet) Apply(ctx *tx.ApplyContext) tx.Result {
	if !ctx.Config.HasMarkFeed() {
		ctx.Log.Debug("no mark feed configured")
		return tx.TecPRICE_UNAVAILABLE
	}

	price, err := ctx.Oracle.PriceNoOlderThan(ctx.View, ctx.Config.MarkFeed, ctx.Config.MaxPriceAge, ctx.Now)
	if err != nil {
		if errors.Is(err, oracle.ErrPriceUnavailable) || errors.Is(err, oracle.ErrStalePrice) {
			ctx.Log.WithError(err).Debug("no usable price for mark")
			return tx.TecPRICE_UNAVAILABLE
		}
		return ctx.Fail(err)
	}

	if !InWindow(price.PublishTime, m.Expiry, ctx.Config.MarkWindow) {
		return tx.TecPRICE_IRRELEVANT
	}

	k := keylet.ExpiryMark(m.Expiry)
	var mark entry.ExpiryMark
	found, err := ctx.ReadEntry(k, &mark)
	if err != nil {
		return ctx.Fail(err)
	}

	if found {
		if price.PublishTime < mark.PublishTime {
			return tx.TecPRICE_IRRELEVANT
		}
	} else {
		deposit := ctx.Config.Deposits.Mark
		if r := ctx.Charge(ctx.AccountID, deposit); !r.IsSuccess() {
			return r
		}
		mark = entry.ExpiryMark{
			Expiry:  m.Expiry,
			Funder:  ctx.AccountID,
			Deposit: deposit,
		}
	}

	mark.Price = price.Price
	mark.Conf = price.Conf
	mark.Exponent = price.Exponent
	mark.PublishTime = price.PublishTime

	if found {
		err = ctx.UpdateEntry(k, &mark)
	} else {
		err = ctx.InsertEntry(k, &mark)
	}
	if err != nil {
		return ctx.Fail(err)
	}

	ctx.Log.WithFields(logrus.Fields{
		"expiry":       m.Expiry,
		"price":        price.Price,
		"publish_time": price.PublishTime,
	}).Debug("expiry marked")
	return tx.TesSUCCESS
}

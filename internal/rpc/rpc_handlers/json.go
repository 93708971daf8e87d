package rpc_handlers

import (
	"strings"
	"time"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/settlement"
	"github.com/LeJamon/coveredcall/internal/core/tx"
)

func address(id [20]byte) string {
	if id == [20]byte{} {
		return ""
	}
	return addresscodec.EncodeAccountID(id)
}

func hexID(b []byte) string {
	return tx.EncodeID(b)
}

func unixTime(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// entryJSON renders any ledger entry with its index.
func entryJSON(index [32]byte, e entry.Entry) map[string]interface{} {
	out := map[string]interface{}{
		"LedgerEntryType": e.Type().String(),
		"index":           hexID(index[:]),
	}

	switch v := e.(type) {
	case *entry.AccountRoot:
		out["Account"] = address(v.Account)
		out["Sequence"] = v.Sequence
		out["Balance"] = v.Balance
		out["OwnerCount"] = v.OwnerCount
	case *entry.Mint:
		out["MintID"] = hexID(v.ID[:])
		out["Issuer"] = address(v.Issuer)
		out["Decimals"] = v.Decimals
		out["Supply"] = v.Supply
		out["Deposit"] = v.Deposit
	case *entry.Holding:
		out["Owner"] = address(v.Owner)
		out["Mint"] = hexID(v.Mint[:])
		out["Amount"] = v.Amount
		out["Funder"] = address(v.Funder)
		out["Deposit"] = v.Deposit
	case *entry.OptionContract:
		out["Seller"] = address(v.Seller)
		out["Buyer"] = address(v.Buyer)
		out["BaseMint"] = hexID(v.BaseMint[:])
		out["QuoteMint"] = hexID(v.QuoteMint[:])
		out["BaseAmount"] = v.BaseAmount
		out["QuoteAmount"] = v.QuoteAmount
		out["Expiry"] = v.Expiry
		out["Exercised"] = v.Exercised
		out["CreatedAt"] = v.CreatedAt
		out["Salt"] = v.Salt
		out["Deposit"] = v.Deposit
		if p, ok := v.PremiumAmount(); ok {
			out["Premium"] = p
		}
	case *entry.ExpiryMark:
		out["Expiry"] = v.Expiry
		out["Price"] = v.Price
		out["Conf"] = v.Conf
		out["Exponent"] = v.Exponent
		out["PublishTime"] = v.PublishTime
		out["Funder"] = address(v.Funder)
		out["Deposit"] = v.Deposit
	case *entry.PriceFeed:
		out["Publisher"] = address(v.Publisher)
		out["FeedID"] = hexID(v.FeedID[:])
		out["Price"] = v.Price
		out["Conf"] = v.Conf
		out["Exponent"] = v.Exponent
		out["PublishTime"] = v.PublishTime
		out["Deposit"] = v.Deposit
	}
	return out
}

// markJSON adds the human readable price to a mark.
func markJSON(index [32]byte, m *entry.ExpiryMark) map[string]interface{} {
	out := entryJSON(index, m)
	out["marked"] = m.IsMarked()
	out["expiry_time"] = unixTime(m.Expiry)
	if m.IsMarked() {
		out["price"] = settlement.DisplayPrice(m.Price, m.Exponent).String()
		out["publish_time"] = unixTime(m.PublishTime)
	}
	return out
}

func matchesType(filter string, t entry.Type) bool {
	return filter == "" || strings.EqualFold(filter, t.String())
}

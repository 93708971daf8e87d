package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/oracle"
	"github.com/LeJamon/coveredcall/internal/core/settlement"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

// MarkInfoMethod handles the mark_info RPC method
type MarkInfoMethod struct{ guestMethod }

type markInfoRequest struct {
	Expiry *int64 `json:"expiry,omitempty"`
}

func (m *MarkInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if err := requireServices(ctx); err != nil {
		return nil, err
	}

	var request markInfoRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	if request.Expiry == nil {
		return nil, rpc_types.RpcErrorMissingField("expiry")
	}

	k := keylet.ExpiryMark(*request.Expiry)
	var mark entry.ExpiryMark
	found, rpcErr := readEntry(ctx, k, &mark)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if !found {
		return nil, rpc_types.RpcErrorObjectNotFound("Mark not found.")
	}
	return map[string]interface{}{"mark": markJSON(k.Key, &mark)}, nil
}

// FeedInfoMethod handles the feed_info RPC method. It reports the latest
// published price and whether the engine would accept it now.
type FeedInfoMethod struct{ guestMethod }

type feedInfoRequest struct {
	Publisher string `json:"publisher"`
	FeedID    string `json:"feed_id"`
}

func (m *FeedInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if err := requireServices(ctx); err != nil {
		return nil, err
	}

	var request feedInfoRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	publisher, rpcErr := decodeAccountParam(request.Publisher)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if request.FeedID == "" {
		return nil, rpc_types.RpcErrorMissingField("feed_id")
	}
	id, err := tx.DecodeHash("feed_id", request.FeedID)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidField("feed_id")
	}

	feed := oracle.Feed{Publisher: publisher, ID: id}
	var pf entry.PriceFeed
	found, rpcErr := readEntry(ctx, feed.Keylet(), &pf)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if !found {
		return nil, rpc_types.RpcErrorObjectNotFound("Price feed not found.")
	}

	maxAge := tx.DefaultMaxPriceAge
	if ctx.Services.Engine != nil {
		maxAge = ctx.Services.Engine.Config().MaxPriceAge
	}
	_, staleErr := oracle.NewLedgerReader().PriceNoOlderThan(ctx.Services.Ledger, feed, maxAge, ctx.Services.Clock())

	return map[string]interface{}{
		"feed":         entryJSON(feed.Keylet().Key, &pf),
		"price":        settlement.DisplayPrice(pf.Price, pf.Exponent).String(),
		"publish_time": unixTime(pf.PublishTime),
		"fresh":        staleErr == nil,
	}, nil
}

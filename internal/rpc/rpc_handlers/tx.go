package rpc_handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
	"github.com/LeJamon/coveredcall/internal/storage/journal"
)

// TxMethod handles the tx RPC method
type TxMethod struct{ guestMethod }

type txRequest struct {
	Transaction string `json:"transaction"`
}

func (m *TxMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if ctx.Services == nil || ctx.Services.History == nil {
		return nil, rpc_types.RpcErrorNotEnabled("journal")
	}

	var request txRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	if request.Transaction == "" {
		return nil, rpc_types.RpcErrorMissingField("transaction")
	}
	hash, err := tx.DecodeHash("transaction", request.Transaction)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidField("transaction")
	}

	record, err := ctx.Services.History.Get(ctx.Context, hash)
	if errors.Is(err, journal.ErrNotFound) {
		return nil, rpc_types.RpcErrorTxnNotFound("Transaction not found.")
	}
	if err != nil {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}
	return recordJSON(record), nil
}

func recordJSON(r *journal.Record) map[string]interface{} {
	out := map[string]interface{}{
		"hash":          hexID(r.Hash[:]),
		"type":          r.Type,
		"account":       r.Account,
		"sequence":      r.Sequence,
		"engine_result": r.Result,
		"applied":       r.Applied,
		"date":          r.AppliedAt.UTC().Format(time.RFC3339),
	}
	if len(r.Tx) > 0 {
		out["tx_json"] = r.Tx
	}
	if len(r.Meta) > 0 {
		out["meta"] = r.Meta
	}
	return out
}

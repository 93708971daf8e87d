package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

// LedgerEntryMethod handles the ledger_entry RPC method
type LedgerEntryMethod struct{ guestMethod }

type ledgerEntryRequest struct {
	Index string `json:"index"`
}

func (m *LedgerEntryMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if err := requireServices(ctx); err != nil {
		return nil, err
	}

	var request ledgerEntryRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	if request.Index == "" {
		return nil, rpc_types.RpcErrorMissingField("index")
	}
	key, err := tx.DecodeHash("index", request.Index)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidField("index")
	}

	// Read only uses the key; the type is checked after decoding.
	data, err := ctx.Services.Ledger.Read(keylet.Keylet{Key: key})
	if err != nil {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}
	if data == nil {
		return nil, rpc_types.RpcErrorObjectNotFound("Entry not found.")
	}
	e, err := entry.Decode(data)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal("corrupt ledger entry: " + err.Error())
	}
	return map[string]interface{}{
		"index": hexID(key[:]),
		"node":  entryJSON(key, e),
	}, nil
}

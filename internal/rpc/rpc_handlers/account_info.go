package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/settlement"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

// nativeDecimals is the number of decimal places of the native balance.
const nativeDecimals = 6

// AccountInfoMethod handles the account_info RPC method
type AccountInfoMethod struct{ guestMethod }

type accountInfoRequest struct {
	Account string `json:"account"`
}

func (m *AccountInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if err := requireServices(ctx); err != nil {
		return nil, err
	}

	var request accountInfoRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	id, rpcErr := decodeAccountParam(request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}

	k := keylet.Account(id)
	var root entry.AccountRoot
	found, rpcErr := readEntry(ctx, k, &root)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if !found {
		return nil, rpc_types.RpcErrorActNotFound("Account not found.")
	}

	return map[string]interface{}{
		"account_data":    entryJSON(k.Key, &root),
		"balance_display": settlement.DisplayAmount(root.Balance, nativeDecimals).String(),
	}, nil
}

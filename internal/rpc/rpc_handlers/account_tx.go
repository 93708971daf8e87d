package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

const (
	defaultAccountTxLimit = 200
	maxAccountTxLimit     = 1000
)

// AccountTxMethod handles the account_tx RPC method. Transactions are
// returned newest first.
type AccountTxMethod struct{ guestMethod }

type accountTxRequest struct {
	Account string `json:"account"`
	Limit   int    `json:"limit,omitempty"`
}

func (m *AccountTxMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if ctx.Services == nil || ctx.Services.History == nil {
		return nil, rpc_types.RpcErrorNotEnabled("journal")
	}

	var request accountTxRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	if _, rpcErr := decodeAccountParam(request.Account); rpcErr != nil {
		return nil, rpcErr
	}

	limit := request.Limit
	if limit <= 0 {
		limit = defaultAccountTxLimit
	}
	if limit > maxAccountTxLimit {
		limit = maxAccountTxLimit
	}

	records, err := ctx.Services.History.ByAccount(ctx.Context, request.Account, limit)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}

	transactions := make([]map[string]interface{}, 0, len(records))
	for i := range records {
		transactions = append(transactions, recordJSON(&records[i]))
	}
	return map[string]interface{}{
		"account":      request.Account,
		"limit":        limit,
		"transactions": transactions,
	}, nil
}

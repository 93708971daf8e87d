package rpc_handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

const (
	defaultLedgerDataLimit = 256
	maxLedgerDataLimit     = 2048
)

var errPageFull = errors.New("page full")

// LedgerDataMethod handles the ledger_data RPC method. It pages through
// every committed entry in key order.
type LedgerDataMethod struct{ guestMethod }

type ledgerDataRequest struct {
	Limit  int    `json:"limit,omitempty"`
	Marker string `json:"marker,omitempty"`
	Type   string `json:"type,omitempty"`
}

func (m *LedgerDataMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if err := requireServices(ctx); err != nil {
		return nil, err
	}

	var request ledgerDataRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}

	limit := request.Limit
	if limit <= 0 {
		limit = defaultLedgerDataLimit
	}
	if limit > maxLedgerDataLimit {
		limit = maxLedgerDataLimit
	}

	var marker []byte
	if request.Marker != "" {
		key, err := tx.DecodeHash("marker", request.Marker)
		if err != nil {
			return nil, rpc_types.RpcErrorInvalidField("marker")
		}
		marker = key[:]
	}

	state := make([]map[string]interface{}, 0, limit)
	var (
		last [32]byte
		next string
	)
	err := ctx.Services.Ledger.Entries(ctx.Context, func(key [32]byte, data []byte) error {
		if marker != nil && bytes.Compare(key[:], marker) <= 0 {
			return nil
		}
		e, err := entry.Decode(data)
		if err != nil {
			return err
		}
		if !matchesType(request.Type, e.Type()) {
			return nil
		}
		if len(state) == limit {
			next = hexID(last[:])
			return errPageFull
		}
		state = append(state, entryJSON(key, e))
		last = key
		return nil
	})
	if err != nil && !errors.Is(err, errPageFull) {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}

	response := map[string]interface{}{
		"state": state,
		"limit": limit,
	}
	if next != "" {
		response["marker"] = next
	}
	return response, nil
}

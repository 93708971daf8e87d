package rpc_handlers

import (
	"encoding/json"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

// guestMethod is embedded by methods any client may call.
type guestMethod struct{}

func (guestMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (guestMethod) SupportedApiVersions() []int {
	return []int{rpc_types.ApiVersion1, rpc_types.ApiVersion2}
}

// adminMethod is embedded by methods restricted to trusted clients.
type adminMethod struct{ guestMethod }

func (adminMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleAdmin
}

// parseParams decodes params into v. Missing params leave v untouched.
func parseParams(params json.RawMessage, v interface{}) *rpc_types.RpcError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

func decodeAccountParam(address string) ([20]byte, *rpc_types.RpcError) {
	if address == "" {
		return [20]byte{}, rpc_types.RpcErrorMissingField("account")
	}
	id, err := addresscodec.DecodeAccountID(address)
	if err != nil {
		return [20]byte{}, rpc_types.RpcErrorActMalformed("Account malformed.")
	}
	return id, nil
}

// readEntry loads and decodes the entry at k. It reports false when the
// entry does not exist.
func readEntry(ctx *rpc_types.RpcContext, k keylet.Keylet, e entry.Entry) (bool, *rpc_types.RpcError) {
	data, err := ctx.Services.Ledger.Read(k)
	if err != nil {
		return false, rpc_types.RpcErrorInternal(err.Error())
	}
	if data == nil {
		return false, nil
	}
	if err := entry.DecodeInto(data, e); err != nil {
		return false, rpc_types.RpcErrorInternal("corrupt ledger entry: " + err.Error())
	}
	return true, nil
}

func requireServices(ctx *rpc_types.RpcContext) *rpc_types.RpcError {
	if ctx.Services == nil || ctx.Services.Ledger == nil {
		return rpc_types.RpcErrorInternal("Ledger service not available")
	}
	return nil
}

package rpc_handlers

import (
	"encoding/json"
	"errors"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/crypto"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

// SubmitMethod handles the submit RPC method. A signed tx_json is applied
// as is. With a secret, which only admin clients may send, the server fills
// the sequence and signs first.
type SubmitMethod struct{ guestMethod }

type submitRequest struct {
	TxJSON json.RawMessage `json:"tx_json"`
	Secret string          `json:"secret,omitempty"`
}

func (m *SubmitMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if err := requireServices(ctx); err != nil {
		return nil, err
	}
	if ctx.Services.Engine == nil {
		return nil, rpc_types.RpcErrorNotEnabled("submit")
	}

	var request submitRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	if len(request.TxJSON) == 0 {
		return nil, rpc_types.RpcErrorMissingField("tx_json")
	}

	transaction, err := tx.FromJSON(request.TxJSON)
	if err != nil {
		if errors.Is(err, tx.ErrUnknownTransactionType) {
			return nil, rpc_types.RpcErrorFromApply(err)
		}
		return nil, rpc_types.RpcErrorInvalidParams("Invalid tx_json: " + err.Error())
	}

	if request.Secret != "" {
		if ctx.Role < rpc_types.RoleAdmin {
			return nil, rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "noPermission", "noPermission",
				"Signing with a secret requires an admin connection.")
		}
		if rpcErr := signWithSecret(ctx, transaction, request.Secret); rpcErr != nil {
			return nil, rpcErr
		}
	}

	result := ctx.Services.Engine.Apply(ctx.Context, transaction)
	if result.Result == tx.TerRETRY {
		return nil, rpc_types.RpcErrorFromApply(result.Result.Err())
	}

	txJSON, err := tx.ToJSON(transaction)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}

	response := map[string]interface{}{
		"engine_result":         result.Result.String(),
		"engine_result_code":    int(result.Result),
		"engine_result_message": result.Message,
		"applied":               result.Applied,
		"tx_json":               json.RawMessage(txJSON),
	}
	if result.Hash != ([32]byte{}) {
		response["hash"] = hexID(result.Hash[:])
	}
	if result.Metadata != nil {
		response["meta"] = result.Metadata
	}
	return response, nil
}

func signWithSecret(ctx *rpc_types.RpcContext, transaction tx.Transaction, secret string) *rpc_types.RpcError {
	seed, err := addresscodec.DecodeSeed(secret)
	if err != nil {
		return rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "badSeed", "badSeed", "Disallowed seed.")
	}
	kp, err := crypto.KeyPairFromSeed(seed)
	if err != nil {
		return rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "badSeed", "badSeed", "Disallowed seed.")
	}

	common := transaction.GetCommon()
	if common.Account == "" {
		common.Account = addresscodec.EncodeAccountID(kp.AccountID())
	}
	if common.Sequence == 0 {
		id, rpcErr := decodeAccountParam(common.Account)
		if rpcErr != nil {
			return rpcErr
		}
		var root entry.AccountRoot
		found, rpcErr := readEntry(ctx, keylet.Account(id), &root)
		if rpcErr != nil {
			return rpcErr
		}
		if !found {
			return rpc_types.RpcErrorActNotFound("Account not found.")
		}
		common.Sequence = root.Sequence
	}

	if err := tx.Sign(transaction, kp); err != nil {
		return rpc_types.RpcErrorInternal(err.Error())
	}
	return nil
}

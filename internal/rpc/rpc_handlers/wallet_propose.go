package rpc_handlers

import (
	"encoding/json"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
	"github.com/LeJamon/coveredcall/internal/crypto"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

// WalletProposeMethod handles the wallet_propose RPC method. It generates a
// key pair, or derives one from a passphrase.
type WalletProposeMethod struct{ adminMethod }

type walletProposeRequest struct {
	Passphrase string `json:"passphrase,omitempty"`
}

func (m *WalletProposeMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request walletProposeRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}

	var (
		seed []byte
		err  error
	)
	if request.Passphrase != "" {
		seed = crypto.SeedFromPassphrase(request.Passphrase)
	} else if seed, err = crypto.RandomSeed(); err != nil {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}

	kp, err := crypto.KeyPairFromSeed(seed)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal(err.Error())
	}
	return map[string]interface{}{
		"account_id":     addresscodec.EncodeAccountID(kp.AccountID()),
		"master_seed":    addresscodec.EncodeSeed(seed),
		"public_key_hex": kp.PublicKeyHex(),
	}, nil
}

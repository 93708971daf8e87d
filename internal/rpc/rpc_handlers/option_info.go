package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/settlement"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

// OptionInfoMethod handles the option_info RPC method. Besides the stored
// contract it reports vault balances, the lifecycle state and, when a price
// exponent is known, the strike.
type OptionInfoMethod struct{ guestMethod }

type optionInfoRequest struct {
	Option string `json:"option"`
	// Exponent scales the strike when the expiry has no mark yet.
	Exponent *int32 `json:"exponent,omitempty"`
}

func (m *OptionInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if err := requireServices(ctx); err != nil {
		return nil, err
	}

	var request optionInfoRequest
	if err := parseParams(params, &request); err != nil {
		return nil, err
	}
	if request.Option == "" {
		return nil, rpc_types.RpcErrorMissingField("option")
	}
	key, err := tx.DecodeHash("option", request.Option)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidField("option")
	}

	k := keylet.Keylet{Type: entry.TypeOptionContract, Key: key}
	var o entry.OptionContract
	found, rpcErr := readEntry(ctx, k, &o)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if !found {
		return nil, rpc_types.RpcErrorObjectNotFound("Option not found.")
	}

	var base, quote entry.Mint
	if _, rpcErr := readEntry(ctx, keylet.Mint(o.BaseMint), &base); rpcErr != nil {
		return nil, rpcErr
	}
	if _, rpcErr := readEntry(ctx, keylet.Mint(o.QuoteMint), &quote); rpcErr != nil {
		return nil, rpcErr
	}

	baseVault, rpcErr := vaultBalance(ctx, k, o.BaseMint)
	if rpcErr != nil {
		return nil, rpcErr
	}
	quoteVault, rpcErr := vaultBalance(ctx, k, o.QuoteMint)
	if rpcErr != nil {
		return nil, rpcErr
	}

	markKey := keylet.ExpiryMark(o.Expiry)
	now := ctx.Services.Clock().Unix()
	response := map[string]interface{}{
		"option":         entryJSON(key, &o),
		"state":          optionState(&o),
		"expired":        now > o.Expiry,
		"expiry_time":    unixTime(o.Expiry),
		"base_amount":    settlement.DisplayAmount(o.BaseAmount, base.Decimals).String(),
		"quote_amount":   settlement.DisplayAmount(o.QuoteAmount, quote.Decimals).String(),
		"base_vault":     baseVault,
		"quote_vault":    quoteVault,
		"vault_owner":    address(keylet.OptionAddress(k)),
		"settlement":     string(settlementPolicy(ctx)),
		"mark_index":     hexID(markKey.Key[:]),
		"base_decimals":  base.Decimals,
		"quote_decimals": quote.Decimals,
	}
	if p, ok := o.PremiumAmount(); ok {
		response["premium"] = settlement.DisplayAmount(p, quote.Decimals).String()
	}

	var mark entry.ExpiryMark
	markFound, rpcErr := readEntry(ctx, markKey, &mark)
	if rpcErr != nil {
		return nil, rpcErr
	}

	exponent := request.Exponent
	if markFound && mark.IsMarked() {
		exponent = &mark.Exponent
		response["mark"] = settlement.DisplayPrice(mark.Price, mark.Exponent).String()
	}
	if exponent == nil {
		return response, nil
	}

	scale := settlement.Scale{
		BaseDecimals:  base.Decimals,
		QuoteDecimals: quote.Decimals,
		Exponent:      *exponent,
	}
	strike, err := settlement.CalcStrike(o.BaseAmount, o.QuoteAmount, scale)
	if err != nil {
		response["strike_error"] = err.Error()
		return response, nil
	}
	response["strike"] = strike
	response["strike_price"] = settlement.DisplayStrike(strike, scale).String()

	if markFound && mark.IsMarked() {
		seller, buyer := settlement.Settlements(strike, mark.Price, o.BaseAmount)
		response["in_the_money"] = settlement.InTheMoney(strike, mark.Price)
		response["seller_share"] = seller
		response["buyer_share"] = buyer
	}
	return response, nil
}

func optionState(o *entry.OptionContract) string {
	switch {
	case o.Exercised:
		return "exercised"
	case o.IsBought():
		return "bought"
	default:
		return "open"
	}
}

func settlementPolicy(ctx *rpc_types.RpcContext) tx.SettlementPolicy {
	if ctx.Services.Engine == nil {
		return tx.DefaultEngineConfig().SettlementPolicy
	}
	return ctx.Services.Engine.Config().SettlementPolicy
}

func vaultBalance(ctx *rpc_types.RpcContext, option keylet.Keylet, mint [20]byte) (uint64, *rpc_types.RpcError) {
	var h entry.Holding
	found, rpcErr := readEntry(ctx, keylet.Vault(option, mint), &h)
	if rpcErr != nil || !found {
		return 0, rpcErr
	}
	return h.Amount, nil
}

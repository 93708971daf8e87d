package rpc_handlers

import (
	"encoding/json"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
)

// ServerInfoMethod handles the server_info RPC method
type ServerInfoMethod struct{ guestMethod }

func (m *ServerInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if ctx.Services == nil {
		return nil, rpc_types.RpcErrorInternal("Services not available")
	}
	svc := ctx.Services

	info := map[string]interface{}{
		"build_version": svc.Version,
		"server_state":  "standalone",
		"uptime":        int64(time.Since(svc.StartTime).Seconds()),
		"time":          svc.Clock().UTC().Format(time.RFC3339),
	}

	if svc.Genesis != nil {
		info["genesis"] = svc.Genesis
	}

	if svc.Engine != nil {
		cfg := svc.Engine.Config()
		engine := map[string]interface{}{
			"settlement_policy": string(cfg.SettlementPolicy),
			"mark_window":       cfg.MarkWindow.String(),
			"max_price_age":     cfg.MaxPriceAge.String(),
			"deposits": map[string]uint64{
				"holding":    cfg.Deposits.Holding,
				"option":     cfg.Deposits.Option,
				"mark":       cfg.Deposits.Mark,
				"mint":       cfg.Deposits.Mint,
				"price_feed": cfg.Deposits.PriceFeed,
			},
		}
		if cfg.HasMarkFeed() {
			engine["mark_feed"] = map[string]string{
				"publisher": address(cfg.MarkFeed.Publisher),
				"feed_id":   hexID(cfg.MarkFeed.ID[:]),
			}
		}
		info["engine"] = engine
	}

	types := tx.SupportedTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String())
	}
	info["transaction_types"] = names

	if svc.History != nil {
		count, err := svc.History.Count(ctx.Context)
		if err != nil {
			return nil, rpc_types.RpcErrorInternal(err.Error())
		}
		info["journaled_transactions"] = count
	}

	return map[string]interface{}{"info": info}, nil
}

// PingMethod handles the ping RPC method
type PingMethod struct{ guestMethod }

func (m *PingMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return map[string]interface{}{}, nil
}

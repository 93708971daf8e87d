package rpc

import (
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_handlers"
)

// registerAllMethods registers every RPC method with the server
func (s *Server) registerAllMethods() {
	// Server methods
	s.registry.Register("server_info", &rpc_handlers.ServerInfoMethod{})
	s.registry.Register("ping", &rpc_handlers.PingMethod{})

	// Account methods
	s.registry.Register("account_info", &rpc_handlers.AccountInfoMethod{})
	s.registry.Register("account_tx", &rpc_handlers.AccountTxMethod{})

	// Option and oracle methods
	s.registry.Register("option_info", &rpc_handlers.OptionInfoMethod{})
	s.registry.Register("mark_info", &rpc_handlers.MarkInfoMethod{})
	s.registry.Register("feed_info", &rpc_handlers.FeedInfoMethod{})

	// Ledger methods
	s.registry.Register("ledger_entry", &rpc_handlers.LedgerEntryMethod{})
	s.registry.Register("ledger_data", &rpc_handlers.LedgerDataMethod{})

	// Transaction methods
	s.registry.Register("submit", &rpc_handlers.SubmitMethod{})
	s.registry.Register("tx", &rpc_handlers.TxMethod{})

	// Admin methods
	s.registry.Register("wallet_propose", &rpc_handlers.WalletProposeMethod{})
}

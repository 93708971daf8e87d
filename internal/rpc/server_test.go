package rpc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/core/tx/mint"
	"github.com/LeJamon/coveredcall/internal/rpc"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
	"github.com/LeJamon/coveredcall/internal/storage/journal"
	jtx "github.com/LeJamon/coveredcall/internal/testing"
	"github.com/LeJamon/coveredcall/internal/testing/mark"
	"github.com/LeJamon/coveredcall/internal/testing/option"
	"github.com/LeJamon/coveredcall/internal/testing/oracle"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcFixture struct {
	env    *jtx.TestEnv
	server *rpc.Server
	ws     *rpc.WebSocketServer
	http   *httptest.Server
	issuer *jtx.Account
	seller *jtx.Account
	buyer  *jtx.Account
}

func setupRPC(t *testing.T, opts rpc.Options) *rpcFixture {
	t.Helper()

	j, err := journal.Open(context.Background(), journal.SQLiteConfig(filepath.Join(t.TempDir(), "journal.db")))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	opts.Logger = logrus.NewEntry(logger)

	services := &rpc_types.ServiceContainer{
		History:   j,
		StartTime: time.Now(),
		Version:   "test",
	}
	server := rpc.NewServer(services, opts)
	ws := rpc.NewWebSocketServer(server)

	env := jtx.NewTestEnvWithOptions(t, jtx.DefaultConfig(), tx.WithJournal(j), tx.WithObserver(ws))
	services.Ledger = env.Store()
	services.Engine = env.Engine()
	services.Now = env.Now

	srv := httptest.NewServer(rpc.Handler(server, ws))
	t.Cleanup(func() {
		ws.Close()
		srv.Close()
	})

	f := &rpcFixture{
		env:    env,
		server: server,
		ws:     ws,
		http:   srv,
		issuer: jtx.NewAccount("issuer"),
		seller: jtx.NewAccount("seller"),
		buyer:  jtx.NewAccount("buyer"),
	}
	env.Fund(f.issuer, f.seller, f.buyer)
	return f
}

// call posts method and returns the result object.
func (f *rpcFixture) call(t *testing.T, method string, params interface{}) map[string]interface{} {
	t.Helper()

	request := map[string]interface{}{"method": method}
	if params != nil {
		request["params"] = []interface{}{params}
	}
	body, err := json.Marshal(request)
	require.NoError(t, err)

	resp, err := http.Post(f.http.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Result)
	return out.Result
}

func requireSuccess(t *testing.T, result map[string]interface{}) {
	t.Helper()
	require.Equal(t, "success", result["status"], "result: %v", result)
}

func requireError(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	require.Equal(t, "error", result["status"], "result: %v", result)
	require.Equal(t, code, result["error"])
}

func TestServer_GetDefaultsToServerInfo(t *testing.T) {
	f := setupRPC(t, rpc.Options{})

	resp, err := http.Get(f.http.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	requireSuccess(t, out.Result)

	info := out.Result["info"].(map[string]interface{})
	assert.Equal(t, "test", info["build_version"])
	assert.Equal(t, "standalone", info["server_state"])
	engine := info["engine"].(map[string]interface{})
	assert.Equal(t, "oracle", engine["settlement_policy"])
	markFeed := engine["mark_feed"].(map[string]interface{})
	assert.Equal(t, jtx.OracleAccount().Address, markFeed["publisher"])
	assert.Equal(t, jtx.FeedIDHex(jtx.FeedID(jtx.MarkSymbol)), markFeed["feed_id"])
	assert.Contains(t, info["transaction_types"], "OptionCreate")
}

func TestServer_RequestErrors(t *testing.T) {
	f := setupRPC(t, rpc.Options{})

	t.Run("UnknownMethod", func(t *testing.T) {
		result := f.call(t, "no_such_method", map[string]interface{}{"x": 1})
		requireError(t, result, "unknownCmd")
		request := result["request"].(map[string]interface{})
		assert.Equal(t, "no_such_method", request["command"])
	})

	t.Run("MissingMethod", func(t *testing.T) {
		resp, err := http.Post(f.http.URL, "application/json", strings.NewReader(`{"params":[{}]}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out struct {
			Result map[string]interface{} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		requireError(t, out.Result, "missingCommand")
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		resp, err := http.Post(f.http.URL, "application/json", strings.NewReader(`{`))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out struct {
			Result map[string]interface{} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		requireError(t, out.Result, "jsonInvalid")
	})

	t.Run("UnsupportedApiVersion", func(t *testing.T) {
		result := f.call(t, "ping", map[string]interface{}{"api_version": 9})
		requireError(t, result, "invalidApiVersion")
	})

	t.Run("AdminOnly", func(t *testing.T) {
		result := f.call(t, "wallet_propose", nil)
		requireError(t, result, "noPermission")
	})
}

func TestServer_AccountInfo(t *testing.T) {
	f := setupRPC(t, rpc.Options{})

	result := f.call(t, "account_info", map[string]interface{}{"account": f.buyer.Address})
	requireSuccess(t, result)
	data := result["account_data"].(map[string]interface{})
	assert.Equal(t, "AccountRoot", data["LedgerEntryType"])
	assert.Equal(t, f.buyer.Address, data["Account"])
	assert.EqualValues(t, jtx.DefaultFunding, data["Balance"])
	assert.EqualValues(t, 1, data["Sequence"])
	assert.Equal(t, "1000", result["balance_display"])

	requireError(t, f.call(t, "account_info", map[string]interface{}{"account": jtx.NewAccount("ghost").Address}), "actNotFound")
	requireError(t, f.call(t, "account_info", map[string]interface{}{"account": "not-an-address"}), "actMalformed")
	requireError(t, f.call(t, "account_info", map[string]interface{}{}), "invalidParams")
}

func TestServer_SubmitAndHistory(t *testing.T) {
	f := setupRPC(t, rpc.Options{})

	txn := mint.NewMintCreate(f.issuer.Address, 6)
	txn.GetCommon().Sequence = f.env.Seq(f.issuer)
	require.NoError(t, tx.Sign(txn, f.issuer.Key))
	raw, err := tx.ToJSON(txn)
	require.NoError(t, err)

	result := f.call(t, "submit", map[string]interface{}{"tx_json": json.RawMessage(raw)})
	requireSuccess(t, result)
	assert.Equal(t, "tesSUCCESS", result["engine_result"])
	assert.EqualValues(t, 0, result["engine_result_code"])
	assert.Equal(t, true, result["applied"])
	hash := result["hash"].(string)
	require.Len(t, hash, 64)
	jtx.RequireSequence(t, f.env, f.issuer, 2)

	// Replaying the same transaction is rejected and also journaled.
	replay := f.call(t, "submit", map[string]interface{}{"tx_json": json.RawMessage(raw)})
	requireSuccess(t, replay)
	assert.Equal(t, "tefPAST_SEQ", replay["engine_result"])
	assert.Equal(t, false, replay["applied"])

	found := f.call(t, "tx", map[string]interface{}{"transaction": hash})
	requireSuccess(t, found)
	assert.Equal(t, "MintCreate", found["type"])
	assert.Equal(t, f.issuer.Address, found["account"])

	history := f.call(t, "account_tx", map[string]interface{}{"account": f.issuer.Address})
	requireSuccess(t, history)
	assert.NotEmpty(t, history["transactions"])

	requireError(t, f.call(t, "tx", map[string]interface{}{"transaction": strings.Repeat("AB", 32)}), "txnNotFound")
}

func TestServer_SubmitRejectsBadInput(t *testing.T) {
	f := setupRPC(t, rpc.Options{})

	requireError(t, f.call(t, "submit", map[string]interface{}{}), "invalidParams")
	requireError(t, f.call(t, "submit", map[string]interface{}{
		"tx_json": map[string]interface{}{"TransactionType": "Payment"},
	}), "invalidParams")

	// Unsigned transactions reach the engine and fail there.
	result := f.call(t, "submit", map[string]interface{}{
		"tx_json": map[string]interface{}{
			"TransactionType": "MintCreate",
			"Account":         f.issuer.Address,
			"Sequence":        1,
			"Decimals":        6,
		},
	})
	requireSuccess(t, result)
	assert.Equal(t, "temBAD_SIGNATURE", result["engine_result"])
}

func TestServer_SubmitWithSecret(t *testing.T) {
	params := map[string]interface{}{
		"tx_json": map[string]interface{}{
			"TransactionType": "MintCreate",
			"Decimals":        9,
		},
	}

	t.Run("Guest", func(t *testing.T) {
		f := setupRPC(t, rpc.Options{})
		params["secret"] = f.issuer.Secret()
		result := f.call(t, "submit", params)
		requireError(t, result, "noPermission")
		request := result["request"].(map[string]interface{})
		assert.NotContains(t, request, "secret")
	})

	t.Run("Admin", func(t *testing.T) {
		f := setupRPC(t, rpc.Options{AdminLoopback: true})
		params["secret"] = f.issuer.Secret()
		result := f.call(t, "submit", params)
		requireSuccess(t, result)
		assert.Equal(t, "tesSUCCESS", result["engine_result"])
		txJSON := result["tx_json"].(map[string]interface{})
		assert.Equal(t, f.issuer.Address, txJSON["Account"])
		assert.EqualValues(t, 1, txJSON["Sequence"])

		mintID := keylet.MintID(f.issuer.ID, 1)
		jtx.RequireEntryExists(t, f.env, keylet.Mint(mintID))
	})
}

func TestServer_WalletPropose(t *testing.T) {
	f := setupRPC(t, rpc.Options{AdminLoopback: true})

	result := f.call(t, "wallet_propose", map[string]interface{}{"passphrase": "seller"})
	requireSuccess(t, result)
	assert.Equal(t, f.seller.Address, result["account_id"])
	assert.Equal(t, f.seller.Secret(), result["master_seed"])

	random := f.call(t, "wallet_propose", nil)
	requireSuccess(t, random)
	assert.NotEqual(t, f.seller.Address, random["account_id"])
}

func TestServer_OptionAndMarkInfo(t *testing.T) {
	f := setupRPC(t, rpc.Options{})
	env := f.env
	pyth := jtx.OracleAccount()
	env.Fund(pyth)

	sol := env.CreateMint(f.issuer, 9)
	usdc := env.CreateMint(f.issuer, 6)
	env.MintTo(f.issuer, sol, f.seller, jtx.Units(10, 9))
	env.MintTo(f.issuer, usdc, f.buyer, jtx.Units(1000, 6))

	expiry := env.Now().Add(time.Hour)
	b := option.Create(f.seller, f.buyer, sol, usdc, jtx.Units(1, 9), jtx.Units(130, 6)).ExpiryTime(expiry)
	jtx.RequireTxSuccess(t, env.Submit(b.Build()))
	k := b.Key()

	result := f.call(t, "option_info", map[string]interface{}{"option": option.ID(k)})
	requireSuccess(t, result)
	assert.Equal(t, "open", result["state"])
	assert.Equal(t, false, result["expired"])
	assert.Equal(t, "1", result["base_amount"])
	assert.Equal(t, "130", result["quote_amount"])
	markKey := keylet.ExpiryMark(expiry.Unix())
	assert.Equal(t, tx.EncodeID(markKey.Key[:]), result["mark_index"])
	assert.EqualValues(t, jtx.Units(1, 9), result["base_vault"])
	assert.EqualValues(t, 0, result["quote_vault"])
	assert.NotContains(t, result, "strike")

	withExpo := f.call(t, "option_info", map[string]interface{}{"option": option.ID(k), "exponent": -8})
	requireSuccess(t, withExpo)
	assert.EqualValues(t, 13_000_000_000, withExpo["strike"])
	assert.Equal(t, "130", withExpo["strike_price"])

	jtx.RequireTxSuccess(t, env.Submit(option.Buy(f.buyer, k, jtx.Units(5, 6))))

	publishAt := expiry.Add(-10 * time.Minute)
	env.SetTime(publishAt)
	feed := oracle.FeedID(jtx.MarkSymbol)
	jtx.RequireTxSuccess(t, env.Submit(oracle.Publish(pyth, feed, 140*100_000_000, -8).At(publishAt).Build()))
	jtx.RequireTxSuccess(t, env.Submit(mark.Set(f.buyer, expiry)))

	result = f.call(t, "option_info", map[string]interface{}{"option": option.ID(k)})
	requireSuccess(t, result)
	assert.Equal(t, "bought", result["state"])
	assert.Equal(t, "5", result["premium"])
	assert.Equal(t, "140", result["mark"])
	assert.Equal(t, true, result["in_the_money"])
	assert.EqualValues(t, 928_571_428, result["seller_share"])
	assert.EqualValues(t, 71_428_572, result["buyer_share"])

	markResult := f.call(t, "mark_info", map[string]interface{}{"expiry": expiry.Unix()})
	requireSuccess(t, markResult)
	m := markResult["mark"].(map[string]interface{})
	assert.Equal(t, true, m["marked"])
	assert.Equal(t, "140", m["price"])
	assert.Equal(t, f.buyer.Address, m["Funder"])

	feedResult := f.call(t, "feed_info", map[string]interface{}{
		"publisher": pyth.Address,
		"feed_id":   jtx.FeedIDHex(feed),
	})
	requireSuccess(t, feedResult)
	assert.Equal(t, true, feedResult["fresh"])

	env.AdvanceTime(8 * 24 * time.Hour)
	stale := f.call(t, "feed_info", map[string]interface{}{
		"publisher": pyth.Address,
		"feed_id":   jtx.FeedIDHex(feed),
	})
	assert.Equal(t, false, stale["fresh"])

	requireError(t, f.call(t, "option_info", map[string]interface{}{"option": strings.Repeat("00", 32)}), "objectNotFound")
	requireError(t, f.call(t, "option_info", map[string]interface{}{"option": "xyz"}), "invalidParams")
	requireError(t, f.call(t, "mark_info", map[string]interface{}{"expiry": expiry.Unix() + 1}), "objectNotFound")
	requireError(t, f.call(t, "mark_info", map[string]interface{}{}), "invalidParams")
}

func TestServer_LedgerData(t *testing.T) {
	f := setupRPC(t, rpc.Options{})

	all := f.call(t, "ledger_data", map[string]interface{}{"type": "AccountRoot"})
	requireSuccess(t, all)
	// master, issuer, seller and buyer
	require.Len(t, all["state"], 4)
	assert.NotContains(t, all, "marker")

	first := f.call(t, "ledger_data", map[string]interface{}{"type": "AccountRoot", "limit": 3})
	requireSuccess(t, first)
	require.Len(t, first["state"], 3)
	marker, ok := first["marker"].(string)
	require.True(t, ok)

	second := f.call(t, "ledger_data", map[string]interface{}{"type": "AccountRoot", "limit": 3, "marker": marker})
	requireSuccess(t, second)
	require.Len(t, second["state"], 1)
	assert.NotContains(t, second, "marker")

	index := second["state"].([]interface{})[0].(map[string]interface{})["index"].(string)
	entry := f.call(t, "ledger_entry", map[string]interface{}{"index": index})
	requireSuccess(t, entry)
	assert.Equal(t, "AccountRoot", entry["node"].(map[string]interface{})["LedgerEntryType"])

	requireError(t, f.call(t, "ledger_entry", map[string]interface{}{"index": strings.Repeat("00", 32)}), "objectNotFound")
}

func TestServer_HistoryDisabled(t *testing.T) {
	env := jtx.NewTestEnv(t)
	server := rpc.NewServer(&rpc_types.ServiceContainer{Ledger: env.Store(), Engine: env.Engine()}, rpc.Options{})
	srv := httptest.NewServer(server)
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json",
		strings.NewReader(`{"method":"tx","params":[{"transaction":"`+strings.Repeat("00", 32)+`"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	requireError(t, out.Result, "notEnabled")
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	jtx "github.com/LeJamon/coveredcall/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useLedger points the configuration at a fresh on-disk ledger.
func useLedger(t *testing.T) {
	t.Helper()
	t.Setenv("COVEREDCALL_DATA_DIR", t.TempDir())
	t.Setenv("COVEREDCALL_STORAGE_BACKEND", "leveldb")
	t.Setenv("COVEREDCALL_LOGGING_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func runJSON(t *testing.T, args ...string) map[string]interface{} {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	return result
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "coveredcalld version "+Version)
	assert.Contains(t, out, "OptionCreate")
	assert.Contains(t, out, "MintCreate")
}

func TestKeygen(t *testing.T) {
	master := jtx.MasterAccount()
	result := runJSON(t, "keygen", "--passphrase", "masterpassphrase")
	assert.Equal(t, master.Address, result["account_id"])
	assert.Equal(t, master.Secret(), result["master_seed"])

	a := runJSON(t, "keygen")
	b := runJSON(t, "keygen")
	assert.NotEqual(t, a["account_id"], b["account_id"])
}

func TestStrike(t *testing.T) {
	result := runJSON(t, "strike",
		"--base", "1000000", "--quote", "130000000",
		"--base-decimals", "6", "--quote-decimals", "6",
		"--exponent", "-8", "--mark", "14000000000")
	assert.EqualValues(t, 13_000_000_000, result["strike"])
	assert.Equal(t, "130", result["strike_price"])
	assert.Equal(t, "140", result["mark_price"])
	assert.Equal(t, true, result["in_the_money"])
	assert.EqualValues(t, 928_571, result["seller_share"])
	assert.EqualValues(t, 71_429, result["buyer_share"])

	result = runJSON(t, "strike", "--base", "1000000", "--quote", "130000000",
		"--base-decimals", "6", "--quote-decimals", "6")
	assert.NotContains(t, result, "seller_share")

	_, err := run(t, "strike", "--base", "0", "--quote", "5")
	require.Error(t, err)
	_, err = run(t, "strike", "--quote", "5")
	require.Error(t, err)
}

func TestGenesisAndQueries(t *testing.T) {
	useLedger(t)
	master := jtx.MasterAccount()

	first := runJSON(t, "genesis")
	assert.Equal(t, master.Address, first["master"])
	second := runJSON(t, "genesis")
	assert.Equal(t, first["hash"], second["hash"])

	account := runJSON(t, "account", "show", master.Address)
	data := account["account_data"].(map[string]interface{})
	assert.Equal(t, master.Address, data["Account"])

	info := runJSON(t, "rpc", "server_info")["info"].(map[string]interface{})
	assert.Equal(t, "standalone", info["server_state"])

	_, err := run(t, "account", "show", jtx.NewAccount("ghost").Address)
	require.ErrorContains(t, err, "actNotFound")
	_, err = run(t, "mark", "show", "soon")
	require.Error(t, err)
	_, err = run(t, "rpc", "no_such_method")
	require.ErrorContains(t, err, "unknownCmd")
}

func TestSignAndSubmit(t *testing.T) {
	useLedger(t)
	master := jtx.MasterAccount()

	signed := runJSON(t, "sign", "--secret", master.Secret(), "--sequence", "1",
		`{"TransactionType":"MintCreate","Decimals":6}`)
	txJSON, err := json.Marshal(signed["tx_json"])
	require.NoError(t, err)
	assert.Equal(t, master.Address, signed["tx_json"].(map[string]interface{})["Account"])

	result := runJSON(t, "submit", string(txJSON))
	assert.Equal(t, "tesSUCCESS", result["engine_result"])
	assert.Equal(t, signed["hash"], result["hash"])

	found := runJSON(t, "rpc", "tx", `{"transaction":"`+signed["hash"].(string)+`"}`)
	assert.Equal(t, "tesSUCCESS", found["engine_result"])

	// The node fills the next sequence when it signs.
	result = runJSON(t, "submit", "--secret", master.Secret(),
		`{"TransactionType":"MintCreate","Decimals":2}`)
	assert.Equal(t, "tesSUCCESS", result["engine_result"])

	history := runJSON(t, "account", "tx", master.Address)
	assert.Len(t, history["transactions"], 2)

	_, err = run(t, "sign", "--secret", master.Secret(), `{"TransactionType":"MintCreate"}`)
	require.ErrorContains(t, err, "Sequence")
	_, err = run(t, "sign", "--secret", "nope", "--sequence", "1", `{"TransactionType":"MintCreate"}`)
	require.Error(t, err)
	_, err = run(t, "submit", "{")
	require.Error(t, err)
}

func TestServeAndRemoteSubmit(t *testing.T) {
	useLedger(t)
	master := jtx.MasterAccount()

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	opts := &rootOptions{}
	go func() { done <- opts.serve(ctx, "127.0.0.1:0", ready) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not start")
	}

	url := "http://" + addr + "/"
	result := runJSON(t, "submit", "--url", url, "--secret", master.Secret(),
		`{"TransactionType":"MintCreate","Decimals":6}`)
	assert.Equal(t, "tesSUCCESS", result["engine_result"])
	assert.Equal(t, "success", result["status"])

	_, err := run(t, "submit", "--url", url, `{"TransactionType":"Bogus"}`)
	require.Error(t, err)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop")
	}
}

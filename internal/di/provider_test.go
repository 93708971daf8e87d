package di_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/LeJamon/coveredcall/internal/config"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/di"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
	"github.com/LeJamon/coveredcall/internal/storage"
	jtx "github.com/LeJamon/coveredcall/internal/testing"
	"github.com/LeJamon/coveredcall/internal/testing/mint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(config.ConfigPaths{})
	require.NoError(t, err)
	cfg.DataDir = t.TempDir()
	cfg.Storage.Backend = backend
	cfg.Logging.Level = "error"
	return cfg
}

func newProvider(t *testing.T, cfg *config.Config) (*di.Container, *di.Provider) {
	t.Helper()
	c := di.New()
	p := di.NewProvider(c, cfg, "test")
	require.NoError(t, p.RegisterAll())
	return c, p
}

func TestContainer(t *testing.T) {
	c := di.New()
	builds := 0
	c.RegisterBuilder("answer", func(c *di.Container) (interface{}, error) {
		builds++
		return 42, nil
	})
	c.Register("name", "node")

	assert.True(t, c.Has("answer"))
	assert.True(t, c.Has("name"))
	assert.False(t, c.Has("missing"))

	v, err := c.Get("answer")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	_, _ = c.Get("answer")
	assert.Equal(t, 1, builds)

	_, err = c.Get("missing")
	require.Error(t, err)
	assert.Panics(t, func() { c.MustGet("missing") })

	require.NoError(t, c.Close())
	assert.False(t, c.Has("name"))
	assert.True(t, c.Has("answer"))
}

func TestProvider_RequiresConfig(t *testing.T) {
	p := di.NewProvider(di.New(), nil, "test")
	require.Error(t, p.RegisterAll())
}

func TestProvider_Node(t *testing.T) {
	cfg := testConfig(t, storage.BackendMemory)
	c, p := newProvider(t, cfg)
	t.Cleanup(func() { _ = c.Close() })

	node, err := p.Node()
	require.NoError(t, err)
	require.NotNil(t, node.Engine)
	require.NotNil(t, node.WebSocket)
	require.NotNil(t, node.Handler())

	info, err := p.Genesis()
	require.NoError(t, err)
	master := jtx.MasterAccount()
	assert.Equal(t, master.Address, info.Master)

	txn := mint.Create(master, 6)
	txn.GetCommon().Sequence = 1
	require.NoError(t, tx.Sign(txn, master.Key))
	res := node.Engine.Apply(context.Background(), txn)
	require.Equal(t, tx.TesSUCCESS, res.Result)

	j, err := p.Journal()
	require.NoError(t, err)
	require.NotNil(t, j)
	count, err := j.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	params, err := json.Marshal(map[string]string{"account": master.Address})
	require.NoError(t, err)
	result, rpcErr := node.RPC.Call(context.Background(), rpc_types.RoleGuest, "account_info", params)
	require.Nil(t, rpcErr)
	data := result.(map[string]interface{})["account_data"]
	require.NotNil(t, data)
}

func TestProvider_JournalDisabled(t *testing.T) {
	cfg := testConfig(t, storage.BackendMemory)
	cfg.Journal.Enabled = false
	cfg.RPC.WebSocket = false
	c, p := newProvider(t, cfg)
	t.Cleanup(func() { _ = c.Close() })

	node, err := p.Node()
	require.NoError(t, err)
	assert.Nil(t, node.WebSocket)

	j, err := p.Journal()
	require.NoError(t, err)
	assert.Nil(t, j)

	_, rpcErr := node.RPC.Call(context.Background(), rpc_types.RoleGuest, "tx",
		json.RawMessage(`{"transaction":"`+tx.EncodeID(make([]byte, 32))+`"}`))
	require.NotNil(t, rpcErr)
	assert.Equal(t, "notEnabled", rpcErr.ErrorString)
}

func TestProvider_GenesisSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, storage.BackendLevelDB)
	cfg.Journal.Enabled = false

	c, p := newProvider(t, cfg)
	first, err := p.Genesis()
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, p = newProvider(t, cfg)
	t.Cleanup(func() { _ = c.Close() })
	second, err := p.Genesis()
	require.NoError(t, err)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestProvider_BadBackend(t *testing.T) {
	cfg := testConfig(t, storage.BackendMemory)
	cfg.Storage.Backend = "tape"
	_, p := newProvider(t, cfg)
	_, err := p.Node()
	require.Error(t, err)
}

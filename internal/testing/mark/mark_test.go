package mark_test

import (
	"testing"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	feeds "github.com/LeJamon/coveredcall/internal/core/oracle"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	jtx "github.com/LeJamon/coveredcall/internal/testing"
	"github.com/LeJamon/coveredcall/internal/testing/mark"
	"github.com/LeJamon/coveredcall/internal/testing/oracle"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env    *jtx.TestEnv
	alice  *jtx.Account
	bob    *jtx.Account
	pyth   *jtx.Account
	feed   [32]byte
	expiry time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		env:   jtx.NewTestEnv(t),
		alice: jtx.NewAccount("alice"),
		bob:   jtx.NewAccount("bob"),
		pyth:  jtx.OracleAccount(),
		feed:  oracle.FeedID(jtx.MarkSymbol),
	}
	f.env.Fund(f.alice, f.bob, f.pyth)
	f.expiry = f.env.Now().Add(time.Hour)
	return f
}

func (f *fixture) publish(t *testing.T, price int64, at time.Time) {
	t.Helper()
	f.env.SetTime(at)
	jtx.RequireTxSuccess(t, f.env.Submit(oracle.Publish(f.pyth, f.feed, price, -8).Conf(42).At(at).Build()))
}

func TestMark_Set(t *testing.T) {
	f := setup(t)
	deposits := f.env.Config().Deposits
	f.publish(t, 14_000_000_000, f.expiry.Add(-5*time.Minute))

	jtx.RequireTxSuccess(t, f.env.Submit(mark.Set(f.alice, f.expiry)))

	m := f.env.Mark(f.expiry.Unix())
	require.NotNil(t, m)
	require.True(t, m.IsMarked())
	require.Equal(t, int64(14_000_000_000), m.Price)
	require.Equal(t, uint64(42), m.Conf)
	require.Equal(t, int32(-8), m.Exponent)
	require.Equal(t, f.expiry.Add(-5*time.Minute).Unix(), m.PublishTime)
	require.Equal(t, f.alice.ID, m.Funder)
	jtx.RequireBalance(t, f.env, f.alice, jtx.DefaultFunding-deposits.Mark)
	jtx.RequireOwnerCount(t, f.env, f.alice, 1)
}

func TestMark_LaterUpdateKeepsFunder(t *testing.T) {
	f := setup(t)
	f.publish(t, 14_000_000_000, f.expiry.Add(-20*time.Minute))
	jtx.RequireTxSuccess(t, f.env.Submit(mark.Set(f.alice, f.expiry)))

	f.publish(t, 15_000_000_000, f.expiry)
	jtx.RequireTxSuccess(t, f.env.Submit(mark.Set(f.bob, f.expiry)))

	m := f.env.Mark(f.expiry.Unix())
	require.Equal(t, int64(15_000_000_000), m.Price)
	require.Equal(t, f.alice.ID, m.Funder)
	jtx.RequireBalance(t, f.env, f.bob, jtx.DefaultFunding)
}

func TestMark_RejectsRegression(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := feeds.NewMockReader(ctrl)

	env := jtx.NewTestEnvWithOptions(t, jtx.DefaultConfig(), tx.WithOracle(reader))
	alice := jtx.NewAccount("alice")
	env.Fund(alice)
	expiry := env.Now().Add(time.Hour)
	env.SetTime(expiry)

	newer := feeds.Price{Price: 14_000_000_000, Exponent: -8, PublishTime: expiry.Add(-10 * time.Minute).Unix()}
	older := feeds.Price{Price: 10_000_000_000, Exponent: -8, PublishTime: expiry.Add(-20 * time.Minute).Unix()}
	gomock.InOrder(
		reader.EXPECT().PriceNoOlderThan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(newer, nil),
		reader.EXPECT().PriceNoOlderThan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(older, nil),
		reader.EXPECT().PriceNoOlderThan(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(newer, nil),
	)

	jtx.RequireTxSuccess(t, env.Submit(mark.Set(alice, expiry)))

	// an older reading cannot replace a newer mark
	jtx.AssertNoStateChange(t, env, func() {
		jtx.RequireTxFail(t, env.Submit(mark.Set(alice, expiry)), tx.TecPRICE_IRRELEVANT)
	})
	require.Equal(t, int64(14_000_000_000), env.Mark(expiry.Unix()).Price)

	// the same reading again is accepted
	jtx.RequireTxSuccess(t, env.Submit(mark.Set(alice, expiry)))
}

func TestMark_IgnoresOtherFeeds(t *testing.T) {
	f := setup(t)
	at := f.expiry.Add(-time.Minute)
	f.env.SetTime(at)

	// alice publishes the mark symbol under her own account
	own := oracle.Publish(f.alice, f.feed, 1_000_000*100_000_000, -8).At(at).Build()
	jtx.RequireTxSuccess(t, f.env.Submit(own))
	other := oracle.Publish(f.pyth, oracle.FeedID("SOL/USD.alt"), 1, -8).At(at).Build()
	jtx.RequireTxSuccess(t, f.env.Submit(other))

	jtx.RequireTxFail(t, f.env.Submit(mark.Set(f.alice, f.expiry)), tx.TecPRICE_UNAVAILABLE)
	jtx.RequireEntryNotExists(t, f.env, keylet.ExpiryMark(f.expiry.Unix()))

	f.publish(t, 14_000_000_000, at)
	jtx.RequireTxSuccess(t, f.env.Submit(mark.Set(f.alice, f.expiry)))
	require.Equal(t, int64(14_000_000_000), f.env.Mark(f.expiry.Unix()).Price)
}

func TestMark_NoFeedConfigured(t *testing.T) {
	env := jtx.NewTestEnvWithConfig(t, tx.DefaultEngineConfig())
	alice := jtx.NewAccount("alice")
	pyth := jtx.OracleAccount()
	env.Fund(alice, pyth)
	expiry := env.Now().Add(time.Hour)

	env.SetTime(expiry)
	jtx.RequireTxSuccess(t, env.Submit(oracle.Publish(pyth, oracle.FeedID(jtx.MarkSymbol), 14_000_000_000, -8).At(expiry).Build()))

	jtx.AssertNoStateChange(t, env, func() {
		jtx.RequireTxFail(t, env.Submit(mark.Set(alice, expiry)), tx.TecPRICE_UNAVAILABLE)
	})
}

func TestMark_Window(t *testing.T) {
	tests := []struct {
		name    string
		publish time.Duration
		result  tx.Result
	}{
		{"at expiry", 0, tx.TesSUCCESS},
		{"inside window", -29 * time.Minute, tx.TesSUCCESS},
		{"window start is excluded", -30 * time.Minute, tx.TecPRICE_IRRELEVANT},
		{"too early", -2 * time.Hour, tx.TecPRICE_IRRELEVANT},
		{"after expiry", time.Second, tx.TecPRICE_IRRELEVANT},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.publish(t, 14_000_000_000, f.expiry.Add(tt.publish))
			result := f.env.Submit(mark.Set(f.alice, f.expiry))
			if tt.result.IsSuccess() {
				jtx.RequireTxSuccess(t, result)
				return
			}
			jtx.RequireTxFail(t, result, tt.result)
			jtx.RequireEntryNotExists(t, f.env, keylet.ExpiryMark(f.expiry.Unix()))
		})
	}
}

func TestMark_PriceUnavailable(t *testing.T) {
	f := setup(t)
	jtx.RequireTxFail(t, f.env.Submit(mark.Set(f.alice, f.expiry)), tx.TecPRICE_UNAVAILABLE)

	f.publish(t, 14_000_000_000, f.expiry.Add(-time.Minute))
	f.env.SetTime(f.expiry.Add(f.env.Config().MaxPriceAge + time.Minute))
	jtx.RequireTxFail(t, f.env.Submit(mark.Set(f.alice, f.expiry)), tx.TecPRICE_UNAVAILABLE)
}

func TestMark_Delete(t *testing.T) {
	f := setup(t)
	f.publish(t, 14_000_000_000, f.expiry.Add(-time.Minute))
	jtx.RequireTxSuccess(t, f.env.Submit(mark.Set(f.alice, f.expiry)))

	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(mark.Delete(f.bob, f.expiry)), tx.TecNO_PERMISSION)
	})

	jtx.RequireTxSuccess(t, f.env.Submit(mark.Delete(f.alice, f.expiry)))
	jtx.RequireEntryNotExists(t, f.env, keylet.ExpiryMark(f.expiry.Unix()))
	jtx.RequireBalance(t, f.env, f.alice, jtx.DefaultFunding)
	jtx.RequireOwnerCount(t, f.env, f.alice, 0)

	jtx.RequireTxFail(t, f.env.Submit(mark.Delete(f.alice, f.expiry)), tx.TecNO_ENTRY)
}

func TestMark_UsesConfiguredReader(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := feeds.NewMockReader(ctrl)

	env := jtx.NewTestEnvWithOptions(t, jtx.DefaultConfig(), tx.WithOracle(reader))
	alice := jtx.NewAccount("alice")
	pyth := jtx.OracleAccount()
	env.Fund(alice, pyth)
	feed := oracle.FeedID(jtx.MarkSymbol)
	expiry := env.Now().Add(time.Hour)
	env.SetTime(expiry.Add(time.Minute))

	want := feeds.Feed{Publisher: pyth.ID, ID: feed}
	maxAge := env.Config().MaxPriceAge
	gomock.InOrder(
		reader.EXPECT().PriceNoOlderThan(gomock.Any(), want, maxAge, gomock.Any()).
			Return(feeds.Price{}, feeds.ErrStalePrice),
		reader.EXPECT().PriceNoOlderThan(gomock.Any(), want, maxAge, gomock.Any()).
			Return(feeds.Price{Price: 9_000_000_000, Exponent: -8, PublishTime: expiry.Unix()}, nil),
	)

	jtx.RequireTxFail(t, env.Submit(mark.Set(alice, expiry)), tx.TecPRICE_UNAVAILABLE)
	jtx.RequireTxSuccess(t, env.Submit(mark.Set(alice, expiry)))

	m := env.Mark(expiry.Unix())
	require.NotNil(t, m)
	require.Equal(t, int64(9_000_000_000), m.Price)
}

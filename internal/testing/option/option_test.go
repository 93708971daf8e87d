// Package option_test contains integration tests for the covered call
// lifecycle under both settlement policies.
package option_test

import (
	"testing"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	jtx "github.com/LeJamon/coveredcall/internal/testing"
	"github.com/LeJamon/coveredcall/internal/testing/mark"
	"github.com/LeJamon/coveredcall/internal/testing/option"
	"github.com/LeJamon/coveredcall/internal/testing/oracle"
	"github.com/stretchr/testify/require"
)

const (
	solDecimals  = 9
	usdcDecimals = 6
	priceExpo    = -8
)

var (
	oneSol  = jtx.Units(1, solDecimals)
	strike  = jtx.Units(130, usdcDecimals)
	premium = jtx.Units(5, usdcDecimals)
)

// price returns a SOL/USD price in the feed's fixed-point scale.
func price(usd int64) int64 {
	return usd * 100_000_000
}

type fixture struct {
	env    *jtx.TestEnv
	seller *jtx.Account
	buyer  *jtx.Account
	issuer *jtx.Account
	pyth   *jtx.Account
	sol    [20]byte
	usdc   [20]byte
	feed   [32]byte
	expiry time.Time
}

func setup(t *testing.T, policy tx.SettlementPolicy) *fixture {
	t.Helper()
	env := jtx.NewTestEnvWithPolicy(t, policy)
	f := &fixture{
		env:    env,
		seller: jtx.NewAccount("seller"),
		buyer:  jtx.NewAccount("buyer"),
		issuer: jtx.NewAccount("issuer"),
		pyth:   jtx.OracleAccount(),
		feed:   oracle.FeedID(jtx.MarkSymbol),
	}
	env.Fund(f.seller, f.buyer, f.issuer, f.pyth)

	f.sol = env.CreateMint(f.issuer, solDecimals)
	f.usdc = env.CreateMint(f.issuer, usdcDecimals)
	env.MintTo(f.issuer, f.sol, f.seller, jtx.Units(10, solDecimals))
	env.MintTo(f.issuer, f.usdc, f.buyer, jtx.Units(1000, usdcDecimals))

	f.expiry = env.Now().Add(time.Hour)
	return f
}

func (f *fixture) createBuilder() *option.CreateBuilder {
	return option.Create(f.seller, f.buyer, f.sol, f.usdc, oneSol, strike).ExpiryTime(f.expiry)
}

func (f *fixture) create(t *testing.T) keylet.Keylet {
	t.Helper()
	b := f.createBuilder()
	jtx.RequireTxSuccess(t, f.env.Submit(b.Build()))
	return b.Key()
}

func (f *fixture) buy(t *testing.T, k keylet.Keylet) {
	t.Helper()
	jtx.RequireTxSuccess(t, f.env.Submit(option.Buy(f.buyer, k, premium)))
}

// markAt publishes usd at publishAt and marks the expiry with it.
func (f *fixture) markAt(t *testing.T, usd int64, publishAt time.Time) {
	t.Helper()
	f.env.SetTime(publishAt)
	result := f.env.Submit(oracle.Publish(f.pyth, f.feed, price(usd), priceExpo).At(publishAt).Build())
	jtx.RequireTxSuccess(t, result)
	jtx.RequireTxSuccess(t, f.env.Submit(mark.Set(f.buyer, f.expiry)))
}

func (f *fixture) baseVault(k keylet.Keylet) uint64 {
	return f.env.HoldingBalance(option.BaseVault(k, f.sol))
}

func (f *fixture) quoteVault(k keylet.Keylet) uint64 {
	return f.env.HoldingBalance(option.QuoteVault(k, f.usdc))
}

func TestOption_Create(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	deposits := f.env.Config().Deposits

	k := f.create(t)

	o := f.env.Option(k)
	require.NotNil(t, o)
	require.Equal(t, f.seller.ID, o.Seller)
	require.Equal(t, f.buyer.ID, o.Buyer)
	require.Equal(t, f.expiry.Unix(), o.Expiry)
	require.Equal(t, f.env.Now().Unix(), o.CreatedAt)
	require.False(t, o.IsBought())
	require.False(t, o.Exercised)
	require.False(t, keylet.IsOnCurve(k.Key))

	require.Equal(t, oneSol, f.baseVault(k))
	jtx.RequireTokenBalance(t, f.env, f.seller, f.sol, jtx.Units(9, solDecimals))
	jtx.RequireBalance(t, f.env, f.seller, jtx.DefaultFunding-deposits.Option-deposits.Holding)
	jtx.RequireOwnerCount(t, f.env, f.seller, 2)
}

func TestOption_CreateRejections(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	stranger := jtx.NewAccount("stranger")
	f.env.Fund(stranger)

	tests := []struct {
		name   string
		txn    tx.Transaction
		result tx.Result
	}{
		{
			name:   "expiry now",
			txn:    f.createBuilder().ExpiryTime(f.env.Now()).Build(),
			result: tx.TecEXPIRY_IN_PAST,
		},
		{
			name:   "expiry in past",
			txn:    f.createBuilder().ExpiryTime(f.env.Now().Add(-time.Minute)).Build(),
			result: tx.TecEXPIRY_IN_PAST,
		},
		{
			name:   "same mints",
			txn:    option.Create(f.seller, f.buyer, f.sol, f.sol, oneSol, strike).ExpiryTime(f.expiry).Build(),
			result: tx.TemMALFORMED,
		},
		{
			name:   "zero base",
			txn:    option.Create(f.seller, f.buyer, f.sol, f.usdc, 0, strike).ExpiryTime(f.expiry).Build(),
			result: tx.TemBAD_AMOUNT,
		},
		{
			name:   "zero quote",
			txn:    option.Create(f.seller, f.buyer, f.sol, f.usdc, oneSol, 0).ExpiryTime(f.expiry).Build(),
			result: tx.TemBAD_AMOUNT,
		},
		{
			name:   "unknown mint",
			txn:    option.Create(f.seller, f.buyer, [20]byte{1}, f.usdc, oneSol, strike).ExpiryTime(f.expiry).Build(),
			result: tx.TecNO_ENTRY,
		},
		{
			name:   "seller without base",
			txn:    option.Create(stranger, f.buyer, f.sol, f.usdc, oneSol, strike).ExpiryTime(f.expiry).Build(),
			result: tx.TecUNFUNDED,
		},
		{
			name:   "seller short of base",
			txn:    option.Create(f.seller, f.buyer, f.sol, f.usdc, jtx.Units(11, solDecimals), strike).ExpiryTime(f.expiry).Build(),
			result: tx.TecUNFUNDED,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jtx.AssertNoStateChange(t, f.env, func() {
				jtx.RequireTxFail(t, f.env.Submit(tt.txn), tt.result)
			})
		})
	}
}

func TestOption_CreateDuplicate(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	f.create(t)

	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(f.createBuilder().Build()), tx.TecDUPLICATE)
	})

	// different terms between the same parties give a distinct option
	other := option.Create(f.seller, f.buyer, f.sol, f.usdc, oneSol, strike+1).ExpiryTime(f.expiry)
	jtx.RequireTxSuccess(t, f.env.Submit(other.Build()))
	require.NotEqual(t, f.createBuilder().Key(), other.Key())
}

func TestOption_Buy(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)

	f.buy(t, k)

	o := f.env.Option(k)
	paid, ok := o.PremiumAmount()
	require.True(t, ok)
	require.Equal(t, premium, paid)
	require.Equal(t, premium, f.quoteVault(k))
	jtx.RequireTokenBalance(t, f.env, f.buyer, f.usdc, jtx.Units(995, usdcDecimals))
}

func TestOption_BuyTwice(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	f.buy(t, k)

	jtx.AssertNoStateChange(t, f.env, func() {
		result := f.env.Submit(option.Buy(f.buyer, k, premium*2))
		jtx.RequireTxFail(t, result, tx.TecOPTION_ALREADY_BOUGHT)
	})
	paid, _ := f.env.Option(k).PremiumAmount()
	require.Equal(t, premium, paid)
}

func TestOption_BuyZeroPremium(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)

	jtx.RequireTxSuccess(t, f.env.Submit(option.Buy(f.buyer, k, 0)))

	paid, ok := f.env.Option(k).PremiumAmount()
	require.True(t, ok, "a zero premium still buys the option")
	require.Zero(t, paid)
	require.Zero(t, f.quoteVault(k))
	jtx.RequireTokenBalance(t, f.env, f.buyer, f.usdc, jtx.Units(1000, usdcDecimals))

	result := f.env.Submit(option.Buy(f.buyer, k, premium))
	jtx.RequireTxFail(t, result, tx.TecOPTION_ALREADY_BOUGHT)
}

func TestOption_BuyRejections(t *testing.T) {
	t.Run("not the buyer", func(t *testing.T) {
		f := setup(t, tx.PolicyOracle)
		k := f.create(t)
		jtx.AssertNoStateChange(t, f.env, func() {
			jtx.RequireTxFail(t, f.env.Submit(option.Buy(f.seller, k, premium)), tx.TecNO_PERMISSION)
		})
	})

	t.Run("expired", func(t *testing.T) {
		f := setup(t, tx.PolicyOracle)
		k := f.create(t)
		f.env.SetTime(f.expiry.Add(time.Second))
		jtx.AssertNoStateChange(t, f.env, func() {
			jtx.RequireTxFail(t, f.env.Submit(option.Buy(f.buyer, k, premium)), tx.TecOPTION_EXPIRED)
		})
	})

	t.Run("at expiry", func(t *testing.T) {
		f := setup(t, tx.PolicyOracle)
		k := f.create(t)
		f.env.SetTime(f.expiry)
		jtx.RequireTxSuccess(t, f.env.Submit(option.Buy(f.buyer, k, premium)))
	})

	t.Run("premium exceeds balance", func(t *testing.T) {
		f := setup(t, tx.PolicyOracle)
		k := f.create(t)
		jtx.AssertNoStateChange(t, f.env, func() {
			result := f.env.Submit(option.Buy(f.buyer, k, jtx.Units(1001, usdcDecimals)))
			jtx.RequireTxFail(t, result, tx.TecUNFUNDED)
		})
	})

	t.Run("unknown option", func(t *testing.T) {
		f := setup(t, tx.PolicyOracle)
		missing := keylet.Keylet{Key: [32]byte{7}}
		jtx.RequireTxFail(t, f.env.Submit(option.Buy(f.buyer, missing, premium)), tx.TecNO_ENTRY)
	})
}

func TestOption_ExerciseNotPurchased(t *testing.T) {
	for _, policy := range []tx.SettlementPolicy{tx.PolicyOracle, tx.PolicyPhysical} {
		t.Run(string(policy), func(t *testing.T) {
			f := setup(t, policy)
			k := f.create(t)
			jtx.AssertNoStateChange(t, f.env, func() {
				jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, k)), tx.TecOPTION_NOT_PURCHASED)
			})
		})
	}
}

func TestOption_ExerciseNotBuyer(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	f.buy(t, k)
	f.env.SetTime(f.expiry)

	jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.seller, k)), tx.TecNO_PERMISSION)
}

func TestOption_OracleExerciseInTheMoney(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	f.buy(t, k)

	jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, k)), tx.TecOPTION_NOT_EXPIRED)

	f.markAt(t, 140, f.expiry.Add(-10*time.Minute))
	jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, k)), tx.TecOPTION_NOT_EXPIRED)

	f.env.SetTime(f.expiry)
	jtx.RequireTxSuccess(t, f.env.Submit(option.Exercise(f.buyer, k)))

	// strike 130, mark 140: the buyer receives 1 - 130/140 SOL
	const buyerShare = 71_428_572
	jtx.RequireTokenBalance(t, f.env, f.buyer, f.sol, buyerShare)
	require.Equal(t, oneSol-buyerShare, f.baseVault(k))
	require.True(t, f.env.Option(k).Exercised)

	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, k)), tx.TecOPTION_ALREADY_EXERCISED)
	})
}

func TestOption_OracleExerciseOutOfTheMoney(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	f.buy(t, k)
	f.markAt(t, 130, f.expiry.Add(-time.Minute))

	f.env.SetTime(f.expiry.Add(time.Hour))
	jtx.RequireTxSuccess(t, f.env.Submit(option.Exercise(f.buyer, k)))

	jtx.RequireTokenBalance(t, f.env, f.buyer, f.sol, 0)
	require.Equal(t, oneSol, f.baseVault(k))
	require.True(t, f.env.Option(k).Exercised)
}

func TestOption_OracleExerciseNotMarked(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	f.buy(t, k)
	f.env.SetTime(f.expiry.Add(time.Minute))

	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, k)), tx.TecOPTION_NOT_MARKED)
	})
}

func TestOption_OracleLifecycle(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	deposits := f.env.Config().Deposits
	closer := jtx.NewAccount("closer")
	f.env.Fund(closer)

	k := f.create(t)
	f.buy(t, k)
	f.markAt(t, 140, f.expiry.Add(-10*time.Minute))
	f.env.SetTime(f.expiry)
	jtx.RequireTxSuccess(t, f.env.Submit(option.Exercise(f.buyer, k)))

	// anyone may close; proceeds go to the seller
	jtx.RequireTxSuccess(t, f.env.Submit(option.Close(closer, k)))

	jtx.RequireEntryNotExists(t, f.env, k)
	jtx.RequireEntryNotExists(t, f.env, option.BaseVault(k, f.sol))
	jtx.RequireEntryNotExists(t, f.env, option.QuoteVault(k, f.usdc))

	sellerSol := f.env.TokenBalance(f.seller, f.sol)
	buyerSol := f.env.TokenBalance(f.buyer, f.sol)
	require.Equal(t, jtx.Units(10, solDecimals), sellerSol+buyerSol)
	jtx.RequireTokenBalance(t, f.env, f.seller, f.usdc, premium)

	// option and base vault deposits return to the seller, the quote vault
	// deposit to the buyer who opened it
	jtx.RequireBalance(t, f.env, f.seller, jtx.DefaultFunding)
	jtx.RequireBalance(t, f.env, f.buyer, jtx.DefaultFunding-deposits.Holding-deposits.Mark)
	// the closer funded the seller's new quote holding
	jtx.RequireBalance(t, f.env, closer, jtx.DefaultFunding-deposits.Holding)

	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(option.Close(f.seller, k)), tx.TecNO_ENTRY)
	})
}

func TestOption_CloseUnbought(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)

	jtx.RequireTxSuccess(t, f.env.Submit(option.Close(f.seller, k)))

	jtx.RequireEntryNotExists(t, f.env, k)
	jtx.RequireTokenBalance(t, f.env, f.seller, f.sol, jtx.Units(10, solDecimals))
	jtx.RequireBalance(t, f.env, f.seller, jtx.DefaultFunding)
	jtx.RequireOwnerCount(t, f.env, f.seller, 0)
}

func TestOption_CloseBoughtAfterExpiry(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	f.buy(t, k)

	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(option.Close(f.seller, k)), tx.TecOPTION_CANNOT_BE_CLOSED_YET)
	})

	// at expiry the buyer may still exercise
	f.env.SetTime(f.expiry)
	jtx.RequireTxFail(t, f.env.Submit(option.Close(f.seller, k)), tx.TecOPTION_CANNOT_BE_CLOSED_YET)

	f.env.SetTime(f.expiry.Add(time.Second))
	jtx.RequireTxSuccess(t, f.env.Submit(option.Close(f.seller, k)))

	jtx.RequireTokenBalance(t, f.env, f.seller, f.sol, jtx.Units(10, solDecimals))
	jtx.RequireTokenBalance(t, f.env, f.seller, f.usdc, premium)
	require.Zero(t, f.baseVault(k))
}

func TestOption_EarlyCloseOutOfTheMoney(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	f.buy(t, k)

	f.markAt(t, 140, f.expiry.Add(-20*time.Minute))
	jtx.RequireTxFail(t, f.env.Submit(option.Close(f.seller, k)), tx.TecOPTION_CANNOT_BE_CLOSED_YET)

	// a later reading below the strike proves the option worthless
	f.markAt(t, 120, f.expiry.Add(-10*time.Minute))
	jtx.RequireTxSuccess(t, f.env.Submit(option.Close(f.seller, k)))
	jtx.RequireTokenBalance(t, f.env, f.seller, f.sol, jtx.Units(10, solDecimals))
}

func TestOption_SelfPublishedPricesCannotSettle(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	f.buy(t, k)

	// the seller posts $1 on its own feed to close early
	early := f.expiry.Add(-20 * time.Minute)
	f.env.SetTime(early)
	jtx.RequireTxSuccess(t, f.env.Submit(oracle.Publish(f.seller, f.feed, price(1), priceExpo).At(early).Build()))
	jtx.RequireTxFail(t, f.env.Submit(mark.Set(f.seller, f.expiry)), tx.TecPRICE_UNAVAILABLE)
	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(option.Close(f.seller, k)), tx.TecOPTION_CANNOT_BE_CLOSED_YET)
	})

	// the buyer posts $1,000,000 on its own feed to drain the base vault
	f.env.SetTime(f.expiry)
	jtx.RequireTxSuccess(t, f.env.Submit(oracle.Publish(f.buyer, f.feed, price(1_000_000), priceExpo).At(f.expiry).Build()))
	jtx.RequireTxFail(t, f.env.Submit(mark.Set(f.buyer, f.expiry)), tx.TecPRICE_UNAVAILABLE)
	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, k)), tx.TecOPTION_NOT_MARKED)
	})
	require.Equal(t, oneSol, f.baseVault(k))

	// only the configured feed settles
	f.markAt(t, 140, f.expiry)
	jtx.RequireTxSuccess(t, f.env.Submit(option.Exercise(f.buyer, k)))
	jtx.RequireTokenBalance(t, f.env, f.buyer, f.sol, 71_428_572)
}

func TestOption_PhysicalLifecycle(t *testing.T) {
	f := setup(t, tx.PolicyPhysical)
	k := f.create(t)
	f.buy(t, k)

	jtx.RequireTxSuccess(t, f.env.Submit(option.Exercise(f.buyer, k)))

	jtx.RequireTokenBalance(t, f.env, f.buyer, f.sol, oneSol)
	jtx.RequireTokenBalance(t, f.env, f.buyer, f.usdc, jtx.Units(1000-5-130, usdcDecimals))
	require.Zero(t, f.baseVault(k))
	require.Equal(t, premium+strike, f.quoteVault(k))

	jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, k)), tx.TecOPTION_ALREADY_EXERCISED)

	jtx.RequireTxSuccess(t, f.env.Submit(option.Close(f.seller, k)))
	jtx.RequireTokenBalance(t, f.env, f.seller, f.usdc, premium+strike)
	jtx.RequireTokenBalance(t, f.env, f.seller, f.sol, jtx.Units(9, solDecimals))
	jtx.RequireEntryNotExists(t, f.env, k)
}

func TestOption_PhysicalExerciseExpired(t *testing.T) {
	f := setup(t, tx.PolicyPhysical)
	k := f.create(t)
	f.buy(t, k)

	f.env.SetTime(f.expiry)
	jtx.RequireTxSuccess(t, f.env.Submit(option.Exercise(f.buyer, k)))

	f2 := setup(t, tx.PolicyPhysical)
	k2 := f2.create(t)
	f2.buy(t, k2)
	f2.env.SetTime(f2.expiry.Add(time.Second))
	jtx.AssertNoStateChange(t, f2.env, func() {
		jtx.RequireTxFail(t, f2.env.Submit(option.Exercise(f2.buyer, k2)), tx.TecOPTION_EXPIRED)
	})
}

func TestOption_PhysicalIgnoresMarkForClose(t *testing.T) {
	f := setup(t, tx.PolicyPhysical)
	k := f.create(t)
	f.buy(t, k)
	f.markAt(t, 100, f.expiry.Add(-10*time.Minute))

	jtx.RequireTxFail(t, f.env.Submit(option.Close(f.seller, k)), tx.TecOPTION_CANNOT_BE_CLOSED_YET)
}

func TestOption_PhysicalExerciseUnfunded(t *testing.T) {
	f := setup(t, tx.PolicyPhysical)
	b := option.Create(f.seller, f.buyer, f.sol, f.usdc, oneSol, jtx.Units(2000, usdcDecimals)).ExpiryTime(f.expiry)
	jtx.RequireTxSuccess(t, f.env.Submit(b.Build()))
	f.buy(t, b.Key())

	jtx.AssertNoStateChange(t, f.env, func() {
		jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, b.Key())), tx.TecUNFUNDED)
	})
}

func TestOption_SequenceNotConsumedOnRejection(t *testing.T) {
	f := setup(t, tx.PolicyOracle)
	k := f.create(t)
	seq := f.env.Seq(f.buyer)

	jtx.RequireTxFail(t, f.env.Submit(option.Exercise(f.buyer, k)), tx.TecOPTION_NOT_PURCHASED)
	jtx.RequireSequence(t, f.env, f.buyer, seq)

	f.buy(t, k)
	jtx.RequireSequence(t, f.env, f.buyer, seq+1)
}

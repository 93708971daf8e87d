package testing

import (
	"testing"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/core/tx/mint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	alice1 := NewAccount("alice")
	alice2 := NewAccount("alice")

	assert.Equal(t, alice1.Address, alice2.Address)
	assert.Equal(t, alice1.ID, alice2.ID)
	assert.Equal(t, alice1.PublicKeyHex(), alice2.PublicKeyHex())

	bob := NewAccount("bob")
	assert.NotEqual(t, alice1.Address, bob.Address)
}

func TestUnits(t *testing.T) {
	assert.Equal(t, uint64(5_000_000), Native(5))
	assert.Equal(t, uint64(100_000_000), Units(100, 6))
	assert.Equal(t, uint64(7), Units(7, 0))
}

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClockAt(start)
	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestFund(t *testing.T) {
	env := NewTestEnv(t)
	alice := NewAccount("alice")
	master := MasterAccount()

	before := env.Balance(master)
	env.Fund(alice)

	RequireBalance(t, env, alice, DefaultFunding)
	RequireBalance(t, env, master, before-DefaultFunding)
	RequireSequence(t, env, alice, 1)
	RequireOwnerCount(t, env, alice, 0)
}

func TestSubmitFillsSequence(t *testing.T) {
	env := NewTestEnv(t)
	alice := NewAccount("alice")
	env.Fund(alice)

	id := env.CreateMint(alice, 6)
	RequireSequence(t, env, alice, 2)
	RequireEntryExists(t, env, keylet.Mint(id))
	RequireOwnerCount(t, env, alice, 1)
	RequireBalance(t, env, alice, DefaultFunding-env.Config().Deposits.Mint)

	require.Len(t, env.Receipts(), 1)
	assert.Equal(t, tx.TesSUCCESS, env.Receipts()[0].Result)
}

func TestSubmitRejectsWrongSigner(t *testing.T) {
	env := NewTestEnv(t)
	alice := NewAccount("alice")
	mallory := NewAccount("mallory")
	env.Fund(alice, mallory)

	AssertNoStateChange(t, env, func() {
		result := env.SubmitSignedWith(mint.NewMintCreate(alice.Address, 6), mallory)
		RequireTxFail(t, result, tx.TefBAD_SIGNATURE)
	})
}

func TestSubmitUnfundedAccount(t *testing.T) {
	env := NewTestEnv(t)
	ghost := NewAccount("ghost")

	result := env.SubmitSignedWith(mint.NewMintCreate(ghost.Address, 6), ghost)
	assert.True(t, result.IsRetry())
	RequireTxFail(t, result, tx.TerNO_ACCOUNT)
}

func TestMintTo(t *testing.T) {
	env := NewTestEnv(t)
	issuer := NewAccount("issuer")
	bob := NewAccount("bob")
	env.Fund(issuer, bob)

	id := env.CreateMint(issuer, 6)
	env.MintTo(issuer, id, bob, Units(250, 6))

	RequireTokenBalance(t, env, bob, id, Units(250, 6))
	RequireEntryExists(t, env, keylet.Holding(bob.ID, id))
}

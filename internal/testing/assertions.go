package testing

import (
	"testing"

	"github.com/LeJamon/coveredcall/internal/core/ledger/keylet"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/stretchr/testify/require"
)

// RequireBalance asserts that an account has the expected native balance.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, expected uint64) {
	t.Helper()
	actual := env.Balance(acc)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch: expected %d, got %d", acc.Name, expected, actual)
}

// RequireTokenBalance asserts the amount of mintID held by acc.
func RequireTokenBalance(t *testing.T, env *TestEnv, acc *Account, mintID [20]byte, expected uint64) {
	t.Helper()
	actual := env.TokenBalance(acc, mintID)
	require.Equal(t, expected, actual,
		"Account %s token balance mismatch for %s: expected %d, got %d",
		acc.Name, tx.EncodeID(mintID[:]), expected, actual)
}

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, "tesSUCCESS", result.Code)
}

// RequireTxFail asserts that a transaction failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.False(t, result.Success, "Expected %s, transaction succeeded", expected)
	require.Equal(t, expected.String(), result.Code,
		"Expected %s, got %s: %s", expected, result.Code, result.Message)
}

// RequireSequence asserts the next sequence number of an account.
func RequireSequence(t *testing.T, env *TestEnv, acc *Account, expected uint32) {
	t.Helper()
	require.Equal(t, expected, env.Seq(acc), "Account %s sequence mismatch", acc.Name)
}

// RequireOwnerCount asserts how many entries an account funds.
func RequireOwnerCount(t *testing.T, env *TestEnv, acc *Account, expected uint32) {
	t.Helper()
	require.Equal(t, expected, env.OwnerCount(acc), "Account %s owner count mismatch", acc.Name)
}

// RequireEntryExists asserts that a ledger entry exists.
func RequireEntryExists(t *testing.T, env *TestEnv, k keylet.Keylet) {
	t.Helper()
	require.True(t, env.LedgerEntryExists(k), "Expected %s entry to exist", k.Type)
}

// RequireEntryNotExists asserts that a ledger entry does not exist.
func RequireEntryNotExists(t *testing.T, env *TestEnv, k keylet.Keylet) {
	t.Helper()
	require.False(t, env.LedgerEntryExists(k), "Expected %s entry to be absent", k.Type)
}

// AssertNoStateChange runs fn and fails if the committed ledger differs
// afterwards.
func AssertNoStateChange(t *testing.T, env *TestEnv, fn func()) {
	t.Helper()
	before := env.Snapshot()
	fn()
	require.Equal(t, before, env.Snapshot(), "ledger state changed")
}

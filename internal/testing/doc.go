// Package testing provides test infrastructure for covered call
// transaction testing.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: an in-memory ledger seeded with a genesis, an engine that
//     verifies signatures, and a manual clock
//   - Account: deterministic test accounts with keypairs
//   - Amount helpers: Native and Units
//   - Assertions: Require* helpers built on testify
//
// Transaction builders for each family live in subpackages
// (testing/option, testing/mark, testing/mint, testing/oracle).
//
// # Basic Usage
//
//	func TestBuy(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    alice := testing.NewAccount("alice")
//	    bob := testing.NewAccount("bob")
//	    env.Fund(alice, bob)
//
//	    usdc := env.CreateMint(alice, 6)
//	    env.MintTo(alice, usdc, bob, testing.Units(100, 6))
//
//	    result := env.Submit(option.Buy(bob, key, testing.Units(5, 6)).Build())
//	    testing.RequireTxSuccess(t, result)
//	}
//
// # Time Control
//
// The environment uses a ManualClock. AdvanceTime and SetTime move it;
// every transaction sees the clock's current time.
package testing

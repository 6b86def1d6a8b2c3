package token

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func units(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v, err := ParseUnits(s)
	require.NoError(t, err)
	return v
}

func TestMintAndBalances(t *testing.T) {
	tok := New("Test Token", "TEST")

	require.NoError(t, tok.Mint("custody", units(t, "1000000")))

	assert.Equal(t, units(t, "1000000"), tok.TotalSupply())
	assert.Equal(t, units(t, "1000000"), tok.BalanceOf("custody"))
	assert.True(t, tok.BalanceOf("nobody").IsZero())
}

func TestTransfer(t *testing.T) {
	tok := New("Test Token", "TEST")
	require.NoError(t, tok.Mint("alice", units(t, "100")))

	require.NoError(t, tok.Transfer("alice", "bob", units(t, "40")))

	assert.Equal(t, units(t, "60"), tok.BalanceOf("alice"))
	assert.Equal(t, units(t, "40"), tok.BalanceOf("bob"))
}

func TestTransferInsufficientBalance(t *testing.T) {
	tok := New("Test Token", "TEST")
	require.NoError(t, tok.Mint("alice", units(t, "100")))

	err := tok.Transfer("alice", "bob", units(t, "100.000000000000000001"))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing moved.
	assert.Equal(t, units(t, "100"), tok.BalanceOf("alice"))
	assert.True(t, tok.BalanceOf("bob").IsZero())
}

func TestTransferFromUnknownAccount(t *testing.T) {
	tok := New("Test Token", "TEST")
	err := tok.Transfer("ghost", "bob", units(t, "1"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestApproveAndTransferFrom(t *testing.T) {
	tok := New("Test Token", "TEST")
	require.NoError(t, tok.Mint("alice", units(t, "1000")))

	tok.Approve("alice", "launchpad", units(t, "600"))
	assert.Equal(t, units(t, "600"), tok.Allowance("alice", "launchpad"))

	require.NoError(t, tok.TransferFrom("alice", "launchpad", "pool", units(t, "500")))

	assert.Equal(t, units(t, "500"), tok.BalanceOf("alice"))
	assert.Equal(t, units(t, "500"), tok.BalanceOf("pool"))
	assert.Equal(t, units(t, "100"), tok.Allowance("alice", "launchpad"))
}

func TestTransferFromExceedsAllowance(t *testing.T) {
	tok := New("Test Token", "TEST")
	require.NoError(t, tok.Mint("alice", units(t, "1000")))
	tok.Approve("alice", "launchpad", units(t, "100"))

	err := tok.TransferFrom("alice", "launchpad", "pool", units(t, "101"))
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	// Allowance is only consumed on success.
	assert.Equal(t, units(t, "100"), tok.Allowance("alice", "launchpad"))
	assert.Equal(t, units(t, "1000"), tok.BalanceOf("alice"))
}

func TestTransferFromExceedsBalance(t *testing.T) {
	tok := New("Test Token", "TEST")
	require.NoError(t, tok.Mint("alice", units(t, "50")))
	tok.Approve("alice", "launchpad", units(t, "100"))

	err := tok.TransferFrom("alice", "launchpad", "pool", units(t, "80"))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, units(t, "100"), tok.Allowance("alice", "launchpad"))
}

func TestApproveOverwrites(t *testing.T) {
	tok := New("Test Token", "TEST")
	tok.Approve("alice", "launchpad", units(t, "100"))
	tok.Approve("alice", "launchpad", units(t, "5"))
	assert.Equal(t, units(t, "5"), tok.Allowance("alice", "launchpad"))
}

func TestRestore(t *testing.T) {
	balances := map[string]*uint256.Int{
		"custody": units(t, "999000"),
		"alice":   units(t, "1000"),
	}
	tok, err := Restore("Test Token", "TEST", balances)
	require.NoError(t, err)

	assert.Equal(t, units(t, "1000000"), tok.TotalSupply())
	assert.Equal(t, units(t, "1000"), tok.BalanceOf("alice"))
	assert.Equal(t, units(t, "999000"), tok.BalanceOf("custody"))
}

func TestZeroTransferIsNoOp(t *testing.T) {
	tok := New("Test Token", "TEST")

	// A zero transfer succeeds even from an account the ledger has
	// never seen.
	require.NoError(t, tok.Transfer("ghost", "bob", uint256.NewInt(0)))
	assert.True(t, tok.BalanceOf("ghost").IsZero())
	assert.True(t, tok.BalanceOf("bob").IsZero())

	require.NoError(t, tok.Mint("alice", units(t, "10")))
	tok.Approve("alice", "launchpad", uint256.NewInt(0))
	require.NoError(t, tok.TransferFrom("alice", "launchpad", "pool", uint256.NewInt(0)))
	assert.Equal(t, units(t, "10"), tok.BalanceOf("alice"))
}

func TestBalancesIncludesDrainedAccounts(t *testing.T) {
	tok := New("Test Token", "TEST")
	require.NoError(t, tok.Mint("alice", units(t, "10")))
	require.NoError(t, tok.Transfer("alice", "bob", units(t, "10")))

	snap := tok.Balances()
	require.Contains(t, snap, "alice")
	assert.True(t, snap["alice"].IsZero())
	assert.Equal(t, units(t, "10"), snap["bob"])
}

func TestBalancesSnapshotIsACopy(t *testing.T) {
	tok := New("Test Token", "TEST")
	require.NoError(t, tok.Mint("alice", units(t, "10")))

	snap := tok.Balances()
	snap["alice"].Clear()

	assert.Equal(t, units(t, "10"), tok.BalanceOf("alice"))
}

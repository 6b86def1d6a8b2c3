package dex

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-launchpad/internal/token"
)

func amount(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v, err := token.ParseUnits(s)
	require.NoError(t, err)
	return v
}

func TestPoolRouterAddLiquidity(t *testing.T) {
	router := NewPoolRouter("uniswap-v2", zaptest.NewLogger(t))
	tok := token.New("Test Token", "TEST")
	require.NoError(t, tok.Mint("custody", amount(t, "10000")))

	adapter := NewLiquidityRouterAdapter(router, zaptest.NewLogger(t))
	err := adapter.AddLiquidity(context.Background(), tok, "handle-1", "custody",
		amount(t, "5000"), amount(t, "1"))
	require.NoError(t, err)

	// Tokens moved from custody to the pool account.
	assert.Equal(t, amount(t, "5000"), tok.BalanceOf("custody"))
	assert.Equal(t, amount(t, "5000"), tok.BalanceOf(router.PoolAccount("handle-1")))

	pool, ok := router.Reserves("handle-1")
	require.True(t, ok)
	assert.Equal(t, amount(t, "5000"), pool.TokenReserve)
	assert.Equal(t, amount(t, "1"), pool.NativeReserve)

	// Call-scoped grant is revoked after the call.
	assert.True(t, tok.Allowance("custody", "uniswap-v2").IsZero())
}

func TestPoolRouterAccumulatesReserves(t *testing.T) {
	router := NewPoolRouter("uniswap-v2", zaptest.NewLogger(t))
	tok := token.New("Test Token", "TEST")
	require.NoError(t, tok.Mint("custody", amount(t, "10000")))
	adapter := NewLiquidityRouterAdapter(router, zaptest.NewLogger(t))

	ctx := context.Background()
	require.NoError(t, adapter.AddLiquidity(ctx, tok, "handle-1", "custody", amount(t, "100"), amount(t, "1")))
	require.NoError(t, adapter.AddLiquidity(ctx, tok, "handle-1", "custody", amount(t, "200"), amount(t, "2")))

	pool, ok := router.Reserves("handle-1")
	require.True(t, ok)
	assert.Equal(t, amount(t, "300"), pool.TokenReserve)
	assert.Equal(t, amount(t, "3"), pool.NativeReserve)
}

func TestPoolRouterRejectsEmptyProvision(t *testing.T) {
	router := NewPoolRouter("uniswap-v2", zaptest.NewLogger(t))
	tok := token.New("Test Token", "TEST")

	err := router.AddLiquidity(context.Background(), &AddLiquidityRequest{
		Token:        tok,
		TokenHandle:  "handle-1",
		Supplier:     "custody",
		TokenAmount:  uint256.NewInt(0),
		NativeAmount: uint256.NewInt(0),
	})
	assert.ErrorIs(t, err, ErrPoolRejected)
}

func TestPoolRouterInsufficientSupplierBalance(t *testing.T) {
	router := NewPoolRouter("uniswap-v2", zaptest.NewLogger(t))
	tok := token.New("Test Token", "TEST")
	require.NoError(t, tok.Mint("custody", amount(t, "10")))
	adapter := NewLiquidityRouterAdapter(router, zaptest.NewLogger(t))

	err := adapter.AddLiquidity(context.Background(), tok, "handle-1", "custody",
		amount(t, "11"), amount(t, "1"))
	require.ErrorIs(t, err, token.ErrInsufficientBalance)

	// No partial state: no pool, custody untouched.
	_, ok := router.Reserves("handle-1")
	assert.False(t, ok)
	assert.Equal(t, amount(t, "10"), tok.BalanceOf("custody"))
}

// failingRouter declines every call without touching the token.
type failingRouter struct{ name string }

func (f *failingRouter) Name() string { return f.name }

func (f *failingRouter) AddLiquidity(context.Context, *AddLiquidityRequest) error {
	return errors.New("pool is closed")
}

func TestAdapterRelaysRouterFailureAndRevokesGrant(t *testing.T) {
	tok := token.New("Test Token", "TEST")
	require.NoError(t, tok.Mint("custody", amount(t, "100")))
	adapter := NewLiquidityRouterAdapter(&failingRouter{name: "broken"}, zaptest.NewLogger(t))

	err := adapter.AddLiquidity(context.Background(), tok, "handle-1", "custody",
		amount(t, "50"), amount(t, "1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool is closed")

	assert.Equal(t, amount(t, "100"), tok.BalanceOf("custody"))
	assert.True(t, tok.Allowance("custody", "broken").IsZero())
}

// internal/dex/adapter.go
package dex

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/token"
)

// LiquidityRouterAdapter forwards token custody plus native currency to a
// Router and relays its result without reinterpretation. Before
// forwarding it grants the router a call-scoped allowance on the supplied
// token; any leftover grant is revoked before returning.
type LiquidityRouterAdapter struct {
	router Router
	logger *zap.Logger
}

// NewLiquidityRouterAdapter wraps a router.
func NewLiquidityRouterAdapter(router Router, logger *zap.Logger) *LiquidityRouterAdapter {
	return &LiquidityRouterAdapter{
		router: router,
		logger: logger.Named("router_adapter"),
	}
}

// RouterName returns the wrapped router's name.
func (a *LiquidityRouterAdapter) RouterName() string {
	return a.router.Name()
}

// AddLiquidity grants the router an allowance of tokenAmount on supplier's
// balance, invokes the router, and revokes the grant. The router's error,
// if any, is returned unchanged apart from context.
func (a *LiquidityRouterAdapter) AddLiquidity(ctx context.Context, tok *token.Token, tokenHandle, supplier string,
	tokenAmount, nativeAmount *uint256.Int) error {

	tok.Approve(supplier, a.router.Name(), tokenAmount)
	defer tok.Approve(supplier, a.router.Name(), uint256.NewInt(0))

	a.logger.Debug("Forwarding liquidity to router",
		zap.String("router", a.router.Name()),
		zap.String("token_handle", tokenHandle),
		zap.String("token_amount", tokenAmount.Dec()),
		zap.String("native_amount", nativeAmount.Dec()))

	err := a.router.AddLiquidity(ctx, &AddLiquidityRequest{
		Token:        tok,
		TokenHandle:  tokenHandle,
		Supplier:     supplier,
		TokenAmount:  tokenAmount,
		NativeAmount: nativeAmount,
	})
	if err != nil {
		return fmt.Errorf("router %s: %w", a.router.Name(), err)
	}
	return nil
}

// internal/dex/router.go
package dex

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/token"
)

// ErrPoolRejected is returned by a router that declines the call.
var ErrPoolRejected = errors.New("router rejected liquidity provision")

// AddLiquidityRequest carries one liquidity provision through a Router.
// The supplier must have granted the router (by its Name) an allowance of
// at least TokenAmount before the call.
type AddLiquidityRequest struct {
	Token        *token.Token
	TokenHandle  string
	Supplier     string
	TokenAmount  *uint256.Int
	NativeAmount *uint256.Int
}

// Router is the external AMM's liquidity provisioning entry point.
type Router interface {
	// Name identifies the router; it is also the spender identity the
	// router uses when pulling tokens from the supplier.
	Name() string

	// AddLiquidity pulls req.TokenAmount from the supplier and pairs it
	// with req.NativeAmount in the pool. On failure nothing is pulled.
	AddLiquidity(ctx context.Context, req *AddLiquidityRequest) error
}

// Pool holds one pool's reserves inside PoolRouter.
type Pool struct {
	TokenReserve  *uint256.Int
	NativeReserve *uint256.Int
}

// PoolRouter is an in-process AMM router that maintains a pool of token
// and native reserves per token handle.
type PoolRouter struct {
	mu     sync.Mutex
	name   string
	logger *zap.Logger
	pools  map[string]*Pool
}

// NewPoolRouter creates a named in-process router.
func NewPoolRouter(name string, logger *zap.Logger) *PoolRouter {
	return &PoolRouter{
		name:   name,
		logger: logger.Named("pool_router"),
		pools:  make(map[string]*Pool),
	}
}

func (r *PoolRouter) Name() string { return r.name }

// PoolAccount is the ledger account holding a pool's token reserve.
func (r *PoolRouter) PoolAccount(tokenHandle string) string {
	return "pool:" + r.name + ":" + tokenHandle
}

// AddLiquidity pulls the token amount from the supplier via the allowance
// granted to this router and credits both reserves.
func (r *PoolRouter) AddLiquidity(ctx context.Context, req *AddLiquidityRequest) error {
	if req.TokenAmount.IsZero() && req.NativeAmount.IsZero() {
		return fmt.Errorf("%w: empty provision", ErrPoolRejected)
	}

	err := req.Token.TransferFrom(req.Supplier, r.name, r.PoolAccount(req.TokenHandle), req.TokenAmount)
	if err != nil {
		return fmt.Errorf("pull token reserve: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.pools[req.TokenHandle]
	if !ok {
		pool = &Pool{TokenReserve: uint256.NewInt(0), NativeReserve: uint256.NewInt(0)}
		r.pools[req.TokenHandle] = pool
	}
	pool.TokenReserve = new(uint256.Int).Add(pool.TokenReserve, req.TokenAmount)
	pool.NativeReserve = new(uint256.Int).Add(pool.NativeReserve, req.NativeAmount)

	r.logger.Info("Liquidity added to pool",
		zap.String("token_handle", req.TokenHandle),
		zap.String("token_reserve", pool.TokenReserve.Dec()),
		zap.String("native_reserve", pool.NativeReserve.Dec()))

	return nil
}

// Reserves returns a copy of the pool reserves for a token handle.
func (r *PoolRouter) Reserves(tokenHandle string) (Pool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pool, ok := r.pools[tokenHandle]
	if !ok {
		return Pool{}, false
	}
	return Pool{
		TokenReserve:  pool.TokenReserve.Clone(),
		NativeReserve: pool.NativeReserve.Clone(),
	}, true
}

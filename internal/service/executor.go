// internal/service/executor.go
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-launchpad/internal/launchpad"
	"github.com/rovshanmuradov/token-launchpad/internal/task"
	"github.com/rovshanmuradov/token-launchpad/internal/token"
)

// Executor resolves scripted tasks against the registry. Launch tasks
// bind their script alias to the handle the registry issues; later
// tasks look the handle up through the same alias.
type Executor struct {
	registry *launchpad.Registry
	logger   *zap.Logger

	mu      sync.RWMutex
	handles map[string]string // script alias -> token handle
}

func NewExecutor(registry *launchpad.Registry, logger *zap.Logger) *Executor {
	return &Executor{
		registry: registry,
		logger:   logger.Named("executor"),
		handles:  make(map[string]string),
	}
}

// Execute runs one task to completion.
func (e *Executor) Execute(ctx context.Context, t *task.Task) error {
	switch t.Operation {
	case task.OperationLaunch:
		return e.executeLaunch(ctx, t)
	case task.OperationBuy:
		return e.executeBuy(ctx, t)
	case task.OperationSell:
		return e.executeSell(ctx, t)
	case task.OperationAddLiquidity:
		return e.executeAddLiquidity(ctx, t)
	default:
		return fmt.Errorf("unsupported operation: %s", t.Operation)
	}
}

func (e *Executor) executeLaunch(ctx context.Context, t *task.Task) error {
	supply, err := parseAmount(t.TotalSupply)
	if err != nil {
		return fmt.Errorf("total_supply: %w", err)
	}
	price, err := parseAmount(t.PricePerToken)
	if err != nil {
		return fmt.Errorf("price_per_token: %w", err)
	}

	handle, err := e.registry.LaunchToken(ctx, t.Account, t.TokenName, t.TokenSymbol, supply, price)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.handles[t.Token] = handle
	e.mu.Unlock()

	e.logger.Info("Token launched",
		zap.String("task", t.Name),
		zap.String("alias", t.Token),
		zap.String("token_handle", handle))
	return nil
}

func (e *Executor) executeBuy(ctx context.Context, t *task.Task) error {
	handle, err := e.resolve(t.Token)
	if err != nil {
		return err
	}
	amount, err := parseAmount(t.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	payment, err := parseAmount(t.Payment)
	if err != nil {
		return fmt.Errorf("payment: %w", err)
	}
	return e.registry.BuyTokens(ctx, t.Account, handle, amount, payment)
}

func (e *Executor) executeSell(ctx context.Context, t *task.Task) error {
	handle, err := e.resolve(t.Token)
	if err != nil {
		return err
	}
	amount, err := parseAmount(t.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	payout, err := e.registry.SellTokens(ctx, t.Account, handle, amount)
	if err != nil {
		return err
	}
	e.logger.Info("Tokens sold",
		zap.String("task", t.Name),
		zap.String("payout", payout.Dec()))
	return nil
}

func (e *Executor) executeAddLiquidity(ctx context.Context, t *task.Task) error {
	handle, err := e.resolve(t.Token)
	if err != nil {
		return err
	}
	amount, err := parseAmount(t.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	native, err := parseAmount(t.NativeAmount)
	if err != nil {
		return fmt.Errorf("native_amount: %w", err)
	}

	// Scripted providers authorize the registry's custody pull up front.
	listing, err := e.registry.LaunchedTokens(handle)
	if err != nil {
		return err
	}
	listing.Token().Approve(t.Account, launchpad.CustodyAccount, amount)

	return e.registry.AddLiquidityToDex(ctx, t.Account, t.Router, handle, amount, native)
}

// Handle returns the token handle bound to a script alias.
func (e *Executor) Handle(alias string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.handles[alias]
	return h, ok
}

func (e *Executor) resolve(alias string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.handles[alias]
	if !ok {
		return "", fmt.Errorf("token alias %q not bound to a launched token", alias)
	}
	return h, nil
}

func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	return token.ParseUnits(s)
}

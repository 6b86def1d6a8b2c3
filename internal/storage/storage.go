// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/token-launchpad/internal/storage/models"
)

// ErrNotFound is returned by point lookups when no row exists.
var ErrNotFound = errors.New("record not found")

// Store persists the registry's durable state: the listing catalog in
// launch order, tracked balances, full token ledgers, the registry native
// balance, and the trade/liquidity audit trail. Each Save* call commits
// one registry operation atomically.
type Store interface {
	// SaveLaunch records a new listing together with the freshly minted
	// custody ledger rows.
	SaveLaunch(ctx context.Context, listing *models.TokenListing, ledger []*models.LedgerBalance) error

	// SaveTrade records a buy or sell: the trade itself, the updated
	// tracked balance, the affected ledger rows, and the registry native
	// balance after the trade.
	SaveTrade(ctx context.Context, trade *models.TradeRecord, tracked *models.TrackedBalance,
		ledger []*models.LedgerBalance, nativeBalance string) error

	// SaveLiquidity records a committed liquidity migration and the
	// ledger rows it moved.
	SaveLiquidity(ctx context.Context, rec *models.LiquidityRecord, ledger []*models.LedgerBalance) error

	// LoadListings returns all listings ordered by launch index.
	LoadListings(ctx context.Context) ([]*models.TokenListing, error)

	// LoadTrackedBalances returns every tracked balance row.
	LoadTrackedBalances(ctx context.Context) ([]*models.TrackedBalance, error)

	// LoadLedgerBalances returns every token ledger row.
	LoadLedgerBalances(ctx context.Context) ([]*models.LedgerBalance, error)

	// LoadNativeBalance returns the persisted registry native balance,
	// or ErrNotFound when the registry has never traded.
	LoadNativeBalance(ctx context.Context) (string, error)

	// ListTrades returns trade history for a token, newest first.
	ListTrades(ctx context.Context, tokenHandle string, limit, offset int) ([]*models.TradeRecord, error)

	// RunMigrations prepares the schema.
	RunMigrations() error

	Close() error
}

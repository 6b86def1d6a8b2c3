// internal/launchpad/registry.go
package launchpad

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/token-launchpad/internal/dex"
	"github.com/rovshanmuradov/token-launchpad/internal/events"
	"github.com/rovshanmuradov/token-launchpad/internal/storage"
	"github.com/rovshanmuradov/token-launchpad/internal/storage/models"
	"github.com/rovshanmuradov/token-launchpad/internal/token"
)

// CustodyAccount is the registry's own ledger identity. It holds unsold
// supply and is the spender callers approve for liquidity seeding.
const CustodyAccount = "launchpad:custody"

// Config configures a Registry. Bus and Store are optional; a nil Bus
// publishes nothing, a nil Store keeps state in memory only.
type Config struct {
	Logger *zap.Logger
	Bus    *events.Bus
	Store  storage.Store
}

// Registry owns the catalog of launched tokens and the custodial balance
// bookkeeping, and orchestrates launch, buy, sell and liquidity-migration
// operations.
//
// A single mutex serializes all operations: each runs as one atomic unit
// with no observable intermediate state, and validation completes before
// any mutation, so a failed operation leaves every balance unchanged.
type Registry struct {
	mu       sync.Mutex
	logger   *zap.Logger
	bus      *events.Bus
	store    storage.Store
	listings map[string]*Listing
	order    []string                           // token handles in launch order, append-only
	tracked  map[string]map[string]*uint256.Int // account -> handle -> bought-net-of-sold
	native   *uint256.Int                       // registry-held native currency
	routers  map[string]*dex.LiquidityRouterAdapter
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg *Config) *Registry {
	return &Registry{
		logger:   cfg.Logger.Named("launchpad"),
		bus:      cfg.Bus,
		store:    cfg.Store,
		listings: make(map[string]*Listing),
		tracked:  make(map[string]map[string]*uint256.Int),
		native:   uint256.NewInt(0),
		routers:  make(map[string]*dex.LiquidityRouterAdapter),
	}
}

// RegisterRouter makes a router adapter available under its router name.
func (r *Registry) RegisterRouter(adapter *dex.LiquidityRouterAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routers[adapter.RouterName()] = adapter
	r.logger.Info("Router registered", zap.String("router", adapter.RouterName()))
}

// LaunchToken creates a new fungible token, mints totalSupply into the
// registry's custody, records the listing and appends it to the catalog.
// The handle is returned and also announced via a TokenLaunched event.
func (r *Registry) LaunchToken(ctx context.Context, creator, name, symbol string,
	totalSupply, pricePerToken *uint256.Int) (string, error) {

	if totalSupply == nil || totalSupply.IsZero() {
		return "", ErrInvalidSupply
	}
	if pricePerToken == nil {
		pricePerToken = uint256.NewInt(0)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	handle := uuid.New().String()
	tok := token.New(name, symbol)

	listing := &Listing{
		TokenHandle:   handle,
		Name:          name,
		Symbol:        symbol,
		TotalSupply:   totalSupply.Clone(),
		PricePerToken: pricePerToken.Clone(),
		Creator:       creator,
		LaunchedAt:    time.Now().UTC(),
		tok:           tok,
	}

	if r.store != nil {
		err := r.store.SaveLaunch(ctx, &models.TokenListing{
			TokenHandle:   handle,
			Name:          name,
			Symbol:        symbol,
			TotalSupply:   totalSupply.Dec(),
			PricePerToken: pricePerToken.Dec(),
			LaunchIndex:   len(r.order),
			Creator:       creator,
		}, []*models.LedgerBalance{
			{TokenHandle: handle, Account: CustodyAccount, Amount: totalSupply.Dec()},
		})
		if err != nil {
			return "", fmt.Errorf("persist launch: %w", err)
		}
	}

	if err := tok.Mint(CustodyAccount, totalSupply); err != nil {
		return "", fmt.Errorf("mint supply: %w", err)
	}
	r.listings[handle] = listing
	r.order = append(r.order, handle)

	r.logger.Info("Token launched",
		zap.String("token_handle", handle),
		zap.String("symbol", symbol),
		zap.String("total_supply", totalSupply.Dec()),
		zap.String("price_per_token", pricePerToken.Dec()))

	r.publish(events.TokenLaunchedEvent{
		BaseEvent:     events.NewBase(events.TokenLaunched),
		TokenHandle:   handle,
		Name:          name,
		Symbol:        symbol,
		TotalSupply:   totalSupply.Clone(),
		PricePerToken: pricePerToken.Clone(),
		Creator:       creator,
	})

	return handle, nil
}

// BuyTokens transfers amount tokens from custody to the buyer against an
// exactly matching attached payment. Payment verification, the token
// transfer and the tracked-balance update commit as one step.
func (r *Registry) BuyTokens(ctx context.Context, buyer, tokenHandle string,
	amount, payment *uint256.Int) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[tokenHandle]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, tokenHandle)
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}

	cost, err := token.Cost(amount, listing.PricePerToken)
	if err != nil {
		return err
	}
	if payment == nil || !payment.Eq(cost) {
		attached := uint256.NewInt(0)
		if payment != nil {
			attached = payment
		}
		return fmt.Errorf("%w: need %s, got %s", ErrIncorrectPayment, cost.Dec(), attached.Dec())
	}

	custody := listing.tok.BalanceOf(CustodyAccount)
	if custody.Lt(amount) {
		return fmt.Errorf("%w: custody holds %s, requested %s",
			ErrInsufficientSupply, custody.Dec(), amount.Dec())
	}

	newTracked := new(uint256.Int).Add(r.trackedBalance(buyer, tokenHandle), amount)
	newNative := new(uint256.Int).Add(r.native, cost)

	if r.store != nil {
		err := r.store.SaveTrade(ctx,
			&models.TradeRecord{
				TokenHandle: tokenHandle, Account: buyer, Side: "buy",
				Amount: amount.Dec(), NativeAmount: cost.Dec(),
			},
			&models.TrackedBalance{Account: buyer, TokenHandle: tokenHandle, Amount: newTracked.Dec()},
			[]*models.LedgerBalance{
				{TokenHandle: tokenHandle, Account: CustodyAccount, Amount: new(uint256.Int).Sub(custody, amount).Dec()},
				{TokenHandle: tokenHandle, Account: buyer, Amount: new(uint256.Int).Add(listing.tok.BalanceOf(buyer), amount).Dec()},
			},
			newNative.Dec())
		if err != nil {
			return fmt.Errorf("persist buy: %w", err)
		}
	}

	// Custody was checked above and only registry operations move it, so
	// this transfer cannot fail.
	if err := listing.tok.Transfer(CustodyAccount, buyer, amount); err != nil {
		return fmt.Errorf("custody transfer: %w", err)
	}
	r.setTracked(buyer, tokenHandle, newTracked)
	r.native = newNative

	r.logger.Info("Tokens purchased",
		zap.String("token_handle", tokenHandle),
		zap.String("buyer", buyer),
		zap.String("amount", amount.Dec()),
		zap.String("paid", cost.Dec()))

	r.publish(events.TokensPurchasedEvent{
		BaseEvent:   events.NewBase(events.TokensPurchased),
		TokenHandle: tokenHandle,
		Buyer:       buyer,
		Amount:      amount.Clone(),
		Paid:        cost.Clone(),
	})

	return nil
}

// SellTokens reclaims amount tokens from the seller into custody and pays
// out amount * pricePerToken / unit scale from the registry's native
// holdings. Returns the payout.
func (r *Registry) SellTokens(ctx context.Context, seller, tokenHandle string,
	amount *uint256.Int) (*uint256.Int, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[tokenHandle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, tokenHandle)
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}

	tracked := r.trackedBalance(seller, tokenHandle)
	if tracked.Lt(amount) || listing.tok.BalanceOf(seller).Lt(amount) {
		return nil, fmt.Errorf("%w: tracked %s, requested %s",
			ErrInsufficientTokenBalance, tracked.Dec(), amount.Dec())
	}

	payout, err := token.Cost(amount, listing.PricePerToken)
	if err != nil {
		return nil, err
	}
	if r.native.Lt(payout) {
		return nil, fmt.Errorf("%w: holding %s, payout %s",
			ErrInsufficientLiquidity, r.native.Dec(), payout.Dec())
	}

	// Reclaim first; the balance was checked under the lock.
	if err := listing.tok.Transfer(seller, CustodyAccount, amount); err != nil {
		return nil, fmt.Errorf("reclaim transfer: %w", err)
	}

	newTracked := new(uint256.Int).Sub(tracked, amount)
	newNative := new(uint256.Int).Sub(r.native, payout)

	if r.store != nil {
		err := r.store.SaveTrade(ctx,
			&models.TradeRecord{
				TokenHandle: tokenHandle, Account: seller, Side: "sell",
				Amount: amount.Dec(), NativeAmount: payout.Dec(),
			},
			&models.TrackedBalance{Account: seller, TokenHandle: tokenHandle, Amount: newTracked.Dec()},
			[]*models.LedgerBalance{
				{TokenHandle: tokenHandle, Account: CustodyAccount, Amount: listing.tok.BalanceOf(CustodyAccount).Dec()},
				{TokenHandle: tokenHandle, Account: seller, Amount: listing.tok.BalanceOf(seller).Dec()},
			},
			newNative.Dec())
		if err != nil {
			// Undo the reclaim so the failed operation leaves no trace.
			if undoErr := listing.tok.Transfer(CustodyAccount, seller, amount); undoErr != nil {
				r.logger.Error("Failed to undo reclaim after persist error", zap.Error(undoErr))
			}
			return nil, fmt.Errorf("persist sell: %w", err)
		}
	}

	r.setTracked(seller, tokenHandle, newTracked)
	r.native = newNative

	r.logger.Info("Tokens sold",
		zap.String("token_handle", tokenHandle),
		zap.String("seller", seller),
		zap.String("amount", amount.Dec()),
		zap.String("payout", payout.Dec()))

	r.publish(events.TokensSoldEvent{
		BaseEvent:   events.NewBase(events.TokensSold),
		TokenHandle: tokenHandle,
		Seller:      seller,
		Amount:      amount.Clone(),
		Payout:      payout.Clone(),
	})

	return payout, nil
}

// AddLiquidityToDex pulls tokenAmount from the provider's own balance via
// the allowance granted to CustodyAccount, then forwards the tokens and
// the attached native amount to the named router. The pull-and-forward
// sequence is all-or-nothing: a router failure returns the pulled tokens
// before surfacing ErrLiquidityProvisionFailed. Tracked balances are not
// touched; this path moves the caller's own tokens, not sale inventory.
func (r *Registry) AddLiquidityToDex(ctx context.Context, provider, routerName, tokenHandle string,
	tokenAmount, nativeAmount *uint256.Int) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[tokenHandle]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, tokenHandle)
	}
	adapter, ok := r.routers[routerName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRouter, routerName)
	}
	if tokenAmount == nil {
		tokenAmount = uint256.NewInt(0)
	}
	if nativeAmount == nil {
		nativeAmount = uint256.NewInt(0)
	}

	// Delegated-transfer failures propagate unchanged.
	priorAllowance := listing.tok.Allowance(provider, CustodyAccount)
	if err := listing.tok.TransferFrom(provider, CustodyAccount, CustodyAccount, tokenAmount); err != nil {
		return err
	}

	if err := adapter.AddLiquidity(ctx, listing.tok, tokenHandle, CustodyAccount, tokenAmount, nativeAmount); err != nil {
		// Undo the pull: return the tokens and restore the allowance so
		// the failed migration leaves no trace.
		if undoErr := listing.tok.Transfer(CustodyAccount, provider, tokenAmount); undoErr != nil {
			r.logger.Error("Failed to return tokens after router failure", zap.Error(undoErr))
		}
		listing.tok.Approve(provider, CustodyAccount, priorAllowance)
		return fmt.Errorf("%w: %v", ErrLiquidityProvisionFailed, err)
	}

	if r.store != nil {
		// The router commit cannot be rolled back, so the persisted
		// ledger must catch up: retry transient store failures instead
		// of leaving the provider's pre-migration balance on record.
		ledger := ledgerRows(tokenHandle, listing.tok)
		save := func() (struct{}, error) {
			return struct{}{}, r.store.SaveLiquidity(ctx, &models.LiquidityRecord{
				TokenHandle:  tokenHandle,
				Provider:     provider,
				Router:       routerName,
				TokenAmount:  tokenAmount.Dec(),
				NativeAmount: nativeAmount.Dec(),
			}, ledger)
		}
		_, err := backoff.Retry(ctx, save,
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxElapsedTime(10*time.Second))
		if err != nil {
			r.logger.Error("Failed to persist liquidity migration; stored ledger is stale until the next trade",
				zap.String("token_handle", tokenHandle), zap.Error(err))
			return fmt.Errorf("persist liquidity migration: %w", err)
		}
	}

	r.logger.Info("Liquidity migrated",
		zap.String("token_handle", tokenHandle),
		zap.String("provider", provider),
		zap.String("router", routerName),
		zap.String("token_amount", tokenAmount.Dec()),
		zap.String("native_amount", nativeAmount.Dec()))

	r.publish(events.LiquidityAddedEvent{
		BaseEvent:    events.NewBase(events.LiquidityAdded),
		TokenHandle:  tokenHandle,
		Provider:     provider,
		Router:       routerName,
		TokenAmount:  tokenAmount.Clone(),
		NativeAmount: nativeAmount.Clone(),
	})

	return nil
}

// GetAllTokens returns every launched token handle in launch order.
func (r *Registry) GetAllTokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// LaunchedTokens resolves a token handle to its listing terms.
func (r *Registry) LaunchedTokens(tokenHandle string) (*Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[tokenHandle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, tokenHandle)
	}
	return listing.snapshot(), nil
}

// UserTokenBalances returns the registry's tracked view of what account
// has bought through the venue net of sells.
func (r *Registry) UserTokenBalances(account, tokenHandle string) *uint256.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trackedBalance(account, tokenHandle).Clone()
}

// NativeBalance returns the registry's native currency holdings.
func (r *Registry) NativeBalance() *uint256.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.native.Clone()
}

// Trades returns persisted trade history for a token, newest first.
func (r *Registry) Trades(ctx context.Context, tokenHandle string, limit, offset int) ([]*models.TradeRecord, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.ListTrades(ctx, tokenHandle, limit, offset)
}

// Restore rebuilds the registry's state from the store: listings in
// launch order, every token's ledger, tracked balances and the native
// balance.
func (r *Registry) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		listings    []*models.TokenListing
		ledgerRows  []*models.LedgerBalance
		trackedRows []*models.TrackedBalance
		nativeRow   string
		nativeSet   bool
	)

	// The snapshot tables are independent, so load them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if listings, err = r.store.LoadListings(gctx); err != nil {
			return fmt.Errorf("load listings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ledgerRows, err = r.store.LoadLedgerBalances(gctx); err != nil {
			return fmt.Errorf("load ledger balances: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if trackedRows, err = r.store.LoadTrackedBalances(gctx); err != nil {
			return fmt.Errorf("load tracked balances: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		v, err := r.store.LoadNativeBalance(gctx)
		if err != nil {
			if err == storage.ErrNotFound {
				return nil
			}
			return fmt.Errorf("load native balance: %w", err)
		}
		nativeRow, nativeSet = v, true
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	ledgers := make(map[string]map[string]*uint256.Int)
	for _, row := range ledgerRows {
		v, err := uint256.FromDecimal(row.Amount)
		if err != nil {
			return fmt.Errorf("ledger row %s/%s: %w", row.TokenHandle, row.Account, err)
		}
		if ledgers[row.TokenHandle] == nil {
			ledgers[row.TokenHandle] = make(map[string]*uint256.Int)
		}
		ledgers[row.TokenHandle][row.Account] = v
	}

	for _, row := range listings {
		supply, err := uint256.FromDecimal(row.TotalSupply)
		if err != nil {
			return fmt.Errorf("listing %s supply: %w", row.TokenHandle, err)
		}
		price, err := uint256.FromDecimal(row.PricePerToken)
		if err != nil {
			return fmt.Errorf("listing %s price: %w", row.TokenHandle, err)
		}
		tok, err := token.Restore(row.Name, row.Symbol, ledgers[row.TokenHandle])
		if err != nil {
			return err
		}
		r.listings[row.TokenHandle] = &Listing{
			TokenHandle:   row.TokenHandle,
			Name:          row.Name,
			Symbol:        row.Symbol,
			TotalSupply:   supply,
			PricePerToken: price,
			Creator:       row.Creator,
			LaunchedAt:    row.CreatedAt,
			tok:           tok,
		}
		r.order = append(r.order, row.TokenHandle)
	}

	for _, row := range trackedRows {
		v, err := uint256.FromDecimal(row.Amount)
		if err != nil {
			return fmt.Errorf("tracked row %s/%s: %w", row.Account, row.TokenHandle, err)
		}
		r.setTracked(row.Account, row.TokenHandle, v)
	}

	if nativeSet {
		v, err := uint256.FromDecimal(nativeRow)
		if err != nil {
			return fmt.Errorf("native balance: %w", err)
		}
		r.native = v
	}

	r.logger.Info("Registry state restored",
		zap.Int("listings", len(r.order)),
		zap.Int("tracked_balances", len(trackedRows)))

	return nil
}

func (r *Registry) trackedBalance(account, tokenHandle string) *uint256.Int {
	if m, ok := r.tracked[account]; ok {
		if v, ok := m[tokenHandle]; ok {
			return v
		}
	}
	return uint256.NewInt(0)
}

func (r *Registry) setTracked(account, tokenHandle string, v *uint256.Int) {
	m, ok := r.tracked[account]
	if !ok {
		m = make(map[string]*uint256.Int)
		r.tracked[account] = m
	}
	m[tokenHandle] = v
}

func (r *Registry) publish(event events.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(event); err != nil {
		r.logger.Warn("Failed to publish event",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
	}
}

func ledgerRows(tokenHandle string, tok *token.Token) []*models.LedgerBalance {
	balances := tok.Balances()
	rows := make([]*models.LedgerBalance, 0, len(balances))
	for account, amount := range balances {
		rows = append(rows, &models.LedgerBalance{
			TokenHandle: tokenHandle,
			Account:     account,
			Amount:      amount.Dec(),
		})
	}
	return rows
}

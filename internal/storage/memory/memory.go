// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rovshanmuradov/token-launchpad/internal/storage"
	"github.com/rovshanmuradov/token-launchpad/internal/storage/models"
)

// Store is an in-memory implementation of storage.Store for tests and
// local development.
type Store struct {
	mu       sync.RWMutex
	listings []*models.TokenListing
	tracked  map[string]*models.TrackedBalance // account|handle
	ledger   map[string]*models.LedgerBalance  // handle|account
	trades   []*models.TradeRecord
	liq      []*models.LiquidityRecord
	native   string
	hasState bool
	nextID   uint
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		tracked: make(map[string]*models.TrackedBalance),
		ledger:  make(map[string]*models.LedgerBalance),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) SaveLaunch(_ context.Context, listing *models.TokenListing, ledger []*models.LedgerBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := *listing
	l.ID = s.id()
	s.listings = append(s.listings, &l)
	s.upsertLedger(ledger)
	return nil
}

func (s *Store) SaveTrade(_ context.Context, trade *models.TradeRecord, tracked *models.TrackedBalance,
	ledger []*models.LedgerBalance, nativeBalance string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr := *trade
	tr.ID = s.id()
	s.trades = append(s.trades, &tr)

	tb := *tracked
	s.tracked[tb.Account+"|"+tb.TokenHandle] = &tb

	s.upsertLedger(ledger)
	s.native = nativeBalance
	s.hasState = true
	return nil
}

func (s *Store) SaveLiquidity(_ context.Context, rec *models.LiquidityRecord, ledger []*models.LedgerBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *rec
	r.ID = s.id()
	s.liq = append(s.liq, &r)
	s.upsertLedger(ledger)
	return nil
}

func (s *Store) upsertLedger(ledger []*models.LedgerBalance) {
	for _, row := range ledger {
		r := *row
		s.ledger[r.TokenHandle+"|"+r.Account] = &r
	}
}

func (s *Store) LoadListings(_ context.Context) ([]*models.TokenListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.TokenListing, len(s.listings))
	for i, l := range s.listings {
		cp := *l
		out[i] = &cp
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LaunchIndex < out[j].LaunchIndex })
	return out, nil
}

func (s *Store) LoadTrackedBalances(_ context.Context) ([]*models.TrackedBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.TrackedBalance, 0, len(s.tracked))
	for _, row := range s.tracked {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) LoadLedgerBalances(_ context.Context) ([]*models.LedgerBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.LedgerBalance, 0, len(s.ledger))
	for _, row := range s.ledger {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) LoadNativeBalance(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasState {
		return "", storage.ErrNotFound
	}
	return s.native, nil
}

func (s *Store) ListTrades(_ context.Context, tokenHandle string, limit, offset int) ([]*models.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.TradeRecord
	for i := len(s.trades) - 1; i >= 0; i-- { // newest first
		if s.trades[i].TokenHandle == tokenHandle {
			cp := *s.trades[i]
			matched = append(matched, &cp)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// LiquidityRecords returns all recorded migrations, for tests.
func (s *Store) LiquidityRecords() []*models.LiquidityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.LiquidityRecord, len(s.liq))
	for i, r := range s.liq {
		cp := *r
		out[i] = &cp
	}
	return out
}

func (s *Store) RunMigrations() error { return nil }

func (s *Store) Close() error { return nil }

// internal/token/token.go
package token

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the sender's balance.
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrInsufficientAllowance is returned when a delegated transfer exceeds the granted allowance.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	// ErrSupplyOverflow is returned when minting would overflow the total supply.
	ErrSupplyOverflow = errors.New("total supply overflow")
)

// Token is the authoritative balance ledger for one launched asset.
// Amounts are 18-decimal base units; all arithmetic is exact 256-bit.
type Token struct {
	mu          sync.RWMutex
	name        string
	symbol      string
	totalSupply *uint256.Int
	balances    map[string]*uint256.Int
	allowances  map[string]map[string]*uint256.Int // owner -> spender -> amount
}

// New creates an empty token ledger. Supply is established via Mint.
func New(name, symbol string) *Token {
	return &Token{
		name:        name,
		symbol:      symbol,
		totalSupply: uint256.NewInt(0),
		balances:    make(map[string]*uint256.Int),
		allowances:  make(map[string]map[string]*uint256.Int),
	}
}

// Restore rebuilds a token ledger from persisted balances. Total supply is
// the sum of the given balances.
func Restore(name, symbol string, balances map[string]*uint256.Int) (*Token, error) {
	t := New(name, symbol)
	for account, amount := range balances {
		if err := t.Mint(account, amount); err != nil {
			return nil, fmt.Errorf("restore %s balance for %s: %w", symbol, account, err)
		}
	}
	return t, nil
}

// Name returns the display name.
func (t *Token) Name() string { return t.name }

// Symbol returns the display symbol.
func (t *Token) Symbol() string { return t.symbol }

// TotalSupply returns the current total supply.
func (t *Token) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalSupply.Clone()
}

// BalanceOf returns the balance of an account. Never fails; unknown
// accounts have a zero balance.
func (t *Token) BalanceOf(account string) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if b, ok := t.balances[account]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

// Allowance returns the amount spender may move on owner's behalf.
func (t *Token) Allowance(owner, spender string) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if spenders, ok := t.allowances[owner]; ok {
		if a, ok := spenders[spender]; ok {
			return a.Clone()
		}
	}
	return uint256.NewInt(0)
}

// Mint increases to's balance and the total supply by amount.
func (t *Token) Mint(to string, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	newSupply := new(uint256.Int)
	if _, overflow := newSupply.AddOverflow(t.totalSupply, amount); overflow {
		return ErrSupplyOverflow
	}
	t.totalSupply = newSupply
	t.credit(to, amount)
	return nil
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to string, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(from, to, amount)
}

// Approve grants spender the right to move up to amount of owner's tokens.
// A second call overwrites the previous grant.
func (t *Token) Approve(owner, spender string, amount *uint256.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	spenders, ok := t.allowances[owner]
	if !ok {
		spenders = make(map[string]*uint256.Int)
		t.allowances[owner] = spenders
	}
	spenders[spender] = amount.Clone()
}

// TransferFrom moves amount from owner to to, consuming spender's allowance.
func (t *Token) TransferFrom(owner, spender, to string, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed := uint256.NewInt(0)
	if spenders, ok := t.allowances[owner]; ok {
		if a, ok := spenders[spender]; ok {
			allowed = a
		}
	}
	if allowed.Lt(amount) {
		return fmt.Errorf("%w: spender %s allowed %s, need %s",
			ErrInsufficientAllowance, spender, allowed.Dec(), amount.Dec())
	}
	if err := t.move(owner, to, amount); err != nil {
		return err
	}
	t.allowances[owner][spender] = new(uint256.Int).Sub(allowed, amount)
	return nil
}

// move transfers balance between accounts. Caller holds the lock.
// Zero-amount moves succeed regardless of the sender's balance.
func (t *Token) move(from, to string, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	balance, ok := t.balances[from]
	if !ok || balance.Lt(amount) {
		have := uint256.NewInt(0)
		if ok {
			have = balance
		}
		return fmt.Errorf("%w: account %s has %s, need %s",
			ErrInsufficientBalance, from, have.Dec(), amount.Dec())
	}
	t.balances[from] = new(uint256.Int).Sub(balance, amount)
	t.credit(to, amount)
	return nil
}

// credit adds to an account balance. Caller holds the lock. Cannot overflow
// because the sum of balances never exceeds the (checked) total supply.
func (t *Token) credit(to string, amount *uint256.Int) {
	if b, ok := t.balances[to]; ok {
		t.balances[to] = new(uint256.Int).Add(b, amount)
		return
	}
	t.balances[to] = amount.Clone()
}

// Balances returns a copy of the full ledger, for persistence snapshots.
// Zeroed accounts are included: a snapshot row must overwrite any stale
// persisted balance the account had before it was drained.
func (t *Token) Balances() map[string]*uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]*uint256.Int, len(t.balances))
	for account, b := range t.balances {
		out[account] = b.Clone()
	}
	return out
}

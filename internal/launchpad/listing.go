// internal/launchpad/listing.go
package launchpad

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/rovshanmuradov/token-launchpad/internal/token"
)

// Listing is the immutable launch terms of one token. A listing is
// created exactly once and never removed.
type Listing struct {
	TokenHandle   string
	Name          string
	Symbol        string
	TotalSupply   *uint256.Int
	PricePerToken *uint256.Int
	Creator       string
	LaunchedAt    time.Time

	tok *token.Token
}

// Token returns the listing's fungible token ledger.
func (l *Listing) Token() *token.Token {
	return l.tok
}

// snapshot returns a caller-owned copy of the listing terms. The token
// ledger pointer is shared; the terms are not.
func (l *Listing) snapshot() *Listing {
	return &Listing{
		TokenHandle:   l.TokenHandle,
		Name:          l.Name,
		Symbol:        l.Symbol,
		TotalSupply:   l.TotalSupply.Clone(),
		PricePerToken: l.PricePerToken.Clone(),
		Creator:       l.Creator,
		LaunchedAt:    l.LaunchedAt,
		tok:           l.tok,
	}
}

// internal/launchpad/errors.go
package launchpad

import "errors"

var (
	// ErrUnknownToken is returned when a token handle resolves to no listing.
	ErrUnknownToken = errors.New("unknown token")

	// ErrUnknownRouter is returned when a router name is not registered.
	ErrUnknownRouter = errors.New("unknown router")

	// ErrInvalidSupply is returned when launching with a zero total supply.
	ErrInvalidSupply = errors.New("total supply must be greater than zero")

	// ErrIncorrectPayment is returned when the attached native currency
	// does not exactly equal amount * pricePerToken / unit scale. Both
	// underpayment and overpayment are rejected.
	ErrIncorrectPayment = errors.New("incorrect payment attached")

	// ErrInsufficientSupply is returned when the registry's custodial
	// balance cannot cover a buy (sold out).
	ErrInsufficientSupply = errors.New("insufficient token supply in custody")

	// ErrInsufficientTokenBalance is returned when a seller does not hold
	// enough tokens, in either the token ledger or the tracked view.
	ErrInsufficientTokenBalance = errors.New("not enough tokens in your wallet")

	// ErrInsufficientLiquidity is returned when the registry's native
	// currency holdings cannot cover a sell payout.
	ErrInsufficientLiquidity = errors.New("insufficient native currency liquidity")

	// ErrLiquidityProvisionFailed is returned when the external router
	// declines a liquidity migration. Custody is left unchanged.
	ErrLiquidityProvisionFailed = errors.New("liquidity provision failed")
)

// internal/events/types.go
package events

import (
	"context"
	"time"

	"github.com/holiman/uint256"
)

// EventType represents the type of event.
type EventType string

const (
	// Launch events
	TokenLaunched EventType = "token.launched"

	// Trade events
	TokensPurchased EventType = "tokens.purchased"
	TokensSold      EventType = "tokens.sold"

	// Liquidity events
	LiquidityAdded EventType = "liquidity.added"

	// Failure events
	OperationFailed EventType = "operation.failed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// Handler processes events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc allows using a function as a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription represents an active event subscription.
type Subscription interface {
	Unsubscribe()
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// TokenLaunchedEvent is emitted when a new token is launched. It is the
// channel by which callers learn the assigned token handle.
type TokenLaunchedEvent struct {
	BaseEvent
	TokenHandle   string
	Name          string
	Symbol        string
	TotalSupply   *uint256.Int
	PricePerToken *uint256.Int
	Creator       string
}

// TokensPurchasedEvent is emitted after a successful buy.
type TokensPurchasedEvent struct {
	BaseEvent
	TokenHandle string
	Buyer       string
	Amount      *uint256.Int
	Paid        *uint256.Int
}

// TokensSoldEvent is emitted after a successful sell.
type TokensSoldEvent struct {
	BaseEvent
	TokenHandle string
	Seller      string
	Amount      *uint256.Int
	Payout      *uint256.Int
}

// LiquidityAddedEvent is emitted after a successful migration of token and
// native currency into an external pool.
type LiquidityAddedEvent struct {
	BaseEvent
	TokenHandle  string
	Provider     string
	Router       string
	TokenAmount  *uint256.Int
	NativeAmount *uint256.Int
}

// OperationFailedEvent is emitted when a registry operation fails.
type OperationFailedEvent struct {
	BaseEvent
	Operation   string
	TokenHandle string
	Account     string
	Error       error
}

// NewBase stamps a BaseEvent with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now().UTC()}
}

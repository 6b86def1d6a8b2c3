package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPublishSyncDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var got []Event
	bus.SubscribeFunc(TokenLaunched, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	event := TokenLaunchedEvent{
		BaseEvent:   NewBase(TokenLaunched),
		TokenHandle: "handle-1",
		Name:        "Test Token",
		Symbol:      "TEST",
		TotalSupply: uint256.NewInt(1000),
	}
	require.NoError(t, bus.PublishSync(context.Background(), event))

	require.Len(t, got, 1)
	launched, ok := got[0].(TokenLaunchedEvent)
	require.True(t, ok)
	assert.Equal(t, "handle-1", launched.TokenHandle)
	assert.Equal(t, "TEST", launched.Symbol)
}

func TestPublishAsyncDelivers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	received := make(chan struct{}, 1)
	bus.SubscribeFunc(TokensPurchased, func(_ context.Context, e Event) error {
		received <- struct{}{}
		return nil
	})

	require.NoError(t, bus.Publish(TokensPurchasedEvent{
		BaseEvent:   NewBase(TokensPurchased),
		TokenHandle: "handle-1",
		Buyer:       "alice",
	}))

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	calls := 0
	sub := bus.SubscribeFunc(TokensSold, func(_ context.Context, e Event) error {
		calls++
		return nil
	})

	event := TokensSoldEvent{BaseEvent: NewBase(TokensSold), TokenHandle: "h"}
	require.NoError(t, bus.PublishSync(context.Background(), event))
	sub.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(), event))

	assert.Equal(t, 1, calls)
}

func TestPublishSyncCollectsHandlerErrors(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	bus.SubscribeFunc(OperationFailed, func(_ context.Context, e Event) error {
		return errors.New("handler boom")
	})

	err := bus.PublishSync(context.Background(), OperationFailedEvent{
		BaseEvent: NewBase(OperationFailed),
		Operation: "buy",
	})
	assert.Error(t, err)
}

func TestPublishAfterShutdownFails(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	require.NoError(t, bus.Shutdown(context.Background()))

	err := bus.Publish(TokensSoldEvent{BaseEvent: NewBase(TokensSold)})
	assert.Error(t, err)
}

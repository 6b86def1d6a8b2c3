package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestShutdownReverseOrder(t *testing.T) {
	sh := NewShutdownHandler(zaptest.NewLogger(t), time.Second)

	var order []string
	sh.AddFunc("first", func() error {
		order = append(order, "first")
		return nil
	})
	sh.AddFunc("second", func() error {
		order = append(order, "second")
		return nil
	})

	sh.Shutdown(context.Background())
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestShutdownAppliesOwnTimeout(t *testing.T) {
	sh := NewShutdownHandler(zaptest.NewLogger(t), 50*time.Millisecond)

	sh.AddFunc("hung", func() error {
		time.Sleep(2 * time.Second)
		return nil
	})

	start := time.Now()
	sh.Shutdown(context.Background())
	assert.Less(t, time.Since(start), time.Second)
}

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func doneCtx() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestShutdown_Order(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var calls []string

	err := shutdown(
		logger,
		func(time.Duration) error { calls = append(calls, "server"); return nil },
		func() context.Context {
			calls = append(calls, "scheduler")
			return doneCtx()
		},
		func() error { calls = append(calls, "cleanup"); return nil },
		nil,
	)

	assert.NoError(t, err)
	assert.Equal(t, []string{"server", "scheduler", "cleanup"}, calls)
}

func TestShutdown_JoinsErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	listenErr := errors.New("address in use")
	closeErr := errors.New("bus close")

	err := shutdown(
		logger,
		func(time.Duration) error { return nil },
		doneCtx,
		func() error { return closeErr },
		listenErr,
	)

	assert.ErrorIs(t, err, listenErr)
	assert.ErrorIs(t, err, closeErr)
}

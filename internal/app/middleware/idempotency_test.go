package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staynest/internal/app/commands"
	"staynest/internal/app/middleware"
	"staynest/internal/infra/storage/memory"
)

type echoCommand struct {
	Value string
	IdKey string
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.IdKey }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
	Calls int    `json:"calls"`
}

type echoHandler struct {
	calls int
	err   error
}

func (h *echoHandler) Handle(ctx context.Context, cmd echoCommand) (*echoResult, error) {
	h.calls++
	if h.err != nil {
		return nil, h.err
	}
	return &echoResult{Value: cmd.Value, Calls: h.calls}, nil
}

func pipeline(h *echoHandler) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Key(), h)
	return middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(), nil))
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	h := &echoHandler{}
	bus := pipeline(h)
	cmd := echoCommand{Value: "first", IdKey: "key-1"}

	first, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Calls)

	// same key replays the stored outcome without re-running the handler
	second, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Calls)
	assert.Equal(t, 1, h.calls)
}

func TestIdempotencyDistinctKeysRunIndependently(t *testing.T) {
	h := &echoHandler{}
	bus := pipeline(h)

	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{IdKey: "key-1"})
	require.NoError(t, err)
	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{IdKey: "key-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, h.calls)
}

func TestIdempotencyEmptyKeySkipsStore(t *testing.T) {
	h := &echoHandler{}
	bus := pipeline(h)

	for i := 0; i < 2; i++ {
		_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, h.calls)
}

func TestIdempotencyReplaysErrors(t *testing.T) {
	h := &echoHandler{err: errors.New("listing gone")}
	bus := pipeline(h)
	cmd := echoCommand{IdKey: "key-1"}

	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.Error(t, err)

	h.err = nil
	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, cmd)
	require.Error(t, err, "a recorded failure stays failed for the same key")
	assert.Equal(t, 1, h.calls)
}

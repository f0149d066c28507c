package eventbus_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/stateflow/pkg/channels/gochannel"
	"github.com/dukex/stateflow/pkg/eventbus"
	"github.com/dukex/stateflow/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	bus := eventbus.NewWatermillEventBus(pub, sub, logger)

	t.Cleanup(func() {
		assert.NoError(t, bus.Close())
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	bus := newBus(t)

	received := make(chan *events.DraftSaved, 1)

	require.NoError(t, bus.Handle(events.DraftSavedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.DraftSaved)

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "draft-1", events.DraftSaved{
		BaseEvent: events.NewBaseEvent(bus.GenerateID(), events.DraftSavedEvent),
		DraftID:   "draft-1",
		Name:      "campaign",
		Blocking:  true,
	}))

	select {
	case event := <-received:
		assert.Equal(t, "draft-1", event.DraftID)
		assert.Equal(t, "campaign", event.Name)
		assert.True(t, event.Blocking)
		assert.Equal(t, events.DraftSavedEvent, event.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledEventsAreAcked(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	bus := newBus(t)

	received := make(chan string, 2)

	require.NoError(t, bus.Handle(events.DraftDeletedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.DraftDeleted).DraftID

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "wf", events.WorkflowSubmitted{WorkflowID: "wf"}))
	require.NoError(t, bus.Publish(ctx, "d", events.DraftDeleted{DraftID: "d"}))

	select {
	case id := <-received:
		assert.Equal(t, "d", id)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestWatermillEventBus_PublishAfterClose(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, slog.Default())
	require.NoError(t, bus.Close())

	err = bus.Publish(t.Context(), "k", events.DraftDeleted{DraftID: "d"})
	assert.Error(t, err)
}

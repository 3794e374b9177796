package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "casebridge/pkg/platform/audit"
	"casebridge/pkg/platform/audit/store/memory"
	"casebridge/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Subject: "300001234567",
		Action:  string(audit.EventMappingContextBuilt),
	})
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), "300001234567")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventMappingContextBuilt), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Subject: "300001234567",
			Action:  string(audit.EventMappingContextFailed),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListBySubject(context.Background(), "300001234567")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pub.Emit(context.Background(), audit.Event{
				Subject: "300001234567",
				Action:  string(audit.EventMappingContextBuilt),
			}))
		}()
	}
	wg.Wait()
	pub.Close()
	pub.Close()

	events, err := store.ListBySubject(context.Background(), "300001234567")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(events), 10)
	assert.NotEmpty(t, events)
}

func TestPublisher_StampsFromRequestContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	require.NoError(t, pub.Emit(ctx, audit.Event{
		Subject: "300009999999",
		Action:  string(audit.EventReferenceDataLoaded),
	}))

	events, err := store.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	for name, opts := range map[string][]Option{
		"sync":  nil,
		"async": {WithAsyncBuffer(4)},
	} {
		t.Run(name, func(t *testing.T) {
			store := memory.NewInMemoryStore()
			pub := NewPublisher(store, opts...)
			pub.Close()

			var err error
			require.NotPanics(t, func() {
				err = pub.Emit(context.Background(), audit.Event{
					Subject: "300001234567",
					Action:  string(audit.EventMappingContextBuilt),
				})
			})
			assert.ErrorIs(t, err, ErrClosed)

			events, err := store.ListBySubject(context.Background(), "300001234567")
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestPublisher_CloseRacingEmit(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(8))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{
				Subject: "300001234567",
				Action:  string(audit.EventMappingContextBuilt),
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrClosed)
			}
		}()
	}
	pub.Close()
	wg.Wait()
}

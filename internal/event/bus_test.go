package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBus() *Bus {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewBus(log)
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus := testBus()

	var mu sync.Mutex
	got := map[string]any{}
	for _, name := range []string{"first", "second", "third"} {
		name := name
		bus.Subscribe("thing.happened", name, func(ctx context.Context, payload any) error {
			mu.Lock()
			got[name] = payload
			mu.Unlock()
			return nil
		})
	}

	bus.Publish(context.Background(), "thing.happened", 42)
	bus.Wait()

	require.Len(t, got, 3)
	for _, name := range []string{"first", "second", "third"} {
		assert.Equal(t, 42, got[name])
	}
}

func TestPanickingHandlerDoesNotStarveSiblings(t *testing.T) {
	bus := testBus()

	var calls int64
	bus.Subscribe("thing.happened", "bad", func(ctx context.Context, payload any) error {
		panic("boom")
	})
	bus.Subscribe("thing.happened", "good", func(ctx context.Context, payload any) error {
		atomic.AddInt64(&calls, 1)
		return nil
	})

	bus.Publish(context.Background(), "thing.happened", nil)
	bus.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestHandlerErrorIsIsolatedFromPublisher(t *testing.T) {
	bus := testBus()

	bus.Subscribe("thing.happened", "failing", func(ctx context.Context, payload any) error {
		return errors.New("handler failed")
	})

	// Publish has no error return; a failing handler must not panic or
	// block the publisher.
	bus.Publish(context.Background(), "thing.happened", nil)
	bus.Wait()
}

func TestWaitCoversCascadingPublishes(t *testing.T) {
	bus := testBus()

	var done int64
	bus.Subscribe("first", "cascade", func(ctx context.Context, payload any) error {
		bus.Publish(ctx, "second", nil)
		return nil
	})
	bus.Subscribe("second", "leaf", func(ctx context.Context, payload any) error {
		atomic.AddInt64(&done, 1)
		return nil
	})

	bus.Publish(context.Background(), "first", nil)
	bus.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&done))
}

func TestPublishWithoutSubscribersIsANoOp(t *testing.T) {
	bus := testBus()
	bus.Publish(context.Background(), "nobody.cares", nil)
	bus.Wait()
}

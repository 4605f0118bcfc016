package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/model"
)

func newTestInventory(t *testing.T) (*SeatInventory, *fakeSeatStore, *recordingBus) {
	t.Helper()
	seats := newFakeSeatStore()
	layouts := newFakeLayoutProvider()
	layouts.layouts[1] = simpleLayout()
	bus := &recordingBus{}
	inv := NewSeatInventory(seats, layouts, bus, testLogger(), 5*time.Minute)
	return inv, seats, bus
}

func TestLockCreatesRowLazilyAndEmits(t *testing.T) {
	inv, _, bus := newTestInventory(t)
	ctx := context.Background()

	lock, err := inv.Lock(ctx, 1, "A-1", 7)
	require.NoError(t, err)
	assert.Equal(t, model.SeatLocked, lock.Status)
	require.NotNil(t, lock.LockedBy)
	assert.Equal(t, uint64(7), *lock.LockedBy)

	last, ok := bus.last()
	require.True(t, ok)
	assert.Equal(t, event.SeatLocked, last.eventType)
}

func TestLockRefusesSeatHeldByAnotherUser(t *testing.T) {
	inv, _, _ := newTestInventory(t)
	ctx := context.Background()

	_, err := inv.Lock(ctx, 1, "A-1", 7)
	require.NoError(t, err)

	_, err = inv.Lock(ctx, 1, "A-1", 8)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestConcurrentLocksYieldExactlyOneWinner(t *testing.T) {
	inv, _, _ := newTestInventory(t)
	ctx := context.Background()

	const contenders = 10
	var wg sync.WaitGroup
	var wins int64
	for i := 0; i < contenders; i++ {
		userID := uint64(i + 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := inv.Lock(ctx, 1, "A-1", userID); err == nil {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&wins))
}

func TestLockBySameUserRefreshesHold(t *testing.T) {
	inv, _, _ := newTestInventory(t)
	ctx := context.Background()

	first, err := inv.Lock(ctx, 1, "A-1", 7)
	require.NoError(t, err)

	inv.now = func() time.Time { return time.Now().Add(time.Minute) }
	second, err := inv.Lock(ctx, 1, "A-1", 7)
	require.NoError(t, err)
	assert.True(t, second.LockExpiresAt.After(*first.LockExpiresAt))
}

func TestLockRejectsUnknownSeatBeforeTouchingLedger(t *testing.T) {
	inv, seats, _ := newTestInventory(t)
	ctx := context.Background()

	_, err := inv.Lock(ctx, 1, "Z-9", 7)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, seats.rows, "invalid codes must not materialize ledger rows")
}

func TestMarkReservedRequiresLockedState(t *testing.T) {
	inv, _, _ := newTestInventory(t)
	ctx := context.Background()

	_, err := inv.MarkReserved(ctx, 1, "A-1", 7)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "no row yet")

	_, err = inv.Lock(ctx, 1, "A-1", 7)
	require.NoError(t, err)
	lock, err := inv.MarkReserved(ctx, 1, "A-1", 7)
	require.NoError(t, err)
	assert.Equal(t, model.SeatReserved, lock.Status)
	assert.Nil(t, lock.LockedBy)

	_, err = inv.MarkReserved(ctx, 1, "A-1", 7)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "already reserved")
}

func TestAdminUnlockIsUnconditional(t *testing.T) {
	inv, _, _ := newTestInventory(t)
	ctx := context.Background()

	_, err := inv.Lock(ctx, 1, "A-1", 7)
	require.NoError(t, err)
	_, err = inv.MarkReserved(ctx, 1, "A-1", 7)
	require.NoError(t, err)

	// Force release works even on a RESERVED seat.
	lock, err := inv.Unlock(ctx, 1, "A-1", 99)
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, lock.Status)
}

func TestSweepExpiredReclaimsOnlyOverdueLocks(t *testing.T) {
	inv, seats, bus := newTestInventory(t)
	ctx := context.Background()

	_, err := inv.Lock(ctx, 1, "A-1", 7)
	require.NoError(t, err)
	_, err = inv.Lock(ctx, 1, "A-2", 8)
	require.NoError(t, err)

	// Age only A-1 past its expiry.
	past := time.Now().Add(-time.Minute)
	seats.rows[seatKey{1, "A-1"}].LockExpiresAt = &past

	swept, err := inv.SweepExpired(ctx)
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, "A-1", swept[0].SeatCode)

	freed, err := seats.Get(ctx, 1, "A-1")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, freed.Status)
	held, err := seats.Get(ctx, 1, "A-2")
	require.NoError(t, err)
	assert.Equal(t, model.SeatLocked, held.Status)

	assert.Contains(t, bus.types(), event.SeatExpired)
}

func TestGridMergesLedgerIntoLayout(t *testing.T) {
	inv, seats, _ := newTestInventory(t)
	ctx := context.Background()

	_, err := inv.Lock(ctx, 1, "B-2", 7)
	require.NoError(t, err)
	_, err = inv.Lock(ctx, 1, "C-1", 8)
	require.NoError(t, err)
	_, err = inv.MarkReserved(ctx, 1, "C-1", 8)
	require.NoError(t, err)

	// A stale ledger row for a seat the layout no longer has.
	_, err = seats.Lock(ctx, 1, "Z-9", 9, time.Now().Add(time.Minute))
	require.NoError(t, err)

	grid, err := inv.Grid(ctx, 1)
	require.NoError(t, err)
	require.Len(t, grid, 12, "3x4 layout, stale row dropped")

	byCode := map[string]model.SeatStatus{}
	for _, entry := range grid {
		byCode[entry.SeatCode] = entry.Status
	}
	assert.Equal(t, model.SeatLocked, byCode["B-2"])
	assert.Equal(t, model.SeatReserved, byCode["C-1"])
	assert.Equal(t, model.SeatAvailable, byCode["A-1"])
	assert.NotContains(t, byCode, "Z-9")
}

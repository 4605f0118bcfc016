package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/model"
)

func newTestPayments(t *testing.T) (*Payments, *fakeOrderStore, *recordingBus) {
	t.Helper()
	payStore := newFakePaymentStore()
	orderStore := newFakeOrderStore()
	bus := &recordingBus{}
	svc := NewPayments(payStore, orderStore, bus, testLogger())
	return svc, orderStore, bus
}

func pendingOrder(t *testing.T, orders *fakeOrderStore, userID uint64, finalCents int64) *model.Order {
	t.Helper()
	ord := &model.Order{
		UserID:           userID,
		ReservationID:    1,
		ShowtimeID:       1,
		SeatCode:         "A-1",
		FinalAmountCents: finalCents,
		Status:           model.OrderPending,
	}
	require.NoError(t, orders.Create(context.Background(), ord))
	return ord
}

func TestCreatePaymentAttempt(t *testing.T) {
	svc, orders, bus := newTestPayments(t)
	ord := pendingOrder(t, orders, 7, 1200)

	attempt, err := svc.Create(context.Background(), ord.ID, 7, 1200)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, attempt.Status)
	assert.Equal(t, int64(1200), attempt.FinalAmountCents)

	last, ok := bus.last()
	require.True(t, ok)
	assert.Equal(t, event.PaymentPending, last.eventType)
}

func TestCreatePaymentRefusesSettledOrder(t *testing.T) {
	svc, orders, _ := newTestPayments(t)
	ord := pendingOrder(t, orders, 7, 1200)
	ord.Status = model.OrderCancelled
	require.NoError(t, orders.Update(context.Background(), ord))

	_, err := svc.Create(context.Background(), ord.ID, 7, 1200)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreatePaymentHidesForeignOrders(t *testing.T) {
	svc, orders, _ := newTestPayments(t)
	ord := pendingOrder(t, orders, 7, 1200)

	_, err := svc.Create(context.Background(), ord.ID, 8, 1200)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestConfirmMatchingAmountSucceeds(t *testing.T) {
	svc, orders, bus := newTestPayments(t)
	ord := pendingOrder(t, orders, 7, 1200)
	attempt, err := svc.Create(context.Background(), ord.ID, 7, 1200)
	require.NoError(t, err)

	got, err := svc.Confirm(context.Background(), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentSucceeded, got.Status)
	assert.Contains(t, bus.types(), event.PaymentSucceeded)
}

func TestConfirmChecksAmountAgainstCurrentOrder(t *testing.T) {
	svc, orders, bus := newTestPayments(t)
	ord := pendingOrder(t, orders, 7, 1200)
	attempt, err := svc.Create(context.Background(), ord.ID, 7, 1200)
	require.NoError(t, err)

	// Pricing changed between attempt creation and confirmation.
	ord.FinalAmountCents = 1300
	require.NoError(t, orders.Update(context.Background(), ord))

	_, err = svc.Confirm(context.Background(), attempt.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.NotContains(t, bus.types(), event.PaymentSucceeded)

	// The attempt stays PENDING so the user can retry.
	got, err := svc.Get(context.Background(), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, got.Status)
}

func TestConfirmIsIdempotentAndFailIsTerminal(t *testing.T) {
	svc, orders, _ := newTestPayments(t)
	ord := pendingOrder(t, orders, 7, 1200)
	attempt, err := svc.Create(context.Background(), ord.ID, 7, 1200)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), attempt.ID)
	require.NoError(t, err)
	again, err := svc.Confirm(context.Background(), attempt.ID)
	require.NoError(t, err, "re-confirming a succeeded attempt is a no-op")
	assert.Equal(t, model.PaymentSucceeded, again.Status)

	_, err = svc.Fail(context.Background(), attempt.ID, "late decline")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestFailRecordsReasonAndEmits(t *testing.T) {
	svc, orders, bus := newTestPayments(t)
	ord := pendingOrder(t, orders, 7, 1200)
	attempt, err := svc.Create(context.Background(), ord.ID, 7, 1200)
	require.NoError(t, err)

	got, err := svc.Fail(context.Background(), attempt.ID, "card declined")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, got.Status)
	require.NotNil(t, got.FailureReason)
	assert.Equal(t, "card declined", *got.FailureReason)
	assert.Contains(t, bus.types(), event.PaymentFailed)

	again, err := svc.Fail(context.Background(), attempt.ID, "again")
	require.NoError(t, err, "re-failing is a no-op")
	assert.Equal(t, "card declined", *again.FailureReason)

	_, err = svc.Confirm(context.Background(), attempt.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

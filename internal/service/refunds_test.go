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

type refundFixture struct {
	svc       *Refunds
	bus       *recordingBus
	res       *model.Reservation
	attempt   *model.PaymentAttempt
	attempts  *fakePaymentStore
	reserving *fakeReservationStore
}

func newRefundFixture(t *testing.T) *refundFixture {
	t.Helper()
	refundStore := newFakeRefundStore()
	payStore := newFakePaymentStore()
	resStore := newFakeReservationStore()
	bus := &recordingBus{}
	svc := NewRefunds(refundStore, payStore, resStore, bus, testLogger())

	ctx := context.Background()
	res := &model.Reservation{UserID: 7, ShowtimeID: 1, SeatCode: "A-1", Status: model.ReservationActive}
	require.NoError(t, resStore.Create(ctx, res))
	attempt := &model.PaymentAttempt{OrderID: 1, AmountAttemptedCents: 1200, FinalAmountCents: 1200, Status: model.PaymentSucceeded}
	require.NoError(t, payStore.Create(ctx, attempt))

	return &refundFixture{svc: svc, bus: bus, res: res, attempt: attempt, attempts: payStore, reserving: resStore}
}

func TestCreateRefundRequest(t *testing.T) {
	f := newRefundFixture(t)

	rr, err := f.svc.Create(context.Background(), 7, f.res.ID, f.attempt.ID, 1200, "showtime cancelled")
	require.NoError(t, err)
	assert.Equal(t, model.RefundPending, rr.Status)
	assert.Contains(t, f.bus.types(), event.RefundRequestCreated)
}

func TestCreateRefundRejectsPendingPayment(t *testing.T) {
	f := newRefundFixture(t)
	f.attempt.Status = model.PaymentPending
	require.NoError(t, f.attempts.Update(context.Background(), f.attempt))

	_, err := f.svc.Create(context.Background(), 7, f.res.ID, f.attempt.ID, 1200, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestCreateRefundCapsAmountAtPaid(t *testing.T) {
	f := newRefundFixture(t)

	_, err := f.svc.Create(context.Background(), 7, f.res.ID, f.attempt.ID, 1500, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.svc.Create(context.Background(), 7, f.res.ID, f.attempt.ID, 0, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateRefundHidesForeignReservations(t *testing.T) {
	f := newRefundFixture(t)

	_, err := f.svc.Create(context.Background(), 8, f.res.ID, f.attempt.ID, 1200, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRefundApprovalPathReachesCompleted(t *testing.T) {
	f := newRefundFixture(t)
	ctx := context.Background()

	rr, err := f.svc.Create(ctx, 7, f.res.ID, f.attempt.ID, 1200, "")
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, rr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RefundApproved, approved.Status)
	assert.Contains(t, f.bus.types(), event.RefundRequestApproved)

	completed, err := f.svc.Complete(ctx, rr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RefundCompleted, completed.Status)
	require.NotNil(t, completed.ProviderRefundID)
	assert.NotEmpty(t, *completed.ProviderRefundID)
	assert.Contains(t, f.bus.types(), event.RefundIssued)
}

func TestRefundCompleteRequiresApproval(t *testing.T) {
	f := newRefundFixture(t)
	ctx := context.Background()

	rr, err := f.svc.Create(ctx, 7, f.res.ID, f.attempt.ID, 1200, "")
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, rr.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRejectedRefundCannotBeApproved(t *testing.T) {
	f := newRefundFixture(t)
	ctx := context.Background()

	rr, err := f.svc.Create(ctx, 7, f.res.ID, f.attempt.ID, 1200, "")
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, rr.ID, "outside refund window")
	require.NoError(t, err)
	assert.Equal(t, model.RefundRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)

	_, err = f.svc.Approve(ctx, rr.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	again, err := f.svc.Reject(ctx, rr.ID, "different reason")
	require.NoError(t, err, "re-rejecting is a no-op")
	assert.Equal(t, "outside refund window", *again.RejectionReason)
}

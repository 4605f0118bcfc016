package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/event"
	"github.com/cinemacore/booking/internal/model"
	"github.com/cinemacore/booking/internal/repository"
)

// Orders manages the order saga leg.  An order is created PENDING when
// its reservation is created, picks up a price snapshot, and then
// settles into COMPLETED, CANCELLED or EXPIRED following the payment
// outcome or the reservation's fate.
type Orders struct {
	orders OrderStore
	bus    Publisher
	log    *logrus.Logger
}

// NewOrders builds the order service.
func NewOrders(orders OrderStore, bus Publisher, log *logrus.Logger) *Orders {
	return &Orders{orders: orders, bus: bus, log: log}
}

// CreateFromReservation opens a PENDING order for a fresh reservation.
// The price snapshot is attached asynchronously by the pricing handler.
func (o *Orders) CreateFromReservation(ctx context.Context, p event.ReservationPayload) (*model.Order, error) {
	ord := &model.Order{
		UserID:        p.UserID,
		ReservationID: p.ReservationID,
		ShowtimeID:    p.ShowtimeID,
		SeatCode:      p.SeatCode,
		Status:        model.OrderPending,
	}
	if err := o.orders.Create(ctx, ord); err != nil {
		return nil, apperr.Internal("could not create order", map[string]any{"reservation_id": p.ReservationID})
	}

	o.bus.Publish(ctx, event.OrderCreated, event.OrderPayload{
		OrderID:       ord.ID,
		UserID:        ord.UserID,
		ReservationID: ord.ReservationID,
		ShowtimeID:    ord.ShowtimeID,
		SeatCode:      ord.SeatCode,
	})
	return ord, nil
}

// ApplySnapshot freezes a price snapshot onto a PENDING order.  The
// snapshot is written once; an order that already carries one keeps it.
func (o *Orders) ApplySnapshot(ctx context.Context, orderID uint64, snap *model.PricingSnapshot) error {
	ord, err := o.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("order not found", map[string]any{"order_id": orderID})
		}
		return apperr.Internal("could not load order", map[string]any{"order_id": orderID})
	}
	if ord.Snapshot != nil {
		return nil
	}

	ord.Snapshot = snap
	ord.FinalAmountCents = snap.FinalPriceCents
	if err := o.orders.Update(ctx, ord); err != nil {
		return apperr.Internal("could not attach price snapshot", map[string]any{"order_id": orderID})
	}
	return nil
}

// Get returns an order by id.
func (o *Orders) Get(ctx context.Context, id uint64) (*model.Order, error) {
	ord, err := o.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("order not found", map[string]any{"order_id": id})
		}
		return nil, apperr.Internal("could not load order", map[string]any{"order_id": id})
	}
	return ord, nil
}

// GetByReservation returns the order attached to a reservation.
func (o *Orders) GetByReservation(ctx context.Context, reservationID uint64) (*model.Order, error) {
	ord, err := o.orders.GetByReservationID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("order not found", map[string]any{"reservation_id": reservationID})
		}
		return nil, apperr.Internal("could not load order", map[string]any{"reservation_id": reservationID})
	}
	return ord, nil
}

// Complete marks a PENDING order COMPLETED after a successful payment
// and announces it, which finalizes the seat as RESERVED downstream.
func (o *Orders) Complete(ctx context.Context, orderID uint64) (*model.Order, error) {
	return o.settle(ctx, orderID, model.OrderCompleted, event.OrderCompleted)
}

// Cancel marks a PENDING order CANCELLED, compensating for a cancelled
// reservation or a failed payment.
func (o *Orders) Cancel(ctx context.Context, orderID uint64) (*model.Order, error) {
	return o.settle(ctx, orderID, model.OrderCancelled, event.OrderCancelled)
}

// Expire marks a PENDING order EXPIRED when its reservation timed out.
func (o *Orders) Expire(ctx context.Context, orderID uint64) (*model.Order, error) {
	return o.settle(ctx, orderID, model.OrderExpired, event.OrderExpired)
}

func (o *Orders) settle(ctx context.Context, orderID uint64, status model.OrderStatus, eventType string) (*model.Order, error) {
	ord, err := o.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("order not found", map[string]any{"order_id": orderID})
		}
		return nil, apperr.Internal("could not load order", map[string]any{"order_id": orderID})
	}
	if ord.Status == status {
		return ord, nil
	}
	if ord.Status != model.OrderPending {
		return nil, apperr.Conflict("order already settled", map[string]any{"order_id": orderID, "status": ord.Status})
	}

	ord.Status = status
	if err := o.orders.Update(ctx, ord); err != nil {
		return nil, apperr.Internal("could not update order", map[string]any{"order_id": orderID})
	}

	o.bus.Publish(ctx, eventType, event.OrderPayload{
		OrderID:       ord.ID,
		UserID:        ord.UserID,
		ReservationID: ord.ReservationID,
		ShowtimeID:    ord.ShowtimeID,
		SeatCode:      ord.SeatCode,
	})
	return ord, nil
}

// Package worker hosts the background loops that run beside the HTTP
// server.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ReservationSweeper is the slice of the reservation service the sweeper
// drives.
type ReservationSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Sweeper periodically expires overdue reservations.  Seat unlocks and
// order expiry follow from the events the reservation service emits, so
// the loop itself touches nothing but the reservation table.
type Sweeper struct {
	reservations ReservationSweeper
	interval     time.Duration
	log          *logrus.Logger
}

// NewSweeper builds a sweeper ticking at the given interval.
func NewSweeper(reservations ReservationSweeper, interval time.Duration, log *logrus.Logger) *Sweeper {
	return &Sweeper{reservations: reservations, interval: interval, log: log}
}

// Run blocks until ctx is cancelled, sweeping once per tick.  Call it in
// its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval.String()).Info("reservation sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info("reservation sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.reservations.SweepExpired(ctx); err != nil {
				s.log.WithError(err).Error("reservation sweep failed")
			}
		}
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cinemacore/booking/internal/model"
	"github.com/cinemacore/booking/internal/repository"
)

// In-memory store fakes.  They mirror the MySQL repositories' contracts,
// including the sentinel errors, so the services under test cannot tell
// the difference.

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type seatKey struct {
	showtimeID uint64
	seatCode   string
}

type fakeSeatStore struct {
	mu     sync.Mutex
	rows   map[seatKey]*model.SeatLock
	nextID uint64
}

func newFakeSeatStore() *fakeSeatStore {
	return &fakeSeatStore{rows: make(map[seatKey]*model.SeatLock)}
}

func (f *fakeSeatStore) Get(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[seatKey{showtimeID, seatCode}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeSeatStore) Lock(ctx context.Context, showtimeID uint64, seatCode string, userID uint64, expiresAt time.Time) (*model.SeatLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := seatKey{showtimeID, seatCode}
	row, ok := f.rows[key]
	if !ok {
		f.nextID++
		row = &model.SeatLock{
			ID:         f.nextID,
			ShowtimeID: showtimeID,
			SeatCode:   seatCode,
			Status:     model.SeatAvailable,
			CreatedAt:  time.Now(),
		}
		f.rows[key] = row
	}
	switch {
	case row.Status == model.SeatReserved:
		return nil, repository.ErrSeatReserved
	case row.Status == model.SeatLocked && (row.LockedBy == nil || *row.LockedBy != userID):
		return nil, repository.ErrSeatLockedByOther
	}
	row.Status = model.SeatLocked
	row.LockedBy = &userID
	row.LockExpiresAt = &expiresAt
	row.UpdatedAt = time.Now()
	cp := *row
	return &cp, nil
}

func (f *fakeSeatStore) Unlock(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[seatKey{showtimeID, seatCode}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.Status = model.SeatAvailable
	row.LockedBy = nil
	row.LockExpiresAt = nil
	row.UpdatedAt = time.Now()
	cp := *row
	return &cp, nil
}

func (f *fakeSeatStore) MarkReserved(ctx context.Context, showtimeID uint64, seatCode string) (*model.SeatLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[seatKey{showtimeID, seatCode}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if row.Status != model.SeatLocked {
		return nil, repository.ErrSeatNotLocked
	}
	row.Status = model.SeatReserved
	row.LockedBy = nil
	row.LockExpiresAt = nil
	row.UpdatedAt = time.Now()
	cp := *row
	return &cp, nil
}

func (f *fakeSeatStore) SweepExpired(ctx context.Context, now time.Time) ([]model.SeatLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var swept []model.SeatLock
	for _, row := range f.rows {
		if row.Status == model.SeatLocked && row.LockExpiresAt != nil && !row.LockExpiresAt.After(now) {
			swept = append(swept, *row)
			row.Status = model.SeatAvailable
			row.LockedBy = nil
			row.LockExpiresAt = nil
		}
	}
	return swept, nil
}

func (f *fakeSeatStore) ListForShowtime(ctx context.Context, showtimeID uint64) ([]model.SeatLock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SeatLock
	for _, row := range f.rows {
		if row.ShowtimeID == showtimeID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeReservationStore struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Reservation
	nextID uint64
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{rows: make(map[uint64]*model.Reservation)}
}

func (f *fakeReservationStore) Create(ctx context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now()
	cp := *res
	f.rows[res.ID] = &cp
	return nil
}

func (f *fakeReservationStore) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeReservationStore) Update(ctx context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[res.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *res
	f.rows[res.ID] = &cp
	return nil
}

func (f *fakeReservationStore) ActiveByShowtimeAndSeat(ctx context.Context, showtimeID uint64, seatCode string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ShowtimeID == showtimeID && row.SeatCode == seatCode && row.Status == model.ReservationActive {
			cp := *row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReservationStore) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) ListExpired(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, row := range f.rows {
		if row.Status == model.ReservationActive && row.ExpiresAt != nil && !row.ExpiresAt.After(now) {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Order
	nextID uint64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{rows: make(map[uint64]*model.Order)}
}

func (f *fakeOrderStore) Create(ctx context.Context, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = time.Now()
	cp := *o
	f.rows[o.ID] = &cp
	return nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeOrderStore) GetByReservationID(ctx context.Context, reservationID uint64) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.ReservationID == reservationID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrderStore) Update(ctx context.Context, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[o.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	f.rows[o.ID] = &cp
	return nil
}

type fakePaymentStore struct {
	mu     sync.Mutex
	rows   map[uint64]*model.PaymentAttempt
	nextID uint64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{rows: make(map[uint64]*model.PaymentAttempt)}
}

func (f *fakePaymentStore) Create(ctx context.Context, p *model.PaymentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePaymentStore) GetByID(ctx context.Context, id uint64) (*model.PaymentAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakePaymentStore) Update(ctx context.Context, p *model.PaymentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

type fakeRefundStore struct {
	mu     sync.Mutex
	rows   map[uint64]*model.RefundRequest
	nextID uint64
}

func newFakeRefundStore() *fakeRefundStore {
	return &fakeRefundStore{rows: make(map[uint64]*model.RefundRequest)}
}

func (f *fakeRefundStore) Create(ctx context.Context, rr *model.RefundRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rr.ID = f.nextID
	rr.CreatedAt = time.Now()
	cp := *rr
	f.rows[rr.ID] = &cp
	return nil
}

func (f *fakeRefundStore) GetByID(ctx context.Context, id uint64) (*model.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRefundStore) Update(ctx context.Context, rr *model.RefundRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[rr.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *rr
	f.rows[rr.ID] = &cp
	return nil
}

func (f *fakeRefundStore) ListByReservation(ctx context.Context, reservationID uint64) ([]model.RefundRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RefundRequest
	for _, row := range f.rows {
		if row.ReservationID == reservationID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeModifierStore struct {
	mu   sync.Mutex
	mods []model.PriceModifier
}

func (f *fakeModifierStore) ListActiveModifiers(ctx context.Context) ([]model.PriceModifier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PriceModifier
	for _, m := range f.mods {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeModifierStore) set(mods ...model.PriceModifier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mods = mods
}

type fakeLayoutProvider struct {
	layouts map[uint64]*model.SeatLayout
}

func newFakeLayoutProvider() *fakeLayoutProvider {
	return &fakeLayoutProvider{layouts: make(map[uint64]*model.SeatLayout)}
}

func (f *fakeLayoutProvider) LayoutForShowtime(ctx context.Context, showtimeID uint64) (*model.SeatLayout, error) {
	layout, ok := f.layouts[showtimeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return layout, nil
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (f *fakeAuditStore) Append(ctx context.Context, e *model.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAuditStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// simpleLayout is a 3x4 layout without an explicit grid: seats A-1..C-4.
func simpleLayout() *model.SeatLayout {
	return &model.SeatLayout{ID: 1, Name: "small hall", Rows: 3, SeatsPerRow: 4}
}

type recordedEvent struct {
	eventType string
	payload   any
}

// recordingBus captures published events synchronously for unit tests
// that exercise one service in isolation.
type recordingBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBus) Publish(ctx context.Context, eventType string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{eventType: eventType, payload: payload})
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.eventType
	}
	return out
}

func (b *recordingBus) last() (recordedEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return recordedEvent{}, false
	}
	return b.events[len(b.events)-1], true
}

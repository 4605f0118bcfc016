package model

import "time"

// AisleSentinel marks a grid position that holds no seat.  Codes equal
// to this value are skipped when flattening a layout and rejected when
// validating a seat code.
const AisleSentinel = "AISLE"

// SeatLayout describes the seating arrangement of a screen.  When Grid
// is non-nil it is authoritative: a map from row label to the ordered
// seat codes of that row, with AISLE sentinels for gaps.  When Grid is
// nil the layout falls back to Rows x SeatsPerRow with row labels A, B,
// C, ... and seat numbers 1..SeatsPerRow.
type SeatLayout struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	Rows        uint32              `json:"rows"`
	SeatsPerRow uint32              `json:"seats_per_row"`
	Grid        map[string][]string `json:"grid,omitempty"`
}

// Screen is an auditorium with a fixed seat layout.
type Screen struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	SeatLayoutID uint64 `json:"seat_layout_id"`
}

// Showtime schedules a screening on a screen.  Only the fields the
// booking core depends on are modeled; movie metadata lives outside the
// core.
type Showtime struct {
	ID       uint64    `json:"id"`
	ScreenID uint64    `json:"screen_id"`
	StartsAt time.Time `json:"starts_at"`
	IsActive bool      `json:"is_active"`
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/model"
)

func TestParseSeatCode(t *testing.T) {
	row, num, err := ParseSeatCode("A-5")
	require.NoError(t, err)
	assert.Equal(t, "A", row)
	assert.Equal(t, 5, num)

	row, num, err = ParseSeatCode("AB-12")
	require.NoError(t, err)
	assert.Equal(t, "AB", row)
	assert.Equal(t, 12, num)

	for _, bad := range []string{"", "A", "A-", "-5", "A-0", "A--", "A-x"} {
		_, _, err := ParseSeatCode(bad)
		assert.Error(t, err, "code %q should not parse", bad)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	}
}

func TestValidateSeatCodeAgainstDimensions(t *testing.T) {
	layout := simpleLayout() // 3 rows x 4 seats

	assert.NoError(t, validateSeatCode(layout, "A-1"))
	assert.NoError(t, validateSeatCode(layout, "C-4"))

	assert.Error(t, validateSeatCode(layout, "D-1"), "row beyond layout")
	assert.Error(t, validateSeatCode(layout, "A-5"), "seat beyond row")
}

func TestValidateSeatCodeAgainstGridSkipsAisles(t *testing.T) {
	layout := &model.SeatLayout{
		ID:          2,
		Rows:        2,
		SeatsPerRow: 3,
		Grid: map[string][]string{
			"A": {"A-1", model.AisleSentinel, "A-3"},
			"B": {"B-1", "B-2", "B-3"},
		},
	}

	assert.NoError(t, validateSeatCode(layout, "A-1"))
	assert.NoError(t, validateSeatCode(layout, "B-2"))
	assert.Error(t, validateSeatCode(layout, "A-2"), "aisle cell is not sellable")
	assert.Error(t, validateSeatCode(layout, "C-1"), "unknown row")
}

func TestLayoutSeatCodesFlattensGridWithoutAisles(t *testing.T) {
	layout := &model.SeatLayout{
		ID:          3,
		Rows:        2,
		SeatsPerRow: 3,
		Grid: map[string][]string{
			"A": {"A-1", model.AisleSentinel, "A-3"},
			"B": {"B-1", "B-2", "B-3"},
		},
	}

	codes := layoutSeatCodes(layout)
	assert.Equal(t, []string{"A-1", "A-3", "B-1", "B-2", "B-3"}, codes)
}

func TestRowLabelRoundTrip(t *testing.T) {
	for _, idx := range []int{0, 1, 25, 26, 51, 100} {
		label := rowLabel(idx)
		assert.Equal(t, idx, rowLabelIndex(label), "label %q", label)
	}
}

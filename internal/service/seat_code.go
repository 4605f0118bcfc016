package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cinemacore/booking/internal/apperr"
	"github.com/cinemacore/booking/internal/model"
)

// ParseSeatCode splits a "ROW-NUMBER" seat code such as "A-5" into its
// row label and seat number.  The number must be a positive integer.
func ParseSeatCode(code string) (row string, num int, err error) {
	idx := strings.LastIndex(code, "-")
	if idx <= 0 || idx == len(code)-1 {
		return "", 0, apperr.Validation("seat code must look like A-5", map[string]any{"seat_code": code})
	}
	row = code[:idx]
	num, convErr := strconv.Atoi(code[idx+1:])
	if convErr != nil || num < 1 {
		return "", 0, apperr.Validation("seat number must be a positive integer", map[string]any{"seat_code": code})
	}
	return row, num, nil
}

// validateSeatCode checks that a seat code names a real, sellable seat
// in the given layout.  When the layout carries an explicit grid the
// code must match a grid cell that is not an aisle; otherwise the code
// is checked against the Rows x SeatsPerRow bounds with rows labelled
// A, B, C and so on.
func validateSeatCode(layout *model.SeatLayout, code string) error {
	row, num, err := ParseSeatCode(code)
	if err != nil {
		return err
	}
	if len(layout.Grid) > 0 {
		seats, ok := layout.Grid[row]
		if !ok {
			return apperr.Validation("unknown seat row", map[string]any{"seat_code": code, "row": row})
		}
		for _, cell := range seats {
			if cell == code {
				return nil
			}
		}
		return apperr.Validation("seat does not exist in this screen", map[string]any{"seat_code": code})
	}
	if layout.Rows == 0 || layout.SeatsPerRow == 0 {
		return apperr.Internal("seat layout has no grid and no dimensions", map[string]any{"layout_id": layout.ID})
	}
	rowIdx := rowLabelIndex(row)
	if rowIdx < 0 || rowIdx >= int(layout.Rows) {
		return apperr.Validation("unknown seat row", map[string]any{"seat_code": code, "row": row})
	}
	if num > int(layout.SeatsPerRow) {
		return apperr.Validation("seat number out of range", map[string]any{"seat_code": code})
	}
	return nil
}

// rowLabelIndex maps A -> 0, B -> 1, ..., Z -> 25, AA -> 26 and so on,
// returning -1 for anything that is not an uppercase letter sequence.
func rowLabelIndex(label string) int {
	if label == "" {
		return -1
	}
	idx := 0
	for _, r := range label {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}

// layoutSeatCodes flattens a layout into the ordered list of sellable
// seat codes, skipping aisle cells.
func layoutSeatCodes(layout *model.SeatLayout) []string {
	var codes []string
	if len(layout.Grid) > 0 {
		for r := 0; r < int(layout.Rows); r++ {
			label := rowLabel(r)
			for _, cell := range layout.Grid[label] {
				if cell == model.AisleSentinel {
					continue
				}
				codes = append(codes, cell)
			}
		}
		// Rows not covered by sequential labels (custom naming) are
		// appended afterwards so nothing in the grid is dropped.
		if len(codes) == 0 {
			for _, seats := range layout.Grid {
				for _, cell := range seats {
					if cell != model.AisleSentinel {
						codes = append(codes, cell)
					}
				}
			}
		}
		return codes
	}
	for r := 0; r < int(layout.Rows); r++ {
		label := rowLabel(r)
		for n := 1; n <= int(layout.SeatsPerRow); n++ {
			codes = append(codes, fmt.Sprintf("%s-%d", label, n))
		}
	}
	return codes
}

// rowLabel is the inverse of rowLabelIndex: 0 -> A, 25 -> Z, 26 -> AA.
func rowLabel(idx int) string {
	idx++
	var b []byte
	for idx > 0 {
		idx--
		b = append([]byte{byte('A' + idx%26)}, b...)
		idx /= 26
	}
	return string(b)
}

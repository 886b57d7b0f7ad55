package carriage

import "sort"

// DefaultSeats is the seat count used for any carriage a table does not list.
const DefaultSeats = 40

// SeatTable maps carriage ids to their seat counts.  Carriages that are not
// listed fall back to Default.  Reversed lists the carriages whose front end
// carries the higher seat numbers.
//
// A SeatTable is a plain value; callers pick one at startup and pass it
// around.  The layout functions never consult a global table.
type SeatTable struct {
	Name     string       // label reported alongside layouts
	Seats    map[int]int  // carriage id -> seat count
	Default  int          // seat count for unknown carriages
	Reversed map[int]bool // carriages with reversed numbering
}

// reversedCarriages is the observed reversed-numbering set.
var reversedCarriages = []int{9, 10, 11, 12}

// FirstRevisionTable is the earlier lookup: carriages 8 and 9 carry 52 seats,
// everything else 40.
func FirstRevisionTable() SeatTable {
	return SeatTable{
		Name:     "first-revision",
		Seats:    map[int]int{8: 52, 9: 52},
		Default:  DefaultSeats,
		Reversed: toSet(reversedCarriages),
	}
}

// SecondRevisionTable is the later lookup and the one used unless a table
// file replaces it.
func SecondRevisionTable() SeatTable {
	seats := make(map[int]int, 12)
	for _, id := range []int{2, 4, 5, 8, 9, 10, 11} {
		seats[id] = 52
	}
	for _, id := range []int{1, 3, 6, 12} {
		seats[id] = 40
	}
	seats[7] = 28
	return SeatTable{
		Name:     "second-revision",
		Seats:    seats,
		Default:  DefaultSeats,
		Reversed: toSet(reversedCarriages),
	}
}

// SeatCountFor returns the number of seats in the carriage.  Unknown ids,
// including zero and negatives, get the table default.
func (t SeatTable) SeatCountFor(carriageID int) int {
	if n, ok := t.Seats[carriageID]; ok && n > 0 {
		return n
	}
	if t.Default > 0 {
		return t.Default
	}
	return DefaultSeats
}

// IsReversedNumbering reports whether the carriage counts seats from its
// front end backwards.
func (t SeatTable) IsReversedNumbering(carriageID int) bool {
	return t.Reversed[carriageID]
}

// Carriages lists the explicitly configured carriage ids in ascending order.
func (t SeatTable) Carriages() []int {
	ids := make([]int, 0, len(t.Seats))
	for id := range t.Seats {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func toSet(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

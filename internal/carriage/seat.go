// Package carriage computes the 2+2 seat grid of a train carriage and the
// position of a selected seat inside it.
//
// Seats are grouped in sections of four.  Section i holds seats 4i+1 to
// 4i+4: the bottom window seat is 4i+1, top window 4i+2, bottom aisle 4i+3
// and top aisle 4i+4.  The last section is clipped when the seat count is
// not a multiple of four.
//
// Everything here is a pure function of its inputs.  Bad input never
// produces an error: unknown carriages use the table default and a seat of
// zero means that no seat is selected.
package carriage

import (
	"strconv"
	"strings"
)

// SeatKind tells a window seat from an aisle seat.
type SeatKind string

const (
	Window SeatKind = "WINDOW"
	Aisle  SeatKind = "AISLE"
)

// SlotKind is the position of a seat inside its section.
type SlotKind string

const (
	TopWindow    SlotKind = "TOP_WINDOW"
	TopAisle     SlotKind = "TOP_AISLE"
	BottomAisle  SlotKind = "BOTTOM_AISLE"
	BottomWindow SlotKind = "BOTTOM_WINDOW"
)

// SeatsPerSection is the size of one facing group of seats.
const SeatsPerSection = 4

// ClassifySeat returns Window when seat mod 4 is 1 or 2 and Aisle otherwise.
func ClassifySeat(seat int) SeatKind {
	switch seat % SeatsPerSection {
	case 1, 2:
		return Window
	default:
		return Aisle
	}
}

// LocateSeat returns the slot of the seat inside its section.
func LocateSeat(seat int) SlotKind {
	switch seat % SeatsPerSection {
	case 1:
		return BottomWindow
	case 2:
		return TopWindow
	case 3:
		return BottomAisle
	default:
		return TopAisle
	}
}

// SectionIndex returns the zero-based section holding the seat, or -1 when
// no seat is selected.
func SectionIndex(seat int) int {
	if seat <= 0 {
		return -1
	}
	return (seat - 1) / SeatsPerSection
}

// SeatAt is the inverse of SectionIndex and LocateSeat.
func SeatAt(section int, slot SlotKind) int {
	base := section * SeatsPerSection
	switch slot {
	case BottomWindow:
		return base + 1
	case TopWindow:
		return base + 2
	case BottomAisle:
		return base + 3
	default:
		return base + 4
	}
}

// IsCloserToFront compares the seat against the middle of the carriage.
// Reversed carriages flip the comparison.  A seat of zero is never closer
// to the front.
func IsCloserToFront(seat, seatCount int, reversed bool) bool {
	if seat <= 0 {
		return false
	}
	half := float64(seatCount) / 2
	if reversed {
		return float64(seat) < half
	}
	return float64(seat) > half
}

// ParseSeatNumber reads a seat number typed into a form.  Anything that is
// not a positive integer yields 0.
func ParseSeatNumber(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

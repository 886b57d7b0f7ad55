package carriage

// Section is one group of four seats.  A nil field is a seat that does not
// exist, which only happens in the last section of a carriage whose seat
// count is not a multiple of four.
type Section struct {
	TopWindow    *int `json:"top_window"`
	TopAisle     *int `json:"top_aisle"`
	BottomAisle  *int `json:"bottom_aisle"`
	BottomWindow *int `json:"bottom_window"`
}

// Seat returns the seat number in the given slot, or 0 when it is absent.
func (s Section) Seat(slot SlotKind) int {
	var p *int
	switch slot {
	case TopWindow:
		p = s.TopWindow
	case TopAisle:
		p = s.TopAisle
	case BottomAisle:
		p = s.BottomAisle
	case BottomWindow:
		p = s.BottomWindow
	}
	if p == nil {
		return 0
	}
	return *p
}

// Selection describes where the selected seat sits.
type Selection struct {
	Seat    int      `json:"seat"`
	Kind    SeatKind `json:"kind"`
	Slot    SlotKind `json:"slot"`
	Section int      `json:"section"`
}

// Layout is the full description of a carriage with an optional selected
// seat.  Selected is nil when no seat was chosen or the seat number is
// outside the carriage.
type Layout struct {
	Carriage      int        `json:"carriage"`
	Table         string     `json:"table"`
	SeatCount     int        `json:"seat_count"`
	Sections      []Section  `json:"sections"`
	Reversed      bool       `json:"reversed"`
	CloserToFront bool       `json:"closer_to_front"`
	Selected      *Selection `json:"selected,omitempty"`
}

// PartitionSeats splits seatCount seats into ceil(seatCount/4) sections.
func PartitionSeats(seatCount int) []Section {
	if seatCount <= 0 {
		return []Section{}
	}
	total := (seatCount + SeatsPerSection - 1) / SeatsPerSection
	sections := make([]Section, 0, total)
	for i := 0; i < total; i++ {
		base := i * SeatsPerSection
		sections = append(sections, Section{
			TopWindow:    seatOrNil(base+2, seatCount),
			TopAisle:     seatOrNil(base+4, seatCount),
			BottomAisle:  seatOrNil(base+3, seatCount),
			BottomWindow: seatOrNil(base+1, seatCount),
		})
	}
	return sections
}

func seatOrNil(n, seatCount int) *int {
	if n > seatCount {
		return nil
	}
	return &n
}

// Describe computes the layout of a carriage using the given table.  A seat
// of zero means nothing is selected.
func (t SeatTable) Describe(carriageID, seat int) Layout {
	count := t.SeatCountFor(carriageID)
	reversed := t.IsReversedNumbering(carriageID)
	l := Layout{
		Carriage:      carriageID,
		Table:         t.Name,
		SeatCount:     count,
		Sections:      PartitionSeats(count),
		Reversed:      reversed,
		CloserToFront: IsCloserToFront(seat, count, reversed),
	}
	if seat >= 1 && seat <= count {
		l.Selected = &Selection{
			Seat:    seat,
			Kind:    ClassifySeat(seat),
			Slot:    LocateSeat(seat),
			Section: SectionIndex(seat),
		}
	}
	return l
}

// Row is one horizontal line of the drawn carriage.
type Row struct {
	Slot  SlotKind `json:"slot"`
	Seats []int    `json:"seats"`
}

// rowOrder is the top-to-bottom drawing order.
var rowOrder = []SlotKind{TopWindow, TopAisle, BottomAisle, BottomWindow}

// Rows flattens the sections into the four drawn rows.  Absent seats are
// skipped, so the last column of a clipped carriage is shorter.
func (l Layout) Rows() []Row {
	rows := make([]Row, 0, len(rowOrder))
	for _, slot := range rowOrder {
		seats := make([]int, 0, len(l.Sections))
		for _, s := range l.Sections {
			if n := s.Seat(slot); n > 0 {
				seats = append(seats, n)
			}
		}
		rows = append(rows, Row{Slot: slot, Seats: seats})
	}
	return rows
}

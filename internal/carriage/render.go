package carriage

import (
	"fmt"
	"io"
	"strings"
)

var rowLabels = map[SlotKind]string{
	TopWindow:    "window",
	TopAisle:     "aisle ",
	BottomAisle:  "aisle ",
	BottomWindow: "window",
}

// Render writes the layout as a text grid.  The rear of the carriage is on
// the left, the front on the right and the selected seat is bracketed.
func Render(w io.Writer, l Layout) error {
	var b strings.Builder
	fmt.Fprintf(&b, "carriage %d | %d seats (2+2) | table %s\n", l.Carriage, l.SeatCount, l.Table)

	width := len(l.Sections) * 4
	fmt.Fprintf(&b, "%-8s%-*s%s\n", "", max(width-5, 5), "rear", "front")

	selected := 0
	if l.Selected != nil {
		selected = l.Selected.Seat
	}
	for _, row := range l.Rows() {
		if row.Slot == BottomAisle {
			b.WriteString("        " + strings.Repeat("-", width) + "\n")
		}
		b.WriteString(rowLabels[row.Slot] + "  ")
		for _, n := range row.Seats {
			if n == selected {
				fmt.Fprintf(&b, "[%2d]", n)
			} else {
				fmt.Fprintf(&b, " %2d ", n)
			}
		}
		b.WriteString("\n")
	}

	if l.Selected != nil {
		end := "rear"
		if l.CloserToFront {
			end = "front"
		}
		fmt.Fprintf(&b, "seat %d: %s, %s, closer to the %s\n",
			l.Selected.Seat, strings.ToLower(string(l.Selected.Kind)),
			strings.ToLower(strings.ReplaceAll(string(l.Selected.Slot), "_", " ")), end)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

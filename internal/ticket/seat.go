package ticket

import (
	"fmt"
	"strings"

	"github.com/iliyamo/train-ticket-qr/internal/carriage"
)

// ParseSeat splits "<carriage> <seat>" into its numbers.  ok is false when
// either part is missing or not a positive integer.
func ParseSeat(s string) (car, seat int, ok bool) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, 0, false
	}
	car = carriage.ParseSeatNumber(parts[0])
	seat = carriage.ParseSeatNumber(parts[1])
	if car == 0 || seat == 0 {
		return 0, 0, false
	}
	return car, seat, true
}

// FormatSeat renders the seat the way it is printed on the ticket, e.g.
// "1 車 05 號".  Strings that do not look like a seat are returned as typed.
func FormatSeat(s string) string {
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return ""
	case 2:
		num := parts[1]
		if len(num) < 2 {
			num = strings.Repeat("0", 2-len(num)) + num
		}
		return fmt.Sprintf("%s 車 %s 號", parts[0], num)
	default:
		return strings.TrimSpace(s)
	}
}

// FormattedSeat is FormatSeat applied to the ticket's seat.
func (t Ticket) FormattedSeat() string {
	return FormatSeat(t.Seat)
}

// Layout describes the ticket's carriage with its seat selected.  ok is
// false when the seat field cannot be parsed.
func (t Ticket) Layout(table carriage.SeatTable) (carriage.Layout, bool) {
	car, seat, ok := ParseSeat(t.Seat)
	if !ok {
		return carriage.Layout{}, false
	}
	return table.Describe(car, seat), true
}

// TrainType is one option of the train type selector.
type TrainType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TrainTypes lists the selectable train types in display order.
var TrainTypes = []TrainType{
	{Value: "自強3000", Label: "自強3000"},
	{Value: "區間", Label: "區間車"},
	{Value: "區間快", Label: "區間快"},
	{Value: "莒光", Label: "莒光號"},
	{Value: "自強", Label: "舊自強號"},
	{Value: "普悠瑪", Label: "普悠瑪"},
	{Value: "太魯閣", Label: "太魯閣"},
	{Value: "復興", Label: "復興號"},
}

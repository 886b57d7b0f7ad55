package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/iliyamo/train-ticket-qr/internal/carriage"
)

// hclSeatTable is the top-level structure of a seat table file:
//
//	name          = "second-revision"
//	default_seats = 40
//	reversed      = [9, 10, 11, 12]
//
//	carriage "52" {
//	  ids = [2, 4, 5, 8, 9, 10, 11]
//	}
type hclSeatTable struct {
	Name         string             `hcl:"name,optional"`
	DefaultSeats int                `hcl:"default_seats,optional"`
	Reversed     []int              `hcl:"reversed,optional"`
	Carriages    []hclCarriageBlock `hcl:"carriage,block"`
}

// hclCarriageBlock groups the carriages sharing one seat count.  The label
// is the seat count.
type hclCarriageBlock struct {
	Seats string `hcl:"seats,label"`
	IDs   []int  `hcl:"ids"`
}

// LoadSeatTable reads an HCL seat table file.  The file replaces the
// built-in table as a whole: carriages it does not list get default_seats
// (40 when omitted) and only the listed carriages are reversed.
func LoadSeatTable(path string) (carriage.SeatTable, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return carriage.SeatTable{}, fmt.Errorf("failed to read seat table: %w", err)
	}
	return ParseSeatTable(src, path)
}

// ParseSeatTable decodes seat table source.  filename names the table when
// the file sets no name and appears in error messages.
func ParseSeatTable(src []byte, filename string) (carriage.SeatTable, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return carriage.SeatTable{}, fmt.Errorf("failed to parse seat table %s: %w", filename, diags)
	}
	var parsed hclSeatTable
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return carriage.SeatTable{}, fmt.Errorf("failed to decode seat table %s: %w", filename, diags)
	}
	return parsed.toTable(filename)
}

func (p hclSeatTable) toTable(source string) (carriage.SeatTable, error) {
	t := carriage.SeatTable{
		Name:     p.Name,
		Seats:    map[int]int{},
		Default:  p.DefaultSeats,
		Reversed: map[int]bool{},
	}
	if t.Name == "" {
		t.Name = source
	}
	if t.Default < 0 {
		return carriage.SeatTable{}, fmt.Errorf("seat table %s: default_seats must be positive", source)
	}
	if t.Default == 0 {
		t.Default = carriage.DefaultSeats
	}
	for _, blk := range p.Carriages {
		seats, err := strconv.Atoi(blk.Seats)
		if err != nil || seats <= 0 {
			return carriage.SeatTable{}, fmt.Errorf("seat table %s: carriage label %q is not a positive seat count", source, blk.Seats)
		}
		for _, id := range blk.IDs {
			if id <= 0 {
				return carriage.SeatTable{}, fmt.Errorf("seat table %s: carriage id %d must be positive", source, id)
			}
			if prev, dup := t.Seats[id]; dup {
				return carriage.SeatTable{}, fmt.Errorf("seat table %s: carriage %d listed with %d and %d seats", source, id, prev, seats)
			}
			t.Seats[id] = seats
		}
	}
	for _, id := range p.Reversed {
		t.Reversed[id] = true
	}
	return t, nil
}

// Command carriage prints the seat grid of one carriage with a seat marked.
//
//	carriage -car 9 -seat 52 [-table carriages.hcl]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iliyamo/train-ticket-qr/internal/carriage"
	"github.com/iliyamo/train-ticket-qr/internal/config"
)

func main() {
	car := flag.Int("car", 1, "carriage number")
	seat := flag.Int("seat", 0, "seat number to mark (0 for none)")
	tablePath := flag.String("table", "", "HCL seat table replacing the built-in one")
	first := flag.Bool("first-revision", false, "use the first revision seat table")
	flag.Parse()

	table := carriage.SecondRevisionTable()
	switch {
	case *tablePath != "":
		t, err := config.LoadSeatTable(*tablePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		table = t
	case *first:
		table = carriage.FirstRevisionTable()
	}

	if *car <= 0 {
		fmt.Fprintln(os.Stderr, "carriage must be positive")
		os.Exit(2)
	}
	if err := carriage.Render(os.Stdout, table.Describe(*car, *seat)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package ticket holds the trip details printed on a train ticket and the
// helpers that move them between form fields, URL query parameters and the
// display page.
package ticket

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors returned by Validate and the calendar helpers.  Handlers
// map them to 400 responses.
var (
	ErrMissingToken       = errors.New("token is required")
	ErrInvalidSeat        = errors.New("seat must look like \"<carriage> <seat>\"")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime        = errors.New("time must be HH:MM")
	ErrIncompleteSchedule = errors.New("date, departure and arrival are required")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Ticket is a single journey.  Every field is kept as the user typed it;
// Seat is "<carriage> <seat>", e.g. "1 05".
type Ticket struct {
	Date      string `json:"date"`
	Number    string `json:"nbr"`
	Type      string `json:"type"`
	From      string `json:"from"`
	To        string `json:"to"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
	Seat      string `json:"seat"`
	Token     string `json:"token"`
}

// queryKeys fixes the order of the query string so links stay stable.
var queryKeys = []string{"date", "nbr", "type", "from", "to", "departure", "arrival", "seat"}

func (t Ticket) field(key string) string {
	switch key {
	case "date":
		return t.Date
	case "nbr":
		return t.Number
	case "type":
		return t.Type
	case "from":
		return t.From
	case "to":
		return t.To
	case "departure":
		return t.Departure
	case "arrival":
		return t.Arrival
	case "seat":
		return t.Seat
	case "token":
		return t.Token
	}
	return ""
}

// FromQuery reads a ticket from query parameters.  Missing keys become
// empty strings.
func FromQuery(q url.Values) Ticket {
	return Ticket{
		Date:      q.Get("date"),
		Number:    q.Get("nbr"),
		Type:      q.Get("type"),
		From:      q.Get("from"),
		To:        q.Get("to"),
		Departure: q.Get("departure"),
		Arrival:   q.Get("arrival"),
		Seat:      q.Get("seat"),
		Token:     q.Get("token"),
	}
}

// Query encodes every field except the token, which travels in the path of
// the display page.
func (t Ticket) Query() string {
	return encode(t, queryKeys)
}

// EditQuery encodes every field including the token so the form can be
// reopened in editing mode.
func (t Ticket) EditQuery() string {
	return encode(t, append(append([]string{}, queryKeys...), "token"))
}

func encode(t Ticket, keys []string) string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(t.field(k)))
	}
	return b.String()
}

// Paths of the display and form endpoints.  DisplayPath and EditPath must
// stay in step with the routes registered under /v1.
const (
	displayPrefix = "/v1/tickets/"
	formPath      = "/v1/ticket-form"
)

// DisplayPath is where a submitted form navigates to.
func (t Ticket) DisplayPath() string {
	return displayPrefix + url.PathEscape(t.Token) + "?" + t.Query()
}

// EditPath reopens the form with every field filled in.
func (t Ticket) EditPath() string {
	return formPath + "?" + t.EditQuery()
}

// Normalize trims surrounding whitespace from every field.
func (t Ticket) Normalize() Ticket {
	return Ticket{
		Date:      strings.TrimSpace(t.Date),
		Number:    strings.TrimSpace(t.Number),
		Type:      strings.TrimSpace(t.Type),
		From:      strings.TrimSpace(t.From),
		To:        strings.TrimSpace(t.To),
		Departure: strings.TrimSpace(t.Departure),
		Arrival:   strings.TrimSpace(t.Arrival),
		Seat:      strings.Join(strings.Fields(t.Seat), " "),
		Token:     strings.TrimSpace(t.Token),
	}
}

// Validate checks what a submitted form must satisfy.  Optional fields are
// only checked when present.
func (t Ticket) Validate() error {
	if t.Token == "" {
		return ErrMissingToken
	}
	if t.Date != "" {
		if _, err := time.Parse(dateLayout, t.Date); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, t.Date)
		}
	}
	for _, v := range []string{t.Departure, t.Arrival} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(timeLayout, v); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTime, v)
		}
	}
	if t.Seat != "" {
		if _, _, ok := ParseSeat(t.Seat); !ok {
			return fmt.Errorf("%w: %q", ErrInvalidSeat, t.Seat)
		}
	}
	return nil
}

// FormattedDate shows the date with slashes, as printed on the ticket.
func (t Ticket) FormattedDate() string {
	return strings.ReplaceAll(t.Date, "-", "/")
}

// TruncatedToken shortens long scanned tokens for display.
func (t Ticket) TruncatedToken(limit int) string {
	r := []rune(t.Token)
	if limit <= 0 || len(r) <= limit {
		return t.Token
	}
	return string(r[:limit]) + "..."
}

// Package queue defines the ticket.saved event and the consumer that
// records it.
package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/train-ticket-qr/internal/ticket"
)

// TicketQueueName is the durable queue both the publisher and the consumer declare.
const TicketQueueName = "ticket.saved"

// TicketSavedEvent is published each time the ticket form is submitted.  It
// carries the whole ticket so consumers never need to call back.
type TicketSavedEvent struct {
	EventID   string `json:"event_id"`
	Token     string `json:"token"`
	Date      string `json:"date"`
	Number    string `json:"nbr"`
	Type      string `json:"type"`
	From      string `json:"from"`
	To        string `json:"to"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
	Seat      string `json:"seat"`
	SavedAt   string `json:"saved_at"`
}

// NewTicketSavedEvent copies t into an event stamped with savedAt in UTC.
// EventID is left for the publisher to fill.
func NewTicketSavedEvent(t ticket.Ticket, savedAt time.Time) TicketSavedEvent {
	return TicketSavedEvent{
		Token:     t.Token,
		Date:      t.Date,
		Number:    t.Number,
		Type:      t.Type,
		From:      t.From,
		To:        t.To,
		Departure: t.Departure,
		Arrival:   t.Arrival,
		Seat:      t.Seat,
		SavedAt:   savedAt.UTC().Format(time.RFC3339),
	}
}

// LogLine renders the event as one line of logs/ticket.log.
func (ev TicketSavedEvent) LogLine() string {
	return fmt.Sprintf("[%s] Ticket saved | event_id=%s | token=%q | date=%s | train=%q %q | route=%q->%q | departure=%s | arrival=%s | seat=%q\n",
		ev.SavedAt, ev.EventID, ev.Token, ev.Date, ev.Type, ev.Number, ev.From, ev.To, ev.Departure, ev.Arrival, ev.Seat)
}

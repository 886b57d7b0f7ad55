package ticket

import (
	"fmt"
	"net/url"
	"time"
)

const calendarBase = "https://www.google.com/calendar/render"

// calendarStamp is the compact UTC form Google Calendar expects.
const calendarStamp = "20060102T150405Z"

// ReminderStart moves the departure back by 10 to 14 minutes so the event
// starts on a multiple of five minutes.
func ReminderStart(departure time.Time) time.Time {
	minute := departure.Minute()
	back := 10
	for ; back < 15; back++ {
		if (minute-back)%5 == 0 {
			break
		}
	}
	start := departure.Add(-time.Duration(back) * time.Minute)
	return start.Truncate(time.Minute)
}

// Schedule resolves departure and arrival to absolute times in loc.  An
// arrival earlier than the departure is taken to be on the next day.
func (t Ticket) Schedule(loc *time.Location) (dep, arr time.Time, err error) {
	if t.Date == "" || t.Departure == "" || t.Arrival == "" {
		return time.Time{}, time.Time{}, ErrIncompleteSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	dep, err = time.ParseInLocation(dateLayout+" "+timeLayout, t.Date+" "+t.Departure, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	arr, err = time.ParseInLocation(dateLayout+" "+timeLayout, t.Date+" "+t.Arrival, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	if arr.Before(dep) {
		arr = arr.AddDate(0, 0, 1)
	}
	return dep, arr, nil
}

// CalendarURL builds a Google Calendar "add event" link for the trip.
// pageURL is appended to the event details so the ticket can be reopened
// from the calendar entry.
func (t Ticket) CalendarURL(loc *time.Location, pageURL string) (string, error) {
	dep, arr, err := t.Schedule(loc)
	if err != nil {
		return "", err
	}
	start := ReminderStart(dep)

	v := url.Values{}
	v.Set("action", "TEMPLATE")
	v.Set("text", fmt.Sprintf("🚃 %s %s %s→%s", t.Type, t.Number, t.From, t.To))
	v.Set("details", fmt.Sprintf("座位： %s\n開車時間： %s\n抵達時間： %s\n\n🎟️ %s",
		t.FormattedSeat(), t.Departure, t.Arrival, pageURL))
	v.Set("dates", start.UTC().Format(calendarStamp)+"/"+arr.UTC().Format(calendarStamp))
	return calendarBase + "?" + v.Encode(), nil
}

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-ticket-qr/internal/carriage"
	"github.com/iliyamo/train-ticket-qr/internal/config"
	"github.com/iliyamo/train-ticket-qr/internal/handler"
	"github.com/iliyamo/train-ticket-qr/internal/qr"
	"github.com/iliyamo/train-ticket-qr/internal/queue"
	"github.com/iliyamo/train-ticket-qr/internal/router"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.TicketSavedEvent
	err    error
}

func (f *fakePublisher) PublishTicketSaved(_ context.Context, ev queue.TicketSavedEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.events = append(f.events, ev)
	return "evt-1", nil
}

func newServer(t *testing.T, pub *fakePublisher) *echo.Echo {
	t.Helper()
	cfg := config.Config{
		PublicBaseURL: "https://tickets.example",
		TimeZone:      time.FixedZone("UTC+8", 8*3600),
		ShareSecret:   "test-secret",
		ShareTTL:      time.Hour,
	}
	table := carriage.SecondRevisionTable()
	th := handler.NewTicketHandler(cfg, table, pub)
	th.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Deps{
		Carriages:   handler.NewCarriageHandler(table),
		Tickets:     th,
		ShareSecret: cfg.ShareSecret,
	})
	return e
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

const ticketQuery = "date=2025-03-14&nbr=123&type=%E8%87%AA%E5%BC%B7&from=%E5%8F%B0%E5%8C%97&to=%E5%8F%B0%E4%B8%AD&departure=08%3A05&arrival=10%3A15&seat=9+52"

func TestHealth(t *testing.T) {
	rec := do(newServer(t, &fakePublisher{}), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLayoutJSON(t *testing.T) {
	rec := do(newServer(t, &fakePublisher{}), httptest.NewRequest(http.MethodGet, "/v1/carriages/9/layout?seat=52", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var l carriage.Layout
	decode(t, rec, &l)
	assert.Equal(t, 9, l.Carriage)
	assert.Equal(t, 52, l.SeatCount)
	assert.Len(t, l.Sections, 13)
	assert.True(t, l.Reversed)
	assert.False(t, l.CloserToFront)
	require.NotNil(t, l.Selected)
	assert.Equal(t, carriage.TopAisle, l.Selected.Slot)
	assert.Equal(t, carriage.Aisle, l.Selected.Kind)
}

func TestLayoutText(t *testing.T) {
	rec := do(newServer(t, &fakePublisher{}), httptest.NewRequest(http.MethodGet, "/v1/carriages/7/layout?seat=6&format=text", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[ 6]")
}

func TestLayoutBadID(t *testing.T) {
	rec := do(newServer(t, &fakePublisher{}), httptest.NewRequest(http.MethodGet, "/v1/carriages/abc/layout", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCarriages(t *testing.T) {
	rec := do(newServer(t, &fakePublisher{}), httptest.NewRequest(http.MethodGet, "/v1/carriages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		DefaultSeats int                       `json:"default_seats"`
		Items        []handler.CarriageSummary `json:"items"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 40, body.DefaultSeats)
	require.Len(t, body.Items, 12)
	assert.Equal(t, handler.CarriageSummary{ID: 7, Seats: 28}, body.Items[6])
}

func TestFormEditing(t *testing.T) {
	e := newServer(t, &fakePublisher{})

	var st handler.FormState
	rec := do(e, httptest.NewRequest(http.MethodGet, "/v1/ticket-form?"+ticketQuery, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &st)
	assert.False(t, st.Editing)
	assert.Len(t, st.TrainTypes, 8)
	assert.Equal(t, "9 52", st.Ticket.Seat)

	long := strings.Repeat("x", 30)
	rec = do(e, httptest.NewRequest(http.MethodGet, "/v1/ticket-form?token="+long, nil))
	decode(t, rec, &st)
	assert.True(t, st.Editing)
	assert.Equal(t, strings.Repeat("x", 24)+"...", st.TokenDisplay)
}

func TestSubmitTicketJSON(t *testing.T) {
	pub := &fakePublisher{}
	e := newServer(t, pub)
	body := `{"date":"2025-03-14","nbr":"123","type":"自強","from":"台北","to":"台中","departure":"08:05","arrival":"10:15","seat":" 9  52 ","token":"abc"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := do(e, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]string
	decode(t, rec, &out)
	assert.Equal(t, "/v1/tickets/abc?"+ticketQuery, out["location"])
	assert.Equal(t, "evt-1", out["event_id"])

	require.Len(t, pub.events, 1)
	assert.Equal(t, "abc", pub.events[0].Token)
	assert.Equal(t, "9 52", pub.events[0].Seat)
	assert.Equal(t, "2025-03-01T12:00:00Z", pub.events[0].SavedAt)
}

func TestSubmitTicketForm(t *testing.T) {
	e := newServer(t, &fakePublisher{})
	form := url.Values{"token": {"t-1"}, "seat": {"3 7"}}
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	rec := do(e, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "/v1/tickets/t-1?")
}

func TestSubmitTicketValidation(t *testing.T) {
	e := newServer(t, &fakePublisher{})
	for name, body := range map[string]string{
		"no token": `{"seat":"1 5"}`,
		"bad seat": `{"token":"a","seat":"five"}`,
		"bad date": `{"token":"a","date":"14/03/2025"}`,
		"bad time": `{"token":"a","departure":"8h"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := do(e, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestSubmitTicketSurvivesBrokerOutage(t *testing.T) {
	e := newServer(t, &fakePublisher{err: errors.New("broker down")})
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(`{"token":"abc"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := do(e, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "event_id")
}

func TestGetTicketView(t *testing.T) {
	rec := do(newServer(t, &fakePublisher{}), httptest.NewRequest(http.MethodGet, "/v1/tickets/abc?"+ticketQuery, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var v handler.TicketView
	decode(t, rec, &v)
	assert.Equal(t, "abc", v.Ticket.Token)
	assert.Equal(t, "2025/03/14", v.FormattedDate)
	assert.Equal(t, "9 車 52 號", v.FormattedSeat)
	assert.Equal(t, "/v1/tickets/abc/qr.png?size=200", v.QRURL)
	assert.Equal(t, 200, v.QRSize)
	assert.True(t, strings.HasSuffix(v.QRToggleURL, "&qr=250"))
	assert.Equal(t, "/v1/ticket-form?"+ticketQuery+"&token=abc", v.EditURL)
	assert.Contains(t, v.CalendarURL, "dates=20250313T235500Z%2F20250314T021500Z")
	assert.True(t, strings.HasPrefix(v.ShareURL, "https://tickets.example/v1/share/"))
	require.NotNil(t, v.Layout)
	assert.Equal(t, 52, v.Layout.SeatCount)
}

func TestGetTicketWithoutSchedule(t *testing.T) {
	rec := do(newServer(t, &fakePublisher{}), httptest.NewRequest(http.MethodGet, "/v1/tickets/abc?seat=bogus&qr=250", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var v handler.TicketView
	decode(t, rec, &v)
	assert.Empty(t, v.CalendarURL)
	assert.Nil(t, v.Layout)
	assert.Equal(t, "bogus", v.FormattedSeat)
	assert.Equal(t, 250, v.QRSize)
}

func TestQRImageAndScan(t *testing.T) {
	e := newServer(t, &fakePublisher{})
	rec := do(e, httptest.NewRequest(http.MethodGet, "/v1/tickets/scan-me-42/qr.png?size=250", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	png := rec.Body.Bytes()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("seat", "4 10"))
	fw, err := mw.CreateFormFile("image", "ticket.png")
	require.NoError(t, err)
	_, err = fw.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/scan", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec = do(e, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var st handler.FormState
	decode(t, rec, &st)
	assert.True(t, st.Editing)
	assert.Equal(t, "scan-me-42", st.Ticket.Token)
	assert.Equal(t, "4 10", st.Ticket.Seat)
}

func TestScanRequiresImage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/scan", strings.NewReader(""))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := do(newServer(t, &fakePublisher{}), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScanImageWithoutCode(t *testing.T) {
	blank, err := qr.PNG("x", qr.SmallSize)
	require.NoError(t, err)
	// A PNG header with a truncated body is not a decodable image.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "broken.png")
	require.NoError(t, err)
	_, err = fw.Write(blank[:16])
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/scan", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := do(newServer(t, &fakePublisher{}), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShareRoundTrip(t *testing.T) {
	e := newServer(t, &fakePublisher{})
	req := httptest.NewRequest(http.MethodPost, "/v1/share", strings.NewReader(`{"token":"abc","seat":"1 5","from":"台北"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var link handler.ShareLink
	decode(t, rec, &link)
	require.NotNil(t, link.ExpiresAt)
	assert.Equal(t, "https://tickets.example/v1/share/"+link.Token, link.URL)

	rec = do(e, httptest.NewRequest(http.MethodGet, "/v1/share/"+link.Token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Location string `json:"location"`
		Ticket   struct {
			Seat string `json:"seat"`
			From string `json:"from"`
		} `json:"ticket"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "1 5", got.Ticket.Seat)
	assert.Equal(t, "台北", got.Ticket.From)
	assert.True(t, strings.HasPrefix(got.Location, "/v1/tickets/abc?"))

	rec = do(e, httptest.NewRequest(http.MethodGet, "/v1/share/not-a-token", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTicketViewLinksResolve(t *testing.T) {
	e := newServer(t, &fakePublisher{})
	rec := do(e, httptest.NewRequest(http.MethodGet, "/v1/tickets/abc?"+ticketQuery, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var v handler.TicketView
	decode(t, rec, &v)

	// The QR size toggle reaches the display endpoint with the other size.
	rec = do(e, httptest.NewRequest(http.MethodGet, v.QRToggleURL, nil))
	require.Equal(t, http.StatusOK, rec.Code, v.QRToggleURL)
	var toggled handler.TicketView
	decode(t, rec, &toggled)
	assert.Equal(t, 250, toggled.QRSize)
	assert.Equal(t, v.Ticket, toggled.Ticket)

	rec = do(e, httptest.NewRequest(http.MethodGet, v.QRURL, nil))
	assert.Equal(t, http.StatusOK, rec.Code, v.QRURL)

	// The edit link reopens the form in editing mode with every field.
	rec = do(e, httptest.NewRequest(http.MethodGet, v.EditURL, nil))
	require.Equal(t, http.StatusOK, rec.Code, v.EditURL)
	var st handler.FormState
	decode(t, rec, &st)
	assert.True(t, st.Editing)
	assert.Equal(t, v.Ticket, st.Ticket)

	// The calendar entry links back to this page.
	cal, err := url.Parse(v.CalendarURL)
	require.NoError(t, err)
	details := cal.Query().Get("details")
	back := details[strings.LastIndex(details, "https://tickets.example")+len("https://tickets.example"):]
	rec = do(e, httptest.NewRequest(http.MethodGet, back, nil))
	assert.Equal(t, http.StatusOK, rec.Code, back)

	// The share link opens and its location is the display page again.
	share := strings.TrimPrefix(v.ShareURL, "https://tickets.example")
	rec = do(e, httptest.NewRequest(http.MethodGet, share, nil))
	require.Equal(t, http.StatusOK, rec.Code, share)
	var shared struct {
		Location string `json:"location"`
	}
	decode(t, rec, &shared)
	rec = do(e, httptest.NewRequest(http.MethodGet, shared.Location, nil))
	assert.Equal(t, http.StatusOK, rec.Code, shared.Location)
}

func TestSubmitLocationResolves(t *testing.T) {
	e := newServer(t, &fakePublisher{})
	req := httptest.NewRequest(http.MethodPost, "/v1/tickets", strings.NewReader(`{"token":"a b","seat":"1 5"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := do(e, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out map[string]string
	decode(t, rec, &out)

	rec = do(e, httptest.NewRequest(http.MethodGet, out["location"], nil))
	require.Equal(t, http.StatusOK, rec.Code, out["location"])
	var v handler.TicketView
	decode(t, rec, &v)
	assert.Equal(t, "a b", v.Ticket.Token)
	assert.Equal(t, "1 5", v.Ticket.Seat)
}

// Package handler exposes the HTTP handlers of the ticket service.  This
// file covers the ticket form, its submission, the display page model, the
// QR image and QR scanning.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-qr/internal/carriage"
	"github.com/iliyamo/train-ticket-qr/internal/config"
	"github.com/iliyamo/train-ticket-qr/internal/qr"
	"github.com/iliyamo/train-ticket-qr/internal/queue"
	"github.com/iliyamo/train-ticket-qr/internal/service"
	"github.com/iliyamo/train-ticket-qr/internal/ticket"
)

// tokenDisplayLimit is how many characters of a scanned token the form shows.
const tokenDisplayLimit = 24

// maxScanBytes caps uploaded QR images.
const maxScanBytes = 8 << 20

// TicketHandler holds what the ticket endpoints need.  Nothing is stored:
// the ticket travels in the URL.
type TicketHandler struct {
	Table       carriage.SeatTable      // seat table for the carriage layout
	Location    *time.Location          // zone the ticket's times are written in
	BaseURL     string                  // absolute origin for calendar and share links
	ShareSecret string                  // HMAC secret of share links
	ShareTTL    time.Duration           // lifetime of share links
	Publisher   service.TicketPublisher // receives ticket.saved events
	Now         func() time.Time        // clock, replaced in tests
}

// NewTicketHandler builds the handler from the runtime configuration.
func NewTicketHandler(cfg config.Config, table carriage.SeatTable, pub service.TicketPublisher) *TicketHandler {
	if pub == nil {
		panic("handler: nil ticket publisher")
	}
	loc := cfg.TimeZone
	if loc == nil {
		loc = time.UTC
	}
	return &TicketHandler{
		Table:       table,
		Location:    loc,
		BaseURL:     strings.TrimRight(cfg.PublicBaseURL, "/"),
		ShareSecret: cfg.ShareSecret,
		ShareTTL:    cfg.ShareTTL,
		Publisher:   pub,
		Now:         time.Now,
	}
}

// FormState is what the ticket form renders: the prefilled fields, whether
// an existing ticket is being edited and the train type options.
type FormState struct {
	Ticket       ticket.Ticket      `json:"ticket"`
	Editing      bool               `json:"editing"`
	TokenDisplay string             `json:"token_display"`
	TrainTypes   []ticket.TrainType `json:"train_types"`
}

func newFormState(t ticket.Ticket) FormState {
	return FormState{
		Ticket:       t,
		Editing:      t.Token != "",
		TokenDisplay: t.TruncatedToken(tokenDisplayLimit),
		TrainTypes:   ticket.TrainTypes,
	}
}

// TicketView is the model of the display page.
type TicketView struct {
	Ticket        ticket.Ticket    `json:"ticket"`
	FormattedDate string           `json:"formatted_date"`
	FormattedSeat string           `json:"formatted_seat"`
	CalendarURL   string           `json:"calendar_url,omitempty"`
	QRURL         string           `json:"qr_url"`
	QRSize        int              `json:"qr_size"`
	QRToggleURL   string           `json:"qr_toggle_url"`
	EditURL       string           `json:"edit_url"`
	ShareURL      string           `json:"share_url,omitempty"`
	Layout        *carriage.Layout `json:"layout,omitempty"`
}

// ticketError maps validation sentinels to 400 and everything else to 500.
func ticketError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ticket.ErrMissingToken),
		errors.Is(err, ticket.ErrInvalidSeat),
		errors.Is(err, ticket.ErrInvalidDate),
		errors.Is(err, ticket.ErrInvalidTime),
		errors.Is(err, ticket.ErrIncompleteSchedule):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// GetForm returns the form state for the query parameters.  A token in the
// query puts the form in editing mode.
func (h *TicketHandler) GetForm(c echo.Context) error {
	t := ticket.FromQuery(c.QueryParams()).Normalize()
	return c.JSON(http.StatusOK, newFormState(t))
}

// bindTicket reads a ticket from a JSON body or from form fields.
func bindTicket(c echo.Context) (ticket.Ticket, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		var t ticket.Ticket
		if err := c.Bind(&t); err != nil {
			return ticket.Ticket{}, err
		}
		return t.Normalize(), nil
	}
	params, err := c.FormParams()
	if err != nil {
		return ticket.Ticket{}, err
	}
	return ticket.FromQuery(params).Normalize(), nil
}

// SubmitTicket validates the form, announces it on the queue and tells the
// client where the ticket is displayed.
func (h *TicketHandler) SubmitTicket(c echo.Context) error {
	t, err := bindTicket(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := t.Validate(); err != nil {
		return ticketError(c, err)
	}

	ev := queue.NewTicketSavedEvent(t, h.Now())
	eventID, err := h.Publisher.PublishTicketSaved(c.Request().Context(), ev)
	if err != nil {
		// The ticket lives in the URL, so a broker outage must not block it.
		slog.Warn("ticket event not published", "component", "ticket", "token", t.Token, "err", err)
	}
	resp := echo.Map{"location": t.DisplayPath()}
	if eventID != "" {
		resp["event_id"] = eventID
	}
	return c.JSON(http.StatusCreated, resp)
}

// pathToken returns the :token path parameter unescaped.
func pathToken(c echo.Context) string {
	raw := c.Param("token")
	if tok, err := url.PathUnescape(raw); err == nil {
		return tok
	}
	return raw
}

// GetTicket builds the display page model for /ticket/:token?<fields>.
// ?qr= picks the QR size, 200 or 250.
func (h *TicketHandler) GetTicket(c echo.Context) error {
	t := ticket.FromQuery(c.QueryParams())
	t.Token = pathToken(c)
	t = t.Normalize()
	if t.Token == "" {
		return ticketError(c, ticket.ErrMissingToken)
	}
	return c.JSON(http.StatusOK, h.view(t, qrSizeParam(c.QueryParam("qr"))))
}

func qrSizeParam(s string) int {
	n, _ := strconv.Atoi(s)
	return qr.SizeFor(n)
}

func (h *TicketHandler) view(t ticket.Ticket, size int) TicketView {
	esc := url.PathEscape(t.Token)
	v := TicketView{
		Ticket:        t,
		FormattedDate: t.FormattedDate(),
		FormattedSeat: t.FormattedSeat(),
		QRURL:         "/v1/tickets/" + esc + "/qr.png?size=" + strconv.Itoa(size),
		QRSize:        size,
		QRToggleURL:   t.DisplayPath() + "&qr=" + strconv.Itoa(qr.Toggle(size)),
		EditURL:       t.EditPath(),
	}
	if cal, err := t.CalendarURL(h.Location, h.BaseURL+t.DisplayPath()); err == nil {
		v.CalendarURL = cal
	}
	if share, err := h.shareURL(t); err == nil {
		v.ShareURL = share.URL
	} else {
		slog.Debug("share link not issued", "component", "ticket", "err", err)
	}
	if layout, ok := t.Layout(h.Table); ok {
		v.Layout = &layout
	}
	return v
}

// GetQR draws the token as a PNG QR code.
func (h *TicketHandler) GetQR(c echo.Context) error {
	token := strings.TrimSpace(pathToken(c))
	if token == "" {
		return ticketError(c, ticket.ErrMissingToken)
	}
	size := qrSizeParam(c.QueryParam("size"))
	png, err := qr.PNG(token, size)
	if err != nil {
		slog.Error("qr render failed", "component", "qr", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr render failed"})
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", png)
}

// Scan reads the token out of an uploaded QR image (multipart field
// "image") and returns the form in editing mode.  Other form fields sent
// alongside are kept.
func (h *TicketHandler) Scan(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxScanBytes)
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read image"})
	}
	defer f.Close()

	token, err := qr.Decode(f)
	if err != nil {
		if errors.Is(err, qr.ErrNoCode) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "no QR code found"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image"})
	}

	var t ticket.Ticket
	if params, err := c.FormParams(); err == nil {
		t = ticket.FromQuery(params)
	}
	t.Token = token
	return c.JSON(http.StatusOK, newFormState(t.Normalize()))
}

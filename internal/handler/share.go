package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-qr/internal/middleware"
	"github.com/iliyamo/train-ticket-qr/internal/ticket"
	"github.com/iliyamo/train-ticket-qr/internal/utils"
)

// ShareLink is the response of POST /v1/share.
type ShareLink struct {
	URL       string     `json:"url"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func (h *TicketHandler) shareURL(t ticket.Ticket) (ShareLink, error) {
	tok, err := utils.NewShareToken(h.ShareSecret, t, h.ShareTTL)
	if err != nil {
		return ShareLink{}, err
	}
	link := ShareLink{URL: h.BaseURL + "/v1/share/" + tok.Token, Token: tok.Token}
	if !tok.Exp.IsZero() {
		exp := tok.Exp
		link.ExpiresAt = &exp
	}
	return link, nil
}

// CreateShare signs the posted ticket into a link that reopens it.
func (h *TicketHandler) CreateShare(c echo.Context) error {
	t, err := bindTicket(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := t.Validate(); err != nil {
		return ticketError(c, err)
	}
	link, err := h.shareURL(t)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not sign share link"})
	}
	return c.JSON(http.StatusCreated, link)
}

// GetShare answers a verified share link with the ticket and its display
// location.  middleware.ShareLink has already checked the signature.
func (h *TicketHandler) GetShare(c echo.Context) error {
	t, ok := middleware.SharedTicket(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired share link"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket":   t,
		"location": t.DisplayPath(),
	})
}

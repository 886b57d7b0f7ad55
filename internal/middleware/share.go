package middleware // package middleware holds reusable Echo middleware

import (
	"net/http" // HTTP status codes for responses

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/train-ticket-qr/internal/ticket"
	"github.com/iliyamo/train-ticket-qr/internal/utils"
)

// SharedTicketKey is the context key under which ShareLink stores the ticket.
const SharedTicketKey = "shared_ticket"

// ShareLink verifies the signed share token found in the :token path
// parameter and injects the embedded ticket into the request context.  The
// secret must match the one used by utils.NewShareToken.
func ShareLink(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Param("token")
			if raw == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing share token"})
			}
			t, err := utils.ParseShareToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired share link"})
			}
			c.Set(SharedTicketKey, t) // handlers read it with SharedTicket
			return next(c)
		}
	}
}

// SharedTicket returns the ticket injected by ShareLink.
func SharedTicket(c echo.Context) (ticket.Ticket, bool) {
	t, ok := c.Get(SharedTicketKey).(ticket.Ticket)
	return t, ok
}

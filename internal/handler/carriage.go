package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-qr/internal/carriage"
)

// CarriageHandler serves seat layouts from one seat table.
type CarriageHandler struct {
	Table carriage.SeatTable
}

// NewCarriageHandler wraps the table that answers every layout request.
func NewCarriageHandler(table carriage.SeatTable) *CarriageHandler {
	return &CarriageHandler{Table: table}
}

// CarriageSummary is one entry of the carriage list.
type CarriageSummary struct {
	ID       int  `json:"id"`
	Seats    int  `json:"seats"`
	Reversed bool `json:"reversed"`
}

// ListCarriages returns every carriage the table names explicitly.  Others
// fall back to default_seats.
func (h *CarriageHandler) ListCarriages(c echo.Context) error {
	ids := h.Table.Carriages()
	out := make([]CarriageSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, CarriageSummary{ID: id, Seats: h.Table.SeatCountFor(id), Reversed: h.Table.IsReversedNumbering(id)})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"table":         h.Table.Name,
		"default_seats": h.Table.SeatCountFor(-1),
		"items":         out,
	})
}

// GetLayout describes carriage :id with the optional ?seat= selected.
// ?format=text returns the same layout drawn as a plain text grid.
func (h *CarriageHandler) GetLayout(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid carriage id"})
	}
	layout := h.Table.Describe(id, carriage.ParseSeatNumber(c.QueryParam("seat")))

	if strings.EqualFold(c.QueryParam("format"), "text") {
		var buf bytes.Buffer
		if err := carriage.Render(&buf, layout); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render failed"})
		}
		return c.String(http.StatusOK, buf.String())
	}
	return c.JSON(http.StatusOK, layout)
}

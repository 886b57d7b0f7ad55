package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-ticket-qr/internal/ticket"
)

func TestShareTokenRoundTrip(t *testing.T) {
	tk := ticket.Ticket{Date: "2025-03-14", Number: "408", Seat: "9 52", Token: "QR-DATA"}
	st, err := NewShareToken("s3cret", tk, time.Hour)
	require.NoError(t, err)
	assert.False(t, st.Exp.IsZero())

	got, err := ParseShareToken("s3cret", st.Token)
	require.NoError(t, err)
	assert.Equal(t, tk, got)
}

func TestShareTokenWithoutExpiry(t *testing.T) {
	st, err := NewShareToken("s3cret", ticket.Ticket{Token: "x"}, 0)
	require.NoError(t, err)
	assert.True(t, st.Exp.IsZero())
	_, err = ParseShareToken("s3cret", st.Token)
	assert.NoError(t, err)
}

func TestShareTokenRejectsWrongSecret(t *testing.T) {
	st, err := NewShareToken("s3cret", ticket.Ticket{Token: "x"}, time.Hour)
	require.NoError(t, err)
	_, err = ParseShareToken("other", st.Token)
	assert.True(t, errors.Is(err, ErrInvalidShareToken))
}

func TestShareTokenRejectsExpired(t *testing.T) {
	claims := shareClaims{
		Ticket: ticket.Ticket{Token: "x"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    shareIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseShareToken("s3cret", raw)
	assert.ErrorIs(t, err, ErrInvalidShareToken)
}

func TestShareTokenRejectsGarbage(t *testing.T) {
	_, err := ParseShareToken("s3cret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidShareToken)
}

func TestNewShareTokenNeedsSecret(t *testing.T) {
	_, err := NewShareToken("", ticket.Ticket{}, time.Hour)
	assert.Error(t, err)
}

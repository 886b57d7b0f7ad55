package utils // package utils provides helper functions for signing shareable ticket links

import (
	"errors" // sentinel errors for callers
	"fmt"    // error wrapping
	"time"   // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/train-ticket-qr/internal/ticket"
)

// ErrInvalidShareToken is returned for share tokens that are malformed,
// expired or signed with another secret.
var ErrInvalidShareToken = errors.New("invalid share token")

// shareIssuer is stored in the iss claim and checked on parse.
const shareIssuer = "train-ticket-qr"

// ShareToken is a signed, self-contained copy of a ticket.  Token holds the
// JWT string and Exp its expiry.
type ShareToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// shareClaims embeds the ticket next to the registered claims so the link
// carries everything needed to render the ticket again.
type shareClaims struct {
	Ticket ticket.Ticket `json:"ticket"`
	jwt.RegisteredClaims
}

// NewShareToken signs the ticket with HS256.  ttl is how long the link
// stays valid; zero or negative means it never expires.
func NewShareToken(secret string, t ticket.Ticket, ttl time.Duration) (ShareToken, error) {
	if secret == "" {
		return ShareToken{}, errors.New("share secret is empty")
	}
	now := time.Now().UTC()
	claims := shareClaims{
		Ticket: t,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   shareIssuer,
			Subject:  t.Token,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	// Create the token with the HS256 signing method and sign it.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return ShareToken{}, err
	}
	return ShareToken{Token: signed, Exp: exp}, nil
}

// ParseShareToken verifies the signature and expiry and returns the ticket.
func ParseShareToken(secret, raw string) (ticket.Ticket, error) {
	var claims shareClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// Reject anything that is not HMAC signed.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(shareIssuer))
	if err != nil || !tok.Valid {
		return ticket.Ticket{}, fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}
	return claims.Ticket, nil
}

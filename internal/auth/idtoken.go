package auth

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PublisherIDClaim is the identity token claim carrying the publisher id.
const PublisherIDClaim = "custom:publisherId"

var (
	// ErrInvalidTokenFormat is returned for tokens that are not three
	// dot-separated segments or whose payload is not a JSON object.
	ErrInvalidTokenFormat = errors.New("invalid ID token format")
	// ErrPublisherIDNotFound is returned when the payload lacks the publisher id claim.
	ErrPublisherIDNotFound = errors.New("publisher ID not found in token")
)

// tokenParser decodes segments only; signatures are never checked here.
var tokenParser = jwt.NewParser(jwt.WithPaddingAllowed())

// decodeClaims returns the payload claims of token without verifying it.
func decodeClaims(token string) (jwt.MapClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidTokenFormat
	}

	payload, err := tokenParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, ErrInvalidTokenFormat
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidTokenFormat
	}
	return claims, nil
}

// PublisherIDFromToken extracts the publisher id from an identity token.
func PublisherIDFromToken(token string) (string, error) {
	claims, err := decodeClaims(token)
	if err != nil {
		return "", err
	}

	publisherID, _ := claims[PublisherIDClaim].(string)
	if publisherID == "" {
		return "", ErrPublisherIDNotFound
	}
	return publisherID, nil
}

// ExpiresAt returns the token's exp claim, or the zero time when the token
// carries none.
func ExpiresAt(token string) (time.Time, error) {
	claims, err := decodeClaims(token)
	if err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, ErrInvalidTokenFormat
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

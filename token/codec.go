package token

import (
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-portal-session/internal/errors"
)

// segmentParser only decodes segments; it never verifies a signature.
var segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// Decode extracts the claims of an access token without verifying its signature.
// Integrity is checked by the backend verify call, not here.
//
// Errors wrap one of errors.ErrMalformedToken, errors.ErrInvalidEncoding or
// errors.ErrInvalidPayload.
func Decode(rawToken string) (*Claims, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "expected 3 segments, got %d", len(parts))
	}

	// the base64 decoder skips line breaks instead of rejecting them
	if strings.ContainsAny(parts[1], "\r\n") {
		return nil, errors.Wrapf(errors.ErrInvalidEncoding, "payload segment contains a line break")
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidEncoding, "payload segment: %v", err)
	}

	return parseClaims(payload)
}

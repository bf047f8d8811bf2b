package token

import (
	"bytes"
	"encoding/json"
	"strconv"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-portal-session/internal/errors"
)

// Profile is the employee profile embedded in portal access tokens.
// Wire keys follow the identity authority's upper-case naming.
type Profile struct {
	OrganizationID string `json:"ORG_ID"`
	EmployeeID     string `json:"EMP_ID"`
	FirstName      string `json:"EMP_FNAME"`
	LastName       string `json:"EMP_LNAME"`
	PositionID     string `json:"POS_ID"`
	RoleID         string `json:"ROLE_ID"`
	Email          string `json:"EMAIL,omitempty"`
	ImageID        string `json:"IMAGE_ID,omitempty"`
}

// DisplayName joins first and last name the way the portal shows it
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Claims are the decoded, unverified claims of an access token.
// A Claims value only ever comes out of a successful Decode.
type Claims struct {
	Profile Profile
	User    string // "usr" claim, optional
	jwtlib.RegisteredClaims
}

// wireClaims mirrors the payload segment before profile normalisation
type wireClaims struct {
	Profile json.RawMessage `json:"profile"`
	User    any             `json:"usr,omitempty"`
	jwtlib.RegisteredClaims
}

func parseClaims(payload []byte) (*Claims, error) {
	var wire wireClaims
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidPayload, "%v", err)
	}

	profile, err := parseProfile(wire.Profile)
	if err != nil {
		return nil, err
	}

	return &Claims{
		Profile:          profile,
		User:             stringValue(wire.User),
		RegisteredClaims: wire.RegisteredClaims,
	}, nil
}

// parseProfile accepts either an object or a single-element list of objects.
func parseProfile(raw json.RawMessage) (Profile, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Profile{}, errors.Wrapf(errors.ErrInvalidPayload, "profile claim missing")
	}

	var fields map[string]any
	switch raw[0] {
	case '{':
		if err := decodeUseNumber(raw, &fields); err != nil {
			return Profile{}, errors.Wrapf(errors.ErrInvalidPayload, "profile: %v", err)
		}
	case '[':
		var list []map[string]any
		if err := decodeUseNumber(raw, &list); err != nil {
			return Profile{}, errors.Wrapf(errors.ErrInvalidPayload, "profile: %v", err)
		}
		if len(list) != 1 || list[0] == nil {
			return Profile{}, errors.Wrapf(errors.ErrInvalidPayload, "profile list has %d elements", len(list))
		}
		fields = list[0]
	default:
		return Profile{}, errors.Wrapf(errors.ErrInvalidPayload, "profile is neither object nor list")
	}

	return Profile{
		OrganizationID: stringValue(fields["ORG_ID"]),
		EmployeeID:     stringValue(fields["EMP_ID"]),
		FirstName:      stringValue(fields["EMP_FNAME"]),
		LastName:       stringValue(fields["EMP_LNAME"]),
		PositionID:     stringValue(fields["POS_ID"]),
		RoleID:         stringValue(fields["ROLE_ID"]),
		Email:          stringValue(fields["EMAIL"]),
		ImageID:        stringValue(fields["IMAGE_ID"]),
	}, nil
}

func decodeUseNumber(raw []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(target)
}

// stringValue flattens scalar claim values; the authority emits ids as numbers or strings.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

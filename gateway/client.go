package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-portal-session/internal/errors"
	"github.com/jrsteele09/go-portal-session/internal/metrics"
	"github.com/jrsteele09/go-portal-session/internal/utils"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Backend routes
const (
	RouteVerifyToken      = "/auth/verifyToken"
	RouteRefreshToken     = "/auth/refreshToken"
	RouteLookupBySession  = "/auth/getTokenBySessionIdAndUserId"
	RoutePositionRoleBase = "/permissions/positions/"
)

// Operation labels used for logging and metrics
const (
	opVerify  = "verify"
	opRefresh = "refresh"
	opLookup  = "lookup"
	opRole    = "role"
)

// Client talks to the authentication backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.Metrics
}

var _ AuthGateway = (*Client)(nil)

type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every backend call
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a backend client. Calls time out after 10 seconds unless configured.
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range options {
		opt(c)
	}

	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Verify asks the backend whether an access token is still good.
// The token travels as a bearer credential.
func (c *Client) Verify(ctx context.Context, accessToken string) (status int, err error) {
	defer c.observe(opVerify, time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	bearer := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := c.newRequest(ctx, http.MethodPost, RouteVerifyToken, nil)
	if err != nil {
		return 0, err
	}

	resp, err := bearer.Do(req)
	if err != nil {
		return 0, transportError(opVerify, err)
	}
	drain(resp)

	return resp.StatusCode, nil
}

// Refresh rotates a refresh token into a new token pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	defer c.observe(opRefresh, time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode refresh request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, RouteRefreshToken, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(opRefresh, err)
	}

	raw, err := readBody(resp)
	if err != nil {
		return nil, transportError(opRefresh, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrRefreshRejected, "status %d", resp.StatusCode)
	}
	if !isJSONObject(raw) {
		return nil, errors.Wrapf(errors.ErrRefreshRejected, "response is not an object")
	}

	var out refreshResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrapf(errors.ErrRefreshRejected, "decode: %v", err)
	}

	accessToken, newRefreshToken := utils.Value(out.AccessToken), utils.Value(out.RefreshToken)
	if accessToken == "" || newRefreshToken == "" {
		return nil, errors.Wrapf(errors.ErrRefreshRejected, "response is missing tokens")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// LookupBySession fetches the authority's stored tokens for a session. A 404 or an empty
// answer means the authority no longer knows the session.
func (c *Client) LookupBySession(ctx context.Context, sessionID, userID string) (record *StoredTokenRecord, err error) {
	defer c.observe(opLookup, time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("sessionId", sessionID)
	query.Set("userId", userID)

	req, err := c.newRequest(ctx, http.MethodGet, RouteLookupBySession+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(opLookup, err)
	}

	raw, err := readBody(resp)
	if err != nil {
		return nil, transportError(opLookup, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	default:
		return nil, errors.Wrapf(errors.ErrTransportFailure, "%s: unexpected status %d", opLookup, resp.StatusCode)
	}

	if !isJSONObject(raw) {
		return nil, nil // null, false, "" and friends all mean "no record"
	}

	var out StoredTokenRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrapf(errors.ErrTransportFailure, "%s: decode: %v", opLookup, err)
	}
	if out.AccessToken == "" {
		return nil, nil
	}
	return &out, nil
}

// ResolveRole maps a position identifier to a portal role using the permissions endpoint
func (c *Client) ResolveRole(ctx context.Context, positionID string) (role string, err error) {
	defer c.observe(opRole, time.Now(), &err)

	if positionID == "" {
		return "", errors.Wrapf(errors.ErrRoleUnresolved, "empty position id")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, RoutePositionRoleBase+url.PathEscape(positionID), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(opRole, err)
	}

	raw, err := readBody(resp)
	if err != nil {
		return "", transportError(opRole, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrapf(errors.ErrRoleUnresolved, "position %s: status %d", positionID, resp.StatusCode)
	}

	var out roleResponse
	if err := json.Unmarshal(raw, &out); err != nil || utils.Value(out.Role) == "" {
		return "", errors.Wrapf(errors.ErrRoleUnresolved, "position %s: no role in response", positionID)
	}
	return *out.Role, nil
}

func (c *Client) observe(operation string, start time.Time, errp *error) {
	outcome := "ok"
	if *errp != nil {
		outcome = "error"
		log.Debug().Err(*errp).Str("operation", operation).Msg("gateway call failed")
	}
	c.metrics.ObserveGatewayCall(operation, outcome, time.Since(start))
}

func transportError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", errors.ErrTransportFailure, operation, err)
}

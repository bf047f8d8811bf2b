package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

// maxBodyBytes caps how much of a backend response is read
const maxBodyBytes = 1 << 20

// newRequest builds a backend request carrying a fresh X-Request-ID
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// readBody reads and closes the response body
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read response body")
	}
	return b, nil
}

// drain discards the body so the connection can be reused
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close()
}

func isJSONObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

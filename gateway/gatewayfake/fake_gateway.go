package gatewayfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-portal-session/gateway"
)

var _ gateway.AuthGateway = (*FakeGateway)(nil)

// FakeGateway is a scriptable AuthGateway that records every call.
type FakeGateway struct {
	lock sync.Mutex

	VerifyStatus int
	VerifyErr    error

	RefreshPair *gateway.TokenPair
	RefreshErr  error

	LookupRecord *gateway.StoredTokenRecord
	LookupErr    error

	// Block, when set, holds Verify until it is closed or ctx ends.
	Block chan struct{}

	VerifyCalls  []string
	RefreshCalls []string
	LookupCalls  [][2]string
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{VerifyStatus: 200}
}

func (g *FakeGateway) Verify(ctx context.Context, accessToken string) (int, error) {
	g.lock.Lock()
	g.VerifyCalls = append(g.VerifyCalls, accessToken)
	block := g.Block
	g.lock.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	g.lock.Lock()
	defer g.lock.Unlock()
	return g.VerifyStatus, g.VerifyErr
}

func (g *FakeGateway) Refresh(_ context.Context, refreshToken string) (*gateway.TokenPair, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.RefreshCalls = append(g.RefreshCalls, refreshToken)
	if g.RefreshErr != nil {
		return nil, g.RefreshErr
	}
	return g.RefreshPair, nil
}

func (g *FakeGateway) LookupBySession(_ context.Context, sessionID, userID string) (*gateway.StoredTokenRecord, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.LookupCalls = append(g.LookupCalls, [2]string{sessionID, userID})
	if g.LookupErr != nil {
		return nil, g.LookupErr
	}
	return g.LookupRecord, nil
}

// Calls returns how many times each operation ran
func (g *FakeGateway) Calls() (verify, refresh, lookup int) {
	g.lock.Lock()
	defer g.lock.Unlock()
	return len(g.VerifyCalls), len(g.RefreshCalls), len(g.LookupCalls)
}

package auth

import (
	"context"
	"sync"

	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/minecraft"
	"github.com/funcraft/mcauth/internals/minecraft/microsoft"
)

type fakeDevice struct {
	mu       sync.Mutex
	requests int
	polls    int

	session    *microsoft.DeviceCodeSession
	requestErr error
	tokens     *microsoft.TokenSet
	pollErr    error
	// block makes PollForToken wait for ctx like a user that never signs in
	block bool
}

func (f *fakeDevice) RequestDeviceCode(ctx context.Context, scopes []string) (*microsoft.DeviceCodeSession, error) {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return f.session, nil
}

func (f *fakeDevice) PollForToken(ctx context.Context, session *microsoft.DeviceCodeSession, onPending microsoft.PendingFunc) (*microsoft.TokenSet, error) {
	f.mu.Lock()
	f.polls++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, merrors.Wrap(merrors.Cancelled, ctx.Err())
	}
	if onPending != nil {
		onPending(1, session.Deadline().Sub(session.CreatedAt))
	}
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	return f.tokens, nil
}

func (f *fakeDevice) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests, f.polls
}

type fakeRefresher struct {
	got    string
	tokens *microsoft.TokenSet
	err    error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*microsoft.TokenSet, error) {
	f.got = refreshToken
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

type fakeFederator struct {
	mu      sync.Mutex
	calls   int
	got     string
	profile *minecraft.Profile
	token   *microsoft.MinecraftToken
	err     error
}

func (f *fakeFederator) Federate(ctx context.Context, msAccessToken string) (*minecraft.Profile, *microsoft.MinecraftToken, error) {
	f.mu.Lock()
	f.calls++
	f.got = msAccessToken
	f.mu.Unlock()
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.profile, f.token, nil
}

func (f *fakeFederator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/minecraft"
	"github.com/funcraft/mcauth/internals/minecraft/microsoft"
)

func newSession() *microsoft.DeviceCodeSession {
	return &microsoft.DeviceCodeSession{
		DeviceCode:      "device-123",
		UserCode:        "ABCD-EFGH",
		VerificationURI: "https://www.microsoft.com/link",
		ExpiresIn:       900,
		Interval:        5,
		CreatedAt:       time.Now(),
	}
}

func newFakes() (*fakeDevice, *fakeFederator) {
	device := &fakeDevice{
		session: newSession(),
		tokens: &microsoft.TokenSet{
			AccessToken:  "ms-access",
			RefreshToken: "ms-refresh",
			TokenType:    "Bearer",
			ExpiresIn:    3600,
		},
	}
	federator := &fakeFederator{
		profile: &minecraft.Profile{ID: "069a79f444e94726a5befca90e38aaf5", Name: "Notch"},
		token:   &microsoft.MinecraftToken{AccessToken: "mc-access", TokenType: "Bearer", ExpiresIn: 86400},
	}
	return device, federator
}

func TestSignInMicrosoft(t *testing.T) {
	device, federator := newFakes()
	var pending int
	o := New(Config{
		Device:    device,
		Federator: federator,
		OnPending: func(int, time.Duration) { pending++ },
	})

	var gotCode, gotURI string
	result, err := o.SignInMicrosoft(context.Background(), func(userCode, verificationURI string) {
		_, polls := device.counts()
		assert.Zero(t, polls, "code must be shown before polling")
		gotCode, gotURI = userCode, verificationURI
	})
	require.NoError(t, err)

	assert.Equal(t, "ABCD-EFGH", gotCode)
	assert.Equal(t, "https://www.microsoft.com/link", gotURI)
	assert.Equal(t, 1, pending)
	assert.Equal(t, "ms-access", federator.got)

	assert.Equal(t, minecraft.LoginMicrosoft, result.Kind)
	assert.Equal(t, "Notch", result.Username)
	assert.Equal(t, "069a79f444e94726a5befca90e38aaf5", result.UUID)
	assert.Equal(t, "mc-access", result.AccessToken)
	assert.Equal(t, "ms-refresh", result.RefreshToken)
	assert.True(t, result.Success)
	assert.True(t, result.IsPremium())
	assert.True(t, result.Valid())
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), result.ExpiresAt, time.Minute)
	require.NotNil(t, result.Profile)
	assert.Equal(t, "Notch", result.Profile.Name)
}

func TestSignInMicrosoftDashedProfileID(t *testing.T) {
	device, federator := newFakes()
	federator.profile.ID = "069a79f4-44e9-4726-a5be-fca90e38aaf5"

	result, err := New(Config{Device: device, Federator: federator}).SignInMicrosoft(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "069a79f444e94726a5befca90e38aaf5", result.UUID)
	assert.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", result.DashedUUID())
}

func TestSignInMicrosoftPropagatesStageErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*fakeDevice, *fakeFederator) error
		wantPolls int
		wantFeds  int
	}{
		{
			name: "device code request",
			setup: func(d *fakeDevice, f *fakeFederator) error {
				d.requestErr = &merrors.AuthError{Kind: merrors.DeviceCodeRequestFailed, Status: 400}
				return d.requestErr
			},
		},
		{
			name: "declined",
			setup: func(d *fakeDevice, f *fakeFederator) error {
				d.pollErr = &merrors.AuthError{Kind: merrors.AuthorizationDeclined, Code: "authorization_declined"}
				return d.pollErr
			},
			wantPolls: 1,
		},
		{
			name: "expired",
			setup: func(d *fakeDevice, f *fakeFederator) error {
				d.pollErr = merrors.New(merrors.DeviceCodeExpired, "budget elapsed")
				return d.pollErr
			},
			wantPolls: 1,
		},
		{
			name: "not linked",
			setup: func(d *fakeDevice, f *fakeFederator) error {
				f.err = &merrors.AuthError{Kind: merrors.XboxAccountNotLinked, Stage: "xsts", XErr: 2148916233}
				return f.err
			},
			wantPolls: 1,
			wantFeds:  1,
		},
		{
			name: "not owned",
			setup: func(d *fakeDevice, f *fakeFederator) error {
				f.err = &merrors.AuthError{Kind: merrors.GameNotOwned, Stage: "entitlements"}
				return f.err
			},
			wantPolls: 1,
			wantFeds:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, federator := newFakes()
			want := tt.setup(device, federator)
			shown := false

			result, err := New(Config{Device: device, Federator: federator}).
				SignInMicrosoft(context.Background(), func(string, string) { shown = true })

			assert.Nil(t, result)
			// surfaced unchanged
			assert.Same(t, want, err)
			_, polls := device.counts()
			assert.Equal(t, tt.wantPolls, polls)
			assert.Equal(t, tt.wantFeds, federator.count())
			assert.Equal(t, tt.wantPolls > 0, shown)
		})
	}
}

func TestSignInMicrosoftNormalizesForeignErrors(t *testing.T) {
	device, federator := newFakes()
	cause := errors.New("dial tcp: connection refused")
	federator.err = cause

	_, err := New(Config{Device: device, Federator: federator}).SignInMicrosoft(context.Background(), nil)
	require.ErrorIs(t, err, merrors.ErrTransport)
	assert.ErrorIs(t, err, cause)
}

func TestSignInMicrosoftRejectsBadProfile(t *testing.T) {
	device, federator := newFakes()
	federator.profile = &minecraft.Profile{ID: "not-a-uuid", Name: "Notch"}

	_, err := New(Config{Device: device, Federator: federator}).SignInMicrosoft(context.Background(), nil)
	assert.ErrorIs(t, err, merrors.ErrProfileFetchFailed)
}

func TestSignInMicrosoftNotConfigured(t *testing.T) {
	_, err := New(Config{}).SignInMicrosoft(context.Background(), nil)
	assert.Error(t, err)
}

func TestSignInWithRefreshToken(t *testing.T) {
	_, federator := newFakes()
	refresher := &fakeRefresher{tokens: &microsoft.TokenSet{AccessToken: "ms-access-2", RefreshToken: "ms-refresh-2"}}
	o := New(Config{Refresher: refresher, Federator: federator})

	result, err := o.SignInWithRefreshToken(context.Background(), "ms-refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "ms-refresh-1", refresher.got)
	assert.Equal(t, "ms-access-2", federator.got)
	assert.Equal(t, "ms-refresh-2", result.RefreshToken)
	assert.True(t, result.Valid())
}

func TestSignInWithRefreshTokenNotRotated(t *testing.T) {
	_, federator := newFakes()
	refresher := &fakeRefresher{tokens: &microsoft.TokenSet{AccessToken: "ms-access-2"}}

	result, err := New(Config{Refresher: refresher, Federator: federator}).
		SignInWithRefreshToken(context.Background(), "ms-refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "ms-refresh-1", result.RefreshToken)
}

func TestSignInWithRefreshTokenFailure(t *testing.T) {
	_, federator := newFakes()
	want := &merrors.AuthError{Kind: merrors.RefreshFailed, Status: 400, Code: "invalid_grant"}
	refresher := &fakeRefresher{err: want}

	_, err := New(Config{Refresher: refresher, Federator: federator}).
		SignInWithRefreshToken(context.Background(), "ms-refresh-1")
	assert.Same(t, want, err)
	assert.Zero(t, federator.count())

	_, err = New(Config{Federator: federator}).SignInWithRefreshToken(context.Background(), "x")
	assert.ErrorIs(t, err, merrors.ErrRefreshFailed)
}

func TestSignInOffline(t *testing.T) {
	o := New(Config{})

	result, err := o.SignInOffline("Steve")
	require.NoError(t, err)
	assert.Equal(t, minecraft.LoginOffline, result.Kind)
	assert.Equal(t, "5627dd98e6be3c21b8a8e92344183641", result.UUID)
	assert.Equal(t, minecraft.OfflineAccessToken, result.AccessToken)
	assert.False(t, result.IsPremium())

	_, err = o.SignInOffline("ab")
	assert.ErrorIs(t, err, merrors.ErrInvalidUsername)
}

// every successful result, whatever the flow, has a name and an id
func TestSuccessfulResultsAreComplete(t *testing.T) {
	device, federator := newFakes()
	o := New(Config{Device: device, Federator: federator})

	var results []*minecraft.AuthResult
	for _, name := range []string{"abc", "Steve", "sixteen_chars_ok", "Ünïcödé"} {
		result, err := o.SignInOffline(name)
		require.NoError(t, err, name)
		results = append(results, result)
	}
	result, err := o.SignInMicrosoft(context.Background(), nil)
	require.NoError(t, err)
	results = append(results, result)

	for _, r := range results {
		require.True(t, r.Success)
		assert.NotEmpty(t, r.Username)
		assert.NotEmpty(t, r.UUID)
		assert.True(t, r.Valid())
	}
}

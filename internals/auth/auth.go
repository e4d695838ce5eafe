// Package auth composes the device code flow, the Xbox Live federation and
// the offline generator into the two sign-in entry points a launcher needs.
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/minecraft"
	"github.com/funcraft/mcauth/internals/minecraft/microsoft"
	"github.com/funcraft/mcauth/internals/offline"
)

// DeviceAuthorizer obtains a Microsoft token through the device code grant
type DeviceAuthorizer interface {
	RequestDeviceCode(ctx context.Context, scopes []string) (*microsoft.DeviceCodeSession, error)
	PollForToken(ctx context.Context, session *microsoft.DeviceCodeSession, onPending microsoft.PendingFunc) (*microsoft.TokenSet, error)
}

// Refresher exchanges a refresh token for a new token set
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*microsoft.TokenSet, error)
}

// Federator turns a Microsoft access token into a verified Minecraft profile
type Federator interface {
	Federate(ctx context.Context, msAccessToken string) (*minecraft.Profile, *microsoft.MinecraftToken, error)
}

// OfflineGenerator creates offline identities
type OfflineGenerator interface {
	Generate(username string) (*minecraft.AuthResult, error)
}

// DeviceCodeFunc receives the code the user has to enter and where to enter it.
// It is called once per attempt, before polling starts, and must not block for long.
type DeviceCodeFunc func(userCode, verificationURI string)

// Config wires the collaborators of an Orchestrator
type Config struct {
	Device    DeviceAuthorizer
	Refresher Refresher
	Federator Federator
	Offline   OfflineGenerator
	// Scopes requested with the device code (nil uses the client default)
	Scopes []string
	// OnPending is called every time the user has not finished signing in yet
	OnPending microsoft.PendingFunc
	Logger    *slog.Logger
}

// Orchestrator runs complete sign-in attempts. It keeps no state between
// attempts, so concurrent attempts are independent.
type Orchestrator struct {
	device    DeviceAuthorizer
	refresher Refresher
	federator Federator
	offline   OfflineGenerator
	scopes    []string
	onPending microsoft.PendingFunc

	log *slog.Logger
	now func() time.Time
}

// New returns an Orchestrator. A missing Offline generator defaults to offline.New.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		device:    cfg.Device,
		refresher: cfg.Refresher,
		federator: cfg.Federator,
		offline:   cfg.Offline,
		scopes:    cfg.Scopes,
		onPending: cfg.OnPending,
		log:       logging.Category(cfg.Logger, "orchestrator"),
		now:       time.Now,
	}
	if o.offline == nil {
		o.offline = offline.New(cfg.Logger)
	}
	return o
}

// NewMicrosoft uses client for the device flow, refreshing and federation
func NewMicrosoft(client *microsoft.MicrosoftClient, logger *slog.Logger) *Orchestrator {
	return New(Config{
		Device:    client,
		Refresher: client,
		Federator: client,
		Offline:   offline.New(logger),
		Logger:    logger,
	})
}

// normalize makes sure every failure leaving this package is an *merrors.AuthError
func normalize(ctx context.Context, err error) error {
	if merrors.KindOf(err) != merrors.Unknown {
		return err
	}
	if ctx.Err() != nil {
		return &merrors.AuthError{Kind: merrors.Cancelled, Err: err}
	}
	return merrors.Wrap(merrors.Transport, err)
}

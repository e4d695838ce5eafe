package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/dchest/uniuri"

	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/minecraft"
	"github.com/funcraft/mcauth/internals/minecraft/microsoft"
)

// SignInMicrosoft runs the interactive flow: request a device code, hand it to
// onDeviceCode, wait for the user and federate the resulting token. The call
// blocks until the attempt finishes; use Start to run it in the background.
// Failures are returned as they come from the failing stage.
func (o *Orchestrator) SignInMicrosoft(ctx context.Context, onDeviceCode DeviceCodeFunc) (*minecraft.AuthResult, error) {
	return o.signInMicrosoft(ctx, newAttemptID(), onDeviceCode)
}

func (o *Orchestrator) signInMicrosoft(ctx context.Context, id string, onDeviceCode DeviceCodeFunc) (*minecraft.AuthResult, error) {
	log := o.log.With("attempt", id)
	if o.device == nil || o.federator == nil {
		return nil, merrors.New(merrors.Unknown, "microsoft sign-in is not configured")
	}

	log.Info("microsoft sign-in started")
	session, err := o.device.RequestDeviceCode(ctx, o.scopes)
	if err != nil {
		return nil, o.fail(ctx, log, err)
	}
	log.Info("device code issued",
		"verification_uri", session.VerificationURI,
		"expires_in", session.ExpiresIn,
		"interval", session.Interval,
	)
	if onDeviceCode != nil {
		onDeviceCode(session.UserCode, session.VerificationURI)
	}

	tokens, err := o.device.PollForToken(ctx, session, o.onPending)
	if err != nil {
		return nil, o.fail(ctx, log, err)
	}
	log.Info("microsoft token obtained")

	return o.federate(ctx, log, tokens)
}

// SignInWithRefreshToken skips the device code and starts from a stored
// refresh token. Nothing is retried; on failure the caller usually falls
// back to SignInMicrosoft.
func (o *Orchestrator) SignInWithRefreshToken(ctx context.Context, refreshToken string) (*minecraft.AuthResult, error) {
	log := o.log.With("attempt", newAttemptID())
	if o.refresher == nil || o.federator == nil {
		return nil, merrors.New(merrors.RefreshFailed, "refreshing is not configured")
	}

	log.Info("refresh sign-in started")
	tokens, err := o.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, o.fail(ctx, log, err)
	}
	if tokens.RefreshToken == "" {
		// not rotated, the old one stays valid
		tokens.RefreshToken = refreshToken
	}

	return o.federate(ctx, log, tokens)
}

func (o *Orchestrator) federate(ctx context.Context, log *slog.Logger, tokens *microsoft.TokenSet) (*minecraft.AuthResult, error) {
	profile, mcToken, err := o.federator.Federate(ctx, tokens.AccessToken)
	if err != nil {
		return nil, o.fail(ctx, log, err)
	}

	id, err := minecraft.UndashedUUID(profile.ID)
	if err != nil {
		authErr := &merrors.AuthError{Kind: merrors.ProfileFetchFailed, Description: "profile id is not a uuid", Err: err}
		return nil, o.fail(ctx, log, authErr)
	}

	result := &minecraft.AuthResult{
		Kind:         minecraft.LoginMicrosoft,
		Username:     profile.Name,
		UUID:         id,
		AccessToken:  mcToken.AccessToken,
		Success:      true,
		RefreshToken: tokens.RefreshToken,
		Profile:      profile,
	}
	if mcToken.ExpiresIn > 0 {
		result.ExpiresAt = o.now().Add(time.Duration(mcToken.ExpiresIn) * time.Second)
	}
	if !result.Valid() {
		return nil, o.fail(ctx, log, merrors.New(merrors.ProfileFetchFailed, "profile is missing id or name"))
	}

	log.Info("microsoft sign-in completed", "player", result.Username, "uuid", result.UUID)
	return result, nil
}

func (o *Orchestrator) fail(ctx context.Context, log *slog.Logger, err error) error {
	err = normalize(ctx, err)
	if merrors.KindOf(err) == merrors.Cancelled {
		log.Info("sign-in cancelled")
	} else {
		logging.Error(log, "sign-in failed", err)
	}
	return err
}

func newAttemptID() string {
	return uniuri.NewLen(8)
}

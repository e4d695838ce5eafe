package microsoft

import (
	"context"
	"errors"
	"log/slog"

	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/minecraft"
)

// Stage is one step of the Xbox Live -> Minecraft chain
type Stage int

const (
	StageXboxLive Stage = iota + 1
	StageXSTS
	StageMinecraftLogin
	StageEntitlements
	StageProfile
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageXboxLive:
		return "xbox-live"
	case StageXSTS:
		return "xsts"
	case StageMinecraftLogin:
		return "minecraft-login"
	case StageEntitlements:
		return "entitlements"
	case StageProfile:
		return "profile"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// federation holds the state of one Federate call. Every stage consumes the
// output of the previous one and drops it afterwards.
type federation struct {
	m     *MicrosoftClient
	log   *slog.Logger
	stage Stage

	msToken string
	xbl     *XboxToken
	xsts    *XSTSToken
	mc      *MinecraftToken
	profile *minecraft.Profile
}

func (f *federation) step(ctx context.Context) (err error) {
	switch f.stage {
	case StageXboxLive:
		f.xbl, err = f.m.xblAuth(ctx, f.msToken)
		f.msToken = ""
	case StageXSTS:
		f.xsts, err = f.m.xstsAuth(ctx, f.xbl)
		f.xbl = nil
	case StageMinecraftLogin:
		f.mc, err = f.m.minecraftLoginWithXbox(ctx, f.xsts)
		f.xsts = nil
	case StageEntitlements:
		err = f.m.checkEntitlements(ctx, f.mc.AccessToken)
	case StageProfile:
		f.profile, err = f.m.getProfile(ctx, f.mc.AccessToken)
	}
	return err
}

// Federate turns a Microsoft access token into the Minecraft profile and the
// Minecraft Services token. Stages run strictly in order and the first
// failure ends the chain; no partial results are returned.
func (m *MicrosoftClient) Federate(ctx context.Context, msAccessToken string) (*minecraft.Profile, *MinecraftToken, error) {
	f := &federation{
		m:       m,
		log:     m.federationLog,
		stage:   StageXboxLive,
		msToken: msAccessToken,
	}

	for f.stage != StageDone {
		if ctx.Err() != nil {
			err := &merrors.AuthError{Kind: merrors.Cancelled, Stage: f.stage.String(), Err: ctx.Err()}
			f.log.Info("federation cancelled", "stage", f.stage.String())
			return nil, nil, err
		}

		f.log.Debug("stage started", "stage", f.stage.String())
		if err := f.step(ctx); err != nil {
			var authErr *merrors.AuthError
			if !errors.As(err, &authErr) {
				authErr = merrors.Wrap(merrors.Transport, err)
			}
			if authErr.Stage == "" {
				authErr.Stage = f.stage.String()
			}
			logging.Error(f.log, "stage failed", authErr)
			return nil, nil, authErr
		}
		f.log.Info("stage completed", "stage", f.stage.String())
		f.stage++
	}

	f.log.Info("federation completed", "player", f.profile.Name, "uuid", f.profile.ID)
	return f.profile, f.mc, nil
}

package microsoft

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/minecraft"
)

// MinecraftToken is the Minecraft Services bearer token
type MinecraftToken struct {
	// Username is not the Minecraft username!
	Username string `json:"username"`
	// AccessToken should be used for all future requests
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type minecraftLoginRequest struct {
	IdentityToken string `json:"identityToken"`
}

type entitlementsResponse struct {
	Items []struct {
		Name      string `json:"name"`
		Signature string `json:"signature"`
	} `json:"items"`
	Signature string `json:"signature"`
	KeyID     string `json:"keyId"`
}

type MinecraftAPIErrorResponse struct {
	Path      string `json:"path"`
	ErrorType string `json:"errorType"`
	// ErrorCode is a string like "NOT_FOUND". The underlying json field name is "error"
	ErrorCode        string `json:"error"`
	ErrorMessage     string `json:"errorMessage"`
	DeveloperMessage string `json:"developerMessage"`
}

func (a *MinecraftAPIErrorResponse) Error() string {
	return fmt.Sprintf("%s: %s", a.ErrorType, a.ErrorMessage)
}

// minecraftLoginWithXbox exchanges the XSTS token for a Minecraft Services token
func (m *MicrosoftClient) minecraftLoginWithXbox(ctx context.Context, xsts *XSTSToken) (*MinecraftToken, error) {
	payload := minecraftLoginRequest{
		IdentityToken: fmt.Sprintf("XBL3.0 x=%s;%s", xsts.UserHash, xsts.Token),
	}
	status, body, err := postJSON(ctx, m.Client, m.Endpoints.MinecraftLogin, payload)
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		authErr := merrors.HTTP(merrors.MinecraftLoginFailed, status, body)
		apiErr := &MinecraftAPIErrorResponse{}
		if json.Unmarshal(body, apiErr) == nil && apiErr.ErrorMessage != "" {
			authErr.Code = apiErr.ErrorCode
			authErr.Description = apiErr.ErrorMessage
		}
		return nil, authErr
	}

	authRes := &MinecraftToken{}
	if err := json.Unmarshal(body, authRes); err != nil {
		return nil, &merrors.AuthError{Kind: merrors.MinecraftLoginFailed, Status: status, Err: err}
	}
	if authRes.AccessToken == "" {
		return nil, &merrors.AuthError{
			Kind:        merrors.MinecraftLoginFailed,
			Status:      status,
			Description: "response is missing access_token",
		}
	}
	return authRes, nil
}

// checkEntitlements makes sure the account owns the game. Anything that
// prevents confirming ownership counts as not owned.
func (m *MicrosoftClient) checkEntitlements(ctx context.Context, token string) error {
	status, body, err := getBearer(ctx, m.Client, m.Endpoints.Entitlements, token)
	if err != nil {
		if merrors.KindOf(err) == merrors.Cancelled {
			return err
		}
		return &merrors.AuthError{
			Kind:        merrors.GameNotOwned,
			Description: "ownership could not be verified",
			Err:         err,
		}
	}
	if !isSuccess(status) {
		authErr := merrors.HTTP(merrors.GameNotOwned, status, body)
		authErr.Description = "ownership could not be verified"
		return authErr
	}

	entitlements := entitlementsResponse{}
	if err := json.Unmarshal(body, &entitlements); err != nil {
		return &merrors.AuthError{Kind: merrors.GameNotOwned, Status: status, Err: err}
	}
	if len(entitlements.Items) == 0 {
		return &merrors.AuthError{
			Kind:        merrors.GameNotOwned,
			Status:      status,
			Description: "account does not own Minecraft",
		}
	}
	return nil
}

func (m *MicrosoftClient) getProfile(ctx context.Context, token string) (*minecraft.Profile, error) {
	status, body, err := getBearer(ctx, m.Client, m.Endpoints.Profile, token)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		authErr := merrors.HTTP(merrors.ProfileFetchFailed, status, body)
		apiErr := &MinecraftAPIErrorResponse{}
		if json.Unmarshal(body, apiErr) == nil && apiErr.ErrorMessage != "" {
			authErr.Code = apiErr.ErrorCode
			authErr.Description = apiErr.ErrorMessage
		}
		return nil, authErr
	}

	var profile minecraft.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &merrors.AuthError{Kind: merrors.ProfileFetchFailed, Status: status, Err: err}
	}
	if profile.ID == "" || profile.Name == "" {
		return nil, &merrors.AuthError{
			Kind:        merrors.ProfileFetchFailed,
			Status:      status,
			Description: "profile is missing id or name",
		}
	}
	return &profile, nil
}

package microsoft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/funcraft/mcauth/internals/merrors"
)

// well known XSTS rejection codes
const (
	// XErrNoXboxAccount means the Microsoft account has no Xbox account (profile) yet
	XErrNoXboxAccount int64 = 2148916233
	// XErrChildAccount means a child account that has to be added to a family group
	XErrChildAccount int64 = 2148916238
)

// XboxToken is the Xbox Live user token
type XboxToken struct {
	Token    string
	UserHash string
}

// XSTSToken is the Xbox Secure Token Service token for Minecraft Services
type XSTSToken struct {
	Token    string
	UserHash string
}

type xblProperties struct {
	AuthMethod string   `json:"AuthMethod,omitempty"`
	SiteName   string   `json:"SiteName,omitempty"`
	RpsTicket  string   `json:"RpsTicket,omitempty"`
	SandboxID  string   `json:"SandboxId,omitempty"`
	UserTokens []string `json:"UserTokens,omitempty"`
}

type xblAuthRequest struct {
	Properties   xblProperties `json:"Properties"`
	RelyingParty string        `json:"RelyingParty"`
	TokenType    string        `json:"TokenType"`
}

type xblAuthResponse struct {
	IssueInstant  time.Time `json:"IssueInstant"`
	NotAfter      time.Time `json:"NotAfter"`
	Token         string    `json:"Token"`
	DisplayClaims struct {
		Xui []struct {
			Uhs string `json:"uhs"`
		} `json:"xui"`
	} `json:"DisplayClaims"`
}

func (x *xblAuthResponse) userHash() string {
	if len(x.DisplayClaims.Xui) == 0 {
		return ""
	}
	return x.DisplayClaims.Xui[0].Uhs
}

type xblErrorResponse struct {
	Identity string `json:"Identity"`
	XErr     int64  `json:"XErr"`
	Message  string `json:"Message"`
	Redirect string `json:"Redirect"`
}

func (x *xblErrorResponse) Error() string {
	if x.Message != "" {
		return fmt.Sprintf("%s (%d)", x.Message, x.XErr)
	}
	return fmt.Sprintf("error code: %d", x.XErr)
}

// xblAuth exchanges the Microsoft access token for an Xbox Live token
func (m *MicrosoftClient) xblAuth(ctx context.Context, msToken string) (*XboxToken, error) {
	if msToken == "" {
		return nil, merrors.New(merrors.XboxLiveAuthFailed, "no microsoft access token provided")
	}

	payload := xblAuthRequest{
		Properties: xblProperties{
			AuthMethod: "RPS",
			SiteName:   "user.auth.xboxlive.com",
			RpsTicket:  "d=" + msToken,
		},
		RelyingParty: "http://auth.xboxlive.com",
		TokenType:    "JWT",
	}
	status, body, err := postJSON(ctx, m.xblClient, m.Endpoints.XboxAuthenticate, payload)
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		authErr := merrors.HTTP(merrors.XboxLiveAuthFailed, status, body)
		// try to parse the response
		errorResponse := &xblErrorResponse{}
		if json.Unmarshal(body, errorResponse) == nil && errorResponse.XErr != 0 {
			authErr.XErr = errorResponse.XErr
			authErr.Description = errorResponse.Message
		}
		return nil, authErr
	}

	authResponse := xblAuthResponse{}
	if err := json.Unmarshal(body, &authResponse); err != nil {
		return nil, &merrors.AuthError{Kind: merrors.XboxLiveAuthFailed, Status: status, Err: err}
	}
	if authResponse.Token == "" || authResponse.userHash() == "" {
		return nil, &merrors.AuthError{
			Kind:        merrors.XboxLiveAuthFailed,
			Status:      status,
			Description: "response is missing Token or DisplayClaims.xui[0].uhs",
		}
	}

	return &XboxToken{Token: authResponse.Token, UserHash: authResponse.userHash()}, nil
}

// xstsAuth exchanges the Xbox Live token for a XSTS token scoped to Minecraft Services
func (m *MicrosoftClient) xstsAuth(ctx context.Context, xbl *XboxToken) (*XSTSToken, error) {
	payload := xblAuthRequest{
		Properties: xblProperties{
			SandboxID:  "RETAIL",
			UserTokens: []string{xbl.Token},
		},
		RelyingParty: "rp://api.minecraftservices.com/",
		TokenType:    "JWT",
	}
	status, body, err := postJSON(ctx, m.xblClient, m.Endpoints.XSTSAuthorize, payload)
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		return nil, xstsError(status, body)
	}

	authResponse := xblAuthResponse{}
	if err := json.Unmarshal(body, &authResponse); err != nil {
		return nil, &merrors.AuthError{Kind: merrors.XSTSAuthFailed, Status: status, Err: err}
	}
	if authResponse.Token == "" {
		return nil, &merrors.AuthError{
			Kind:        merrors.XSTSAuthFailed,
			Status:      status,
			Description: "response is missing Token",
		}
	}

	userHash := authResponse.userHash()
	if userHash == "" {
		// the hash does not change between XBL and XSTS
		userHash = xbl.UserHash
	}
	return &XSTSToken{Token: authResponse.Token, UserHash: userHash}, nil
}

// xstsError maps a rejected XSTS response to the matching error kind
func xstsError(status int, body []byte) *merrors.AuthError {
	authErr := merrors.HTTP(merrors.XSTSAuthFailed, status, body)

	errorResponse := &xblErrorResponse{}
	if err := json.Unmarshal(body, errorResponse); err != nil {
		return authErr
	}
	authErr.XErr = errorResponse.XErr
	authErr.Description = errorResponse.Message

	switch errorResponse.XErr {
	case XErrNoXboxAccount:
		authErr.Kind = merrors.XboxAccountNotLinked
	case XErrChildAccount:
		authErr.Kind = merrors.AdultVerificationRequired
	}
	return authErr
}

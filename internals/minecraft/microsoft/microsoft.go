package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/ownhttp"
)

const (
	XBL_AUTHENTICATE         = "https://user.auth.xboxlive.com/user/authenticate"
	XBL_XSTS_AUTHORIZE       = "https://xsts.auth.xboxlive.com/xsts/authorize"
	MC_API_XBOX_LOGIN        = "https://api.minecraftservices.com/authentication/login_with_xbox"
	MC_API_CHECK_ENTITLEMENT = "https://api.minecraftservices.com/entitlements/mcstore"
	MC_API_PROFILE           = "https://api.minecraftservices.com/minecraft/profile"
)

// DefaultClientID is the public (non secret) application id used for the device code flow
const DefaultClientID = "f1812aae-969e-48a0-80c4-8afbeb9703f7"

// DefaultScopes are required to get a token Xbox Live accepts
var DefaultScopes = []string{"XboxLive.signin", "offline_access"}

// maxBodySize caps how much of a response is read
const maxBodySize = 1 << 20

// Endpoints are the Xbox Live and Minecraft Services URLs. Only tests should change them.
type Endpoints struct {
	XboxAuthenticate string
	XSTSAuthorize    string
	MinecraftLogin   string
	Entitlements     string
	Profile          string
}

// DefaultEndpoint returns the OAuth endpoints of the consumers tenant.
// x/oauth2 does not know the device code URL, so it is added here.
func DefaultEndpoint() oauth2.Endpoint {
	endpoint := microsoft.AzureADEndpoint("consumers")
	endpoint.DeviceAuthURL = "https://login.microsoftonline.com/consumers/oauth2/v2.0/devicecode"
	return endpoint
}

// DefaultEndpoints returns the production endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{
		XboxAuthenticate: XBL_AUTHENTICATE,
		XSTSAuthorize:    XBL_XSTS_AUTHORIZE,
		MinecraftLogin:   MC_API_XBOX_LOGIN,
		Entitlements:     MC_API_CHECK_ENTITLEMENT,
		Profile:          MC_API_PROFILE,
	}
}

// MicrosoftClient talks to the Microsoft identity platform, Xbox Live and
// Minecraft Services. It holds no per sign-in state, so one client can serve
// any number of concurrent attempts.
type MicrosoftClient struct {
	*http.Client
	// xblClient is a separate client because the Xbox Live hosts need
	// the horrifying Renegotiation option (see `ownhttp.NewXBL`)
	xblClient *http.Client
	Config    *oauth2.Config
	Endpoints Endpoints

	deviceLog     *slog.Logger
	refreshLog    *slog.Logger
	federationLog *slog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// Option configures a MicrosoftClient
type Option func(*MicrosoftClient)

// WithLogger sets the logger every stage reports to
func WithLogger(l *slog.Logger) Option {
	return func(m *MicrosoftClient) {
		m.deviceLog = logging.Category(l, "device-auth")
		m.refreshLog = logging.Category(l, "token-refresh")
		m.federationLog = logging.Category(l, "xbox-federation")
	}
}

// WithEndpoints replaces the Xbox Live and Minecraft Services endpoints
func WithEndpoints(e Endpoints) Option {
	return func(m *MicrosoftClient) { m.Endpoints = e }
}

// WithXBLClient sets the client used for the Xbox Live hosts
func WithXBLClient(c *http.Client) Option {
	return func(m *MicrosoftClient) { m.xblClient = c }
}

// WithClock replaces time.Now and time.After for the poll loop
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(m *MicrosoftClient) {
		m.now = now
		m.after = after
	}
}

// New returns a client. config may be nil; missing values are set to the
// consumer tenant endpoints, DefaultClientID and DefaultScopes.
func New(httpClient *http.Client, config *oauth2.Config, opts ...Option) *MicrosoftClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if config == nil {
		config = &oauth2.Config{}
	}

	// set some default config values
	if config.ClientID == "" {
		config.ClientID = DefaultClientID
	}
	if config.Scopes == nil {
		config.Scopes = DefaultScopes
	}
	if config.Endpoint.TokenURL == "" {
		config.Endpoint = DefaultEndpoint()
	}
	if config.Endpoint.DeviceAuthURL == "" {
		config.Endpoint.DeviceAuthURL = DefaultEndpoint().DeviceAuthURL
	}
	// public client: the client id goes into the form body, there is no secret
	config.Endpoint.AuthStyle = oauth2.AuthStyleInParams

	m := &MicrosoftClient{
		Client:    httpClient,
		Config:    config,
		Endpoints: DefaultEndpoints(),
		now:       time.Now,
		after:     time.After,
	}
	WithLogger(nil)(m)
	for _, opt := range opts {
		opt(m)
	}
	if m.xblClient == nil {
		m.xblClient = ownhttp.NewXBL(httpClient, ownhttp.Options{})
	}
	return m
}

// send does req and reads the (capped) body. Failures below HTTP become
// Transport errors, or Cancelled if ctx is done.
func send(ctx context.Context, client *http.Client, req *http.Request) (int, []byte, error) {
	res, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, merrors.Wrap(merrors.Cancelled, ctx.Err())
		}
		return 0, nil, merrors.Wrap(
			merrors.Transport,
			errors.Wrapf(err, "%s %s", req.Method, req.URL.Host),
		)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, merrors.Wrap(merrors.Cancelled, ctx.Err())
		}
		return res.StatusCode, nil, merrors.Wrap(
			merrors.Transport,
			errors.Wrapf(err, "reading response of %s", req.URL.Host),
		)
	}
	return res.StatusCode, body, nil
}

func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, merrors.Wrap(merrors.Transport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return send(ctx, client, req)
}

func postJSON(ctx context.Context, client *http.Client, endpoint string, payload interface{}) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, merrors.Wrap(merrors.Transport, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, merrors.Wrap(merrors.Transport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return send(ctx, client, req)
}

// getBearer sends a GET with the given bearer token. The token is set on this
// request only, the client itself never keeps it.
func getBearer(ctx context.Context, client *http.Client, endpoint string, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, merrors.Wrap(merrors.Transport, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return send(ctx, client, req)
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

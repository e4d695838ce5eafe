package microsoft

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/merrors"
)

const (
	deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"
	// defaultPollInterval is used if the server does not send an interval (RFC 8628 section 3.2)
	defaultPollInterval = 5 * time.Second
)

// DeviceCodeSession is one device code grant. Do not modify it after creation.
type DeviceCodeSession struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	// VerificationURIComplete already contains the user code (optional)
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	// Message is a localized instruction text (optional)
	Message string `json:"message,omitempty"`
	// ExpiresIn is the lifetime of the device code in seconds
	ExpiresIn int `json:"expires_in"`
	// Interval is the poll interval in seconds
	Interval  int       `json:"interval"`
	CreatedAt time.Time `json:"-"`
}

// Deadline is the point after which polling gives up
func (s *DeviceCodeSession) Deadline() time.Time {
	return s.CreatedAt.Add(time.Duration(s.ExpiresIn) * time.Second)
}

// PollInterval returns Interval as a duration
func (s *DeviceCodeSession) PollInterval() time.Duration {
	if s.Interval <= 0 {
		return defaultPollInterval
	}
	return time.Duration(s.Interval) * time.Second
}

// PendingFunc is called every time the user has not finished the authorization yet
type PendingFunc func(attempt int, remaining time.Duration)

type oauthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RequestDeviceCode starts a device code grant. scopes defaults to the configured scopes.
func (m *MicrosoftClient) RequestDeviceCode(ctx context.Context, scopes []string) (*DeviceCodeSession, error) {
	if scopes == nil {
		scopes = m.Config.Scopes
	}
	form := url.Values{
		"client_id": {m.Config.ClientID},
		"scope":     {strings.Join(scopes, " ")},
	}

	status, body, err := postForm(ctx, m.Client, m.Config.Endpoint.DeviceAuthURL, form)
	if err != nil {
		logging.Error(m.deviceLog, "device code request failed", err)
		return nil, err
	}
	if !isSuccess(status) {
		err := merrors.HTTP(merrors.DeviceCodeRequestFailed, status, body)
		logging.Error(m.deviceLog, "device code request rejected", err)
		return nil, err
	}

	session := &DeviceCodeSession{}
	if err := json.Unmarshal(body, session); err != nil {
		authErr := merrors.HTTP(merrors.DeviceCodeRequestFailed, status, body)
		authErr.Err = err
		logging.Error(m.deviceLog, "device code response is not json", authErr)
		return nil, authErr
	}
	if session.DeviceCode == "" || session.UserCode == "" || session.VerificationURI == "" {
		authErr := merrors.HTTP(merrors.DeviceCodeRequestFailed, status, body)
		authErr.Description = "response is missing device_code, user_code or verification_uri"
		logging.Error(m.deviceLog, "device code response incomplete", authErr)
		return nil, authErr
	}
	session.CreatedAt = m.now()

	m.deviceLog.Info(
		"device code issued",
		"user_code", session.UserCode,
		"verification_uri", session.VerificationURI,
		"expires_in", session.ExpiresIn,
		"interval", session.Interval,
	)
	return session, nil
}

// PollForToken waits until the user completed (or rejected) the sign-in for
// session. It sleeps the session interval before every request and gives up
// once the session expired. Cancelling ctx stops the loop with a Cancelled error.
func (m *MicrosoftClient) PollForToken(ctx context.Context, session *DeviceCodeSession, onPending PendingFunc) (*TokenSet, error) {
	deadline := session.Deadline()
	interval := session.PollInterval()
	log := m.deviceLog

	log.Info("polling for token", "interval", interval.String(), "deadline", deadline)

	for attempt := 1; ; attempt++ {
		if !m.now().Before(deadline) {
			err := merrors.New(merrors.DeviceCodeExpired, "device code lifetime elapsed")
			logging.Error(log, "gave up polling", err)
			return nil, err
		}

		select {
		case <-ctx.Done():
			log.Info("polling cancelled", "attempt", attempt)
			return nil, merrors.Wrap(merrors.Cancelled, ctx.Err())
		case <-m.after(interval):
		}
		// both channels can be ready at once, never poll after cancellation
		if ctx.Err() != nil {
			log.Info("polling cancelled", "attempt", attempt)
			return nil, merrors.Wrap(merrors.Cancelled, ctx.Err())
		}

		tokens, pending, err := m.pollOnce(ctx, session)
		if err != nil {
			logging.Error(log, "polling failed", err)
			return nil, err
		}
		if !pending {
			log.Info("authorization granted", "attempt", attempt)
			return tokens, nil
		}

		log.Debug("authorization pending", "attempt", attempt)
		if onPending != nil {
			onPending(attempt, deadline.Sub(m.now()))
		}
	}
}

// pollOnce does a single token request. pending is true if the user did not finish yet.
func (m *MicrosoftClient) pollOnce(ctx context.Context, session *DeviceCodeSession) (tokens *TokenSet, pending bool, err error) {
	form := url.Values{
		"grant_type":  {deviceCodeGrantType},
		"client_id":   {m.Config.ClientID},
		"device_code": {session.DeviceCode},
	}
	status, body, err := postForm(ctx, m.Client, m.Config.Endpoint.TokenURL, form)
	if err != nil {
		return nil, false, err
	}

	if isSuccess(status) {
		tokens := &TokenSet{}
		if err := json.Unmarshal(body, tokens); err != nil {
			return nil, false, &merrors.AuthError{Kind: merrors.TokenRequestFailed, Status: status, Err: err}
		}
		if tokens.AccessToken == "" {
			return nil, false, &merrors.AuthError{
				Kind:        merrors.TokenRequestFailed,
				Status:      status,
				Description: "response is missing access_token",
			}
		}
		tokens.IssuedAt = m.now()
		return tokens, false, nil
	}

	oauthErr := oauthErrorResponse{}
	if err := json.Unmarshal(body, &oauthErr); err != nil || oauthErr.Error == "" {
		authErr := merrors.HTTP(merrors.TokenRequestFailed, status, body)
		authErr.Err = err
		return nil, false, authErr
	}

	switch oauthErr.Error {
	case "authorization_pending":
		return nil, true, nil
	case "authorization_declined", "access_denied":
		return nil, false, &merrors.AuthError{
			Kind:        merrors.AuthorizationDeclined,
			Status:      status,
			Code:        oauthErr.Error,
			Description: oauthErr.ErrorDescription,
		}
	case "expired_token":
		return nil, false, &merrors.AuthError{
			Kind:        merrors.DeviceCodeExpired,
			Status:      status,
			Code:        oauthErr.Error,
			Description: oauthErr.ErrorDescription,
		}
	default:
		return nil, false, &merrors.AuthError{
			Kind:        merrors.TokenRequestFailed,
			Status:      status,
			Code:        oauthErr.Error,
			Description: oauthErr.ErrorDescription,
		}
	}
}

// Package merrors contains the closed set of sign-in failures.
// Every failure surfaced by the auth packages is an *AuthError carrying one Kind.
package merrors

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind identifies what went wrong during a sign-in attempt
type Kind int

const (
	Unknown Kind = iota
	InvalidUsername
	DeviceCodeRequestFailed
	AuthorizationDeclined
	DeviceCodeExpired
	TokenRequestFailed
	RefreshFailed
	XboxLiveAuthFailed
	XboxAccountNotLinked
	AdultVerificationRequired
	XSTSAuthFailed
	MinecraftLoginFailed
	GameNotOwned
	ProfileFetchFailed
	Cancelled
	Transport
)

var kindNames = map[Kind]string{
	Unknown:                   "Unknown",
	InvalidUsername:           "InvalidUsername",
	DeviceCodeRequestFailed:   "DeviceCodeRequestFailed",
	AuthorizationDeclined:     "AuthorizationDeclined",
	DeviceCodeExpired:         "DeviceCodeExpired",
	TokenRequestFailed:        "TokenRequestFailed",
	RefreshFailed:             "RefreshFailed",
	XboxLiveAuthFailed:        "XboxLiveAuthFailed",
	XboxAccountNotLinked:      "XboxAccountNotLinked",
	AdultVerificationRequired: "AdultVerificationRequired",
	XSTSAuthFailed:            "XSTSAuthFailed",
	MinecraftLoginFailed:      "MinecraftLoginFailed",
	GameNotOwned:              "GameNotOwned",
	ProfileFetchFailed:        "ProfileFetchFailed",
	Cancelled:                 "Cancelled",
	Transport:                 "Transport",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// maxBodyLen caps how much of an upstream response body is kept on an error
const maxBodyLen = 512

// AuthError is the only error type returned by the sign-in pipeline.
// Fields other than Kind are optional details and depend on the kind.
type AuthError struct {
	Kind Kind
	// Stage is the pipeline step that failed (e.g. "xsts"), empty for non-federation errors
	Stage string
	// Status is the HTTP status of the failed upstream response (0 if none was received)
	Status int
	// Body is the (truncated and redacted) upstream response body
	Body string
	// Code is the OAuth error name, like "authorization_pending"
	Code string
	// Description is the OAuth error_description or another human readable reason
	Description string
	// XErr is the numeric Xbox error code from XSTS responses
	XErr int64
	// Err is the underlying cause (transport errors, decode errors)
	Err error
}

func (e *AuthError) Error() string {
	msg := e.Kind.String()
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	switch {
	case e.XErr != 0:
		msg += fmt.Sprintf(" (XErr %d)", e.XErr)
	case e.Code != "":
		msg += fmt.Sprintf(" (%s)", e.Code)
	case e.Status != 0:
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is reports whether target is an *AuthError of the same kind. This makes the
// sentinels below usable with errors.Is.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons. Never return these directly.
var (
	ErrInvalidUsername           = &AuthError{Kind: InvalidUsername}
	ErrDeviceCodeRequestFailed   = &AuthError{Kind: DeviceCodeRequestFailed}
	ErrAuthorizationDeclined     = &AuthError{Kind: AuthorizationDeclined}
	ErrDeviceCodeExpired         = &AuthError{Kind: DeviceCodeExpired}
	ErrTokenRequestFailed        = &AuthError{Kind: TokenRequestFailed}
	ErrRefreshFailed             = &AuthError{Kind: RefreshFailed}
	ErrXboxLiveAuthFailed        = &AuthError{Kind: XboxLiveAuthFailed}
	ErrXboxAccountNotLinked      = &AuthError{Kind: XboxAccountNotLinked}
	ErrAdultVerificationRequired = &AuthError{Kind: AdultVerificationRequired}
	ErrXSTSAuthFailed            = &AuthError{Kind: XSTSAuthFailed}
	ErrMinecraftLoginFailed      = &AuthError{Kind: MinecraftLoginFailed}
	ErrGameNotOwned              = &AuthError{Kind: GameNotOwned}
	ErrProfileFetchFailed        = &AuthError{Kind: ProfileFetchFailed}
	ErrCancelled                 = &AuthError{Kind: Cancelled}
	ErrTransport                 = &AuthError{Kind: Transport}
)

// New returns a bare error of the given kind
func New(kind Kind, description string) *AuthError {
	return &AuthError{Kind: kind, Description: description}
}

// Wrap returns an error of the given kind caused by err
func Wrap(kind Kind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// HTTP returns an error of the given kind for an unexpected upstream response
func HTTP(kind Kind, status int, body []byte) *AuthError {
	return &AuthError{Kind: kind, Status: status, Body: TrimBody(body)}
}

// KindOf returns the Kind of err, or Unknown if err is not an *AuthError
func KindOf(err error) Kind {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return Unknown
}

// TrimBody redacts tokens from a response body and caps its length
func TrimBody(body []byte) string {
	s := RedactTokens(string(body))
	if len(s) > maxBodyLen {
		cut := maxBodyLen
		// do not split a multi-byte character
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "…"
	}
	return s
}

package microsoft

import (
	"context"
	"errors"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/merrors"
)

// TokenSet is a Microsoft OAuth token response
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	// ExpiresIn is the lifetime of AccessToken in seconds
	ExpiresIn int       `json:"expires_in"`
	Scope     string    `json:"scope,omitempty"`
	IssuedAt  time.Time `json:"-"`
}

// Expiry returns the time AccessToken expires (zero if unknown)
func (t *TokenSet) Expiry() time.Time {
	if t.ExpiresIn <= 0 || t.IssuedAt.IsZero() {
		return time.Time{}
	}
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// OAuth2 converts t for use with golang.org/x/oauth2
func (t *TokenSet) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry(),
	}
}

func tokenSetFromOAuth2(tok *oauth2.Token, now time.Time) *TokenSet {
	set := &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		IssuedAt:     now,
	}
	if !tok.Expiry.IsZero() {
		set.ExpiresIn = int(tok.Expiry.Sub(now).Round(time.Second) / time.Second)
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		set.Scope = scope
	}
	return set
}

// Refresh exchanges refreshToken for a new token set. It does not retry.
func (m *MicrosoftClient) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	log := m.refreshLog
	if refreshToken == "" {
		err := merrors.New(merrors.RefreshFailed, "no refresh token provided")
		logging.Error(log, "refresh skipped", err)
		return nil, err
	}

	log.Info("refreshing microsoft token")
	oauthCtx := context.WithValue(ctx, oauth2.HTTPClient, m.Client)
	// an empty access token is never valid, so Token() always refreshes
	tok, err := m.Config.TokenSource(oauthCtx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		authErr := refreshError(ctx, err)
		logging.Error(log, "refresh failed", authErr)
		return nil, authErr
	}

	log.Info("microsoft token refreshed")
	return tokenSetFromOAuth2(tok, m.now()), nil
}

func refreshError(ctx context.Context, err error) *merrors.AuthError {
	var retrieveErr *oauth2.RetrieveError
	var urlErr *url.Error
	switch {
	case errors.As(err, &retrieveErr):
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		authErr := merrors.HTTP(merrors.RefreshFailed, status, retrieveErr.Body)
		authErr.Code = retrieveErr.ErrorCode
		authErr.Description = retrieveErr.ErrorDescription
		return authErr
	case ctx.Err() != nil:
		return merrors.Wrap(merrors.Cancelled, ctx.Err())
	case errors.As(err, &urlErr):
		return merrors.Wrap(merrors.Transport, err)
	default:
		// e.g. "server response missing access_token"
		return merrors.Wrap(merrors.RefreshFailed, err)
	}
}

package commands

import (
	"errors"
	"fmt"

	"github.com/funcraft/mcauth/internals/merrors"
)

// FromAuthError turns a sign-in failure into something a user can act on.
// It returns nil if err is not a sign-in failure.
func FromAuthError(err error) *CliError {
	var authErr *merrors.AuthError
	if !errors.As(err, &authErr) {
		return nil
	}

	cliErr := cliErrorFor(authErr)
	cliErr.Err = err
	return cliErr
}

func cliErrorFor(authErr *merrors.AuthError) *CliError {
	switch authErr.Kind {
	case merrors.InvalidUsername:
		return &CliError{
			Text:        "That name can not be used offline",
			Code:        "invalid_username",
			Help:        authErr.Description,
			Suggestions: []string{"Use a name with 3 to 16 characters"},
		}
	case merrors.AuthorizationDeclined:
		return &CliError{
			Text: "The sign-in was declined",
			Code: "declined",
			Help: "You (or someone) pressed \"No\" on the Microsoft sign-in page.",
			Suggestions: []string{
				"Run the login command again and accept the request",
			},
		}
	case merrors.DeviceCodeExpired:
		return &CliError{
			Text:        "The sign-in code expired",
			Code:        "expired",
			Help:        "The code was not entered in time.",
			Suggestions: []string{"Run the login command again for a new code"},
		}
	case merrors.Cancelled:
		return &CliError{
			Text: "Sign-in cancelled",
			Code: "cancelled",
		}
	case merrors.Transport:
		return &CliError{
			Text: "Could not reach the sign-in servers",
			Code: "network",
			Help: authErr.Error(),
			Suggestions: []string{
				"Check your internet connection",
				"Check https://xbox.com/status for outages",
			},
		}
	case merrors.XboxAccountNotLinked:
		return &CliError{
			Text: "This Microsoft account has no Xbox profile",
			Code: "not_linked",
			Help: "Minecraft needs an Xbox profile, which is created the first time you sign in to xbox.com.",
			Suggestions: []string{
				"Sign in once at https://www.xbox.com/live and create a profile",
			},
		}
	case merrors.AdultVerificationRequired:
		return &CliError{
			Text: "This is a child account",
			Code: "family_group",
			Help: "Child accounts have to be added to a Family group by an adult before they can play.",
			Suggestions: []string{
				"Ask an adult to add you at https://account.microsoft.com/family",
			},
		}
	case merrors.GameNotOwned:
		return &CliError{
			Text: "This account does not own Minecraft",
			Code: "not_owned",
			Help: "The account signed in fine, but no Minecraft license was found (or it could not be verified).",
			Suggestions: []string{
				"Make sure you signed in with the account that bought the game",
				"Use the offline command to play without an account",
			},
		}
	case merrors.RefreshFailed:
		return &CliError{
			Text:        "The stored sign-in is no longer valid",
			Code:        "refresh_failed",
			Help:        authErr.Error(),
			Suggestions: []string{"Run the login command to sign in again"},
		}
	default:
		return &CliError{
			Text: fmt.Sprintf("Sign-in failed (%s)", authErr.Kind),
			Code: "auth_failed",
			Help: authErr.Error(),
		}
	}
}

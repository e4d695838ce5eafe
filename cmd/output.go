package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/funcraft/mcauth/internals/commands"
	"github.com/funcraft/mcauth/internals/minecraft"
	"github.com/funcraft/mcauth/internals/utils"
)

// outputFlags are shared by every command that prints an AuthResult
type outputFlags struct {
	json      bool
	showToken bool
}

type resultOutput struct {
	Kind        minecraft.LoginKind `json:"kind"`
	Username    string              `json:"username"`
	UUID        string              `json:"uuid"`
	DashedUUID  string              `json:"dashedUuid"`
	UserType    string              `json:"userType"`
	Premium     bool                `json:"premium"`
	AccessToken string              `json:"accessToken"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
	Profile     *minecraft.Profile  `json:"profile,omitempty"`
}

func printResult(w io.Writer, result *minecraft.AuthResult, flags outputFlags) error {
	token := result.AccessToken
	if !flags.showToken && result.IsPremium() {
		token = utils.MaskToken(token)
	}

	if flags.json {
		out := resultOutput{
			Kind:        result.Kind,
			Username:    result.Username,
			UUID:        result.UUID,
			DashedUUID:  result.DashedUUID(),
			UserType:    result.GetUserType(),
			Premium:     result.IsPremium(),
			AccessToken: token,
			Profile:     result.Profile,
		}
		if !result.ExpiresAt.IsZero() {
			out.ExpiresAt = &result.ExpiresAt
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	pairs := [][2]string{
		{"Player", result.Username},
		{"UUID", result.DashedUUID()},
		{"Account", utils.PrettyKind(string(result.Kind))},
		{"Token", token},
	}
	if !result.ExpiresAt.IsZero() {
		pairs = append(pairs, [2]string{"Expires", result.ExpiresAt.Local().Format(time.RFC1123)})
	}
	if result.Profile != nil {
		if skin := result.Profile.ActiveSkin(); skin != nil {
			pairs = append(pairs, [2]string{"Skin", skin.URL})
		}
	}
	_, err := fmt.Fprintln(w, commands.KeyValues(pairs...))
	return err
}

package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funcraft/mcauth/internals/minecraft"
)

func premiumResult() *minecraft.AuthResult {
	return &minecraft.AuthResult{
		Kind:         minecraft.LoginMicrosoft,
		Username:     "Notch",
		UUID:         "069a79f444e94726a5befca90e38aaf5",
		AccessToken:  "eyJhbGciOiJIUzI1NiJ9.payload.signature",
		Success:      true,
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		RefreshToken: "M.R3_refresh",
		Profile:      &minecraft.Profile{ID: "069a79f444e94726a5befca90e38aaf5", Name: "Notch"},
	}
}

func TestPrintResultJSONMasksToken(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, premiumResult(), outputFlags{json: true}))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "Notch", out["username"])
	assert.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", out["dashedUuid"])
	assert.Equal(t, "msa", out["userType"])
	assert.Equal(t, true, out["premium"])
	assert.NotContains(t, buf.String(), "payload")
	assert.NotContains(t, buf.String(), "M.R3_refresh")
}

func TestPrintResultShowToken(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, premiumResult(), outputFlags{json: true, showToken: true}))
	assert.Contains(t, buf.String(), "eyJhbGciOiJIUzI1NiJ9.payload.signature")
	// the refresh token never leaves the process through output
	assert.NotContains(t, buf.String(), "M.R3_refresh")
}

func TestPrintResultText(t *testing.T) {
	var buf bytes.Buffer
	result := &minecraft.AuthResult{
		Kind:        minecraft.LoginOffline,
		Username:    "Steve",
		UUID:        "5627dd98e6be3c21b8a8e92344183641",
		AccessToken: minecraft.OfflineAccessToken,
		Success:     true,
	}
	require.NoError(t, printResult(&buf, result, outputFlags{}))
	assert.Contains(t, buf.String(), "Steve")
	assert.Contains(t, buf.String(), "5627dd98-e6be-3c21-b8a8-e92344183641")
	assert.NotContains(t, buf.String(), "Expires")
}

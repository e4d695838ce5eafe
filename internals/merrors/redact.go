package merrors

import "regexp"

// Redacted replaces secret values in logs and error bodies
const Redacted = "[REDACTED]"

var (
	// JSON fields that carry bearer material in Microsoft, Xbox and Minecraft responses
	jsonSecret = regexp.MustCompile(`(?i)"(access_token|refresh_token|id_token|token|identityToken|device_code|RpsTicket|UserTokens)"\s*:\s*(\[[^\]]*\]|"[^"]*")`)
	// form encoded bodies
	formSecret = regexp.MustCompile(`(?i)\b(access_token|refresh_token|device_code)=[^&\s"]+`)
	bearer     = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9\-._~+/]+=*`)
	xblHeader  = regexp.MustCompile(`XBL3\.0 x=[^;"\s]*;[^"\s]+`)
)

// RedactTokens masks anything that looks like token material in s
func RedactTokens(s string) string {
	s = jsonSecret.ReplaceAllString(s, `"$1":"`+Redacted+`"`)
	s = formSecret.ReplaceAllString(s, `$1=`+Redacted)
	s = bearer.ReplaceAllString(s, "Bearer "+Redacted)
	s = xblHeader.ReplaceAllString(s, "XBL3.0 x="+Redacted)
	return s
}

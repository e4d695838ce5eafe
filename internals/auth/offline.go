package auth

import "github.com/funcraft/mcauth/internals/minecraft"

// SignInOffline returns the offline identity for username. No network is involved.
func (o *Orchestrator) SignInOffline(username string) (*minecraft.AuthResult, error) {
	return o.offline.Generate(username)
}

package main

import (
	"net/http"

	"github.com/funcraft/mcauth/cmd"
	"github.com/funcraft/mcauth/internals/ownhttp"
)

// set by goreleaser
var (
	version string
	commit  string
)

func main() {
	// replace default http client
	http.DefaultClient = ownhttp.New(ownhttp.Options{})
	ownhttp.UserAgent = "mcauth/" + version

	cmd.Version = version
	cmd.Commit = commit
	cmd.Execute()
}

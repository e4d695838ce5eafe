package ownhttp

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// UserAgent is sent with every request
var UserAgent = "mcauth (https://github.com/funcraft/mcauth)"

// Options tunes the client returned by New
type Options struct {
	// RequestsPerSecond limits outgoing requests. 0 disables throttling
	RequestsPerSecond float64
	// Timeout for a single request (including reading the body). 0 means 30s
	Timeout time.Duration
}

// New returns a new http.Client with the AddHeaderTransport (setting the User-Agent header)
// and an optional request throttle
func New(opts Options) *http.Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &http.Client{
		Transport: wrap(baseTransport(nil), opts),
		Timeout:   opts.Timeout,
	}
}

// NewXBL returns a copy of client that allows TLS renegotiation.
// The Xbox Live hosts need this:
// https://stackoverflow.com/questions/57420833/tls-no-renegotiation-error-on-http-request
func NewXBL(client *http.Client, opts Options) *http.Client {
	if client == nil {
		client = New(opts)
	}
	// shallow copy the http client so we don't modify the original
	lessSecure := *client
	lessSecure.Transport = wrap(
		baseTransport(&tls.Config{Renegotiation: tls.RenegotiateOnceAsClient}),
		opts,
	)
	return &lessSecure
}

func wrap(t http.RoundTripper, opts Options) http.RoundTripper {
	if opts.RequestsPerSecond > 0 {
		t = NewThrottleTransport(t, rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1))
	}
	return NewAddHeaderTransport(t)
}

func baseTransport(tlsConfig *tls.Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

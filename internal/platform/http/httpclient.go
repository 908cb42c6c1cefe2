// Package http holds HTTP plumbing shared across features.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient returns a client for outbound calls such as object storage uploads.
// Proxy settings come from the environment. Dial and TLS handshakes are bounded
// separately from timeout, which covers the whole request.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

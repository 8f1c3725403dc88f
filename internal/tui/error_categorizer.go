package tui

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/studiowebux/policyctl/internal/executor"
)

// categorizeTransportError turns the error text of a failed round trip
// into an actionable hint for the result panel
func categorizeTransportError(errStr string) string {
	if errStr == "" {
		return ""
	}

	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "context canceled") ||
		strings.Contains(errLower, "context cancelled") {
		return "Analysis cancelled"
	}

	if strings.Contains(errLower, "context deadline exceeded") ||
		strings.Contains(errLower, "deadline exceeded") {
		return "Analysis timed out - raise server.timeout (0 disables it) or check the analysis service load"
	}

	if strings.Contains(errLower, "no analysis service configured") {
		return "No analysis service configured - set server.url or POLICYCTL_SERVER_URL"
	}

	// Proxy errors often also contain "connection refused"
	if strings.Contains(errLower, "proxy") {
		return "Proxy connection failed - check HTTP_PROXY / HTTPS_PROXY"
	}

	if strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "dial tcp: lookup") {
		return "DNS resolution failed - verify the host in server.url"
	}

	if strings.Contains(errLower, "connection refused") {
		return "Connection refused - is the analysis service running? Try `policyctl mock` for a local one"
	}

	if strings.Contains(errLower, "connection reset") {
		return "Connection reset by the analysis service"
	}

	if strings.Contains(errLower, "network is unreachable") ||
		strings.Contains(errLower, "no route to host") {
		return "Network unreachable - check the network connection and firewall"
	}

	if strings.Contains(errLower, "tls") ||
		strings.Contains(errLower, "certificate") ||
		strings.Contains(errLower, "x509") {
		return categorizeTLSError(errStr)
	}

	if strings.Contains(errLower, "unsupported protocol") {
		return "Invalid server.url - use http:// or https://"
	}

	if strings.Contains(errLower, "eof") {
		return "Connection closed before the analysis service answered"
	}

	if strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "timed out") {
		return "Connection timeout - the analysis service took too long to respond"
	}

	return ""
}

// categorizeTLSError gives guidance for certificate problems
func categorizeTLSError(errStr string) string {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "unknown authority") ||
		strings.Contains(errLower, "not trusted") {
		return "TLS certificate not trusted - set server.tls.ca_file"
	}

	if strings.Contains(errLower, "expired") {
		return "TLS certificate has expired"
	}

	if strings.Contains(errLower, "certificate is valid for") ||
		strings.Contains(errLower, "doesn't match") {
		return "TLS hostname mismatch - the certificate does not cover the host in server.url"
	}

	if strings.Contains(errLower, "certificate required") ||
		strings.Contains(errLower, "bad certificate") {
		return "TLS client certificate rejected - check server.tls.cert_file and key_file"
	}

	if strings.Contains(errLower, "handshake") {
		return "TLS handshake failed"
	}

	return "TLS error - check the server.tls settings"
}

// connectionHint returns a hint for transport failures and "" otherwise.
// Decode failures already carry the server's own text.
func connectionHint(err error) string {
	if err == nil {
		return ""
	}
	var decodeErr *executor.DecodeError
	if errors.As(err, &decodeErr) {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return categorizeTransportError("deadline exceeded")
	}
	if errors.Is(err, context.Canceled) {
		return categorizeTransportError("context canceled")
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return categorizeTLSError("unknown authority")
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return categorizeTLSError("certificate is valid for")
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return categorizeTransportError("timeout")
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED:
				return categorizeTransportError("connection refused")
			case syscall.ECONNRESET:
				return categorizeTransportError("connection reset")
			case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
				return categorizeTransportError("network is unreachable")
			}
		}
	}

	return categorizeTransportError(err.Error())
}

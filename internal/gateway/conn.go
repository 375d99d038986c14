package gateway

import (
	"errors"
	"net"
	"strings"
)

// ErrUnavailable wraps failures to reach the serving process, typically
// because it is restarting.
var ErrUnavailable = errors.New("gateway unavailable")

// IsConnectionError reports whether err means the daemon could not be
// reached.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host")
}

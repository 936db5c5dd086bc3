package classifier

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ParseStatusCode extracts an HTTP status code from a provider error. It
// returns http.StatusGatewayTimeout for deadline errors and 0 when nothing
// can be inferred.
func ParseStatusCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	msg := strings.ToLower(err.Error())
	// e.g. "status code: 429", "HTTP 503", "error 500"
	for _, prefix := range []string{"status code: ", "status code ", "http ", "error ", "code "} {
		idx := strings.Index(msg, prefix)
		if idx < 0 {
			continue
		}
		start := idx + len(prefix)
		end := start
		for end < len(msg) && end < start+3 && msg[end] >= '0' && msg[end] <= '9' {
			end++
		}
		if end-start != 3 {
			continue
		}
		if code, convErr := strconv.Atoi(msg[start:end]); convErr == nil && code >= 100 && code < 600 {
			return code
		}
	}
	for _, p := range []struct {
		pattern string
		status  int
	}{
		{"rate limit", http.StatusTooManyRequests},
		{"too many requests", http.StatusTooManyRequests},
		{"insufficient_quota", http.StatusTooManyRequests},
		{"invalid api key", http.StatusUnauthorized},
		{"incorrect api key", http.StatusUnauthorized},
		{"unauthorized", http.StatusUnauthorized},
		{"service unavailable", http.StatusServiceUnavailable},
		{"overloaded", http.StatusServiceUnavailable},
		{"timeout", http.StatusGatewayTimeout},
		{"timed out", http.StatusGatewayTimeout},
	} {
		if strings.Contains(msg, p.pattern) {
			return p.status
		}
	}
	return 0
}

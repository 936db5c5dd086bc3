package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatusCode(t *testing.T) {
	t.Run("Should read explicit status codes", func(t *testing.T) {
		assert.Equal(t, 429, ParseStatusCode(errors.New("API returned unexpected status code: 429")))
		assert.Equal(t, 502, ParseStatusCode(errors.New("HTTP 502 bad gateway")))
	})

	t.Run("Should map deadline errors to gateway timeout", func(t *testing.T) {
		err := fmt.Errorf("call failed: %w", context.DeadlineExceeded)
		assert.Equal(t, http.StatusGatewayTimeout, ParseStatusCode(err))
	})

	t.Run("Should match provider messages", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, ParseStatusCode(errors.New("Incorrect API key provided")))
		assert.Equal(t, http.StatusTooManyRequests, ParseStatusCode(errors.New("Rate limit reached for gpt-4o-mini")))
	})

	t.Run("Should return zero when nothing matches", func(t *testing.T) {
		assert.Zero(t, ParseStatusCode(errors.New("something odd")))
		assert.Zero(t, ParseStatusCode(nil))
	})
}

package webhook

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidJSON     = errors.New("invalid json")
)

// ReadRawJSON reads at most maxBody bytes from r and checks that they form a
// single JSON document.
func ReadRawJSON(r io.Reader, maxBody int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxBody+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > maxBody {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, maxBody)
	}
	if !gjson.ValidBytes(b) {
		return nil, ErrInvalidJSON
	}
	return b, nil
}

package twitter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anuragratna/twitter-mcp-server/internal/platform/retry"
)

// APIError is a non-200 response from the search endpoint.
type APIError struct {
	StatusCode int
	Body       string
	// resetIn is derived from x-rate-limit-reset on 429 responses.
	resetIn time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter API returned %d: %s", e.StatusCode, e.Body)
}

// RetryDelay implements retry.DelayHinter.
func (e *APIError) RetryDelay() time.Duration {
	return e.resetIn
}

func (c *Client) newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode == http.StatusTooManyRequests {
		if epoch, err := strconv.ParseInt(resp.Header.Get("x-rate-limit-reset"), 10, 64); err == nil {
			if d := time.Unix(epoch, 0).Sub(c.clock.Now()); d > 0 {
				apiErr.resetIn = d
			}
		}
	}
	return apiErr
}

func classifyError(err error) retry.Action {
	apiErr, ok := asAPIError(err)
	if !ok {
		// Transport and decode failures are treated as transient.
		return retry.Retry
	}

	switch {
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return retry.After
	case apiErr.StatusCode >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

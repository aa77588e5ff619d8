package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/catalogsearch/pkg/errors"
)

// downstreamErrorResponse mirrors the error envelope returned by catalog services.
type downstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an error. Structured error bodies keep their message.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s: unexpected status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	message := string(bodyBytes)
	var downstream downstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) == nil && downstream.Error != nil {
		message = downstream.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: unexpected status %d: %w", serviceName, resp.StatusCode, apperrors.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s: unexpected status %d: %w", serviceName, resp.StatusCode, apperrors.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: unexpected status %d: %w", serviceName, resp.StatusCode, apperrors.ErrForbidden)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%s: unexpected status %d: %s: %w", serviceName, resp.StatusCode, message, apperrors.ErrServiceUnavail)
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", serviceName, resp.StatusCode, message)
	}
}

package error

import (
	"fmt"
	"net/http"
)

// UpstreamError carries the status and body returned by an external API
// (catalog or generation service) so callers can surface the real cause.
type UpstreamError struct {
	Service        string
	UpstreamStatus int
	UpstreamBody   string
}

func (err UpstreamError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", err.Service, err.UpstreamStatus, err.UpstreamBody)
}

func (err UpstreamError) ErrCode() string {
	if err.UpstreamStatus == http.StatusNotFound {
		return "NOT_FOUND_ERROR"
	}
	return "UPSTREAM_ERROR"
}

func (err UpstreamError) StatusCode() int {
	if err.UpstreamStatus == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

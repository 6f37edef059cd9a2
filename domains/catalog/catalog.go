package catalog

import (
	"context"
	"encoding/json"
)

// ProxyRequest is the logical request accepted by the catalog gateway.
// Endpoint is required; the remaining fields narrow the upstream URL.
type ProxyRequest struct {
	Endpoint    string `json:"endpoint" query:"endpoint"`
	ID          int64  `json:"id,omitempty" query:"id"`
	Query       string `json:"query,omitempty" query:"query"`
	List        string `json:"list,omitempty" query:"list"`
	Page        int    `json:"page,omitempty" query:"page"`
	ExtraParams string `json:"extra_params,omitempty" query:"extra_params"`

	// ForceRefresh bypasses the freshness check for this key.
	ForceRefresh bool `json:"force_refresh,omitempty" query:"force_refresh"`
}

type ICatalogUsecase interface {
	Proxy(ctx context.Context, request ProxyRequest) (json.RawMessage, error)
}

package cache

import "context"

type CacheStats struct {
	Entries   int    `json:"entries"`
	Fresh     int    `json:"fresh"`
	Stale     int    `json:"stale"`
	TotalSize int64  `json:"total_size"`
	HumanSize string `json:"human_size"`
}

type InvalidateRequest struct {
	Family string `json:"family,omitempty" form:"family"` // lists, search, details
	Key    string `json:"key,omitempty" form:"key"`
	Prefix string `json:"prefix,omitempty" form:"prefix"`
	Mode   string `json:"mode,omitempty" form:"mode"` // "" deletes entries, "bump" marks the family stale
}

type ICacheUsecase interface {
	GetStats(ctx context.Context) (map[string]CacheStats, error)
	Invalidate(ctx context.Context, request InvalidateRequest) error
	ClearAll(ctx context.Context) error
	StartBackgroundCleanup(ctx context.Context)
}

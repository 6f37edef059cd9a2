package recommend

import (
	"context"
	"time"
)

// MediaKind is the catalog media type ("movie" or "tv").
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

type Recommendation struct {
	Title       string    `json:"title"`
	MediaKind   MediaKind `json:"media_kind"`
	CatalogID   int64     `json:"catalog_id"`
	Rating      float64   `json:"rating,omitempty"`
	Overview    string    `json:"overview"`
	PosterPath  string    `json:"poster_path,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty"`
}

type RecommendRequest struct {
	UserID               string `json:"-"`
	Count                int    `json:"count" form:"count"`
	NaturalLanguageQuery string `json:"query" form:"query"`
}

type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Reasoning       string           `json:"reasoning,omitempty"`
	Source          string           `json:"source,omitempty"` // "fresh" or "cached"
	PendingCount    int              `json:"pending_count,omitempty"`
}

type ApplyResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Reasoning       string           `json:"reasoning"`
	Applied         bool             `json:"applied"`
}

type HistoryEntry struct {
	ID              string           `json:"id"`
	Query           string           `json:"query"`
	Recommendations []Recommendation `json:"recommendations"`
	Reasoning       string           `json:"reasoning,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Notifier receives the count of new items when a background refresh
// finds recommendations the user has not seen yet.
type Notifier interface {
	NotifyNewRecommendations(userID string, count int)
}

type IRecommendUsecase interface {
	// Recommend answers a natural-language query, always with a fresh
	// model call, and records the result in the user's history.
	Recommend(ctx context.Context, request RecommendRequest) (RecommendResponse, error)

	// ForYou serves the favorites-derived recommendation set, from the
	// persisted document when available, triggering a background refresh
	// whose delta is surfaced through ApplyPending.
	ForYou(ctx context.Context, userID string) (RecommendResponse, error)

	// RefreshForYou forces a fresh fetch, superseding any outstanding
	// background refresh.
	RefreshForYou(ctx context.Context, userID string) (RecommendResponse, error)

	// ApplyPending merges the pending delta into the currently displayed
	// list. With nothing pending it returns the input unchanged.
	ApplyPending(ctx context.Context, userID string, current []Recommendation) (ApplyResponse, error)

	ListHistory(ctx context.Context, userID string) ([]HistoryEntry, error)
	RemoveHistoryEntry(ctx context.Context, userID string, entryID string) error
	ClearHistory(ctx context.Context, userID string) error
}

package prefs

import (
	"context"
	"encoding/json"
	"time"
)

// MediaItem is the catalog item payload stored for favorites and
// watchlist entries. Payload carries the unmodified catalog document.
type MediaItem struct {
	CatalogID   int64           `json:"catalog_id"`
	Title       string          `json:"title"`
	MediaKind   string          `json:"media_kind"`
	PosterPath  string          `json:"poster_path,omitempty"`
	Overview    string          `json:"overview,omitempty"`
	Rating      float64         `json:"rating,omitempty"`
	ReleaseDate string          `json:"release_date,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	AddedAt     time.Time       `json:"added_at"`
}

type AddItemRequest struct {
	UserID      string          `json:"-"`
	CatalogID   int64           `json:"catalog_id"`
	Title       string          `json:"title"`
	MediaKind   string          `json:"media_kind"`
	PosterPath  string          `json:"poster_path,omitempty"`
	Overview    string          `json:"overview,omitempty"`
	Rating      float64         `json:"rating,omitempty"`
	ReleaseDate string          `json:"release_date,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

type IPrefsUsecase interface {
	AddFavorite(ctx context.Context, request AddItemRequest) (MediaItem, error)
	RemoveFavorite(ctx context.Context, userID string, catalogID int64) error
	ListFavorites(ctx context.Context, userID string) ([]MediaItem, error)
	IsFavorite(ctx context.Context, userID string, catalogID int64) (bool, error)

	AddToWatchlist(ctx context.Context, request AddItemRequest) (MediaItem, error)
	RemoveFromWatchlist(ctx context.Context, userID string, catalogID int64) error
	ListWatchlist(ctx context.Context, userID string) ([]MediaItem, error)
	IsInWatchlist(ctx context.Context, userID string, catalogID int64) (bool, error)
}

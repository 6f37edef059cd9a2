package guess

import "context"

type GuessRequest struct {
	ImageURL string `json:"image_url" form:"image_url"`
}

type Alternative struct {
	Title     string `json:"title"`
	MediaKind string `json:"media_kind"`
	Year      string `json:"year,omitempty"`
}

type GuessResponse struct {
	Title        string        `json:"title"`
	MediaKind    string        `json:"media_kind"`
	CatalogID    int64         `json:"catalog_id,omitempty"`
	Confidence   float64       `json:"confidence,omitempty"`
	Overview     string        `json:"overview,omitempty"`
	Year         string        `json:"year,omitempty"`
	PosterPath   string        `json:"poster_path,omitempty"`
	Reasoning    string        `json:"reasoning,omitempty"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

type IGuessUsecase interface {
	IdentifyFromImage(ctx context.Context, request GuessRequest) (GuessResponse, error)
}

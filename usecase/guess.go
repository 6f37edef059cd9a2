package usecase

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/novareel/novareel/core/config"
	domainGuess "github.com/novareel/novareel/domains/guess"
	"github.com/novareel/novareel/generation"
	"github.com/novareel/novareel/integrations/tmdb"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/validations"
)

type guessService struct {
	provider generation.Provider
	catalog  *tmdb.Client
	http     *resty.Client
}

func NewGuessService(provider generation.Provider, catalog *tmdb.Client, catalogCfg config.CatalogConfig) domainGuess.IGuessUsecase {
	return &guessService{
		provider: provider,
		catalog:  catalog,
		http:     resty.New().SetTimeout(catalogCfg.Timeout),
	}
}

var guessSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":      map[string]any{"type": "string"},
		"media_kind": map[string]any{"type": "string", "enum": []string{"movie", "tv"}},
		"confidence": map[string]any{"type": "number"},
		"year":       map[string]any{"type": "string"},
		"reasoning":  map[string]any{"type": "string"},
		"alternatives": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":      map[string]any{"type": "string"},
					"media_kind": map[string]any{"type": "string", "enum": []string{"movie", "tv"}},
					"year":       map[string]any{"type": "string"},
				},
				"required":             []string{"title", "media_kind"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"title", "media_kind", "confidence"},
	"additionalProperties": false,
}

// IdentifyFromImage downloads the image, asks the model to name the
// movie or show, then grounds the guess against the catalog.
func (service guessService) IdentifyFromImage(ctx context.Context, request domainGuess.GuessRequest) (domainGuess.GuessResponse, error) {
	if err := validations.ValidateGuess(ctx, request); err != nil {
		return domainGuess.GuessResponse{}, err
	}

	resp, err := service.http.R().SetContext(ctx).Get(request.ImageURL)
	if err != nil {
		return domainGuess.GuessResponse{}, pkgError.ValidationError("could not download image: " + err.Error())
	}
	if resp.IsError() {
		return domainGuess.GuessResponse{}, pkgError.ValidationError("could not download image: upstream returned " + resp.Status())
	}
	mimeType := resp.Header().Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}

	var result struct {
		Title        string  `json:"title"`
		MediaKind    string  `json:"media_kind"`
		Confidence   float64 `json:"confidence"`
		Year         string  `json:"year"`
		Reasoning    string  `json:"reasoning"`
		Alternatives []struct {
			Title     string `json:"title"`
			MediaKind string `json:"media_kind"`
			Year      string `json:"year"`
		} `json:"alternatives"`
	}
	err = service.provider.GenerateJSON(ctx, generation.Request{
		SystemPrompt: "You identify movies and TV shows from a single still image. Name the most likely title, a confidence between 0 and 1, and up to three alternatives.",
		UserPrompt:   "Identify the movie or TV show this image is from.",
		Images:       []generation.Image{{MIMEType: mimeType, Data: resp.Body()}},
		SchemaName:   "image_guess",
		Schema:       guessSchema,
	}, &result)
	if err != nil {
		return domainGuess.GuessResponse{}, pkgError.InternalError("image identification failed: " + err.Error())
	}
	if result.Title == "" {
		return domainGuess.GuessResponse{}, pkgError.InternalError("model produced no usable guess")
	}

	response := domainGuess.GuessResponse{
		Title:      result.Title,
		MediaKind:  result.MediaKind,
		Confidence: result.Confidence,
		Year:       result.Year,
		Reasoning:  result.Reasoning,
	}
	for _, alt := range result.Alternatives {
		response.Alternatives = append(response.Alternatives, domainGuess.Alternative{
			Title:     alt.Title,
			MediaKind: alt.MediaKind,
			Year:      alt.Year,
		})
	}

	matches, err := service.catalog.SearchMulti(ctx, result.Title)
	if err != nil {
		logrus.WithError(err).Warn("[GUESS] catalog lookup failed")
		return domainGuess.GuessResponse{}, err
	}
	match := pickCatalogMatch(matches, result.MediaKind, result.Year)
	if match == nil {
		return domainGuess.GuessResponse{}, pkgError.NotFoundError("no catalog match found for guess: " + result.Title)
	}

	response.CatalogID = match.ID
	response.Overview = match.Overview
	response.PosterPath = match.PosterPath
	if response.Year == "" {
		response.Year = match.Year()
	}
	return response, nil
}

// pickCatalogMatch prefers a result of the guessed kind and year.
func pickCatalogMatch(results []tmdb.SearchResult, mediaKind, year string) *tmdb.SearchResult {
	if len(results) == 0 {
		return nil
	}
	for i := range results {
		if results[i].MediaType == mediaKind && (year == "" || results[i].Year() == year) {
			return &results[i]
		}
	}
	for i := range results {
		if results[i].MediaType == mediaKind {
			return &results[i]
		}
	}
	return &results[0]
}

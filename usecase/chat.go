package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domainCatalog "github.com/novareel/novareel/domains/catalog"
	domainChat "github.com/novareel/novareel/domains/chat"
	"github.com/novareel/novareel/generation"
	"github.com/novareel/novareel/integrations/tmdb"
	pkgError "github.com/novareel/novareel/pkg/error"
	"github.com/novareel/novareel/validations"
)

const (
	maxReviewsInPrompt = 8
	maxReviewExcerpt   = 1200
)

type chatService struct {
	provider generation.Provider
	catalog  *tmdb.Client
}

// NewChatService wires the review conversation flow to the model
// provider and the catalog client that supplies its grounding data.
func NewChatService(provider generation.Provider, catalog *tmdb.Client) domainChat.IChatUsecase {
	return &chatService{
		provider: provider,
		catalog:  catalog,
	}
}

var chatSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"response": map[string]any{"type": "string"},
	},
	"required":             []string{"response"},
	"additionalProperties": false,
}

// ReviewChat answers one conversational turn about a title, grounded
// in that title's audience reviews. The conversation itself lives on
// the client; each call carries the history it wants considered.
func (service chatService) ReviewChat(ctx context.Context, request domainChat.ChatRequest) (domainChat.ChatResponse, error) {
	if err := validations.ValidateReviewChat(ctx, request); err != nil {
		return domainChat.ChatResponse{}, err
	}

	title, overview, err := service.lookupMedia(ctx, request.MediaKind, request.MediaID)
	if err != nil {
		return domainChat.ChatResponse{}, err
	}
	reviews, err := service.catalog.Reviews(ctx, request.MediaKind, request.MediaID)
	if err != nil {
		return domainChat.ChatResponse{}, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s (%s)\n", title, request.MediaKind)
	if overview != "" {
		fmt.Fprintf(&sb, "Overview: %s\n", overview)
	}
	if len(reviews) == 0 {
		sb.WriteString("No audience reviews are available for this title; say so when asked about them.\n")
	} else {
		sb.WriteString("Audience reviews:\n")
		if len(reviews) > maxReviewsInPrompt {
			reviews = reviews[:maxReviewsInPrompt]
		}
		for _, review := range reviews {
			excerpt := review.Content
			if len(excerpt) > maxReviewExcerpt {
				excerpt = excerpt[:maxReviewExcerpt]
			}
			if review.Rating > 0 {
				fmt.Fprintf(&sb, "- %s (rated %.0f/10): %s\n", review.Author, review.Rating, excerpt)
			} else {
				fmt.Fprintf(&sb, "- %s: %s\n", review.Author, excerpt)
			}
		}
	}
	if len(request.ChatHistory) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, message := range request.ChatHistory {
			speaker := "User"
			if message.Role == "model" {
				speaker = "Assistant"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, message.Text)
		}
	}
	fmt.Fprintf(&sb, "User: %s", request.Message)

	var result struct {
		Response string `json:"response"`
	}
	err = service.provider.GenerateJSON(ctx, generation.Request{
		SystemPrompt: "You discuss one movie or TV show with the user, grounded in its audience reviews. Answer concisely and base claims about reception on the reviews provided.",
		UserPrompt:   sb.String(),
		SchemaName:   "review_chat",
		Schema:       chatSchema,
	}, &result)
	if err != nil {
		return domainChat.ChatResponse{}, pkgError.InternalError("review chat generation failed: " + err.Error())
	}

	return domainChat.ChatResponse{Response: result.Response}, nil
}

func (service chatService) lookupMedia(ctx context.Context, mediaKind string, mediaID int64) (title, overview string, err error) {
	raw, err := service.catalog.Fetch(ctx, domainCatalog.ProxyRequest{Endpoint: mediaKind, ID: mediaID})
	if err != nil {
		return "", "", err
	}
	var detail struct {
		Title    string `json:"title"`
		Name     string `json:"name"`
		Overview string `json:"overview"`
	}
	if err := json.Unmarshal(raw, &detail); err != nil {
		return "", "", pkgError.InternalError("malformed catalog response: " + err.Error())
	}
	title = detail.Title
	if title == "" {
		title = detail.Name
	}
	return title, detail.Overview, nil
}

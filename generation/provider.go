package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/novareel/novareel/core/config"
)

// Image is an inline image attachment for multimodal prompts.
type Image struct {
	MIMEType string
	Data     []byte
}

// Tool is a function the model may invoke mid-generation. Parameters
// is a JSON schema; Call runs the function and returns the payload fed
// back to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Call        func(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Request describes one structured-output generation: a prompt, an
// expected JSON schema and optionally images and callable tools.
type Request struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Images       []Image
	Tools        []Tool
	SchemaName   string
	Schema       map[string]any
}

// Provider is a hosted model backend producing schema-conforming JSON.
type Provider interface {
	GenerateJSON(ctx context.Context, request Request, out any) error
}

// Tool invocations per generation are bounded so a looping model stops.
const maxToolIterations = 5

// NewProvider builds the configured backend.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		return NewGeminiProvider(cfg), nil
	case "openai":
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

func findTool(tools []Tool, name string) *Tool {
	for i := range tools {
		if tools[i].Name == name {
			return &tools[i]
		}
	}
	return nil
}

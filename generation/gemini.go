package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/novareel/novareel/core/config"
)

// GeminiProvider is the adapter for the Google Gemini API.
type GeminiProvider struct {
	apiKey       string
	defaultModel string
}

func NewGeminiProvider(cfg config.AIConfig) *GeminiProvider {
	return &GeminiProvider{
		apiKey:       cfg.GeminiAPIKey,
		defaultModel: cfg.Model,
	}
}

func (p *GeminiProvider) GenerateJSON(ctx context.Context, request Request, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("gemini provider has no API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return err
	}

	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	parts := []*genai.Part{{Text: request.UserPrompt}}
	for _, img := range request.Images {
		if len(img.Data) > 0 {
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
			})
		}
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	var systemInstruction *genai.Content
	if request.SystemPrompt != "" {
		systemInstruction = genai.NewContentFromText(request.SystemPrompt, "")
	}

	// Tool phase: let the model ground itself before the structured
	// final answer. Gemini does not combine function calling with a
	// response schema, so the schema is applied in a separate last call.
	if len(request.Tools) > 0 {
		var functionDecls []*genai.FunctionDeclaration
		for _, t := range request.Tools {
			functionDecls = append(functionDecls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  p.convertSchema(t.Parameters),
			})
		}
		toolConfig := &genai.GenerateContentConfig{
			SystemInstruction: systemInstruction,
			Tools:             []*genai.Tool{{FunctionDeclarations: functionDecls}},
		}

		for i := 0; i < maxToolIterations; i++ {
			result, err := p.generateContentWithRetry(ctx, client, model, contents, toolConfig)
			if err != nil {
				return err
			}
			if len(result.Candidates) == 0 {
				return fmt.Errorf("no response from gemini")
			}
			candidate := result.Candidates[0]

			var calls []*genai.FunctionCall
			for _, part := range candidate.Content.Parts {
				if part.FunctionCall != nil {
					calls = append(calls, part.FunctionCall)
				}
			}
			if len(calls) == 0 {
				contents = append(contents, candidate.Content)
				break
			}

			contents = append(contents, candidate.Content)
			responseParts := make([]*genai.Part, 0, len(calls))
			for _, call := range calls {
				tool := findTool(request.Tools, call.Name)
				var response map[string]any
				if tool == nil {
					response = map[string]any{"error": "unknown tool: " + call.Name}
				} else if data, err := tool.Call(ctx, call.Args); err != nil {
					logrus.WithError(err).WithField("tool", call.Name).Warn("[GEMINI] tool call failed")
					response = map[string]any{"error": err.Error()}
				} else {
					response = data
				}
				responseParts = append(responseParts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       call.ID,
						Name:     call.Name,
						Response: response,
					},
				})
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: responseParts})
		}

		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: "Now produce the final answer in the required JSON format."}},
		})
	}

	finalConfig := &genai.GenerateContentConfig{
		SystemInstruction:  systemInstruction,
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: p.convertSchema(request.Schema),
	}

	result, err := p.generateContentWithRetry(ctx, client, model, contents, finalConfig)
	if err != nil {
		return err
	}
	if len(result.Candidates) == 0 {
		return fmt.Errorf("no response from gemini")
	}

	if result.UsageMetadata != nil {
		logrus.WithFields(logrus.Fields{
			"model":         model,
			"input_tokens":  result.UsageMetadata.PromptTokenCount,
			"output_tokens": result.UsageMetadata.CandidatesTokenCount,
		}).Debug("[GEMINI] generation completed")
	}

	if err := json.Unmarshal([]byte(result.Text()), out); err != nil {
		return fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return nil
}

func (p *GeminiProvider) convertSchema(input map[string]any) *genai.Schema {
	data, _ := json.Marshal(input)
	var schema genai.Schema
	json.Unmarshal(data, &schema)
	if schema.Type == "" {
		schema.Type = "object"
	}
	return &schema
}

func (p *GeminiProvider) generateContentWithRetry(ctx context.Context, client *genai.Client, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	for i := 0; i < 3; i++ {
		result, err := client.Models.GenerateContent(ctx, model, contents, cfg)
		if err == nil {
			return result, nil
		}
		if strings.Contains(err.Error(), "503") {
			time.Sleep(time.Duration(1<<uint(i)) * time.Second)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("max retries exceeded")
}

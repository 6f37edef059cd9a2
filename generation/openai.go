package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"github.com/novareel/novareel/core/config"
)

// OpenAIProvider is the adapter for the OpenAI API.
type OpenAIProvider struct {
	apiKey       string
	defaultModel string
}

func NewOpenAIProvider(cfg config.AIConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = "gpt-4o"
	}
	return &OpenAIProvider{
		apiKey:       cfg.OpenAIAPIKey,
		defaultModel: model,
	}
}

func (p *OpenAIProvider) GenerateJSON(ctx context.Context, request Request, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("openai provider has no API key")
	}

	client := openai.NewClient(option.WithAPIKey(p.apiKey))

	model := request.Model
	if model == "" {
		model = p.defaultModel
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if request.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(request.SystemPrompt))
	}

	if len(request.Images) > 0 {
		var contentParts []openai.ChatCompletionContentPartUnionParam
		contentParts = append(contentParts, openai.TextContentPart(request.UserPrompt))
		for _, img := range request.Images {
			dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
			contentParts = append(contentParts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: dataURL,
			}))
		}
		messages = append(messages, openai.UserMessage(contentParts))
	} else {
		messages = append(messages, openai.UserMessage(request.UserPrompt))
	}

	var tools []openai.ChatCompletionToolUnionParam
	for _, t := range request.Tools {
		tools = append(tools, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  openai.FunctionParameters(t.Parameters),
				},
			},
		})
	}

	schemaName := request.SchemaName
	if schemaName == "" {
		schemaName = "result"
	}
	responseFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   schemaName,
				Schema: any(request.Schema),
				Strict: openai.Bool(true),
			},
		},
	}

	for i := 0; i < maxToolIterations; i++ {
		params := openai.ChatCompletionNewParams{
			Model:          openai.ChatModel(model),
			Messages:       messages,
			ResponseFormat: responseFormat,
		}
		if len(tools) > 0 {
			params.Tools = tools
		}

		completion, err := client.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		if len(completion.Choices) == 0 {
			return fmt.Errorf("no response from openai")
		}
		choice := completion.Choices[0]

		if len(choice.Message.ToolCalls) == 0 {
			logrus.WithFields(logrus.Fields{
				"model":         model,
				"input_tokens":  completion.Usage.PromptTokens,
				"output_tokens": completion.Usage.CompletionTokens,
			}).Debug("[OPENAI] generation completed")
			if err := json.Unmarshal([]byte(choice.Message.Content), out); err != nil {
				return fmt.Errorf("failed to parse model JSON: %w", err)
			}
			return nil
		}

		messages = append(messages, choice.Message.ToParam())
		for _, tc := range choice.Message.ToolCalls {
			var args map[string]any
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)

			tool := findTool(request.Tools, tc.Function.Name)
			var response map[string]any
			if tool == nil {
				response = map[string]any{"error": "unknown tool: " + tc.Function.Name}
			} else if data, err := tool.Call(ctx, args); err != nil {
				logrus.WithError(err).WithField("tool", tc.Function.Name).Warn("[OPENAI] tool call failed")
				response = map[string]any{"error": err.Error()}
			} else {
				response = data
			}
			data, _ := json.Marshal(response)
			messages = append(messages, openai.ToolMessage(string(data), tc.ID))
		}
	}
	return fmt.Errorf("max tool iterations exceeded")
}

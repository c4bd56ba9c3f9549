package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-product-insight/internal/config"
	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/extraction"
	"go-product-insight/internal/schema"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const maxTokens = 4096

// Client sends the image as a data URI and asks for a reply matching the contract's JSON schema.
type Client struct {
	*openai.Client
	Model string
}

var _ extraction.Model = (*Client)(nil)

func NewClient(cnf config.OpenAI) (*Client, error) {
	if cnf.ApiKey == "" {
		return nil, fmt.Errorf("openai: api key is not set")
	}

	clientConfig := openai.DefaultConfig(cnf.ApiKey)
	if cnf.BaseURL != "" {
		clientConfig.BaseURL = cnf.BaseURL
	}
	return &Client{Client: openai.NewClientWithConfig(clientConfig), Model: cnf.Model}, nil
}

func (c *Client) Name() string {
	return c.Model
}

func (c *Client) Generate(ctx context.Context, p extraction.Prompt) ([]byte, error) {
	jsonSchema, err := json.Marshal(schema.JSONSchema(p.Contract))
	if err != nil {
		return nil, ierr.NewExtractionError(ierr.KindInvalidRequest, err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   p.SchemaName,
				Schema: json.RawMessage(jsonSchema),
				Strict: false,
			},
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: p.Instructions},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    p.ImageURI,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(c.Model, "o1") || strings.HasPrefix(c.Model, "o3") || strings.HasPrefix(c.Model, "o4") || strings.HasPrefix(c.Model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 {
		return nil, ierr.NewExtractionError(ierr.KindInvalidResponse, fmt.Errorf("no response from OpenAI"))
	}

	log.Info().
		Str("model", c.Model).
		Int("inputTokens", resp.Usage.PromptTokens).
		Int("outputTokens", resp.Usage.CompletionTokens).
		Msg("vision llm call")

	return []byte(resp.Choices[0].Message.Content), nil
}

func classify(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ierr.NewExtractionError(ierr.KindAuth, err)
	case http.StatusTooManyRequests:
		return ierr.NewExtractionError(ierr.KindRateLimit, err)
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return ierr.NewExtractionError(ierr.KindInvalidRequest, err)
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ierr.NewExtractionError(ierr.KindTimeout, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ierr.NewExtractionError(ierr.KindTimeout, err)
	}
	return ierr.NewExtractionError(ierr.KindTransport, err)
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-product-insight/internal/config"
	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/extraction"
	"go-product-insight/internal/schema"
	"go-product-insight/internal/utils"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Client runs extraction prompts against the Gemini API with a response schema.
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ extraction.Model = (*Client)(nil)

func New(ctx context.Context, cnf config.Gemini) (*Client, error) {
	if cnf.ApiKey == "" {
		return nil, fmt.Errorf("gemini: api key is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cnf.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, model: cnf.Model, temperature: cnf.Temperature}, nil
}

func (c *Client) Name() string {
	return c.model
}

func (c *Client) Generate(ctx context.Context, p extraction.Prompt) ([]byte, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(p.Instructions),
		genai.NewPartFromBytes(p.Image.Data, p.Image.MIMEType),
	}

	cnf := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ToSchema(p.Contract),
		Temperature:      utils.Float32ToPointer(c.temperature),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, cnf)
	if err != nil {
		return nil, classify(err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, ierr.NewExtractionError(ierr.KindInvalidResponse, fmt.Errorf("empty response from gemini"))
	}

	if result.UsageMetadata != nil {
		log.Info().
			Str("model", c.model).
			Int64("inputTokens", int64(result.UsageMetadata.PromptTokenCount)).
			Int64("outputTokens", int64(result.UsageMetadata.CandidatesTokenCount)).
			Msg("vision llm call")
	}

	return []byte(result.Text()), nil
}

// ToSchema converts an output contract into a Gemini response schema.
func ToSchema(f schema.Field) *genai.Schema {
	s := &genai.Schema{Description: f.Description}
	if f.Optional {
		s.Nullable = utils.BoolToPointer(true)
	}

	switch f.Kind {
	case schema.String:
		s.Type = genai.TypeString
		if len(f.Enum) > 0 {
			s.Format = "enum"
			s.Enum = f.Enum
		}
	case schema.Array:
		s.Type = genai.TypeArray
		if f.Items != nil {
			s.Items = ToSchema(*f.Items)
		}
	case schema.Object:
		s.Type = genai.TypeObject
		s.Properties = make(map[string]*genai.Schema, len(f.Fields))
		s.PropertyOrdering = make([]string, 0, len(f.Fields))
		for _, child := range f.Fields {
			s.Properties[child.Name] = ToSchema(child)
			s.PropertyOrdering = append(s.PropertyOrdering, child.Name)
		}
		s.Required = f.Required()
	}

	return s
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ierr.NewExtractionError(ierr.KindAuth, err)
		case http.StatusTooManyRequests:
			return ierr.NewExtractionError(ierr.KindRateLimit, err)
		case http.StatusBadRequest:
			return ierr.NewExtractionError(ierr.KindInvalidRequest, err)
		case http.StatusGatewayTimeout:
			return ierr.NewExtractionError(ierr.KindTimeout, err)
		}
		return ierr.NewExtractionError(ierr.KindTransport, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ierr.NewExtractionError(ierr.KindTimeout, err)
	}
	return ierr.NewExtractionError(ierr.KindTransport, err)
}

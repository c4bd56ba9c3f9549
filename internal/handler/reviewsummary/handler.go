package reviewsummary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/extraction"
	gpt "go-product-insight/internal/gpt"
	"go-product-insight/internal/schema"

	"github.com/rs/zerolog/log"
)

var ErrNoReviews = errors.New("no reviews to summarize")

// Completion sends one instruction and prompt to a chat model and returns its reply.
type Completion func(ctx context.Context, instruction, prompt string) (string, error)

type TokenCounter interface {
	CountTokens(s string) int
}

func GPTCompletion(factory gpt.ClientFactory) Completion {
	return func(ctx context.Context, instruction, prompt string) (string, error) {
		gptClient, err := factory.Client()
		if err != nil {
			return "", err
		}

		gptClient.Instruct(instruction)
		return gptClient.Prompt(ctx, prompt)
	}
}

type Handler struct {
	complete  Completion
	tokenizer TokenCounter
	maxTokens int
}

func New(complete Completion, tokenizer TokenCounter, maxTokens int) *Handler {
	return &Handler{
		complete:  complete,
		tokenizer: tokenizer,
		maxTokens: maxTokens,
	}
}

// Summarize condenses free-form review text into a validated summary.
func (h *Handler) Summarize(ctx context.Context, reviews string) (schema.ReviewSummary, error) {
	reviews = strings.TrimSpace(reviews)
	if reviews == "" {
		return schema.ReviewSummary{}, ErrNoReviews
	}

	tokens := h.tokenizer.CountTokens(reviews)
	if h.maxTokens > 0 && tokens > h.maxTokens {
		return schema.ReviewSummary{}, &ierr.LimitExceeded{What: "review tokens", Limit: h.maxTokens}
	}

	instruction := fmt.Sprintf(REVIEW_SUMMARY_INSTRUCTION, schema.Describe(schema.ReviewSummaryContract), reviews)
	response, err := h.complete(ctx, instruction, "")
	if err != nil {
		log.Error().Err(err).Msg("review summary handler: completion failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return schema.ReviewSummary{}, ierr.NewExtractionError(ierr.KindTimeout, err)
		}
		return schema.ReviewSummary{}, ierr.NewExtractionError(ierr.KindTransport, err)
	}

	summary := schema.ReviewSummary{}
	if err := schema.ValidateInto(schema.ReviewSummaryContract, extraction.TrimJSON([]byte(response)), &summary); err != nil {
		log.Error().Err(err).Msg("review summary handler: response rejected")
		return schema.ReviewSummary{}, ierr.NewExtractionError(ierr.KindInvalidResponse, err)
	}

	log.Debug().Int("tokens", tokens).Msg("reviews summarized")
	return summary, nil
}

package reviewsummary

import (
	"context"
	"errors"
	"strings"
	"testing"

	ierr "go-product-insight/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordCounter stands in for the tiktoken tokenizer, which downloads its encoding on first use.
type wordCounter struct{}

func (wordCounter) CountTokens(s string) int {
	return len(strings.Fields(s))
}

func reply(response string, err error) (Completion, *string) {
	var instruction string
	return func(ctx context.Context, in, prompt string) (string, error) {
		instruction = in
		return response, err
	}, &instruction
}

func TestSummarize(t *testing.T) {
	complete, instruction := reply("```json\n{\"summary\": \"Gentle and hydrating.\"}\n```", nil)
	h := New(complete, wordCounter{}, 100)

	summary, err := h.Summarize(context.Background(), "Love it ~ Very gentle on skin")
	require.NoError(t, err)
	assert.Equal(t, "Gentle and hydrating.", summary.Summary)
	assert.Contains(t, *instruction, "<rev>Love it ~ Very gentle on skin</rev>")
	assert.Contains(t, *instruction, "- summary (string)")
}

func TestSummarizeErrors(t *testing.T) {
	tests := []struct {
		name     string
		reviews  string
		response string
		err      error
		check    func(t *testing.T, err error)
	}{
		{
			name:    "empty input",
			reviews: "   ",
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoReviews) },
		},
		{
			name:    "over token budget",
			reviews: "one two three four five six",
			check: func(t *testing.T, err error) {
				var limitErr *ierr.LimitExceeded
				require.ErrorAs(t, err, &limitErr)
				assert.Equal(t, 5, limitErr.Limit)
			},
		},
		{
			name:     "reply outside the contract",
			reviews:  "fine",
			response: `{"verdict": null}`,
			check: func(t *testing.T, err error) {
				assert.Equal(t, ierr.KindInvalidResponse, ierr.KindOf(err))
				var validationErr *ierr.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "verdict", validationErr.Path)
			},
		},
		{
			name:    "model unavailable",
			reviews: "fine",
			err:     errors.New("502 bad gateway"),
			check:   func(t *testing.T, err error) { assert.Equal(t, ierr.KindTransport, ierr.KindOf(err)) },
		},
		{
			name:    "model timeout",
			reviews: "fine",
			err:     context.DeadlineExceeded,
			check:   func(t *testing.T, err error) { assert.Equal(t, ierr.KindTimeout, ierr.KindOf(err)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, _ := reply(tt.response, tt.err)
			_, err := New(complete, wordCounter{}, 5).Summarize(context.Background(), tt.reviews)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

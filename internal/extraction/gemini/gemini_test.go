package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToSchema(t *testing.T) {
	s := ToSchema(schema.AnalysisResultContract)

	require.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{
		"productDetails", "ingredientAnalysis", "safetyAssessment", "userSentimentAnalysis",
		"usageInstructions", "expiryInformation", "recommendations",
	}, s.PropertyOrdering)
	assert.ElementsMatch(t, s.PropertyOrdering, s.Required)

	ingredients := s.Properties["ingredientAnalysis"]
	require.NotNil(t, ingredients)
	assert.Equal(t, genai.TypeArray, ingredients.Type)
	require.NotNil(t, ingredients.Items)

	item := ingredients.Items
	assert.NotContains(t, item.Required, "quantity")
	require.NotNil(t, item.Properties["quantity"].Nullable)
	assert.True(t, *item.Properties["quantity"].Nullable)

	rating := item.Properties["safetyRating"]
	assert.Equal(t, genai.TypeString, rating.Type)
	assert.Equal(t, "enum", rating.Format)
	assert.Equal(t, []string{"Safe", "Caution", "Warning"}, rating.Enum)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ierr.ExtractionKind
	}{
		{"unauthorized", genai.APIError{Code: 401, Message: "bad key"}, ierr.KindAuth},
		{"forbidden", genai.APIError{Code: 403}, ierr.KindAuth},
		{"quota", fmt.Errorf("generate: %w", genai.APIError{Code: 429}), ierr.KindRateLimit},
		{"bad request", genai.APIError{Code: 400}, ierr.KindInvalidRequest},
		{"server", genai.APIError{Code: 503}, ierr.KindTransport},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), ierr.KindTimeout},
		{"network", errors.New("connection reset"), ierr.KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			assert.Equal(t, tt.want, ierr.KindOf(err))

			var extractionErr *ierr.ExtractionError
			require.ErrorAs(t, err, &extractionErr)
			assert.Equal(t, tt.err, extractionErr.Err)
		})
	}
}

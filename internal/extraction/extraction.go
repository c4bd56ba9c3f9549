package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/model"
	"go-product-insight/internal/schema"

	"github.com/rs/zerolog/log"
)

// Prompt is a single request to a generative model.
type Prompt struct {
	Instructions string
	SchemaName   string
	Contract     schema.Field
	Image        model.Image
	// ImageURI is the original data URI of Image
	ImageURI string
}

// Model is implemented by the generative model providers. Generate returns the raw
// JSON text of the reply; transport failures should be returned as *ierr.ExtractionError.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt) ([]byte, error)
}

type Extractor interface {
	Extract(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResult, error)
}

// Invoker sends one image to the model and validates the reply. It never retries.
type Invoker struct {
	model        Model
	timeout      time.Duration
	instructions string
}

var _ Extractor = (*Invoker)(nil)

func NewInvoker(m Model, timeout time.Duration) *Invoker {
	return &Invoker{
		model:        m,
		timeout:      timeout,
		instructions: Instructions(),
	}
}

// Instructions renders the fixed extraction instructions including the field guidance.
func Instructions() string {
	return fmt.Sprintf(PRODUCT_ANALYSIS_INSTRUCTION, schema.Describe(schema.AnalysisResultContract))
}

func (i *Invoker) Extract(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResult, error) {
	img, err := req.Decode()
	if err != nil {
		return model.AnalysisResult{}, ierr.NewExtractionError(ierr.KindInvalidRequest, err)
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := i.model.Generate(ctx, Prompt{
		Instructions: i.instructions,
		SchemaName:   productAnalysisSchemaName,
		Contract:     schema.AnalysisResultContract,
		Image:        img,
		ImageURI:     req.Image,
	})
	if err != nil {
		err = classify(ctx, err)
		log.Error().Err(err).Str("model", i.model.Name()).Str("file", req.Filename).Msg("extraction call failed")
		return model.AnalysisResult{}, err
	}

	result, err := schema.Validate(TrimJSON(raw))
	if err != nil {
		log.Error().Err(err).Str("model", i.model.Name()).Str("file", req.Filename).Msg("extraction response rejected")
		return model.AnalysisResult{}, ierr.NewExtractionError(ierr.KindInvalidResponse, err)
	}

	log.Debug().
		Str("model", i.model.Name()).
		Str("file", req.Filename).
		Int("ingredients", len(result.IngredientAnalysis)).
		Dur("took", time.Since(start)).
		Msg("product extracted")

	return result, nil
}

// classify makes sure every provider failure leaves as an ExtractionError.
func classify(ctx context.Context, err error) error {
	var extractionErr *ierr.ExtractionError
	if errors.As(err, &extractionErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ierr.NewExtractionError(ierr.KindTimeout, err)
	}
	return ierr.NewExtractionError(ierr.KindTransport, err)
}

// TrimJSON strips markdown code fences and surrounding prose from a JSON object reply.
func TrimJSON(raw []byte) []byte {
	text := strings.TrimSpace(string(raw))
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return []byte(text)
	}
	return []byte(text[start : end+1])
}

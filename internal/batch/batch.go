package batch

import (
	"context"
	"fmt"
	"time"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/extraction"
	"go-product-insight/internal/model"
	"go-product-insight/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// KindStore marks an item whose analysis succeeded but could not be persisted.
const KindStore = "store"

type Store interface {
	Append(ctx context.Context, record model.ProductRecord) (model.ProductRecord, error)
}

// Retainer is implemented by extractors that keep validated results around
// after the call, e.g. the analysis cache.
type Retainer interface {
	Retained(ctx context.Context, req model.AnalysisRequest) bool
}

// Releaser is implemented by extractors that retain results until told the
// record is persisted.
type Releaser interface {
	Release(ctx context.Context, req model.AnalysisRequest)
}

type Failure struct {
	Index    int    `json:"index"`
	Filename string `json:"filename,omitempty"`
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
	// Retryable is set when resubmitting the image will not call the model again.
	Retryable bool `json:"retryable,omitempty"`
}

type Result struct {
	BatchID   uuid.UUID             `json:"batchId"`
	Succeeded []model.ProductRecord `json:"succeeded"`
	Failed    []Failure             `json:"failed"`
}

func (r Result) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", len(r.Succeeded), len(r.Failed))
}

type Orchestrator struct {
	extractor extraction.Extractor
	store     Store
	now       func() time.Time
}

func New(extractor extraction.Extractor, store Store) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		store:     store,
		now:       time.Now,
	}
}

type outcome struct {
	record  *model.ProductRecord
	failure *Failure
}

// Run analyzes every request concurrently and persists each success as soon as it
// is available. Items never affect each other; the returned error is only set when
// the batch as a whole is rejected before anything starts.
func (o *Orchestrator) Run(ctx context.Context, reqs []model.AnalysisRequest) (Result, error) {
	if len(reqs) > model.MaxBatchSize {
		return Result{}, &ierr.LimitExceeded{What: "batch size", Limit: model.MaxBatchSize}
	}

	uid := session.UserID(ctx)
	if uid == "" {
		return Result{}, ierr.NewStoreError("append", ierr.ErrNoPartition)
	}

	// in-flight items finish even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	result := Result{
		BatchID:   uuid.New(),
		Succeeded: []model.ProductRecord{},
		Failed:    []Failure{},
	}
	logger := log.With().Str("batch", result.BatchID.String()).Str("user", uid).Logger()
	logger.Info().Int("items", len(reqs)).Msg("batch started")

	start := time.Now()
	outcomes := make([]outcome, len(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			outcomes[i] = o.process(ctx, i, req)
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		if out.failure != nil {
			logger.Warn().
				Int("index", out.failure.Index).
				Str("file", out.failure.Filename).
				Str("kind", out.failure.Kind).
				Msg(out.failure.Reason)
			result.Failed = append(result.Failed, *out.failure)
			continue
		}
		result.Succeeded = append(result.Succeeded, *out.record)
	}

	logger.Info().
		Int("succeeded", len(result.Succeeded)).
		Int("failed", len(result.Failed)).
		Dur("took", time.Since(start)).
		Msg("batch finished")

	return result, nil
}

func (o *Orchestrator) process(ctx context.Context, index int, req model.AnalysisRequest) outcome {
	fail := func(kind string, err error) outcome {
		return outcome{failure: &Failure{Index: index, Filename: req.Filename, Kind: kind, Reason: err.Error()}}
	}

	// upstream validation may be relaxed, never send an unacceptable image to the model
	if _, err := req.Decode(); err != nil {
		return fail(string(ierr.KindInvalidRequest), err)
	}

	analysis, err := o.extractor.Extract(ctx, req)
	if err != nil {
		kind := ierr.KindOf(err)
		if kind == "" {
			kind = ierr.KindTransport
		}
		return fail(string(kind), err)
	}

	record, err := o.store.Append(ctx, model.NewProductRecord(analysis, req.Image, o.now()))
	if err != nil {
		out := fail(KindStore, err)
		if r, ok := o.extractor.(Retainer); ok {
			out.failure.Retryable = r.Retained(ctx, req)
		}
		return out
	}

	if r, ok := o.extractor.(Releaser); ok {
		r.Release(ctx, req)
	}
	return outcome{record: &record}
}

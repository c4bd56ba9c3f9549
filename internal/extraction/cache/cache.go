package cache

import (
	"context"
	"encoding/json"

	"go-product-insight/internal/extraction"
	"go-product-insight/internal/model"
	"go-product-insight/internal/session"
	"go-product-insight/internal/utils"

	"github.com/rs/zerolog/log"
)

type Store interface {
	Get(ctx context.Context, imageHash string) (*model.AnalysisResult, error)
	Set(ctx context.Context, imageHash string, raw []byte) error
	Delete(ctx context.Context, imageHash string) error
}

// CachedExtractor wraps an Extractor and holds each validated result until the
// caller releases it, normally once the record is persisted. An entry that is never
// released (the append failed) answers the next submission of the same image by
// the same user without another model call. Entries are never shared across users.
type CachedExtractor struct {
	inner extraction.Extractor
	store Store
}

var _ extraction.Extractor = (*CachedExtractor)(nil)

func NewCachedExtractor(inner extraction.Extractor, store Store) *CachedExtractor {
	return &CachedExtractor{inner: inner, store: store}
}

func (c *CachedExtractor) Extract(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResult, error) {
	if c.store == nil {
		return c.inner.Extract(ctx, req)
	}

	hash := key(ctx, req)
	if cached := c.lookup(ctx, hash); cached != nil {
		log.Debug().Str("hash", hash[:16]).Str("file", req.Filename).Msg("analysis cache hit")
		return *cached, nil
	}

	result, err := c.inner.Extract(ctx, req)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode analysis for cache")
		return result, nil
	}
	if err := c.store.Set(ctx, hash, raw); err != nil {
		log.Warn().Err(err).Msg("failed to cache analysis result")
	}

	return result, nil
}

// Retained reports whether a result for the request's image is cached, so a
// failed persistence can be retried without another model call.
func (c *CachedExtractor) Retained(ctx context.Context, req model.AnalysisRequest) bool {
	return c.lookup(ctx, key(ctx, req)) != nil
}

// Release drops the retained result for the request's image, so a later
// submission is analyzed afresh.
func (c *CachedExtractor) Release(ctx context.Context, req model.AnalysisRequest) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, key(ctx, req)); err != nil {
		log.Warn().Err(err).Msg("failed to release cached analysis")
	}
}

func key(ctx context.Context, req model.AnalysisRequest) string {
	return utils.Hash(session.UserID(ctx) + "\x00" + req.Image)
}

func (c *CachedExtractor) lookup(ctx context.Context, hash string) *model.AnalysisResult {
	if c.store == nil {
		return nil
	}

	cached, err := c.store.Get(ctx, hash)
	if err != nil {
		log.Warn().Err(err).Msg("failed to check analysis cache")
		return nil
	}
	return cached
}

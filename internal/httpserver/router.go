package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-product-insight/internal/batch"
	"go-product-insight/internal/config"
	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/model"
	"go-product-insight/internal/schema"
	"go-product-insight/internal/session"
	"go-product-insight/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

const (
	// every file at the size ceiling plus room for the multipart framing
	maxUploadBytes = model.MaxBatchSize*model.MaxImageBytes + 1<<20
	maxJSONBytes   = 1 << 20
	formMemory     = 32 << 20
)

type BatchRunner interface {
	Run(ctx context.Context, reqs []model.AnalysisRequest) (batch.Result, error)
}

type RecordStore interface {
	List(ctx context.Context) ([]model.ProductRecord, error)
	GetById(ctx context.Context, id string) (*model.ProductRecord, error)
	Delete(ctx context.Context, id string) error
}

type Comparison interface {
	Toggle(uid, id string, selected bool) error
	Remove(uid, id string)
	Materialize(uid string, all []model.ProductRecord) []model.ProductRecord
}

type ReviewSummarizer interface {
	Summarize(ctx context.Context, reviews string) (schema.ReviewSummary, error)
}

type Deps struct {
	Batches    BatchRunner
	Records    RecordStore
	Comparison Comparison
	// Reviews is optional; the summary route answers 404 without it.
	Reviews  ReviewSummarizer
	Verifier TokenVerifier
}

type Router struct {
	Deps
}

func NewRouter(deps Deps, cnf config.Server) http.Handler {
	r := &Router{Deps: deps}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(Logging)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cnf.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(Authenticate(deps.Verifier))

		rt.Post("/products/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/products", r.wrap(r.handleList))
		rt.Get("/products/{id}", r.wrap(r.handleGet))
		rt.Delete("/products/{id}", r.wrap(r.handleDelete))

		rt.Get("/comparison", r.wrap(r.handleComparison))
		rt.Put("/comparison/{id}", r.wrap(r.handleSelect))
		rt.Delete("/comparison/{id}", r.wrap(r.handleDeselect))

		rt.Post("/reviews/summary", r.wrap(r.handleReviewSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status := statusOf(err)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("path", req.URL.Path).Int("status", status).Msg("request failed")
			}
			writeError(w, status, err.Error())
		}
	}
}

type analyzeResponse struct {
	batch.Result
	Rejected []upload.Rejection `json:"rejected"`
	Summary  string             `json:"summary"`
}

// POST /v1/products/analyze
// Body: multipart form with up to 10 files in the "images" field.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if session.UserID(req.Context()) == "" {
		return ierr.ErrNoPartition
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	if err := req.ParseMultipartForm(formMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("parse upload: %w", err)
		}
		return withStatus(http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
	}
	defer req.MultipartForm.RemoveAll()

	reqs, rejected, err := upload.Requests(req.MultipartForm.File["images"])
	if err != nil {
		return err
	}

	result, err := r.Batches.Run(req.Context(), reqs)
	if err != nil {
		return err
	}

	summary := result.Summary()
	if len(rejected) > 0 {
		summary = fmt.Sprintf("%s, %d rejected", summary, len(rejected))
	}

	writeJSON(w, http.StatusOK, analyzeResponse{Result: result, Rejected: rejected, Summary: summary})
	return nil
}

// GET /v1/products
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	records, err := r.Records.List(req.Context())
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, records)
	return nil
}

// GET /v1/products/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	record, err := r.Records.GetById(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, record)
	return nil
}

// DELETE /v1/products/{id}
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := r.Records.Delete(req.Context(), id); err != nil {
		return err
	}

	r.Comparison.Remove(session.UserID(req.Context()), id)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/comparison
func (r *Router) handleComparison(w http.ResponseWriter, req *http.Request) error {
	records, err := r.Records.List(req.Context())
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, r.Comparison.Materialize(session.UserID(req.Context()), records))
	return nil
}

// PUT /v1/comparison/{id}
func (r *Router) handleSelect(w http.ResponseWriter, req *http.Request) error {
	uid := session.UserID(req.Context())
	if uid == "" {
		return ierr.ErrNoPartition
	}

	id := chi.URLParam(req, "id")
	if _, err := r.Records.GetById(req.Context(), id); err != nil {
		return err
	}

	if err := r.Comparison.Toggle(uid, id, true); err != nil {
		return withStatus(http.StatusConflict, err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DELETE /v1/comparison/{id}
func (r *Router) handleDeselect(w http.ResponseWriter, req *http.Request) error {
	uid := session.UserID(req.Context())
	if uid == "" {
		return ierr.ErrNoPartition
	}

	if err := r.Comparison.Toggle(uid, chi.URLParam(req, "id"), false); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

type reviewSummaryRequest struct {
	Reviews string `json:"reviews"`
}

// POST /v1/reviews/summary
// Body: {"reviews": "<free-form review text>"}
func (r *Router) handleReviewSummary(w http.ResponseWriter, req *http.Request) error {
	if r.Reviews == nil {
		return withStatus(http.StatusNotFound, fmt.Errorf("review summaries are not enabled"))
	}

	var body reviewSummaryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxJSONBytes)).Decode(&body); err != nil {
		return withStatus(http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
	}

	summary, err := r.Reviews.Summarize(req.Context(), body.Reviews)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, summary)
	return nil
}

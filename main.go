package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-product-insight/internal/batch"
	"go-product-insight/internal/compare"
	"go-product-insight/internal/config"
	"go-product-insight/internal/database"
	productEventPublisher "go-product-insight/internal/eventpublisher/product"
	"go-product-insight/internal/extraction"
	"go-product-insight/internal/extraction/cache"
	"go-product-insight/internal/extraction/gemini"
	"go-product-insight/internal/extraction/openai"
	gpt "go-product-insight/internal/gpt"
	gptutils "go-product-insight/internal/gpt/utils"
	"go-product-insight/internal/handler/reviewsummary"
	"go-product-insight/internal/httpserver"
	productRepository "go-product-insight/internal/repository/product"

	Firestore "firebase.google.com/go/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

const (
	cachePurgeInterval = time.Hour
	reviewTemperature  = 0.1
)

func main() {

	cnf := config.LoadConfigOrPanic()
	setupLogger(cnf.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	defer close(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	app := createFirebaseAppOrPanic(ctx, cnf.Firebase)
	firestoreClient := createFirestoreClientOrPanic(ctx, app, cnf.Firebase)
	defer firestoreClient.Close()

	authClient, err := app.Auth(ctx)
	if err != nil {
		panic(err)
	}

	productRepo := productRepository.New(firestoreClient)

	extractionModel, err := createModel(ctx, cnf)
	if err != nil {
		panic(err)
	}

	cacheStore, err := cache.NewSQLiteStore(cnf.Cache.Path, cnf.Cache.TTL)
	if err != nil {
		panic(err)
	}
	defer cacheStore.Close()

	extractor := cache.NewCachedExtractor(extraction.NewInvoker(extractionModel, cnf.Extraction.Timeout), cacheStore)
	orchestrator := batch.New(extractor, productRepo)

	recordPublisher := productEventPublisher.New(productRepo)
	comparison := compare.NewRegistry()

	reviews, err := createReviewSummarizer(cnf.ReviewAI)
	if err != nil {
		panic(err)
	}

	srv := &http.Server{
		Addr: cnf.Server.Addr,
		Handler: httpserver.NewRouter(httpserver.Deps{
			Batches:    orchestrator,
			Records:    productRepo,
			Comparison: comparison,
			Reviews:    reviews,
			Verifier:   authClient,
		}, cnf.Server),
		ReadTimeout:  cnf.Server.ReadTimeout,
		WriteTimeout: cnf.Server.WriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return recordPublisher.Start(gctx)
	})
	group.Go(func() error {
		return comparison.Handle(gctx, recordPublisher)
	})
	group.Go(func() error {
		return purgeCache(gctx, cacheStore)
	})
	group.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("provider", extractionModel.Name()).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-sigs:
		// Received a termination signal, continue to shutdown
	case <-gctx.Done():
		// errgroup encountered an error, continue to shutdown
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cnf.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	cancel() // cancel the root context to signal all the consumers

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("service stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("service stopped")
}

func setupLogger(cnf config.Log) {
	level, err := zerolog.ParseLevel(strings.ToLower(cnf.Level))
	if err != nil || cnf.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cnf.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func createModel(ctx context.Context, cnf config.Config) (extraction.Model, error) {
	switch cnf.Extraction.Provider {
	case config.ProviderGemini:
		return gemini.New(ctx, cnf.Gemini)
	case config.ProviderOpenAI:
		return openai.NewClient(cnf.OpenAI)
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cnf.Extraction.Provider)
	}
}

// createReviewSummarizer returns nil when no review model is configured.
func createReviewSummarizer(cnf config.ReviewAI) (httpserver.ReviewSummarizer, error) {
	if cnf.ApiKey == "" {
		log.Info().Msg("review summaries disabled")
		return nil, nil
	}

	tokenizer, err := gptutils.NewTokenizer()
	if err != nil {
		return nil, err
	}

	gptFactory, err := gpt.NewClientFactory(cnf, reviewTemperature)
	if err != nil {
		return nil, err
	}

	return reviewsummary.New(reviewsummary.GPTCompletion(gptFactory), tokenizer, cnf.MaxTokens), nil
}

func purgeCache(ctx context.Context, store *cache.SQLiteStore) error {
	ticker := time.NewTicker(cachePurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := store.Purge(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("analysis cache purge failed")
				continue
			}
			log.Debug().Int64("rows", n).Msg("purged expired analyses")
		}
	}
}

func createFirebaseAppOrPanic(ctx context.Context, cnf config.Firebase) *Firestore.App {
	FirestoreCreds, err := json.Marshal(cnf)
	if err != nil {
		panic(err)
	}

	sa := option.WithCredentialsJSON(FirestoreCreds)
	app, err := Firestore.NewApp(ctx, nil, sa)
	if err != nil {
		panic(err)
	}
	return app
}

func createFirestoreClientOrPanic(ctx context.Context, app *Firestore.App, cnf config.Firebase) database.FirestoreClient {
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		panic(err)
	}
	return database.New(firestoreClient, cnf.WriteTimeout)
}

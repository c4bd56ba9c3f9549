// Command client uploads product photos to the analysis API and prints the outcome.
//
//	client -url http://localhost:8080 -token $ID_TOKEN front.jpg back.png
//	client -list
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type failure struct {
	Index     int    `json:"index"`
	Filename  string `json:"filename"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

type rejection struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type record struct {
	Id             string `json:"id"`
	ProductDetails struct {
		Name  string `json:"name"`
		Brand string `json:"brand"`
	} `json:"productDetails"`
	CreatedAt time.Time `json:"createdAt"`
}

type analyzeResponse struct {
	BatchID   string      `json:"batchId"`
	Succeeded []record    `json:"succeeded"`
	Failed    []failure   `json:"failed"`
	Rejected  []rejection `json:"rejected"`
	Summary   string      `json:"summary"`
}

type apiError struct {
	Error string `json:"error"`
}

// clientConfig holds the environment defaults; flags override them.
type clientConfig struct {
	BaseURL string `env:"PRODUCT_INSIGHT_URL" envDefault:"http://localhost:8080"`
	Token   string `env:"PRODUCT_INSIGHT_TOKEN"`
}

func loadClientConfig() (clientConfig, error) {
	var cnf clientConfig
	if err := env.Parse(&cnf); err != nil {
		return clientConfig{}, err
	}
	return cnf, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cnf, err := loadClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid environment")
	}

	baseURL := flag.String("url", cnf.BaseURL, "API base URL")
	token := flag.String("token", cnf.Token, "Firebase ID token")
	list := flag.Bool("list", false, "list saved products instead of uploading")
	timeout := flag.Duration("timeout", 5*time.Minute, "request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rc := newClient(*baseURL, *token)

	if *list {
		records, err := listRecords(ctx, rc)
		if err != nil {
			log.Fatal().Err(err).Msg("list failed")
		}
		printRecords(os.Stdout, records)
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: client [-url URL] [-token TOKEN] image...")
		os.Exit(2)
	}

	resp, err := analyze(ctx, rc, flag.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("upload failed")
	}
	printAnalysis(os.Stdout, resp)

	if len(resp.Failed) > 0 || len(resp.Rejected) > 0 {
		os.Exit(1)
	}
}

func newClient(baseURL, token string) *resty.Client {
	rc := resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if token != "" {
		rc.SetAuthToken(token)
	}
	return rc
}

func analyze(ctx context.Context, rc *resty.Client, paths []string) (analyzeResponse, error) {
	var result analyzeResponse
	var apiErr apiError

	req := rc.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&apiErr)
	for _, path := range paths {
		req.SetFile("images", path)
	}

	res, err := req.Post("/v1/products/analyze")
	if err != nil {
		return analyzeResponse{}, err
	}
	if res.IsError() {
		return analyzeResponse{}, fmt.Errorf("analyze: %s: %s", res.Status(), apiErr.Error)
	}
	return result, nil
}

func listRecords(ctx context.Context, rc *resty.Client) ([]record, error) {
	var records []record
	var apiErr apiError

	res, err := rc.R().
		SetContext(ctx).
		SetResult(&records).
		SetError(&apiErr).
		Get("/v1/products")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("list: %s: %s", res.Status(), apiErr.Error)
	}
	return records, nil
}

func printAnalysis(w io.Writer, resp analyzeResponse) {
	fmt.Fprintf(w, "batch %s: %s\n", resp.BatchID, resp.Summary)
	for _, r := range resp.Succeeded {
		fmt.Fprintf(w, "  ok       %s  %s (%s)\n", r.Id, r.ProductDetails.Name, r.ProductDetails.Brand)
	}
	for _, f := range resp.Failed {
		retry := ""
		if f.Retryable {
			retry = " [retryable]"
		}
		fmt.Fprintf(w, "  failed   %s  %s: %s%s\n", f.Filename, f.Kind, f.Reason, retry)
	}
	for _, r := range resp.Rejected {
		fmt.Fprintf(w, "  rejected %s  %s\n", r.Filename, r.Reason)
	}
}

func printRecords(w io.Writer, records []record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no saved products")
		return
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %s  %s (%s)\n", r.CreatedAt.Format(time.DateTime), r.Id, r.ProductDetails.Name, r.ProductDetails.Brand)
	}
}

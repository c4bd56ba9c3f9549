// Package upload turns multipart image uploads into analysis requests.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/model"
)

// Rejection is an uploaded file that was not accepted for analysis.
type Rejection struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// Requests validates every file and encodes the accepted ones as data URIs.
// Too many files rejects the whole upload; a bad file only rejects itself.
func Requests(files []*multipart.FileHeader) ([]model.AnalysisRequest, []Rejection, error) {
	if len(files) > model.MaxBatchSize {
		return nil, nil, &ierr.LimitExceeded{What: "upload file count", Limit: model.MaxBatchSize}
	}

	reqs := []model.AnalysisRequest{}
	rejected := []Rejection{}
	for _, fh := range files {
		req, err := request(fh)
		if err != nil {
			rejected = append(rejected, Rejection{Filename: fh.Filename, Reason: err.Error()})
			continue
		}
		reqs = append(reqs, req)
	}

	return reqs, rejected, nil
}

func request(fh *multipart.FileHeader) (model.AnalysisRequest, error) {
	if fh.Size > model.MaxImageBytes {
		return model.AnalysisRequest{}, fmt.Errorf("file is larger than %d MB", model.MaxImageBytes/(1024*1024))
	}

	f, err := fh.Open()
	if err != nil {
		return model.AnalysisRequest{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, model.MaxImageBytes+1))
	if err != nil {
		return model.AnalysisRequest{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > model.MaxImageBytes {
		return model.AnalysisRequest{}, fmt.Errorf("file is larger than %d MB", model.MaxImageBytes/(1024*1024))
	}
	if len(data) == 0 {
		return model.AnalysisRequest{}, fmt.Errorf("file is empty")
	}

	// the declared content type is not trusted
	mimeType := http.DetectContentType(data)
	if !model.IsAcceptedImageType(mimeType) {
		return model.AnalysisRequest{}, fmt.Errorf("unsupported file type %s", mimeType)
	}

	return model.AnalysisRequest{
		Image:    model.EncodeDataURI(mimeType, data),
		Filename: fh.Filename,
	}, nil
}

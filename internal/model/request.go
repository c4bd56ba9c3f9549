package model

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	MaxImageBytes = 10 * 1024 * 1024
	MaxBatchSize  = 10
)

var AcceptedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

var ErrMalformedDataURI = errors.New("malformed data URI")

// AnalysisRequest carries one image to analyze. Filename is only used for reporting.
type AnalysisRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename,omitempty"`
}

// Image is a decoded data URI.
type Image struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes a base64 data URI of the form data:<mime>;base64,<payload>.
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing data: scheme", ErrMalformedDataURI)
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing payload separator", ErrMalformedDataURI)
	}

	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return Image{}, fmt.Errorf("%w: payload is not base64", ErrMalformedDataURI)
	}
	if mimeType == "" {
		return Image{}, fmt.Errorf("%w: missing MIME type", ErrMalformedDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}

	return Image{MIMEType: strings.ToLower(mimeType), Data: data}, nil
}

func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func IsAcceptedImageType(mimeType string) bool {
	for _, t := range AcceptedImageTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// Decode parses the request image and checks it against the accepted types and size ceiling.
func (r AnalysisRequest) Decode() (Image, error) {
	img, err := ParseDataURI(r.Image)
	if err != nil {
		return Image{}, err
	}
	if !IsAcceptedImageType(img.MIMEType) {
		return Image{}, fmt.Errorf("unsupported image type %s", img.MIMEType)
	}
	if len(img.Data) > MaxImageBytes {
		return Image{}, fmt.Errorf("image is %d bytes, limit is %d", len(img.Data), MaxImageBytes)
	}
	if len(img.Data) == 0 {
		return Image{}, fmt.Errorf("image is empty")
	}
	return img, nil
}

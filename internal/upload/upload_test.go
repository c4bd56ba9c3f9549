package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ierr "go-product-insight/internal/errors"
	"go-product-insight/internal/model"
	"go-product-insight/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type file struct {
	name string
	data []byte
}

// formFiles builds a multipart request and returns its parsed "images" files.
func formFiles(t *testing.T, files ...file) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["images"]
}

func TestRequests(t *testing.T) {
	oversized := append(append([]byte{}, testutil.PNG...), make([]byte, model.MaxImageBytes)...)

	reqs, rejected, err := Requests(formFiles(t,
		file{"front.jpg", testutil.JPEG},
		file{"label.png", testutil.PNG},
		file{"notes.txt", []byte("just some text")},
		file{"huge.png", oversized},
		file{"empty.jpg", nil},
	))
	require.NoError(t, err)

	require.Len(t, reqs, 2)
	assert.Equal(t, "front.jpg", reqs[0].Filename)
	assert.Equal(t, testutil.JPEGDataURI(), reqs[0].Image)
	assert.True(t, strings.HasPrefix(reqs[1].Image, "data:image/png;base64,"))

	require.Len(t, rejected, 3)
	assert.Equal(t, "notes.txt", rejected[0].Filename)
	assert.Contains(t, rejected[0].Reason, "unsupported file type")
	assert.Equal(t, "huge.png", rejected[1].Filename)
	assert.Contains(t, rejected[1].Reason, "larger than 10 MB")
	assert.Equal(t, "empty.jpg", rejected[2].Filename)

	for _, r := range reqs {
		_, err := r.Decode()
		assert.NoError(t, err)
	}
}

func TestRequestsTooManyFiles(t *testing.T) {
	files := make([]file, model.MaxBatchSize+1)
	for i := range files {
		files[i] = file{name: "img.jpg", data: testutil.JPEG}
	}

	reqs, rejected, err := Requests(formFiles(t, files...))

	var limitErr *ierr.LimitExceeded
	require.ErrorAs(t, err, &limitErr)
	assert.Nil(t, reqs)
	assert.Nil(t, rejected)
}

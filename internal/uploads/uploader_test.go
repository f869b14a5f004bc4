package uploads

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-events/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fakeCDN(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"status":400,"error":{"message":"Invalid API v1 key."}}`))
			return
		}
		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.NotEmpty(t, data)
		_, _ = w.Write([]byte(`{"success":true,"status":200,"data":{"url":"https://i.ibb.co/abc/poster.png"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUpload(t *testing.T) {
	srv := fakeCDN(t)
	u := NewUploader(srv.URL, "k", 0, srv.Client())

	url, err := u.Upload(context.Background(), "poster.png", pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "https://i.ibb.co/abc/poster.png", url)
}

func TestUpload_Rejections(t *testing.T) {
	srv := fakeCDN(t)

	_, err := NewUploader(srv.URL, "k", 0, srv.Client()).Upload(context.Background(), "notes.txt", []byte("plain text, not an image"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = NewUploader(srv.URL, "k", 16, srv.Client()).Upload(context.Background(), "big.png", pngBytes(t))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = NewUploader(srv.URL, "wrong", 0, srv.Client()).Upload(context.Background(), "poster.png", pngBytes(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API v1 key.")
}

package gzip

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func TestGzipMiddlewareCompressesJSON(t *testing.T) {
	h := GzipMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h(rec, r)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, string(body))
}

func TestGzipMiddlewareSkipsErrors(t *testing.T) {
	h := GzipMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h(rec, r)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Header().Get("Content-Encoding"))
	require.Zero(t, rec.Body.Len())
}

func TestGzipMiddlewareDecompressesRequest(t *testing.T) {
	var got string
	h := GzipMiddleware(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
	})

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("login_id=admin"))
	zw.Close()

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Encoding", "gzip")
	h(httptest.NewRecorder(), r)
	require.Equal(t, "login_id=admin", got)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip"))
	r.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h(rec, r)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

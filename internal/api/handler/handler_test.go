package handler

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name      string
		tls       bool
		forwarded string
		want      string
	}{
		{"plain", false, "", "http://board.test"},
		{"tls", true, "", "https://board.test"},
		{"behind proxy", false, "https", "https://board.test"},
		{"proxy chain", false, "HTTPS, http", "https://board.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://board.test/api/images", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			assert.Equal(t, tt.want, baseURL(req))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Text string `json:"text"`
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.False(t, decodeJSON(rr, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Request body is required")

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`))
	assert.True(t, decodeJSON(rr, req, &dst))
	assert.Equal(t, "hi", dst.Text)
}

func TestStaticSite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>index</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	site := NewStaticSite(dir)

	serve := func(method, path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		site.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
		return rr
	}

	rr := serve(http.MethodGet, "/app.js")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "console.log(1)", rr.Body.String())

	rr = serve(http.MethodGet, "/board/view")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "index")

	rr = serve(http.MethodGet, "/../../etc/passwd")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "index")

	rr = serve(http.MethodGet, "/assets/../app.js")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "console.log(1)", rr.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/api/unknown").Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodPost, "/board").Code)

	rr = httptest.NewRecorder()
	NewStaticSite("").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"msgboard/internal/common"
)

// StaticSite serves files from dir and falls back to dir/index.html for
// unknown GET paths. API paths never fall back.
type StaticSite struct {
	dir string
}

func NewStaticSite(dir string) *StaticSite {
	return &StaticSite{dir: dir}
}

func (s *StaticSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" || s.dir == "" ||
		(r.Method != http.MethodGet && r.Method != http.MethodHead) {
		common.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	// ServeFile refuses any URL path holding "..", so hand it the cleaned one.
	r2 := r.Clone(r.Context())
	r2.URL.Path = clean
	r2.URL.RawPath = ""

	full := filepath.Join(s.dir, filepath.FromSlash(clean))
	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		http.ServeFile(w, r2, full)
		return
	}

	index := filepath.Join(s.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			common.RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
		common.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}
	http.ServeFile(w, r2, index)
}

package assets

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Handler serves a Store over HTTP. Mount it with the path prefix stripped,
// e.g. http.StripPrefix("/assets/", assets.Handler(store)).
func Handler(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, "/")
		rc, ct, err := store.Open(r.Context(), name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				slog.Warn("asset open failed", "name", name, "error", err)
			}
			http.NotFound(w, r)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", ct)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(w, rc); err != nil {
			slog.Debug("asset write interrupted", "name", name, "error", err)
		}
	})
}

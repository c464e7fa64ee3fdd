package server

import (
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// Static serves files from fsys below prefix, e.g. "/public". With
// noCache set every response is uncacheable; otherwise fingerprinted
// files are cached for a year and other files for an hour.
func Static(fsys fs.FS, prefix string, noCache bool) http.Handler {
	prefix = "/" + strings.Trim(prefix, "/")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		rel := strings.TrimPrefix(path.Clean(r.URL.Path), prefix)
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" || !fs.ValidPath(rel) {
			http.NotFound(w, r)
			return
		}

		f, err := fsys.Open(rel)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		content, ok := f.(io.ReadSeeker)
		if !ok {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		switch {
		case noCache:
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		case isFingerprinted(rel):
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		default:
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}

		http.ServeContent(w, r, rel, info.ModTime(), content)
	})
}

// isFingerprinted reports whether the file name carries a content hash,
// e.g. "app.a1b2c3d4.css".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

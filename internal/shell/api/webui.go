package api

import (
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
)

// WebUIHandler serves the storefront build in dir. Unknown paths without a
// file extension fall back to index.html for client-side routing.
func WebUIHandler(dir string) http.Handler {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Storefront Not Built</title></head>
<body style="font-family: system-ui; padding: 2rem; max-width: 600px; margin: 0 auto;">
<h1>Storefront Not Built</h1>
<p>The configured frontend directory does not exist. Build the storefront and
point <code>server.frontend_dir</code> at its output.</p>
</body>
</html>`))
		})
	}
	distFS := os.DirFS(dir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlPath := path.Clean(r.URL.Path)
		if urlPath == "/" || urlPath == "" || urlPath == "." {
			urlPath = "index.html"
		} else {
			urlPath = strings.TrimPrefix(urlPath, "/")
		}

		content, err := fs.ReadFile(distFS, urlPath)
		if err == nil {
			contentType := mime.TypeByExtension(path.Ext(urlPath))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			w.Header().Set("Content-Type", contentType)
			w.Write(content)
			return
		}

		// Asset requests (with an extension) are not rewritten.
		if strings.Contains(path.Base(urlPath), ".") {
			http.NotFound(w, r)
			return
		}

		content, err = fs.ReadFile(distFS, "index.html")
		if err != nil {
			http.Error(w, "index.html not found", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(content)
	})
}

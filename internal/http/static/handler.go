package static

import (
	"embed"
	"io/fs"
	"net/http"
)

func NewFilesystemHandler(path string) http.HandlerFunc {
	return http.FileServer(http.Dir(path)).ServeHTTP
}

//go:embed files/*
var embedFS embed.FS

func NewEmbedHandler() http.HandlerFunc {
	files, err := fs.Sub(embedFS, "files")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(files)).ServeHTTP
}

// NewUploadsHandler serves user uploads from dir under prefix. Directory
// listings are not served.
func NewUploadsHandler(prefix, dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}

package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// staticRoutes serves the page stylesheet. The generated page links it
// relative to itself, so it is mounted at /css/.
func (s *Server) staticRoutes() {
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		// "static" is embedded at compile time.
		panic("failed to create static file sub-filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(staticContent))
	s.router.Handle("/css/*", fileServer)
}

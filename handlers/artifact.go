package handlers

import (
	"net/http"
	"path"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"osbootd/internal/errors"
)

// ArtifactHandlers streams boot artifacts out of distro trees.
type ArtifactHandlers struct {
	container *Container
}

// NewArtifactHandlers creates a new ArtifactHandlers instance.
func NewArtifactHandlers(container *Container) *ArtifactHandlers {
	return &ArtifactHandlers{container: container}
}

// ServeArtifact handles GET and HEAD for /{distro}/{path}. The open file
// handle is scoped to the request and released on every exit path; a
// client disconnect cancels the request context and aborts the copy.
func (h *ArtifactHandlers) ServeArtifact(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	distroName := vars["distro"]
	relativePath := vars["path"]

	stream, err := h.container.Artifacts.Serve(r.Context(), distroName, relativePath)
	if err != nil {
		errors.HandleHTTPError(w, h.container.Logger, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", stream.ContentType)

	// ServeContent fills in Content-Length from the seeker, honors Range
	// and If-Modified-Since, and writes no body for HEAD.
	http.ServeContent(w, r, path.Base(relativePath), stream.ModTime, stream.Content)

	h.container.Logger.Debug("Served artifact",
		zap.String("distro", distroName),
		zap.String("path", relativePath),
		zap.Int64("size", stream.Size),
	)
}

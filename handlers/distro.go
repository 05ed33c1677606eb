package handlers

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"osbootd/distro"
	"osbootd/internal/errors"
)

// DistroHandlers answers distro listing and detail requests.
type DistroHandlers struct {
	container *Container
}

// NewDistroHandlers creates a new DistroHandlers instance.
func NewDistroHandlers(container *Container) *DistroHandlers {
	return &DistroHandlers{container: container}
}

// ListDistros returns the ordered list of distro names as JSON.
func (h *DistroHandlers) ListDistros(w http.ResponseWriter, r *http.Request) {
	distros, err := h.container.Registry.List(r.Context())
	if err != nil {
		errors.HandleHTTPError(w, h.container.Logger, err)
		return
	}

	names := make([]string, 0, len(distros))
	for _, d := range distros {
		names = append(names, d.Name)
	}

	writeJSON(w, h.container.Logger, names)
}

// distroDetail is the response body for a single distro.
type distroDetail struct {
	Name           string        `json:"name"`
	Flavor         distro.Flavor `json:"flavor"`
	ReleaseName    string        `json:"release_name,omitempty"`
	ReleaseVersion string        `json:"release_version,omitempty"`
	Arch           string        `json:"arch,omitempty"`
	Artifacts      int           `json:"artifacts"`
	TotalBytes     int64         `json:"total_bytes"`
	TotalSize      string        `json:"total_size"`
}

// GetDistro returns release metadata and an artifact summary for one
// distro.
func (h *DistroHandlers) GetDistro(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	d, err := h.container.Registry.Get(r.Context(), name)
	if err != nil {
		errors.HandleHTTPError(w, h.container.Logger, err)
		return
	}

	summary, err := h.container.Artifacts.Summarize(r.Context(), name)
	if err != nil {
		errors.HandleHTTPError(w, h.container.Logger, err)
		return
	}

	writeJSON(w, h.container.Logger, distroDetail{
		Name:           d.Name,
		Flavor:         d.Flavor,
		ReleaseName:    d.ReleaseName,
		ReleaseVersion: d.ReleaseVersion,
		Arch:           d.Arch,
		Artifacts:      summary.Artifacts,
		TotalBytes:     summary.TotalBytes,
		TotalSize:      humanize.IBytes(uint64(summary.TotalBytes)),
	})
}

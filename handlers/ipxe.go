package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"osbootd/internal/errors"
)

// IPXEHandlers generates iPXE boot scripts.
type IPXEHandlers struct {
	container *Container
}

// NewIPXEHandlers creates a new IPXEHandlers instance.
func NewIPXEHandlers(container *Container) *IPXEHandlers {
	return &IPXEHandlers{container: container}
}

// BootScript handles GET /{distro}/boot.ipxe.
func (h *IPXEHandlers) BootScript(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["distro"]

	script, err := h.container.IPXE.Script(r.Context(), name, distroURL(r, name))
	if err != nil {
		errors.HandleHTTPError(w, h.container.Logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, script)
}

// distroURL reconstructs the absolute external URL of a distro tree from
// the inbound request, for boot script lines that need full fetch URLs.
func distroURL(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, r.Host, name)
}

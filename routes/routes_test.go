package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"osbootd/config"
	"osbootd/distro"
	"osbootd/handlers"
	"osbootd/ipxe"
)

func newTestContainer(t *testing.T) *handlers.Container {
	t.Helper()
	root := t.TempDir()
	registry := distro.NewDirRegistry(root, zap.NewNop())
	return &handlers.Container{
		Config:    &config.Config{Root: config.Root{Dir: root}},
		Registry:  registry,
		Artifacts: distro.NewService(registry, distro.NewPathResolver(), zap.NewNop()),
		IPXE:      ipxe.NewService(registry, zap.NewNop()),
		Logger:    zap.NewNop(),
	}
}

func TestSetup_RegistersRoutes(t *testing.T) {
	router := Setup(newTestContainer(t))

	for _, name := range []string{
		"Index",
		"ListDistros",
		"GetDistro",
		"Healthz",
		"Metrics",
		"BootScript",
		"BootScriptRoot",
		"ServeArtifact",
	} {
		assert.NotNil(t, router.GetRoute(name), "route %s not registered", name)
	}
}

func TestSetup_ArtifactRouteMatchesNestedPaths(t *testing.T) {
	router := Setup(newTestContainer(t))

	route := router.GetRoute("ServeArtifact")
	require.NotNil(t, route)

	url, err := route.URL("distro", "ubuntu", "path", "images/pxeboot/vmlinuz")
	require.NoError(t, err)
	assert.Equal(t, "/ubuntu/images/pxeboot/vmlinuz", url.Path)
}

// newPopulatedContainer builds a container over a root holding one
// Red Hat tree and one bare kernel file.
func newPopulatedContainer(t *testing.T) *handlers.Container {
	t.Helper()
	root := t.TempDir()
	for rel, content := range map[string]string{
		"fedora/.treeinfo":                 "[release]\nname = Fedora\nversion = 39\n",
		"fedora/images/pxeboot/vmlinuz":    "kernel",
		"fedora/images/pxeboot/initrd.img": "initrd",
		"ubuntu/vmlinuz":                   "kernel",
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	registry := distro.NewDirRegistry(root, zap.NewNop())
	return &handlers.Container{
		Config:    &config.Config{Root: config.Root{Dir: root}},
		Registry:  registry,
		Artifacts: distro.NewService(registry, distro.NewPathResolver(), zap.NewNop()),
		IPXE:      ipxe.NewService(registry, zap.NewNop()),
		Logger:    zap.NewNop(),
	}
}

func TestSetup_TraversalIsRejectedNotRedirected(t *testing.T) {
	router := Setup(newPopulatedContainer(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/ubuntu/../../etc/passwd", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "root:")
}

func TestSetup_DistroRootServesBootScript(t *testing.T) {
	router := Setup(newPopulatedContainer(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "http://boot.example.com/fedora/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "#!ipxe")
	assert.Contains(t, rec.Body.String(), "repo=http://boot.example.com/fedora")
}

func TestSetup_BootScriptAnswersHead(t *testing.T) {
	router := Setup(newPopulatedContainer(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("HEAD", "/fedora/boot.ipxe", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
}

package ipxe

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"text/template"

	"go.uber.org/zap"

	"osbootd/distro"
	"osbootd/internal/errors"
)

// Service renders iPXE boot scripts for distro trees. Kernel and initrd
// locations follow the layout conventions of each detected flavor;
// distros with a distro.yaml override use its declared paths verbatim.
type Service struct {
	registry distro.Registry
	logger   *zap.Logger
}

// NewService creates a new iPXE script service.
func NewService(registry distro.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// scriptData is the data handed to the flavor templates.
type scriptData struct {
	URL        string // Absolute external URL of the distro tree
	Arch       string
	Kernel     string
	Initrd     string
	InitrdName string
	Args       []string
}

var scripts = map[distro.Flavor]*template.Template{
	distro.FlavorRedHat: mustScript("redhat", `#!ipxe
kernel images/pxeboot/vmlinuz initrd=initrd.img repo={{.URL}}
initrd images/pxeboot/initrd.img
boot
`),
	distro.FlavorUbuntuNetboot: mustScript("ubuntu-netboot", `#!ipxe
kernel install/netboot/ubuntu-installer/{{.Arch}}/linux initrd=initrd.gz
initrd install/netboot/ubuntu-installer/{{.Arch}}/initrd.gz
boot
`),
	distro.FlavorUbuntuLive: mustScript("ubuntu-live", `#!ipxe
kernel casper/vmlinuz.efi initrd=initrd.lz boot=casper live-media=/lib/casper live-media-path=/
initrd casper/initrd.lz
initrd casper/filesystem.squashfs /lib/casper/filesystem.squashfs
boot
`),
	distro.FlavorDebianLive: mustScript("debian-live", `#!ipxe
kernel {{.Kernel}} initrd=initrd.img boot=live fetch={{.URL}}/live/filesystem.squashfs
initrd -n initrd.img {{.Initrd}}
boot
`),
	distro.FlavorCustom: mustScript("custom", `#!ipxe
kernel {{.Kernel}} initrd={{.InitrdName}}{{range .Args}} {{.}}{{end}}
initrd {{.Initrd}}
boot
`),
}

func mustScript(name, content string) *template.Template {
	return template.Must(template.New(name).Parse(content))
}

// Script renders the boot script for the named distro. baseURL is the
// absolute external URL of the distro tree (scheme://host/name), used
// wherever the loader needs a full fetch URL. Flavors without a boot
// script convention return a not-found error.
func (s *Service) Script(ctx context.Context, name, baseURL string) (string, error) {
	const op = "ipxe.script"

	d, err := s.registry.Get(ctx, name)
	if err != nil {
		return "", err
	}

	tmpl, ok := scripts[d.Flavor]
	if !ok {
		return "", errors.NewNotFoundError(op, fmt.Errorf("no boot script for flavor %s", d.Flavor))
	}

	data := scriptData{
		URL:  baseURL,
		Arch: d.Arch,
	}
	switch d.Flavor {
	case distro.FlavorUbuntuNetboot:
		if data.Arch == "" {
			data.Arch = "amd64"
		}
	case distro.FlavorDebianLive:
		data.Kernel = globFirst(d.Path, "live/vmlinuz-*", "live/vmlinuz")
		data.Initrd = globFirst(d.Path, "live/initrd.img-*", "live/initrd.img")
	case distro.FlavorCustom:
		if d.Boot == nil || d.Boot.Kernel == "" || d.Boot.Initrd == "" {
			return "", errors.NewNotFoundError(op, fmt.Errorf("distro.yaml for %s declares no kernel/initrd", name))
		}
		data.Kernel = d.Boot.Kernel
		data.Initrd = d.Boot.Initrd
		data.InitrdName = path.Base(d.Boot.Initrd)
		data.Args = d.Boot.KernelArgs
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.NewIOError(op, err)
	}
	return buf.String(), nil
}

// globFirst returns the lexicographically first match of pattern below
// root as a slash path relative to root, or fallback when nothing
// matches.
func globFirst(root, pattern, fallback string) string {
	matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil || len(matches) == 0 {
		return fallback
	}
	sort.Strings(matches)
	rel, err := filepath.Rel(root, matches[0])
	if err != nil {
		return fallback
	}
	return filepath.ToSlash(rel)
}

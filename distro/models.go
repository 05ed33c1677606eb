package distro

import (
	"io"
	"time"
)

// Flavor identifies the family of a distribution tree, detected from the
// marker files the installer media carries.
type Flavor string

const (
	FlavorUnknown       Flavor = "unknown"
	FlavorDebian        Flavor = "debian"
	FlavorDebianLive    Flavor = "debian-live"
	FlavorUbuntu        Flavor = "ubuntu"
	FlavorUbuntuLive    Flavor = "ubuntu-live"
	FlavorUbuntuNetboot Flavor = "ubuntu-netboot"
	FlavorRedHat        Flavor = "redhat"
	FlavorCustom        Flavor = "custom"
)

// Distro is a named collection of boot artifacts, identified by its
// directory name under the service root. Records are produced on demand by
// querying the filesystem; nothing is cached across requests, so the tree
// may change between calls without staleness.
type Distro struct {
	Name           string `json:"name"`
	Path           string `json:"-"` // Absolute filesystem path
	Flavor         Flavor `json:"flavor"`
	ReleaseName    string `json:"release_name,omitempty"`
	ReleaseVersion string `json:"release_version,omitempty"`
	Arch           string `json:"arch,omitempty"`

	// Boot holds the distro.yaml override when present. It pins the boot
	// script inputs instead of flavor autodetection.
	Boot *BootOverride `json:"-"`
}

// BootOverride is the optional distro.yaml file at the top of a distro
// tree, pinning release metadata and boot script inputs.
type BootOverride struct {
	Name       string   `yaml:"name"`
	Version    string   `yaml:"version"`
	Kernel     string   `yaml:"kernel"`
	Initrd     string   `yaml:"initrd"`
	KernelArgs []string `yaml:"kernel_args"`
}

// Artifact is a single file within a distro's subtree.
type Artifact struct {
	Distro      string    `json:"distro"`
	Path        string    `json:"path"` // Relative path within the distro
	AbsPath     string    `json:"-"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	ModTime     time.Time `json:"mod_time"`
}

// ArtifactStream is an open artifact bound to a file handle. The caller
// owns the handle and must Close it on every exit path.
type ArtifactStream struct {
	Artifact
	Content io.ReadSeekCloser
}

// Close releases the underlying file handle.
func (s *ArtifactStream) Close() error {
	return s.Content.Close()
}

// TreeSummary aggregates the artifacts below a distro root.
type TreeSummary struct {
	Artifacts  int   `json:"artifacts"`
	TotalBytes int64 `json:"total_bytes"`
}

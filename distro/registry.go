package distro

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"osbootd/internal/errors"
)

// DirRegistry enumerates the direct subdirectories of a root directory as
// distros. Every query reads the directory at call time so the registry
// stays correct while the tree changes underneath it.
type DirRegistry struct {
	root     string
	logger   *zap.Logger
	detector *Detector
}

// NewDirRegistry creates a registry over the given root directory.
func NewDirRegistry(root string, logger *zap.Logger) *DirRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirRegistry{
		root:     root,
		logger:   logger,
		detector: NewDetector(),
	}
}

// Root returns the configured root directory.
func (r *DirRegistry) Root() string {
	return r.root
}

// ValidName reports whether name could denote a distro directory. Names
// containing path separators, parent segments or NUL bytes are never
// looked up on disk.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	return true
}

// List returns all distros under the root in lexicographic name order.
func (r *DirRegistry) List(ctx context.Context) ([]*Distro, error) {
	const op = "registry.list"

	if err := ctx.Err(); err != nil {
		return nil, errors.NewIOError(op, err)
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(op, err)
		}
		return nil, errors.NewIOError(op, err)
	}

	// os.ReadDir returns entries sorted by name.
	distros := make([]*Distro, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !ValidName(entry.Name()) {
			continue
		}
		d := r.describe(entry.Name())
		distros = append(distros, d)
	}
	return distros, nil
}

// Exists reports whether name is an existing direct subdirectory of the
// root.
func (r *DirRegistry) Exists(name string) bool {
	if !ValidName(name) {
		return false
	}
	fi, err := os.Stat(filepath.Join(r.root, name))
	return err == nil && fi.IsDir()
}

// Get returns the distro record for name.
func (r *DirRegistry) Get(ctx context.Context, name string) (*Distro, error) {
	const op = "registry.get"

	if err := ctx.Err(); err != nil {
		return nil, errors.NewIOError(op, err)
	}
	if !ValidName(name) {
		return nil, errors.NewNotFoundError(op, fmt.Errorf("invalid distro name %q", name))
	}

	path := filepath.Join(r.root, name)
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(op, fmt.Errorf("no such distro %q", name))
		}
		if os.IsPermission(err) {
			return nil, errors.NewForbiddenError(op, err)
		}
		return nil, errors.NewIOError(op, err)
	}
	if !fi.IsDir() {
		return nil, errors.NewNotFoundError(op, fmt.Errorf("%q is not a distro directory", name))
	}

	return r.describe(name), nil
}

// describe builds a distro record, detecting the flavor from marker files.
func (r *DirRegistry) describe(name string) *Distro {
	d := &Distro{
		Name:   name,
		Path:   filepath.Join(r.root, name),
		Flavor: FlavorUnknown,
	}
	if err := r.detector.Detect(d); err != nil {
		// Detection failures degrade to an unknown flavor; the distro
		// still lists and serves artifacts.
		r.logger.Debug("Flavor detection failed",
			zap.String("distro", name),
			zap.Error(err),
		)
	}
	return d
}

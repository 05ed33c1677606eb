package distro

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"osbootd/internal/errors"
)

// PathResolver validates requested artifact paths and resolves them to
// absolute paths inside a distro root. The containment check runs on the
// symlink-resolved path, not merely the textual one, so links pointing
// outside the root are rejected rather than followed.
type PathResolver struct{}

// NewPathResolver creates a new PathResolver.
func NewPathResolver() *PathResolver {
	return &PathResolver{}
}

// Resolve validates requestedPath against distroRoot and returns the
// absolute path of the artifact. Malformed input (parent-directory
// segments, absolute prefixes, NUL bytes) yields an invalid-path error;
// a resolved path whose prefix is not exactly distroRoot yields a
// path-escape error, never a silent correction.
func (p *PathResolver) Resolve(distroRoot, requestedPath string) (string, error) {
	const op = "resolver.resolve"

	if requestedPath == "" {
		return "", errors.NewInvalidPathError(op, fmt.Errorf("empty path"))
	}
	if strings.ContainsRune(requestedPath, 0) {
		return "", errors.NewInvalidPathError(op, fmt.Errorf("null byte in path"))
	}
	if filepath.IsAbs(requestedPath) || strings.HasPrefix(requestedPath, "/") {
		return "", errors.NewInvalidPathError(op, fmt.Errorf("absolute paths not allowed"))
	}
	if hasParentSegment(requestedPath) {
		return "", errors.NewInvalidPathError(op, fmt.Errorf("parent directory segment in path"))
	}

	clean := filepath.Clean(requestedPath)
	if clean == "." {
		return "", errors.NewInvalidPathError(op, fmt.Errorf("path resolves to the distro root"))
	}

	full := filepath.Join(distroRoot, clean)
	if !contained(distroRoot, full) {
		return "", errors.NewPathEscapeError(op, fmt.Errorf("path %q escapes distro root", requestedPath))
	}

	resolvedRoot, err := filepath.EvalSymlinks(distroRoot)
	if err != nil {
		return "", classifyStat(op, err)
	}

	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to follow; the caller's stat reports not-found.
			return full, nil
		}
		return "", classifyStat(op, err)
	}
	if !contained(resolvedRoot, resolved) {
		return "", errors.NewPathEscapeError(op, fmt.Errorf("path %q resolves outside distro root", requestedPath))
	}

	return resolved, nil
}

// hasParentSegment reports whether any slash-separated segment of the raw
// request is "..". Checked before normalization so traversal attempts are
// rejected as malformed input instead of being collapsed away.
func hasParentSegment(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// contained reports whether path equals root or sits below it.
func contained(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

func classifyStat(op string, err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.NewNotFoundError(op, err)
	case os.IsPermission(err):
		return errors.NewForbiddenError(op, err)
	default:
		return errors.NewIOError(op, err)
	}
}

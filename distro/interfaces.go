package distro

import "context"

// Registry enumerates the subdirectories of the service root as distro
// entities. Every call performs a fresh directory read; correctness under
// concurrent filesystem mutation takes priority over caching.
type Registry interface {
	// List returns the distros in lexicographic name order.
	List(ctx context.Context) ([]*Distro, error)

	// Exists reports whether name denotes an existing direct subdirectory
	// of the root. Invalid names never touch the filesystem.
	Exists(name string) bool

	// Get returns the distro record for name, or a not-found error.
	Get(ctx context.Context, name string) (*Distro, error)
}

// Resolver validates and normalizes a requested relative path against a
// distro root, rejecting anything that resolves outside it.
type Resolver interface {
	Resolve(distroRoot, requestedPath string) (string, error)
}

// ArtifactService resolves and opens artifacts for streaming.
type ArtifactService interface {
	// Serve resolves the artifact and returns it as an open stream with
	// content metadata. The caller must close the stream.
	Serve(ctx context.Context, distroName, relativePath string) (*ArtifactStream, error)

	// Summarize walks a distro tree and aggregates its artifacts.
	Summarize(ctx context.Context, distroName string) (*TreeSummary, error)
}

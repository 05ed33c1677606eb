package distro

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"osbootd/internal/errors"
)

var (
	artifactServedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osbootd_artifacts_served_total",
		Help: "Number of artifacts successfully opened for streaming",
	}, []string{"distro"})
	artifactBytesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osbootd_artifact_bytes_total",
		Help: "Total size in bytes of artifacts opened for streaming",
	}, []string{"distro"})
	artifactErrorMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osbootd_artifact_errors_total",
		Help: "Number of artifact requests that failed, by error class",
	}, []string{"reason"})
)

// contentTypes maps boot artifact extensions that the platform mime
// database gets wrong or does not know.
var contentTypes = map[string]string{
	".ipxe":      "text/plain; charset=utf-8",
	".cfg":       "text/plain; charset=utf-8",
	".conf":      "text/plain; charset=utf-8",
	".txt":       "text/plain; charset=utf-8",
	".img":       "application/octet-stream",
	".iso":       "application/octet-stream",
	".efi":       "application/octet-stream",
	".c32":       "application/octet-stream",
	".gz":        "application/gzip",
	".xz":        "application/x-xz",
	".squashfs":  "application/octet-stream",
	".initramfs": "application/octet-stream",
}

// ContentTypeFor infers the content type of an artifact from its file
// extension, defaulting to application/octet-stream. Kernels and initrds
// usually carry no extension at all.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Service is the artifact-serving engine: it resolves a distro name and
// relative path to a file on disk and opens it for streaming. It holds no
// mutable state, so it is safe for concurrent use.
type Service struct {
	registry Registry
	resolver Resolver
	logger   *zap.Logger
}

// NewService creates an artifact service over the given registry and
// resolver.
func NewService(registry Registry, resolver Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		resolver: resolver,
		logger:   logger,
	}
}

// Serve resolves distroName/relativePath and returns the artifact as an
// open stream with content metadata. Requests that resolve to a
// directory return a not-found error; directory browsing is not
// supported. The caller must close the stream on every exit path.
func (s *Service) Serve(ctx context.Context, distroName, relativePath string) (*ArtifactStream, error) {
	const op = "artifact.serve"

	d, err := s.registry.Get(ctx, distroName)
	if err != nil {
		countError(err)
		return nil, err
	}

	abs, err := s.resolver.Resolve(d.Path, relativePath)
	if err != nil {
		countError(err)
		return nil, err
	}

	fi, err := os.Stat(abs)
	if err != nil {
		err = classifyStat(op, err)
		countError(err)
		return nil, err
	}
	if fi.IsDir() {
		err = errors.NewNotFoundError(op, fmt.Errorf("%s/%s is a directory", distroName, relativePath))
		countError(err)
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		err = errors.NewNotFoundError(op, fmt.Errorf("%s/%s is not a regular file", distroName, relativePath))
		countError(err)
		return nil, err
	}

	fd, err := os.Open(abs)
	if err != nil {
		err = classifyStat(op, err)
		countError(err)
		return nil, err
	}

	artifactServedMetric.WithLabelValues(d.Name).Inc()
	artifactBytesMetric.WithLabelValues(d.Name).Add(float64(fi.Size()))

	return &ArtifactStream{
		Artifact: Artifact{
			Distro:      d.Name,
			Path:        relativePath,
			AbsPath:     abs,
			Size:        fi.Size(),
			ContentType: ContentTypeFor(relativePath),
			ModTime:     fi.ModTime(),
		},
		Content: fd,
	}, nil
}

// Summarize walks a distro tree and aggregates artifact count and size.
func (s *Service) Summarize(ctx context.Context, distroName string) (*TreeSummary, error) {
	const op = "artifact.summarize"

	d, err := s.registry.Get(ctx, distroName)
	if err != nil {
		return nil, err
	}

	summary := &TreeSummary{}
	err = filepath.WalkDir(d.Path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal; the summary is
			// advisory.
			s.logger.Debug("Skipping unreadable path during summarize",
				zap.String("path", p),
				zap.Error(err),
			)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.Type().IsRegular() {
			if fi, err := entry.Info(); err == nil {
				summary.Artifacts++
				summary.TotalBytes += fi.Size()
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(op, err)
	}
	return summary, nil
}

func countError(err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		artifactErrorMetric.WithLabelValues(appErr.Type.String()).Inc()
		return
	}
	artifactErrorMetric.WithLabelValues("unknown").Inc()
}

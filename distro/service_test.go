package distro

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osbootd/internal/errors"
)

func newTestService(t *testing.T, root string) *Service {
	t.Helper()
	registry := NewDirRegistry(root, nil)
	return NewService(registry, NewPathResolver(), nil)
}

func TestService_ServeRoundTrip(t *testing.T) {
	root := newTestRoot(t, "ubuntu")
	kernel := []byte("fake kernel image bytes")
	require.NoError(t, os.WriteFile(filepath.Join(root, "ubuntu", "vmlinuz"), kernel, 0644))

	service := newTestService(t, root)

	stream, err := service.Serve(context.Background(), "ubuntu", "vmlinuz")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, "ubuntu", stream.Distro)
	assert.Equal(t, "vmlinuz", stream.Path)
	assert.Equal(t, int64(len(kernel)), stream.Size)
	assert.Equal(t, "application/octet-stream", stream.ContentType)

	data, err := io.ReadAll(stream.Content)
	require.NoError(t, err)
	assert.Equal(t, kernel, data)
}

func TestService_ServeNestedArtifact(t *testing.T) {
	root := newTestRoot(t, "fedora")
	path := filepath.Join(root, "fedora", "images", "pxeboot")
	require.NoError(t, os.MkdirAll(path, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "initrd.img"), []byte("initrd"), 0644))

	service := newTestService(t, root)

	stream, err := service.Serve(context.Background(), "fedora", "images/pxeboot/initrd.img")
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, int64(6), stream.Size)
}

func TestService_ServeUnknownDistro(t *testing.T) {
	root := newTestRoot(t, "ubuntu")
	service := newTestService(t, root)

	_, err := service.Serve(context.Background(), "missingdistro", "vmlinuz")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestService_ServeMissingArtifact(t *testing.T) {
	root := newTestRoot(t, "ubuntu")
	service := newTestService(t, root)

	_, err := service.Serve(context.Background(), "ubuntu", "no-such-file")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestService_ServeDirectoryIsNotFound(t *testing.T) {
	root := newTestRoot(t, "ubuntu")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ubuntu", "casper"), 0755))

	service := newTestService(t, root)

	_, err := service.Serve(context.Background(), "ubuntu", "casper")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestService_ServeTraversalRejected(t *testing.T) {
	root := newTestRoot(t, "ubuntu")
	service := newTestService(t, root)

	_, err := service.Serve(context.Background(), "ubuntu", "../../etc/passwd")
	require.Error(t, err)
	assert.True(t, errors.IsPathError(err))
}

func TestService_Summarize(t *testing.T) {
	root := newTestRoot(t, "ubuntu")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ubuntu", "casper"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ubuntu", "vmlinuz"), []byte("12345"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ubuntu", "casper", "initrd"), []byte("123"), 0644))

	service := newTestService(t, root)

	summary, err := service.Summarize(context.Background(), "ubuntu")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Artifacts)
	assert.Equal(t, int64(8), summary.TotalBytes)
}

func TestService_SummarizeUnknownDistro(t *testing.T) {
	root := newTestRoot(t, "ubuntu")
	service := newTestService(t, root)

	_, err := service.Summarize(context.Background(), "missingdistro")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"vmlinuz", "application/octet-stream"},
		{"initrd.img", "application/octet-stream"},
		{"boot.ipxe", "text/plain; charset=utf-8"},
		{"pxelinux.cfg", "text/plain; charset=utf-8"},
		{"filesystem.squashfs", "application/octet-stream"},
		{"initrd.gz", "application/gzip"},
		{"ldlinux.c32", "application/octet-stream"},
		{"grubx64.efi", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentTypeFor(tt.path))
		})
	}
}

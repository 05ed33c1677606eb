package tftp

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"osbootd/distro"
	apperrors "osbootd/internal/errors"
)

func newTestServer(t *testing.T, root string) *Server {
	t.Helper()
	logger := zap.NewNop()
	registry := distro.NewDirRegistry(root, logger)
	artifacts := distro.NewService(registry, distro.NewPathResolver(), logger)
	return NewServer("127.0.0.1:0", artifacts, logger)
}

func writeArtifact(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, content, 0o644))
}

type mockReaderFrom struct {
	data []byte
}

func (m *mockReaderFrom) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	m.data = append(m.data, data...)
	return int64(len(data)), err
}

type mockWriterTo struct {
	data []byte
}

func (m *mockWriterTo) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.data)
	return int64(n), err
}

func TestServerStart(t *testing.T) {
	server := newTestServer(t, t.TempDir())

	require.NoError(t, server.Start())
	defer server.Stop()

	require.NotNil(t, server.listener)

	addr := server.listener.LocalAddr().(*net.UDPAddr)
	conn, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	conn.Close()
}

func TestReadHandler(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "ubuntu/casper/vmlinuz", []byte("kernel bits"))

	server := newTestServer(t, root)

	rf := &mockReaderFrom{}
	require.NoError(t, server.readHandler("ubuntu/casper/vmlinuz", rf))
	assert.Equal(t, "kernel bits", string(rf.data))
}

func TestReadHandler_LeadingSlashAndBackslash(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "ubuntu/vmlinuz", []byte("kernel"))

	server := newTestServer(t, root)

	for _, filename := range []string{"/ubuntu/vmlinuz", "ubuntu\\vmlinuz"} {
		rf := &mockReaderFrom{}
		require.NoError(t, server.readHandler(filename, rf), filename)
		assert.Equal(t, "kernel", string(rf.data))
	}
}

func TestReadHandler_Malformed(t *testing.T) {
	server := newTestServer(t, t.TempDir())

	for _, filename := range []string{"", "vmlinuz", "ubuntu/", "/"} {
		rf := &mockReaderFrom{}
		assert.Error(t, server.readHandler(filename, rf), filename)
		assert.Empty(t, rf.data)
	}
}

func TestReadHandler_Traversal(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "ubuntu/vmlinuz", []byte("kernel"))

	server := newTestServer(t, root)

	rf := &mockReaderFrom{}
	err := server.readHandler("ubuntu/../../etc/passwd", rf)
	require.Error(t, err)
	assert.True(t, apperrors.IsPathError(err))
	assert.Empty(t, rf.data)
}

func TestReadHandler_UnknownDistro(t *testing.T) {
	server := newTestServer(t, t.TempDir())

	rf := &mockReaderFrom{}
	err := server.readHandler("nosuch/vmlinuz", rf)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestWriteHandler_Rejected(t *testing.T) {
	root := t.TempDir()
	server := newTestServer(t, root)

	wt := &mockWriterTo{data: []byte("payload")}
	assert.Error(t, server.writeHandler("ubuntu/dropped.bin", wt))

	_, err := os.Stat(filepath.Join(root, "ubuntu", "dropped.bin"))
	assert.True(t, os.IsNotExist(err))
}

package tftp

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	v3 "github.com/pin/tftp/v3"
	"go.uber.org/zap"

	"osbootd/distro"
	apperrors "osbootd/internal/errors"
)

// Server exposes the distro trees over read-only TFTP. PXE firmware
// requests artifacts as "<distro>/<path>"; lookups go through the same
// registry and resolver as the HTTP surface.
type Server struct {
	addr       string
	artifacts  distro.ArtifactService
	listener   *net.UDPConn
	tftpServer *v3.Server
	logger     *zap.Logger
}

// NewServer creates a TFTP server bound to addr, serving artifacts from
// the given service.
func NewServer(addr string, artifacts distro.ArtifactService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:      addr,
		artifacts: artifacts,
		logger:    logger,
	}
}

// Start begins listening for TFTP requests. It returns once the server
// is accepting connections, or with the startup error.
func (s *Server) Start() error {
	udpAddr, err := net.ResolveUDPAddr("udp4", s.addr)
	if err != nil {
		return apperrors.NewConfigurationError("tftp_listen", err)
	}

	s.listener, err = net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return apperrors.NewConfigurationError("tftp_listen", err)
	}

	s.tftpServer = v3.NewServer(s.readHandler, s.writeHandler)

	errChan := make(chan error, 1)
	go func() {
		err := s.tftpServer.Serve(s.listener)
		if err != nil {
			s.logger.Error("TFTP server stopped with error", zap.Error(err))
		}
		errChan <- err
	}()

	select {
	case err := <-errChan:
		return err
	case <-time.After(100 * time.Millisecond):
		s.logger.Info("TFTP server listening", zap.String("addr", s.addr))
		return nil
	}
}

// Stop closes the listener, stopping the server from accepting new
// transfers.
func (s *Server) Stop() {
	if s.tftpServer != nil {
		s.tftpServer.Shutdown()
	}
	if s.listener != nil {
		s.listener.Close()
	}
}

// splitRequest splits a TFTP filename into distro name and artifact
// path. TFTP clients sometimes send backslash separators or a leading
// slash; both are tolerated.
func splitRequest(filename string) (distroName, artifactPath string, ok bool) {
	name := strings.ReplaceAll(filename, "\\", "/")
	name = strings.TrimPrefix(name, "/")
	distroName, artifactPath, found := strings.Cut(name, "/")
	if !found || distroName == "" || artifactPath == "" {
		return "", "", false
	}
	return distroName, artifactPath, true
}

func (s *Server) readHandler(filename string, rf io.ReaderFrom) error {
	distroName, artifactPath, ok := splitRequest(filename)
	if !ok {
		s.logger.Warn("TFTP read request blocked, malformed name",
			zap.String("filename", filename),
		)
		return errors.New("file name must be <distro>/<path>")
	}

	stream, err := s.artifacts.Serve(context.Background(), distroName, artifactPath)
	if err != nil {
		if apperrors.IsPathError(err) {
			s.logger.Warn("TFTP read request blocked, potential traversal probe",
				zap.String("filename", filename),
				zap.Error(err),
			)
		} else {
			s.logger.Info("TFTP read request failed",
				zap.String("filename", filename),
				zap.Error(err),
			)
		}
		return err
	}
	defer stream.Close()

	if t, ok := rf.(v3.OutgoingTransfer); ok {
		t.SetSize(stream.Size)
	}

	bytesRead, err := rf.ReadFrom(stream.Content)
	if err != nil {
		s.logger.Error("TFTP transfer failed",
			zap.String("filename", filename),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("TFTP read completed",
		zap.String("distro", distroName),
		zap.String("path", artifactPath),
		zap.Int64("bytes", bytesRead),
	)
	return nil
}

// writeHandler rejects all writes. The artifact trees are read-only.
func (s *Server) writeHandler(filename string, _ io.WriterTo) error {
	s.logger.Warn("TFTP write request rejected", zap.String("filename", filename))
	return errors.New("writes are not permitted")
}

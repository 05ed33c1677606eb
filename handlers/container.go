package handlers

import (
	"go.uber.org/zap"

	"osbootd/config"
	"osbootd/distro"
	"osbootd/ipxe"
)

// Container holds the dependencies handlers need. Handlers keep no state
// of their own, so a single container serves all concurrent requests.
type Container struct {
	Config    *config.Config
	Registry  distro.Registry
	Artifacts distro.ArtifactService
	IPXE      *ipxe.Service
	Logger    *zap.Logger
}

package app

import (
	"go.uber.org/zap"

	"osbootd/config"
	"osbootd/distro"
	"osbootd/handlers"
	"osbootd/ipxe"
)

// Container holds all application dependencies.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  distro.Registry
	Resolver  distro.Resolver
	Artifacts distro.ArtifactService
	IPXE      *ipxe.Service
}

// NewContainer wires up all dependencies from a loaded configuration.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := distro.NewDirRegistry(cfg.Root.Dir, logger)
	resolver := distro.NewPathResolver()
	artifacts := distro.NewService(registry, resolver, logger)
	ipxeService := ipxe.NewService(registry, logger)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Resolver:  resolver,
		Artifacts: artifacts,
		IPXE:      ipxeService,
	}, nil
}

// HandlerContainer returns the dependency set the HTTP handlers use.
func (c *Container) HandlerContainer() *handlers.Container {
	return &handlers.Container{
		Config:    c.Config,
		Registry:  c.Registry,
		Artifacts: c.Artifacts,
		IPXE:      c.IPXE,
		Logger:    c.Logger,
	}
}

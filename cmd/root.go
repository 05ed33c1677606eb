package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"osbootd/app"
	"osbootd/config"
)

var (
	flagRoot     string
	flagHTTPAddr string
	flagTFTP     bool
	flagTFTPAddr string
	flagConfig   string
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "osbootd",
	Short: "Serve OS boot images over HTTP and TFTP",
	Long: `osbootd serves operating-system boot artifacts (kernels, initrds,
boot metadata) from a root directory containing one subdirectory per
distro. It answers listing queries, streams artifacts, and generates
iPXE boot scripts for recognized release flavors.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&flagRoot, "root", "", "distro tree root (default "+config.DefaultRoot+")")
	rootCmd.Flags().StringVar(&flagHTTPAddr, "http-addr", "", "HTTP bind address (default :8080)")
	rootCmd.Flags().BoolVar(&flagTFTP, "tftp", false, "also serve the tree read-only over TFTP")
	rootCmd.Flags().StringVar(&flagTFTPAddr, "tftp-addr", "", "TFTP bind address (default :69)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

func run(c *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	// Flags win over config file and environment.
	if flagRoot != "" {
		cfg.Root.Dir = flagRoot
	}
	if flagHTTPAddr != "" {
		cfg.HTTP.Addr = flagHTTPAddr
	}
	if c.Flags().Changed("tftp") {
		cfg.TFTP.Enabled = flagTFTP
	}
	if flagTFTPAddr != "" {
		cfg.TFTP.Addr = flagTFTPAddr
	}
	if flagDebug {
		cfg.Log.Debug = true
	}

	lcfg := zap.NewProductionConfig()
	if cfg.Log.Debug {
		lcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := lcfg.Build()
	if err != nil {
		log.Fatalf("Error configuring zap logger: %s", err)
	}
	defer logger.Sync()

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}

	return application.Run()
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	app "daily-worklog/internal"
	"daily-worklog/internal/config"
	"daily-worklog/internal/mirror"
	"daily-worklog/internal/storage"
	"daily-worklog/internal/syncer"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the worklog HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Starting daily worklog server...")
		ServerMain(provider)
	},
}

// newCoordinator wires the sync coordinator from config: sqlite primary,
// webhook mirror, retry/timeout knobs.
func newCoordinator(cfg *config.Config, storageProvider storage.Provider) *syncer.Coordinator {
	sink := mirror.NewClient(cfg.Mirror.URL, cfg.StageTimeout(), cfg.Mirror.Locale)
	if !sink.Configured() {
		slog.Warn("Mirror sink not configured, sheet channel disabled")
	}

	return syncer.NewCoordinator(storageProvider, sink, syncer.Options{
		PrimaryAttempts: int(cfg.Sync.PrimaryAttempts),
		PrimaryBackoff:  cfg.PrimaryBackoff(),
		StageTimeout:    cfg.StageTimeout(),
	})
}

func ServerMain(storageProvider storage.Provider) {
	if config.Cfg == nil {
		panic("Config not initialized.")
	}

	// Use the provider passed from cobra command (already initialized)
	if storageProvider == nil {
		slog.Error("Storage provider is nil")
		os.Exit(1)
	}

	coordinator := newCoordinator(config.Cfg, storageProvider)

	// Initialize HTTP server
	server := app.HTTPServer()

	// Middleware to inject the adapters into context
	server.Use(func(c *gin.Context) {
		c.Set("Storage", storageProvider)
		c.Next()
	}, func(c *gin.Context) {
		c.Set("Coordinator", coordinator)
		c.Next()
	})

	app.RegisterRoutes(server)

	server.Run(config.Cfg.ListenAddr)
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/onepage/internal/editor"
	"github.com/ziadkadry99/onepage/internal/server"
)

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor API server",
	Long:  `Starts the HTTP/JSON and WebSocket API the browser editor talks to, including the copywriting endpoint and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := newCatalog(cfg)
		if err != nil {
			return err
		}
		projectStore, closeProjects, err := openProjects(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeProjects()
		copywriter, err := newCopywriter(cfg, logger)
		if err != nil {
			return err
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}
		srv := server.New(server.Config{Port: port, AllowAll: cfg.Server.AllowAllOrigins}, logger)

		editor.New(editor.Deps{
			Catalog:    store,
			Sessions:   newSessionManager(cfg, store, logger),
			Composer:   newComposer(cfg, logger),
			Projects:   projectStore,
			Codes:      newDirectory(cfg),
			Copywriter: copywriter,
			Logger:     logger,
		}).RegisterRoutes(srv.Router())

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		logger.Info("starting onepage server",
			zap.String("version", Version),
			zap.Int("port", port),
			zap.Int("templates", len(store.List())),
			zap.String("storage", storageLabel(cfg.Storage.Driver)),
		)

		if err := srv.Start(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func storageLabel(driver string) string {
	if driver == "" {
		return "none (demo mode)"
	}
	return driver
}

func init() {
	serveCmd.Flags().IntVar(&serverPort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

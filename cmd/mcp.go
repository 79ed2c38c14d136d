package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/onepage/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing template browsing, page editing, export and image composition as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		defer logger.Sync()

		store, err := newCatalog(cfg)
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "onepage MCP server started on stdio (templates=%d)\n", len(store.List()))

		srv := mcpserver.NewServer(mcpserver.Deps{
			Catalog:   store,
			Sessions:  newSessionManager(cfg, store, logger),
			Composer:  newComposer(cfg, logger),
			OutputDir: cfg.Compositor.OutputDir,
			Logger:    logger,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

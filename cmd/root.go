package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/onepage/internal/config"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "onepage",
	Short: "Template-driven product page editor with an AI copywriter",
	Long: `onepage builds marketplace-style product pages from templates. Edit the
page by chatting with a copywriting assistant or by applying patches, frame
screenshots for the media gallery, and export the result as inline-styled
HTML ready to paste into any rich-text editor.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFile)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/onepage/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize onepage configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the assistant endpoint, copywriting provider, project storage and server port, and writes a .onepage.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := config.Load(cfgFile)
		if err != nil {
			base = config.DefaultConfig()
		}
		_, err = config.RunWizard(cfgFile, base)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

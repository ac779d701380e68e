package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/peta-ikm/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize petaikm configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to locate the map inputs and generates a .petaikm.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/peta-ikm/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "petaikm",
	Short: "Choropleth map of the IKM clusters of Jambi province",
	Long: `petaikm joins the regency and city boundaries of Jambi province with
their IKM cluster percentages and renders an interactive map. Each region
carries a tooltip with its three cluster values and a popup bar chart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints a failure exactly once.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		var banner *bannerError
		if errors.As(err, &banner) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), banner.Error())
		} else {
			fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/peta-ikm/internal/mapdoc"
	"github.com/ziadkadry99/peta-ikm/internal/pipeline"
	"github.com/ziadkadry99/peta-ikm/internal/progress"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the map once to a standalone HTML file",
	Long:  `Runs the full pipeline once and writes the map page to a file, or to stdout when no output is given.`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output HTML file (default stdout)")
	exportCmd.Flags().Bool("overview", false, "embed the overview chart (overrides config)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("overview") {
		cfg.Map.ShowOverview, _ = cmd.Flags().GetBool("overview")
	}
	output, _ := cmd.Flags().GetString("output")

	var reporter progress.Reporter = progress.Nop{}
	if output != "" {
		reporter = progress.NewReporter()
	}

	out, err := pipeline.Run(context.Background(), cfg, pipeline.Options{
		Reporter: reporter,
		Verbose:  verbose,
	})
	if err != nil {
		return &bannerError{err: err}
	}

	if output == "" {
		return mapdoc.WritePage(os.Stdout, out.Document)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := mapdoc.WritePage(f, out.Document); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", output, err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %s (%d regions, %d dropped) in %s\n",
		output, len(out.Document.Overlays), len(out.Result.Dropped), time.Since(start).Round(time.Millisecond))
	return nil
}

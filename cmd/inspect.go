package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/peta-ikm/internal/pipeline"
	"github.com/ziadkadry99/peta-ikm/internal/walker"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Check the inputs and report regions that do not join",
	Long: `Extracts the archive, loads the boundaries and the attribute table and
joins them without rendering. Prints the extracted inputs, the number of
joined regions and every identifier present on only one side.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, err := pipeline.Prepare(context.Background(), cfg, pipeline.Options{Verbose: verbose})
	if err != nil {
		return &bannerError{err: err}
	}
	inputs, err := pipeline.Inventory(cfg)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Inputs in %s:\n", cfg.WorkDir)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range inputs {
		fmt.Fprintf(tw, "  %s\t%s\t%d bytes\t%.12s\n", f.RelPath, f.Kind, f.Size, f.ContentHash)
	}
	tw.Flush()

	for _, set := range walker.Shapefiles(inputs) {
		status := "ok"
		if !set.Complete() {
			status = "missing .dbf"
		}
		fmt.Fprintf(w, "Shapefile %s: sidecars %v (%s)\n", set.Shapefile, set.Sidecars, status)
	}

	res := out.Result
	fmt.Fprintf(w, "\nBoundaries: %d features (%s)\n", len(out.Layer.Shapes), res.CRS)
	fmt.Fprintf(w, "Attributes: %d rows, columns %v\n", len(out.Table.Rows), out.Table.Columns)
	fmt.Fprintf(w, "Joined:     %d regions\n", len(res.Regions))

	if len(res.Dropped) == 0 {
		fmt.Fprintln(w, "Dropped:    none")
		return nil
	}
	fmt.Fprintf(w, "Dropped:    %d\n", len(res.Dropped))
	for _, u := range res.Dropped {
		fmt.Fprintf(w, "  - %s\n", u)
	}
	return nil
}

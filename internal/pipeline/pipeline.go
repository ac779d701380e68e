// Package pipeline runs the map build end to end: archive extraction,
// loading, joining, chart building and composition. Run is the single
// place where stage failures are collected.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ziadkadry99/peta-ikm/internal/archive"
	"github.com/ziadkadry99/peta-ikm/internal/chart"
	"github.com/ziadkadry99/peta-ikm/internal/config"
	"github.com/ziadkadry99/peta-ikm/internal/dataset"
	"github.com/ziadkadry99/peta-ikm/internal/join"
	"github.com/ziadkadry99/peta-ikm/internal/mapdoc"
	"github.com/ziadkadry99/peta-ikm/internal/progress"
	"github.com/ziadkadry99/peta-ikm/internal/walker"
)

// Banner texts shown when a run fails.
const (
	MissingArchiveMessage = "❌ File ZIP tidak ditemukan."
	FailureMessage        = "❌ Terjadi kesalahan saat memproses peta: "
)

// OverviewTitle heads the all-regions overview chart.
const OverviewTitle = "Persentase Cluster per Kabupaten/Kota"

// Options tunes a run.
type Options struct {
	Reporter progress.Reporter // nil reports nothing
	Verbose  bool              // log one line per stage
}

// Output holds everything a run produced.
type Output struct {
	Extracted []archive.File
	Layer     *dataset.Layer
	Table     *dataset.Table
	Result    *join.Result
	Charts    []*chart.Artifact
	Overview  []byte
	Document  *mapdoc.Document
}

type stage struct {
	name string
	run  func(ctx context.Context, cfg *config.Config, out *Output) error
}

var prepareStages = []stage{
	{"Extracting archive", extract},
	{"Loading boundaries", loadShapes},
	{"Loading attributes", loadTable},
	{"Joining regions", joinRegions},
}

var renderStages = []stage{
	{"Building charts", buildCharts},
	{"Building overview", buildOverview},
	{"Composing map", compose},
}

// Prepare extracts the archive, loads both inputs and joins them.
func Prepare(ctx context.Context, cfg *config.Config, opts Options) (*Output, error) {
	return run(ctx, cfg, opts, prepareStages)
}

// Run builds the complete map document. Every invocation starts from
// scratch; nothing is cached between runs.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Output, error) {
	stages := append(append([]stage(nil), prepareStages...), renderStages...)
	return run(ctx, cfg, opts, stages)
}

func run(ctx context.Context, cfg *config.Config, opts Options, stages []stage) (out *Output, err error) {
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Nop{}
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	out = &Output{}
	rep.Start(len(stages))
	defer rep.Finish()
	for i, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep.Update(i, s.name)
		if err := s.run(ctx, cfg, out); err != nil {
			return nil, err
		}
		if opts.Verbose {
			log.Printf("pipeline: %s: done", s.name)
		}
	}
	rep.Update(len(stages), "Done")
	return out, nil
}

// Message is the banner text for a failed run.
func Message(err error) string {
	var missing *archive.MissingArchiveError
	if errors.As(err, &missing) {
		return MissingArchiveMessage
	}
	return FailureMessage + err.Error()
}

// Selector returns the cluster value selector configured in cfg.
func Selector(cfg *config.Config) chart.Selector {
	if cfg.Positional() {
		return chart.Positional()
	}
	return chart.Named(cfg.ClusterColumns...)
}

func extract(_ context.Context, cfg *config.Config, out *Output) error {
	files, err := archive.Extract(cfg.Path(cfg.Archive), cfg.WorkDir)
	if err != nil {
		return err
	}
	out.Extracted = files
	return nil
}

// Inventory lists the recognised input files below the work directory,
// with content hashes. Rendering never needs it; inspect does.
func Inventory(cfg *config.Config) ([]walker.FileInfo, error) {
	files, err := walker.Walk(walker.WalkerConfig{RootDir: cfg.WorkDir, Exclude: cfg.Exclude})
	if err != nil {
		return nil, fmt.Errorf("listing inputs: %w", err)
	}
	return files, nil
}

func locate(cfg *config.Config, name string) (string, error) {
	path, err := walker.Find(cfg.WorkDir, name, cfg.Exclude)
	if err != nil {
		return "", &dataset.DataLoadError{Path: cfg.Path(name), Err: err}
	}
	return path, nil
}

func loadShapes(_ context.Context, cfg *config.Config, out *Output) error {
	path, err := locate(cfg, cfg.Shapefile)
	if err != nil {
		return err
	}
	out.Layer, err = dataset.LoadShapes(path, cfg.IDColumn)
	return err
}

func loadTable(_ context.Context, cfg *config.Config, out *Output) error {
	path, err := locate(cfg, cfg.Attributes)
	if err != nil {
		return err
	}
	out.Table, err = dataset.LoadTable(path, cfg.IDColumn)
	return err
}

func joinRegions(_ context.Context, cfg *config.Config, out *Output) error {
	res, err := join.Join(out.Layer, out.Table, join.Options{
		SourceCRS:         cfg.SourceCRS,
		SimplifyTolerance: cfg.SimplifyTolerance,
	})
	if err != nil {
		return err
	}
	for _, d := range res.Dropped {
		log.Printf("pipeline: dropped unmatched %s", d)
	}
	out.Result = res
	return nil
}

func buildCharts(ctx context.Context, cfg *config.Config, out *Output) error {
	sel := Selector(cfg)
	out.Charts = make([]*chart.Artifact, 0, len(out.Result.Regions))
	for _, r := range out.Result.Regions {
		if err := ctx.Err(); err != nil {
			return err
		}
		a, err := chart.Build(r, sel)
		if err != nil {
			return err
		}
		out.Charts = append(out.Charts, a)
	}
	return nil
}

func buildOverview(_ context.Context, cfg *config.Config, out *Output) error {
	if !cfg.Map.ShowOverview {
		return nil
	}
	svg, err := chart.Overview(OverviewTitle, out.Result.Regions, Selector(cfg))
	if err != nil {
		return err
	}
	out.Overview = svg
	return nil
}

func compose(_ context.Context, cfg *config.Config, out *Output) error {
	doc, err := mapdoc.Compose(out.Result, out.Charts, mapdoc.Options{
		Title:       cfg.Map.Title,
		Notes:       cfg.Map.Notes,
		Zoom:        cfg.Map.Zoom,
		Tiles:       cfg.Map.Tiles,
		Attribution: cfg.Map.Attribution,
		Width:       cfg.Map.Width,
		Height:      cfg.Map.Height,
		Selector:    Selector(cfg),
		Overview:    out.Overview,
	})
	if err != nil {
		return err
	}
	out.Document = doc
	return nil
}

// Package datasettest writes small boundary shapefiles, attribute tables and
// input bundles for tests.
package datasettest

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// WGS84 is the .prj text of a geographic shapefile.
const WGS84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// Feature is one polygon record to write.
type Feature struct {
	ID    string
	Rings []orb.Ring
}

// Square returns a closed clockwise ring for the square with its lower left
// corner at (x, y).
func Square(x, y, size float64) orb.Ring {
	return orb.Ring{{x, y}, {x, y + size}, {x + size, y + size}, {x + size, y}, {x, y}}
}

// Regions are three neighbouring regencies around Jambi city.
var Regions = []Feature{
	{ID: "KOTA JAMBI", Rings: []orb.Ring{Square(103.55, -1.65, 0.1)}},
	{ID: "MUARO JAMBI", Rings: []orb.Ring{Square(103.65, -1.75, 0.4)}},
	{ID: "BATANG HARI", Rings: []orb.Ring{Square(103.0, -2.0, 0.5)}},
}

// Clusters covers only two of the three Regions.
const Clusters = `KAB_KOTA,CLUSTER 1,CLUSTER 2,CLUSTER 3
KOTA JAMBI,12.345,50.0,37.655
MUARO JAMBI,30,40,30
`

// WriteShapefile writes a polygon shapefile at path with a single string
// identifier field. The .prj sidecar is written when prj is not empty.
func WriteShapefile(t testing.TB, path, idField string, features []Feature, prj string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		t.Fatalf("creating shapefile: %v", err)
	}
	if err := w.SetFields([]shp.Field{shp.StringField(idField, 50)}); err != nil {
		t.Fatalf("setting fields: %v", err)
	}
	for _, f := range features {
		parts := make([][]shp.Point, len(f.Rings))
		for i, ring := range f.Rings {
			for _, p := range ring {
				parts[i] = append(parts[i], shp.Point{X: p[0], Y: p[1]})
			}
		}
		poly := shp.Polygon(*shp.NewPolyLine(parts))
		row := w.Write(&poly)
		if err := w.WriteAttribute(int(row), 0, f.ID); err != nil {
			t.Fatalf("writing attribute: %v", err)
		}
	}
	w.Close()

	// The writer names the table "<base>dbf" without the dot.
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		t.Fatalf("renaming dbf: %v", err)
	}
	if prj != "" {
		WriteFile(t, base+".prj", prj)
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// WriteZip packs files into a zip archive at zipPath, storing each under
// its path relative to root.
func WriteZip(t testing.TB, zipPath, root string, files ...string) {
	t.Helper()
	out, err := os.Create(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(out)
	for _, name := range files {
		rel, err := filepath.Rel(root, name)
		if err != nil {
			t.Fatal(err)
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			t.Fatal(err)
		}
		in, err := os.Open(name)
		if err != nil {
			t.Fatal(err)
		}
		_, err = io.Copy(w, in)
		in.Close()
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
}

// Bundle writes peta_ikm_jambi_files.zip into dir holding KABKOTA.shp with
// the given features and the cluster table, and returns the archive path.
// The loose source files are removed so only the archive remains.
func Bundle(t testing.TB, dir string, features []Feature, clusters string) string {
	t.Helper()
	src := t.TempDir()
	shpPath := filepath.Join(src, "KABKOTA.shp")
	WriteShapefile(t, shpPath, "KAB_KOTA", features, WGS84)
	csvPath := filepath.Join(src, "persentase_cluster_per_kabupaten.csv")
	WriteFile(t, csvPath, clusters)

	var files []string
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		files = append(files, filepath.Join(src, "KABKOTA"+ext))
	}
	files = append(files, csvPath)

	zipPath := filepath.Join(dir, "peta_ikm_jambi_files.zip")
	WriteZip(t, zipPath, src, files...)
	return zipPath
}

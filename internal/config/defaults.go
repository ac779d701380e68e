package config

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = ".petaikm.yml"

// DefaultClusterColumns name the attribute columns read as the three
// cluster values.
var DefaultClusterColumns = []string{"CLUSTER 1", "CLUSTER 2", "CLUSTER 3"}

// DefaultNotes is shown under the legend. The polygons are drawn in a
// single neutral style, so the legend colours only apply to the charts.
const DefaultNotes = "Warna pada keterangan berlaku untuk grafik batang di setiap wilayah. " +
	"Arsiran wilayah pada peta tidak diwarnai berdasarkan nilai cluster. " +
	"Klik wilayah untuk melihat grafiknya."

// DefaultConfig returns a Config with the defaults for the Jambi dataset.
func DefaultConfig() *Config {
	return &Config{
		WorkDir:        ".",
		Archive:        "peta_ikm_jambi_files.zip",
		Shapefile:      "KABKOTA.shp",
		Attributes:     "persentase_cluster_per_kabupaten.csv",
		IDColumn:       "KAB_KOTA",
		ClusterColumns: append([]string(nil), DefaultClusterColumns...),
		Map: MapConfig{
			Title:  "📍 Peta IKM Provinsi Jambi",
			Zoom:   8,
			Tiles:  "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
			Width:  1100,
			Height: 700,
			Notes:  DefaultNotes,
		},
		Server: ServerConfig{
			Port: 8501,
		},
	}
}

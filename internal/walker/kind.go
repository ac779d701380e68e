package walker

import (
	"path/filepath"
	"strings"
)

// Kind classifies an input file by the role it plays in the pipeline.
type Kind string

const (
	KindUnknown   Kind = ""
	KindShapefile Kind = "shapefile"
	KindSidecar   Kind = "sidecar"
	KindTable     Kind = "table"
	KindArchive   Kind = "archive"
)

// extensionToKind maps file extensions to dataset kinds.
var extensionToKind = map[string]Kind{
	".shp": KindShapefile,
	// Shapefile companions.
	".dbf": KindSidecar,
	".shx": KindSidecar,
	".prj": KindSidecar,
	".cpg": KindSidecar,
	".sbn": KindSidecar,
	".sbx": KindSidecar,
	".qmd": KindSidecar,
	// Attribute tables.
	".csv":  KindTable,
	".xlsx": KindTable,
	".xlsm": KindTable,
	".zip":  KindArchive,
}

// DetectKind returns the dataset kind for the given file name or path.
func DetectKind(name string) Kind {
	return extensionToKind[strings.ToLower(filepath.Ext(name))]
}

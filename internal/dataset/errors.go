package dataset

import "fmt"

// DataLoadError reports that an input file is missing, unreadable or
// structurally invalid.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func loadErr(path string, format string, args ...any) *DataLoadError {
	return &DataLoadError{Path: path, Err: fmt.Errorf(format, args...)}
}

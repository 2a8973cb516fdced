package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mapsizes/region"
)

var formats = map[string]func(io.Writer, *region.Table) error{
	"xlsx": WriteXLSX,
	"csv":  WriteCSV,
}

// Save persists t at path in the given format ("xlsx" or "csv"). The
// table is written to a temporary sibling file and renamed into place
// only once fully flushed, so a failed export never leaves a truncated
// destination behind.
func Save(path, format string, t *region.Table) (err error) {
	write := formats[format]
	if write == nil {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	outFile, err := os.CreateTemp(dir, name)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", name, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", name, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", name, defErr)
		}

		if !canRename || err != nil {
			os.Remove(outFile.Name())
			return
		}
		if defErr := os.Rename(outFile.Name(), path); defErr != nil {
			err = fmt.Errorf("could not rename destination file %q: %w", name, defErr)
		}
	}()

	if err = write(outFile, t); err != nil {
		return fmt.Errorf("could not encode %s destination %q: %w", format, name, err)
	}
	canRename = true
	return nil
}

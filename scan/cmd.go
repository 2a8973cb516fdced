package scan

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

type CLICmd struct {
	Dir string `arg:"" optional:"" help:"Folder to scan for candidate map images" default:"."`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Dir)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Dir, err)
	}
	c.Dir = scanDir
	return nil
}

func (c *CLICmd) Run() error {
	files, err := os.ReadDir(c.Dir)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Dir, err)
	}

	var imageCount, skipCount int
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		name := filepath.Join(c.Dir, file.Name())
		imgFile, err := os.Open(name)
		if err != nil {
			skipCount++
			slog.Error("could not open file", "file", name, "error", err)
			continue
		}

		imgConf, format, err := image.DecodeConfig(imgFile)
		if closeErr := imgFile.Close(); closeErr != nil {
			slog.Error("could not close file", "file", name, "error", closeErr)
		}
		if err != nil {
			// Not a raster image we can decode, skip silently.
			skipCount++
			continue
		}

		imageCount++
		slog.Info("candidate", "file", file.Name(), "format", format,
			"width", imgConf.Width, "height", imgConf.Height,
			"equirectangular_aspect", imgConf.Width == 2*imgConf.Height)
	}

	slog.Info("stats", "images", imageCount, "skipped", skipCount, "total", imageCount+skipCount)
	return nil
}

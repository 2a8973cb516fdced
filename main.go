package main

import (
	"github.com/alecthomas/kong"

	"mapsizes/calc"
	"mapsizes/scan"
)

var cli struct {
	Calc calc.CLICmd `cmd:"" help:"Estimate per-region land area from a color-coded equirectangular map"`
	Scan scan.CLICmd `cmd:"" help:"List raster images in a folder with their dimensions"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("mapsizes"),
		kong.Description("Per-region land area and population estimates from color-coded equirectangular maps."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run())
}

// Package main provides the entry point for the bead-scheme command.
package main

import (
	"flag"
	"fmt"
	goimage "image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bead-scheme/internal/app"
	"bead-scheme/internal/grid"
	"bead-scheme/internal/image"
	"bead-scheme/internal/prefs"
	"bead-scheme/internal/version"
	"bead-scheme/pkg/colorutil"
)

const appTitle = "bead-scheme"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	imagePath := flag.String("image", "", "Source image (PNG, JPEG, GIF, WebP, BMP or TIFF)")
	schemePath := flag.String("scheme", "", "Scheme file to continue from")
	stitch := flag.String("stitch", "", "Stitch type: Square, Brick or Peyote")
	ratio := flag.Int("ratio", 0, "Bead ratio as height in half widths (2 round, 3 oval)")
	width := flag.Int("width", 0, "Grid width in beads; the height is derived")
	height := flag.Int("height", 0, "Grid height in beads; the width is derived")
	paletteList := flag.String("palette", "", "Comma separated hex colors, the first is the background")
	suggest := flag.Int("suggest", 0, "Propose N palette colors from the image")
	brightness := flag.Float64("brightness", image.BrightnessNormal, "Brightness adjustment (-1 to 1)")
	saturation := flag.Float64("saturation", image.SaturationNormal, "Saturation adjustment (0 to 3)")
	contrast := flag.Float64("contrast", image.ContrastNormal, "Contrast adjustment (0 to 3)")
	maxCells := flag.Int("max-cells", 0, "Beads per page side")
	cellSize := flag.Int("cell-size", 0, "Printed pixels per bead")
	outDir := flag.String("out", "", "Directory for page-NNN.png files")
	savePath := flag.String("save", "", "Write the scheme to this file")
	printWidth := flag.Int("print-width", 0, "Resample pages wider than this many pixels")
	savePrefs := flag.Bool("save-prefs", false, "Store stitch, ratio, width, palette and page settings as defaults")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(appTitle))
		return
	}

	log.Printf("Starting %s v%s", appTitle, version.Version)

	if (*imagePath == "") == (*schemePath == "") {
		fmt.Println("Usage: bead-scheme (-image <path> | -scheme <path>) [-out dir] [-save file.jsonscheme]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *imagePath != "" && !image.IsSupportedFormat(*imagePath) {
		fail("Failed to load image %s: unsupported format, want one of %s",
			*imagePath, strings.Join(image.SupportedFormats(), " "))
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	appPrefs := prefs.Load()
	cfg := appPrefs.Config()
	var err error
	if set["stitch"] {
		if cfg.Stitch, err = grid.ParseStitchType(*stitch); err != nil {
			fail("Failed to parse stitch: %v", err)
		}
	}
	if set["ratio"] {
		cfg.BeadRatio = *ratio
	}
	if set["width"] {
		cfg.GridWidth = *width
	}
	if set["max-cells"] {
		cfg.MaxCellsPerPage = *maxCells
	}
	if set["cell-size"] {
		cfg.CellSize = *cellSize
	}
	if set["palette"] {
		if cfg.Palette, err = colorutil.ParseHexList(*paletteList); err != nil {
			fail("Failed to parse palette: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		fail("Invalid settings: %v", err)
	}

	state := app.NewStateWithConfig(cfg)
	if *schemePath != "" {
		if err := state.LoadScheme(*schemePath); err != nil {
			fail("Failed to load scheme %s: %v", *schemePath, err)
		}
		applySchemeOverrides(state, cfg, set)
	} else {
		if err := state.LoadImage(*imagePath); err != nil {
			fail("Failed to load image %s: %v", *imagePath, err)
		}
	}

	if set["height"] {
		if err := state.SetGridHeight(*height); err != nil {
			fail("Failed to set grid height: %v", err)
		}
	}
	if set["brightness"] || set["saturation"] || set["contrast"] {
		adj := image.Adjustments{Brightness: *brightness, Saturation: *saturation, Contrast: *contrast}
		if err := state.SetAdjustments(adj); err != nil {
			fail("Failed to adjust image: %v", err)
		}
	}
	if *suggest > 0 {
		colors, err := state.SuggestPalette(*suggest)
		if err != nil {
			fail("Failed to suggest palette: %v", err)
		}
		log.Printf("Suggested %d colors", len(colors))
	}

	cols, rows := state.Dimensions()
	fmt.Printf("Grid: %dx%d %v, %d colors, %s\n",
		cols, rows, state.StitchType(), state.Palette().Len(), state.GridState())

	if *outDir != "" {
		if err := writePages(state, *outDir, cfg.MaxCellsPerPage, app.RenderOptions{
			CellSize:   cfg.CellSize,
			PrintWidth: *printWidth,
		}); err != nil {
			fail("Failed to write pages: %v", err)
		}
	}

	if *savePath != "" {
		if err := state.SaveScheme(*savePath); err != nil {
			fail("Failed to save scheme: %v", err)
		}
		fmt.Printf("Saved %s\n", state.SchemePath())
	}

	if *savePrefs {
		appPrefs.SetConfig(cfg)
		if err := appPrefs.Save(); err != nil {
			fail("Failed to save preferences: %v", err)
		}
		log.Printf("Saved preferences to %s", appPrefs.Path())
	}
}

// applySchemeOverrides applies explicitly given settings on top of a
// restored scheme, in the order a user would change them.
func applySchemeOverrides(state *app.State, cfg prefs.Config, set map[string]bool) {
	if set["stitch"] {
		if err := state.SetStitchType(cfg.Stitch); err != nil {
			fail("Failed to set stitch: %v", err)
		}
	}
	if set["ratio"] {
		if err := state.SetBeadRatio(cfg.BeadRatio); err != nil {
			fail("Failed to set bead ratio: %v", err)
		}
	}
	if set["width"] {
		if err := state.SetGridWidth(cfg.GridWidth); err != nil {
			fail("Failed to set grid width: %v", err)
		}
	}
	if set["palette"] {
		if err := state.SetPalette(cfg.Palette); err != nil {
			fail("Failed to set palette: %v", err)
		}
	}
}

func writePages(state *app.State, dir string, maxCells int, opts app.RenderOptions) error {
	imgs, err := state.RenderPages(maxCells, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i, img := range imgs {
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", i))
		if err := writePNG(path, img); err != nil {
			return err
		}
	}
	fmt.Printf("Wrote %d pages to %s\n", len(imgs), dir)
	return nil
}

func writePNG(path string, img goimage.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Command schemeinfo prints a saved bead scheme and its bead counts.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"bead-scheme/internal/app"
	"bead-scheme/internal/palette"
	"bead-scheme/internal/project"
	"bead-scheme/internal/version"
)

func main() {
	schemePath := flag.String("scheme", "", "Path to a .jsonscheme file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("schemeinfo"))
		return
	}
	if *schemePath == "" {
		fmt.Println("Usage: schemeinfo -scheme <path>")
		os.Exit(1)
	}

	sc, err := project.Load(*schemePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scheme: %v\n", err)
		os.Exit(1)
	}
	pal, err := palette.FromMap(sc.Palette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read palette: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scheme:     %s\n", *schemePath)
	fmt.Printf("Image:      %s (%d bytes)\n", sc.ImageFileName, len(sc.Image))
	if !sc.Modified.IsZero() {
		fmt.Printf("Saved:      %s\n", sc.Modified.Format("2006-01-02 15:04"))
	}
	fmt.Printf("Grid:       %dx%d %v, bead ratio %d, %s\n",
		sc.GridWidth, sc.GridHeight, sc.StitchType, sc.BeadRatio, sc.GridState)
	fmt.Printf("Adjust:     brightness %.2f saturation %.2f contrast %.2f\n",
		sc.Brightness, sc.Saturation, sc.Contrast)

	fmt.Printf("\nPalette (%d colors):\n", pal.Len())
	for k, c := range pal.Colors() {
		fmt.Printf("  %3d  %s\n", k, c)
	}

	counts := app.CountBeads(sc.Grid, pal)
	fmt.Printf("\n%-5s %-10s %8s\n", "Key", "Color", "Beads")
	fmt.Println(strings.Repeat("-", 25))
	total := 0
	for _, bc := range counts {
		key := fmt.Sprint(bc.Key)
		if bc.Key < 0 {
			key = "-"
		}
		fmt.Printf("%-5s %-10s %8d\n", key, bc.Color, bc.Count)
		total += bc.Count
	}
	fmt.Printf("\nTotal: %d beads\n", total)

	var pinned []string
	for _, c := range sc.Grid.Coords() {
		if sc.Grid[c].Fixed {
			pinned = append(pinned, fmt.Sprintf("%v %s", c, sc.Grid[c].Resolved))
		}
	}
	if len(pinned) > 0 {
		fmt.Printf("\nManual edits (%d):\n", len(pinned))
		for _, line := range pinned {
			fmt.Printf("  %s\n", line)
		}
	}
}

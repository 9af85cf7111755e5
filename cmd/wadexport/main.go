package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"saucer-wad-exporter/internal/batch"
	"saucer-wad-exporter/internal/config"
	"saucer-wad-exporter/internal/wad"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	wadPath := flag.String("wad", "", "WAD file to export (or first argument)")
	outputDir := flag.String("output", "", "Output directory (default: <name>_wad_exported)")
	format := flag.String("format", "", "Image format: png, webp, tga, bmp (default: png)")
	scale := flag.Int("scale", 0, "Integer upscale factor for bitmaps (default: 1)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	noManifest := flag.Bool("no-manifest", false, "Do not write manifest.json")
	skipSounds := flag.Bool("skip-sounds", false, "Do not extract sounds")
	skipModels := flag.Bool("skip-models", false, "Do not extract models")
	skipBitmaps := flag.Bool("skip-bitmaps", false, "Do not extract textures and bitmaps")
	anyVersion := flag.Bool("any-version", false, "Read containers with an unexpected header version")
	yes := flag.Bool("y", false, "Overwrite an existing output directory without asking")

	flag.Parse()

	if *wadPath == "" && flag.NArg() > 0 {
		*wadPath = flag.Arg(0)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	err := cfg.Resolve(config.Flags{
		WADPath:     *wadPath,
		OutputDir:   *outputDir,
		ImageFormat: *format,
		BitmapScale: *scale,
		Workers:     *workers,
		NoManifest:  *noManifest,
		SkipSounds:  *skipSounds,
		SkipModels:  *skipModels,
		SkipBitmaps: *skipBitmaps,
		AnyVersion:  *anyVersion,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <wad_file>\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Saucerman WAD file exporter")
	fmt.Println()

	fmt.Printf("Reading %s...\n", cfg.WADPath)
	c, err := wad.ReadFileWith(cfg.WADPath, wad.Options{AnyVersion: cfg.AnyVersion})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, wad.ErrUnsupportedVersion) {
			fmt.Fprintln(os.Stderr, "Use -any-version to read it anyway")
		}
		os.Exit(1)
	}
	fmt.Printf("WAD Version %d\n", c.Header().Version)

	for _, dup := range c.Models().Duplicates() {
		fmt.Fprintf(os.Stderr, "Warning: duplicate model name %q\n", dup)
	}
	for _, dup := range c.Sounds().Duplicates() {
		fmt.Fprintf(os.Stderr, "Warning: duplicate sound name %q\n", dup)
	}

	if _, err := os.Stat(cfg.OutputDir); err == nil {
		if !*yes && !confirmOverwrite(cfg.OutputDir) {
			fmt.Println("Aborting")
			os.Exit(2)
		}
		if err := os.RemoveAll(cfg.OutputDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Format:      cfg.Format(),
		BitmapScale: cfg.BitmapScale,
		Workers:     cfg.Workers,
		SkipSounds:  cfg.SkipSounds,
		SkipModels:  cfg.SkipModels,
		SkipBitmaps: cfg.SkipBitmaps,
	}
	jobs := batch.Plan(c, batchCfg)

	fmt.Printf("Bitmaps: %d, Sounds: %d, Models: %d\n", c.NumBitmaps(), c.Sounds().Len(), c.Models().Len())
	fmt.Printf("Assets: %d, Workers: %d, Format: %s\n", len(jobs), cfg.Workers, cfg.ImageFormat)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(c, batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	failed := batch.Failed(results)
	fmt.Printf("Extracted: %d/%d\n", len(results)-failed, len(results))

	if failed > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		shown := 0
		for _, r := range results {
			if r.Success {
				continue
			}
			if shown == 20 {
				fmt.Printf("  ... and %d more\n", failed-shown)
				break
			}
			fmt.Printf("  %s %s: %s\n", r.Kind, r.Name, r.Error)
			shown++
		}
	}

	if cfg.Manifest() {
		manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
		m := batch.NewManifest(filepath.Base(cfg.WADPath), int(c.Header().Version), results)
		if err := batch.WriteManifest(manifestPath, m); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
	fmt.Println("All done!")
}

func confirmOverwrite(dir string) bool {
	fmt.Printf("Output directory '%s' already exists - overwrite?\n", dir)
	fmt.Print("Enter 'y'/'n': ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "y"
}

package main

import (
	"flag"
	"fmt"
	"os"

	"saucer-wad-exporter/internal/scene"
	"saucer-wad-exporter/internal/texture"
	"saucer-wad-exporter/internal/wad"
)

func main() {
	wadPath := flag.String("wad", "", "WAD file to read")
	name := flag.String("model", "", "Name of the model to export")
	output := flag.String("output", "", "Output .gltf path (default: <model>.gltf)")
	anyVersion := flag.Bool("any-version", false, "Read containers with an unexpected header version")
	flag.Parse()

	if *wadPath == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "Usage: wadmodel -wad <wad_file> -model <name> [-output file.gltf]")
		os.Exit(1)
	}
	if *output == "" {
		*output = texture.FileName(*name) + ".gltf"
	}

	c, err := wad.ReadFileWith(*wadPath, wad.Options{AnyVersion: *anyVersion})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	model, err := c.DecodeModelByName(*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if len(c.Models().Names()) > 0 {
			fmt.Fprintf(os.Stderr, "Models: %v\n", c.Models().Names())
		}
		os.Exit(1)
	}

	data, err := scene.Export(c, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d vertices, %d faces -> %s (%d bytes)\n", *name, len(model.Vertices), len(model.Faces), *output, len(data))
}

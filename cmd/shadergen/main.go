// shadergen prints the GLSL programs the mesh mapper generates for a set
// of rendering features.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Faultbox/meshgl/internal/engine/lighting"
	"github.com/Faultbox/meshgl/internal/engine/shader"
	"github.com/Faultbox/meshgl/internal/engine/shadercache"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "build", "b":
		err = cmdBuild(os.Stdout, args)
	case "matrix", "m":
		err = cmdMatrix(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`shadergen - mesh mapper shader generator

Usage:
  shadergen <command> [options]

Commands:
  build [flags]      Print (or write with -out) one generated program
  matrix [-lighting] List every feature combination and its program hash

Build flags:
  -lighting none|headlight|lightkit|positional
  -colors            per-vertex colors
  -mode diffuse|ambient|ambient_and_diffuse
  -normals           per-vertex normals
  -tcoords 0|1|2     texture coordinate components
  -wireframe, -points, -picking, -peeling

Examples:
  shadergen build -lighting lightkit -normals -colors
  shadergen build -lighting none -picking -out ./shaders
  shadergen matrix -lighting headlight`)
}

func parseColorTerm(s string) (shader.ColorTerm, bool) {
	for t := shader.ColorDiffuse; t <= shader.ColorAmbientAndDiffuse; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return shader.ColorDiffuse, false
}

// parseFeatures reads build flags into a FeatureState and an output dir.
func parseFeatures(args []string) (shader.FeatureState, string, error) {
	var f shader.FeatureState
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	lightingName := fs.String("lighting", "headlight", "lighting complexity")
	mode := fs.String("mode", "diffuse", "color term vertex colors replace")
	tcoords := fs.Int("tcoords", 0, "texture coordinate components (0, 1 or 2)")
	out := fs.String("out", "", "write <hash>.vert/.frag/.geom into this directory")
	fs.BoolVar(&f.HasVertexColor, "colors", false, "per-vertex colors")
	fs.BoolVar(&f.HasNormals, "normals", false, "per-vertex normals")
	fs.BoolVar(&f.Wireframe, "wireframe", false, "wireframe representation")
	fs.BoolVar(&f.Points, "points", false, "points representation")
	fs.BoolVar(&f.Picking, "picking", false, "hardware selection pass")
	fs.BoolVar(&f.DepthPeeling, "peeling", false, "depth peeling pass")
	if err := fs.Parse(args); err != nil {
		return f, "", err
	}

	var ok bool
	if f.Lighting, ok = lighting.ParseComplexity(*lightingName); !ok {
		return f, "", fmt.Errorf("unknown lighting %q", *lightingName)
	}
	if f.ColorTerm, ok = parseColorTerm(*mode); !ok {
		return f, "", fmt.Errorf("unknown color mode %q", *mode)
	}
	switch *tcoords {
	case 0:
	case 1:
		f.HasTCoord1D = true
	case 2:
		f.HasTCoord2D = true
	default:
		return f, "", fmt.Errorf("tcoords must be 0, 1 or 2, got %d", *tcoords)
	}
	return f, *out, nil
}

func cmdBuild(w io.Writer, args []string) error {
	f, out, err := parseFeatures(args)
	if err != nil {
		return err
	}
	src := shader.Build(f)
	hash := shadercache.Hash(src)

	stages := []struct{ ext, text string }{
		{".vert", src.Vertex},
		{".frag", src.Fragment},
		{".geom", src.Geometry},
	}
	if out == "" {
		fmt.Fprintf(w, "// features: %s\n// hash: %s\n", f, hash)
		for _, s := range stages {
			if s.text != "" {
				fmt.Fprintf(w, "\n// ---- %s ----\n%s\n", s.ext[1:], s.text)
			}
		}
		return nil
	}

	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}
	for _, s := range stages {
		if s.text == "" {
			continue
		}
		path := filepath.Join(out, hash[:12]+s.ext)
		if err := os.WriteFile(path, []byte(s.text), 0644); err != nil {
			return err
		}
		fmt.Fprintln(w, path)
	}
	return nil
}

// combinations enumerates feature states for one lighting complexity.
func combinations(c lighting.Complexity) []shader.FeatureState {
	var out []shader.FeatureState
	for bits := 0; bits < 1<<7; bits++ {
		f := shader.FeatureState{
			Lighting:       c,
			HasVertexColor: bits&1 != 0,
			HasNormals:     bits&2 != 0,
			HasTCoord2D:    bits&4 != 0,
			Wireframe:      bits&8 != 0,
			Points:         bits&16 != 0,
			Picking:        bits&32 != 0,
			DepthPeeling:   bits&64 != 0,
		}
		if f.Wireframe && f.Points {
			continue
		}
		out = append(out, f)
	}
	return out
}

func cmdMatrix(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("matrix", flag.ContinueOnError)
	lightingName := fs.String("lighting", "", "restrict to one lighting complexity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	levels := []lighting.Complexity{lighting.NoLighting, lighting.Headlight, lighting.LightKit, lighting.Positional}
	if *lightingName != "" {
		c, ok := lighting.ParseComplexity(*lightingName)
		if !ok {
			return fmt.Errorf("unknown lighting %q", *lightingName)
		}
		levels = levels[c : c+1]
	}

	hashes := make(map[string][]string)
	total := 0
	for _, c := range levels {
		for _, f := range combinations(c) {
			h := shadercache.Hash(shader.Build(f))
			hashes[h] = append(hashes[h], f.String())
			total++
		}
	}

	keys := make([]string, 0, len(hashes))
	for h := range hashes {
		keys = append(keys, h)
	}
	sort.Strings(keys)
	for _, h := range keys {
		fmt.Fprintf(w, "%s  %v\n", h[:12], hashes[h])
	}
	fmt.Fprintf(w, "\n%d feature states, %d distinct programs\n", total, len(hashes))
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"haptics-installer/internal/batch"
	"haptics-installer/internal/config"
	"haptics-installer/internal/raster"
	"haptics-installer/internal/store"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (json, yaml or toml)")
	storePath := flag.String("store", "", "Path to the bake store")
	id := flag.String("id", "", "Bake id (default: newest bake)")
	viewName := flag.String("view", "front", "Camera view: front, side or top")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	outputDir := flag.String("output", "", "Output directory (default: <base>/Previews/<id>)")
	size := flag.Int("size", 0, "Preview size in pixels (default: 256)")

	flag.Parse()

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
	cfg.Resolve(config.Flags{
		StorePath: *storePath,
		Size:      *size,
		Workers:   *workers,
	})

	if cfg.StorePath == "" {
		fmt.Fprintln(os.Stderr, "Error: no bake store. Use -store flag or a config file.")
		os.Exit(1)
	}

	var view raster.View = -1
	for _, v := range []raster.View{raster.Front, raster.Side, raster.Top} {
		if v.String() == *viewName {
			view = v
		}
	}
	if view < 0 {
		fmt.Fprintf(os.Stderr, "Error: unknown view %q\n", *viewName)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *id == "" {
		bakes, err := st.ListBakes(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing bakes: %v\n", err)
			os.Exit(1)
		}
		if len(bakes) == 0 {
			fmt.Println("No bakes stored.")
			return
		}
		*id = bakes[0].ID
	}

	rec, err := st.GetBake(ctx, *id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading bake %s: %v\n", *id, err)
		os.Exit(1)
	}

	out := *outputDir
	if out == "" {
		out = filepath.Join(cfg.OutputDir, rec.ID)
	}

	jobs := batch.JobsFromSnapshot(rec.Snapshot, rec.Meshes)
	if len(jobs) == 0 {
		fmt.Println("Bake has no visual meshes.")
		return
	}

	fmt.Printf("Bake %s (%s), %d groups, parameter cost %d\n", rec.ID, rec.Name, len(rec.Groups), rec.ParameterCost)
	for _, prefab := range slices.Sorted(maps.Keys(rec.Flagged)) {
		fmt.Printf("Flagged in %s: %s\n", prefab, strings.Join(rec.Flagged[prefab], ", "))
	}
	fmt.Printf("Previews: %d, View: %s, Workers: %d\n", len(jobs), view, cfg.Workers)
	fmt.Printf("Output: %s\n", out)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.RenderPreviews(ctx, batch.Config{
		OutputDir:   out,
		Size:        cfg.PreviewSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		View:        view,
	}, jobs)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			fmt.Printf("  %s: %s\n", r.Name, r.Error)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-failed, len(results))

	manifestPath := filepath.Join(out, "manifest.json")
	if err := os.MkdirAll(out, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

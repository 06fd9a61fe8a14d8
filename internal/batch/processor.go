// Package batch renders WebP previews of an optimized haptics graph with a
// worker pool: one image per bone group plus an overview.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"haptics-installer/internal/postprocess"
	"haptics-installer/internal/raster"
)

// Config holds all shared settings for a preview run.
type Config struct {
	OutputDir   string
	Size        int
	Supersample int
	Workers     int
	View        raster.View
	Log         *slog.Logger
}

// Job is one preview image to render.
type Job struct {
	Name  string
	Items []raster.Item
}

// Result holds the outcome of rendering one job.
type Result struct {
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Triangles int    `json:"triangles"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// RenderPreviews renders all jobs using a worker pool and returns one
// result per job, in job order. Cancelling ctx stops handing out jobs;
// the remaining ones are reported as failed.
func RenderPreviews(ctx context.Context, cfg Config, jobs []Job) []Result {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	workers := max(cfg.Workers, 1)
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("rendering previews", "done", p, "total", total, "per_sec", rate)
				}
			}
		}
	}()

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = renderJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

send:
	for i := range jobs {
		select {
		case jobChan <- i:
		case <-ctx.Done():
			for j := i; j < total; j++ {
				results[j] = Result{Name: jobs[j].Name, Error: ctx.Err().Error()}
			}
			break send
		}
	}
	close(jobChan)

	wg.Wait()
	close(done)

	log.Info("previews rendered", "jobs", total, "elapsed", time.Since(start).Round(time.Millisecond))
	return results
}

func renderJob(cfg Config, job Job) Result {
	res := Result{Name: job.Name}
	for _, it := range job.Items {
		if it.Mesh != nil {
			res.Triangles += it.Mesh.TriangleCount()
		}
	}
	if res.Triangles == 0 {
		res.Error = "nothing to draw"
		return res
	}

	img := raster.RenderMeshes(job.Items, cfg.View, cfg.Size, cfg.Supersample)
	img = postprocess.Frame(img, cfg.Size, postprocess.DefaultFillRatio)

	name := job.Name + ".webp"
	outPath := filepath.Join(cfg.OutputDir, name)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	f, err := os.Create(outPath)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		res.Error = fmt.Sprintf("WebP encode: %v", err)
		return res
	}
	res.Image = name
	res.Success = true
	return res
}

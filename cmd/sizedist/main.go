// Command sizedist runs the particle size-distribution pipeline on a
// micrograph and prints the per-particle sizes and the fitted distribution.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"nanosizer/internal/imageio"
	"nanosizer/internal/pipeline"
	"nanosizer/internal/render"
	"nanosizer/internal/segment"
	"nanosizer/pkg/config"
	"nanosizer/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to micrograph (TIFF, PNG, or JPEG)")
	configPath := flag.String("config", "", "Path to YAML parameter preset")
	scale := flag.Float64("scale", 0, "Physical units per pixel (skips scale-bar calibration)")
	barRect := flag.String("bar-rect", "", "Scale-bar selection as x,y,w,h (used when -scale is not given)")
	barLength := flag.Float64("bar-length", 0, "Physical length of the scale bar (overrides preset)")
	threshold := flag.Float64("threshold", -1, "Binarization threshold in [0,1] (overrides preset)")
	repair := flag.Bool("repair", false, "Enable region-growing hole repair")
	quantile := flag.Float64("quantile", -1, "Marker quantile in [0,1] (overrides preset)")
	margin := flag.Int("margin", -1, "Border filter margin in pixels (overrides preset)")
	minSize := flag.Float64("min-size", -1, "Size window lower bound (overrides preset)")
	maxSize := flag.Float64("max-size", -1, "Size window upper bound (overrides preset)")
	debugDir := flag.String("debug-dir", "", "Directory for PNG dumps of intermediate artifacts")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: sizedist -image <path> [-scale u/px | -bar-rect x,y,w,h -bar-length L] [options]")
		os.Exit(1)
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Output.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	params := pipeline.DefaultParams()
	params.Threshold = cfg.Segmentation.Threshold
	params.Repair = cfg.Segmentation.Repair || *repair
	params.Quantile = cfg.Segmentation.MarkerQuantile
	params.BorderMargin = cfg.Segmentation.BorderMargin
	params.MinSize = cfg.Sizing.MinSize
	params.MaxSize = cfg.Sizing.MaxSize
	params.BarLength = cfg.Sizing.BarLength
	if *threshold >= 0 {
		params.Threshold = *threshold
	}
	if *quantile >= 0 {
		params.Quantile = *quantile
	}
	if *margin >= 0 {
		params.BorderMargin = *margin
	}
	if *minSize >= 0 {
		params.MinSize = *minSize
	}
	if *maxSize >= 0 {
		params.MaxSize = *maxSize
	}
	if *barLength > 0 {
		params.BarLength = *barLength
	}

	session := pipeline.NewSession(log)
	session.SetParams(params)

	if err := session.LoadImage(*imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	meta := session.Meta()
	fmt.Printf("Loaded %s: %dx%d (%s)\n", *imagePath, meta.Width, meta.Height, meta.Format)
	if meta.DPI > 0 {
		fmt.Printf("Resolution hint: %.0f DPI (scale-bar calibration is authoritative)\n", meta.DPI)
	}

	switch {
	case *scale > 0:
		if err := session.SetScale(*scale); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	case *barRect != "":
		rect, err := parseRect(*barRect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -bar-rect: %v\n", err)
			os.Exit(1)
		}
		s, err := session.Calibrate(rect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Calibrated: %.4f units/pixel from %g-unit bar\n", s, params.BarLength)
	default:
		fmt.Fprintln(os.Stderr, "Need either -scale or -bar-rect with -bar-length")
		os.Exit(1)
	}

	if err := session.Recompute(); err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline failed: %v\n", err)
		os.Exit(1)
	}

	samples, fit := session.Results()
	fmt.Printf("Particles: %d\n", len(samples))
	for i, s := range samples {
		fmt.Printf("  %3d: %.3f\n", i+1, s)
	}
	fmt.Printf("Fit: mean=%.3f sigma=%.3f (n=%d)\n", fit.Mean, fit.Sigma, fit.N)

	centroids := segment.Centroids(session.Filtered())
	if len(centroids) > 0 {
		fmt.Println("Centers (px):")
		maxLabel := session.Filtered().MaxLabel()
		for l := int32(1); l <= maxLabel; l++ {
			if c, ok := centroids[l]; ok {
				fmt.Printf("  %3d: (%.1f, %.1f)\n", l, c.X, c.Y)
			}
		}
	}

	outDir := *debugDir
	if outDir == "" {
		outDir = cfg.Output.DebugDir
	}
	if outDir != "" {
		if err := dumpArtifacts(session, outDir); err != nil {
			fmt.Fprintf(os.Stderr, "Debug dump failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Artifacts written to %s\n", outDir)
	}
}

// parseRect parses "x,y,w,h" into a RectInt.
func parseRect(s string) (geometry.RectInt, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.RectInt{}, fmt.Errorf("want x,y,w,h, got %q", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geometry.RectInt{}, err
		}
		vals[i] = v
	}
	return geometry.RectInt{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// dumpArtifacts saves every intermediate stage as a PNG.
func dumpArtifacts(session *pipeline.Session, dir string) error {
	steps := []struct {
		name string
		save func(string) error
	}{
		{"01_image.png", func(p string) error { return imageio.SavePNG(render.GrayImage(session.Image()), p) }},
		{"02_mask.png", func(p string) error { return imageio.SavePNG(render.MaskImage(session.Mask()), p) }},
		{"03_distance.png", func(p string) error { return imageio.SavePNG(render.DistanceImage(session.DistanceField()), p) }},
		{"04_markers.png", func(p string) error { return imageio.SavePNG(render.LabelImage(session.Markers()), p) }},
		{"05_labels.png", func(p string) error { return imageio.SavePNG(render.LabelImage(session.Labels()), p) }},
		{"06_filtered.png", func(p string) error { return imageio.SavePNG(render.Overlay(session.Image(), session.Filtered()), p) }},
	}
	for _, step := range steps {
		if err := step.save(filepath.Join(dir, step.name)); err != nil {
			return err
		}
	}

	samples, fit := session.Results()
	return imageio.SavePNG(render.Histogram(samples, fit, 640, 480), filepath.Join(dir, "07_histogram.png"))
}

// Command treemeter measures a tree's trunk circumference from a single
// photograph.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"treemeter/internal/camera"
	"treemeter/internal/distance"
	"treemeter/internal/oracle/dnn"
	"treemeter/internal/oracle/onnx"
	"treemeter/internal/pipeline"
	"treemeter/internal/raster"
	"treemeter/internal/version"
	"treemeter/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to the tree photo (JPEG, PNG, or TIFF)")
	speciesName := flag.String("species", "", "Tree species, if known (oak, pine, birch, ...)")
	refType := flag.String("ref", "", "Known reference object in frame (e.g. card)")
	refWidth := flag.Float64("ref-width", 0, "Width of the reference object in cm")
	manualPts := flag.String("manual", "", "Manual trunk edges as x1,y1,x2,y2 (skips analysis)")
	manualDist := flag.Float64("distance", 0, "Camera-to-trunk distance in cm for manual mode")
	detModel := flag.String("det-model", "", "SSD MobileNet frozen graph (.pb)")
	detConfig := flag.String("det-config", "", "SSD MobileNet config (.pbtxt)")
	segModel := flag.String("seg-model", "", "DeepLab ONNX model")
	jsonOut := flag.Bool("json", false, "Print the full result as JSON")
	verbose := flag.Bool("v", false, "Verbose logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("treemeter %s (%s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: treemeter -image <path> [-species oak] [-ref card -ref-width 8.56] [-json]")
		os.Exit(1)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	img, err := raster.Load(*imagePath)
	if err != nil {
		fatal("loading image: %v", err)
	}

	opts := pipeline.DefaultOptions()
	opts.Log = log
	opts.Species = *speciesName

	if *manualPts != "" {
		runManual(img, *manualPts, *manualDist, opts, *jsonOut)
		return
	}

	if *refType != "" {
		if *refWidth <= 0 {
			fatal("-ref requires a positive -ref-width")
		}
		opts.ManualRef = &distance.ManualReference{Type: *refType, KnownWidthCm: *refWidth}
	}
	if f, err := os.Open(*imagePath); err == nil {
		if meta, err := camera.ExtractMetadata(f); err == nil {
			opts.Meta = &meta
		}
		f.Close()
	}

	if *detModel != "" {
		det, err := dnn.NewDetector(*detModel, *detConfig)
		if err != nil {
			log.Warn().Err(err).Msg("object detector unavailable")
		} else {
			defer det.Close()
			opts.Detector = det
		}
	}
	if *segModel != "" {
		seg, err := onnx.NewSegmenter(*segModel)
		if err != nil {
			log.Warn().Err(err).Msg("semantic segmenter unavailable")
		} else {
			defer seg.Close()
			opts.Segmenter = seg
		}
	}

	res, err := pipeline.Measure(context.Background(), img, opts)
	if err != nil {
		fatal("%v", err)
	}

	if *jsonOut {
		printJSON(res)
		return
	}

	f := res.Fusion
	fmt.Printf("Circumference: %.1f cm (diameter %.1f cm)\n", f.CircumferenceCm, f.DiameterCm)
	fmt.Printf("Confidence:    %.0f%%  (dominant method: %s)\n", f.Confidence, f.DominantMethod)
	fmt.Printf("Trunk width:   %.1f px at row %d\n", res.Bounds.WidthPx, res.Bounds.BreastHeightY)
	for _, w := range res.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	for _, tip := range res.Tips {
		fmt.Printf("Tip: %s\n", tip)
	}
}

func runManual(img *raster.Image, arg string, distCm float64, opts pipeline.Options, jsonOut bool) {
	parts := strings.Split(arg, ",")
	if len(parts) != 4 {
		fatal("-manual expects x1,y1,x2,y2")
	}
	coords := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			fatal("-manual: bad coordinate %q", p)
		}
		coords[i] = v
	}

	res, err := pipeline.MeasureManual(img.Width, img.Height,
		geometry.PointInt{X: coords[0], Y: coords[1]},
		geometry.PointInt{X: coords[2], Y: coords[3]},
		distCm, opts)
	if err != nil {
		fatal("%v", err)
	}

	if jsonOut {
		printJSON(res)
		return
	}
	fmt.Printf("Circumference: %.1f cm (diameter %.1f cm)\n", res.CircumferenceCm, res.DiameterCm)
	fmt.Printf("Assumed distance: %.0f cm\n", res.DistanceCm)
	if res.Adjusted {
		fmt.Printf("Note: estimate adjusted toward the typical %s range\n", res.Species.Name)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encoding result: %v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Package dnn provides an object-detection oracle backed by an OpenCV DNN
// SSD MobileNet model (COCO classes).
package dnn

import (
	"context"
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"treemeter/internal/oracle"
	"treemeter/pkg/geometry"
)

const inputSize = 300

// Detector wraps a loaded SSD MobileNet network. Safe for sequential use
// within one pipeline run; not safe for concurrent Detect calls.
type Detector struct {
	net gocv.Net
}

// NewDetector loads the frozen graph and its config. Typical files are
// frozen_inference_graph.pb and ssd_mobilenet_v1_coco.pbtxt.
func NewDetector(modelPath, configPath string) (*Detector, error) {
	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("load detection model %s: empty network", modelPath)
	}
	return &Detector{net: net}, nil
}

// Close releases the network.
func (d *Detector) Close() error {
	return d.net.Close()
}

// Detect runs the SSD forward pass and returns detections above the
// confidence floor, strongest first, capped at TopK.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]oracle.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(inputSize, inputSize),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())

	// SSD output rows: [batchID, classID, confidence, left, top, right, bottom]
	var results []oracle.Detection
	rows := out.Total() / 7
	for i := 0; i < rows; i++ {
		score := float64(out.GetFloatAt(0, i*7+2))
		if score < oracle.MinConfidence {
			continue
		}
		classID := int(out.GetFloatAt(0, i*7+1))
		name, known := oracle.COCOClasses[classID]
		if !known {
			continue
		}

		left := float64(out.GetFloatAt(0, i*7+3)) * w
		top := float64(out.GetFloatAt(0, i*7+4)) * h
		right := float64(out.GetFloatAt(0, i*7+5)) * w
		bottom := float64(out.GetFloatAt(0, i*7+6)) * h

		results = append(results, oracle.Detection{
			Class: name,
			Score: score,
			Box: geometry.RectInt{
				X:      int(left),
				Y:      int(top),
				Width:  int(right - left),
				Height: int(bottom - top),
			},
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > oracle.TopK {
		results = results[:oracle.TopK]
	}
	return results, nil
}

// Package onnx provides a semantic-segmentation oracle backed by a
// DeepLab-style ONNX model running under onnxruntime.
package onnx

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"

	"treemeter/internal/oracle"
)

const (
	inputSize  = 513
	numClasses = 151 // ADE20K labels plus background
)

// Segmenter owns an onnxruntime session with pre-allocated input and
// output tensors. Not safe for concurrent Segment calls; a caller running
// pipelines in parallel should create one Segmenter per worker.
type Segmenter struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewSegmenter creates a session for the model at the given path. The
// onnxruntime environment must already be initialized by the caller
// (ort.InitializeEnvironment).
func NewSegmenter(modelPath string) (*Segmenter, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()

	inputShape := ort.NewShape(1, 3, inputSize, inputSize)
	outputShape := ort.NewShape(1, numClasses, inputSize, inputSize)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"images"},
		[]string{"output"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Segmenter{session: session, input: inputTensor, output: outputTensor}, nil
}

// Close releases the session and its tensors.
func (s *Segmenter) Close() error {
	s.input.Destroy()
	s.output.Destroy()
	return s.session.Destroy()
}

// Segment runs the model and returns a class map at the original image
// resolution (nearest-neighbor upsampled from the network grid).
func (s *Segmenter) Segment(ctx context.Context, img image.Image) (*oracle.SegmentMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resized := imaging.Resize(img, inputSize, inputSize, imaging.Lanczos)
	fillInput(resized, s.input.GetData())

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("model inference: %w", err)
	}

	grid := argmaxGrid(s.output.GetData())

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	return upsample(grid, w, h), nil
}

// fillInput writes the image as a CHW float32 buffer normalized to [0, 1].
func fillInput(pic image.Image, data []float32) {
	channel := inputSize * inputSize
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			i := y*inputSize + x
			r, g, b, _ := pic.At(x, y).RGBA()
			data[i] = float32(r>>8) / 255.0
			data[channel+i] = float32(g>>8) / 255.0
			data[2*channel+i] = float32(b>>8) / 255.0
		}
	}
}

// argmaxGrid collapses per-class logits to a class ID per grid cell.
func argmaxGrid(logits []float32) []int {
	channel := inputSize * inputSize
	grid := make([]int, channel)
	for i := 0; i < channel; i++ {
		best := 0
		bestVal := logits[i]
		for c := 1; c < numClasses; c++ {
			if v := logits[c*channel+i]; v > bestVal {
				bestVal = v
				best = c
			}
		}
		grid[i] = best
	}
	return grid
}

// upsample maps the network-resolution grid back to image resolution.
func upsample(grid []int, w, h int) *oracle.SegmentMap {
	out := &oracle.SegmentMap{Classes: make([]int, w*h), Width: w, Height: h}
	for y := 0; y < h; y++ {
		gy := y * inputSize / h
		for x := 0; x < w; x++ {
			gx := x * inputSize / w
			out.Classes[y*w+x] = grid[gy*inputSize+gx]
		}
	}
	return out
}

// Package distance converts the localized trunk's pixel width into
// real-world diameter hypotheses. Six independent estimators each supply
// their own distance estimate and feed the same pinhole relation; their
// individual unreliability is the fusion engine's problem, not theirs.
package distance

import (
	"treemeter/internal/camera"
	"treemeter/internal/oracle"
	"treemeter/internal/raster"
	"treemeter/internal/species"
	"treemeter/internal/trunk"
)

// Method tags a hypothesis with the estimator that produced it.
type Method string

const (
	MethodReference      Method = "reference-object"
	MethodGroundPlane    Method = "ground-plane"
	MethodSpeciesHeight  Method = "species-height"
	MethodBarkTexture    Method = "bark-texture"
	MethodCrownAllometry Method = "crown-allometry"
	MethodFOVFallback    Method = "fov-fallback"
)

// Hypothesis is one independent diameter estimate. Immutable once produced.
type Hypothesis struct {
	Method     Method  `json:"method"`
	DiameterCm float64 `json:"diameter_cm"`
	DistanceCm float64 `json:"distance_cm"`
	Weight     float64 `json:"weight"`     // reliability, 0-1
	Confidence float64 `json:"confidence"` // 0-100
	Detail     string  `json:"detail"`
}

// ManualReference is a user-flagged physical reference object in frame.
type ManualReference struct {
	Type         string  `json:"type"` // card, coin, paper, custom
	KnownWidthCm float64 `json:"known_width_cm"`
}

// Input carries everything the estimators may consult. All fields are
// read-only during estimation.
type Input struct {
	Img          *raster.Image
	Mask         *raster.Mask
	Bounds       *trunk.Bounds
	Cam          camera.Model
	Detections   []oracle.Detection
	Species      species.Descriptor
	SpeciesKnown bool
	ManualRef    *ManualReference
}

// Estimate runs every estimator and returns the produced hypotheses with
// corrections applied. The FOV fallback always contributes when the
// camera model is valid, so the slice is non-empty for any measurable run.
func Estimate(in Input, p Params) []Hypothesis {
	if !in.Cam.Valid() || in.Bounds == nil || in.Bounds.WidthPx <= 0 {
		return nil
	}

	var out []Hypothesis
	out = append(out, referenceHypotheses(in, p)...)
	if h, ok := groundPlane(in, p); ok {
		out = append(out, h)
	}
	if h, ok := speciesHeight(in, p); ok {
		out = append(out, h)
	}
	if h, ok := barkTexture(in, p); ok {
		out = append(out, h)
	}
	if h, ok := crownAllometry(in, p); ok {
		out = append(out, h)
	}
	out = append(out, fovFallback(in, p))

	for i := range out {
		out[i].DiameterCm = p.Correct(out[i].DiameterCm)
	}
	return out
}

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"treemeter/internal/camera"
	"treemeter/internal/distance"
	"treemeter/internal/pipeline"
	"treemeter/internal/raster"
	"treemeter/internal/species"
	"treemeter/internal/trunk"
	"treemeter/internal/version"
	"treemeter/pkg/geometry"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   version.Version,
		"detector":  s.detector != nil,
		"segmenter": s.segmenter != nil,
	})
}

func (s *Server) handleSpecies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"species": species.Names()})
}

// handleMeasure accepts a multipart form with an "image" file plus
// optional "species", "reference_type" and "reference_width_cm" fields.
func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing image file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading upload: %w", err))
		return
	}

	img, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding image: %w", err))
		return
	}

	opts := s.options()
	opts.Species = r.FormValue("species")
	if ref := r.FormValue("reference_type"); ref != "" {
		width, err := strconv.ParseFloat(r.FormValue("reference_width_cm"), 64)
		if err != nil || width <= 0 {
			writeError(w, http.StatusBadRequest,
				fmt.Errorf("reference_type needs a positive reference_width_cm"))
			return
		}
		opts.ManualRef = &distance.ManualReference{Type: ref, KnownWidthCm: width}
	}
	if meta, err := camera.ExtractMetadata(bytes.NewReader(data)); err == nil {
		opts.Meta = &meta
	}

	res, err := pipeline.Measure(r.Context(), img, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type manualRequest struct {
	ImageWidth  int     `json:"image_width"`
	ImageHeight int     `json:"image_height"`
	X1          int     `json:"x1"`
	Y1          int     `json:"y1"`
	X2          int     `json:"x2"`
	Y2          int     `json:"y2"`
	DistanceCm  float64 `json:"distance_cm"`
	Species     string  `json:"species"`
}

// handleManual converts two user-tapped trunk edge points into a
// measurement without running the pipeline.
func (s *Server) handleManual(w http.ResponseWriter, r *http.Request) {
	var req manualRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	opts := s.options()
	opts.Species = req.Species

	res, err := pipeline.MeasureManual(req.ImageWidth, req.ImageHeight,
		geometry.PointInt{X: req.X1, Y: req.Y1},
		geometry.PointInt{X: req.X2, Y: req.Y2},
		req.DistanceCm, opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// statusFor maps pipeline rejections onto HTTP codes: user-correctable
// scene problems are 422, bad requests 400, everything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrManualInput):
		return http.StatusBadRequest
	case errors.Is(err, trunk.ErrNotFound),
		errors.Is(err, pipeline.ErrNotATree),
		errors.Is(err, pipeline.ErrColorValidation),
		errors.Is(err, pipeline.ErrSegmentationEmpty),
		errors.Is(err, pipeline.ErrStructuralRejection),
		errors.Is(err, pipeline.ErrImplausibleResult):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

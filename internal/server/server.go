// Package server exposes the measurement pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"treemeter/internal/oracle"
	"treemeter/internal/oracle/dnn"
	"treemeter/internal/oracle/onnx"
	"treemeter/internal/pipeline"
)

// Server wires the pipeline, its optional oracles, and the HTTP routes.
type Server struct {
	cfg       *Config
	log       zerolog.Logger
	detector  oracle.Detector
	segmenter oracle.Segmenter
	closers   []func() error
	http      *http.Server
}

// New builds a server from the config. Missing or unloadable models are
// logged and skipped: the pipeline degrades to color-rule segmentation
// without them.
func New(cfg *Config, log zerolog.Logger) *Server {
	s := &Server{cfg: cfg, log: log}

	if cfg.DetectorModel != "" {
		det, err := dnn.NewDetector(cfg.DetectorModel, cfg.DetectorConfig)
		if err != nil {
			log.Warn().Err(err).Str("model", cfg.DetectorModel).
				Msg("object detector unavailable")
		} else {
			s.detector = det
			s.closers = append(s.closers, det.Close)
		}
	}
	if cfg.SegmenterModel != "" {
		seg, err := onnx.NewSegmenter(cfg.SegmenterModel)
		if err != nil {
			log.Warn().Err(err).Str("model", cfg.SegmenterModel).
				Msg("semantic segmenter unavailable")
		} else {
			s.segmenter = seg
			s.closers = append(s.closers, seg.Close)
		}
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/measure", s.handleMeasure).Methods(http.MethodPost)
	api.HandleFunc("/measure/manual", s.handleManual).Methods(http.MethodPost)
	api.HandleFunc("/species", s.handleSpecies).Methods(http.MethodGet)
	return r
}

// Run serves until the context is canceled, then shuts down gracefully
// and releases the oracle models.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Router(),
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Int("port", s.cfg.Port).Msg("listening")
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.closeOracles()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.ShutdownTimeout)*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.closeOracles()
	return err
}

func (s *Server) closeOracles() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.log.Warn().Err(err).Msg("closing oracle model")
		}
	}
}

// options builds per-request pipeline options on top of the shared oracles.
func (s *Server) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Detector = s.detector
	opts.Segmenter = s.segmenter
	opts.Log = s.log
	return opts
}

// Package status serves the scanner state over HTTP.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/itohio/gobarscan/pkg/barcode"
	"github.com/itohio/gobarscan/pkg/decoder"
	"github.com/itohio/gobarscan/pkg/scanner"
)

// Source is the scanner state exposed by the API.
type Source interface {
	barcode.Consumer
	LastMatched() (rune, bool)
	Calibration() scanner.Calibration
	Stats() decoder.Stats
}

var _ Source = (*scanner.Scanner)(nil)

type matchedResponse struct {
	Char  string `json:"char"`
	Valid bool   `json:"valid"`
}

// Server is the status API server.
type Server struct {
	src    Source
	log    *zap.SugaredLogger
	server http.Server
	wg     sync.WaitGroup
}

// New creates a server listening on addr.
func New(addr string, src Source, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{src: src, log: log}
	s.server = http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router returns the API routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	// Registered on the root router so a method mismatch answers 405.
	router.HandleFunc("/api/barcode", s.getBarcode).Methods(http.MethodGet)
	router.HandleFunc("/api/matched", s.getMatched).Methods(http.MethodGet)
	router.HandleFunc("/api/calibration", s.getCalibration).Methods(http.MethodGet)
	router.HandleFunc("/api/stats", s.getStats).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	return router
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context) {
	s.log.Infow("starting status server", "addr", s.server.Addr)
	s.wg.Add(2)

	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorw("status server error", "error", err)
		}
	}()

	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		s.log.Info("shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
}

// Wait blocks until the server has shut down.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) getBarcode(w http.ResponseWriter, _ *http.Request) {
	d, ok := s.src.Last()
	if !ok {
		http.Error(w, "no barcode decoded yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, d)
}

func (s *Server) getMatched(w http.ResponseWriter, _ *http.Request) {
	c, ok := s.src.LastMatched()
	resp := matchedResponse{Valid: ok}
	if ok {
		resp.Char = string(c)
	}
	s.writeJSON(w, resp)
}

func (s *Server) getCalibration(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.src.Calibration())
}

func (s *Server) getStats(w http.ResponseWriter, _ *http.Request) {
	st := s.src.Stats()
	s.writeJSON(w, map[string]uint64{
		"matched": st.Matched,
		"expired": st.Expired,
		"dropped": st.Dropped,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("failed to write response", "error", err)
	}
}

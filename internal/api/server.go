package api

import (
	"Go2NetFixtures/internal/capture"
	"Go2NetFixtures/internal/config"
	"Go2NetFixtures/internal/generator"
	"Go2NetFixtures/internal/metrics"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// PcapContentType is the media type of a served capture.
const PcapContentType = "application/vnd.tcpdump.pcap"

// ArchetypeInfo is the JSON view of one archetype.
type ArchetypeInfo struct {
	Name        string  `json:"name"`
	FileName    string  `json:"file_name"`
	Description string  `json:"description"`
	Factor      float64 `json:"factor"`
}

// Server serves synthetic captures over HTTP.
type Server struct {
	cfg    config.Config
	router *mux.Router
	http   *http.Server
}

// NewServer builds the router for cfg.
func NewServer(cfg config.Config) *Server {
	s := &Server{cfg: cfg, router: mux.NewRouter()}

	s.router.HandleFunc("/healthz", s.healthHandler).Methods("GET")
	s.router.HandleFunc("/api/v1/archetypes", s.archetypesHandler).Methods("GET")
	s.router.HandleFunc("/api/v1/fixtures/{archetype}", s.fixtureHandler).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.http = &http.Server{
		Addr:              cfg.API.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	log.WithField("addr", s.http.Addr).Info("API server starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not listen on %s: %w", s.http.Addr, err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) archetypesHandler(w http.ResponseWriter, _ *http.Request) {
	var out []ArchetypeInfo
	for _, a := range generator.All() {
		out = append(out, ArchetypeInfo{Name: a.Name, FileName: a.FileName, Description: a.Description, Factor: a.Factor})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.WithError(err).Warn("Failed to encode archetype list")
	}
}

// fixtureHandler generates one archetype and streams it as a pcap file.
// Query parameters: count, target, seed.
func (s *Server) fixtureHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["archetype"]
	a, ok := generator.Lookup(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown archetype '%s'", name), http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	count := s.cfg.Generator.Count
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
		count = n
	}
	if s.cfg.API.MaxCount > 0 && count > s.cfg.API.MaxCount {
		http.Error(w, fmt.Sprintf("count exceeds limit %d", s.cfg.API.MaxCount), http.StatusBadRequest)
		return
	}

	targetStr := s.cfg.Generator.Target
	if v := q.Get("target"); v != "" {
		targetStr = v
	}
	target, err := generator.ParseTarget(targetStr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	seed := s.cfg.Generator.Seed
	if v := q.Get("seed"); v != "" {
		seed, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	descs, err := a.Generate(generator.NewSource(generator.DeriveSeed(seed, a.Name)), target, count)
	if err != nil {
		metrics.Errors.WithLabelValues(a.Name, "construction").Inc()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.PacketsGenerated.WithLabelValues(a.Name).Add(float64(len(descs)))

	writer := capture.NewWriter(
		capture.WithSnapLen(s.cfg.Output.SnapLen),
		capture.WithInterval(s.cfg.Output.Interval()),
	)
	var buf bytes.Buffer
	if _, err := writer.Encode(&buf, descs); err != nil {
		metrics.Errors.WithLabelValues(a.Name, "serialization").Inc()
		log.WithError(err).WithField("archetype", a.Name).Error("Failed to encode capture")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", PcapContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Fixture-Seed", strconv.FormatUint(seed, 10))
	n, err := buf.WriteTo(w)
	if err != nil {
		log.WithError(err).WithField("archetype", a.Name).Warn("Client went away while streaming capture")
	}
	metrics.BytesWritten.WithLabelValues(a.Name).Add(float64(n))
}

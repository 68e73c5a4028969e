// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package api exposes the engine's decode/encode/validate/diff operations
// over HTTP: a gorilla/mux router wired to the domain it fronts, with
// Prometheus metrics served alongside the handlers.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/relayprofile/internal/audit"
	"grimm.is/relayprofile/internal/config"
	"grimm.is/relayprofile/internal/logging"
	"grimm.is/relayprofile/internal/metrics"
	"grimm.is/relayprofile/internal/typed"
)

// Server is the HTTP façade over the engine.
type Server struct {
	router  *mux.Router
	metrics *metrics.Registry
	audit   *audit.Logger
	logger  *logging.Logger
}

// NewServer builds a Server with its routes registered.
func NewServer(metricsReg *metrics.Registry, auditLog *audit.Logger, logger *logging.Logger) *Server {
	if metricsReg == nil {
		metricsReg = metrics.NewRegistry()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(nil)
	}

	s := &Server{
		router:  mux.NewRouter(),
		metrics: metricsReg,
		audit:   auditLog,
		logger:  logging.OrDiscard(logger),
	}

	s.router.HandleFunc("/v1/decode", s.handleDecode).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/encode", s.handleEncode).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/validate", s.handleValidate).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/diff", s.handleDiff).Methods(http.MethodPost)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return s
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var profile *typed.Profile
	start := time.Now()
	profile, err = typed.DecodeProfile(body)
	s.metrics.Observe("decode", time.Since(start), err)
	s.audit.Decode(r.RemoteAddr, err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var profile typed.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	out := typed.EncodeProfile(&profile)
	s.metrics.Observe("encode", time.Since(start), nil)
	s.audit.Encode(r.RemoteAddr, nil)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	_, err = typed.DecodeProfile(body)
	s.metrics.Observe("validate", time.Since(start), err)
	s.audit.Validate(r.RemoteAddr, err)

	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

type diffRequest struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	before, err := typed.DecodeProfile([]byte(req.Before))
	if err == nil {
		var after *typed.Profile
		after, err = typed.DecodeProfile([]byte(req.After))
		if err == nil {
			result := config.DiffProfiles(before, after)
			s.metrics.Observe("diff", time.Since(start), nil)
			s.audit.Diff(r.RemoteAddr, nil)
			writeJSON(w, http.StatusOK, result)
			return
		}
	}
	s.metrics.Observe("diff", time.Since(start), err)
	s.audit.Diff(r.RemoteAddr, err)
	writeError(w, http.StatusUnprocessableEntity, err)
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 16*1024*1024))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

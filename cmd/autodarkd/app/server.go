/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ardikabs/autodark/internal/session"
)

// sessionController is the part of session.Manager driven over HTTP.
type sessionController interface {
	SwitchUser(ctx context.Context, user string) error
	StopUser(user string)
	Current() (session.Info, bool)
}

// Server exposes metrics, health and the user-switch endpoint.
type Server struct {
	sessions sessionController
	log      logr.Logger
	server   *http.Server

	mu  sync.Mutex
	ctx context.Context
}

type sessionResponse struct {
	ID   string `json:"id,omitempty"`
	User string `json:"user,omitempty"`
}

// NewServer creates a Server listening on address.
func NewServer(address string, sessions sessionController, log logr.Logger) *Server {
	s := &Server{
		sessions: sessions,
		log:      log.WithName("http-server"),
		ctx:      context.Background(),
	}

	s.server = &http.Server{
		Addr:         address,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/v1/session", s.handleSession)
	return mux
}

// Start serves until ctx is cancelled. Sessions started through the API live
// as long as ctx, not as long as the request.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.log.Info("starting http server", "address", s.server.Addr)

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.log.Error(err, "error shutting down http server")
		}
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

func (s *Server) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleSession reports the current session (GET), switches to ?user= (POST)
// or stops ?user= (DELETE).
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")

	switch r.Method {
	case http.MethodGet:

	case http.MethodPost:
		if err := s.sessions.SwitchUser(s.baseContext(), user); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, session.ErrEmptyUser) {
				status = http.StatusBadRequest
			}
			s.log.Error(err, "failed to switch user", "user", user)
			http.Error(w, err.Error(), status)
			return
		}

	case http.MethodDelete:
		if user == "" {
			http.Error(w, session.ErrEmptyUser.Error(), http.StatusBadRequest)
			return
		}
		s.sessions.StopUser(user)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var resp sessionResponse
	if info, ok := s.sessions.Current(); ok {
		resp = sessionResponse{ID: info.ID, User: info.User}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error(err, "failed to write session response")
	}
}

package http

import (
	"encoding/json"
	"net/http"
)

func (s *Server) unavailable(w http.ResponseWriter, what string) {
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte(what + " is not available\n"))
}

func (s *Server) apiStatus(w http.ResponseWriter, r *http.Request) {
	if s.status == nil {
		s.unavailable(w, "drive")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status.Status())
}

func (s *Server) apiConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		s.unavailable(w, "config")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.cfg)
}

func (s *Server) apiInput(w http.ResponseWriter, r *http.Request) {
	if s.input == nil {
		s.unavailable(w, "input")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.input.Snapshot())
}

// apiPause is the same as pressing the pause button, so resuming from
// here starts a pending maneuver just as the gamepad would.
func (s *Server) apiPause(w http.ResponseWriter, r *http.Request) {
	if s.input == nil {
		s.unavailable(w, "input")
		return
	}

	vals := struct{ Paused bool }{}
	if err := json.NewDecoder(r.Body).Decode(&vals); err != nil {
		s.l.Warn("Error decoding pause request", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("could not parse request\n"))
		return
	}

	s.l.Info("Pause set from web", "paused", vals.Paused)
	s.input.SetMotionPaused(vals.Paused)
	w.Write([]byte("ok\n"))
}

func (s *Server) apiEventStream(w http.ResponseWriter, r *http.Request) {
	if s.es == nil {
		s.unavailable(w, "event stream")
		return
	}
	s.es.Handler(w, r)
}

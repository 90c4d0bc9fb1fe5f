package http

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gizmo-platform/parker/pkg/config"
)

// Option enables variadic option passing to the server on startup.
type Option func(*Server) error

// WithPrometheusRegistry sets the Prometheus registry for the server
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) error {
		s.reg = reg
		return nil
	}
}

// WithLogger sets the logger for the server.
func WithLogger(l hclog.Logger) Option {
	return func(s *Server) error {
		s.l = l.Named("web")
		return nil
	}
}

// WithStartupWG is released once the server is about to listen.
func WithStartupWG(wg *sync.WaitGroup) Option {
	return func(s *Server) error {
		s.swg = wg
		return nil
	}
}

// WithConfig publishes the running configuration.
func WithConfig(c *config.Config) Option {
	return func(s *Server) error {
		s.cfg = c
		return nil
	}
}

// WithStatusReporter provides the drive status.
func WithStatusReporter(r StatusReporter) Option {
	return func(s *Server) error {
		s.status = r
		return nil
	}
}

// WithInputController provides the operator input channel.
func WithInputController(ic InputController) Option {
	return func(s *Server) error {
		s.input = ic
		return nil
	}
}

// WithEventStreamer mounts the live event feed.
func WithEventStreamer(es EventStreamer) Option {
	return func(s *Server) error {
		s.es = es
		return nil
	}
}

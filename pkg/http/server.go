// Package http serves the vehicle's status page, its metrics, and a
// small JSON API for watching and pausing the vehicle from a laptop.
package http

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gizmo-platform/parker/pkg/config"
	"github.com/gizmo-platform/parker/pkg/drive"
	"github.com/gizmo-platform/parker/pkg/gamepad"
)

//go:embed ui/*
var uifs embed.FS

// StatusReporter knows what the drive is doing.
type StatusReporter interface {
	Status() drive.Status
}

// InputController is the operator input channel.
type InputController interface {
	Snapshot() gamepad.Snapshot
	SetMotionPaused(bool)
}

// EventStreamer serves the live event feed.
type EventStreamer interface {
	Handler(http.ResponseWriter, *http.Request)
	RunID() string
}

// Server manages the HTTP serving components
type Server struct {
	r   chi.Router
	n   *http.Server
	l   hclog.Logger
	reg *prometheus.Registry
	swg *sync.WaitGroup
	tpl *pongo2.TemplateSet

	cfg    *config.Config
	status StatusReporter
	input  InputController
	es     EventStreamer
}

// NewServer returns a server with all routes mounted.  Routes whose
// backing component was not provided answer 503.
func NewServer(opts ...Option) (*Server, error) {
	x := new(Server)
	x.r = chi.NewRouter()
	x.n = &http.Server{}
	x.l = hclog.NewNullLogger()
	x.reg = prometheus.NewRegistry()

	sub, _ := fs.Sub(uifs, "ui/p2")
	x.tpl = pongo2.NewSet("html", pongo2.NewFSLoader(sub))

	for _, o := range opts {
		if err := o(x); err != nil {
			return nil, err
		}
	}

	if !pongo2.FilterExists("stateclass") {
		pongo2.RegisterFilter("stateclass", filterStateClass)
	}

	sfs, _ := fs.Sub(uifs, "ui")
	x.r.Handle("/static/*", http.FileServer(http.FS(sfs)))
	x.r.Handle("/metrics", promhttp.HandlerFor(x.reg, promhttp.HandlerOpts{Registry: x.reg}))

	x.r.Get("/", x.uiViewHUD)
	x.r.Route("/api", func(r chi.Router) {
		r.Get("/status", x.apiStatus)
		r.Get("/config", x.apiConfig)
		r.Get("/input", x.apiInput)
		r.Post("/input/pause", x.apiPause)
		r.Get("/eventstream", x.apiEventStream)
	})

	return x, nil
}

// Handler returns the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}

// Serve binds and serves http on the bound socket.  An error will be
// returned if the server cannot initialize.
func (s *Server) Serve(bind string) error {
	s.l.Info("HTTP is starting", "bind", bind)
	s.n.Addr = bind
	s.n.Handler = s.r
	if s.swg != nil {
		s.swg.Done()
	}
	return s.n.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.l.Info("Stopping...")
	return s.n.Shutdown(ctx)
}

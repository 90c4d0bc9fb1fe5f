package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/gizmo-platform/parker/pkg/buildinfo"
)

func (s *Server) templateErrorHandler(w http.ResponseWriter, err error) {
	fmt.Fprintf(w, "Error while rendering template: %s\n", err)
}

func (s *Server) doTemplate(w http.ResponseWriter, r *http.Request, tmpl string, ctx pongo2.Context) {
	if ctx == nil {
		ctx = pongo2.Context{}
	}
	ctx["version"] = buildinfo.Summary()
	t, err := s.tpl.FromCache(tmpl)
	if err != nil {
		s.templateErrorHandler(w, err)
		return
	}
	if err := t.ExecuteWriter(ctx, w); err != nil {
		s.templateErrorHandler(w, err)
	}
}

func (s *Server) uiViewHUD(w http.ResponseWriter, r *http.Request) {
	ctx := pongo2.Context{}
	if s.status != nil {
		ctx["status"] = s.status.Status()
	}
	if s.es != nil {
		ctx["run"] = s.es.RunID()
	}
	if s.cfg != nil {
		ctx["colors"] = s.cfg.Colors
	}
	s.doTemplate(w, r, "views/hud.p2", ctx)
}

// filterStateClass turns a state name into a CSS class.
func filterStateClass(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue("state-" + strings.ToLower(strings.ReplaceAll(in.String(), "_", "-"))), nil
}

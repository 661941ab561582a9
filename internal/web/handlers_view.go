package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/datasight/internal/core"
	"github.com/JonMunkholm/datasight/internal/logging"
)

// viewResponse is a rendered view plus the state that produced it.
type viewResponse struct {
	core.ViewResult
	View    core.ViewState `json:"view"`
	Summary string         `json:"summary"`
}

func newViewResponse(result core.ViewResult, state core.ViewState) viewResponse {
	return viewResponse{ViewResult: result, View: state, Summary: result.Summary()}
}

// handleRows renders the dataset. Query parameters apply a one-off view
// without changing the stored one.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	ds, err := s.service.Get(id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	override, err := parseViewOverride(r, ds.Table, ds.View)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	result, err := s.service.View(id, override)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	state := ds.View
	if override != nil {
		state = *override
	}
	writeJSON(w, http.StatusOK, newViewResponse(result, state))
}

// handleToggleSort advances the sort cycle on a column.
func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.ToggleSort(pathParam(r, "id"), pathParam(r, "column"))
	s.respondView(w, r, ds, err)
}

// filterRequest is the body of PUT /filters/{column}.
type filterRequest struct {
	Kind    string `json:"kind"`
	Operand string `json:"operand"`
}

// handleSetFilter sets or replaces the filter on a column.
func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid filter body: %w", err), http.StatusBadRequest)
		return
	}

	kind, err := core.ParseFilterKind(req.Kind)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ds, err := s.service.SetFilter(pathParam(r, "id"), pathParam(r, "column"), core.ColumnFilter{
		Kind:    kind,
		Operand: req.Operand,
	})
	s.respondView(w, r, ds, err)
}

// handleClearFilter removes the filter on a column.
func (s *Server) handleClearFilter(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.ClearFilter(pathParam(r, "id"), pathParam(r, "column"))
	s.respondView(w, r, ds, err)
}

// handleClearFilters removes every filter and keeps the sort.
func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.ClearFilters(pathParam(r, "id"))
	s.respondView(w, r, ds, err)
}

// respondView renders the stored view of ds after a state change.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request, ds *core.Dataset, err error) {
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	result := core.Render(ds.Table, ds.View, s.service.DisplayCap())
	writeJSON(w, http.StatusOK, newViewResponse(result, ds.View))
}

// handleExport streams every row of the stored view as CSV, without the
// display cap.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	ds, err := s.service.Get(id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	base := strings.TrimSuffix(ds.Table.FileName, filepath.Ext(ds.Table.FileName))
	if base == "" {
		base = "dataset"
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, base+"_view.csv"))

	// Headers are sent by the first write; failures after that can only be logged.
	if err := s.service.Export(r.Context(), id, w); err != nil {
		logging.FromContext(r.Context()).Error("export failed", "dataset_id", id, "error", err)
	}
}

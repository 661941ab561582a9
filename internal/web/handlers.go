package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/datasight/internal/core"
)

// handleHealth reports liveness plus ingestion capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"datasets": s.service.Count(),
		"ingest":   s.service.Limiter().Status(),
	})
}

// handleLoadDataset ingests the multipart "file" field as a new dataset.
func (s *Server) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	f, cleanup, ok := s.formFile(w, r)
	if !ok {
		return
	}
	defer cleanup()

	ds, err := s.service.Load(WithRequestMetadata(r.Context(), r), f)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Location", "/api/datasets/"+ds.ID)
	writeJSON(w, http.StatusCreated, ds.Summary())
}

// handleGetDataset returns the dataset summary: headers, analysis and view.
func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Get(pathParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, ds.Summary())
}

// handleReplaceDataset swaps in a new file. On failure the previous table
// stays loaded.
func (s *Server) handleReplaceDataset(w http.ResponseWriter, r *http.Request) {
	f, cleanup, ok := s.formFile(w, r)
	if !ok {
		return
	}
	defer cleanup()

	ds, err := s.service.Replace(WithRequestMetadata(r.Context(), r), pathParam(r, "id"), f)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, ds.Summary())
}

// handleClearDataset drops the dataset.
func (s *Server) handleClearDataset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Clear(pathParam(r, "id")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// formFile extracts the uploaded file. On failure it has already written
// the response and ok is false.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (f core.File, cleanup func(), ok bool) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, r, core.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
			return core.File{}, nil, false
		}
		respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
		return core.File{}, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
		return core.File{}, nil, false
	}

	cleanup = func() {
		file.Close()
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}
	return core.File{Name: header.Filename, Size: header.Size, Content: file}, cleanup, true
}

package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Viniciusalvim1/lumia-data-forge/internal/core"
	"github.com/Viniciusalvim1/lumia-data-forge/internal/logging"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string             `json:"status"`
	Runs   core.LimiterStatus `json:"runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok", Runs: s.service.LimiterStatus()})
}

// handleEnrich runs the pipeline on a master file and a work file or a
// pasted CPF list.
//
// Form fields:
//   - master: master file (.csv, .txt, .xlsx)
//   - work: work file, optional when cpfs is given
//   - cpfs: one CPF per line
//   - has_header: whether input files start with a header row (default true)
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 2); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	master, masterFile, err := formSource(r, "master")
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if masterFile != nil {
		defer masterFile.Close()
	}

	work, workFile, err := formSource(r, "work")
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if workFile != nil {
		defer workFile.Close()
	}

	req := core.EnrichRequest{
		Master:   master,
		Work:     work,
		List:     r.FormValue("cpfs"),
		NoHeader: !parseBoolParam(r, "has_header", true),
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Enrich(ctx, req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.WithFields(ctx, "run_id", result.RunID).Info("enrich request served",
		"total", result.Total,
		"matches", result.MatchCount,
	)
	writeJSON(w, result)
}

// handleInspect reports how a single uploaded file would be mapped.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	src, file, err := formSource(r, "file")
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if src == nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	ins, err := s.service.Inspect(WithRequestMetadata(r.Context(), r), *src, !parseBoolParam(r, "has_header", true))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, ins)
}

// handleResult returns a stored run.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Result(chi.URLParam(r, "runID"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, result)
}

// handleDownload streams a stored run as csv (default) or xlsx.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	format, err := core.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	data, filename, err := s.service.Export(runID, format)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logging.WithFields(r.Context(), "run_id", runID).Warn("download interrupted", "error", err)
	}
}

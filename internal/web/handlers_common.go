package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Viniciusalvim1/lumia-data-forge/internal/core"
)

// multipartMemory is how much of a form is kept in memory before spilling
// to temporary files.
const multipartMemory = 32 << 20

// formOverhead covers the non-file parts of a multipart body.
const formOverhead = 1 << 20

// parseForm caps the body at one MaxFileSize per expected file and parses
// it as multipart.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, files int) error {
	limit := s.cfg.Upload.MaxFileSize*int64(files) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return fmt.Errorf("file too large: request exceeds %d bytes: %w", limit, err)
		}
		return fmt.Errorf("invalid form: %w", err)
	}
	return nil
}

// formSource opens an optional file field. A missing field yields nil.
func formSource(r *http.Request, field string) (*core.Source, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read field %s: %w", field, err)
	}
	return &core.Source{Name: header.Filename, Reader: file}, file, nil
}

// parseBoolParam parses a boolean form value with a default.
func parseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := strings.TrimSpace(r.FormValue(name))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		switch strings.ToLower(val) {
		case "on", "yes", "sim":
			return true
		case "off", "no", "nao", "não":
			return false
		}
		return defaultVal
	}
	return b
}

package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/jemaat/internal/core"
	"github.com/JonMunkholm/jemaat/internal/logging"
)

// multipartOverhead is allowed on top of the file size for form framing.
const multipartOverhead = 1 << 20

// readUpload returns the name and content of the multipart "file" field.
func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, core.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooLarge.Limit)
		}
		return "", nil, errNoFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrUnreadableFile, err)
	}
	return header.Filename, data, nil
}

// handleImport runs a full import and returns the tally.
// File-level problems are errors; per-household failures are in the body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	result, err := s.service.ImportFile(r.Context(), name, data)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "run_id", result.RunID).Info("import finished",
		"succeeded", result.Tally.Succeeded,
		"failed", result.Tally.Failed,
	)
	writeJSON(w, http.StatusOK, result)
}

// handlePreview groups the file and checks it against the directory
// without writing.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	result, err := s.service.Preview(r.Context(), name, data)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleImportStatus reports import slot occupancy.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

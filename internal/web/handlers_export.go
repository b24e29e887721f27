package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/jemaat/internal/core"
)

// handleExport writes the roster or birthday list as XLSX or CSV.
//
// Query: mode=roster|birthday, month=1..12, format=xlsx|csv, sector, status, q.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := core.ParseExportMode(q.Get("mode"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	format, err := core.ParseFormat(q.Get("format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	opts, err := parseExportOptions(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	sheet, err := s.service.Export(r.Context(), mode, opts)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.writeSheet(w, r, sheet, format, s.service.ExportFileName(mode, opts))
}

// handleTemplate serves the import template.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.writeSheet(w, r, s.service.Template(), format, core.TemplateFileName)
}

// writeSheet renders into a buffer first so an encoding failure can still
// be reported as an error response.
func (s *Server) writeSheet(w http.ResponseWriter, r *http.Request, sheet *core.Sheet, format core.Format, name string) {
	var buf bytes.Buffer
	if err := core.WriteSheet(&buf, sheet, format); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+string(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// parseExportOptions reads the filter query parameters shared by export
// and the household list.
func parseExportOptions(r *http.Request) (core.ExportOptions, error) {
	q := r.URL.Query()
	opts := core.ExportOptions{
		Sector: core.Sector(strings.TrimSpace(q.Get("sector"))),
		Status: core.VerificationStatus(strings.TrimSpace(q.Get("status"))),
		Query:  q.Get("q"),
	}

	if m := strings.TrimSpace(q.Get("month")); m != "" {
		month, err := strconv.Atoi(m)
		if err != nil || month < 0 || month > 12 {
			return opts, fmt.Errorf("invalid month %q", m)
		}
		opts.Month = month
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return opts, fmt.Errorf("%w: %q", core.ErrInvalidStatus, opts.Status)
	}
	return opts, nil
}

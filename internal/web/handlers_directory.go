package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/jemaat/internal/core"
)

// maxJSONBody bounds administration request bodies.
const maxJSONBody = 1 << 20

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleListHouseholds(w http.ResponseWriter, r *http.Request) {
	opts, err := parseExportOptions(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	households, err := s.service.ListHouseholds(r.Context(), opts)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(households),
		"households": households,
	})
}

func (s *Server) handleGetHousehold(w http.ResponseWriter, r *http.Request) {
	h, err := s.service.GetHousehold(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleUpdateHousehold(w http.ResponseWriter, r *http.Request) {
	var patch core.HouseholdPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.service.UpdateHousehold(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusRequest is the body of POST /households/{id}/status.
type statusRequest struct {
	Status core.VerificationStatus `json:"verificationStatus"`
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.service.SetVerificationStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHousehold(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteHousehold(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var m core.Member
	if err := decodeJSON(w, r, &m); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	added, err := s.service.AddMember(r.Context(), chi.URLParam(r, "id"), m)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var m core.Member
	if err := decodeJSON(w, r, &m); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	m.ID = chi.URLParam(r, "id")
	if err := s.service.UpdateMember(r.Context(), m); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

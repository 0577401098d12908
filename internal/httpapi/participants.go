package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/cubefour/internal/roster"
)

type participantRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type patchParticipantRequest struct {
	Name *string `json:"name,omitempty"`
	Path *string `json:"path,omitempty"`
}

func (s *Server) listParticipants(w http.ResponseWriter, r *http.Request) {
	ps, err := s.roster.List(r.Context())
	if err != nil {
		s.writeRosterError(w, err)
		return
	}
	if ps == nil {
		ps = []roster.Participant{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// upsertParticipant answers 201 for a new participant and 200 when an
// existing one matched by path or name was updated.
func (s *Server) upsertParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, created, err := s.roster.Upsert(r.Context(), req.Name, req.Path)
	if err != nil {
		s.writeRosterError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, p)
}

func (s *Server) getParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := s.roster.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRosterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) patchParticipant(w http.ResponseWriter, r *http.Request) {
	var req patchParticipantRequest
	if err := decode(w, r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.roster.Patch(r.Context(), chi.URLParam(r, "id"), req.Name, req.Path)
	if err != nil {
		s.writeRosterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteParticipant(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeRosterError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeRosterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roster.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, roster.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, roster.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("roster request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

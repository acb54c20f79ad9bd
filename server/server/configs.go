package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/derktes/ir-remote/store"
)

func (s *Server) listConfigsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Metadata())
}

func (s *Server) defaultConfigHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.GetDefault())
}

func (s *Server) getConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.store.Get(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "Config not found")
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) exportConfigHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	cfg, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Config not found")
		return
	}
	text, err := s.store.Export(cfg)
	if err != nil {
		s.logger.Error("export failed", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to export config")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.json"`)
	_, _ = io.WriteString(w, text)
}

func (s *Server) saveConfigHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	cfg, err := store.ParseRecord(string(body))
	if err != nil {
		if errors.Is(err, store.ErrImportMissingFields) {
			s.writeError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.store.Save(r.Context(), cfg)
	if err != nil {
		if isClientGone(err) {
			return
		}
		if errors.Is(err, store.ErrInvalidID) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("save failed", "id", cfg.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save config")
		return
	}
	s.writeJSON(w, http.StatusOK, saveResponse{Success: true, ID: saved.ID})
}

func (s *Server) deleteConfigHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	switch err := s.store.Delete(r.Context(), id); {
	case err == nil:
		s.writeJSON(w, http.StatusOK, saveResponse{Success: true})
	case errors.Is(err, store.ErrConfigNotFound):
		s.writeError(w, http.StatusNotFound, "Config not found")
	case errors.Is(err, store.ErrCannotDeleteDefault):
		s.writeError(w, http.StatusConflict, "Cannot delete the default config")
	default:
		s.logger.Error("delete failed", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to delete config")
	}
}

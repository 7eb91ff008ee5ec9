package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/execution-hub/wifictl/internal/domain/lock"
)

type screenRequest struct {
	On bool `json:"on"`
}

type batteryRequest struct {
	Plugged int `json:"plugged"`
}

type importanceRequest struct {
	Importance lock.Importance `json:"importance"`
}

func accepted(w http.ResponseWriter) {
	respondJSON(w, http.StatusAccepted, map[string]interface{}{"accepted": true})
}

func (s *Server) screen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	s.controller.SetScreenOn(req.On)
	accepted(w)
}

func (s *Server) deviceIdle(w http.ResponseWriter, r *http.Request) {
	s.controller.DeviceIdle()
	accepted(w)
}

func (s *Server) battery(w http.ResponseWriter, r *http.Request) {
	var req batteryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.Plugged < 0 || req.Plugged > 7 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "plugged must be a bitmask of 1 (AC), 2 (USB) and 4 (wireless)")
		return
	}
	s.controller.SetPluggedType(req.Plugged)
	accepted(w)
}

func (s *Server) userPresent(w http.ResponseWriter, r *http.Request) {
	s.controller.UserPresent()
	accepted(w)
}

func (s *Server) setImportance(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.Atoi(chi.URLParam(r, "uid"))
	if err != nil || uid < 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid uid")
		return
	}
	var req importanceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.Importance <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "importance must be positive")
		return
	}
	s.importance.SetImportance(uid, req.Importance)
	respondJSON(w, http.StatusOK, map[string]interface{}{"uid": uid, "importance": req.Importance})
}

func (s *Server) listImportance(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"uids": s.importance.Snapshot()})
}

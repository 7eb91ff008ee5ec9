package httpapi

import (
	"net/http"
	"strings"

	"github.com/execution-hub/wifictl/internal/domain/wifi"
)

type toggleRequest struct {
	Enable bool `json:"enable"`
}

type airplaneRequest struct {
	On bool `json:"on"`
}

type scanAlwaysRequest struct {
	Enabled bool `json:"enabled"`
}

type softApRequest struct {
	Enable bool               `json:"enable"`
	Config *wifi.SoftApConfig `json:"config,omitempty"`
}

type activeRequest struct {
	Active bool `json:"active"`
}

type restartRequest struct {
	SoftAp *wifi.SoftApConfig `json:"softAp,omitempty"`
}

func (s *Server) toggleWifi(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	changed := s.settings.HandleWifiToggled(req.Enable)
	if changed {
		s.controller.WifiToggled()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"enable":         req.Enable,
		"changed":        changed,
		"persistedState": s.settings.PersistedState().String(),
	})
}

func (s *Server) toggleAirplane(w http.ResponseWriter, r *http.Request) {
	var req airplaneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	s.settings.HandleAirplaneToggled(req.On)
	s.controller.AirplaneToggled()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"on":             req.On,
		"persistedState": s.settings.PersistedState().String(),
	})
}

func (s *Server) toggleScanAlways(w http.ResponseWriter, r *http.Request) {
	var req scanAlwaysRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	s.settings.HandleScanAlwaysToggled(req.Enabled)
	s.controller.ScanAlwaysModeChanged()
	respondJSON(w, http.StatusOK, map[string]interface{}{"enabled": req.Enabled})
}

func validSoftApConfig(cfg *wifi.SoftApConfig) bool {
	return cfg != nil && strings.TrimSpace(cfg.SSID) != ""
}

func (s *Server) softAp(w http.ResponseWriter, r *http.Request) {
	var req softApRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.Enable && !validSoftApConfig(req.Config) {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "config with ssid required to enable softap")
		return
	}
	s.controller.SetSoftAp(req.Enable, req.Config)
	accepted(w)
}

func (s *Server) emergencyCallback(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	s.controller.EmergencyCallbackMode(req.Active)
	accepted(w)
}

func (s *Server) emergencyCall(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	s.controller.EmergencyCall(req.Active)
	accepted(w)
}

func (s *Server) restartWifi(w http.ResponseWriter, r *http.Request) {
	var req restartRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
			return
		}
	}
	if req.SoftAp != nil && !validSoftApConfig(req.SoftAp) {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "softAp config requires an ssid")
		return
	}
	s.controller.RestartWifi(req.SoftAp)
	accepted(w)
}

func (s *Server) wifiStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"controller":     s.controller.Status(),
		"persistedState": s.settings.PersistedState().String(),
		"strongestMode":  s.locks.StrongestMode(),
	}
	if s.hub != nil {
		status["eventStream"] = map[string]int{
			"clients": s.hub.GetClientCount(),
			"dropped": s.hub.Dropped(),
		}
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) listTransitions(w http.ResponseWriter, r *http.Request) {
	if s.transitions == nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "transition log disabled")
		return
	}
	list, err := s.transitions.Recent(r.Context(), parseLimit(r, 50, 500))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"transitions": list})
}

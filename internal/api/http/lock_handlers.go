package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/infrastructure/lease"
)

type acquireLockRequest struct {
	Mode       lock.Mode        `json:"mode"`
	Tag        string           `json:"tag"`
	WorkSource *lock.WorkSource `json:"workSource,omitempty"`
}

type forceModeRequest struct {
	Enable bool `json:"enable"`
}

func (s *Server) acquireLock(w http.ResponseWriter, r *http.Request) {
	var req acquireLockRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	caller, _ := callerFromContext(r.Context())
	var ws lock.WorkSource
	if req.WorkSource != nil {
		ws = *req.WorkSource
	}

	l := s.leases.Issue(caller.UID)
	ok, err := s.locks.Acquire(r.Context(), caller, req.Mode, req.Tag, l.Handle, ws)
	if err != nil {
		s.leases.Unwatch(l.Handle)
		respondServiceError(w, err)
		return
	}
	if !ok {
		s.leases.Unwatch(l.Handle)
		respondError(w, http.StatusConflict, "NOT_ACQUIRED", "lock not acquired")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"handle":  l.Handle,
		"mode":    req.Mode,
		"expires": l.Expires,
	})
}

// ownedHandle resolves the {handle} parameter and checks the caller owns it.
// Privileged callers may act on any handle.
func (s *Server) ownedHandle(w http.ResponseWriter, r *http.Request) (lock.Handle, bool) {
	handle := lock.Handle(chi.URLParam(r, "handle"))
	owner, ok := s.leases.Owner(handle)
	if !ok {
		respondServiceError(w, lease.ErrUnknownLease)
		return "", false
	}
	caller, _ := callerFromContext(r.Context())
	if owner != caller.UID && !isPrivileged(r.Context()) {
		respondServiceError(w, lease.ErrNotOwner)
		return "", false
	}
	return handle, true
}

func (s *Server) releaseLock(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.ownedHandle(w, r)
	if !ok {
		return
	}
	if !s.locks.Release(r.Context(), handle) {
		s.leases.Unwatch(handle)
		respondServiceError(w, lock.ErrLockNotHeld)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"handle": handle, "released": true})
}

func (s *Server) updateWorkSource(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.ownedHandle(w, r)
	if !ok {
		return
	}
	var ws lock.WorkSource
	if err := decodeBody(r, &ws); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	caller, _ := callerFromContext(r.Context())
	if err := s.locks.UpdateWorkSource(r.Context(), caller, handle, ws); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"handle": handle, "workSource": ws})
}

func (s *Server) heartbeat(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFromContext(r.Context())
	l, err := s.leases.Renew(lock.Handle(chi.URLParam(r, "handle")), caller.UID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (s *Server) listLocks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"locks": s.locks.Locks()})
}

func (s *Server) mergedWorkSource(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.locks.MergedWorkSource())
}

func (s *Server) strongestMode(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"mode": s.locks.StrongestMode()})
}

func (s *Server) lockStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.locks.Stats())
}

func (s *Server) lockUsage(w http.ResponseWriter, r *http.Request) {
	if s.usage == nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "usage accounting disabled")
		return
	}
	summary, err := s.usage.Summarize(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"usage": summary})
}

func (s *Server) forceHiPerf(w http.ResponseWriter, r *http.Request) {
	var req forceModeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	ok := s.locks.ForceHiPerfMode(req.Enable)
	respondJSON(w, http.StatusOK, map[string]interface{}{"enable": req.Enable, "success": ok})
}

func (s *Server) forceLowLatency(w http.ResponseWriter, r *http.Request) {
	var req forceModeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	ok := s.locks.ForceLowLatencyMode(req.Enable)
	respondJSON(w, http.StatusOK, map[string]interface{}{"enable": req.Enable, "success": ok})
}

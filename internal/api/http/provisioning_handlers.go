package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/execution-hub/wifictl/internal/domain/event"
	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

// provisioningCallback surfaces one request's progress on the requester's
// event streams.
type provisioningCallback struct {
	server    *Server
	requestID string
	uid       int
}

type provisioningEvent struct {
	RequestID string `json:"requestId"`
	UID       int    `json:"uid"`
	Status    string `json:"status,omitempty"`
	Failure   string `json:"failure,omitempty"`
}

func (c *provisioningCallback) OnStatus(status provisioning.Status) {
	c.server.publishToUID(c.uid, event.TypeProvisioningStatus, provisioningEvent{RequestID: c.requestID, UID: c.uid, Status: status.String()})
}

func (c *provisioningCallback) OnFailure(failure provisioning.Failure) {
	c.server.publishToUID(c.uid, event.TypeProvisioningFailure, provisioningEvent{RequestID: c.requestID, UID: c.uid, Failure: failure.String()})
}

func (c *provisioningCallback) OnComplete() {
	c.server.publishToUID(c.uid, event.TypeProvisioningComplete, provisioningEvent{RequestID: c.requestID, UID: c.uid})
}

func (s *Server) startProvisioning(w http.ResponseWriter, r *http.Request) {
	var provider provisioning.Provider
	if err := decodeBody(r, &provider); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := provider.Validate(); err != nil {
		respondServiceError(w, err)
		return
	}
	caller, _ := callerFromContext(r.Context())
	cb := &provisioningCallback{server: s, requestID: uuid.NewString(), uid: caller.UID}
	if !s.provisioner.Start(caller.UID, provider, cb) {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "provisioning request rejected")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]interface{}{"requestId": cb.requestID})
}

func (s *Server) provisioningStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.provisioner.Snapshot())
}

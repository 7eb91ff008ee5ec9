package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/application/controller"
	"github.com/execution-hub/wifictl/internal/domain/event"
	"github.com/execution-hub/wifictl/internal/domain/lock"
	"github.com/execution-hub/wifictl/internal/domain/provisioning"
	"github.com/execution-hub/wifictl/internal/domain/settings"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
	"github.com/execution-hub/wifictl/internal/infrastructure/activity"
	"github.com/execution-hub/wifictl/internal/infrastructure/lease"
	"github.com/execution-hub/wifictl/internal/infrastructure/postgres"
)

// LockService is the lock registry surface the API drives.
type LockService interface {
	Acquire(ctx context.Context, caller lock.Caller, mode lock.Mode, tag string, handle lock.Handle, ws lock.WorkSource) (bool, error)
	Release(ctx context.Context, handle lock.Handle) bool
	UpdateWorkSource(ctx context.Context, caller lock.Caller, handle lock.Handle, ws lock.WorkSource) error
	ForceHiPerfMode(enable bool) bool
	ForceLowLatencyMode(enable bool) bool
	StrongestMode() lock.Mode
	MergedWorkSource() lock.WorkSource
	Locks() []lock.Record
	Stats() lock.Stats
}

// Leases issue and renew lock owner handles.
type Leases interface {
	Issue(uid int) lease.Lease
	Renew(handle lock.Handle, uid int) (lease.Lease, error)
	Owner(handle lock.Handle) (int, bool)
	Unwatch(handle lock.Handle)
}

type Controller interface {
	Status() controller.Status
	SetScreenOn(on bool)
	SetPluggedType(plugged int)
	DeviceIdle()
	UserPresent()
	WifiToggled()
	AirplaneToggled()
	ScanAlwaysModeChanged()
	SetSoftAp(enable bool, cfg *wifi.SoftApConfig)
	EmergencyCallbackMode(active bool)
	EmergencyCall(active bool)
	RestartWifi(cfg *wifi.SoftApConfig)
}

type Settings interface {
	HandleWifiToggled(enable bool) bool
	HandleAirplaneToggled(on bool)
	HandleScanAlwaysToggled(enabled bool)
	PersistedState() settings.PersistedState
}

type Importance interface {
	SetImportance(uid int, importance lock.Importance)
	Snapshot() []activity.UIDImportance
}

type Provisioner interface {
	Start(uid int, provider provisioning.Provider, cb provisioning.Callback) bool
	Snapshot() provisioning.Snapshot
}

type Transitions interface {
	Recent(ctx context.Context, limit int) ([]wifi.Transition, error)
}

type Usage interface {
	Summarize(ctx context.Context) ([]postgres.UsageSummary, error)
}

type Hub interface {
	event.Publisher
	PublishToUID(uid int, e *event.Event)
	Register(client *event.Client)
	Unregister(client *event.Client)
	GetClientCount() int
	Dropped() int
}

// Privilege recognises the privileged bearer token.
type Privilege interface {
	IsPrivileged(token string) bool
}

// Deps are the services behind the API. Transitions and Usage are optional.
type Deps struct {
	Locks       LockService
	Leases      Leases
	Controller  Controller
	Settings    Settings
	Importance  Importance
	Provisioner Provisioner
	Transitions Transitions
	Usage       Usage
	Hub         Hub
	Privilege   Privilege
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	locks       LockService
	leases      Leases
	controller  Controller
	settings    Settings
	importance  Importance
	provisioner Provisioner
	transitions Transitions
	usage       Usage
	hub         Hub
	privilege   Privilege
	logger      zerolog.Logger
}

func NewServer(deps Deps, logger zerolog.Logger) *Server {
	return &Server{
		locks:       deps.Locks,
		leases:      deps.Leases,
		controller:  deps.Controller,
		settings:    deps.Settings,
		importance:  deps.Importance,
		provisioner: deps.Provisioner,
		transitions: deps.Transitions,
		usage:       deps.Usage,
		hub:         deps.Hub,
		privilege:   deps.Privilege,
		logger:      logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.identifyCaller)

		// The event stream is long-lived and must not inherit the timeout.
		r.Get("/events", s.sseEndpoint)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Route("/locks", func(r chi.Router) {
				r.Post("/", s.acquireLock)
				r.Get("/", s.listLocks)
				r.Get("/merged-work-source", s.mergedWorkSource)
				r.Get("/strongest-mode", s.strongestMode)
				r.Get("/stats", s.lockStats)
				r.Get("/usage", s.lockUsage)
				r.Delete("/{handle}", s.releaseLock)
				r.Put("/{handle}/work-source", s.updateWorkSource)
				r.Post("/{handle}/heartbeat", s.heartbeat)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requirePrivileged)

				r.Route("/modes", func(r chi.Router) {
					r.Post("/hi-perf", s.forceHiPerf)
					r.Post("/low-latency", s.forceLowLatency)
				})

				r.Route("/device", func(r chi.Router) {
					r.Post("/screen", s.screen)
					r.Post("/idle", s.deviceIdle)
					r.Post("/battery", s.battery)
					r.Post("/user-present", s.userPresent)
				})

				r.Get("/uids", s.listImportance)
				r.Post("/uids/{uid}/importance", s.setImportance)

				r.Post("/wifi/softap", s.softAp)
				r.Post("/wifi/emergency-callback", s.emergencyCallback)
				r.Post("/wifi/emergency-call", s.emergencyCall)
				r.Post("/wifi/restart", s.restartWifi)
			})

			r.Route("/wifi", func(r chi.Router) {
				r.Post("/toggle", s.toggleWifi)
				r.Post("/airplane", s.toggleAirplane)
				r.Post("/scan-always", s.toggleScanAlways)
				r.Get("/status", s.wifiStatus)
				r.Get("/transitions", s.listTransitions)
			})

			r.Route("/provisioning", func(r chi.Router) {
				r.Post("/", s.startProvisioning)
				r.Get("/status", s.provisioningStatus)
			})
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondServiceError maps domain sentinels to status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lock.ErrInvalidMode), errors.Is(err, lock.ErrInvalidHandle), errors.Is(err, provisioning.ErrInvalidProvider):
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	case errors.Is(err, lock.ErrPermissionDenied), errors.Is(err, lease.ErrNotOwner):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, lock.ErrLockNotHeld), errors.Is(err, lease.ErrUnknownLease):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, settings.ErrUnknownKey):
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimit(r *http.Request, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := []string{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) publish(t event.Type, data interface{}) {
	if s.hub == nil {
		return
	}
	e, err := event.New(t, data)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", string(t)).Msg("failed to encode event")
		return
	}
	s.hub.Publish(e)
}

// publishToUID is publish restricted to the event streams opened by uid.
func (s *Server) publishToUID(uid int, t event.Type, data interface{}) {
	if s.hub == nil {
		return
	}
	e, err := event.New(t, data)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", string(t)).Msg("failed to encode event")
		return
	}
	s.hub.PublishToUID(uid, e)
}

func (s *Server) sseEndpoint(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = uuid.NewString()
	}
	var types []event.Type
	for _, t := range splitCSV(r.URL.Query().Get("types")) {
		types = append(types, event.Type(t))
	}
	var uidPtr *int
	if caller, ok := callerFromContext(r.Context()); ok {
		uid := caller.UID
		uidPtr = &uid
	}
	client := event.NewClient(clientID, uidPtr, types)
	s.hub.Register(client)
	defer s.hub.Unregister(client)

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	// Send an initial comment to flush headers and keep the connection alive.
	_, _ = w.Write([]byte(": connected " + clientID + "\n\n"))
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case msg, ok := <-client.Messages:
			if !ok || msg == nil {
				return
			}
			payload, _ := json.Marshal(msg)
			_, _ = w.Write([]byte("event: " + string(msg.Type) + "\ndata: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

package provisioning

import (
	"context"
	"crypto/x509"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
	"github.com/execution-hub/wifictl/internal/infrastructure/looper"
)

const storeTimeout = 5 * time.Second

// Deps are the collaborators of the provisioner.
type Deps struct {
	Handler  looper.Handler
	Network  provisioning.OsuNetwork
	Server   provisioning.OsuServer
	Redirect provisioning.RedirectListener
	Login    provisioning.LoginLauncher
	Parser   provisioning.MoParser
	Configs  provisioning.ConfigRepository
	Device   provisioning.DeviceInfo
}

// Provisioner runs Passpoint online sign-up. All flow state is owned by the
// handler's goroutine; asynchronous callbacks are posted there and fenced by
// session.
type Provisioner struct {
	handler  looper.Handler
	network  provisioning.OsuNetwork
	server   provisioning.OsuServer
	redirect provisioning.RedirectListener
	login    provisioning.LoginLauncher
	parser   provisioning.MoParser
	configs  provisioning.ConfigRepository
	device   provisioning.DeviceInfo

	stage           provisioning.Stage
	session         int
	uid             int
	provider        provisioning.Provider
	serverURL       *url.URL
	osuNetwork      string
	sppSessionID    string
	config          *provisioning.PasspointConfig
	callback        provisioning.Callback
	redirectRunning bool
	storing         bool

	mu       sync.RWMutex
	snapshot provisioning.Snapshot

	logger zerolog.Logger
}

func NewProvisioner(deps Deps, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		handler:  deps.Handler,
		network:  deps.Network,
		server:   deps.Server,
		redirect: deps.Redirect,
		login:    deps.Login,
		parser:   deps.Parser,
		configs:  deps.Configs,
		device:   deps.Device,
		logger:   logger.With().Str("service", "provisioning").Logger(),
	}
}

// Start begins provisioning with provider on behalf of uid. A flow already
// in progress is aborted first. It returns false when the request is
// rejected before any flow starts.
func (p *Provisioner) Start(uid int, provider provisioning.Provider, cb provisioning.Callback) bool {
	if cb == nil {
		return false
	}
	if err := provider.Validate(); err != nil {
		p.logger.Warn().Err(err).Int("uid", uid).Msg("provisioning request rejected")
		return false
	}
	p.handler.Post(func() { p.start(uid, provider, cb) })
	return true
}

// Snapshot returns the current session state.
func (p *Provisioner) Snapshot() provisioning.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

func (p *Provisioner) start(uid int, provider provisioning.Provider, cb provisioning.Callback) {
	if p.stage != provisioning.StageInit {
		p.logger.Info().Int("sessionId", p.session).Msg("aborting provisioning in progress")
		p.fail(provisioning.FailureProvisioningAborted)
	}
	p.session++
	p.uid = uid
	p.provider = provider
	p.callback = cb
	p.publish()
	p.logger.Info().
		Int("sessionId", p.session).
		Int("uid", uid).
		Str("provider", provider.FriendlyName).
		Msg("provisioning started")

	if !p.server.CanValidateServer() {
		p.fail(provisioning.FailureProvisioningNotAvailable)
		return
	}
	serverURL, err := provider.ServerURL()
	if err != nil {
		p.logger.Warn().Err(err).Msg("invalid osu server url")
		p.fail(provisioning.FailureServerURLInvalid)
		return
	}
	p.serverURL = serverURL

	p.network.SetCallbacks(p.networkCallbacks(p.session))
	p.server.SetCallbacks(p.serverCallbacks())
	if !p.network.Connect(provider.OsuSSID, provider.NAI) {
		p.fail(provisioning.FailureAPConnection)
		return
	}
	p.report(provisioning.StatusAPConnecting)
	p.setStage(provisioning.StageAPConnecting)
}

func (p *Provisioner) networkCallbacks(session int) provisioning.NetworkCallbacks {
	return provisioning.NetworkCallbacks{
		OnConnected: func(network string) {
			p.handler.Post(func() { p.handleConnected(session, network) })
		},
		OnDisconnected: func() {
			p.handler.Post(func() { p.handleDisconnected(session, "osu network disconnected") })
		},
		OnWifiDisabled: func() {
			p.handler.Post(func() { p.handleDisconnected(session, "wifi disabled") })
		},
	}
}

func (p *Provisioner) serverCallbacks() provisioning.ServerCallbacks {
	return provisioning.ServerCallbacks{
		OnServerValidationStatus: func(session int, ok bool) {
			p.handler.Post(func() { p.handleServerValidation(session, ok) })
		},
		OnServerConnectionStatus: func(session int, ok bool) {
			p.handler.Post(func() { p.handleServerConnection(session, ok) })
		},
		OnReceivedSoapMessage: func(session int, resp *provisioning.Response) {
			p.handler.Post(func() { p.handleSoapMessage(session, resp) })
		},
		OnReceivedTrustRootCertificates: func(session int, certs map[provisioning.TrustCertType][]*x509.Certificate) {
			p.handler.Post(func() { p.handleTrustRootCerts(session, certs) })
		},
	}
}

func (p *Provisioner) redirectCallbacks(session int) provisioning.RedirectCallbacks {
	return provisioning.RedirectCallbacks{
		OnRedirectReceived: func() {
			p.handler.Post(func() { p.handleRedirectReceived(session) })
		},
		OnRedirectTimedOut: func() {
			p.handler.Post(func() { p.handleRedirectTimedOut(session) })
		},
	}
}

// current reports whether a callback belongs to the live session.
func (p *Provisioner) current(session int, event string) bool {
	if session != p.session {
		p.logger.Debug().
			Int("sessionId", session).
			Int("currentSessionId", p.session).
			Str("event", event).
			Msg("dropping callback from stale session")
		return false
	}
	return true
}

func (p *Provisioner) expect(stage provisioning.Stage, event string) bool {
	if p.stage != stage {
		p.logger.Debug().
			Str("event", event).
			Stringer("stage", p.stage).
			Stringer("expected", stage).
			Msg("ignoring callback in unexpected stage")
		return false
	}
	return true
}

func (p *Provisioner) handleConnected(session int, network string) {
	if !p.current(session, "connected") || !p.expect(provisioning.StageAPConnecting, "connected") {
		return
	}
	p.osuNetwork = network
	p.report(provisioning.StatusAPConnected)
	p.setStage(provisioning.StageAPConnected)

	if !p.server.Connect(p.serverURL, network, p.session) {
		p.fail(provisioning.FailureServerConnection)
		return
	}
	p.report(provisioning.StatusServerConnecting)
	p.setStage(provisioning.StageServerConnecting)
}

func (p *Provisioner) handleDisconnected(session int, reason string) {
	if !p.current(session, reason) || p.stage == provisioning.StageInit {
		return
	}
	p.logger.Warn().Str("reason", reason).Stringer("stage", p.stage).Msg("lost osu network")
	p.fail(provisioning.FailureAPConnection)
}

func (p *Provisioner) handleServerValidation(session int, ok bool) {
	if !p.current(session, "server validation") || !p.expect(provisioning.StageServerConnecting, "server validation") {
		return
	}
	if !ok {
		p.fail(provisioning.FailureServerValidation)
		return
	}
	if !p.server.ValidateProvider(p.device.Language, p.provider.FriendlyName) {
		p.fail(provisioning.FailureServiceProviderVerification)
		return
	}
	p.report(provisioning.StatusServerValidated)
	p.setStage(provisioning.StageServerValidated)
}

func (p *Provisioner) handleServerConnection(session int, ok bool) {
	if !p.current(session, "server connection") || !p.expect(provisioning.StageServerValidated, "server connection") {
		return
	}
	if !ok {
		p.fail(provisioning.FailureServerConnection)
		return
	}
	p.report(provisioning.StatusServerConnected)
	p.setStage(provisioning.StageServerConnected)

	req := provisioning.Request{
		Kind:        provisioning.RequestPostDevData,
		Reason:      provisioning.ReasonSubscriptionRegistration,
		RedirectURI: p.redirect.URL(),
		Device:      p.device,
	}
	if !p.server.ExchangeSoapMessage(req) {
		p.fail(provisioning.FailureSoapMessageExchange)
		return
	}
	p.report(provisioning.StatusInitSoapExchange)
	p.setStage(provisioning.StageSoapExchange1)
}

func (p *Provisioner) handleSoapMessage(session int, resp *provisioning.Response) {
	if !p.current(session, "soap message") {
		return
	}
	if resp == nil {
		p.fail(provisioning.FailureUnexpectedSoapMessageType)
		return
	}
	switch p.stage {
	case provisioning.StageSoapExchange1:
		p.handleFirstResponse(resp)
	case provisioning.StageSoapExchange2:
		p.handleSecondResponse(resp)
	case provisioning.StageSoapExchange3:
		p.handleThirdResponse(resp)
	default:
		p.logger.Debug().Stringer("stage", p.stage).Msg("ignoring soap message in unexpected stage")
	}
}

// handleFirstResponse expects the browser command that sends the user to
// the provider's sign-up page.
func (p *Provisioner) handleFirstResponse(resp *provisioning.Response) {
	if resp.Type != provisioning.MessagePostDevDataResponse {
		p.fail(provisioning.FailureUnexpectedSoapMessageType)
		return
	}
	if resp.Status == provisioning.SppStatusError {
		p.fail(provisioning.FailureUnexpectedSoapMessageStatus)
		return
	}
	cmd := resp.Command
	if cmd == nil || cmd.ID != provisioning.CommandExec || cmd.Exec != provisioning.ExecBrowser {
		p.fail(provisioning.FailureUnexpectedCommandType)
		return
	}
	if u, err := url.Parse(cmd.BrowserURI); err != nil || u.Scheme == "" {
		p.fail(provisioning.FailureInvalidURLFormatForOsu)
		return
	}
	p.sppSessionID = resp.SessionID

	if err := p.redirect.Start(p.redirectCallbacks(p.session)); err != nil {
		p.logger.Warn().Err(err).Msg("failed to start redirect listener")
		p.fail(provisioning.FailureStartRedirectListener)
		return
	}
	p.redirectRunning = true

	err := p.login.Launch(context.Background(), provisioning.LoginRequest{
		URL:          cmd.BrowserURI,
		RedirectURL:  p.redirect.URL(),
		Network:      p.osuNetwork,
		FriendlyName: p.provider.FriendlyName,
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to launch osu login")
		p.fail(provisioning.FailureNoOsuActivityFound)
		return
	}
	p.report(provisioning.StatusWaitingForRedirectResponse)
	p.setStage(provisioning.StageWaitRedirect)
}

func (p *Provisioner) stopRedirect() {
	if p.redirectRunning {
		p.redirect.Stop()
		p.redirectRunning = false
	}
}

func (p *Provisioner) handleRedirectReceived(session int) {
	if !p.current(session, "redirect received") || !p.expect(provisioning.StageWaitRedirect, "redirect received") {
		return
	}
	p.stopRedirect()
	p.report(provisioning.StatusRedirectResponseReceived)

	req := provisioning.Request{
		Kind:      provisioning.RequestPostDevData,
		Reason:    provisioning.ReasonUserInputCompleted,
		SessionID: p.sppSessionID,
		Device:    p.device,
	}
	if !p.server.ExchangeSoapMessage(req) {
		p.fail(provisioning.FailureSoapMessageExchange)
		return
	}
	p.report(provisioning.StatusSecondSoapExchange)
	p.setStage(provisioning.StageSoapExchange2)
}

func (p *Provisioner) handleRedirectTimedOut(session int) {
	if !p.current(session, "redirect timed out") || !p.expect(provisioning.StageWaitRedirect, "redirect timed out") {
		return
	}
	p.stopRedirect()
	p.fail(provisioning.FailureTimedOutRedirectListener)
}

// handleSecondResponse expects the ADD_MO command carrying the subscription.
// An MO that fails validation is still acknowledged, with the error flag set.
func (p *Provisioner) handleSecondResponse(resp *provisioning.Response) {
	if resp.Type != provisioning.MessagePostDevDataResponse {
		p.fail(provisioning.FailureUnexpectedSoapMessageType)
		return
	}
	cmd := resp.Command
	if cmd == nil || cmd.ID != provisioning.CommandAddMO {
		p.fail(provisioning.FailureUnexpectedCommandType)
		return
	}
	cfg, err := p.parser.ParsePPSMO(cmd.PPSMO)
	if err != nil || cfg == nil {
		p.logger.Warn().Err(err).Msg("failed to parse pps mo")
		p.fail(provisioning.FailureNoPPSMO)
		return
	}
	p.config = cfg
	invalid := cfg.ValidateR2()
	if invalid != nil {
		p.logger.Warn().Err(invalid).Msg("pps mo failed validation")
	}

	req := provisioning.Request{
		Kind:        provisioning.RequestUpdateResponse,
		SessionID:   p.sppSessionID,
		Device:      p.device,
		UpdateError: invalid != nil,
	}
	if !p.server.ExchangeSoapMessage(req) {
		p.fail(provisioning.FailureSoapMessageExchange)
		return
	}
	p.report(provisioning.StatusThirdSoapExchange)
	p.setStage(provisioning.StageSoapExchange3)
}

func (p *Provisioner) handleThirdResponse(resp *provisioning.Response) {
	if resp.Type != provisioning.MessageExchangeComplete {
		p.fail(provisioning.FailureUnexpectedSoapMessageType)
		return
	}
	if resp.Status != provisioning.SppStatusExchangeComplete {
		p.fail(provisioning.FailureUnexpectedSoapMessageStatus)
		return
	}
	if resp.Error != "" {
		p.logger.Warn().Str("sppError", resp.Error).Msg("server reported provisioning error")
		p.fail(provisioning.FailureProvisioningAborted)
		return
	}

	roots := p.config.TrustRootURLs()
	if len(roots[provisioning.TrustCertAAA]) == 0 {
		p.fail(provisioning.FailureNoAAAServerTrustRootNode)
		return
	}
	if len(roots[provisioning.TrustCertRemediation]) == 0 {
		p.fail(provisioning.FailureNoRemediationServerTrustRootNode)
		return
	}
	if !p.server.RetrieveTrustRootCerts(roots) {
		p.fail(provisioning.FailureServerConnection)
		return
	}
	p.report(provisioning.StatusRetrievingTrustRootCerts)
	p.setStage(provisioning.StageRetrieveTrustRootCerts)
}

func (p *Provisioner) handleTrustRootCerts(session int, certs map[provisioning.TrustCertType][]*x509.Certificate) {
	if !p.current(session, "trust root certs") || !p.expect(provisioning.StageRetrieveTrustRootCerts, "trust root certs") {
		return
	}
	if len(certs) == 0 {
		p.fail(provisioning.FailureRetrieveTrustRootCertificates)
		return
	}
	if len(certs[provisioning.TrustCertAAA]) == 0 {
		p.fail(provisioning.FailureNoAAATrustRootCertificate)
		return
	}
	if p.storing {
		p.logger.Debug().Int("sessionId", session).Msg("configuration already being stored")
		return
	}
	p.config.SetCACertificates(certs)

	// The repository write happens off the handler goroutine.
	p.storing = true
	uid, cfg := p.uid, p.config
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		err := p.configs.AddOrUpdate(ctx, uid, cfg)
		cancel()
		p.handler.Post(func() { p.handleConfigStored(session, err) })
	}()
}

func (p *Provisioner) handleConfigStored(session int, err error) {
	if !p.current(session, "configuration stored") || !p.expect(provisioning.StageRetrieveTrustRootCerts, "configuration stored") {
		return
	}
	p.storing = false
	if err != nil {
		p.logger.Error().Err(err).Str("fqdn", p.config.FQDN).Msg("failed to add passpoint configuration")
		p.fail(provisioning.FailureAddPasspointConfiguration)
		return
	}
	p.complete()
}

func (p *Provisioner) report(status provisioning.Status) {
	p.logger.Debug().Int("sessionId", p.session).Stringer("status", status).Msg("provisioning status")
	if p.callback != nil {
		p.callback.OnStatus(status)
	}
}

func (p *Provisioner) fail(failure provisioning.Failure) {
	p.logger.Warn().
		Int("sessionId", p.session).
		Stringer("stage", p.stage).
		Stringer("failure", failure).
		Msg("provisioning failed")
	cb := p.callback
	p.reset()
	p.mu.Lock()
	p.snapshot.Failed++
	p.snapshot.LastFailure = failure.String()
	p.mu.Unlock()
	if cb != nil {
		cb.OnFailure(failure)
	}
}

func (p *Provisioner) complete() {
	p.logger.Info().Int("sessionId", p.session).Str("fqdn", p.config.FQDN).Msg("provisioning complete")
	cb := p.callback
	p.setStage(provisioning.StageComplete)
	p.reset()
	p.mu.Lock()
	p.snapshot.Completed++
	p.snapshot.LastFailure = ""
	p.mu.Unlock()
	if cb != nil {
		cb.OnComplete()
	}
}

// reset tears down every resource of the session and returns to INIT.
func (p *Provisioner) reset() {
	p.stopRedirect()
	p.server.Cleanup()
	p.network.Disconnect()
	p.config = nil
	p.callback = nil
	p.serverURL = nil
	p.osuNetwork = ""
	p.sppSessionID = ""
	p.storing = false
	p.setStage(provisioning.StageInit)
}

func (p *Provisioner) setStage(stage provisioning.Stage) {
	p.stage = stage
	p.publish()
}

func (p *Provisioner) publish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.SessionID = p.session
	p.snapshot.Stage = p.stage
	p.snapshot.UID = p.uid
	p.snapshot.Provider = p.provider.FriendlyName
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/execution-hub/wifictl/internal/api/http"
	"github.com/execution-hub/wifictl/internal/application/controller"
	"github.com/execution-hub/wifictl/internal/application/provisioning"
	appsettings "github.com/execution-hub/wifictl/internal/application/settings"
	"github.com/execution-hub/wifictl/internal/application/wifilock"
	"github.com/execution-hub/wifictl/internal/config"
	"github.com/execution-hub/wifictl/internal/domain/lock"
	domainprov "github.com/execution-hub/wifictl/internal/domain/provisioning"
	"github.com/execution-hub/wifictl/internal/domain/settings"
	"github.com/execution-hub/wifictl/internal/domain/wifi"
	"github.com/execution-hub/wifictl/internal/infrastructure/activity"
	"github.com/execution-hub/wifictl/internal/infrastructure/ims"
	"github.com/execution-hub/wifictl/internal/infrastructure/iwd"
	"github.com/execution-hub/wifictl/internal/infrastructure/lease"
	"github.com/execution-hub/wifictl/internal/infrastructure/linkwatch"
	"github.com/execution-hub/wifictl/internal/infrastructure/looper"
	"github.com/execution-hub/wifictl/internal/infrastructure/nl80211"
	"github.com/execution-hub/wifictl/internal/infrastructure/osu"
	"github.com/execution-hub/wifictl/internal/infrastructure/permission"
	"github.com/execution-hub/wifictl/internal/infrastructure/postgres"
	"github.com/execution-hub/wifictl/internal/infrastructure/redirect"
	"github.com/execution-hub/wifictl/internal/infrastructure/sse"
	"github.com/execution-hub/wifictl/internal/migrations"
)

// station is what the controller and provisioner need from the supplicant.
type station interface {
	wifi.StationControl
	wifi.SoftApControl
	domainprov.OsuNetwork
}

// controllerSink lets adapters built before the controller post to it.
type controllerSink struct {
	ctrl *controller.Service
}

func (s *controllerSink) Send(msg wifi.Message) {
	if s.ctrl != nil {
		s.ctrl.Send(msg)
	}
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, migrations.FS); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	settingsRepo := postgres.NewSettingsRepository(pool)
	usageRepo := postgres.NewUsageRepository(pool)
	transitionRepo := postgres.NewTransitionRepository(pool)
	passpointRepo := postgres.NewPasspointRepository(pool)

	// infrastructure
	sseHub := sse.NewHub(logger)
	defer sseHub.Stop()
	loop := looper.New(logger)
	sink := &controllerSink{}

	settingsSvc := appsettings.NewService(settingsRepo, map[settings.Key]string{
		settings.KeyWifiIdleMs:          strconv.FormatInt(cfg.IdleTimeout.Milliseconds(), 10),
		settings.KeyWifiReEnableDelayMs: strconv.FormatInt(cfg.ReEnableDelay.Milliseconds(), 10),
	}, logger)
	if err := settingsSvc.Load(ctx); err != nil {
		log.Fatalf("settings error: %v", err)
	}

	var (
		radio      lock.RadioControl
		sta        station
		imsMonitor wifi.ImsMonitor = ims.Disabled{}
		runners    []func(context.Context) error
	)
	if cfg.EnableRadioAdapters {
		nl, err := nl80211.Dial(cfg.Interface, logger)
		if err != nil {
			log.Fatalf("nl80211 error: %v", err)
		}
		defer nl.Close()
		radio = nl

		client, err := iwd.Dial(cfg.Interface, sink, logger)
		if err != nil {
			log.Fatalf("iwd error: %v", err)
		}
		defer client.Close()
		sta = client
		runners = append(runners, client.Run)

		watcher, err := linkwatch.Dial(cfg.Interface, client.Powered, sink, logger)
		if err != nil {
			log.Fatalf("linkwatch error: %v", err)
		}
		runners = append(runners, watcher.Run)

		if cfg.OfonoModem != "" {
			monitor, err := ims.Dial(cfg.OfonoModem, cfg.ImsWifiOffDefer, logger)
			if err != nil {
				log.Fatalf("ofono error: %v", err)
			}
			defer monitor.Close()
			imsMonitor = monitor
			runners = append(runners, monitor.Run)
		}
	} else {
		logger.Warn().Msg("radio adapters disabled, using simulator")
		radio = nl80211.NewStatic(logger)
		sta = iwd.NewSimulator(sink, logger)
	}

	// services
	leases := lease.NewManager(cfg.LockLeaseTTL, logger)
	tracker := activity.NewTracker(lock.ImportanceForeground, logger)
	checker := permission.NewChecker(cfg.PrivilegedTokenHash, logger)

	lockSvc := wifilock.NewService(wifilock.Deps{
		Radio:      radio,
		Battery:    usageRepo,
		Liveness:   leases,
		Activity:   tracker,
		Permission: checker,
	}, logger)
	defer lockSvc.Close()

	ctrl, err := controller.NewService(controller.Config{
		StaApConcurrency: cfg.StaApConcurrency,
		DisableInECBM:    cfg.DisableInECBM,
		SleepPolicy:      cfg.SleepPolicy,
		WifiOffDeferMax:  cfg.WifiOffDeferMax,
	}, controller.Deps{
		Handler:  loop,
		Station:  sta,
		SoftAp:   sta,
		Settings: settingsSvc,
		Locks:    lockSvc,
		Ims:      imsMonitor,
	}, logger)
	if err != nil {
		log.Fatalf("controller error: %v", err)
	}
	sink.ctrl = ctrl
	journal := controller.NewJournal(transitionRepo, logger)

	if client, ok := sta.(*iwd.Client); ok {
		client.OnNetworkConnected(ctrl.SetNetworkConnected)
	}

	redirectListener, err := redirect.Listen(cfg.RedirectListenerAddr, cfg.RedirectTimeout, logger)
	if err != nil {
		log.Fatalf("redirect listener error: %v", err)
	}
	defer redirectListener.Close()

	provisioner := provisioning.NewProvisioner(provisioning.Deps{
		Handler:  loop,
		Network:  sta,
		Server:   osu.NewUnavailableServer(logger),
		Redirect: redirectListener,
		Login:    osu.NewExecLauncher(cfg.OsuLoginCommand, logger),
		Parser:   osu.PPSMOParser{},
		Configs:  passpointRepo,
		Device:   cfg.Device,
	}, logger)

	// API server
	apiServer := httpapi.NewServer(httpapi.Deps{
		Locks:       lockSvc,
		Leases:      leases,
		Controller:  ctrl,
		Settings:    settingsSvc,
		Importance:  tracker,
		Provisioner: provisioner,
		Transitions: journal,
		Usage:       usageRepo,
		Hub:         sseHub,
		Privilege:   checker,
	}, logger)

	lockSvc.SetListener(apiServer.LocksListener(ctrl))
	lockSvc.OnOpModeChanged(apiServer.PublishOpMode)
	ctrl.OnTransition(journal.Record)
	ctrl.OnTransition(apiServer.PublishTransition)
	settingsSvc.OnChange(func(key settings.Key) {
		switch key {
		case settings.KeyWifiOn:
			ctrl.WifiToggled()
		case settings.KeyAirplaneModeOn:
			settingsSvc.ApplyAirplaneMode()
			ctrl.AirplaneToggled()
		case settings.KeyScanAlwaysEnabled:
			ctrl.ScanAlwaysModeChanged()
		}
		apiServer.PublishSettingChanged(key)
	})

	// No write timeout: /v1/events streams.
	httpServer := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     apiServer.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// background loops
	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("looper stopped")
		}
	}()
	go journal.Run(ctx)
	go settingsSvc.Run(ctx)
	go leases.Run(ctx)
	for _, run := range runners {
		run := run
		go func() {
			if err := run(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("adapter stopped")
			}
		}()
	}

	ctrl.Start()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Str("redirectUrl", redirectListener.URL()).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	cancel()
}

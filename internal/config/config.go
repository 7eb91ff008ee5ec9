package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL string
	ServerAddr  string

	Interface        string
	StaApConcurrency bool
	DisableInECBM    bool
	IdleTimeout      time.Duration
	ReEnableDelay    time.Duration
	WifiOffDeferMax  time.Duration
	SleepPolicy      string

	PrivilegedTokenHash string
	LockLeaseTTL        time.Duration

	RedirectListenerAddr string
	RedirectTimeout      time.Duration
	OsuLoginCommand      string
	Device               provisioning.DeviceInfo

	EnableRadioAdapters bool
	OfonoModem          string
	ImsWifiOffDefer     time.Duration
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "wifictl")
		pass := getenv("POSTGRES_PASSWORD", "wifictl_pass")
		db := getenv("POSTGRES_DB", "wifictl")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}

	cfg := &Config{
		DatabaseURL: dsn,
		ServerAddr:  getenv("SERVER_ADDR", "0.0.0.0:8080"),

		Interface:        getenv("WIFI_INTERFACE", "wlan0"),
		StaApConcurrency: parseBool(getenv("WIFI_STA_AP_CONCURRENCY", "false"), false),
		DisableInECBM:    parseBool(getenv("WIFI_DISABLE_IN_ECBM", "false"), false),
		IdleTimeout:      parseMillis(getenv("WIFI_IDLE_MS", ""), 15*time.Minute),
		ReEnableDelay:    parseMillis(getenv("WIFI_REENABLE_DELAY_MS", ""), 500*time.Millisecond),
		WifiOffDeferMax:  parseDuration(getenv("WIFI_OFF_DEFER_MAX", "0s"), 0),
		SleepPolicy:      getenv("WIFI_SLEEP_POLICY_EXPR", "never"),

		PrivilegedTokenHash: os.Getenv("PRIVILEGED_TOKEN_HASH"),
		LockLeaseTTL:        parseDuration(getenv("LOCK_LEASE_TTL", "30s"), 30*time.Second),

		RedirectListenerAddr: getenv("REDIRECT_LISTENER_ADDR", "127.0.0.1:0"),
		RedirectTimeout:      parseDuration(getenv("REDIRECT_TIMEOUT", "120s"), 120*time.Second),
		OsuLoginCommand:      os.Getenv("OSU_LOGIN_COMMAND"),
		Device: provisioning.DeviceInfo{
			DeviceID:     getenv("DEVICE_ID", "wifictl-0"),
			Manufacturer: getenv("DEVICE_MANUFACTURER", "unknown"),
			Model:        getenv("DEVICE_MODEL", "unknown"),
			Language:     getenv("DEVICE_LANGUAGE", "en"),
			HwVersion:    getenv("DEVICE_HW_VERSION", "1.0"),
			SwVersion:    getenv("DEVICE_SW_VERSION", "1.0"),
			FwVersion:    getenv("DEVICE_FW_VERSION", "1.0"),
			MACAddress:   os.Getenv("DEVICE_MAC_ADDRESS"),
			IMSI:         os.Getenv("DEVICE_IMSI"),
		},

		EnableRadioAdapters: parseBool(getenv("ENABLE_RADIO_ADAPTERS", "false"), false),
		OfonoModem:          os.Getenv("OFONO_MODEM"),
		ImsWifiOffDefer:     parseDuration(getenv("IMS_WIFI_OFF_DEFER", "3s"), 3*time.Second),
	}
	if cfg.WifiOffDeferMax < 0 {
		return nil, fmt.Errorf("WIFI_OFF_DEFER_MAX must not be negative")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseBool(val string, def bool) bool {
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

func parseMillis(val string, def time.Duration) time.Duration {
	ms := parseInt(val, -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type recorded struct {
	method string
	path   string
	query  string
	uid    string
	auth   string
	body   map[string]interface{}
}

// fakeServer answers every request with status and payload and records it.
func fakeServer(t *testing.T, status int, payload interface{}) *recorded {
	t.Helper()
	rec := &recorded{}
	prev := httpTransport
	httpTransport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.uid = r.Header.Get("X-Caller-Uid")
		rec.auth = r.Header.Get("Authorization")
		rec.body = nil
		if r.Body != nil {
			b, _ := io.ReadAll(r.Body)
			if len(b) > 0 {
				require.NoError(t, json.Unmarshal(b, &rec.body))
			}
		}
		w := httptest.NewRecorder()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
		return w.Result(), nil
	})
	t.Cleanup(func() { httpTransport = prev })
	return rec
}

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--server", "http://wifictl.test/", "--uid", "42", "--token", ""}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"status", "transitions", "locks", "force", "toggle", "airplane", "scan-always", "softap", "device", "provision"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestStatus(t *testing.T) {
	rec := fakeServer(t, http.StatusOK, map[string]interface{}{"strongestMode": "FULL_HIGH_PERF"})

	out, err := executeCommand(rootCmd, "status")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/v1/wifi/status", rec.path)
	assert.Equal(t, "42", rec.uid)
	assert.Empty(t, rec.auth)
	assert.Contains(t, out, `"strongestMode": "FULL_HIGH_PERF"`)
}

func TestTransitionsLimit(t *testing.T) {
	rec := fakeServer(t, http.StatusOK, []interface{}{})

	_, err := executeCommand(rootCmd, "transitions", "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, "/v1/wifi/transitions", rec.path)
	assert.Equal(t, "limit=5", rec.query)
}

func TestLocks(t *testing.T) {
	t.Run("acquire sends mode and tag", func(t *testing.T) {
		rec := fakeServer(t, http.StatusCreated, map[string]interface{}{"handle": "h-1"})

		out, err := executeCommand(rootCmd, "locks", "acquire", "--mode", "full_low_latency", "--tag", "voip")
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "/v1/locks", rec.path)
		assert.Equal(t, "FULL_LOW_LATENCY", rec.body["mode"])
		assert.Equal(t, "voip", rec.body["tag"])
		assert.Contains(t, out, "h-1")
	})

	t.Run("acquire rejects unknown mode locally", func(t *testing.T) {
		rec := fakeServer(t, http.StatusCreated, nil)

		_, err := executeCommand(rootCmd, "locks", "acquire", "--mode", "turbo")
		require.Error(t, err)
		assert.Empty(t, rec.method)
	})

	t.Run("release and heartbeat address the handle", func(t *testing.T) {
		rec := fakeServer(t, http.StatusOK, map[string]bool{"released": true})

		_, err := executeCommand(rootCmd, "locks", "release", "h-1")
		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, rec.method)
		assert.Equal(t, "/v1/locks/h-1", rec.path)

		_, err = executeCommand(rootCmd, "locks", "heartbeat", "h-1")
		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "/v1/locks/h-1/heartbeat", rec.path)
	})

	t.Run("server error is returned", func(t *testing.T) {
		fakeServer(t, http.StatusNotFound, map[string]string{"error": "NOT_FOUND", "message": "lock not held"})

		_, err := executeCommand(rootCmd, "locks", "release", "gone")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
		assert.Equal(t, "NOT_FOUND", apiErr.Code)
	})
}

func TestOnOffCommands(t *testing.T) {
	tests := []struct {
		args  []string
		path  string
		field string
		want  bool
	}{
		{[]string{"toggle", "on"}, "/v1/wifi/toggle", "enable", true},
		{[]string{"airplane", "off"}, "/v1/wifi/airplane", "on", false},
		{[]string{"scan-always", "true"}, "/v1/wifi/scan-always", "enabled", true},
		{[]string{"force", "hi-perf", "on"}, "/v1/modes/hi-perf", "enable", true},
		{[]string{"force", "low-latency", "off"}, "/v1/modes/low-latency", "enable", false},
		{[]string{"device", "screen", "off"}, "/v1/device/screen", "on", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := fakeServer(t, http.StatusOK, map[string]bool{"ok": true})

			_, err := executeCommand(rootCmd, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, http.MethodPost, rec.method)
			assert.Equal(t, tt.path, rec.path)
			assert.Equal(t, tt.want, rec.body[tt.field])
		})
	}

	t.Run("rejects bad value", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "toggle", "maybe")
		assert.Error(t, err)
	})
}

func TestPrivilegedTokenSent(t *testing.T) {
	rec := fakeServer(t, http.StatusAccepted, map[string]bool{"accepted": true})

	_, err := executeCommand(rootCmd, "--token", "root-token", "device", "idle")
	require.NoError(t, err)
	assert.Equal(t, "/v1/device/idle", rec.path)
	assert.Equal(t, "Bearer root-token", rec.auth)
}

func TestBattery(t *testing.T) {
	rec := fakeServer(t, http.StatusAccepted, map[string]bool{"accepted": true})

	_, err := executeCommand(rootCmd, "device", "battery", "2")
	require.NoError(t, err)
	assert.Equal(t, float64(2), rec.body["plugged"])

	_, err = executeCommand(rootCmd, "device", "battery", "9")
	assert.Error(t, err)
}

func TestSoftAp(t *testing.T) {
	t.Run("start requires ssid", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "softap", "on", "--ssid", "")
		assert.Error(t, err)
	})

	t.Run("start sends config", func(t *testing.T) {
		rec := fakeServer(t, http.StatusAccepted, map[string]bool{"accepted": true})

		_, err := executeCommand(rootCmd, "softap", "on", "--ssid", "hotspot", "--channel", "6")
		require.NoError(t, err)
		assert.Equal(t, true, rec.body["enable"])
		cfg, ok := rec.body["config"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "hotspot", cfg["ssid"])
		assert.Equal(t, float64(6), cfg["channel"])
	})

	t.Run("stop sends no config", func(t *testing.T) {
		rec := fakeServer(t, http.StatusAccepted, map[string]bool{"accepted": true})

		_, err := executeCommand(rootCmd, "softap", "off")
		require.NoError(t, err)
		assert.Equal(t, false, rec.body["enable"])
		assert.NotContains(t, rec.body, "config")
	})
}

func TestProvision(t *testing.T) {
	t.Run("sends provider", func(t *testing.T) {
		rec := fakeServer(t, http.StatusAccepted, map[string]string{"requestId": "r-1"})

		out, err := executeCommand(rootCmd, "provision",
			"--friendly-name", "Example", "--osu-ssid", "osu", "--server-uri", "https://osu.example.com")
		require.NoError(t, err)
		assert.Equal(t, "/v1/provisioning", rec.path)
		assert.Equal(t, "Example", rec.body["friendlyName"])
		assert.Equal(t, "osu", rec.body["osuSsid"])
		assert.Contains(t, out, "r-1")
	})

	t.Run("validates before sending", func(t *testing.T) {
		rec := fakeServer(t, http.StatusAccepted, nil)

		_, err := executeCommand(rootCmd, "provision", "--friendly-name", "", "--osu-ssid", "")
		require.Error(t, err)
		assert.Empty(t, rec.method)
	})

	t.Run("status", func(t *testing.T) {
		rec := fakeServer(t, http.StatusOK, map[string]string{"stage": "IDLE"})

		_, err := executeCommand(rootCmd, "provision", "status")
		require.NoError(t, err)
		assert.Equal(t, "/v1/provisioning/status", rec.path)
	})
}

func TestParseOnOff(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "OFF": false, "1": true, "false": false, "enable": true} {
		got, err := parseOnOff(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseOnOff("sometimes")
	assert.Error(t, err)
}

package osu

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

const fingerprint = "1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f1f"

const testPPSMO = `<MgmtTree xmlns="syncml:dmddf1.2">
  <VerDTD>1.2</VerDTD>
  <Node>
    <NodeName>PerProviderSubscription</NodeName>
    <RTProperties><Type><DDFName>urn:wfa:mo:hotspot2dot0-perprovidersubscription:1.0</DDFName></Type></RTProperties>
    <Node>
      <NodeName>i001</NodeName>
      <Node>
        <NodeName>HomeSP</NodeName>
        <Node><NodeName>FriendlyName</NodeName><Value>Example Operator</Value></Node>
        <Node><NodeName>FQDN</NodeName><Value>hotspot.example.com</Value></Node>
      </Node>
      <Node>
        <NodeName>Credential</NodeName>
        <Node><NodeName>Realm</NodeName><Value>example.com</Value></Node>
        <Node>
          <NodeName>UsernamePassword</NodeName>
          <Node><NodeName>Username</NodeName><Value>alice</Value></Node>
          <Node>
            <NodeName>EAPMethod</NodeName>
            <Node><NodeName>EAPType</NodeName><Value>21</Value></Node>
          </Node>
        </Node>
      </Node>
      <Node>
        <NodeName>AAAServerTrustRoot</NodeName>
        <Node>
          <NodeName>a001</NodeName>
          <Node><NodeName>CertURL</NodeName><Value>https://aaa.example.com/root.pem</Value></Node>
          <Node><NodeName>CertSHA256Fingerprint</NodeName><Value>` + fingerprint + `</Value></Node>
        </Node>
      </Node>
      <Node>
        <NodeName>SubscriptionUpdate</NodeName>
        <Node>
          <NodeName>TrustRoot</NodeName>
          <Node><NodeName>CertURL</NodeName><Value>https://sub.example.com/root.pem</Value></Node>
          <Node><NodeName>CertSHA256Fingerprint</NodeName><Value>` + fingerprint + `</Value></Node>
        </Node>
      </Node>
    </Node>
  </Node>
</MgmtTree>`

func TestPPSMOParser(t *testing.T) {
	t.Run("release 2 subscription", func(t *testing.T) {
		cfg, err := PPSMOParser{}.ParsePPSMO(testPPSMO)
		require.NoError(t, err)
		assert.Equal(t, "hotspot.example.com", cfg.FQDN)
		assert.Equal(t, "Example Operator", cfg.FriendlyName)
		require.NotNil(t, cfg.Credential)
		assert.Equal(t, provisioning.Credential{Realm: "example.com", Username: "alice", EAPMethod: 21}, *cfg.Credential)
		require.Len(t, cfg.AAATrustRoots, 1)
		assert.Equal(t, "https://aaa.example.com/root.pem", cfg.AAATrustRoots[0].URL)
		assert.Len(t, cfg.AAATrustRoots[0].Fingerprint, 32)
		require.NotNil(t, cfg.RemediationTrustRoot)
		assert.Nil(t, cfg.PolicyTrustRoot)
		assert.NoError(t, cfg.ValidateR2())

		roots := cfg.TrustRootURLs()
		assert.Len(t, roots[provisioning.TrustCertAAA], 1)
		assert.Len(t, roots[provisioning.TrustCertRemediation], 1)
	})

	t.Run("without subscription update fails r2 validation", func(t *testing.T) {
		text := strings.Replace(testPPSMO, "SubscriptionUpdate", "Unused", 1)
		cfg, err := PPSMOParser{}.ParsePPSMO(text)
		require.NoError(t, err)
		assert.ErrorIs(t, cfg.ValidateR2(), provisioning.ErrInvalidPPSMO)
	})

	tests := []struct {
		name string
		text string
	}{
		{"not xml", "{}"},
		{"wrong root node", strings.Replace(testPPSMO, "PerProviderSubscription", "DevInfo", 1)},
		{"bad fingerprint", strings.Replace(testPPSMO, fingerprint, "zz", 1)},
		{"bad eap type", strings.Replace(testPPSMO, "<Value>21</Value>", "<Value>TTLS</Value>", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PPSMOParser{}.ParsePPSMO(tt.text)
			assert.ErrorIs(t, err, provisioning.ErrInvalidPPSMO)
		})
	}
}

func TestExecLauncher(t *testing.T) {
	req := provisioning.LoginRequest{
		URL:          "https://osu.example.com/signup",
		RedirectURL:  "http://127.0.0.1:8181/",
		Network:      "/net/connman/iwd/0/3/4f5355_open",
		FriendlyName: "Example",
	}

	t.Run("substitutes placeholders", func(t *testing.T) {
		l := NewExecLauncher("browser --app={url} --done {redirect}", zerolog.Nop())
		var gotName string
		var gotArgs []string
		l.start = func(_ context.Context, name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		}
		require.NoError(t, l.Launch(context.Background(), req))
		assert.Equal(t, "browser", gotName)
		assert.Equal(t, []string{"--app=https://osu.example.com/signup", "--done", "http://127.0.0.1:8181/"}, gotArgs)
	})

	t.Run("no command configured", func(t *testing.T) {
		l := NewExecLauncher("  ", zerolog.Nop())
		assert.ErrorIs(t, l.Launch(context.Background(), req), provisioning.ErrNoLoginActivity)
	})

	t.Run("start failure", func(t *testing.T) {
		l := NewExecLauncher("missing-browser {url}", zerolog.Nop())
		l.start = func(context.Context, string, ...string) error { return errors.New("executable file not found") }
		assert.ErrorIs(t, l.Launch(context.Background(), req), provisioning.ErrNoLoginActivity)
	})
}

func TestUnavailableServer(t *testing.T) {
	s := NewUnavailableServer(zerolog.Nop())
	s.SetCallbacks(provisioning.ServerCallbacks{})
	assert.False(t, s.CanValidateServer())
	u, _ := url.Parse("https://osu.example.com")
	assert.False(t, s.Connect(u, "net", 1))
	assert.False(t, s.ExchangeSoapMessage(provisioning.Request{}))
	assert.False(t, s.RetrieveTrustRootCerts(nil))
	assert.False(t, s.ValidateProvider("en", "Example"))
	s.Cleanup()
}

package osu

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/execution-hub/wifictl/internal/domain/provisioning"
)

// ExecLauncher opens the provider's sign-up page by running a command such
// as "xdg-open {url}". The placeholders {url}, {redirect}, {network} and
// {provider} are substituted per argument.
type ExecLauncher struct {
	argv   []string
	start  func(ctx context.Context, name string, args ...string) error
	logger zerolog.Logger
}

func NewExecLauncher(command string, logger zerolog.Logger) *ExecLauncher {
	return &ExecLauncher{
		argv:   strings.Fields(command),
		start:  startDetached,
		logger: logger.With().Str("component", "osu-launcher").Logger(),
	}
}

func (l *ExecLauncher) Launch(ctx context.Context, req provisioning.LoginRequest) error {
	if len(l.argv) == 0 {
		return provisioning.ErrNoLoginActivity
	}
	r := strings.NewReplacer(
		"{url}", req.URL,
		"{redirect}", req.RedirectURL,
		"{network}", req.Network,
		"{provider}", req.FriendlyName,
	)
	args := make([]string, 0, len(l.argv)-1)
	for _, a := range l.argv[1:] {
		args = append(args, r.Replace(a))
	}
	if err := l.start(ctx, l.argv[0], args...); err != nil {
		return fmt.Errorf("%w: %v", provisioning.ErrNoLoginActivity, err)
	}
	l.logger.Info().Str("command", l.argv[0]).Str("provider", req.FriendlyName).Msg("osu login launched")
	return nil
}

// startDetached starts the command and reaps it in the background; the
// login page outlives the request that opened it.
func startDetached(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

var _ provisioning.LoginLauncher = (*ExecLauncher)(nil)

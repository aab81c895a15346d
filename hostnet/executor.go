package hostnet

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/yllada/vpn-client/common"
)

// Executor abstracts command execution for iptables, ip and shell helpers.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSExec runs commands on the host, each bounded by Timeout.
type OSExec struct {
	Timeout time.Duration
}

// NewExecutor returns an OSExec using the default command timeout.
func NewExecutor() OSExec {
	return OSExec{Timeout: common.CommandTimeout}
}

func (e OSExec) Run(ctx context.Context, name string, args ...string) error {
	out, err := e.Output(ctx, name, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (e OSExec) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = common.CommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

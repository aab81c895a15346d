package vpn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yllada/vpn-client/audit"
	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/history"
	"github.com/yllada/vpn-client/hostnet"
	"github.com/yllada/vpn-client/tunnel"
)

// ErrAlreadyRan is returned when Run is called on a controller twice.
var ErrAlreadyRan = errors.New("controller already ran")

// Journal records lifecycle milestones.
type Journal interface {
	Record(sessionID, event, message string) error
}

// HistoryRecorder keeps one row per run.
type HistoryRecorder interface {
	Start(ctx context.Context, s history.Session) error
	Finish(ctx context.Context, s history.Session) error
}

// Deps are the collaborators a Controller drives. Tunnel is required;
// nil managers fall back to no-ops and a nil Prober to a TCPProber.
type Deps struct {
	Tunnel       tunnel.Tunnel
	KillSwitch   hostnet.KillSwitch
	RouteManager hostnet.RouteManager
	DNSManager   hostnet.DNSManager
	Prober       Prober
	Journal      Journal
	History      HistoryRecorder
	Opener       Opener
	Logger       common.Logger
}

// NetworkSnapshot is the host state captured before a full-tunnel change.
// Nil fields mean there is nothing to restore.
type NetworkSnapshot struct {
	Route *hostnet.RouteSnapshot
	DNS   *hostnet.DNSSnapshot
}

type options struct {
	handshakeTimeout time.Duration
	pollInterval     time.Duration
	monitorInterval  time.Duration
	probeTarget      string
	probeTimeout     time.Duration
	sessionID        string
	onStatus         func(line string)
}

// Option customizes a Controller.
type Option func(*options)

// WithHandshakeTimeout sets how long to wait for the first handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) { o.handshakeTimeout = d }
}

// WithPollInterval sets how often telemetry is read while waiting for the
// handshake.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

// WithMonitorInterval sets how often a connected session reports telemetry.
func WithMonitorInterval(d time.Duration) Option {
	return func(o *options) { o.monitorInterval = d }
}

// WithProbe overrides the connectivity probe target and timeout used when
// Deps.Prober is nil.
func WithProbe(target string, timeout time.Duration) Option {
	return func(o *options) {
		o.probeTarget = target
		o.probeTimeout = timeout
	}
}

// WithSessionID fixes the session ID instead of generating one.
func WithSessionID(id string) Option {
	return func(o *options) { o.sessionID = id }
}

// WithStatusHandler receives user-facing progress lines.
func WithStatusHandler(fn func(line string)) Option {
	return func(o *options) { o.onStatus = fn }
}

type undoStep struct {
	name   string
	revert func(ctx context.Context)
}

// Controller runs one session: it brings the tunnel up, verifies it,
// monitors it until cancelled and rolls back every change on the way out.
type Controller struct {
	cfg  SessionConfig
	deps Deps
	opts options
	log  common.Logger

	mu       sync.Mutex
	state    SessionState
	err      error
	handle   tunnel.Handle
	snapshot NetworkSnapshot
	undo     []undoStep
	started  time.Time
	txBytes  int64
	rxBytes  int64
}

// NewController creates a controller for cfg.
func NewController(cfg SessionConfig, deps Deps, opts ...Option) *Controller {
	o := options{
		handshakeTimeout: common.HandshakeTimeout,
		pollInterval:     common.HandshakePollInterval,
		monitorInterval:  common.MonitorInterval,
		probeTarget:      common.ProbeTarget,
		probeTimeout:     common.ProbeTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sessionID == "" {
		o.sessionID = uuid.NewString()
	}

	if deps.KillSwitch == nil {
		deps.KillSwitch = hostnet.NoopKillSwitch{}
	}
	if deps.RouteManager == nil {
		deps.RouteManager = hostnet.NoopRoutes{}
	}
	if deps.DNSManager == nil {
		deps.DNSManager = hostnet.NoopDNS{}
	}
	if deps.Prober == nil {
		prober := TCPProber{Target: o.probeTarget, Timeout: o.probeTimeout}
		if cfg.Mode == ModeFull {
			prober.Device = cfg.InterfaceName
		}
		deps.Prober = prober
	}

	return &Controller{
		cfg:  cfg,
		deps: deps,
		opts: o,
		log:  common.LoggerOrDefault(deps.Logger),
	}
}

// SessionID returns the ID used in journal lines and history rows.
func (c *Controller) SessionID() string {
	return c.opts.sessionID
}

// State returns the current state.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the reason a failed session failed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot returns the host state captured before full-tunnel changes.
func (c *Controller) Snapshot() NetworkSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

func (c *Controller) setState(s SessionState) {
	c.mu.Lock()
	old := c.state
	c.state = s
	c.mu.Unlock()
	c.log.Debug("Session %s: %s -> %s", c.opts.sessionID, old, s)
}

// Run connects, then monitors until ctx is cancelled, then rolls back.
// It returns nil after a clean cancellation of a connected session.
// Any failure after the first host change rolls everything back before
// returning.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyRan
	}
	c.mu.Unlock()

	if ctx.Err() != nil {
		return c.finish(fmt.Errorf("before connecting: %w", common.ErrCancelled))
	}

	c.mu.Lock()
	c.started = time.Now()
	c.mu.Unlock()

	c.journal(audit.EventStart, fmt.Sprintf("connecting %s to %s (%s tunnel)", c.cfg.InterfaceName, c.cfg.Endpoint, c.cfg.Mode))
	c.recordStart(ctx)

	if err := c.connect(ctx); err != nil {
		c.setState(StateTearingDown)
		c.Rollback(context.WithoutCancel(ctx))
		return c.finish(err)
	}

	c.monitor(ctx)

	c.setState(StateTearingDown)
	c.Rollback(context.WithoutCancel(ctx))
	return c.finish(nil)
}

func (c *Controller) connect(ctx context.Context) error {
	name := c.cfg.InterfaceName
	c.status(fmt.Sprintf("Creating interface %s and connecting...", name))

	// Removal is registered only for an interface this session created. As
	// the first push it is reverted last.
	h, err := c.deps.Tunnel.Create(ctx, name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.handle = h
	c.mu.Unlock()
	c.push("interface "+name, func(ctx context.Context) {
		if err := c.deps.Tunnel.SetDown(ctx, h); err != nil {
			c.log.Warn("Failed to set %s down: %v", name, err)
		}
		if err := c.deps.Tunnel.Remove(ctx, h); err != nil {
			c.log.Warn("Failed to remove %s: %v", name, err)
		}
	})

	if err := c.deps.Tunnel.Configure(ctx, h, BuildInterfaceConfig(c.cfg)); err != nil {
		return err
	}
	c.setState(StateInterfaceUp)

	if c.cfg.KillSwitch {
		plan := hostnet.KillSwitchPlan{Interface: name, Endpoint: c.cfg.Endpoint}
		if err := c.deps.KillSwitch.Apply(ctx, plan); err != nil {
			return fmt.Errorf("kill switch: %w", err)
		}
		c.push("kill switch", func(ctx context.Context) {
			c.deps.KillSwitch.Revert(ctx, plan)
		})
	}

	if c.cfg.Mode == ModeFull {
		if err := c.applyFullTunnel(ctx); err != nil {
			return err
		}
	}

	c.setState(StateAwaitingHandshake)
	err = WaitForHandshake(ctx, c.deps.Tunnel, h, c.opts.handshakeTimeout, c.opts.pollInterval)
	if err != nil {
		if errors.Is(err, common.ErrHandshakeTimeout) {
			c.journal(audit.EventTimeout, fmt.Sprintf("Handshake timeout for %s", name))
		}
		return err
	}

	c.setState(StateVerifying)
	if err := c.deps.Prober.Probe(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("probe interrupted: %w", common.ErrCancelled)
		}
		c.journal(audit.EventProbe, "Connectivity probe failed after handshake, tearing down")
		return err
	}

	c.setState(StateConnected)
	c.journal(audit.EventConnected, fmt.Sprintf("Client connected on %s", name))
	c.status("Client is running. Press Ctrl+C to stop")
	c.openWelcome(ctx)
	return nil
}

// applyFullTunnel snapshots, then moves the default route and DNS onto the
// tunnel. Each change is only made when its snapshot succeeded.
func (c *Controller) applyFullTunnel(ctx context.Context) error {
	name := c.cfg.InterfaceName
	snap := NetworkSnapshot{
		Route: c.deps.RouteManager.Snapshot(ctx),
		DNS:   c.deps.DNSManager.Snapshot(ctx),
	}
	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	if snap.Route != nil {
		plan := hostnet.RoutePlan{
			Endpoint:  c.cfg.Endpoint.Addr(),
			Interface: name,
			Via:       *snap.Route,
		}
		if err := c.deps.RouteManager.Apply(ctx, plan); err != nil {
			return fmt.Errorf("full-tunnel routes: %w", err)
		}
		c.push("routes", func(ctx context.Context) {
			c.deps.RouteManager.Revert(ctx, snap.Route, plan)
		})
	} else {
		c.log.Warn("No route snapshot, leaving routing table unchanged")
	}

	if snap.DNS != nil {
		if err := c.deps.DNSManager.Apply(ctx, name, common.FullTunnelDNS); err != nil {
			c.log.Warn("Full-tunnel DNS not applied: %v", err)
		} else {
			c.push("dns", func(ctx context.Context) {
				c.deps.DNSManager.Revert(ctx, name, snap.DNS)
			})
		}
	} else {
		c.log.Warn("No DNS snapshot, leaving resolver unchanged")
	}
	return nil
}

func (c *Controller) currentHandle() tunnel.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

func (c *Controller) push(name string, revert func(ctx context.Context)) {
	c.mu.Lock()
	c.undo = append(c.undo, undoStep{name: name, revert: revert})
	c.mu.Unlock()
}

// Rollback reverts every applied change in reverse order. Revert failures
// are logged and do not stop the remaining steps. Calling it again, or on a
// controller that applied nothing, does nothing.
func (c *Controller) Rollback(ctx context.Context) {
	c.mu.Lock()
	steps := c.undo
	c.undo = nil
	c.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		c.log.Debug("Reverting %s", steps[i].name)
		steps[i].revert(ctx)
	}
	if len(steps) > 0 {
		c.log.Info("Restored network state (%d changes reverted)", len(steps))
	}
}

// monitor reports telemetry every monitor interval until ctx is done.
func (c *Controller) monitor(ctx context.Context) {
	ticker := time.NewTicker(c.opts.monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Stopping session %s", c.opts.sessionID)
			return
		case <-ticker.C:
			c.report(ctx)
		}
	}
}

func (c *Controller) report(ctx context.Context) {
	peers, err := c.deps.Tunnel.Telemetry(ctx, c.currentHandle())
	if err != nil {
		c.log.Warn("Failed to read telemetry: %v", err)
		return
	}
	for _, p := range peers {
		if !p.HandshakeEstablished {
			c.status("Still waiting for handshake...")
			continue
		}
		c.mu.Lock()
		c.txBytes, c.rxBytes = p.TxBytes, p.RxBytes
		c.mu.Unlock()
		line := fmt.Sprintf("CONNECTED | %d KB sent | %d KB recv", p.TxBytes/1024, p.RxBytes/1024)
		c.status(line)
		c.journal(audit.EventTelemetry, line)
	}
}

func (c *Controller) openWelcome(ctx context.Context) {
	if c.deps.Opener == nil || c.cfg.WelcomeURL == "" {
		return
	}
	if err := c.deps.Opener.Open(ctx, c.cfg.WelcomeURL); err != nil {
		c.log.Debug("Could not open %s: %v", c.cfg.WelcomeURL, err)
	}
}

// finish records the terminal state. A nil err or a cancellation ends in
// StateStopped, anything else in StateFailed.
func (c *Controller) finish(err error) error {
	outcome := history.OutcomeStopped
	state := StateStopped
	switch {
	case err == nil:
	case errors.Is(err, common.ErrCancelled):
	case errors.Is(err, common.ErrHandshakeTimeout):
		outcome, state = history.OutcomeHandshakeTimeout, StateFailed
	case errors.Is(err, common.ErrConnectivityFailed):
		outcome, state = history.OutcomeProbeFailed, StateFailed
	default:
		outcome, state = history.OutcomeFailed, StateFailed
	}

	c.mu.Lock()
	c.err = err
	tx, rx, started := c.txBytes, c.rxBytes, c.started
	c.mu.Unlock()
	c.setState(state)

	if err != nil {
		c.log.Error("Session %s ended: %v", c.opts.sessionID, err)
		c.journal(audit.EventFailed, err.Error())
	} else {
		c.journal(audit.EventStopped, fmt.Sprintf("Session on %s stopped", c.cfg.InterfaceName))
	}

	if c.deps.History != nil && !started.IsZero() {
		rec := history.Session{
			ID:      c.opts.sessionID,
			EndedAt: time.Now(),
			Outcome: outcome,
			TxBytes: tx,
			RxBytes: rx,
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if herr := c.deps.History.Finish(context.Background(), rec); herr != nil {
			c.log.Debug("Failed to record session end: %v", herr)
		}
	}
	return err
}

func (c *Controller) recordStart(ctx context.Context) {
	if c.deps.History == nil {
		return
	}
	err := c.deps.History.Start(ctx, history.Session{
		ID:        c.opts.sessionID,
		Interface: c.cfg.InterfaceName,
		Endpoint:  c.cfg.Endpoint.String(),
		Mode:      c.cfg.Mode.String(),
		StartedAt: c.started,
	})
	if err != nil {
		c.log.Debug("Failed to record session start: %v", err)
	}
}

func (c *Controller) journal(event, message string) {
	if c.deps.Journal == nil {
		return
	}
	if err := c.deps.Journal.Record(c.opts.sessionID, event, message); err != nil {
		c.log.Debug("Failed to write journal: %v", err)
	}
}

// status reports a progress line to the handler, or logs it when none is set.
func (c *Controller) status(line string) {
	if c.opts.onStatus == nil {
		c.log.Info("%s", line)
		return
	}
	c.log.Debug("%s", line)
	c.opts.onStatus(line)
}

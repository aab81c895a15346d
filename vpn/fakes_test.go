package vpn

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/yllada/vpn-client/history"
	"github.com/yllada/vpn-client/hostnet"
	"github.com/yllada/vpn-client/tunnel"
)

// recorder keeps the order of side effects across all fakes.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) count(prefix string) int {
	n := 0
	for _, c := range r.list() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) index(call string) int {
	for i, c := range r.list() {
		if c == call {
			return i
		}
	}
	return -1
}

type fakeTunnel struct {
	rec *recorder

	// handshakeAfter is the number of telemetry reads that report no
	// handshake first. Negative means never.
	handshakeAfter int
	telemetryErr   error
	createErr      error
	configureErr   error
	openErr        error
	txBytes        int64
	rxBytes        int64

	mu    sync.Mutex
	reads int
	cfg   tunnel.InterfaceConfig
}

func (f *fakeTunnel) Create(_ context.Context, name string) (tunnel.Handle, error) {
	f.rec.add("tunnel.create " + name)
	if f.createErr != nil {
		return tunnel.Handle{}, f.createErr
	}
	return tunnel.Handle{Name: name, Index: 42}, nil
}

func (f *fakeTunnel) Open(_ context.Context, name string) (tunnel.Handle, error) {
	f.rec.add("tunnel.open " + name)
	if f.openErr != nil {
		return tunnel.Handle{}, f.openErr
	}
	return tunnel.Handle{Name: name, Index: 42}, nil
}

func (f *fakeTunnel) Configure(_ context.Context, h tunnel.Handle, cfg tunnel.InterfaceConfig) error {
	f.rec.add("tunnel.configure " + h.Name)
	f.mu.Lock()
	f.cfg = cfg
	f.mu.Unlock()
	return f.configureErr
}

func (f *fakeTunnel) Telemetry(_ context.Context, h tunnel.Handle) ([]tunnel.PeerTelemetry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.telemetryErr != nil {
		return nil, f.telemetryErr
	}
	established := f.handshakeAfter >= 0 && f.reads > f.handshakeAfter
	return []tunnel.PeerTelemetry{{
		HandshakeEstablished: established,
		TxBytes:              f.txBytes,
		RxBytes:              f.rxBytes,
	}}, nil
}

func (f *fakeTunnel) SetDown(_ context.Context, h tunnel.Handle) error {
	f.rec.add("tunnel.down " + h.Name)
	return nil
}

func (f *fakeTunnel) Remove(_ context.Context, h tunnel.Handle) error {
	f.rec.add("tunnel.remove " + h.Name)
	return nil
}

type fakeKillSwitch struct {
	rec      *recorder
	applyErr error
	applied  hostnet.KillSwitchPlan
}

func (k *fakeKillSwitch) Apply(_ context.Context, plan hostnet.KillSwitchPlan) error {
	k.rec.add("killswitch.apply " + plan.Interface)
	k.applied = plan
	return k.applyErr
}

func (k *fakeKillSwitch) Revert(_ context.Context, plan hostnet.KillSwitchPlan) {
	k.rec.add("killswitch.revert " + plan.Interface)
}

type fakeRoutes struct {
	rec      *recorder
	snap     *hostnet.RouteSnapshot
	applyErr error
	applied  hostnet.RoutePlan
}

func (r *fakeRoutes) Snapshot(context.Context) *hostnet.RouteSnapshot {
	r.rec.add("routes.snapshot")
	return r.snap
}

func (r *fakeRoutes) Apply(_ context.Context, plan hostnet.RoutePlan) error {
	r.rec.add("routes.apply")
	r.applied = plan
	return r.applyErr
}

func (r *fakeRoutes) Revert(_ context.Context, snap *hostnet.RouteSnapshot, _ hostnet.RoutePlan) {
	if snap == nil {
		r.rec.add("routes.revert nil")
		return
	}
	r.rec.add("routes.revert " + snap.Gateway)
}

type fakeDNS struct {
	rec      *recorder
	snap     *hostnet.DNSSnapshot
	applyErr error
	servers  []string
}

func (d *fakeDNS) Snapshot(context.Context) *hostnet.DNSSnapshot {
	d.rec.add("dns.snapshot")
	return d.snap
}

func (d *fakeDNS) Apply(_ context.Context, ifname string, servers []string) error {
	d.rec.add("dns.apply " + ifname)
	d.servers = servers
	return d.applyErr
}

func (d *fakeDNS) Revert(_ context.Context, ifname string, _ *hostnet.DNSSnapshot) {
	d.rec.add("dns.revert " + ifname)
}

type fakeProber struct {
	rec *recorder
	err error
	// cancel, when set, is called before returning err.
	cancel context.CancelFunc
}

func (p *fakeProber) Probe(context.Context) error {
	p.rec.add("probe")
	if p.cancel != nil {
		p.cancel()
	}
	return p.err
}

type fakeOpener struct {
	rec *recorder
}

func (o *fakeOpener) Open(_ context.Context, url string) error {
	o.rec.add("open " + url)
	return errors.New("no browser")
}

type journalEntry struct {
	session, event, message string
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []journalEntry
}

func (j *fakeJournal) Record(session, event, message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, journalEntry{session, event, message})
	return nil
}

func (j *fakeJournal) events() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e.event)
	}
	return out
}

type fakeHistory struct {
	mu       sync.Mutex
	started  []history.Session
	finished []history.Session
}

func (h *fakeHistory) Start(_ context.Context, s history.Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, s)
	return nil
}

func (h *fakeHistory) Finish(_ context.Context, s history.Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished = append(h.finished, s)
	return nil
}

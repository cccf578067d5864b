// Package node runs a constructed hardware tree: sensor setup, the read
// and dispatch loop, the periodic status sweep and the fatal halt.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"sensornode-go/bus"
	"sensornode-go/model"
	"sensornode-go/platform"
)

// State of the loop.
type State uint32

const (
	Unconfigured State = iota
	SettingUp
	Running
	FatalHalt
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case SettingUp:
		return "setting_up"
	case Running:
		return "running"
	case FatalHalt:
		return "fatal_halt"
	}
	return "unknown"
}

var (
	ErrUnconfigured    = errors.New("node: no hardware installed")
	ErrNotUnconfigured = errors.New("node: already set up")
	ErrSetupFailed     = errors.New("node: sensor setup failed")
	ErrFatal           = errors.New("node: fatal status reported")
	ErrNotRunning      = errors.New("node: not running")
	ErrHalted          = errors.New("node: halted, reset required")
)

// DefaultStatusInterval is the time between status sweeps.
const DefaultStatusInterval = 60 * time.Second

type Option func(*Node)

func WithLogger(l *slog.Logger) Option {
	return func(n *Node) {
		if l != nil {
			n.log = l
		}
	}
}

// WithBus publishes readings and statuses on b as well.
func WithBus(b *bus.Bus) Option { return func(n *Node) { n.bus = b } }

func WithStatusInterval(d time.Duration) Option { return func(n *Node) { n.statusEvery = d } }

// WithTickInterval spaces ticks d apart; zero runs them back to back.
func WithTickInterval(d time.Duration) Option { return func(n *Node) { n.tickEvery = d } }

// WithClock replaces the monotonic clock used for the sweep schedule.
func WithClock(now func() time.Time) Option { return func(n *Node) { n.now = now } }

func WithMetrics(m *Metrics) Option { return func(n *Node) { n.metrics = m } }

type Node struct {
	hw   *model.Hardware
	plat platform.Platform
	log  *slog.Logger
	bus  *bus.Bus

	statusEvery time.Duration
	tickEvery   time.Duration
	now         func() time.Time
	metrics     *Metrics

	state     atomic.Uint32
	lastSweep time.Time
	swept     bool
}

// New prepares a loop over hw. hw may be nil, leaving the node
// Unconfigured until Install.
func New(hw *model.Hardware, plat platform.Platform, opts ...Option) *Node {
	n := &Node{
		hw:          hw,
		plat:        plat,
		log:         slog.Default(),
		statusEvery: DefaultStatusInterval,
		now:         time.Now,
	}
	for _, o := range opts {
		o(n)
	}
	if n.metrics == nil {
		n.metrics = &Metrics{}
	}
	n.metrics.fill()
	return n
}

// Install replaces the hardware tree of an Unconfigured node.
func (n *Node) Install(hw *model.Hardware) bool {
	if n.State() != Unconfigured {
		return false
	}
	n.hw = hw
	return true
}

func (n *Node) State() State              { return State(n.state.Load()) }
func (n *Node) setState(s State)          { n.state.Store(uint32(s)) }
func (n *Node) Hardware() *model.Hardware { return n.hw }

func (n *Node) halted() {
	n.setState(FatalHalt)
	n.metrics.FatalHalts.Inc()
}

// Setup sets up every sensor of every group, feeding the watchdog after
// each, then the communicators. The first sensor failure halts the node.
// Only an Unconfigured node can be set up; FatalHalt is left by reset alone.
func (n *Node) Setup() error {
	switch n.State() {
	case Unconfigured:
	case FatalHalt:
		return ErrHalted
	default:
		return ErrNotUnconfigured
	}
	if n.hw == nil {
		return ErrUnconfigured
	}
	n.setState(SettingUp)
	for _, g := range n.hw.Groups() {
		for _, s := range g.Sensors() {
			name := s.QualifiedName(model.NameSep)
			n.log.Info("setting up", "object", name, "class", s.ClassName())
			if !s.Setup() {
				n.log.Error("sensor setup failed", "object", name, "status", s.Status().Text())
				n.halted()
				return fmt.Errorf("%w: %s", ErrSetupFailed, name)
			}
			n.plat.FeedWatchdog()
		}
	}
	n.setupCommunicators()
	n.setState(Running)
	return nil
}

func (n *Node) setupCommunicators() {
	status := n.hw.Status()
	for _, c := range n.hw.Communicators() {
		if err := c.Setup(); err != nil {
			n.log.Warn("communicator setup failed", "object", c.QualifiedName(model.NameSep), "err", err)
			c.SetStatus(err.Error(), false)
		}
		c.NewStatus(status, n.hw)
	}
}

// Tick runs one loop pass: read and dispatch, sweep when due, run the
// communicator hooks, feed the watchdog. ErrFatal means the sweep found an
// ERROR status and the node is now halted.
func (n *Node) Tick() error {
	switch n.State() {
	case Running:
	case FatalHalt:
		return ErrFatal
	default:
		return ErrNotRunning
	}
	n.metrics.Ticks.Inc()
	comms := n.hw.Communicators()
	for _, s := range n.hw.Sensors() {
		for _, b := range s.Read() {
			n.metrics.Readings.Inc()
			for _, c := range comms {
				c.NewReading(b)
			}
			n.publishBundle(b)
		}
	}

	fatal := false
	if now := n.now(); !n.swept || now.Sub(n.lastSweep) > n.statusEvery {
		n.lastSweep, n.swept = now, true
		n.log.Debug("updating status of all")
		fatal = n.SweepStatus()
	}

	for _, c := range comms {
		c.Loop()
	}
	n.plat.FeedWatchdog()

	if fatal {
		n.halted()
		return ErrFatal
	}
	return nil
}

// SweepStatus pushes every status in the tree to the communicators and the
// bus and reports whether any was ERROR.
func (n *Node) SweepStatus() bool {
	v := model.NewStatusVisitor(n.publishStatus, n.log)
	n.hw.Accept(v)
	n.metrics.Sweeps.Inc()
	return v.HasFatalError()
}

func (n *Node) publishStatus(status model.Measurement, src model.Object) {
	n.hw.PublishStatus(status, src)
	if n.bus == nil || status.MetaData() == nil {
		return
	}
	field := model.FieldStatus
	if status.State() == model.Error {
		field |= model.FieldFatal
	}
	if ev, ok := status.MetaData().EventBuilder().CustomField(field).Build(status); ok {
		n.bus.Publish(ev)
	}
}

func (n *Node) publishBundle(b model.MeasurementBundle) {
	src := b.Src()
	if n.bus == nil || src == nil {
		return
	}
	ev, ok := bus.NewEvent(src.SourceType()).
		Type(bus.EventMeasurement).
		Data(bus.DataMeasurementBundle).
		CustomField(model.FieldReading).
		Name(src.QualifiedName(model.NameSep)).
		Build(b)
	if ok {
		n.bus.Publish(ev)
	}
}

// Run sets up and ticks until ctx ends. Any fatal condition switches to
// Halt, which only returns when ctx ends.
func (n *Node) Run(ctx context.Context) error {
	if err := n.Setup(); err != nil {
		if errors.Is(err, ErrSetupFailed) || errors.Is(err, ErrHalted) {
			n.Halt(ctx)
		}
		return err
	}
	var tick *time.Ticker
	if n.tickEvery > 0 {
		tick = time.NewTicker(n.tickEvery)
		defer tick.Stop()
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.Tick(); err != nil {
			n.Halt(ctx)
			return err
		}
		if tick == nil {
			runtime.Gosched()
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// Halt signals the error indicator in a tight loop without feeding the
// watchdog. It returns only when ctx ends.
func (n *Node) Halt(ctx context.Context) {
	if n.State() != FatalHalt {
		n.halted()
	}
	n.log.Error("halted", "state", n.State().String())
	for ctx.Err() == nil {
		n.plat.ErrorIndicator()
	}
}

package node

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensornode-go/bus"
	"sensornode-go/devices"
	staticdev "sensornode-go/devices/static"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakePlatform struct {
	feeds   int
	blinks  int
	onBlink func(n int)
}

func (p *fakePlatform) FeedWatchdog()                { p.feeds++ }
func (p *fakePlatform) DisableWatchdog()             {}
func (p *fakePlatform) EpochMillis() uint64          { return 1 }
func (p *fakePlatform) ResetWithReason(string, bool) {}
func (p *fakePlatform) ErrorIndicator() {
	p.blinks++
	if p.onBlink != nil {
		p.onBlink(p.blinks)
	}
}

type recorder struct {
	model.CommunicatorBase
	setupErr error
	setups   int
	loops    int
	readings []model.MeasurementBundle
	statuses []string
}

func newRecorder(name string) *recorder {
	r := &recorder{}
	r.InitCommunicator(r, name, "recorder")
	return r
}

func (r *recorder) Setup() error {
	r.setups++
	return r.setupErr
}
func (r *recorder) Loop()                                { r.loops++ }
func (r *recorder) NewReading(b model.MeasurementBundle) { r.readings = append(r.readings, b) }
func (r *recorder) Config() model.Configuration          { return nil }
func (r *recorder) NewStatus(st model.Measurement, src model.Object) {
	r.statuses = append(r.statuses, src.QualifiedName(".")+"="+st.Text())
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func static(frag jsondoc.Object) *staticdev.Sensor {
	return staticdev.New(staticdev.ConfigFrom(frag), devices.Env{})
}

type fixture struct {
	hw   *model.Hardware
	plat *fakePlatform
	comm *recorder
	clk  *clock
	reg  *prometheus.Registry
	bus  *bus.Bus
	logs bytes.Buffer
	node *Node
}

func newFixture(t *testing.T, sensors ...model.Sensor) *fixture {
	t.Helper()
	f := &fixture{
		hw:   model.NewHardware(model.HardwareConfig{Name: "n"}),
		plat: &fakePlatform{},
		comm: newRecorder("rec"),
		clk:  &clock{t: time.Unix(1000, 0)},
		reg:  prometheus.NewRegistry(),
		bus:  bus.New(),
	}
	for _, s := range sensors {
		f.hw.AddSensor(s)
	}
	f.hw.AddCommunicator(f.comm)
	log := slog.New(slog.NewTextHandler(&f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f.node = New(f.hw, f.plat,
		WithLogger(log),
		WithBus(f.bus),
		WithClock(f.clk.now),
		WithStatusInterval(time.Minute),
		WithMetrics(NewMetrics(f.reg)),
	)
	return f
}

// -----------------------------------------------------------------------------
// Setup
// -----------------------------------------------------------------------------

func TestSetup(t *testing.T) {
	f := newFixture(t, static(jsondoc.Object{"name": "a"}), static(jsondoc.Object{"name": "b"}))
	assert.Equal(t, Unconfigured, f.node.State())

	require.NoError(t, f.node.Setup())
	assert.Equal(t, Running, f.node.State())
	assert.Equal(t, 2, f.plat.feeds)
	assert.Equal(t, 1, f.comm.setups)
	assert.Equal(t, []string{"n=OK"}, f.comm.statuses)
}

func TestSetupFailureHalts(t *testing.T) {
	f := newFixture(t,
		static(jsondoc.Object{"name": "a"}),
		static(jsondoc.Object{"name": "b", "fail_setup": true}),
		static(jsondoc.Object{"name": "c"}),
	)
	err := f.node.Setup()
	require.ErrorIs(t, err, ErrSetupFailed)
	assert.Contains(t, err.Error(), "n.default.b")
	assert.Equal(t, FatalHalt, f.node.State())
	assert.Equal(t, 1, f.plat.feeds)
	assert.Zero(t, f.comm.setups)
	assert.Contains(t, f.logs.String(), "sensor setup failed")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.node.metrics.FatalHalts.(prometheus.Counter)))

	assert.ErrorIs(t, f.node.Tick(), ErrFatal)
}

func TestCommunicatorSetupFailureIsReported(t *testing.T) {
	f := newFixture(t)
	f.comm.setupErr = errors.New("no link")
	require.NoError(t, f.node.Setup())
	assert.Equal(t, "no link", f.comm.Status().Text())
	assert.Equal(t, model.Valid, f.comm.Status().State())
}

func TestUnconfigured(t *testing.T) {
	n := New(nil, &fakePlatform{})
	assert.ErrorIs(t, n.Setup(), ErrUnconfigured)
	assert.ErrorIs(t, n.Tick(), ErrNotRunning)
	assert.Equal(t, Unconfigured, n.State())

	require.True(t, n.Install(model.NewHardware(model.HardwareConfig{Name: "late"})))
	require.NoError(t, n.Setup())
	assert.False(t, n.Install(nil))
	assert.Equal(t, "late", n.Hardware().Name())
}

// -----------------------------------------------------------------------------
// Tick
// -----------------------------------------------------------------------------

func TestTickDispatchAndSweepSchedule(t *testing.T) {
	a := static(jsondoc.Object{"name": "a", "value": 1})
	b := static(jsondoc.Object{"name": "b", "value": 2})
	f := newFixture(t, a, b)

	var bundles []bus.Event
	sub, ok := bus.Empty().
		SetSource(bus.SourceSensor).
		SetEvent(bus.EventMeasurement).
		SetDataType(bus.DataMeasurementBundle).
		SetCustomFieldMask(model.FieldReading).
		Build(func(ev bus.Event) { bundles = append(bundles, ev) })
	require.True(t, ok)
	f.bus.Subscribe(sub)
	runtime.GC()

	require.NoError(t, f.node.Setup())
	f.comm.statuses = nil

	// First tick always sweeps.
	require.NoError(t, f.node.Tick())
	require.Len(t, f.comm.readings, 2)
	assert.Same(t, a, f.comm.readings[0].Src())
	assert.Equal(t, "2.0", f.comm.readings[1].At(0).Text())
	assert.Equal(t, []string{"n=OK", "n.rec=OK", "n.default.a=OK", "n.default.b=OK"}, f.comm.statuses)
	assert.Equal(t, 1, f.comm.loops)
	require.Len(t, bundles, 2)
	assert.Equal(t, bus.HashName("n.default.b"), bundles[1].NameHash)

	// Within the interval: no sweep.
	f.clk.advance(30 * time.Second)
	require.NoError(t, f.node.Tick())
	assert.Len(t, f.comm.statuses, 4)

	// Exactly the interval is not enough.
	f.clk.advance(30 * time.Second)
	require.NoError(t, f.node.Tick())
	assert.Len(t, f.comm.statuses, 4)

	f.clk.advance(time.Millisecond)
	require.NoError(t, f.node.Tick())
	assert.Len(t, f.comm.statuses, 8)

	assert.Equal(t, 4.0, testutil.ToFloat64(f.node.metrics.Ticks.(prometheus.Counter)))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.node.metrics.Sweeps.(prometheus.Counter)))
	assert.Equal(t, 8.0, testutil.ToFloat64(f.node.metrics.Readings.(prometheus.Counter)))
	assert.Equal(t, 2+4, f.plat.feeds)
	assert.Equal(t, 4, a.Reads())
	runtime.KeepAlive(sub)
}

func TestTickFatalStatus(t *testing.T) {
	bad := static(jsondoc.Object{"name": "bad", "status": "sensor broken", "fatal": true})
	f := newFixture(t, static(jsondoc.Object{"name": "good"}), bad)

	var fatalEvents []bus.Event
	sub, ok := bad.StatusMetaData().SubscriberBuilder().
		SetExactCustomField(model.FieldStatus | model.FieldFatal).
		Build(func(ev bus.Event) { fatalEvents = append(fatalEvents, ev) })
	require.True(t, ok)
	f.bus.Subscribe(sub)
	runtime.GC()

	require.NoError(t, f.node.Setup())
	err := f.node.Tick()
	require.ErrorIs(t, err, ErrFatal)
	assert.Equal(t, FatalHalt, f.node.State())

	// The whole tree was still swept and the hooks ran.
	assert.Contains(t, f.comm.statuses, "n.default.bad=sensor broken")
	assert.Contains(t, f.comm.statuses, "n.rec=OK")
	assert.Equal(t, 1, f.comm.loops)
	assert.Contains(t, f.logs.String(), "object reported error")

	require.Len(t, fatalEvents, 1)
	st, ok := fatalEvents[0].Payload.(model.Measurement)
	require.True(t, ok)
	assert.Equal(t, model.Error, st.State())
	assert.Equal(t, bus.EventStatusUpdate, fatalEvents[0].Type)

	assert.ErrorIs(t, f.node.Tick(), ErrFatal)
	assert.Equal(t, 1, f.comm.loops)
	runtime.KeepAlive(sub)
}

func TestSetupCannotLeaveFatalHalt(t *testing.T) {
	f := newFixture(t, static(jsondoc.Object{"name": "bad", "status": "sensor broken", "fatal": true}))
	require.NoError(t, f.node.Setup())
	require.ErrorIs(t, f.node.Tick(), ErrFatal)

	assert.ErrorIs(t, f.node.Setup(), ErrHalted)
	assert.Equal(t, FatalHalt, f.node.State())
	assert.ErrorIs(t, f.node.Tick(), ErrFatal)
	assert.Equal(t, 1, f.comm.setups)
}

func TestSetupOnlyOnce(t *testing.T) {
	f := newFixture(t, static(jsondoc.Object{"name": "a"}))
	require.NoError(t, f.node.Setup())
	assert.ErrorIs(t, f.node.Setup(), ErrNotUnconfigured)
	assert.Equal(t, Running, f.node.State())
	assert.Equal(t, 1, f.comm.setups)
}

func TestSweepWarningIsNotFatal(t *testing.T) {
	f := newFixture(t, static(jsondoc.Object{"name": "w", "status": "battery low"}))
	require.NoError(t, f.node.Setup())
	require.NoError(t, f.node.Tick())
	assert.Equal(t, Running, f.node.State())
	assert.Contains(t, f.logs.String(), "object reported warning")
}

// -----------------------------------------------------------------------------
// Run / Halt
// -----------------------------------------------------------------------------

func TestRunUntilCancelled(t *testing.T) {
	f := newFixture(t, static(jsondoc.Object{"name": "a"}))
	f.node.tickEvery = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.node.Run(ctx) }()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(f.node.metrics.Ticks.(prometheus.Counter)) >= 3
	}, 2*time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, Running, f.node.State())
}

func TestRunHaltsOnFatal(t *testing.T) {
	f := newFixture(t, static(jsondoc.Object{"name": "bad", "status": "gone", "fatal": true}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.plat.onBlink = func(n int) {
		if n == 5 {
			cancel()
		}
	}
	err := f.node.Run(ctx)
	assert.ErrorIs(t, err, ErrFatal)
	assert.Equal(t, 5, f.plat.blinks)
	assert.Equal(t, FatalHalt, f.node.State())
}

func TestRunHaltsOnSetupFailure(t *testing.T) {
	f := newFixture(t, static(jsondoc.Object{"fail_setup": true}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.plat.onBlink = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	assert.ErrorIs(t, f.node.Run(ctx), ErrSetupFailed)
	assert.Equal(t, 2, f.plat.blinks)
	assert.Zero(t, f.plat.feeds)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "fatal_halt", FatalHalt.String())
	assert.Equal(t, "unknown", State(9).String())
}

package factory

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensornode-go/errcode"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
)

// -----------------------------------------------------------------------------
// Test classes
// -----------------------------------------------------------------------------

type probeConfig struct {
	Name  string
	Value int64
}

func (c probeConfig) FillData(o jsondoc.Object) {
	o.Set("name", c.Name)
	o.Set("value", c.Value)
}
func (c probeConfig) ExpectedCapacity() int { return 2 }

type probe struct {
	model.SensorBase
	cfg    probeConfig
	closed *int
}

func (p *probe) Setup() bool                          { return true }
func (p *probe) Read() []model.MeasurementBundle      { return nil }
func (p *probe) Config() model.Configuration          { return p.cfg }
func (p *probe) Reconfigure(model.Configuration) bool { return false }
func (p *probe) Close() error {
	*p.closed++
	return nil
}

type sink struct {
	model.CommunicatorBase
}

func (s *sink) NewReading(model.MeasurementBundle)        {}
func (s *sink) NewStatus(model.Measurement, model.Object) {}
func (s *sink) Config() model.Configuration               { return probeConfig{Name: s.Name()} }

type harness struct {
	f      *Factory
	closed int
	logs   bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{}
	h.f = New(WithLogger(slog.New(slog.NewTextHandler(&h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	h.f.RegisterDefaults()
	h.f.Register("probe", func(frag jsondoc.Object) Result {
		p := &probe{cfg: probeConfig{Name: frag.String("name", "probe"), Value: frag.Int("value", 0)}, closed: &h.closed}
		p.InitSensor(p, p.cfg.Name, "probe")
		return h.f.SensorFactory(p, frag)
	})
	h.f.Register("sink", func(frag jsondoc.Object) Result {
		s := &sink{}
		s.InitCommunicator(s, frag.String("name", "sink"), "sink")
		return h.f.CommunicatorFactory(s, frag)
	})
	return h
}

const fullDoc = `{
  "hw": {
    "name": "node1",
    "$sensors": [{"probe": {"name": "p1", "value": 3}}],
    "$groups": [
      {"group": {"name": "shed", "$sensors": [{"probe": {"name": "p2"}}, {"probe": {"name": "p3"}}]}},
      {"group": {"name": "default", "$sensors": [{"probe": {"name": "p4"}}]}}
    ],
    "$comms": [{"sink": {"name": "out"}}],
    "comment": "unknown keys are ignored"
  }
}`

// -----------------------------------------------------------------------------
// Construct
// -----------------------------------------------------------------------------

func TestConstruct_Tree(t *testing.T) {
	h := newHarness(t)
	r := h.f.Construct([]byte(fullDoc))
	require.True(t, r.OK(), "code %s", r.Code())
	require.NoError(t, r.Err())

	hw, ok := As[*model.Hardware](r)
	require.True(t, ok)
	assert.Same(t, hw, h.f.Root())
	assert.Equal(t, "node1", hw.Name())
	assert.Equal(t, "hw", hw.ClassName())

	// "default" merged into the existing default group.
	require.Len(t, hw.Groups(), 2)
	def := hw.DefaultGroup()
	require.Len(t, def.Sensors(), 2)
	assert.Equal(t, "p1", def.Sensors()[0].Name())
	assert.Equal(t, "p4", def.Sensors()[1].Name())
	assert.Equal(t, "node1.default.p4", def.Sensors()[1].QualifiedName(model.NameSep))

	shed := hw.Groups()[1]
	assert.Equal(t, "shed", shed.Name())
	assert.Equal(t, "group", shed.ClassName())
	require.Len(t, shed.Sensors(), 2)
	assert.Equal(t, "node1.shed.p3", shed.Sensors()[1].QualifiedName(model.NameSep))

	require.Len(t, hw.Communicators(), 1)
	assert.Equal(t, "sink", hw.Communicators()[0].ClassName())
	assert.Equal(t, 0, h.closed)
}

func TestConstruct_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want errcode.Code
	}{
		{"malformed", `{"hw": {`, errcode.FailureToParseJSON},
		{"not an object", `[{"hw": {}}]`, errcode.NoHWKeyFound},
		{"no hw", `{"hardware": {}}`, errcode.NoHWKeyFound},
		{"hw not object", `{"hw": [1, 2]}`, errcode.InvalidHWKeyFound},
		{"unknown class", `{"hw": {"$sensors": [{"nope": {}}]}}`, errcode.MissingRegistryForEntry},
		{"two-key entry", `{"hw": {"$sensors": [{"probe": {}, "sink": {}}]}}`, errcode.InvalidEntry},
		{"empty entry", `{"hw": {"$sensors": [{}]}}`, errcode.InvalidEntry},
		{"entry not object", `{"hw": {"$sensors": ["probe"]}}`, errcode.InvalidEntry},
		{"reserved not array", `{"hw": {"$comms": {"sink": {}}}}`, errcode.InvalidEntry},
		{"args not object", `{"hw": {"$sensors": [{"probe": 3}]}}`, errcode.InvalidEntry},
		{"comm as sensor", `{"hw": {"$sensors": [{"sink": {}}]}}`, errcode.WrongKind},
		{"sensor as group", `{"hw": {"$groups": [{"probe": {}}]}}`, errcode.WrongKind},
		{"group with comms", `{"hw": {"$groups": [{"group": {"$comms": []}}]}}`, errcode.InvalidEntry},
		{"sensor with children", `{"hw": {"$sensors": [{"probe": {"$sensors": []}}]}}`, errcode.InvalidEntry},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t)
			r := h.f.Construct([]byte(c.doc))
			assert.False(t, r.OK())
			assert.Nil(t, r.Object())
			assert.Equal(t, c.want, r.Code())
			assert.ErrorIs(t, r.Err(), c.want)
			assert.Nil(t, h.f.Root())
		})
	}
}

func TestConstruct_MissingRegistryForHW(t *testing.T) {
	f := New()
	r := f.Construct([]byte(`{"hw": {}}`))
	assert.Equal(t, errcode.MissingRegistryForHW, r.Code())
}

func TestConstruct_AbortKeepsPreviousRoot(t *testing.T) {
	h := newHarness(t)
	first := h.f.Construct([]byte(`{"hw": {"name": "first"}}`))
	require.True(t, first.OK())

	r := h.f.Construct([]byte(`{"hw": {"name": "second", "$sensors": [
		{"probe": {"name": "ok"}},
		{"missing": {}}
	]}}`))
	assert.Equal(t, errcode.MissingRegistryForEntry, r.Code())
	assert.Nil(t, r.Object())
	assert.Equal(t, "first", h.f.Root().Name())
	// The sensor built before the failure was released.
	assert.Equal(t, 1, h.closed)
}

func TestConstruct_NestedAbortReleasesGroup(t *testing.T) {
	h := newHarness(t)
	r := h.f.Construct([]byte(`{"hw": {
		"$sensors": [{"probe": {"name": "a"}}],
		"$groups": [{"group": {"name": "g", "$sensors": [{"probe": {"name": "b"}}, {"sink": {}}]}}]
	}}`))
	assert.Equal(t, errcode.WrongKind, r.Code())
	// b is released by the group, a by the hardware.
	assert.Equal(t, 2, h.closed)
	assert.Nil(t, h.f.Root())
}

func TestCallFactory(t *testing.T) {
	h := newHarness(t)
	r := h.f.CallFactory(jsondoc.Object{"name": "x"}, "probe")
	p, ok := As[model.Sensor](r)
	require.True(t, ok)
	assert.Equal(t, "x", p.Name())
	assert.Equal(t, "probe", p.ClassName())

	_, ok = As[model.Communicator](r)
	assert.False(t, ok)

	r = h.f.CallFactory(nil, "nothing")
	assert.Equal(t, errcode.MissingRegistryForEntry, r.Code())
	assert.Contains(t, h.logs.String(), "no factory registered")
}

func TestRegisterOverwriteAndReset(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.f.Register("probe", func(jsondoc.Object) Result { return Fail(errcode.InvalidParams) }))
	r := h.f.CallFactory(nil, "probe")
	assert.Equal(t, errcode.InvalidParams, r.Code())

	require.True(t, h.f.Construct([]byte(`{"hw": {}}`)).OK())
	h.f.Reset()
	assert.Nil(t, h.f.Root())
	assert.Empty(t, h.f.Classes())
	assert.Equal(t, errcode.MissingRegistryForHW, h.f.Construct([]byte(`{"hw": {}}`)).Code())
}

func TestResultInvariants(t *testing.T) {
	assert.Equal(t, errcode.Error, Fail(errcode.None).Code())
	assert.Equal(t, errcode.WrongKind, Ok(nil).Code())
	assert.False(t, Result{}.OK())
	assert.Equal(t, errcode.Error, Result{}.Code())
}

// -----------------------------------------------------------------------------
// Round trip
// -----------------------------------------------------------------------------

type shape struct {
	groups  []string
	sensors [][]string
	comms   []string
}

func shapeOf(hw *model.Hardware) shape {
	var s shape
	for _, g := range hw.Groups() {
		s.groups = append(s.groups, g.ClassName()+":"+g.Name())
		var names []string
		for _, sn := range g.Sensors() {
			names = append(names, sn.ClassName()+":"+sn.Name())
		}
		s.sensors = append(s.sensors, names)
	}
	for _, c := range hw.Communicators() {
		s.comms = append(s.comms, c.ClassName()+":"+c.Name())
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	h := newHarness(t)
	r := h.f.Construct([]byte(fullDoc))
	require.True(t, r.OK())
	hw1 := h.f.Root()

	text, err := model.Serialize(hw1)
	require.NoError(t, err)

	r2 := h.f.Construct(text)
	require.True(t, r2.OK(), "reconstruct %s: %s", r2.Code(), text)
	hw2 := h.f.Root()
	assert.NotSame(t, hw1, hw2)
	assert.Equal(t, shapeOf(hw1), shapeOf(hw2))
	assert.Equal(t, int64(3), hw2.DefaultGroup().Sensors()[0].Config().(probeConfig).Value)

	text2, err := model.Serialize(hw2)
	require.NoError(t, err)
	assert.JSONEq(t, string(text), string(text2))
}

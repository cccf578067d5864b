package aht20dev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensornode-go/devices"
	"sensornode-go/errcode"
	"sensornode-go/model"
	"sensornode-go/platform"
	"sensornode-go/x/jsondoc"
)

type clock uint64

func (c clock) EpochMillis() uint64 { return uint64(c) }

func newEnv() (devices.Env, *platform.HostI2C, *platform.Climate) {
	c := platform.NewClimate(22.5, 45)
	b := &platform.HostI2C{}
	b.Attach(0x38, platform.SimAHT20(c))
	return devices.Env{Clock: clock(1000), Buses: platform.StaticBuses{"i2c0": b}}, b, c
}

func TestConfigDefaults(t *testing.T) {
	c := ConfigFrom(jsondoc.Object{})
	assert.Equal(t, Config{Name: "aht20", Bus: "i2c0", Addr: 0x38}, c)

	c = ConfigFrom(jsondoc.Object{"name": "air", "bus": "i2c1", "addr": jsondoc.Number(0x39)})
	assert.Equal(t, Config{Name: "air", Bus: "i2c1", Addr: 0x39}, c)

	// Out of range addresses fall back to the default.
	c = ConfigFrom(jsondoc.Object{"addr": jsondoc.Number(0x200)})
	assert.Equal(t, uint16(0x38), c.Addr)
}

func TestSetupAndRead(t *testing.T) {
	env, _, climate := newEnv()
	s := New(ConfigFrom(jsondoc.Object{"name": "air"}), env)
	require.True(t, s.Setup())
	assert.Equal(t, "OK", s.Status().Text())

	bundles := s.Read()
	require.Len(t, bundles, 1)
	b := bundles[0]
	assert.Equal(t, uint64(1000), b.Timestamp())
	assert.Same(t, s, b.Src())
	require.Equal(t, 2, b.Len())
	assert.Equal(t, "22.5", b.At(0).Text())
	assert.Equal(t, "45.0", b.At(1).Text())
	assert.Equal(t, "Temperature", b.At(0).MetaData().Name())

	climate.Set(-5.25, 60)
	b = s.Read()[0]
	assert.InDelta(t, -5.25, b.At(0).Float(), 0.01)
	assert.InDelta(t, 60, b.At(1).Float(), 0.01)
}

func TestSetupUnknownBus(t *testing.T) {
	env, _, _ := newEnv()
	s := New(Config{Name: "air", Bus: "i2c7", Addr: 0x38}, env)
	assert.False(t, s.Setup())
	st := s.Status()
	assert.Equal(t, model.Error, st.State())
	assert.Contains(t, st.Text(), string(errcode.UnknownBus))
}

func TestSetupNoDevice(t *testing.T) {
	env, _, _ := newEnv()
	s := New(Config{Name: "air", Bus: "i2c0", Addr: 0x40}, env)
	assert.False(t, s.Setup())
	assert.Contains(t, s.Status().Text(), string(errcode.SetupFailed))
}

func TestReadFailure(t *testing.T) {
	env, bus, _ := newEnv()
	s := New(ConfigFrom(jsondoc.Object{}), env)

	// Not set up.
	b := s.Read()[0]
	assert.Equal(t, model.Error, b.At(0).State())

	require.True(t, s.Setup())
	bus.Detach(0x38)
	b = s.Read()[0]
	assert.Equal(t, model.Error, b.At(0).State())
	assert.Equal(t, model.Error, b.At(1).State())
	// A read failure is reported but not fatal.
	assert.Equal(t, model.Valid, s.Status().State())
	assert.Equal(t, string(errcode.Error), s.Status().Text())
}

func TestReconfigure(t *testing.T) {
	env, _, _ := newEnv()
	s := New(ConfigFrom(jsondoc.Object{"name": "air"}), env)
	require.True(t, s.Setup())

	assert.False(t, s.Reconfigure(Config{Name: "other"}))
	assert.True(t, s.Reconfigure(Config{Bus: "i2c0", Addr: 0x38}))
	assert.Equal(t, Config{Name: "air", Bus: "i2c0", Addr: 0x38}, s.Config())
	// Needs a new Setup.
	assert.Equal(t, model.Error, s.Read()[0].At(0).State())
	require.True(t, s.Setup())
	assert.Equal(t, model.Valid, s.Read()[0].At(0).State())
}

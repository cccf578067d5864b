package staticdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensornode-go/devices"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
)

func TestConfigDefaults(t *testing.T) {
	c := ConfigFrom(jsondoc.Object{})
	assert.Equal(t, "static", c.Name)
	assert.Equal(t, "Value", c.Quantity)
	assert.Equal(t, model.TypeFloat, c.Type)
	assert.Equal(t, model.DefaultPrecision, c.Precision)
	assert.Equal(t, model.StatusOK, c.Status)

	assert.Equal(t, c, ConfigFrom(model.ConfigObject(c)))

	assert.Equal(t, 0, ConfigFrom(jsondoc.Object{"precision": jsondoc.Number(-3)}).Precision)
	assert.Equal(t, model.MaxPrecision, ConfigFrom(jsondoc.Object{"precision": jsondoc.Number(25)}).Precision)
}

func TestRead(t *testing.T) {
	cases := []struct {
		name string
		frag jsondoc.Object
		want string
	}{
		{"float", jsondoc.Object{"value": 3.14159, "precision": jsondoc.Number(2)}, "3.14"},
		{"int", jsondoc.Object{"type": "int", "value": 41.6}, "42"},
		{"string", jsondoc.Object{"type": "string", "text": "open"}, "open"},
		{"failure", jsondoc.Object{"fail_read": true, "text": "stuck"}, "stuck"},
		{"failure no text", jsondoc.Object{"fail_read": true}, "<ERROR>"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := New(ConfigFrom(c.frag), devices.Env{})
			require.True(t, s.Setup())
			b := s.Read()
			require.Len(t, b, 1)
			assert.Equal(t, c.want, b[0].At(0).Text())
		})
	}
}

func TestSetupStatus(t *testing.T) {
	s := New(ConfigFrom(jsondoc.Object{"status": "degraded"}), devices.Env{})
	require.True(t, s.Setup())
	assert.Equal(t, "degraded", s.Status().Text())
	assert.Equal(t, model.Valid, s.Status().State())

	s = New(ConfigFrom(jsondoc.Object{"status": "broken", "fatal": true}), devices.Env{})
	require.True(t, s.Setup())
	assert.Equal(t, model.Error, s.Status().State())

	s = New(ConfigFrom(jsondoc.Object{"fail_setup": true}), devices.Env{})
	assert.False(t, s.Setup())
	assert.Equal(t, model.Error, s.Status().State())
}

func TestReconfigure(t *testing.T) {
	s := New(ConfigFrom(jsondoc.Object{"name": "v", "value": 1}), devices.Env{})
	c := s.Config().(Config)
	c.Value = 7
	c.Name = "ignored"
	require.True(t, s.Reconfigure(c))
	assert.Equal(t, "v", s.Name())
	assert.Equal(t, "7.0", s.Read()[0].At(0).Text())
	assert.Equal(t, 1, s.Reads())

	c.Type = model.TypeString
	assert.False(t, s.Reconfigure(c))
}

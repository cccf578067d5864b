package model

import "sensornode-go/x/jsondoc"

// Configuration is the serializable configuration of one constructible class.
type Configuration interface {
	// FillData writes the configuration's fields into obj.
	FillData(obj jsondoc.Object)
	// ExpectedCapacity is the number of fields FillData writes.
	ExpectedCapacity() int
}

// ConfigObject serializes c into a fresh document object; nil yields an
// empty object.
func ConfigObject(c Configuration) jsondoc.Object {
	if c == nil {
		return jsondoc.Object{}
	}
	o := make(jsondoc.Object, c.ExpectedCapacity())
	c.FillData(o)
	return o
}

// ConfigJSON renders c as JSON text.
func ConfigJSON(c Configuration) ([]byte, error) { return ConfigObject(c).Marshal() }

const (
	// DefaultGroupName names the group every hardware root starts with.
	DefaultGroupName = "default"
	// DefaultHardwareName is used when a hardware fragment has no name.
	DefaultHardwareName = "node"
)

// HardwareConfig configures the root.
type HardwareConfig struct {
	Name string
}

func HardwareConfigFrom(obj jsondoc.Object) HardwareConfig {
	return HardwareConfig{Name: obj.NonEmpty("name", DefaultHardwareName)}
}

func (c HardwareConfig) FillData(obj jsondoc.Object) { obj.Set("name", c.Name) }
func (c HardwareConfig) ExpectedCapacity() int       { return 1 }

// GroupConfig configures a sensor group.
type GroupConfig struct {
	Name string
}

func GroupConfigFrom(obj jsondoc.Object) GroupConfig {
	return GroupConfig{Name: obj.NonEmpty("name", DefaultGroupName)}
}

func (c GroupConfig) FillData(obj jsondoc.Object) { obj.Set("name", c.Name) }
func (c GroupConfig) ExpectedCapacity() int       { return 1 }

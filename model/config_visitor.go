package model

import "sensornode-go/x/jsondoc"

// Reserved keys of a composition document.
const (
	KeyHardware = "hw"
	KeySensors  = "$sensors"
	KeyGroups   = "$groups"
	KeyComms    = "$comms"
)

// ConfigVisitor serializes the tree into a composition document that the
// factory can construct again. A walk that starts below the hardware yields
// that object's entry, e.g. {"group":{...}} for a group.
type ConfigVisitor struct {
	NopVisitor
	stack []jsondoc.Object
	root  *SensorGroup
	doc   jsondoc.Object
}

func NewConfigVisitor() *ConfigVisitor { return &ConfigVisitor{} }

func (v *ConfigVisitor) top() jsondoc.Object { return v.stack[len(v.stack)-1] }

func (v *ConfigVisitor) push(o jsondoc.Object) { v.stack = append(v.stack, o) }

func (v *ConfigVisitor) pop() jsondoc.Object {
	o := v.top()
	v.stack = v.stack[:len(v.stack)-1]
	return o
}

func entry(o Object) jsondoc.Object {
	return jsondoc.Object{o.ClassName(): ConfigObject(o.Config())}
}

func (v *ConfigVisitor) EnterHardware(h *Hardware) {
	v.stack = v.stack[:0]
	v.root = nil
	v.push(ConfigObject(h.Config()))
}

func (v *ConfigVisitor) LeaveHardware(*Hardware) {
	v.doc = jsondoc.Object{KeyHardware: v.pop()}
}

// The default group has no frame of its own inside a hardware walk; its
// sensors land in the hardware's $sensors.
func (v *ConfigVisitor) EnterGroup(g *SensorGroup) {
	if len(v.stack) == 0 {
		v.root = g
		v.push(ConfigObject(g.Config()))
		return
	}
	if !g.IsDefault() {
		v.push(ConfigObject(g.Config()))
	}
}

func (v *ConfigVisitor) LeaveGroup(g *SensorGroup) {
	if g == v.root {
		v.root = nil
		v.doc = jsondoc.Object{g.ClassName(): v.pop()}
		return
	}
	if g.IsDefault() {
		return
	}
	frame := v.pop()
	v.top().Append(KeyGroups, jsondoc.Object{g.ClassName(): frame})
}

func (v *ConfigVisitor) EnterSensor(s Sensor) {
	if len(v.stack) == 0 {
		v.doc = entry(s)
		return
	}
	v.top().Append(KeySensors, entry(s))
}

func (v *ConfigVisitor) VisitCommunicator(c Communicator) {
	if len(v.stack) == 0 {
		v.doc = entry(c)
		return
	}
	v.top().Append(KeyComms, entry(c))
}

// Document returns the tree built by the last visit.
func (v *ConfigVisitor) Document() jsondoc.Object { return v.doc }

func (v *ConfigVisitor) JSON() ([]byte, error) { return v.doc.Marshal() }

// Serialize walks h and returns its composition document as JSON.
func Serialize(h *Hardware) ([]byte, error) {
	v := NewConfigVisitor()
	h.Accept(v)
	return v.JSON()
}

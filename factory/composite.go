package factory

import (
	"sensornode-go/errcode"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
)

// eachEntry builds every entry of the array under key and hands each object
// to add. add reports false when the object is of the wrong kind; that
// object is released here. The first failure stops the walk.
func (f *Factory) eachEntry(frag jsondoc.Object, key string, add func(model.Object) bool) errcode.Code {
	v, ok := frag.Get(key)
	if !ok {
		return errcode.None
	}
	entries, ok := jsondoc.AsArray(v)
	if !ok {
		return errcode.InvalidEntry
	}
	for _, e := range entries {
		eo, ok := jsondoc.AsObject(e)
		if !ok {
			return errcode.InvalidEntry
		}
		class, args, ok := eo.Single()
		if !ok {
			return errcode.InvalidEntry
		}
		var argObj jsondoc.Object
		if args != nil {
			if argObj, ok = jsondoc.AsObject(args); !ok {
				return errcode.InvalidEntry
			}
		}
		r := f.CallFactory(argObj, class)
		if !r.OK() {
			return r.Code()
		}
		if !add(r.Object()) {
			_ = model.Release(r.Object())
			return errcode.WrongKind
		}
	}
	return errcode.None
}

// reject fails for reserved keys a class has no place for.
func reject(frag jsondoc.Object, keys ...string) errcode.Code {
	for _, k := range keys {
		if frag.Has(k) {
			return errcode.InvalidEntry
		}
	}
	return errcode.None
}

// abort releases obj, and with it everything attached to it so far.
func (f *Factory) abort(obj model.Object, c errcode.Code) Result {
	if err := model.Release(obj); err != nil {
		f.log.Warn("release after failed construction", "object", obj.Name(), "err", err)
	}
	return Fail(c)
}

func addSensor(to interface{ AddSensor(model.Sensor) }) func(model.Object) bool {
	return func(o model.Object) bool {
		s, ok := o.(model.Sensor)
		if ok {
			to.AddSensor(s)
		}
		return ok
	}
}

// HardwareFactory fills hw from the $sensors, $groups and $comms arrays of
// frag, in that order.
func (f *Factory) HardwareFactory(hw *model.Hardware, frag jsondoc.Object) Result {
	if c := f.eachEntry(frag, model.KeySensors, addSensor(hw)); c != errcode.None {
		return f.abort(hw, c)
	}
	c := f.eachEntry(frag, model.KeyGroups, func(o model.Object) bool {
		g, ok := o.(*model.SensorGroup)
		if ok {
			hw.AddSensorGroup(g)
		}
		return ok
	})
	if c != errcode.None {
		return f.abort(hw, c)
	}
	c = f.eachEntry(frag, model.KeyComms, func(o model.Object) bool {
		cm, ok := o.(model.Communicator)
		if ok {
			hw.AddCommunicator(cm)
		}
		return ok
	})
	if c != errcode.None {
		return f.abort(hw, c)
	}
	return Ok(hw)
}

// SensorGroupFactory builds a group from its name and $sensors.
func (f *Factory) SensorGroupFactory(frag jsondoc.Object) Result {
	g := model.NewSensorGroup(model.GroupConfigFrom(frag))
	if c := reject(frag, model.KeyGroups, model.KeyComms); c != errcode.None {
		return f.abort(g, c)
	}
	if c := f.eachEntry(frag, model.KeySensors, addSensor(g)); c != errcode.None {
		return f.abort(g, c)
	}
	return Ok(g)
}

// SensorFactory completes a sensor built by a class factory. Sensors have no
// children.
func (f *Factory) SensorFactory(s model.Sensor, frag jsondoc.Object) Result {
	if c := reject(frag, model.KeySensors, model.KeyGroups, model.KeyComms); c != errcode.None {
		return f.abort(s, c)
	}
	return Ok(s)
}

// CommunicatorFactory completes a communicator built by a class factory.
func (f *Factory) CommunicatorFactory(c model.Communicator, frag jsondoc.Object) Result {
	if code := reject(frag, model.KeySensors, model.KeyGroups, model.KeyComms); code != errcode.None {
		return f.abort(c, code)
	}
	return Ok(c)
}

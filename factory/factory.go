// Package factory turns composition documents into live object trees.
//
// Classes are registered by name. A document is an object with a "hw" key;
// any fragment may carry "$sensors", "$groups" and "$comms" arrays whose
// entries are single-key objects mapping a class name to that class's
// fragment.
package factory

import (
	"log/slog"
	"sync"

	"sensornode-go/errcode"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
)

// Func builds one object from its fragment.
type Func func(frag jsondoc.Object) Result

// Factory is a class registry plus the currently installed root.
type Factory struct {
	mu        sync.RWMutex
	factories map[string]Func
	root      *model.Hardware
	log       *slog.Logger
}

type Option func(*Factory)

func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.log = l
		}
	}
}

func New(opts ...Option) *Factory {
	f := &Factory{factories: map[string]Func{}, log: slog.Default()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Register binds name to fn, replacing any earlier binding.
func (f *Factory) Register(name string, fn Func) bool {
	f.mu.Lock()
	f.factories[name] = fn
	f.mu.Unlock()
	return true
}

func (f *Factory) Lookup(name string) (Func, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn, ok := f.factories[name]
	return fn, ok
}

// Classes lists the registered class names.
func (f *Factory) Classes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.factories))
	for k := range f.factories {
		out = append(out, k)
	}
	return out
}

// Root is the hardware installed by the last successful Construct.
func (f *Factory) Root() *model.Hardware {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.root
}

// Reset drops every registration and the installed root.
func (f *Factory) Reset() {
	f.mu.Lock()
	f.factories = map[string]Func{}
	f.root = nil
	f.mu.Unlock()
}

// RegisterDefaults binds "hw" and "group" to the default composite factories.
func (f *Factory) RegisterDefaults() {
	f.Register(model.KeyHardware, func(frag jsondoc.Object) Result {
		return f.HardwareFactory(model.NewHardware(model.HardwareConfigFrom(frag)), frag)
	})
	f.Register("group", f.SensorGroupFactory)
}

// Construct parses text and builds the tree under its "hw" key. On success
// the hardware becomes the installed root; on failure the previous root is
// left in place and the failing result is returned unchanged.
func (f *Factory) Construct(text []byte) Result {
	doc, err := jsondoc.Parse(text)
	if err != nil {
		f.log.Warn("composition document does not parse", "err", err)
		return Fail(errcode.FailureToParseJSON)
	}
	top, ok := jsondoc.AsObject(doc)
	if !ok {
		return Fail(errcode.NoHWKeyFound)
	}
	v, ok := top.Get(model.KeyHardware)
	if !ok {
		return Fail(errcode.NoHWKeyFound)
	}
	frag, ok := jsondoc.AsObject(v)
	if !ok {
		return Fail(errcode.InvalidHWKeyFound)
	}
	if _, ok := f.Lookup(model.KeyHardware); !ok {
		return Fail(errcode.MissingRegistryForHW)
	}

	r := f.CallFactory(frag, model.KeyHardware)
	if !r.OK() {
		f.log.Warn("construction failed", "err", r.Code())
		return r
	}
	hw, ok := As[*model.Hardware](r)
	if !ok {
		_ = model.Release(r.Object())
		return Fail(errcode.WrongKind)
	}

	f.mu.Lock()
	f.root = hw
	f.mu.Unlock()
	f.log.Info("composition installed", "object", hw.Name(),
		"groups", len(hw.Groups()), "sensors", len(hw.Sensors()), "comms", len(hw.Communicators()))
	return r
}

// CallFactory builds one object of class from frag and stamps the class name
// on it.
func (f *Factory) CallFactory(frag jsondoc.Object, class string) Result {
	fn, ok := f.Lookup(class)
	if !ok {
		f.log.Warn("no factory registered", "class", class)
		return Fail(errcode.MissingRegistryForEntry)
	}
	if frag == nil {
		frag = jsondoc.Object{}
	}
	r := fn(frag)
	if !r.OK() {
		return r
	}
	r.Object().SetClassName(class)
	f.log.Debug("constructed", "class", class, "object", r.Object().Name())
	return r
}

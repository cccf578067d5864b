package factory

import (
	"sensornode-go/errcode"
	"sensornode-go/model"
)

// Result carries either a constructed object with errcode.None, or no
// object and the code explaining why. Never both.
type Result struct {
	obj  model.Object
	code errcode.Code
}

// Ok wraps a constructed object. A nil object is reported as WrongKind.
func Ok(o model.Object) Result {
	if o == nil {
		return Result{code: errcode.WrongKind}
	}
	return Result{obj: o, code: errcode.None}
}

// Fail reports a construction error. None is not a failure and is mapped to
// the generic Error.
func Fail(c errcode.Code) Result {
	if c == errcode.None || c == "" {
		c = errcode.Error
	}
	return Result{code: c}
}

func (r Result) OK() bool             { return r.obj != nil && r.code == errcode.None }
func (r Result) Object() model.Object { return r.obj }

// Code is errcode.None on success.
func (r Result) Code() errcode.Code {
	if r.code == "" {
		return errcode.Error
	}
	return r.code
}

// Err is nil on success and the code otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return r.Code()
}

// As returns the object as T when the result succeeded with that kind.
func As[T model.Object](r Result) (T, bool) {
	var zero T
	if !r.OK() {
		return zero, false
	}
	t, ok := r.obj.(T)
	return t, ok
}

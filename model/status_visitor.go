package model

import "log/slog"

// StatusVisitor sweeps the tree, forwards every status that carries data,
// and records whether any object reported an ERROR status. The whole tree is
// always walked.
type StatusVisitor struct {
	NopVisitor

	// Publish receives each status; nil means the root's PublishStatus.
	Publish func(status Measurement, src Object)
	Log     *slog.Logger

	root  *Hardware
	fatal bool
	seen  int
}

func NewStatusVisitor(publish func(Measurement, Object), log *slog.Logger) *StatusVisitor {
	if log == nil {
		log = slog.Default()
	}
	return &StatusVisitor{Publish: publish, Log: log}
}

func (v *StatusVisitor) EnterHardware(h *Hardware) {
	if v.root == nil {
		v.root = h
	}
	v.check(h)
}

func (v *StatusVisitor) EnterSensor(s Sensor)             { v.check(s) }
func (v *StatusVisitor) VisitCommunicator(c Communicator) { v.check(c) }

// HasFatalError reports whether an ERROR status was found.
func (v *StatusVisitor) HasFatalError() bool { return v.fatal }

// Published is the number of statuses forwarded.
func (v *StatusVisitor) Published() int { return v.seen }

func (v *StatusVisitor) check(o Object) {
	st := o.Status()
	if st.State() == NoData {
		return
	}
	v.seen++
	switch {
	case v.Publish != nil:
		v.Publish(st, o)
	case v.root != nil:
		v.root.PublishStatus(st, o)
	}
	if st.State() == Error {
		v.fatal = true
		v.Log.Error("object reported error", "object", o.QualifiedName(NameSep), "status", st.Text())
	} else if st.Text() != StatusOK {
		v.Log.Warn("object reported warning", "object", o.QualifiedName(NameSep), "status", st.Text())
	}
}

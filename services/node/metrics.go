package node

// Counter is the part of a metrics counter the loop uses.
type Counter interface{ Inc() }

type nopCounter struct{}

func (nopCounter) Inc() {}

// Metrics counts loop activity. Nil counters are skipped.
type Metrics struct {
	Ticks      Counter
	Sweeps     Counter
	Readings   Counter
	FatalHalts Counter
}

func (m *Metrics) fill() {
	for _, c := range []*Counter{&m.Ticks, &m.Sweeps, &m.Readings, &m.FatalHalts} {
		if *c == nil {
			*c = nopCounter{}
		}
	}
}

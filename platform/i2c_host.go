package platform

import (
	"errors"
	"math"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/aht20"
	"tinygo.org/x/drivers/shtc3"
)

// ErrNoDevice is returned for transactions to an address nothing answers on.
var ErrNoDevice = errors.New("i2c: no device at address")

// I2CHandler emulates one device: w is what the controller wrote, r is
// filled with the device's answer.
type I2CHandler func(w, r []byte) error

// HostI2C implements tinygo drivers.I2C without hardware. Devices are
// emulated by handlers attached per address.
type HostI2C struct {
	mu      sync.Mutex
	devices map[uint16]I2CHandler
	txCount int
	LastTx  struct {
		Addr uint16
		W    []byte
		Rn   int
	}
}

var _ drivers.I2C = (*HostI2C)(nil)

// Attach installs fn at addr, replacing any earlier device.
func (h *HostI2C) Attach(addr uint16, fn I2CHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.devices == nil {
		h.devices = make(map[uint16]I2CHandler)
	}
	h.devices[addr] = fn
}

// Detach removes the device at addr.
func (h *HostI2C) Detach(addr uint16) {
	h.mu.Lock()
	delete(h.devices, addr)
	h.mu.Unlock()
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	h.txCount++
	h.LastTx.Addr = addr
	h.LastTx.W = append([]byte(nil), w...)
	h.LastTx.Rn = len(r)
	fn := h.devices[addr]
	h.mu.Unlock()
	if fn == nil {
		return ErrNoDevice
	}
	return fn(w, r)
}

// Transactions counts every Tx call so far.
func (h *HostI2C) Transactions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.txCount
}

// ----------------------------- emulated devices -----------------------------

// Climate is the shared state of an emulated temperature/humidity sensor.
type Climate struct {
	mu      sync.Mutex
	celsius float64
	rh      float64
}

func NewClimate(celsius, rh float64) *Climate { return &Climate{celsius: celsius, rh: rh} }

func (c *Climate) Set(celsius, rh float64) {
	c.mu.Lock()
	c.celsius, c.rh = celsius, rh
	c.mu.Unlock()
}

func (c *Climate) get() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.celsius, c.rh
}

func raw20(v float64) uint32 {
	return uint32(math.Round(math.Max(0, math.Min(v, 1)) * (1<<20 - 1)))
}

// SimAHT20 answers the AHT20 status, trigger and read sequence.
func SimAHT20(c *Climate) I2CHandler {
	return func(w, r []byte) error {
		switch {
		case len(w) > 0 && w[0] == aht20.CMD_STATUS && len(r) > 0:
			r[0] = aht20.STATUS_CALIBRATED
		case len(w) == 0 && len(r) >= 6:
			t, rh := c.get()
			hum := raw20(rh / 100)
			tmp := raw20((t + 50) / 200)
			r[0] = aht20.STATUS_CALIBRATED
			r[1] = byte(hum >> 12)
			r[2] = byte(hum >> 4)
			r[3] = byte(hum<<4) | byte(tmp>>16)&0x0F
			r[4] = byte(tmp >> 8)
			r[5] = byte(tmp)
		}
		return nil
	}
}

// SimSHTC3 answers the SHTC3 measure command; wake-up and sleep are no-ops.
func SimSHTC3(c *Climate) I2CHandler {
	return func(w, r []byte) error {
		if string(w) != shtc3.SHTC3_CMD_MEASURE_HP || len(r) < 6 {
			return nil
		}
		t, rh := c.get()
		rawT := uint16(math.Round((t*1000 + 45000) * 8192 / 21875))
		rawH := uint16(math.Round(rh * 100 * 8192 / 1250))
		r[0], r[1] = byte(rawT>>8), byte(rawT)
		r[3], r[4] = byte(rawH>>8), byte(rawH)
		return nil
	}
}

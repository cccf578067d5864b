//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
)

// Longest timeout the RP2 watchdog accepts, in ms.
const maxWatchdogMillis = 8300

// RP2Config selects the watchdog timeout and console wiring.
type RP2Config struct {
	WatchdogMillis uint32
	ConsoleBaud    uint32
	ConsoleTX      machine.Pin
	ConsoleRX      machine.Pin
}

// RP2 is the platform on Raspberry Pi Pico / Pico 2 boards.
type RP2 struct {
	led     machine.Pin
	console *uartx.UART
	blink   time.Duration
}

func NewRP2(cfg RP2Config) *RP2 {
	p := &RP2{led: machine.LED, console: uartx.UART0, blink: 100 * time.Millisecond}
	p.led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.led.Low()

	if cfg.ConsoleBaud == 0 {
		cfg.ConsoleBaud = 115200
	}
	_ = p.console.Configure(uartx.UARTConfig{
		BaudRate: cfg.ConsoleBaud,
		TX:       cfg.ConsoleTX,
		RX:       cfg.ConsoleRX,
	})

	if cfg.WatchdogMillis > 0 {
		_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: cfg.WatchdogMillis})
		_ = machine.Watchdog.Start()
	}
	return p
}

// Console is the UART the node logs to.
func (p *RP2) Console() *uartx.UART { return p.console }

func (p *RP2) FeedWatchdog() { machine.Watchdog.Update() }

// DisableWatchdog stretches the watchdog to its maximum; the RP2 watchdog
// cannot be stopped once started.
func (p *RP2) DisableWatchdog() {
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: maxWatchdogMillis})
	machine.Watchdog.Update()
}

func (p *RP2) ErrorIndicator() {
	if p.led.Get() {
		p.led.Low()
	} else {
		p.led.High()
	}
	time.Sleep(p.blink)
}

func (p *RP2) EpochMillis() uint64 { return uint64(time.Now().UnixMilli()) }

func (p *RP2) ResetWithReason(reason string, restart bool) {
	_, _ = p.console.Write([]byte("reset: " + reason + "\r\n"))
	if restart {
		machine.CPUReset()
	}
	for {
		p.DisableWatchdog()
		p.ErrorIndicator()
	}
}

// DefaultI2CBuses configures i2c0 and i2c1 with board-default pins at 400 kHz.
func DefaultI2CBuses() (I2CBuses, *Climate) {
	b0 := machine.I2C0
	_ = b0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	b1 := machine.I2C1
	_ = b1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C1_SDA_PIN,
		SCL:       machine.I2C1_SCL_PIN,
	})
	return StaticBuses{"i2c0": drivers.I2C(b0), "i2c1": drivers.I2C(b1)}, nil
}

//go:build rp2040 || rp2350

// pico-node is the firmware image: it builds the node from the composition
// embedded for deviceID and runs it forever on the RP2 platform.
package main

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"sensornode-go/bus"
	"sensornode-go/comms"
	"sensornode-go/comms/logcomm"
	"sensornode-go/devices"
	devicesall "sensornode-go/devices/all"
	"sensornode-go/factory"
	"sensornode-go/platform"
	"sensornode-go/services/config"
	"sensornode-go/services/node"
)

// Set at build time: -ldflags "-X main.deviceID=...".
var deviceID = "pico"

const (
	usbSettle     = 2 * time.Second
	watchdogMs    = 4000
	statusEvery   = 60 * time.Second
	tickEvery     = time.Second
	consoleBaudHz = 115200
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(usbSettle)

	plat := platform.NewRP2(platform.RP2Config{WatchdogMillis: watchdogMs, ConsoleBaud: consoleBaudHz})
	log := slog.New(slog.NewTextHandler(plat.Console(), &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("boot", "device", deviceID)

	text, err := config.Composition(deviceID)
	if err != nil {
		log.Error("no composition", "err", err)
		plat.ResetWithReason("no composition", false)
	}

	buses, _ := platform.DefaultI2CBuses()
	f := factory.New(factory.WithLogger(log))
	f.RegisterDefaults()
	devicesall.Register(f, devices.Env{Clock: plat, Buses: buses, Logger: log})
	logcomm.Register(f, comms.Env{Logger: log})

	r := f.Construct(text)
	if !r.OK() {
		log.Error("construction failed", "code", string(r.Code()))
		plat.ResetWithReason("construction failed", false)
	}
	hw := f.Root()
	logMem(log)

	n := node.New(hw, plat,
		node.WithLogger(log),
		node.WithBus(bus.New()),
		node.WithStatusInterval(statusEvery),
		node.WithTickInterval(tickEvery),
	)
	if err := n.Run(context.Background()); err != nil {
		plat.ResetWithReason(err.Error(), true)
	}
}

// logMem logs a compact snapshot of runtime memory stats.
func logMem(log *slog.Logger) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	log.Info("mem",
		"alloc", ms.Alloc,
		"heap_inuse", ms.HeapInuse,
		"heap_sys", ms.HeapSys,
		"mallocs", ms.Mallocs,
		"frees", ms.Frees,
	)
}

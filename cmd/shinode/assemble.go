package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"sensornode-go/comms"
	commsall "sensornode-go/comms/all"
	"sensornode-go/devices"
	devicesall "sensornode-go/devices/all"
	"sensornode-go/factory"
	"sensornode-go/model"
	"sensornode-go/platform"
	"sensornode-go/services/settings"
)

// addSourceFlags adds the flags that select a composition.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "path to settings file")
	cmd.Flags().String("composition", "", "composition file, overrides the settings")
	cmd.Flags().String("device", "", "embedded composition id, overrides the settings")
}

// loadSettings reads the settings file if one is given, or starts from the
// defaults, then applies the flag overrides.
func loadSettings(cmd *cobra.Command) (*settings.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	s := settings.Defaults()
	if path != "" {
		loaded, err := settings.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		s = *loaded
	}
	if v, _ := cmd.Flags().GetString("device"); v != "" {
		s.Device = v
		s.Composition = ""
	}
	if v, _ := cmd.Flags().GetString("composition"); v != "" {
		s.Composition = v
	}
	return &s, nil
}

// assembly is a constructed node tree and the registry its communicators
// and loop report to.
type assembly struct {
	factory *factory.Factory
	hw      *model.Hardware
	reg     *prometheus.Registry
}

// assemble validates text and builds it with every sensor and communicator
// class registered.
func assemble(text []byte, log *slog.Logger, clock model.Clock, buses platform.I2CBuses) (*assembly, error) {
	if err := settings.ValidateComposition(text); err != nil {
		return nil, fmt.Errorf("invalid composition: %w", err)
	}
	reg := prometheus.NewRegistry()
	f := factory.New(factory.WithLogger(log))
	f.RegisterDefaults()
	devicesall.Register(f, devices.Env{Clock: clock, Buses: buses, Logger: log})
	commsall.Register(f, comms.Env{Logger: log}, reg)

	r := f.Construct(text)
	if !r.OK() {
		return nil, fmt.Errorf("invalid composition: %w", r.Err())
	}
	return &assembly{factory: f, hw: f.Root(), reg: reg}, nil
}

func (a *assembly) release() error { return model.Release(a.hw) }

type route struct {
	path    string
	handler http.Handler
}

// routes lists the communicators that serve HTTP, in composition order.
func (a *assembly) routes() []route {
	var out []route
	for _, c := range a.hw.Communicators() {
		h, ok := c.(interface {
			http.Handler
			Route() string
		})
		if ok && h.Route() != "" {
			out = append(out, route{path: h.Route(), handler: h})
		}
	}
	return out
}

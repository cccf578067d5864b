package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sensornode-go/bus"
	"sensornode-go/model"
	"sensornode-go/platform"
	"sensornode-go/services/node"
)

const shutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sensor node",
	Long: `Build the node from its composition and run it until interrupted.

The node is set up once, then ticks at the configured interval: every
sensor is read, readings go to every communicator, and the full status
tree is swept when the status interval has passed. A fatal status stops
the loop and blinks the error indicator without feeding the watchdog.

Metrics are served on /metrics of the HTTP address, next to any route a
communicator registers.

Example:
  shinode run -c settings.yaml
  shinode run --device host-demo`,
	RunE: runNode,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSourceFlags(runCmd)
}

func runNode(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := s.NewLogger(os.Stderr)

	text, err := s.CompositionText()
	if err != nil {
		return err
	}

	host, err := platform.NewHost(
		platform.WithLogger(logger),
		platform.WithWatchdog(s.Watchdog.Timeout.Duration()),
		platform.WithResetHook(s.ResetHook),
	)
	if err != nil {
		return fmt.Errorf("failed to create platform: %w", err)
	}
	logger = logger.With("boot_id", host.BootID())

	buses, _ := platform.DefaultI2CBuses()
	a, err := assemble(text, logger, host, buses)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.release(); err != nil {
			logger.Warn("release", "err", err)
		}
	}()
	a.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger.Info("composition loaded",
		"hardware", a.hw.Name(),
		"groups", len(a.hw.Groups()),
		"sensors", len(a.hw.Sensors()),
		"comms", len(a.hw.Communicators()),
	)

	b := bus.New()
	fatal, _ := bus.Everything().
		SetEvent(bus.EventStatusUpdate).
		SetCustomFieldMask(model.FieldFatal).
		Build(func(ev bus.Event) {
			if m, ok := ev.Payload.(model.Measurement); ok {
				logger.Error("fatal status", "status", m.String())
			}
		})
	b.Subscribe(fatal)
	defer runtime.KeepAlive(fatal)

	n := node.New(a.hw, host,
		node.WithLogger(logger),
		node.WithBus(b),
		node.WithStatusInterval(s.StatusInterval.Duration()),
		node.WithTickInterval(s.TickInterval.Duration()),
		node.WithMetrics(node.NewMetrics(a.reg)),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{Registry: a.reg}))
	for _, r := range a.routes() {
		mux.Handle(r.path, r.handler)
		logger.Debug("route registered", "path", r.path)
	}
	srv := &http.Server{Addr: s.HTTP.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return n.Run(gctx) })
	if s.HTTP.Listen != "" {
		g.Go(func() error {
			logger.Info("serving", "addr", s.HTTP.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown complete", "state", n.State().String())
		return nil
	}
	return err
}

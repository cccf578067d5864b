//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/google/shlex"
	"github.com/google/uuid"
)

// Host is the platform used off-device: a software watchdog, a logged
// error indicator and an optional reset hook command.
type Host struct {
	log    *slog.Logger
	bootID string

	mu        sync.Mutex
	wdTimeout time.Duration
	wd        *time.Timer
	feeds     int
	led       bool
	blinks    int
	blink     time.Duration
	hook      []string
	resets    []string
	run       func(ctx context.Context, argv []string) error
}

type HostOption func(*Host) error

func WithLogger(l *slog.Logger) HostOption {
	return func(h *Host) error {
		if l != nil {
			h.log = l
		}
		return nil
	}
}

// WithWatchdog arms a software watchdog: if it is not fed within d, the
// host resets with reason "watchdog".
func WithWatchdog(d time.Duration) HostOption {
	return func(h *Host) error { h.wdTimeout = d; return nil }
}

// WithBlink sets how long one error indicator call takes.
func WithBlink(d time.Duration) HostOption {
	return func(h *Host) error { h.blink = d; return nil }
}

// WithResetHook runs cmdline (shell-style quoting) on every reset, with
// the reason appended as the last argument.
func WithResetHook(cmdline string) HostOption {
	return func(h *Host) error {
		if cmdline == "" {
			return nil
		}
		argv, err := shlex.Split(cmdline)
		if err != nil {
			return err
		}
		h.hook = argv
		return nil
	}
}

func withRunner(fn func(ctx context.Context, argv []string) error) HostOption {
	return func(h *Host) error { h.run = fn; return nil }
}

func NewHost(opts ...HostOption) (*Host, error) {
	h := &Host{
		log:    slog.Default(),
		bootID: uuid.NewString(),
		blink:  250 * time.Millisecond,
		run:    runCommand,
	}
	for _, o := range opts {
		if err := o(h); err != nil {
			return nil, err
		}
	}
	h.log = h.log.With("boot_id", h.bootID)
	return h, nil
}

func runCommand(ctx context.Context, argv []string) error {
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
}

func (h *Host) BootID() string { return h.bootID }

func (h *Host) FeedWatchdog() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feeds++
	if h.wdTimeout <= 0 {
		return
	}
	if h.wd == nil {
		h.wd = time.AfterFunc(h.wdTimeout, func() { h.ResetWithReason("watchdog", true) })
		return
	}
	h.wd.Reset(h.wdTimeout)
}

func (h *Host) DisableWatchdog() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.wd != nil {
		h.wd.Stop()
		h.wd = nil
	}
	h.wdTimeout = 0
}

// ErrorIndicator toggles the virtual LED and waits one blink period.
func (h *Host) ErrorIndicator() {
	h.mu.Lock()
	h.led = !h.led
	h.blinks++
	first := h.blinks == 1
	d := h.blink
	h.mu.Unlock()
	if first {
		h.log.Error("error indicator active")
	}
	time.Sleep(d)
}

func (h *Host) EpochMillis() uint64 { return uint64(time.Now().UnixMilli()) }

func (h *Host) ResetWithReason(reason string, restart bool) {
	h.mu.Lock()
	h.resets = append(h.resets, reason)
	hook := h.hook
	run := h.run
	h.mu.Unlock()

	h.log.Warn("reset requested", "reason", reason, "restart", restart)
	if len(hook) == 0 {
		return
	}
	argv := append(append([]string(nil), hook...), reason)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := run(ctx, argv); err != nil {
		h.log.Error("reset hook failed", "err", err)
	}
}

// Feeds is the number of watchdog feeds so far.
func (h *Host) Feeds() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.feeds
}

// Blinks is the number of error indicator calls so far.
func (h *Host) Blinks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.blinks
}

// Resets lists the reasons of every reset so far.
func (h *Host) Resets() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.resets...)
}

// DefaultI2CBuses returns "i2c0" with an emulated AHT20 and SHTC3 sharing
// one climate, and an empty "i2c1".
func DefaultI2CBuses() (I2CBuses, *Climate) {
	c := NewClimate(22.5, 45)
	b0 := &HostI2C{}
	b0.Attach(0x38, SimAHT20(c))
	b0.Attach(0x70, SimSHTC3(c))
	return StaticBuses{"i2c0": b0, "i2c1": &HostI2C{}}, c
}

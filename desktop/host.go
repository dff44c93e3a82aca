// Package desktop runs a session in a native window. The frame loop lives in
// Host and knows nothing about the windowing library, so it can be driven by
// a fake Poller in tests.
package desktop

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"drivesim/device"
	"drivesim/game"
	"drivesim/telemetry"
)

const (
	DefaultTPS   = 60
	windowWidth  = 640
	windowHeight = 480
)

// Poller reads the host's keyboard and gamepads once per frame.
type Poller interface {
	Keys() game.KeyboardState
	Pads() []device.Info
	// Sample returns the axes and buttons of the pad at index, or nil if it
	// is gone.
	Sample(index int) *game.DeviceSample
}

type Options struct {
	Title   string
	Variant game.Variant
	Policy  device.Policy
	TPS     int
	Log     zerolog.Logger
	Metrics *telemetry.Instruments
}

// Host drives one car from local input at the window's tick rate.
type Host struct {
	sim          *game.Sim
	devices      *device.Monitor
	poller       Poller
	refreshEvery int
	frame        game.Frame
	log          zerolog.Logger
	metrics      *telemetry.Instruments
}

func NewHost(opts Options, p Poller) *Host {
	tps := opts.TPS
	if tps <= 0 {
		tps = DefaultTPS
	}
	sim := game.NewSim(opts.Variant)
	v := sim.Vehicle()
	return &Host{
		sim:          sim,
		devices:      device.NewMonitor(opts.Policy),
		poller:       p,
		refreshEvery: tps * int(device.CheckInterval.Seconds()),
		frame:        game.Frame{Vehicle: v, Camera: game.Project(v)},
		log:          opts.Log.With().Str("variant", opts.Variant.Name).Logger(),
		metrics:      opts.Metrics,
	}
}

// Step advances one frame. Pads are rescanned on the first frame and then
// once per device check interval.
func (h *Host) Step() game.Frame {
	if h.sim.Tick()%h.refreshEvery == 0 {
		h.refreshDevices()
	}

	in := game.InputSnapshot{Keyboard: h.poller.Keys()}
	if pad, ok := h.devices.Connected(); ok {
		in.Device = h.poller.Sample(pad.Index)
	}

	h.frame = h.sim.Advance(in)
	h.metrics.Frame(context.Background(), h.sim.Variant().Name,
		h.frame.Control.Source.String(), game.SpeedReadout(h.frame.Vehicle))
	return h.frame
}

func (h *Host) refreshDevices() {
	st, tr := h.devices.Refresh(h.poller.Pads())
	if tr == device.Unchanged {
		return
	}
	h.metrics.DeviceTransition(context.Background(), tr.String())
	h.log.Info().
		Str("transition", tr.String()).
		Str("pad", st.Pad.ID).
		Bool("wheel", st.Wheel).
		Msg("pad status changed")
}

func (h *Host) Frame() game.Frame { return h.frame }

func (h *Host) Variant() game.Variant { return h.sim.Variant() }

func (h *Host) Devices() device.Status { return h.devices.Status() }

// Readout is the debug overlay text.
func Readout(f game.Frame, st device.Status) string {
	pad := "no wheel"
	if st.Connected {
		pad = st.Pad.ID
		if !st.Wheel {
			pad += " (generic)"
		}
	}
	return fmt.Sprintf("%d km/h  heading %.0f deg  %s\ninput %s  gas %.2f  brake %.2f  steer %+.2f\n%s",
		game.SpeedReadout(f.Vehicle),
		compass(game.HeadingDegrees(f.Vehicle)),
		game.Mode(f.Vehicle),
		f.Control.Source, f.Control.Gas, f.Control.Brake, f.Steering,
		pad)
}

func compass(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

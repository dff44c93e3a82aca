package room

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"drivesim/device"
	"drivesim/game"
	"drivesim/protocol"
	"drivesim/telemetry"
)

type Options struct {
	Variant game.Variant
	Policy  device.Policy
	TickHz  int
	Log     zerolog.Logger
	Metrics *telemetry.Instruments
}

// Room is one driving session: one driver, one car. Everything below the
// atomics is owned by the Run goroutine.
type Room struct {
	Inbox   chan any
	ID      string
	OnEmpty func(id string) // called when the driver leaves

	tickHz         int
	broadcastEvery int
	sim            *game.Sim
	devices        *device.Monitor
	driver         Conn
	driverName     string
	keys           game.KeyboardState
	pad            *protocol.Pad
	lastAxes       []float64
	clutch         bool
	log            zerolog.Logger
	metrics        *telemetry.Instruments
	quit           chan struct{}
	stopOnce       sync.Once

	tick      atomic.Int64
	hasDriver atomic.Bool
}

func New(id string, opts Options) *Room {
	tickHz := opts.TickHz
	if tickHz <= 0 {
		tickHz = protocol.SimTickHz
	}
	broadcastEvery := tickHz / protocol.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	return &Room{
		Inbox:          make(chan any, 256),
		ID:             id,
		tickHz:         tickHz,
		broadcastEvery: broadcastEvery,
		sim:            game.NewSim(opts.Variant),
		devices:        device.NewMonitor(opts.Policy),
		log:            opts.Log.With().Str("session", id).Str("variant", opts.Variant.Name).Logger(),
		metrics:        opts.Metrics,
		quit:           make(chan struct{}),
	}
}

func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done is closed once the room stops.
func (r *Room) Done() <-chan struct{} { return r.quit }

func (r *Room) Variant() game.Variant { return r.sim.Variant() }

// Tick returns the last simulated frame number. Safe from any goroutine.
func (r *Room) Tick() int { return int(r.tick.Load()) }

// HasDriver is safe from any goroutine.
func (r *Room) HasDriver() bool { return r.hasDriver.Load() }

func (r *Room) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.step()
		}
	}
}

func (r *Room) step() {
	frame := r.sim.Advance(r.snapshot())
	r.tick.Store(int64(frame.Tick))
	r.metrics.Frame(context.Background(), r.sim.Variant().Name, frame.Control.Source.String(), game.SpeedReadout(frame.Vehicle))

	if r.driver != nil && frame.Tick%r.broadcastEvery == 0 {
		r.sendState(frame)
	}
}

// snapshot freezes the latest input for this tick. The pad sample only
// counts when it comes from the pad the monitor selected.
func (r *Room) snapshot() game.InputSnapshot {
	in := game.InputSnapshot{Keyboard: r.keys}

	sel, ok := r.devices.Connected()
	if !ok || r.pad == nil || r.pad.Index != sel.Index {
		return in
	}
	in.Device = padSample(r.pad)

	if r.log.GetLevel() <= zerolog.DebugLevel {
		if game.AxesChanged(r.lastAxes, in.Device.Axes) {
			r.log.Debug().Floats64("axes", in.Device.Axes).Msg("pad axes")
			r.lastAxes = append(r.lastAxes[:0], in.Device.Axes...)
		}
		if clutch := game.ClutchEngaged(in.Device); clutch != r.clutch {
			r.clutch = clutch
			r.log.Debug().Bool("engaged", clutch).Msg("clutch pedal ignored")
		}
	}
	return in
}

func padSample(p *protocol.Pad) *game.DeviceSample {
	axes := make([]float64, len(p.Axes))
	for i, a := range p.Axes {
		if a == nil {
			axes[i] = math.NaN()
			continue
		}
		axes[i] = *a
	}
	return &game.DeviceSample{Axes: axes, Buttons: append([]bool(nil), p.Buttons...)}
}

func keyboard(k protocol.Keys) game.KeyboardState {
	return game.KeyboardState{
		Forward:    k.Forward,
		Backward:   k.Backward,
		SteerLeft:  k.Left,
		SteerRight: k.Right,
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		if r.driver != nil {
			c.Reply <- JoinResult{Err: ErrSessionOccupied}
			return
		}
		r.driver = c.Conn
		r.driverName = c.Name
		r.hasDriver.Store(true)
		r.metrics.SessionStarted(context.Background())
		r.log.Info().Str("driver", c.Name).Msg("driver joined")
		if !r.sendWelcome() {
			c.Reply <- JoinResult{Err: ErrDriverGone}
			return
		}
		c.Reply <- JoinResult{SessionID: r.ID}
	case Input:
		r.keys = keyboard(c.Input.Keys)
		r.pad = c.Input.Pad
	case Devices:
		r.refreshDevices(c.Pads)
	case Leave:
		r.handleLeave()
	}
}

func (r *Room) refreshDevices(pads []protocol.PadInfo) {
	infos := make([]device.Info, len(pads))
	for i, p := range pads {
		infos[i] = device.Info{Index: p.Index, ID: p.ID}
	}
	st, tr := r.devices.Refresh(infos)
	if tr == device.Unchanged {
		return
	}
	r.metrics.DeviceTransition(context.Background(), tr.String())
	r.log.Info().
		Str("transition", tr.String()).
		Str("pad", st.Pad.ID).
		Bool("wheel", st.Wheel).
		Msg("pad status changed")
}

func (r *Room) handleLeave() {
	if r.driver == nil {
		return
	}
	r.log.Info().Str("driver", r.driverName).Int("tick", r.sim.Tick()).Msg("driver left")
	r.dropDriver()
}

func (r *Room) dropDriver() {
	_ = r.driver.Close()
	r.driver = nil
	r.driverName = ""
	r.keys = game.KeyboardState{}
	r.pad = nil
	r.hasDriver.Store(false)
	r.metrics.SessionEnded(context.Background())
	if r.OnEmpty != nil {
		r.OnEmpty(r.ID)
	}
}

func (r *Room) sendWelcome() bool {
	v := r.sim.Variant()
	start := r.sim.Vehicle()
	return r.send(protocol.MsgWelcome, protocol.Welcome{
		SessionID: r.ID,
		TickHz:    r.tickHz,
		Variant:   v.Name,
		Track: protocol.TrackInfo{
			Name:           v.Track.Name,
			StraightLength: v.Track.StraightLength,
			Radius:         v.Track.Radius,
			Width:          v.Track.Width,
			StartLine:      vec(v.Track.StartLine),
		},
		Start:   vec(start.Position),
		Heading: start.Heading,
	})
}

func (r *Room) sendState(f game.Frame) {
	st := r.devices.Status()
	r.send(protocol.MsgState, protocol.State{
		Tick: f.Tick,
		Vehicle: protocol.VehicleSnapshot{
			X:       f.Vehicle.Position.X,
			Y:       f.Vehicle.Position.Y,
			Z:       f.Vehicle.Position.Z,
			Heading: f.Vehicle.Heading,
			Speed:   f.Vehicle.Speed,
			Mode:    game.Mode(f.Vehicle).String(),
		},
		Camera: protocol.CameraSnapshot{
			Pos:  vec(f.Camera.Position),
			Look: vec(f.Camera.LookTarget),
		},
		WheelTurn:  f.WheelTurn,
		SpeedKmh:   game.SpeedReadout(f.Vehicle),
		HeadingDeg: game.HeadingDegrees(f.Vehicle),
		Source:     f.Control.Source.String(),
		Gas:        f.Control.Gas,
		Brake:      f.Control.Brake,
		Device: protocol.DeviceSnapshot{
			Connected: st.Connected,
			ID:        st.Pad.ID,
			Wheel:     st.Wheel,
		},
	})
}

// send writes to the driver and drops it on failure. It reports whether the
// driver is still attached.
func (r *Room) send(t string, payload any) bool {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Error().Err(err).Str("type", t).Msg("encode")
		return true
	}
	if err := r.driver.Send(b); err != nil {
		r.log.Warn().Err(err).Str("type", t).Msg("send failed, dropping driver")
		r.dropDriver()
		return false
	}
	return true
}

func vec(v game.Vec3) protocol.Vec {
	return protocol.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

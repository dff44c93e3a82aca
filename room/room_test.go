package room

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"drivesim/device"
	"drivesim/game"
	"drivesim/protocol"
)

type fakeConn struct {
	sendCh chan []byte
	mu     sync.Mutex
	closed bool
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sendCh <- cp
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestRoom(t *testing.T, variant string) *Room {
	t.Helper()
	v, err := game.LookupVariant(variant)
	if err != nil {
		t.Fatalf("variant: %v", err)
	}
	r := New("test", Options{Variant: v, Policy: device.DefaultPolicy(), Log: zerolog.Nop()})
	go r.Run()
	t.Cleanup(r.Stop)
	return r
}

func join(t *testing.T, r *Room, c Conn) JoinResult {
	t.Helper()
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: c, Name: "test", Reply: reply}
	select {
	case res := <-reply:
		return res
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for join reply")
	}
	return JoinResult{}
}

// nextState returns the next state snapshot matching ok, skipping others.
func nextState(t *testing.T, fc *fakeConn, ok func(protocol.State) bool) protocol.State {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T != protocol.MsgState {
				continue
			}
			st, err := protocol.DecodePayload[protocol.State](env)
			if err != nil {
				t.Fatalf("decode state: %v", err)
			}
			if ok == nil || ok(st) {
				return st
			}
		case <-timeout:
			t.Fatalf("timed out waiting for state snapshot")
		}
	}
}

func f64(v float64) *float64 { return &v }

func TestRoomJoinSendsWelcomeThenState(t *testing.T) {
	r := newTestRoom(t, "oval")
	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	res := join(t, r, fc)
	if res.Err != nil || res.SessionID != "test" {
		t.Fatalf("join result = %+v", res)
	}

	env, err := protocol.DecodeEnvelope(<-fc.sendCh)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.T != protocol.MsgWelcome {
		t.Fatalf("first message = %q, want welcome", env.T)
	}
	w, err := protocol.DecodePayload[protocol.Welcome](env)
	if err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if w.Variant != "oval" || w.TickHz != protocol.SimTickHz || w.Start.Z != game.OvalTrack.StartLine.Z {
		t.Fatalf("unexpected welcome %+v", w)
	}

	st := nextState(t, fc, nil)
	if st.Tick <= 0 || st.Source != "default" || st.Device.Connected {
		t.Fatalf("unexpected first state %+v", st)
	}
	if !r.HasDriver() {
		t.Fatalf("room should report a driver")
	}
}

func TestRoomRejectsSecondDriver(t *testing.T) {
	r := newTestRoom(t, "oval")
	join(t, r, &fakeConn{sendCh: make(chan []byte, 256)})

	res := join(t, r, &fakeConn{sendCh: make(chan []byte, 1)})
	if !errors.Is(res.Err, ErrSessionOccupied) {
		t.Fatalf("second join err = %v, want ErrSessionOccupied", res.Err)
	}
}

func TestRoomBroadcastShowsMovement(t *testing.T) {
	r := newTestRoom(t, "oval")
	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	join(t, r, fc)

	r.Inbox <- Input{Input: protocol.Input{Keys: protocol.Keys{Forward: true}}}

	first := nextState(t, fc, func(s protocol.State) bool { return s.Vehicle.Speed > 0 })
	second := nextState(t, fc, func(s protocol.State) bool { return s.Tick > first.Tick })
	if second.Vehicle.X >= first.Vehicle.X {
		t.Fatalf("expected x to decrease between snapshots: first=%f second=%f", first.Vehicle.X, second.Vehicle.X)
	}
	if second.Gas != 1 || second.Vehicle.Mode != "accelerating" {
		t.Fatalf("unexpected control in snapshot %+v", second)
	}
}

func TestRoomDeviceOnlyCountsWhenConnected(t *testing.T) {
	r := newTestRoom(t, "oval")
	fc := &fakeConn{sendCh: make(chan []byte, 512)}
	join(t, r, fc)

	pad := &protocol.Pad{Index: 0, Axes: []*float64{f64(0.5), f64(1), f64(1)}}
	r.Inbox <- Input{Input: protocol.Input{Pad: pad}}

	// No pad list yet: the sample is ignored.
	st := nextState(t, fc, func(s protocol.State) bool { return s.Tick > 3 })
	if st.Source != "default" {
		t.Fatalf("source = %q before pad report, want default", st.Source)
	}

	r.Inbox <- Devices{Pads: []protocol.PadInfo{{Index: 0, ID: "Logitech G29 Driving Force"}}}
	st = nextState(t, fc, func(s protocol.State) bool { return s.Source == "device" })
	if !st.Device.Connected || !st.Device.Wheel {
		t.Fatalf("device snapshot = %+v, want connected wheel", st.Device)
	}

	// A steering key still overrides the wheel.
	r.Inbox <- Input{Input: protocol.Input{Keys: protocol.Keys{Left: true}, Pad: pad}}
	nextState(t, fc, func(s protocol.State) bool { return s.Source == "keyboard" })

	// Pad unplugged: back to keyboard/default on the next report.
	r.Inbox <- Input{Input: protocol.Input{Pad: pad}}
	r.Inbox <- Devices{}
	st = nextState(t, fc, func(s protocol.State) bool { return !s.Device.Connected })
	if st.Source == "device" {
		t.Fatalf("source still device after disconnect")
	}
}

func TestRoomLeaveClosesDriverAndCallsOnEmpty(t *testing.T) {
	r := newTestRoom(t, "oval")
	emptied := make(chan string, 1)
	r.OnEmpty = func(id string) { emptied <- id }

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	join(t, r, fc)
	nextState(t, fc, nil)

	r.Inbox <- Leave{}
	select {
	case id := <-emptied:
		if id != "test" {
			t.Fatalf("OnEmpty id = %q", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("OnEmpty not called")
	}
	if !fc.isClosed() {
		t.Fatalf("driver connection not closed")
	}
	if r.HasDriver() {
		t.Fatalf("room still reports a driver")
	}
}

type failingConn struct{ closed chan struct{} }

func (f *failingConn) Send([]byte) error { return errors.New("broken pipe") }
func (f *failingConn) Close() error {
	close(f.closed)
	return nil
}

func TestRoomDropsDriverOnSendFailure(t *testing.T) {
	r := newTestRoom(t, "oval")
	fc := &failingConn{closed: make(chan struct{})}
	res := join(t, r, fc)
	if !errors.Is(res.Err, ErrDriverGone) {
		t.Fatalf("join err = %v, want ErrDriverGone", res.Err)
	}
	select {
	case <-fc.closed:
	case <-time.After(time.Second):
		t.Fatalf("failing conn was not closed")
	}
}

type slowConn struct {
	sendCh chan []byte
	block  chan struct{}
}

func (s *slowConn) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	s.sendCh <- cp
	<-s.block // block until released
	return nil
}
func (s *slowConn) Close() error { return nil }

func TestRoomKeepsTickingAfterSlowConnReleases(t *testing.T) {
	r := newTestRoom(t, "oval")

	sc := &slowConn{
		sendCh: make(chan []byte, 64),
		block:  make(chan struct{}),
	}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: sc, Name: "slow", Reply: reply}

	select {
	case <-sc.sendCh:
		close(sc.block)
	case <-time.After(time.Second):
		t.Fatalf("expected a welcome send; possible deadlock")
	}
	<-reply

	before := r.Tick()
	deadline := time.After(time.Second)
	for r.Tick() <= before+5 {
		select {
		case <-sc.sendCh:
		case <-deadline:
			t.Fatalf("room stopped ticking: tick=%d", r.Tick())
		}
	}
}

func TestRoomBroadcastRateRoughlyTickRate(t *testing.T) {
	r := newTestRoom(t, "oval")
	fc := &fakeConn{sendCh: make(chan []byte, 512)}
	join(t, r, fc)

	deadline := time.After(300 * time.Millisecond)
	count := 0
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err == nil && env.T == protocol.MsgState {
				count++
			}
		case <-deadline:
			// 60Hz for 0.3s => ~18 msgs. Wide range to avoid flakes.
			if count < 5 || count > 36 {
				t.Fatalf("unexpected state broadcast count in 300ms: %d", count)
			}
			return
		}
	}
}

func TestPadSampleMarksUndefinedAxes(t *testing.T) {
	s := padSample(&protocol.Pad{Axes: []*float64{nil, f64(0.2)}, Buttons: []bool{true}})
	c := game.Aggregate(game.KeyboardState{}, s)
	if c.Steering != 0 {
		t.Fatalf("undefined steering axis should read as 0, got %f", c.Steering)
	}
	if len(s.Buttons) != 1 || !s.Buttons[0] {
		t.Fatalf("buttons not copied: %v", s.Buttons)
	}
}

//go:build !tinygo && cgo

package desktop

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"drivesim/device"
	"drivesim/game"
)

const pixelsPerMeter = 3.0

var (
	colGrass  = color.RGBA{0x2f, 0x5d, 0x2f, 0xff}
	colTrack  = color.RGBA{0x55, 0x55, 0x5a, 0xff}
	colLine   = color.RGBA{0xee, 0xee, 0xee, 0xff}
	colCar    = color.RGBA{0xe0, 0x3a, 0x2f, 0xff}
	colCamera = color.RGBA{0xf2, 0xc9, 0x4c, 0xff}
)

// Run opens the window and blocks until it closes.
func Run(opts Options) error {
	tps := opts.TPS
	if tps <= 0 {
		tps = DefaultTPS
	}
	opts.TPS = tps
	title := opts.Title
	if title == "" {
		title = "drivesim (" + opts.Variant.Name + ")"
	}

	g := &window{host: NewHost(opts, ebitenPoller{})}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetTPS(tps)
	return ebiten.RunGame(g)
}

type window struct {
	host *Host
}

func (w *window) Update() error {
	w.host.Step()
	return nil
}

func (w *window) Draw(screen *ebiten.Image) {
	screen.Fill(colGrass)
	f := w.host.Frame()

	// Keep the car in the middle of the view.
	ox := float32(windowWidth/2) - float32(f.Vehicle.Position.X*pixelsPerMeter)
	oy := float32(windowHeight/2) - float32(f.Vehicle.Position.Z*pixelsPerMeter)
	toScreen := func(v game.Vec3) (float32, float32) {
		return ox + float32(v.X*pixelsPerMeter), oy + float32(v.Z*pixelsPerMeter)
	}

	drawTrack(screen, w.host.Variant().Track, toScreen)

	cx, cy := toScreen(f.Camera.Position)
	lx, ly := toScreen(f.Camera.LookTarget)
	vector.StrokeLine(screen, cx, cy, lx, ly, 1, colCamera, true)
	vector.StrokeCircle(screen, cx, cy, 3, 1, colCamera, true)

	px, py := toScreen(f.Vehicle.Position)
	nose := f.Vehicle.Position.Add(game.Vec3{X: -math.Cos(f.Vehicle.Heading), Z: math.Sin(f.Vehicle.Heading)}.Scale(game.Wheelbase))
	nx, ny := toScreen(nose)
	vector.StrokeLine(screen, px, py, nx, ny, 4, colCar, true)
	vector.DrawFilledCircle(screen, px, py, 4, colCar, true)

	ebitenutil.DebugPrint(screen, Readout(f, w.host.Devices()))
}

func (w *window) Layout(int, int) (int, int) {
	return windowWidth, windowHeight
}

// drawTrack strokes the oval centre line at track width: two straights along
// x joined by half circles.
func drawTrack(dst *ebiten.Image, t game.Track, toScreen func(game.Vec3) (float32, float32)) {
	if t.Radius <= 0 {
		return
	}
	width := float32(t.Width * pixelsPerMeter)
	half := t.StraightLength / 2
	line := func(a, b game.Vec3, w float32, c color.Color) {
		ax, ay := toScreen(a)
		bx, by := toScreen(b)
		vector.StrokeLine(dst, ax, ay, bx, by, w, c, true)
	}

	const segments = 24
	for _, end := range []float64{-1, 1} {
		line(game.Vec3{X: -half, Z: end * t.Radius}, game.Vec3{X: half, Z: end * t.Radius}, width, colTrack)

		centre := game.Vec3{X: end * half}
		prev := centre.Add(game.Vec3{Z: t.Radius})
		for i := 1; i <= segments; i++ {
			a := math.Pi * float64(i) / segments
			next := centre.Add(game.Vec3{X: end * math.Sin(a) * t.Radius, Z: math.Cos(a) * t.Radius})
			line(prev, next, width, colTrack)
			prev = next
		}
	}

	s := t.StartLine
	line(game.Vec3{X: s.X, Z: s.Z - t.Width/2}, game.Vec3{X: s.X, Z: s.Z + t.Width/2}, 2, colLine)
}

// ebitenPoller reads W/S/A/D or the arrow keys and the raw gamepad state.
type ebitenPoller struct{}

func (ebitenPoller) Keys() game.KeyboardState {
	down := func(keys ...ebiten.Key) bool {
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				return true
			}
		}
		return false
	}
	return game.KeyboardState{
		Forward:    down(ebiten.KeyW, ebiten.KeyArrowUp),
		Backward:   down(ebiten.KeyS, ebiten.KeyArrowDown),
		SteerLeft:  down(ebiten.KeyA, ebiten.KeyArrowLeft),
		SteerRight: down(ebiten.KeyD, ebiten.KeyArrowRight),
	}
}

func (ebitenPoller) Pads() []device.Info {
	ids := ebiten.AppendGamepadIDs(nil)
	pads := make([]device.Info, 0, len(ids))
	for _, id := range ids {
		pads = append(pads, device.Info{Index: int(id), ID: ebiten.GamepadName(id)})
	}
	return pads
}

func (ebitenPoller) Sample(index int) *game.DeviceSample {
	id := ebiten.GamepadID(index)
	axes := ebiten.GamepadAxisCount(id)
	buttons := ebiten.GamepadButtonCount(id)
	if axes == 0 && buttons == 0 {
		return nil
	}
	s := &game.DeviceSample{
		Axes:    make([]float64, axes),
		Buttons: make([]bool, buttons),
	}
	for i := range s.Axes {
		s.Axes[i] = ebiten.GamepadAxisValue(id, ebiten.GamepadAxisType(i))
	}
	for i := range s.Buttons {
		s.Buttons[i] = ebiten.IsGamepadButtonPressed(id, ebiten.GamepadButton(i))
	}
	return s
}
